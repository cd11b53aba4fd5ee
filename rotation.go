package ssd1289

import (
	"fmt"
	"image"
)

// Native panel geometry, portrait.
const (
	Width  = 240
	Height = 320
)

// Rotation is the clockwise rotation of the logical framebuffer relative to
// the panel's native portrait orientation.
type Rotation int

// Supported rotations.
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) String() string {
	if r.valid() {
		return fmt.Sprintf("%d°", int(r)*90)
	}
	return fmt.Sprintf("Rotation(%d)", int(r))
}

func (r Rotation) valid() bool {
	return r >= Rotate0 && r <= Rotate270
}

// ParseRotation converts a rotation in degrees.
func ParseRotation(degrees int) (Rotation, error) {
	switch degrees {
	case 0:
		return Rotate0, nil
	case 90:
		return Rotate90, nil
	case 180:
		return Rotate180, nil
	case 270:
		return Rotate270, nil
	}
	return 0, fmt.Errorf("ssd1289: unsupported rotation %d", degrees)
}

// rotationParams describes how one rotation maps onto the controller.
//
// The init sequence and the address window both read this table, so the
// scan direction set in R11h and the counter mapping always agree.
type rotationParams struct {
	// entryMode is written to R11h. Besides 65k color mode it selects the
	// counter increment direction (ID1:0) and which counter advances first
	// (AM), so a row-major pixel stream follows the logical rows.
	entryMode uint16
	// swap feeds the logical y into the X counter and the logical x into Y.
	swap bool
	// mirrorX and mirrorY count the respective counter down from its end.
	mirrorX bool
	mirrorY bool
}

// Mirrored counters count down from the GDDRAM axis end (239 for X, 319 for
// Y), not from the logical width or height.
var rotations = [...]rotationParams{
	Rotate0:   {entryMode: 0x6070},
	Rotate90:  {entryMode: 0x6068, swap: true, mirrorX: true},
	Rotate180: {entryMode: 0x6040, mirrorX: true, mirrorY: true},
	Rotate270: {entryMode: 0x6058, swap: true, mirrorY: true},
}

// bounds returns the logical framebuffer rectangle for r.
func (r Rotation) bounds() image.Rectangle {
	if rotations[r].swap {
		return image.Rect(0, 0, Height, Width)
	}
	return image.Rect(0, 0, Width, Height)
}

// addrCounters maps a logical pixel to the GDDRAM X (R4Eh) and Y (R4Fh)
// counter values.
//
// Once swapped, the X counter spans the 240 native columns and the Y counter
// the 320 native rows, which is also the logical resolution on that axis.
// No clipping is done; out of range input yields out of range counters.
func (r Rotation) addrCounters(xs, ys int) (x, y uint16) {
	p := rotations[r]
	a, b := xs, ys
	if p.swap {
		a, b = ys, xs
	}
	if p.mirrorX {
		a = Width - 1 - a
	}
	if p.mirrorY {
		b = Height - 1 - b
	}
	return uint16(a), uint16(b)
}
