// Package ssd1289 controls a SSD1289 TFT display over a GPIO parallel bus or SPI.
//
// The SSD1289 is a 240x320 RGB565 TFT controller, found for example on the
// Sainsmart 3.2" module.
//
// See the examples for how to use this package.
package ssd1289

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"github.com/flavioheleno/ssd1289/image565"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DebugFlags selects the operations traced to Opts.Logger.
type DebugFlags uint32

// Debug flags.
const (
	DebugInitDisplay DebugFlags = 1 << iota
	DebugSetAddrWin
	DebugWriteReg
	DebugWrite
	DebugVerifyPins

	DebugAll = DebugInitDisplay | DebugSetAddrWin | DebugWriteReg | DebugWrite | DebugVerifyPins
)

// Opts is the configuration for the SSD1289 display.
type Opts struct {
	// Rotation of the framebuffer. Fixed for the lifetime of the Dev.
	Rotation Rotation

	// GPIO bus variant. Ignored on SPI.
	Latched bool // 8 data lines plus an external latch
	Slow    bool // extra setup time on every strobe
	Naive   bool // drive all 16 lines for every word, no differential writes

	// Optional hardware reset pin
	RST gpio.PinOut

	// Tracing, disabled when Logger is nil or Debug is 0
	Debug  DebugFlags
	Logger *log.Logger
}

var (
	// ErrOddLength is returned by Write for a buffer holding a partial word.
	ErrOddLength = errors.New("ssd1289: buffer length is not a multiple of 2")
	// ErrHalted is returned by operations on a halted Dev.
	ErrHalted = errors.New("ssd1289: halted")
)

// Ops is the operation set a framebuffer host drives the controller with.
type Ops interface {
	// InitDisplay brings the controller to a known state.
	InitDisplay() error
	// SetAddrWin positions the GDDRAM counters at (xs, ys) and primes a RAM
	// write.
	SetAddrWin(xs, ys, xe, ye int) error
	// WriteReg writes a register index and its optional values.
	WriteReg(addr uint8, value ...uint16) error
	// Write streams raw RGB565 words into the primed RAM window.
	Write(p []byte) (int, error)
	// VerifyPins checks the pin assignment for the Dev's transport.
	VerifyPins() error
}

// Dev is the device handle for the SSD1289 display.
type Dev struct {
	// Communication
	bus       Bus
	dc        gpio.PinOut
	rst       gpio.PinOut
	pins      Pins
	transport Transport

	opts Opts
	rect image.Rectangle

	// Scratch buffers
	cmd   [1]uint16
	words []uint16

	// Pixel buffers
	next   *image565.Image // Frame being drawn
	last   []byte          // Frame last sent to GDDRAM
	synced bool            // last matches GDDRAM

	// State
	halted bool
}

// NewGPIO creates a new SSD1289 device on a bit-banged parallel bus.
//
// The pins are verified before anything is written. The bus variant is
// chosen from opts and kept for the lifetime of the device.
//
// opts can be nil to use defaults (no rotation, optimized 16-bit bus).
func NewGPIO(pins Pins, opts *Opts) (*Dev, error) {
	o, err := normalizeOpts(opts)
	if err != nil {
		return nil, err
	}
	if err := verifyPins(&pins, TransportGPIO, o); err != nil {
		return nil, err
	}
	d := newDev(newGPIOBus(&pins, o), pins, TransportGPIO, o)
	if err := d.InitDisplay(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI creates a new SSD1289 device connected via SPI.
//
// The SPI port is configured for 16MHz, Mode0, 8-bit transfers. The dc
// (Data/Command) GPIO pin must be provided.
//
// opts can be nil to use defaults.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	o, err := normalizeOpts(opts)
	if err != nil {
		return nil, err
	}
	pins := Pins{DC: dc}
	if err := verifyPins(&pins, TransportSPI, o); err != nil {
		return nil, err
	}
	c, err := p.Connect(16*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1289: failed to connect over spi: %w", err)
	}
	d := newDev(newSPIBus(c), pins, TransportSPI, o)
	if err := d.InitDisplay(); err != nil {
		return nil, err
	}
	return d, nil
}

func normalizeOpts(opts *Opts) (*Opts, error) {
	o := &Opts{}
	if opts != nil {
		*o = *opts
	}
	if !o.Rotation.valid() {
		return nil, fmt.Errorf("ssd1289: invalid rotation %s", o.Rotation)
	}
	return o, nil
}

func verifyPins(p *Pins, t Transport, o *Opts) error {
	debugf(o, DebugVerifyPins, "VerifyPins(transport=%s, latched=%t)", t, o.Latched)
	return p.Verify(t, o.Latched)
}

func newDev(b Bus, pins Pins, t Transport, o *Opts) *Dev {
	return &Dev{
		bus:       b,
		dc:        pins.DC,
		rst:       o.RST,
		pins:      pins,
		transport: t,
		opts:      *o,
		rect:      o.Rotation.bounds(),
	}
}

// InitDisplay resets the controller and runs the power-up register sequence.
//
// Every write is absolute, so running it again yields the same register
// state. It also clears the halted state.
func (d *Dev) InitDisplay() error {
	d.debugf(DebugInitDisplay, "InitDisplay(rotation=%s)", d.opts.Rotation)
	if err := d.reset(); err != nil {
		return err
	}
	for _, w := range initSequence(d.opts.Rotation) {
		if err := d.writeReg(w.reg, w.val); err != nil {
			return err
		}
	}
	if err := d.writeReg(regRAMData); err != nil {
		return err
	}
	d.halted = false
	d.synced = false
	return nil
}

// reset pulses the hardware reset pin, if there is one.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("ssd1289: failed to pull RST low: %w", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("ssd1289: failed to pull RST high: %w", err)
	}
	time.Sleep(120 * time.Millisecond)
	return nil
}

// SetAddrWin points the GDDRAM counters at the logical pixel (xs, ys) and
// primes a RAM data write.
//
// xe and ye are not sent: the controller walks the RAM window set up by
// InitDisplay in the direction chosen by the rotation. Coordinates are not
// clipped.
func (d *Dev) SetAddrWin(xs, ys, xe, ye int) error {
	if d.halted {
		return ErrHalted
	}
	return d.setAddrWin(xs, ys, xe, ye)
}

func (d *Dev) setAddrWin(xs, ys, xe, ye int) error {
	d.debugf(DebugSetAddrWin, "SetAddrWin(xs=%d, ys=%d, xe=%d, ye=%d)", xs, ys, xe, ye)
	x, y := d.opts.Rotation.addrCounters(xs, ys)
	if err := d.writeReg(regXCounter, x); err != nil {
		return err
	}
	if err := d.writeReg(regYCounter, y); err != nil {
		return err
	}
	return d.writeReg(regRAMData)
}

// WriteReg selects register addr and writes value to it.
//
// Without value only the index is sent, which is how a RAM data burst is
// started.
func (d *Dev) WriteReg(addr uint8, value ...uint16) error {
	if d.halted {
		return ErrHalted
	}
	return d.writeReg(addr, value...)
}

func (d *Dev) writeReg(addr uint8, value ...uint16) error {
	d.debugf(DebugWriteReg, "WriteReg(0x%02X, %04X)", addr, value)
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	d.cmd[0] = uint16(addr)
	if err := d.bus.WriteWords(d.cmd[:]); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	return d.bus.WriteWords(value)
}

// VerifyPins checks the pin assignment the Dev was created with.
func (d *Dev) VerifyPins() error {
	return verifyPins(&d.pins, d.transport, &d.opts)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds returns the logical framebuffer bounds: 240x320, or 320x240 when
// rotated by 90 or 270 degrees.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Rotation returns the rotation the Dev was created with.
func (d *Dev) Rotation() Rotation {
	return d.opts.Rotation
}

// Write streams raw pixel data into the RAM window primed by SetAddrWin.
//
// p holds RGB565 words, most significant byte first. A buffer with an odd
// length is rejected before any line is driven.
func (d *Dev) Write(p []byte) (int, error) {
	if d.halted {
		return 0, ErrHalted
	}
	if len(p)%2 != 0 {
		return 0, ErrOddLength
	}
	d.debugf(DebugWrite, "Write(len=%d)", len(p))
	// GDDRAM no longer matches the Draw cache.
	d.synced = false
	if err := d.writeData(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (d *Dev) writeData(p []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	n := len(p) / 2
	if cap(d.words) < n {
		d.words = make([]uint16, n)
	}
	words := d.words[:n]
	for i := range words {
		words[i] = uint16(p[2*i])<<8 | uint16(p[2*i+1])
	}
	return d.bus.WriteWords(words)
}

// Draw draws an image onto the display.
//
// Only the rows that changed since the previous Draw are sent. Rows are sent
// full width since the controller only takes a start address.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return ErrHalted
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	if d.next == nil {
		d.next = image565.NewImage(d.rect)
		d.last = make([]byte, len(d.next.Pix))
	}
	draw.Draw(d.next, dst, src, sp, draw.Src)

	minRow, maxRow := d.changedRows()
	if minRow > maxRow {
		return nil
	}
	if err := d.writeRows(minRow, maxRow); err != nil {
		d.synced = false
		return err
	}
	copy(d.last, d.next.Pix)
	d.synced = true
	return nil
}

// changedRows returns the span of rows that differ from the last frame sent,
// or (1, 0) when nothing changed.
func (d *Dev) changedRows() (minRow, maxRow int) {
	height := d.rect.Dy()
	if !d.synced {
		return 0, height - 1
	}
	stride := d.next.Stride
	minRow, maxRow = height, -1
	for y := 0; y < height; y++ {
		row := y * stride
		if !bytes.Equal(d.last[row:row+stride], d.next.Pix[row:row+stride]) {
			if y < minRow {
				minRow = y
			}
			maxRow = y
		}
	}
	if maxRow < 0 {
		return 1, 0
	}
	return minRow, maxRow
}

// writeRows sends rows minRow through maxRow of the frame being drawn.
func (d *Dev) writeRows(minRow, maxRow int) error {
	if err := d.setAddrWin(0, minRow, d.rect.Dx()-1, maxRow); err != nil {
		return err
	}
	stride := d.next.Stride
	d.debugf(DebugWrite, "Write(len=%d)", (maxRow-minRow+1)*stride)
	return d.writeData(d.next.Pix[minRow*stride : (maxRow+1)*stride])
}

// Halt turns the display off and puts the controller to sleep.
//
// After calling Halt, the display will not accept further operations until
// InitDisplay is called.
func (d *Dev) Halt() error {
	if d.halted {
		return nil
	}
	if err := d.writeReg(regDisplayControl, displayOff); err != nil {
		return err
	}
	if err := d.writeReg(regSleepMode, 0x0001); err != nil {
		return err
	}
	d.halted = true
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1289.Dev{%dx%d, %s}", d.rect.Dx(), d.rect.Dy(), d.bus)
}

func (d *Dev) debugf(flag DebugFlags, format string, v ...any) {
	debugf(&d.opts, flag, format, v...)
}

func debugf(o *Opts, flag DebugFlags, format string, v ...any) {
	if o.Logger == nil || o.Debug&flag == 0 {
		return
	}
	o.Logger.Printf("ssd1289: "+format, v...)
}

var (
	_ display.Drawer = &Dev{}
	_ Ops            = &Dev{}
)
