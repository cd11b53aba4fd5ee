// Package termview implements a display.Drawer that renders a downscaled
// preview of a frame to a terminal using ANSI 256 color codes.
//
// Useful to work on a scene before the panel is wired, or to look at what an
// emulated panel holds.
package termview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/flavioheleno/ssd1289/image565"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// Scale is the side, in pixels, of the square rendered as one cell.
	// Defaults to 8.
	Scale   int
	Palette *ansi256.Palette
	// Output defaults to a colorable stdout.
	Output io.Writer

	_ struct{}
}

// Dev renders frames to the console.
type Dev struct {
	w       io.Writer
	scale   int
	palette ansi256.Palette

	frame *image565.Image
	buf   bytes.Buffer
}

// New returns a Dev covering r that displays at the console.
func New(r image.Rectangle, opts *Opts) *Dev {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Scale <= 0 {
		o.Scale = 8
	}
	p := o.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := o.Output
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Dev{
		w:       w,
		scale:   o.Scale,
		palette: *p,
		frame:   image565.NewImage(r),
	}
}

func (d *Dev) String() string {
	b := d.frame.Bounds()
	return fmt.Sprintf("TermView{%dx%d, 1:%d}", b.Dx(), b.Dy(), d.scale)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not left corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Write accepts a full frame of RGB565 pixels, most significant byte first,
// and renders it.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.frame.Pix) {
		return 0, errors.New("termview: invalid RGB565 frame length")
	}
	copy(d.frame.Pix, pixels)
	return len(pixels), d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.frame.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	draw.Draw(d.frame, r, src, sp, draw.Src)
	return d.refresh()
}

// Size returns the number of terminal rows and cells per row a frame takes.
func (d *Dev) Size() (cols, rows int) {
	b := d.frame.Bounds()
	return (b.Dx() + d.scale - 1) / d.scale, (b.Dy() + d.scale - 1) / d.scale
}

// refresh renders the frame, one line per band of scale pixel rows. A cell
// is two characters wide so the preview keeps roughly the panel's aspect.
func (d *Dev) refresh() error {
	b := d.frame.Bounds()
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for y := b.Min.Y; y < b.Max.Y; y += d.scale {
		for x := b.Min.X; x < b.Max.X; x += d.scale {
			block := d.palette.Block(d.average(image.Rect(x, y, x+d.scale, y+d.scale)))
			_, _ = io.WriteString(&d.buf, block)
			_, _ = io.WriteString(&d.buf, block)
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// average returns the mean color of the frame pixels inside r.
func (d *Dev) average(r image.Rectangle) color.NRGBA {
	r = r.Intersect(d.frame.Bounds())
	var sr, sg, sb, n uint32
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := d.frame.RGB565At(x, y).RGBA()
			sr += cr >> 8
			sg += cg >> 8
			sb += cb >> 8
			n++
		}
	}
	if n == 0 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{uint8(sr / n), uint8(sg / n), uint8(sb / n), 255}
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
