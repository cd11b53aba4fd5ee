// Package image565 provides a 16-bit RGB565 image format for the SSD1289 display.
//
// Each pixel is a 5-6-5 word stored most significant byte first.
package image565

import (
	"image"
	"image/color"
)

// RGB565 is a packed 16-bit color: bits 15-11 red, 10-5 green, 4-0 blue.
type RGB565 uint16

// RGBA implements color.Color.
//
// Channels are widened by bit replication so that full-scale values map to
// 0xFFFF.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r8 := r5<<3 | r5>>2
	g8 := g6<<2 | g6>>4
	b8 := b5<<3 | b5>>2
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

// FromRGB packs 8-bit channels into an RGB565 word.
func FromRGB(r, g, b uint8) RGB565 {
	return RGB565(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(RGB565); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return FromRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to RGB565.
var Model = color.ModelFunc(toRGB565)

// Image is an RGB565 image in controller word order.
type Image struct {
	Pix    []byte          // Pixel data, 2 bytes per pixel, MSB first
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates a new Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the word stored for the pixel at (x, y).
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return RGB565(uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1]))
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(RGB565))
}

// SetRGB565 sets the pixel at (x, y) without color conversion.
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// Row returns the bytes of row y, or nil when y is outside the image.
func (p *Image) Row(y int) []byte {
	if y < p.Rect.Min.Y || y >= p.Rect.Max.Y {
		return nil
	}
	start := (y - p.Rect.Min.Y) * p.Stride
	return p.Pix[start : start+2*p.Rect.Dx()]
}
