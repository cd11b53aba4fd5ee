// Package ssd1289test emulates an SSD1289 controller to test drivers.
//
// A Panel exposes fake GPIO lines and a fake SPI port. Words are sampled on
// the rising edge of WR, or on every byte pair written over SPI, and decoded
// the way the controller does: index writes with DC low, register or GDDRAM
// data with DC high.
package ssd1289test

import (
	"fmt"
	"image"
	"sync"

	"github.com/flavioheleno/ssd1289/image565"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Native GDDRAM geometry.
const (
	Width  = 240
	Height = 320
)

const (
	regEntryMode = 0x11
	regRAMData   = 0x22
	regHRAMAddr  = 0x44
	regVRAMStart = 0x45
	regVRAMEnd   = 0x46
	regXCounter  = 0x4E
	regYCounter  = 0x4F
)

// Word is one bus cycle as seen by the controller.
type Word struct {
	DC gpio.Level
	V  uint16
}

func (w Word) String() string {
	if w.DC {
		return fmt.Sprintf("D:%04X", w.V)
	}
	return fmt.Sprintf("C:%04X", w.V)
}

// Line is a fake GPIO line that counts writes and reports edges to its
// Panel.
type Line struct {
	gpiotest.Pin
	panel *Panel

	mu      sync.Mutex
	writes  int
	toggles int
}

// Out implements gpio.PinOut.
func (l *Line) Out(v gpio.Level) error {
	prev := l.Pin.Read()
	if err := l.Pin.Out(v); err != nil {
		return err
	}
	l.mu.Lock()
	l.writes++
	if prev != v {
		l.toggles++
	}
	l.mu.Unlock()
	l.panel.edge(l, prev, v)
	return nil
}

// Writes returns how many times Out was called since the last ResetCounts.
func (l *Line) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

// Toggles returns how many Out calls changed the level since the last
// ResetCounts.
func (l *Line) Toggles() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.toggles
}

func (l *Line) resetCounts() {
	l.mu.Lock()
	l.writes, l.toggles = 0, 0
	l.mu.Unlock()
}

// Panel is an emulated SSD1289.
type Panel struct {
	dc, wr, latch, rst *Line
	db                 [16]*Line

	mu      sync.Mutex
	latched bool
	low     byte
	index   uint8
	regs    [256]uint16
	set     [256]bool
	x, y    int
	ram     []uint16
	words   []Word
	resets  int
}

// New returns a Panel with WR high, every other line low and GDDRAM cleared.
//
// When latched is true the panel expects the 8-bit latched wiring: DB(0) to
// DB(7) carry both bytes and Latch captures the low one.
func New(latched bool) *Panel {
	p := &Panel{latched: latched, ram: make([]uint16, Width*Height)}
	newLine := func(name string, num int) *Line {
		return &Line{Pin: gpiotest.Pin{N: name, Num: num}, panel: p}
	}
	p.dc = newLine("DC", 100)
	p.wr = newLine("WR", 101)
	// /WR is active low and idles high.
	p.wr.Pin.L = gpio.High
	p.latch = newLine("LATCH", 102)
	p.rst = newLine("RST", 103)
	for i := range p.db {
		p.db[i] = newLine(fmt.Sprintf("DB%d", i), i)
	}
	return p
}

// DC returns the data/command select line.
func (p *Panel) DC() *Line { return p.dc }

// WR returns the write strobe line.
func (p *Panel) WR() *Line { return p.wr }

// Latch returns the latch enable line of the 8-bit latched wiring.
func (p *Panel) Latch() *Line { return p.latch }

// RST returns the reset line.
func (p *Panel) RST() *Line { return p.rst }

// DB returns data line i.
func (p *Panel) DB(i int) *Line { return p.db[i] }

// ResetCounts clears the write and toggle counters of every line.
func (p *Panel) ResetCounts() {
	for _, l := range p.lines() {
		l.resetCounts()
	}
}

func (p *Panel) lines() []*Line {
	l := []*Line{p.dc, p.wr, p.latch, p.rst}
	return append(l, p.db[:]...)
}

// Words returns every bus cycle received, in order.
func (p *Panel) Words() []Word {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Word(nil), p.words...)
}

// ClearWords forgets the bus cycles received so far.
func (p *Panel) ClearWords() {
	p.mu.Lock()
	p.words = nil
	p.mu.Unlock()
}

// Reg returns the value last written to register r and whether it was ever
// written.
func (p *Panel) Reg(r uint8) (uint16, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs[r], p.set[r]
}

// Regs returns a snapshot of every register written so far.
func (p *Panel) Regs() map[uint8]uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := map[uint8]uint16{}
	for i, ok := range p.set {
		if ok {
			m[uint8(i)] = p.regs[i]
		}
	}
	return m
}

// Index returns the register index currently selected.
func (p *Panel) Index() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Counters returns the GDDRAM X and Y address counters.
func (p *Panel) Counters() (x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y
}

// Resets returns how many reset pulses were seen on RST.
func (p *Panel) Resets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resets
}

// Pixel returns the GDDRAM word at native column x, row y.
func (p *Panel) Pixel(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ram[y*Width+x]
}

// Image returns a copy of GDDRAM in native portrait orientation.
func (p *Panel) Image() *image565.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	img := image565.NewImage(image.Rect(0, 0, Width, Height))
	for i, v := range p.ram {
		img.Pix[2*i] = byte(v >> 8)
		img.Pix[2*i+1] = byte(v)
	}
	return img
}

// edge is called by a Line after its level changed or was rewritten.
func (p *Panel) edge(l *Line, prev, v gpio.Level) {
	switch {
	case l == p.wr && prev == gpio.Low && v == gpio.High:
		p.strobe()
	case l == p.latch && prev == gpio.High && v == gpio.Low:
		b := byte(p.sample(8))
		p.mu.Lock()
		p.low = b
		p.mu.Unlock()
	case l == p.rst && prev == gpio.Low && v == gpio.High:
		p.mu.Lock()
		p.resets++
		p.mu.Unlock()
	}
}

func (p *Panel) strobe() {
	dc := p.dc.Read()
	if p.latched {
		hi := p.sample(8)
		p.mu.Lock()
		w := hi<<8 | uint16(p.low)
		p.mu.Unlock()
		p.receive(dc, w)
		return
	}
	p.receive(dc, p.sample(16))
}

// sample reads the first n data lines.
func (p *Panel) sample(n int) uint16 {
	var v uint16
	for i := 0; i < n; i++ {
		if p.db[i].Read() {
			v |= 1 << i
		}
	}
	return v
}

// receive decodes one bus cycle.
func (p *Panel) receive(dc gpio.Level, w uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.words = append(p.words, Word{DC: dc, V: w})
	if dc == gpio.Low {
		p.index = uint8(w)
		return
	}
	if p.index == regRAMData {
		if p.x >= 0 && p.x < Width && p.y >= 0 && p.y < Height {
			p.ram[p.y*Width+p.x] = w
		}
		p.advance()
		return
	}
	p.regs[p.index] = w
	p.set[p.index] = true
	switch p.index {
	case regXCounter:
		p.x = int(w)
	case regYCounter:
		p.y = int(w)
	}
}

// advance moves the address counters after a GDDRAM write, following the
// entry mode register: ID0 and ID1 pick the horizontal and vertical
// direction, AM picks which counter moves first. Counters wrap inside the
// RAM window.
func (p *Panel) advance() {
	mode := p.regs[regEntryMode]
	incX := mode&0x10 != 0
	incY := mode&0x20 != 0
	vertical := mode&0x08 != 0

	hsa, hea := 0, Width-1
	if p.set[regHRAMAddr] {
		hsa, hea = int(p.regs[regHRAMAddr]&0xFF), int(p.regs[regHRAMAddr]>>8)
	}
	vsa, vea := 0, Height-1
	if p.set[regVRAMStart] {
		vsa = int(p.regs[regVRAMStart])
	}
	if p.set[regVRAMEnd] {
		vea = int(p.regs[regVRAMEnd])
	}

	stepX := func() bool {
		if incX {
			if p.x++; p.x > hea {
				p.x = hsa
				return true
			}
		} else if p.x--; p.x < hsa {
			p.x = hea
			return true
		}
		return false
	}
	stepY := func() bool {
		if incY {
			if p.y++; p.y > vea {
				p.y = vsa
				return true
			}
		} else if p.y--; p.y < vsa {
			p.y = vea
			return true
		}
		return false
	}

	if vertical {
		if stepY() {
			stepX()
		}
	} else if stepX() {
		stepY()
	}
}

var _ gpio.PinIO = &Line{}
