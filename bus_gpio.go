package ssd1289

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// lineGroup is a gpio.Group over individually assigned data lines.
type lineGroup struct {
	pins        []gpio.PinOut
	defaultMask gpio.GPIOValue
}

func newLineGroup(pins []gpio.PinOut) *lineGroup {
	return &lineGroup{pins: pins, defaultMask: gpio.GPIOValue(1)<<len(pins) - 1}
}

// Pins returns the data lines, DB0 first.
func (g *lineGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(g.pins))
	for i, p := range g.pins {
		pins[i] = p
	}
	return pins
}

// ByOffset returns the data line for bit offset.
func (g *lineGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(g.pins) {
		return nil
	}
	return g.pins[offset]
}

// ByName returns the data line called name, or nil.
func (g *lineGroup) ByName(name string) pin.Pin {
	for _, p := range g.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ByNumber returns the data line with GPIO number, or nil.
func (g *lineGroup) ByNumber(number int) pin.Pin {
	for _, p := range g.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// Out drives the lines selected by mask. A zero mask selects every line.
func (g *lineGroup) Out(value, mask gpio.GPIOValue) error {
	if mask == 0 {
		mask = g.defaultMask
	} else {
		mask &= g.defaultMask
	}
	for bit, p := range g.pins {
		if mask&(1<<bit) == 0 {
			continue
		}
		if err := p.Out(gpio.Level(value&(1<<bit) != 0)); err != nil {
			return err
		}
	}
	return nil
}

// Read is not supported, the data lines are write only.
func (g *lineGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	return 0, gpio.ErrGroupFeatureNotImplemented
}

// WaitForEdge is not supported.
func (g *lineGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return 0, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt implements conn.Resource.
func (g *lineGroup) Halt() error {
	var errs []error
	for _, p := range g.pins {
		errs = append(errs, p.Halt())
	}
	return errors.Join(errs...)
}

func (g *lineGroup) String() string {
	names := make([]string, len(g.pins))
	for i, p := range g.pins {
		names[i] = p.Name()
	}
	return "[" + strings.Join(names, ",") + "]"
}

// lineState remembers the level last driven on each data line so that only
// changed lines are written.
//
// It starts invalid: the first word after construction drives every line,
// whatever the bus was left at by a previous user.
type lineState struct {
	db    gpio.Group
	mask  gpio.GPIOValue
	last  gpio.GPIOValue
	valid bool
}

func newLineState(db gpio.Group, width int) lineState {
	return lineState{db: db, mask: gpio.GPIOValue(1)<<width - 1}
}

// drive puts v on the lines, writing only the ones that changed.
func (s *lineState) drive(v gpio.GPIOValue) error {
	v &= s.mask
	changed := s.mask
	if s.valid {
		changed = (v ^ s.last) & s.mask
		if changed == 0 {
			return nil
		}
	}
	if err := s.db.Out(v, changed); err != nil {
		// The lines are in an unknown state now.
		s.valid = false
		return err
	}
	s.last = v
	s.valid = true
	return nil
}

// fastBus is the optimized 16-bit bus: only lines whose bit changed since
// the previous word are driven.
type fastBus struct {
	wr    gpio.PinOut
	lines lineState
}

func (b *fastBus) WriteWords(words []uint16) error {
	for _, w := range words {
		if err := b.wr.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.lines.drive(gpio.GPIOValue(w)); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

func (b *fastBus) String() string {
	return fmt.Sprintf("gpio16(%s)", b.lines.db)
}

// slowBus is fastBus with one more /WR low write before the rising edge,
// giving the data lines an extra pin-write period of setup time. For a
// repeated word that write is the whole data phase.
type slowBus struct {
	wr    gpio.PinOut
	lines lineState
}

func (b *slowBus) WriteWords(words []uint16) error {
	for _, w := range words {
		if err := b.wr.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.lines.drive(gpio.GPIOValue(w)); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

func (b *slowBus) String() string {
	return fmt.Sprintf("gpio16-slow(%s)", b.lines.db)
}

// naiveBus drives all 16 lines for every word.
type naiveBus struct {
	wr gpio.PinOut
	db gpio.Group
}

func (b *naiveBus) WriteWords(words []uint16) error {
	for _, w := range words {
		if err := b.wr.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.db.Out(gpio.GPIOValue(w), 0xFFFF); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

func (b *naiveBus) String() string {
	return fmt.Sprintf("gpio16-naive(%s)", b.db)
}

// latchedBus sends a word over 8 data lines. The low byte is captured by an
// external latch on the falling edge of the latch pin, which feeds the
// module's DB0-DB7. The high byte then goes out on the same lines, wired
// straight to DB8-DB15.
type latchedBus struct {
	wr    gpio.PinOut
	latch gpio.PinOut
	lines lineState
}

func (b *latchedBus) WriteWords(words []uint16) error {
	for _, w := range words {
		if err := b.wr.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.latch.Out(gpio.High); err != nil {
			return err
		}
		if err := b.lines.drive(gpio.GPIOValue(w & 0xFF)); err != nil {
			return err
		}
		if err := b.latch.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.lines.drive(gpio.GPIOValue(w >> 8)); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

func (b *latchedBus) String() string {
	return fmt.Sprintf("gpio8-latched(%s)", b.lines.db)
}

// dataGroup returns the group holding the first n data lines.
func (p *Pins) dataGroup(n int) gpio.Group {
	if p.Group != nil {
		return p.Group
	}
	pins := make([]gpio.PinOut, n)
	copy(pins, p.DB[:n])
	return newLineGroup(pins)
}

// newGPIOBus selects the bus variant for opts. pins must have been verified.
func newGPIOBus(p *Pins, opts *Opts) Bus {
	switch {
	case opts.Latched:
		return &latchedBus{wr: p.WR, latch: p.Latch, lines: newLineState(p.dataGroup(8), 8)}
	case opts.Naive:
		return &naiveBus{wr: p.WR, db: p.dataGroup(16)}
	case opts.Slow:
		return &slowBus{wr: p.WR, lines: newLineState(p.dataGroup(16), 16)}
	default:
		return &fastBus{wr: p.WR, lines: newLineState(p.dataGroup(16), 16)}
	}
}

var (
	_ gpio.Group = &lineGroup{}
	_ Bus        = &fastBus{}
	_ Bus        = &slowBus{}
	_ Bus        = &naiveBus{}
	_ Bus        = &latchedBus{}
	_ Bus        = &spiBus{}
)
