package ssd1289

import (
	"bytes"
	"errors"
	"testing"

	"github.com/flavioheleno/ssd1289/ssd1289test"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// panelPins wires every role to the emulated panel.
func panelPins(p *ssd1289test.Panel) Pins {
	pins := Pins{DC: p.DC(), WR: p.WR(), Latch: p.Latch()}
	for i := range pins.DB {
		pins.DB[i] = p.DB(i)
	}
	return pins
}

func writeWords(t *testing.T, b Bus, words ...uint16) {
	t.Helper()
	if err := b.WriteWords(words); err != nil {
		t.Fatal(err)
	}
}

func TestFastBusDifferential(t *testing.T) {
	p := ssd1289test.New(false)
	pins := panelPins(p)
	b := newGPIOBus(&pins, &Opts{})
	if _, ok := b.(*fastBus); !ok {
		t.Fatalf("default bus is %T, want *fastBus", b)
	}

	writeWords(t, b, 0xABCD)

	// Same word: no data line is touched, the strobe still pulses.
	p.ResetCounts()
	writeWords(t, b, 0xABCD)
	for i := 0; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 0 {
			t.Errorf("DB%d written %d times for a repeated word", i, n)
		}
	}
	if n := p.WR().Toggles(); n != 2 {
		t.Errorf("WR toggled %d times, want 2", n)
	}

	// 0xABCD -> 0x0000: exactly the set bits of 0xABCD change.
	p.ResetCounts()
	writeWords(t, b, 0x0000)
	for i := 0; i < 16; i++ {
		want := 0
		if 0xABCD&(1<<i) != 0 {
			want = 1
		}
		if n := p.DB(i).Writes(); n != want {
			t.Errorf("DB%d written %d times, want %d", i, n, want)
		}
		if n := p.DB(i).Toggles(); n != want {
			t.Errorf("DB%d toggled %d times, want %d", i, n, want)
		}
	}

	var got []uint16
	for _, w := range p.Words() {
		got = append(got, w.V)
	}
	want := []uint16{0xABCD, 0xABCD, 0x0000}
	if len(got) != len(want) {
		t.Fatalf("panel received %04X, want %04X", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = 0x%04X, want 0x%04X", i, got[i], want[i])
		}
	}
}

func TestFastBusFirstWordDrivesAllLines(t *testing.T) {
	p := ssd1289test.New(false)
	pins := panelPins(p)
	b := newGPIOBus(&pins, &Opts{})

	// The lines are already low; the first word must still drive them all.
	writeWords(t, b, 0x0000)
	for i := 0; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 1 {
			t.Errorf("DB%d written %d times on first word, want 1", i, n)
		}
	}

	p.ResetCounts()
	writeWords(t, b, 0x0000)
	for i := 0; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 0 {
			t.Errorf("DB%d written %d times on second word, want 0", i, n)
		}
	}
}

func TestBusCachePerInstance(t *testing.T) {
	p := ssd1289test.New(false)
	pins := panelPins(p)
	a := newGPIOBus(&pins, &Opts{})
	writeWords(t, a, 0xFFFF)

	// A second bus on the same lines does not inherit a's history.
	p.ResetCounts()
	b := newGPIOBus(&pins, &Opts{})
	writeWords(t, b, 0xFFFF)
	for i := 0; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 1 {
			t.Errorf("DB%d written %d times, want 1", i, n)
		}
	}
}

// flakyGroup fails Out while fail is set.
type flakyGroup struct {
	gpio.Group
	fail bool
}

func (g *flakyGroup) Out(value, mask gpio.GPIOValue) error {
	if g.fail {
		return errors.New("line fault")
	}
	return g.Group.Out(value, mask)
}

func TestFastBusErrorDrivesAllLinesAgain(t *testing.T) {
	p := ssd1289test.New(false)
	lines := make([]gpio.PinOut, 16)
	for i := range lines {
		lines[i] = p.DB(i)
	}
	g := &flakyGroup{Group: newLineGroup(lines)}
	pins := Pins{DC: p.DC(), WR: p.WR(), Group: g}
	b := newGPIOBus(&pins, &Opts{})
	writeWords(t, b, 0x00FF)

	g.fail = true
	if err := b.WriteWords([]uint16{0x0F0F}); err == nil {
		t.Fatal("WriteWords() should report the line fault")
	}

	// The cache no longer trusts the lines: the same word drives all 16.
	g.fail = false
	p.ResetCounts()
	writeWords(t, b, 0x00FF)
	for i := 0; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 1 {
			t.Errorf("DB%d written %d times after a fault, want 1", i, n)
		}
	}
}

func TestSlowBus(t *testing.T) {
	p := ssd1289test.New(false)
	pins := panelPins(p)
	b := newGPIOBus(&pins, &Opts{Slow: true})
	if _, ok := b.(*slowBus); !ok {
		t.Fatalf("bus is %T, want *slowBus", b)
	}

	writeWords(t, b, 0x1234)
	p.ResetCounts()
	writeWords(t, b, 0x1234, 0x1235)

	if n := p.WR().Writes(); n != 6 {
		t.Errorf("WR written %d times for 2 words, want 6", n)
	}
	if n := p.WR().Toggles(); n != 4 {
		t.Errorf("WR toggled %d times for 2 words, want 4", n)
	}
	for i := 0; i < 16; i++ {
		want := 0
		if i == 0 {
			want = 1
		}
		if n := p.DB(i).Writes(); n != want {
			t.Errorf("DB%d written %d times, want %d", i, n, want)
		}
	}
	words := p.Words()
	if len(words) != 3 || words[2].V != 0x1235 {
		t.Errorf("panel received %v", words)
	}
}

func TestNaiveBus(t *testing.T) {
	p := ssd1289test.New(false)
	pins := panelPins(p)
	b := newGPIOBus(&pins, &Opts{Naive: true})
	if _, ok := b.(*naiveBus); !ok {
		t.Fatalf("bus is %T, want *naiveBus", b)
	}

	writeWords(t, b, 0x5A5A, 0x5A5A)
	for i := 0; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 2 {
			t.Errorf("DB%d written %d times, want 2", i, n)
		}
	}
}

func TestLatchedBus(t *testing.T) {
	p := ssd1289test.New(true)
	pins := panelPins(p)
	b := newGPIOBus(&pins, &Opts{Latched: true, Slow: true})
	if _, ok := b.(*latchedBus); !ok {
		t.Fatalf("bus is %T, want *latchedBus", b)
	}

	writeWords(t, b, 0xABCD, 0x1234, 0x1234)

	words := p.Words()
	want := []uint16{0xABCD, 0x1234, 0x1234}
	if len(words) != len(want) {
		t.Fatalf("panel received %v", words)
	}
	for i := range want {
		if words[i].V != want[i] {
			t.Errorf("word %d = 0x%04X, want 0x%04X", i, words[i].V, want[i])
		}
	}
	for i := 8; i < 16; i++ {
		if n := p.DB(i).Writes(); n != 0 {
			t.Errorf("DB%d written %d times in latched mode", i, n)
		}
	}
	if n := p.Latch().Toggles(); n != 6 {
		t.Errorf("Latch toggled %d times for 3 words, want 6", n)
	}
}

func TestLatchedBusDifferential(t *testing.T) {
	p := ssd1289test.New(true)
	pins := panelPins(p)
	b := newGPIOBus(&pins, &Opts{Latched: true})
	writeWords(t, b, 0x0000)

	// Low byte equals the high byte left on the lines, then stays: nothing
	// is driven.
	p.ResetCounts()
	writeWords(t, b, 0x0000)
	for i := 0; i < 8; i++ {
		if n := p.DB(i).Writes(); n != 0 {
			t.Errorf("DB%d written %d times", i, n)
		}
	}

	// 0x0F00: low byte 0x00 already on the lines, high byte 0x0F drives 4.
	p.ResetCounts()
	writeWords(t, b, 0x0F00)
	for i := 0; i < 8; i++ {
		want := 0
		if i < 4 {
			want = 1
		}
		if n := p.DB(i).Writes(); n != want {
			t.Errorf("DB%d written %d times, want %d", i, n, want)
		}
	}
}

func TestCustomGroup(t *testing.T) {
	p := ssd1289test.New(false)
	lines := make([]gpio.PinOut, 16)
	for i := range lines {
		lines[i] = p.DB(i)
	}
	pins := Pins{DC: p.DC(), WR: p.WR(), Group: newLineGroup(lines)}
	b := newGPIOBus(&pins, &Opts{})
	writeWords(t, b, 0xC3C3)

	words := p.Words()
	if len(words) != 1 || words[0].V != 0xC3C3 {
		t.Errorf("panel received %v, want [C:C3C3]", words)
	}
}

func TestLineGroup(t *testing.T) {
	pins := []gpio.PinOut{
		&gpiotest.Pin{N: "A", Num: 5},
		&gpiotest.Pin{N: "B", Num: 6},
		&gpiotest.Pin{N: "C", Num: 7},
	}
	g := newLineGroup(pins)

	if err := g.Out(0x5, 0); err != nil {
		t.Fatal(err)
	}
	for i, want := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if got := pins[i].(*gpiotest.Pin).Read(); got != want {
			t.Errorf("pin %d = %s, want %s", i, got, want)
		}
	}
	// Only bit 1 is selected.
	if err := g.Out(0x0, 0x2); err != nil {
		t.Fatal(err)
	}
	if got := pins[0].(*gpiotest.Pin).Read(); got != gpio.High {
		t.Errorf("unmasked pin changed to %s", got)
	}

	if g.ByOffset(2).Name() != "C" {
		t.Errorf("ByOffset(2) = %s, want C", g.ByOffset(2))
	}
	if g.ByOffset(3) != nil {
		t.Error("ByOffset(3) should be nil")
	}
	if g.ByName("B") == nil || g.ByName("Z") != nil {
		t.Error("ByName lookup failed")
	}
	if g.ByNumber(7).Name() != "C" {
		t.Errorf("ByNumber(7) = %s, want C", g.ByNumber(7))
	}
	if len(g.Pins()) != 3 {
		t.Errorf("Pins() has %d pins, want 3", len(g.Pins()))
	}
	if _, err := g.Read(0); err != gpio.ErrGroupFeatureNotImplemented {
		t.Errorf("Read() err = %v", err)
	}
	if s := g.String(); s != "[A,B,C]" {
		t.Errorf("String() = %q, want [A,B,C]", s)
	}
}

func TestSPIBusByteOrder(t *testing.T) {
	record := &spitest.Record{}
	c, err := record.Connect(0, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	b := newSPIBus(c)
	writeWords(t, b, 0x0022, 0xABCD)

	want := []conntest.IO{{W: []byte{0x00, 0x22, 0xAB, 0xCD}}}
	if len(record.Ops) != len(want) {
		t.Fatalf("recorded %d ops, want %d", len(record.Ops), len(want))
	}
	if !bytes.Equal(record.Ops[0].W, want[0].W) {
		t.Errorf("Tx(% X), want % X", record.Ops[0].W, want[0].W)
	}
}

func TestSPIBusChunks(t *testing.T) {
	p := ssd1289test.New(false)
	c, err := p.SPI(5).Connect(0, spi.Mode0, 8)
	if err != nil {
		t.Fatal(err)
	}
	b := newSPIBus(c)
	if b.maxTxSize != 4 {
		t.Fatalf("maxTxSize = %d, want 4", b.maxTxSize)
	}
	writeWords(t, b, 1, 2, 3, 4, 5)
	if n := len(p.Words()); n != 5 {
		t.Errorf("panel received %d words, want 5", n)
	}
}
