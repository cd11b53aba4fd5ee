package ssd1289

import (
	"errors"
	"strings"
	"testing"

	"github.com/flavioheleno/ssd1289/ssd1289test"
	"periph.io/x/conn/v3/gpio"
)

func TestPinsVerify(t *testing.T) {
	p := ssd1289test.New(false)

	tests := []struct {
		name      string
		modify    func(*Pins)
		transport Transport
		latched   bool
		wantRole  string // empty when no error is expected
	}{
		{"gpio complete", nil, TransportGPIO, false, ""},
		{"gpio latched complete", nil, TransportGPIO, true, ""},
		{"spi complete", nil, TransportSPI, false, ""},
		{"missing dc on spi", func(pins *Pins) { pins.DC = nil }, TransportSPI, false, `"dc"`},
		{"missing dc on gpio", func(pins *Pins) { pins.DC = nil }, TransportGPIO, false, `"dc"`},
		{"invalid dc", func(pins *Pins) { pins.DC = gpio.INVALID }, TransportSPI, false, `"dc"`},
		{"missing wr on gpio", func(pins *Pins) { pins.WR = nil }, TransportGPIO, false, `"wr"`},
		{"missing wr on spi", func(pins *Pins) { pins.WR = nil }, TransportSPI, false, ""},
		{"missing latch when latched", func(pins *Pins) { pins.Latch = nil }, TransportGPIO, true, `"latch"`},
		{"missing latch when not latched", func(pins *Pins) { pins.Latch = nil }, TransportGPIO, false, ""},
		{"missing db15", func(pins *Pins) { pins.DB[15] = nil }, TransportGPIO, false, `"db15"`},
		{"missing db15 when latched", func(pins *Pins) { pins.DB[15] = nil }, TransportGPIO, true, ""},
		{"missing db03 when latched", func(pins *Pins) { pins.DB[3] = nil }, TransportGPIO, true, `"db03"`},
		{"missing db on spi", func(pins *Pins) { pins.DB = [16]gpio.PinOut{} }, TransportSPI, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pins := panelPins(p)
			if tt.modify != nil {
				tt.modify(&pins)
			}
			err := pins.Verify(tt.transport, tt.latched)
			if tt.wantRole == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrMissingPin) {
				t.Fatalf("Verify() = %v, want ErrMissingPin", err)
			}
			if !strings.Contains(err.Error(), tt.wantRole) {
				t.Errorf("Verify() = %q, want it to name %s", err, tt.wantRole)
			}
		})
	}
}

func TestPinsVerifyGroup(t *testing.T) {
	p := ssd1289test.New(false)
	lines := make([]gpio.PinOut, 8)
	for i := range lines {
		lines[i] = p.DB(i)
	}
	pins := Pins{DC: p.DC(), WR: p.WR(), Latch: p.Latch(), Group: newLineGroup(lines)}

	if err := pins.Verify(TransportGPIO, true); err != nil {
		t.Errorf("8 pin group in latched mode: %v", err)
	}
	if err := pins.Verify(TransportGPIO, false); !errors.Is(err, ErrMissingPin) {
		t.Errorf("8 pin group in 16-bit mode: got %v, want ErrMissingPin", err)
	}
}

func TestNewGPIOMissingPinWritesNothing(t *testing.T) {
	p := ssd1289test.New(false)
	pins := panelPins(p)
	pins.WR = nil

	if _, err := NewGPIO(pins, nil); !errors.Is(err, ErrMissingPin) {
		t.Fatalf("NewGPIO() = %v, want ErrMissingPin", err)
	}
	if n := len(p.Words()); n != 0 {
		t.Errorf("panel received %d words", n)
	}
	if n := p.DC().Writes(); n != 0 {
		t.Errorf("DC written %d times", n)
	}
}

func TestTransportString(t *testing.T) {
	if s := TransportGPIO.String(); s != "gpio" {
		t.Errorf("TransportGPIO = %q", s)
	}
	if s := TransportSPI.String(); s != "spi" {
		t.Errorf("TransportSPI = %q", s)
	}
	if s := Transport(7).String(); s != "Transport(7)" {
		t.Errorf("Transport(7) = %q", s)
	}
}
