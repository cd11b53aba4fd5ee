package ssd1289

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Transport identifies how a Dev reaches the controller.
type Transport int

const (
	// TransportSPI sends each 16-bit word as two bytes over an SPI port.
	TransportSPI Transport = iota
	// TransportGPIO bit-bangs words over a GPIO parallel bus.
	TransportGPIO
)

func (t Transport) String() string {
	switch t {
	case TransportSPI:
		return "spi"
	case TransportGPIO:
		return "gpio"
	default:
		return fmt.Sprintf("Transport(%d)", int(t))
	}
}

// ErrMissingPin is wrapped by every pin validation failure.
var ErrMissingPin = errors.New("ssd1289: missing gpio")

// Pins assigns GPIO lines to controller signals.
//
// Only DC is used by the SPI transport. The GPIO transport needs WR and the
// data lines: DB0-DB15 in 16-bit mode, DB0-DB7 plus Latch in latched mode.
type Pins struct {
	DC    gpio.PinOut // Data/Command select (RS on the module header)
	WR    gpio.PinOut // Write strobe, active low
	Latch gpio.PinOut // Latch enable for the 8-bit latched bus

	// DB are the data lines, DB[0] being the least significant bit.
	DB [16]gpio.PinOut

	// Group optionally replaces DB with a caller supplied group, for example
	// a port expander or a memory mapped GPIO bank. Bit i of a word maps to
	// the group's pin at offset i.
	Group gpio.Group
}

// Verify checks that every pin required by transport t is assigned.
//
// It must pass before any bus is built on the pins; the first missing role
// is reported and nothing is written to the hardware.
func (p *Pins) Verify(t Transport, latched bool) error {
	if missing(p.DC) {
		return missingPin("dc")
	}
	if t != TransportGPIO {
		return nil
	}
	if missing(p.WR) {
		return missingPin("wr")
	}
	n := 16
	if latched {
		if missing(p.Latch) {
			return missingPin("latch")
		}
		n = 8
	}
	if p.Group != nil {
		if got := len(p.Group.Pins()); got < n {
			return fmt.Errorf("ssd1289: data group has %d pins, need %d: %w", got, n, ErrMissingPin)
		}
		return nil
	}
	for i := 0; i < n; i++ {
		if missing(p.DB[i]) {
			return missingPin(fmt.Sprintf("db%02d", i))
		}
	}
	return nil
}

func missing(p gpio.PinOut) bool {
	return p == nil || p == gpio.INVALID
}

func missingPin(role string) error {
	return fmt.Errorf("ssd1289: missing info about %q gpio: %w", role, ErrMissingPin)
}
