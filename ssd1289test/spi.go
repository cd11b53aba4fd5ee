package ssd1289test

import (
	"errors"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPI returns a fake SPI port wired to the panel. Every byte pair written is
// one bus cycle, most significant byte first, with D/C taken from the DC
// line.
//
// maxTxSize is reported through conn.Limits; 0 means no limit.
func (p *Panel) SPI(maxTxSize int) spi.PortCloser {
	return &port{p: p, maxTxSize: maxTxSize}
}

type port struct {
	p         *Panel
	maxTxSize int
	connected bool
}

func (s *port) String() string {
	return "ssd1289test"
}

func (s *port) Close() error {
	return nil
}

func (s *port) LimitSpeed(f physic.Frequency) error {
	return nil
}

func (s *port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if s.connected {
		return nil, errors.New("ssd1289test: Connect cannot be called twice")
	}
	if bits != 8 {
		return nil, errors.New("ssd1289test: only 8 bits per word is supported")
	}
	s.connected = true
	return &spiConn{s}, nil
}

type spiConn struct {
	s *port
}

func (c *spiConn) String() string {
	return "ssd1289test"
}

func (c *spiConn) Duplex() conn.Duplex {
	return conn.Half
}

func (c *spiConn) MaxTxSize() int {
	return c.s.maxTxSize
}

func (c *spiConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("ssd1289test: reads are not supported")
	}
	if c.s.maxTxSize != 0 && len(w) > c.s.maxTxSize {
		return errors.New("ssd1289test: transfer exceeds MaxTxSize")
	}
	if len(w)%2 != 0 {
		return errors.New("ssd1289test: partial word")
	}
	dc := c.s.p.dc.Read()
	for i := 0; i < len(w); i += 2 {
		c.s.p.receive(dc, uint16(w[i])<<8|uint16(w[i+1]))
	}
	return nil
}

func (c *spiConn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ spi.PortCloser = &port{}
	_ spi.Conn       = &spiConn{}
	_ conn.Limits    = &spiConn{}
)
