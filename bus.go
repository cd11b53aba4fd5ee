package ssd1289

import (
	"fmt"

	"periph.io/x/conn/v3"
)

// Bus transmits 16-bit words to the controller, one write cycle per word.
//
// A Dev picks exactly one implementation when it is created and keeps it for
// its whole lifetime. Implementations are not safe for concurrent use.
type Bus interface {
	// WriteWords transmits words in order. The caller sets the D/C line
	// beforehand.
	WriteWords(words []uint16) error
	fmt.Stringer
}

// spiBus splits every word into two bytes, most significant first.
type spiBus struct {
	c         conn.Conn
	maxTxSize int
	buf       []byte
}

func newSPIBus(c conn.Conn) *spiBus {
	// Use the conn's limit when it has one, otherwise 4096 bytes.
	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096
	}
	// Never split a word across two transfers.
	maxTxSize &^= 1
	if maxTxSize == 0 {
		maxTxSize = 2
	}
	return &spiBus{c: c, maxTxSize: maxTxSize}
}

func (b *spiBus) WriteWords(words []uint16) error {
	for len(words) > 0 {
		n := len(words)
		if 2*n > b.maxTxSize {
			n = b.maxTxSize / 2
		}
		if cap(b.buf) < 2*n {
			b.buf = make([]byte, 2*n)
		}
		buf := b.buf[:2*n]
		for i, w := range words[:n] {
			buf[2*i] = byte(w >> 8)
			buf[2*i+1] = byte(w)
		}
		if err := b.c.Tx(buf, nil); err != nil {
			return err
		}
		words = words[n:]
	}
	return nil
}

func (b *spiBus) String() string {
	return fmt.Sprintf("spi(%s)", b.c)
}
