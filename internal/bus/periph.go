// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

type periphPort struct {
	dev *i2c.Dev
}

func (p periphPort) Write(b []byte) (int, error) {
	return p.dev.Write(b)
}

// Read issues a read-only transaction; periph reports all-or-nothing.
func (p periphPort) Read(b []byte) (int, error) {
	if err := p.dev.Tx(nil, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// OpenPeriph initializes periph, opens the named I2C bus ("" for the
// default, "1" for /dev/i2c-1) and binds it to addr.
func OpenPeriph(busName string, addr uint16) (*Handle, error) {
	if _, err := host.Init(); err != nil {
		return nil, &TransportError{Op: "open", Kind: ErrUnavailable, Err: fmt.Errorf("periph host init: %w", err)}
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, &TransportError{Op: "open", Kind: ErrUnavailable, Err: fmt.Errorf("i2c bus %q: %w", busName, err)}
	}
	return NewPeriph(b, addr), nil
}

// NewPeriph binds an already open periph bus to addr. If the bus is an
// io.Closer the handle closes it.
func NewPeriph(b i2c.Bus, addr uint16) *Handle {
	dev := &i2c.Dev{Bus: b, Addr: addr}
	var closer io.Closer
	if c, ok := b.(io.Closer); ok {
		closer = c
	}
	return NewHandle(fmt.Sprintf("%s@0x%02X", b, addr), periphPort{dev: dev}, closer)
}
