// Package bus moves single register values between the host and one
// addressed I2C device.
package bus

import (
	"fmt"
	"io"
)

// Port is an address-bound byte stream to the device. Each Write and Read
// is one bus transfer.
type Port interface {
	io.Reader
	io.Writer
}

// Handle is an exclusively owned, open Port. It is invalid after Close.
type Handle struct {
	name   string
	port   Port
	closer io.Closer
	closed bool
}

// NewHandle wraps an open port. closer may be nil.
func NewHandle(name string, port Port, closer io.Closer) *Handle {
	return &Handle{name: name, port: port, closer: closer}
}

// Valid reports whether register operations may use the handle.
func (h *Handle) Valid() bool {
	return h != nil && h.port != nil && !h.closed
}

func (h *Handle) Write(p []byte) (int, error) {
	if !h.Valid() {
		return 0, ErrClosed
	}
	return h.port.Write(p)
}

func (h *Handle) Read(p []byte) (int, error) {
	if !h.Valid() {
		return 0, ErrClosed
	}
	return h.port.Read(p)
}

// Close releases the underlying bus. Calling it again is a no-op.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true
	if h.closer == nil {
		return nil
	}
	if err := h.closer.Close(); err != nil {
		return fmt.Errorf("%s: close: %w", h.name, err)
	}
	return nil
}

func (h *Handle) String() string {
	if h == nil {
		return "<nil>"
	}
	return h.name
}

// Transport performs synchronous single-register operations. It is not safe
// for concurrent use; the bus protocol cannot interleave transfers.
type Transport struct {
	port Port
}

// NewTransport binds a transport to an open port, usually a *Handle.
func NewTransport(p Port) *Transport {
	return &Transport{port: p}
}

// WriteRegister writes value to addr as one 2-byte transfer.
func (t *Transport) WriteRegister(addr, value byte) error {
	if t == nil || t.port == nil {
		return &TransportError{Op: "write", Reg: addr, Kind: ErrUnavailable, Want: 2}
	}
	n, err := t.port.Write([]byte{addr, value})
	if err != nil {
		return &TransportError{Op: "write", Reg: addr, Kind: ErrUnavailable, N: n, Want: 2, Err: err}
	}
	if n != 2 {
		return &TransportError{Op: "write", Reg: addr, Kind: ErrShortWrite, N: n, Want: 2}
	}
	return nil
}

// ReadRegister sets the register pointer with a 1-byte write, then reads one
// byte in a separate transfer.
func (t *Transport) ReadRegister(addr byte) (byte, error) {
	if t == nil || t.port == nil {
		return 0, &TransportError{Op: "read", Reg: addr, Kind: ErrUnavailable, Want: 1}
	}
	n, err := t.port.Write([]byte{addr})
	if err != nil {
		return 0, &TransportError{Op: "write", Reg: addr, Kind: ErrUnavailable, N: n, Want: 1, Err: err}
	}
	if n != 1 {
		return 0, &TransportError{Op: "write", Reg: addr, Kind: ErrShortWrite, N: n, Want: 1}
	}

	buf := make([]byte, 1)
	n, err = t.port.Read(buf)
	if err != nil {
		return 0, &TransportError{Op: "read", Reg: addr, Kind: ErrUnavailable, N: n, Want: 1, Err: err}
	}
	if n != 1 {
		return 0, &TransportError{Op: "read", Reg: addr, Kind: ErrShortRead, N: n, Want: 1}
	}
	return buf[0], nil
}
