package bus

import (
	"errors"
	"fmt"
)

// Kinds of transport failure. Match with errors.Is.
var (
	ErrUnavailable = errors.New("device unavailable")
	ErrShortWrite  = errors.New("short write")
	ErrShortRead   = errors.New("short read")
	ErrClosed      = errors.New("bus handle closed")
)

// TransportError reports a failed or incomplete register transfer. The
// register pointer state of the device is unknown after one; callers must
// not retry.
type TransportError struct {
	Op   string // "open", "write" or "read"
	Reg  byte
	Kind error // ErrUnavailable, ErrShortWrite or ErrShortRead
	N    int   // bytes moved
	Want int   // bytes requested
	Err  error // underlying error, may be nil
}

func (e *TransportError) Error() string {
	var msg string
	if e.Op == "open" {
		msg = fmt.Sprintf("bus open: %v", e.Kind)
	} else {
		msg = fmt.Sprintf("bus %s 0x%02X: %v", e.Op, e.Reg, e.Kind)
	}
	if e.Kind == ErrShortWrite || e.Kind == ErrShortRead {
		msg += fmt.Sprintf(" (%d of %d bytes)", e.N, e.Want)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
