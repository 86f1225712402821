//go:build !linux

package bus

import (
	"errors"
	"fmt"
)

// OpenDevice is only available on Linux.
func OpenDevice(path string, addr uint16) (*Handle, error) {
	return nil, &TransportError{Op: "open", Kind: ErrUnavailable,
		Err: fmt.Errorf("%s@0x%02X: %w", path, addr, errors.New("i2c-dev requires linux"))}
}
