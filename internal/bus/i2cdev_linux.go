//go:build linux

package bus

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// I2C_SLAVE from <linux/i2c-dev.h>.
const ioctlI2CSlave = 0x0703

type devPort struct {
	fd int
}

func (p *devPort) Write(b []byte) (int, error) { return unix.Write(p.fd, b) }
func (p *devPort) Read(b []byte) (int, error)  { return unix.Read(p.fd, b) }
func (p *devPort) Close() error                { return unix.Close(p.fd) }

// OpenDevice opens an i2c-dev character device such as /dev/i2c-1 and
// selects addr. Transfers are plain read(2)/write(2) calls, so short
// transfers are reported with their real byte counts.
func OpenDevice(path string, addr uint16) (*Handle, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &TransportError{Op: "open", Kind: ErrUnavailable, Err: fmt.Errorf("%s: %w", path, err)}
	}
	if err := unix.IoctlSetInt(fd, ioctlI2CSlave, int(addr)); err != nil {
		_ = unix.Close(fd)
		return nil, &TransportError{Op: "open", Kind: ErrUnavailable, Err: fmt.Errorf("%s: I2C_SLAVE 0x%02X: %w", path, addr, err)}
	}
	p := &devPort{fd: fd}
	return NewHandle(fmt.Sprintf("%s@0x%02X", path, addr), p, p), nil
}
