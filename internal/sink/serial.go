package sink

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_telemetry/internal/imu"
)

// Serial writes one CSV line per sample:
//
//	seq,unix_ms,ax,ay,az,gx,gy,gz,temp_c
type Serial struct {
	w   io.WriteCloser
	buf []byte
}

// OpenSerial opens a downlink port at 8N1.
func OpenSerial(portName string, baud uint) (*Serial, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return nil, fmt.Errorf("serial sink: open %s: %w", portName, err)
	}
	return NewSerial(port), nil
}

// NewSerial writes lines to w.
func NewSerial(w io.WriteCloser) *Serial {
	return &Serial{w: w}
}

// AppendLine appends the CSV encoding of s, newline included.
func AppendLine(b []byte, s imu.Sample) []byte {
	b = strconv.AppendUint(b, s.Seq, 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, s.Time.UnixMilli(), 10)
	for _, v := range [...]float64{s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.TempC} {
		b = append(b, ',')
		b = strconv.AppendFloat(b, v, 'f', 6, 64)
	}
	return append(b, '\n')
}

func (s *Serial) Publish(sample imu.Sample) error {
	s.buf = AppendLine(s.buf[:0], sample)
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("serial sink: %w", err)
	}
	return nil
}

func (s *Serial) Close() error {
	return s.w.Close()
}
