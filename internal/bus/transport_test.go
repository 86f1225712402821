package bus

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

const addr = 0x6A

func TestWriteRegisterPeriph(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: addr, W: []byte{0x10, 0x60}}},
		DontPanic: true,
	}
	h := NewPeriph(pb, addr)
	tr := NewTransport(h)

	if err := tr.WriteRegister(0x10, 0x60); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("playback not drained: %v", err)
	}
}

func TestReadRegisterPeriph(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: addr, W: []byte{0x0F}},
			{Addr: addr, R: []byte{0x6C}},
		},
		DontPanic: true,
	}
	h := NewPeriph(pb, addr)
	tr := NewTransport(h)

	v, err := tr.ReadRegister(0x0F)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != 0x6C {
		t.Errorf("ReadRegister(0x0F) = 0x%02X, want 0x6C", v)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("playback not drained: %v", err)
	}
}

func TestReadRegisterPeriphBusError(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	tr := NewTransport(NewPeriph(pb, addr))

	_, err := tr.ReadRegister(0x1E)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Reg != 0x1E {
		t.Errorf("err = %#v, want *TransportError for 0x1E", err)
	}
}

// stubPort returns fixed byte counts and errors.
type stubPort struct {
	wn, rn   int
	werr     error
	rerr     error
	rv       byte
	writes   [][]byte
	numReads int
}

func (s *stubPort) Write(p []byte) (int, error) {
	s.writes = append(s.writes, append([]byte(nil), p...))
	if s.wn < 0 {
		return len(p), s.werr
	}
	return s.wn, s.werr
}

func (s *stubPort) Read(p []byte) (int, error) {
	s.numReads++
	if len(p) > 0 {
		p[0] = s.rv
	}
	if s.rn < 0 {
		return len(p), s.rerr
	}
	return s.rn, s.rerr
}

func TestTransportErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		port *stubPort
		read bool
		kind error
	}{
		{"write short", &stubPort{wn: 1, rn: -1}, false, ErrShortWrite},
		{"write failed", &stubPort{wn: 0, werr: errors.New("nack"), rn: -1}, false, ErrUnavailable},
		{"read pointer short", &stubPort{wn: 0, rn: -1}, true, ErrShortWrite},
		{"read short", &stubPort{wn: -1, rn: 0}, true, ErrShortRead},
		{"read failed", &stubPort{wn: -1, rn: 0, rerr: errors.New("nack")}, true, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTransport(tt.port)
			var err error
			if tt.read {
				_, err = tr.ReadRegister(0x22)
			} else {
				err = tr.WriteRegister(0x10, 0x60)
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestReadRegisterDoesNotReadAfterShortPointerWrite(t *testing.T) {
	p := &stubPort{wn: 0, rn: -1}
	if _, err := NewTransport(p).ReadRegister(0x1E); err == nil {
		t.Fatal("expected error")
	}
	if p.numReads != 0 {
		t.Errorf("reads after failed pointer write = %d, want 0", p.numReads)
	}
}

func TestClosedHandleIsUnavailable(t *testing.T) {
	h := NewHandle("stub", &stubPort{wn: -1, rn: -1}, nil)
	if !h.Valid() {
		t.Fatal("new handle not valid")
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if h.Valid() {
		t.Fatal("closed handle still valid")
	}

	err := NewTransport(h).WriteRegister(0x12, 0x40)
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrUnavailable wrapping ErrClosed", err)
	}
}

func TestNilTransport(t *testing.T) {
	var tr *Transport
	if _, err := tr.ReadRegister(0x1E); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
