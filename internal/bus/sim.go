// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/inertial_telemetry/internal/sensors"
)

// Simulated is an in-memory LSM6DSOX register file that generates smooth
// changing output data. It behaves like the real part at the register level:
// output registers are little-endian, STATUS_REG reports fresh data only
// once the accelerometer or gyroscope has been enabled, and a write of one
// byte sets the register pointer.
type Simulated struct {
	mu sync.Mutex

	regs  [256]byte
	ptr   byte
	start time.Time
	now   func() time.Time

	readyEvery  int
	statusReads int
}

// NewSimulated returns a device in its power-on state.
func NewSimulated() *Simulated {
	s := &Simulated{
		start:      time.Now(),
		now:        time.Now,
		readyEvery: 1,
	}
	s.regs[sensors.RegWhoAmI] = sensors.WhoAmIValue
	s.regs[sensors.RegCtrl3C] = 0x04 // IF_INC
	s.regs[sensors.RegCtrl9XL] = 0xE0
	return s
}

// OpenSimulated wraps a fresh simulated device in a Handle.
func OpenSimulated() *Handle {
	return NewHandle("sim@0x6A", NewSimulated(), nil)
}

// SetReadyEvery makes STATUS_REG report new data on every nth read only.
func (s *Simulated) SetReadyEvery(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.readyEvery = n
}

// Register returns the current content of a register without side effects.
func (s *Simulated) Register(r sensors.Register) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[r]
}

func (s *Simulated) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(p) == 0 {
		return 0, nil
	}
	s.ptr = p[0]
	for _, v := range p[1:] {
		if !readOnly(sensors.Register(s.ptr)) {
			s.regs[s.ptr] = v
		}
		s.advance()
	}
	return len(p), nil
}

func (s *Simulated) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range p {
		p[i] = s.read(sensors.Register(s.ptr))
		s.advance()
	}
	return len(p), nil
}

func (s *Simulated) advance() {
	if s.regs[sensors.RegCtrl3C]&0x04 != 0 {
		s.ptr++
	}
}

func (s *Simulated) read(r sensors.Register) byte {
	if r != sensors.RegStatus {
		return s.regs[r]
	}
	xlOn := s.regs[sensors.RegCtrl1XL]&0xF0 != 0
	gOn := s.regs[sensors.RegCtrl2G]&0xF0 != 0
	if !xlOn && !gOn {
		return 0
	}
	s.statusReads++
	if s.statusReads%s.readyEvery != 0 {
		return 0
	}
	s.latch()
	status := sensors.StatusTDA
	if xlOn {
		status |= sensors.StatusXLDA
	}
	if gOn {
		status |= sensors.StatusGDA
	}
	return status
}

// latch writes a new output sample into the data registers.
func (s *Simulated) latch() {
	elapsed := s.now().Sub(s.start).Seconds()

	put := func(lo sensors.Register, v float64) {
		c := int16(math.Max(-32768, math.Min(32767, math.Round(v))))
		s.regs[lo] = byte(uint16(c))
		s.regs[lo+1] = byte(uint16(c) >> 8)
	}

	// ±2 g at 0.061 mg/LSB, ±250 dps at 8.75 mdps/LSB, 256 LSB/°C around 25 °C.
	put(sensors.RegOutXLA, 0.20*math.Sin(elapsed)/0.000061)
	put(sensors.RegOutYLA, 0.15*math.Cos(elapsed*0.7)/0.000061)
	put(sensors.RegOutZLA, 1.0/0.000061)
	put(sensors.RegOutXLG, 20*math.Cos(elapsed)/0.00875)
	put(sensors.RegOutYLG, -10.5*math.Sin(elapsed*0.7)/0.00875)
	put(sensors.RegOutZLG, 30/0.00875)
	put(sensors.RegOutTempL, (28.0+0.5*math.Sin(elapsed/60)-25)*256)
}

func readOnly(r sensors.Register) bool {
	switch {
	case r == sensors.RegWhoAmI, r == sensors.RegStatus:
		return true
	case r >= sensors.RegOutTempL && r <= sensors.RegOutZHA:
		return true
	}
	return false
}
