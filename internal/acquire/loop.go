// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package acquire drives an LSM6DSOX through its enable sequence and then
// polls it for samples until stopped.
package acquire

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/imu"
	"github.com/relabs-tech/inertial_telemetry/internal/sensors"
)

// State is the acquisition lifecycle position.
type State int32

const (
	Uninitialized State = iota
	Configuring
	Polling
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Configuring:
		return "configuring"
	case Polling:
		return "polling"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Registers is the single-register transport the loop drives.
// *bus.Transport satisfies it.
type Registers interface {
	WriteRegister(addr, value byte) error
	ReadRegister(addr byte) (byte, error)
}

// Options tunes the enable sequence and the poll loop.
type Options struct {
	AccelCtrl byte // CTRL1_XL
	GyroCtrl  byte // CTRL2_G
	BDUCtrl   byte // CTRL3_C

	// Int1Route writes INT1_CTRL=DRDY before each enable write.
	Int1Route bool
	// VerifyWhoAmI checks WHO_AM_I before configuring.
	VerifyWhoAmI bool

	// Yield sleeps after an empty poll. Zero busy-waits.
	Yield time.Duration

	// Source labels emitted samples.
	Source string
}

// DefaultOptions is 416 Hz, ±2 g, ±250 dps with block data update.
func DefaultOptions() Options {
	return Options{
		AccelCtrl: sensors.Ctrl1XL416Hz2g,
		GyroCtrl:  sensors.Ctrl2G416Hz250,
		BDUCtrl:   sensors.Ctrl3CBDU,
		Source:    "lsm6dsox",
	}
}

// ConfigurationError reports a failed step of the enable sequence.
type ConfigurationError struct {
	Step string
	Reg  sensors.Register
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configure %s (%s): %v", e.Step, e.Reg, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Stats counts loop activity.
type Stats struct {
	Samples    uint64
	EmptyPolls uint64
}

// Loop owns the register transport for its lifetime. Only Stop, State and
// Stats may be called from other goroutines.
type Loop struct {
	regs Registers
	opts Options
	now  func() time.Time

	stop  atomic.Bool
	state atomic.Int32

	seq     uint64
	samples atomic.Uint64
	empty   atomic.Uint64
}

// New returns a loop in the Uninitialized state.
func New(regs Registers, opts Options) *Loop {
	return &Loop{regs: regs, opts: opts, now: time.Now}
}

// Stop requests shutdown. It is observed at the top of the next iteration.
// Calling it more than once has no further effect.
func (l *Loop) Stop() {
	l.stop.Store(true)
}

// StopRequested reports whether Stop has been called.
func (l *Loop) StopRequested() bool {
	return l.stop.Load()
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Stats returns the counters so far.
func (l *Loop) Stats() Stats {
	return Stats{Samples: l.samples.Load(), EmptyPolls: l.empty.Load()}
}

func (l *Loop) setState(s State) {
	old := State(l.state.Swap(int32(s)))
	if old != s {
		log.Debugf("acquire: %s -> %s", old, s)
	}
}

type step struct {
	name  string
	reg   sensors.Register
	value byte
}

func (l *Loop) sequence() []step {
	var seq []step
	if l.opts.Int1Route {
		seq = append(seq, step{"int1 route", sensors.RegInt1Ctrl, sensors.Int1DrdyG})
	}
	seq = append(seq, step{"accel enable", sensors.RegCtrl1XL, l.opts.AccelCtrl})
	if l.opts.Int1Route {
		seq = append(seq, step{"int1 route", sensors.RegInt1Ctrl, sensors.Int1DrdyG})
	}
	seq = append(seq,
		step{"gyro enable", sensors.RegCtrl2G, l.opts.GyroCtrl},
		step{"block data update", sensors.RegCtrl3C, l.opts.BDUCtrl},
	)
	return seq
}

// Configure runs the enable sequence. On success the loop is Polling; on
// failure it is Stopped and the error is a *ConfigurationError.
func (l *Loop) Configure() error {
	if s := l.State(); s != Uninitialized {
		return fmt.Errorf("acquire: configure from state %s", s)
	}
	l.setState(Configuring)

	if l.opts.VerifyWhoAmI {
		id, err := l.regs.ReadRegister(byte(sensors.RegWhoAmI))
		if err != nil {
			l.setState(Stopped)
			return &ConfigurationError{Step: "identify", Reg: sensors.RegWhoAmI, Err: err}
		}
		if id != sensors.WhoAmIValue {
			l.setState(Stopped)
			return &ConfigurationError{Step: "identify", Reg: sensors.RegWhoAmI,
				Err: fmt.Errorf("got 0x%02X, want 0x%02X", id, sensors.WhoAmIValue)}
		}
	}

	for _, s := range l.sequence() {
		if err := l.regs.WriteRegister(byte(s.reg), s.value); err != nil {
			l.setState(Stopped)
			return &ConfigurationError{Step: s.name, Reg: s.reg, Err: err}
		}
		log.Debugf("acquire: %s: %s=0x%02X", s.name, s.reg, s.value)
	}

	l.setState(Polling)
	return nil
}

// Poll runs one iteration: a status read and, if data is ready, the fourteen
// output reads. ok is false when the status register was zero.
func (l *Loop) Poll() (sample imu.Sample, ok bool, err error) {
	status, err := l.regs.ReadRegister(byte(sensors.RegStatus))
	if err != nil {
		return imu.Sample{}, false, err
	}
	if status == 0 {
		l.empty.Add(1)
		return imu.Sample{}, false, nil
	}

	var f imu.Frame
	for i, r := range sensors.SampleRegisters {
		if f[i], err = l.regs.ReadRegister(byte(r)); err != nil {
			return imu.Sample{}, false, err
		}
	}

	sample = f.Decode()
	l.seq++
	sample.Seq = l.seq
	sample.Source = l.opts.Source
	sample.Time = l.now()
	l.samples.Add(1)
	return sample, true, nil
}

// Run configures the device and polls it until Stop is called or ctx is
// done. Each sample goes to sink; sink errors are logged and polling goes
// on. A transport error ends the loop and is returned.
func (l *Loop) Run(ctx context.Context, sink imu.SampleSink) error {
	if err := l.Configure(); err != nil {
		return err
	}
	log.Infof("acquire: polling (accel=0x%02X gyro=0x%02X bdu=0x%02X)",
		l.opts.AccelCtrl, l.opts.GyroCtrl, l.opts.BDUCtrl)

	for !l.stop.Load() && ctx.Err() == nil {
		sample, ok, err := l.Poll()
		if err != nil {
			l.setState(Stopped)
			st := l.Stats()
			log.Errorf("acquire: stopped on bus error after %d samples: %v", st.Samples, err)
			return fmt.Errorf("acquire: poll: %w", err)
		}
		if !ok {
			if l.opts.Yield > 0 {
				time.Sleep(l.opts.Yield)
			}
			continue
		}
		if sink == nil {
			continue
		}
		if err := sink.Publish(sample); err != nil {
			log.Warnf("acquire: sink: %v", err)
		}
	}

	l.setState(Draining)
	st := l.Stats()
	log.Infof("acquire: drained, %d samples, %d empty polls", st.Samples, st.EmptyPolls)
	l.setState(Stopped)
	return nil
}
