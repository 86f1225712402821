package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/inertial_telemetry/internal/acquire"
	"github.com/relabs-tech/inertial_telemetry/internal/bus"
	"github.com/relabs-tech/inertial_telemetry/internal/config"
	"github.com/relabs-tech/inertial_telemetry/internal/sink"
)

// OpenBus opens the sensor bus handle selected by BUS_DRIVER.
func OpenBus(cfg *config.Config) (*bus.Handle, error) {
	switch cfg.BusDriver {
	case config.DriverSim:
		return bus.OpenSimulated(), nil
	case config.DriverI2CDev:
		return bus.OpenDevice(cfg.I2CDevice, cfg.I2CAddr)
	case config.DriverPeriph:
		return bus.OpenPeriph(cfg.I2CBus, cfg.I2CAddr)
	}
	return nil, fmt.Errorf("unknown bus driver %q", cfg.BusDriver)
}

// LoopOptions maps configuration onto the acquisition loop.
func LoopOptions(cfg *config.Config) acquire.Options {
	opts := acquire.DefaultOptions()
	opts.AccelCtrl = cfg.AccelCtrl
	opts.GyroCtrl = cfg.GyroCtrl
	opts.BDUCtrl = cfg.BDUCtrl
	opts.Int1Route = cfg.Int1Route
	opts.VerifyWhoAmI = cfg.VerifyWhoAmI
	opts.Yield = time.Duration(cfg.PollYieldMicros) * time.Microsecond
	opts.Source = fmt.Sprintf("lsm6dsox@0x%02X", cfg.I2CAddr)
	return opts
}

// BuildSinks assembles the configured outputs. The log sink is always
// present.
func BuildSinks(cfg *config.Config) (sink.Fanout, error) {
	out := sink.Fanout{sink.NewLog(log.StandardLogger(), cfg.LogSampleEvery)}

	if cfg.MQTTEnabled {
		m, err := sink.DialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, cfg.TopicSample)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	if cfg.SerialPort != "" {
		s, err := sink.OpenSerial(cfg.SerialPort, uint(cfg.SerialBaudRate))
		if err != nil {
			return nil, errors.Join(err, out.Close())
		}
		log.Infof("producer: serial downlink on %s at %d baud", cfg.SerialPort, cfg.SerialBaudRate)
		out = append(out, s)
	}
	return out, nil
}

// RunProducer acquires samples until ctx is done or the bus fails.
func RunProducer(ctx context.Context, cfg *config.Config) error {
	log.Infof("producer: opening %s bus", cfg.BusDriver)
	h, err := OpenBus(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(); err != nil {
			log.Warnf("producer: %v", err)
		}
	}()
	log.Infof("producer: bus %s ready", h)

	sinks, err := BuildSinks(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Warnf("producer: closing sinks: %v", err)
		}
	}()

	loop := acquire.New(bus.NewTransport(h), LoopOptions(cfg))
	return loop.Run(ctx, sinks)
}
