// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/inertial_telemetry/internal/app"
	"github.com/relabs-tech/inertial_telemetry/internal/bus"
	"github.com/relabs-tech/inertial_telemetry/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "imu_producer",
	Short: "LSM6DSOX acquisition (IMU → MQTT, serial, log)",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "configure the sensor and stream samples until interrupted",
	Long: `run writes the enable sequence (CTRL1_XL, CTRL2_G, CTRL3_C), then polls
STATUS_REG and publishes every new sample to the configured sinks.
Ctrl+C stops the loop at the next iteration boundary.`,
	Example: `  imu_producer run --config ./inertial_config.txt
  INERTIAL_BUS_DRIVER=sim imu_producer run`,
	RunE: app.RunWith(func(ctx context.Context, cfg *config.Config) error {
		log.Info("starting LSM6DSOX producer")
		return app.RunProducer(ctx, cfg)
	}),
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "dump identity and control registers as YAML",
	Long: `probe reads WHO_AM_I and every readable register in the register map
and prints them as YAML. It never writes to the device.`,
	RunE: app.RunWith(func(_ context.Context, cfg *config.Config) error {
		h, err := app.OpenBus(cfg)
		if err != nil {
			return err
		}
		defer h.Close()
		_, err = app.Probe(bus.NewTransport(h), h.String(), os.Stdout)
		return err
	}),
}

func main() {
	app.CommonFlags(rootCmd)
	rootCmd.AddCommand(runCmd, probeCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
