// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/inertial_telemetry/internal/app"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "register_debug",
		Short: "LSM6DSOX register debug tool (websocket)",
		Long: `register_debug opens the sensor bus and serves raw register access on /ws.
Writes are refused outside REGISTER_DEBUG_ALLOWED_RANGES.
Do not run it while imu_producer owns the same bus.`,
		RunE: app.RunWith(app.RunRegisterDebug),
	}
	app.CommonFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
