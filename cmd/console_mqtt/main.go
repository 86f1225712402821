package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/inertial_telemetry/internal/app"
	"github.com/relabs-tech/inertial_telemetry/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "console_mqtt",
		Short: "print published LSM6DSOX samples",
		RunE: app.RunWith(func(ctx context.Context, cfg *config.Config) error {
			return app.RunConsoleMQTT(ctx, cfg, os.Stdout)
		}),
	}
	app.CommonFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
