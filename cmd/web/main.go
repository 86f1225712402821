package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/inertial_telemetry/internal/app"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "web",
		Short: "serve the latest sample over HTTP and a websocket stream",
		RunE:  app.RunWith(app.RunWeb),
	}
	app.CommonFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
