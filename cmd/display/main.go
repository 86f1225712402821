package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/inertial_telemetry/internal/app"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "display",
		Short: "show the latest sample on an SSD1306 OLED",
		RunE:  app.RunWith(app.RunDisplay),
	}
	app.CommonFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
