package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/inertial_telemetry/internal/config"
)

// DefaultConfigPath is where every tool looks for its configuration.
const DefaultConfigPath = "./inertial_config.txt"

// CommonFlags adds the flags every tool shares.
func CommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", DefaultConfigPath, "path to configuration file")
	cmd.PersistentFlags().Bool("debug", false, "toggle debug logging")
}

// Prepare loads the configuration named by --config, sets the log level and
// returns a context that is cancelled on SIGINT or SIGTERM.
func Prepare(cmd *cobra.Command) (context.Context, context.CancelFunc, *config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if err := config.InitGlobal(path); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, stop, cfg, nil
}

// RunWith wraps a runner as a cobra RunE.
func RunWith(run func(ctx context.Context, cfg *config.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop, cfg, err := Prepare(cmd)
		if err != nil {
			return err
		}
		defer stop()
		return run(ctx, cfg)
	}
}
