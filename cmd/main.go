package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/factdeck-backend/internal/app"
	"github.com/yungbote/factdeck-backend/internal/platform/logger"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "factdeck",
		Short:         "Fact deck study backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file (overrides CONFIG_FILE)")
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newTokenCmd(),
		newAlertsCmd(),
	)
	return root
}

// setup loads config and builds the logger shared by every subcommand.
func setup(cmd *cobra.Command) (app.Config, *logger.Logger, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv("CONFIG_FILE", path); err != nil {
			return app.Config{}, nil, err
		}
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
