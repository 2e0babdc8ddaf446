// Command kingdomctl runs the console's reporting flows from a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/bootstrap"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/config"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "kingdomctl",
	Short:         "Kingdom Barber reporting tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.AddCommand(reportCmd, diagnoseCmd, schemaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApp loads configuration and wires the application singletons.
func newApp(ctx context.Context) (*bootstrap.App, func(), error) {
	cfg := config.Load()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	} else if level == "info" {
		level = "warn"
	}

	logger, err := logging.New(level, true)
	if err != nil {
		return nil, nil, err
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return app, func() {
		if err := app.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
		_ = logger.Sync()
	}, nil
}
