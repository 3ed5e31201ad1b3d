package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/vali/internal/cli"
	"github.com/aretw0/vali/internal/config"
)

// errInvalid marks a run whose data failed validation; the result has
// already been printed.
var errInvalid = errors.New("validation failed")

var rootCmd = &cobra.Command{
	Use:           "vali",
	Short:         "vali validates and normalizes data against declarative schemes",
	Long:          `vali checks JSON or YAML documents against schemes (types, defaults, aliases, bounds, enums, hooks) and prints the normalized result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default $"+config.EnvVar+" or ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// loadConfig reads the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newApp loads the configuration and builds the engine behind it.
func newApp(cmd *cobra.Command, jsonLogs bool) (*cli.App, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger := cli.NewLogger(cfg, debug, jsonLogs)
	app, err := cli.NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing vali: %w", err)
	}
	return app, logger, nil
}
