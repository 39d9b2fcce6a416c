// Package cli implements the rentalfigs command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rentalfigs/internal/config"
	"rentalfigs/internal/infrastructure"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	DataDir    string
	OutDir     string
}

// NewRootCommand creates the root command for the rentalfigs CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Render the rental market research figures",
		Long: `Render the housing-market bar charts from the cleaned analysis tables.

Reads the CSV tables in the data directory and writes one PNG per figure,
plus a run manifest, to the output directory.`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default figures.yaml or configs/figures.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the input CSV tables")
	cmd.PersistentFlags().StringVar(&opts.OutDir, "out-dir", "", "directory the figures are written to")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPublishCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration and applies the global flag overrides
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	if opts.DataDir != "" {
		cfg.Paths.DataDir = opts.DataDir
	}
	if opts.OutDir != "" {
		cfg.Paths.OutDir = opts.OutDir
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(opts.LogLevel)
	}
	return cfg, nil
}

// app bundles what every command needs once the configuration is loaded
type app struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
}

// newApp loads the configuration and starts logging and telemetry.
// mutate adjusts the configuration from command flags before it is
// validated.
func newApp(opts *RootOptions, mutate func(*config.Config)) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, err
	}
	cfg.Logging.FilePath = paths.LogFile(cfg.Logging)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, paths: paths, logger: logger, providers: providers}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.providers.Shutdown(ctx); err != nil {
		a.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}
	_ = infrastructure.CloseLogFile()
}
