package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rentalfigs/internal/config"
	"rentalfigs/internal/exporter"
	"rentalfigs/internal/figures"
	"rentalfigs/internal/infrastructure"
	"rentalfigs/internal/operations"
	"rentalfigs/internal/render"
	"rentalfigs/internal/validation"
)

// GenerateOptions holds the flags of the generate command.
type GenerateOptions struct {
	Workers    int
	FailFast   bool
	Only       []string
	ExportData bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render every figure to the output directory",
		Long: `Render the figures from the input tables.

A figure whose optional input table is missing is skipped with a warning.
Any other failure aborts only that figure; the remaining figures still run
and the command exits non-zero at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "number of figures rendered at once")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop starting figures after the first failure")
	cmd.Flags().StringSliceVar(&opts.Only, "only", nil, "render only these figure IDs (comma separated)")
	cmd.Flags().BoolVar(&opts.ExportData, "export-data", false, "write the plotted data as CSV files and an Excel workbook")

	return cmd
}

func runGenerate(cmd *cobra.Command, rootOpts *RootOptions, opts *GenerateOptions) error {
	ctx := cmd.Context()

	flags := cmd.Flags()
	a, err := newApp(rootOpts, func(cfg *config.Config) {
		if flags.Changed("workers") {
			cfg.Figures.Workers = opts.Workers
		}
		if flags.Changed("fail-fast") {
			cfg.Figures.FailFast = opts.FailFast
		}
		if flags.Changed("only") {
			cfg.Figures.Only = opts.Only
		}
		if flags.Changed("export-data") {
			cfg.Figures.ExportData = opts.ExportData
		}
	})
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	defs, err := figures.Select(figures.Definitions(a.paths, a.cfg.Figures), a.cfg.Figures.Only)
	if err != nil {
		return err
	}

	if err := validation.NewFileValidator(a.logger).Preflight(ctx, a.paths.DataDir, a.paths.OutDir, defs); err != nil {
		return err
	}

	var exp *exporter.FigureExporter
	if a.cfg.Figures.ExportData {
		exp = exporter.NewFigureExporter(a.paths)
	}

	registry, err := operations.NewFigureRegistry(defs, a.paths, render.NewRenderer(a.cfg.Render), exp)
	if err != nil {
		return err
	}

	metrics, err := infrastructure.CreateFigureMetrics(a.providers.Meter)
	if err != nil {
		return err
	}

	runner := operations.NewRunner(registry, a.paths,
		operations.RunnerConfig{Workers: a.cfg.Figures.Workers, FailFast: a.cfg.Figures.FailFast},
		operations.WithLogger(a.logger),
		operations.WithTracer(a.providers.Tracer),
		operations.WithMetrics(metrics),
		operations.WithExporter(exp),
	)

	manifest, runErr := runner.Run(ctx)
	fmt.Fprint(cmd.OutOrStdout(), manifest.Summary())
	return runErr
}
