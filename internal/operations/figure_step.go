package operations

import (
	"context"
	"fmt"

	"rentalfigs/internal/config"
	"rentalfigs/internal/exporter"
	"rentalfigs/internal/figures"
	"rentalfigs/internal/render"
	"rentalfigs/internal/table"
)

// Metadata keys recorded by FigureStep
const (
	metadataCategories = "categories"
	metadataDataCSV    = "data_csv"
)

// FigureStep renders one figure: load the input table, build the chart,
// draw it to PNG and optionally export the chart data
type FigureStep struct {
	def      figures.Definition
	output   string
	renderer *render.Renderer
	exporter *exporter.FigureExporter
}

// NewFigureStep creates the step for def. exp may be nil.
func NewFigureStep(def figures.Definition, paths *config.Paths, renderer *render.Renderer, exp *exporter.FigureExporter) *FigureStep {
	return &FigureStep{
		def:      def,
		output:   paths.GetFigurePath(def.OutputFile),
		renderer: renderer,
		exporter: exp,
	}
}

// ID returns the figure ID
func (s *FigureStep) ID() string { return s.def.ID }

// Name returns the figure description
func (s *FigureStep) Name() string { return s.def.Description }

// OutputFile returns the PNG path
func (s *FigureStep) OutputFile() string { return s.output }

// RequiredInputs returns the input table of the figure
func (s *FigureStep) RequiredInputs() []DataRequirement {
	return []DataRequirement{{Path: s.def.InputPath, Optional: s.def.Optional}}
}

// Execute loads, builds, renders and exports the figure
func (s *FigureStep) Execute(ctx context.Context, state *StepState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := table.Load(s.def.InputPath)
	if err != nil {
		return err
	}

	chart, err := s.def.Build(t)
	if err != nil {
		return err
	}
	state.SetMetadata(metadataCategories, len(chart.Categories))

	if err := s.renderer.Render(chart, s.output); err != nil {
		return err
	}

	if s.exporter != nil {
		path, err := s.exporter.ExportChart(chart)
		if err != nil {
			return err
		}
		state.SetMetadata(metadataDataCSV, path)
	}
	return nil
}

// NewFigureRegistry registers one FigureStep per definition, in order
func NewFigureRegistry(defs []figures.Definition, paths *config.Paths, renderer *render.Renderer, exp *exporter.FigureExporter) (*Registry, error) {
	registry := NewRegistry()
	for _, def := range defs {
		if def.Build == nil {
			return nil, fmt.Errorf("figure %s has no build function", def.ID)
		}
		if err := registry.Register(NewFigureStep(def, paths, renderer, exp)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
