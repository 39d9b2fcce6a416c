// Package operations orchestrates a figure run.
//
// Every figure is a Step with a stable ID, an output file and the input
// tables it reads. The Runner executes the registered steps in registration
// order with a bounded number of workers and records the outcome of each one
// in a RunManifest that is written next to the figures.
//
// Core Components:
//
// Step: A single unit of work. FigureStep loads one input table, builds the
// chart and renders it to PNG, optionally exporting the chart data.
//
// Registry: Holds the steps of a run in registration order.
//
// Runner: Executes the steps. A missing optional input skips its step with a
// warning, any other failure fails the step while the remaining steps keep
// running. With FailFast set, no step is started after the first failure.
//
// RunManifest: The persisted record of a run (manifest.json).
//
// Example usage:
//
//	registry, err := operations.NewFigureRegistry(defs, paths, renderer, nil)
//	runner := operations.NewRunner(registry, paths, operations.RunnerConfig{Workers: 1},
//		operations.WithLogger(logger))
//	manifest, err := runner.Run(ctx)
package operations
