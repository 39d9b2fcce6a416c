// Package config provides configuration management for rentalfigs.
// It loads settings from multiple sources, validates them and resolves
// the input and output paths used by a figure run.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//  1. Default values (Default)
//  2. A YAML file (figures.yaml, configs/figures.yaml or --config)
//  3. Environment variables with the FIGS_ prefix
//  4. Command line flags (applied by the CLI)
//
// # Environment Variables
//
//	FIGS_PATHS_DATA_DIR=./cleaned_data
//	FIGS_PATHS_OUT_DIR=./reports/figures
//	FIGS_FIGURES_WORKERS=2
//	FIGS_FIGURES_CITIES=Vancouver,Victoria
//	FIGS_LOGGING_LEVEL=debug
//	FIGS_PUBLISH_BUCKET=figures
//
// # Path Management
//
// Paths resolves every input table and output artefact from the data and
// output directories:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	roi := paths.ROIFullCSV
//	out := paths.GetFigurePath("fig_rq2_roi_top10_all.png")
package config
