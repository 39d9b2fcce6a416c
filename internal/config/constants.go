package config

import "time"

// Application constants
const (
	AppName    = "rentalfigs"
	AppVersion = "1.0.0"

	// Environment variable prefix, e.g. FIGS_PATHS_DATA_DIR
	EnvPrefix = "FIGS"

	// Default directories, relative to the working directory
	DefaultDataDir = "./cleaned_data"
	DefaultOutDir  = "./reports/figures"
	DefaultLogsDir = "logs"
	LogFileName    = "rentalfigs.log"

	// Input tables
	TopPredictorsFile = "top_predictors_rq1.csv"
	ROIFullFile       = "roi_merged_full.csv"
	DiDSummaryFile    = "did_rq3_summary.csv" // legacy, never charted
	PriceSummaryFile  = "rq3_price_summary.csv"
	LicenseShareFile  = "rq3_license_share.csv"

	// Run artefacts written next to the figures
	ManifestFileName = "manifest.json"
	WorkbookFileName = "figures_data.xlsx"
	DataExportDir    = "data"

	// Rendering defaults
	DefaultFigureWidth   = 6.4 // inches
	DefaultFigureHeight  = 4.8 // inches
	DefaultDPI           = 200
	DefaultLabelFontSize = 9.0 // points
	DefaultLabelOffset   = 3.0 // points

	DefaultTopN = 10

	// Server defaults
	DefaultServerAddr      = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 50
	DefaultRateLimitBurst  = 100
)

// DefaultCities are the cities that get a dedicated ROI ranking figure
var DefaultCities = []string{"Vancouver", "Victoria"}
