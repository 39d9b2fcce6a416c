package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains every file location used by a figure run.
// This is the single source of truth for input and output paths.
type Paths struct {
	DataDir string
	OutDir  string
	LogsDir string

	// Input tables
	TopPredictorsCSV string
	ROIFullCSV       string
	DiDSummaryCSV    string
	PriceSummaryCSV  string
	LicenseShareCSV  string

	// Run artefacts
	ManifestFile  string
	WorkbookFile  string
	DataExportDir string
}

// NewPaths resolves the configured directories to absolute paths.
// Relative directories are taken from the current working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir %s: %w", cfg.DataDir, err)
	}
	outDir, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve out dir %s: %w", cfg.OutDir, err)
	}
	logsDir := cfg.LogsDir
	if logsDir == "" {
		logsDir = DefaultLogsDir
	}
	logsDir, err = filepath.Abs(logsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir %s: %w", cfg.LogsDir, err)
	}

	p := &Paths{
		DataDir: dataDir,
		OutDir:  outDir,
		LogsDir: logsDir,

		ManifestFile:  filepath.Join(outDir, ManifestFileName),
		WorkbookFile:  filepath.Join(outDir, WorkbookFileName),
		DataExportDir: filepath.Join(outDir, DataExportDir),
	}
	p.TopPredictorsCSV = p.GetInputPath(TopPredictorsFile)
	p.ROIFullCSV = p.GetInputPath(ROIFullFile)
	p.DiDSummaryCSV = p.GetInputPath(DiDSummaryFile)
	p.PriceSummaryCSV = p.GetInputPath(PriceSummaryFile)
	p.LicenseShareCSV = p.GetInputPath(LicenseShareFile)
	return p, nil
}

// EnsureDirectories creates the output directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.OutDir, err)
	}
	slog.Default().Debug("Ensured directory exists", slog.String("directory", p.OutDir))
	return nil
}

// GetFigurePath returns the output path for a figure file
func (p *Paths) GetFigurePath(filename string) string {
	return filepath.Join(p.OutDir, filename)
}

// GetInputPath returns the path of a table in the data directory
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogFile returns the file the logger writes to. File output without an
// explicit path goes to rentalfigs.log in the logs directory.
func (p *Paths) LogFile(cfg LoggingConfig) string {
	if cfg.FilePath != "" || strings.EqualFold(cfg.Output, "console") {
		return cfg.FilePath
	}
	return p.GetLogPath(LogFileName)
}

// GetDataExportPath returns the path of an exported figure data CSV
func (p *Paths) GetDataExportPath(figureID string) string {
	return filepath.Join(p.DataExportDir, figureID+".csv")
}

// CityFigureFile returns the figure file name for a per-city ROI ranking
func CityFigureFile(city string) string {
	slug := strings.ToLower(strings.TrimSpace(city))
	slug = strings.Join(strings.Fields(slug), "_")
	return fmt.Sprintf("fig_rq2_roi_top_%s.png", slug)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("data", p.DataDir),
			slog.String("out", p.OutDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("inputs",
			slog.String("top_predictors", p.TopPredictorsCSV),
			slog.String("roi_full", p.ROIFullCSV),
			slog.String("price_summary", p.PriceSummaryCSV),
			slog.String("license_share", p.LicenseShareCSV),
		))
}
