package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()

	paths, err := NewPaths(PathsConfig{
		DataDir: filepath.Join(base, "cleaned_data"),
		OutDir:  filepath.Join(base, "reports", "figures"),
	})
	require.NoError(t, err)

	t.Run("inputs live in the data dir", func(t *testing.T) {
		assert.Equal(t, filepath.Join(base, "cleaned_data", "top_predictors_rq1.csv"), paths.TopPredictorsCSV)
		assert.Equal(t, filepath.Join(base, "cleaned_data", "roi_merged_full.csv"), paths.ROIFullCSV)
		assert.Equal(t, filepath.Join(base, "cleaned_data", "did_rq3_summary.csv"), paths.DiDSummaryCSV)
		assert.Equal(t, filepath.Join(base, "cleaned_data", "rq3_price_summary.csv"), paths.PriceSummaryCSV)
		assert.Equal(t, filepath.Join(base, "cleaned_data", "rq3_license_share.csv"), paths.LicenseShareCSV)
		assert.Equal(t, paths.GetInputPath("roi_merged_full.csv"), paths.ROIFullCSV)
	})

	t.Run("artefacts live in the out dir", func(t *testing.T) {
		assert.Equal(t, filepath.Join(paths.OutDir, "manifest.json"), paths.ManifestFile)
		assert.Equal(t, filepath.Join(paths.OutDir, "figures_data.xlsx"), paths.WorkbookFile)
		assert.Equal(t, filepath.Join(paths.OutDir, "data", "fig_rq1_rf_importance.csv"),
			paths.GetDataExportPath("fig_rq1_rf_importance"))
		assert.Equal(t, filepath.Join(paths.OutDir, "x.png"), paths.GetFigurePath("x.png"))
	})

	t.Run("relative dirs resolve to absolute", func(t *testing.T) {
		p, err := NewPaths(PathsConfig{DataDir: "in", OutDir: "out"})
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(p.DataDir))
		assert.True(t, filepath.IsAbs(p.OutDir))
		assert.True(t, filepath.IsAbs(p.LogsDir))
		assert.Equal(t, "logs", filepath.Base(p.LogsDir))
	})
}

func TestPaths_LogFile(t *testing.T) {
	base := t.TempDir()
	paths, err := NewPaths(PathsConfig{DataDir: base, OutDir: base, LogsDir: filepath.Join(base, "logs")})
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  LoggingConfig
		want string
	}{
		{"console needs no file", LoggingConfig{Output: "console"}, ""},
		{"file output defaults to logs dir", LoggingConfig{Output: "file"}, filepath.Join(base, "logs", "rentalfigs.log")},
		{"both defaults to logs dir", LoggingConfig{Output: "both"}, paths.GetLogPath("rentalfigs.log")},
		{"explicit path wins", LoggingConfig{Output: "file", FilePath: "/var/log/figs.log"}, "/var/log/figs.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths.LogFile(tt.cfg))
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths, err := NewPaths(PathsConfig{DataDir: base, OutDir: filepath.Join(base, "a", "b", "c")})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())
	info, err := os.Stat(paths.OutDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// idempotent
	assert.NoError(t, paths.EnsureDirectories())
}

func TestCityFigureFile(t *testing.T) {
	tests := []struct {
		city string
		want string
	}{
		{"Vancouver", "fig_rq2_roi_top_vancouver.png"},
		{"Victoria", "fig_rq2_roi_top_victoria.png"},
		{"  North Vancouver ", "fig_rq2_roi_top_north_vancouver.png"},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			assert.Equal(t, tt.want, CityFigureFile(tt.city))
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.csv")))
}
