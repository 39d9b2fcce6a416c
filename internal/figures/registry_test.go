package figures

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalfigs/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	paths, err := config.NewPaths(config.PathsConfig{
		DataDir: filepath.Join(base, "cleaned_data"),
		OutDir:  filepath.Join(base, "figures"),
	})
	require.NoError(t, err)
	return paths
}

func TestDefinitions(t *testing.T) {
	paths := testPaths(t)
	defs := Definitions(paths, config.Default().Figures)

	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
		assert.Equal(t, d.ID+".png", d.OutputFile)
		assert.NotNil(t, d.Build)
	}
	assert.Equal(t, []string{
		"fig_rq1_rf_importance",
		"fig_rq2_roi_top10_all",
		"fig_rq2_roi_top_vancouver",
		"fig_rq2_roi_top_victoria",
		"fig_rq3_avg_price_prepost",
		"fig_rq3_license_share_prepost",
	}, ids)

	assert.Equal(t, paths.TopPredictorsCSV, defs[0].InputPath)
	assert.Equal(t, paths.ROIFullCSV, defs[3].InputPath)
	assert.False(t, defs[1].Optional)
	assert.True(t, defs[4].Optional)
	assert.True(t, defs[5].Optional)
	assert.Equal(t, "RQ3 avg price figure", defs[4].Description)
}

func TestDefinitions_CustomCities(t *testing.T) {
	cfg := config.Default().Figures
	cfg.Cities = []string{"North Vancouver"}
	cfg.TopN = 1

	defs := Definitions(testPaths(t), cfg)
	require.Len(t, defs, 5)
	assert.Equal(t, "fig_rq2_roi_top_north_vancouver", defs[2].ID)

	chart, err := defs[2].Build(mustRead(t, "roi_merged_full.csv",
		"city,neighbourhood,roi_ratio\nNorth Vancouver,Lonsdale,0.02\nnorth vancouver,Lynn Valley,0.03\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Lynn Valley"}, chart.Categories)
	assert.Equal(t, "RQ2: Top Neighbourhoods by ROI — North Vancouver", chart.Title)
}

func TestSelect(t *testing.T) {
	defs := Definitions(testPaths(t), config.Default().Figures)

	t.Run("empty keeps all", func(t *testing.T) {
		got, err := Select(defs, nil)
		require.NoError(t, err)
		assert.Len(t, got, len(defs))
	})

	t.Run("keeps execution order", func(t *testing.T) {
		got, err := Select(defs, []string{"fig_rq3_avg_price_prepost", " fig_rq1_rf_importance.png "})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "fig_rq1_rf_importance", got[0].ID)
		assert.Equal(t, "fig_rq3_avg_price_prepost", got[1].ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := Select(defs, []string{"fig_nope"})
		assert.ErrorContains(t, err, "fig_nope")
	})
}
