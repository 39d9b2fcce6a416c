package exporter

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rentalfigs/pkg/contracts/domain"
)

func sampleCharts() []*domain.BarChart {
	return []*domain.BarChart{
		{
			ID:         "fig_rq1_rf_importance",
			Title:      "RQ1: Random Forest Top-10 Predictors of Annual Revenue",
			Categories: []string{"price", "rating"},
			Series:     []domain.Series{{Name: "importance", Values: []float64{0.35, 0.25}}},
		},
		{
			ID:         "fig_rq3_avg_price_prepost",
			Title:      "RQ3: Average Nightly Price — Pre vs Post",
			Categories: []string{"Vancouver", "Victoria"},
			Series: []domain.Series{
				{Name: "Pre", Values: []float64{180, math.NaN()}},
				{Name: "Post", Values: []float64{210, 205}},
			},
		},
	}
}

func TestFigureExporter_ExportChart(t *testing.T) {
	paths := setupTestPaths(t)
	exp := NewFigureExporter(paths)

	path, err := exp.ExportChart(sampleCharts()[1])
	require.NoError(t, err)
	assert.Equal(t, paths.GetDataExportPath("fig_rq3_avg_price_prepost"), path)

	assert.Equal(t, [][]string{
		{"category", "Pre", "Post"},
		{"Vancouver", "180", "210"},
		{"Victoria", "", "205"},
	}, readCSV(t, path))
	assert.Len(t, exp.Charts(), 1)
}

func TestFigureExporter_WriteWorkbook(t *testing.T) {
	paths := setupTestPaths(t)
	exp := NewFigureExporter(paths)

	// export concurrently, in reverse order
	charts := sampleCharts()
	var wg sync.WaitGroup
	for i := len(charts) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(c *domain.BarChart) {
			defer wg.Done()
			_, err := exp.ExportChart(c)
			assert.NoError(t, err)
		}(charts[i])
	}
	wg.Wait()

	path, err := exp.WriteWorkbook([]string{"fig_rq1_rf_importance", "fig_rq3_avg_price_prepost"})
	require.NoError(t, err)
	assert.Equal(t, paths.WorkbookFile, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"figures", "rq1_rf_importance", "rq3_avg_price_prepost"}, f.GetSheetList())

	index, err := f.GetRows("figures")
	require.NoError(t, err)
	require.Len(t, index, 3)
	assert.Equal(t, []string{"figure", "title", "sheet", "categories"}, index[0])
	assert.Equal(t, "fig_rq1_rf_importance", index[1][0])
	assert.Equal(t, "rq3_avg_price_prepost", index[2][2])

	rows, err := f.GetRows("rq3_avg_price_prepost")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"category", "Pre", "Post"},
		{"Vancouver", "180", "210"},
		{"Victoria", "", "205"},
	}, rows)
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"figures": true}

	assert.Equal(t, "rq1_rf_importance", sheetName("fig_rq1_rf_importance", used))

	long := "fig_rq2_roi_top_a_city_with_a_very_long_name"
	first := sheetName(long, used)
	second := sheetName(long, used)
	assert.Len(t, first, 31)
	assert.LessOrEqual(t, len(second), 31)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "_2", second[len(second)-2:])
}
