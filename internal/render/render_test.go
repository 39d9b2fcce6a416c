package render

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalfigs/internal/config"
	"rentalfigs/pkg/contracts/domain"
)

func testRenderer() *Renderer {
	return NewRenderer(config.Default().Render)
}

func horizontalChart() *domain.BarChart {
	return &domain.BarChart{
		ID:          "fig_rq2_roi_top10_all",
		Title:       "RQ2: Top-10 Neighbourhoods by ROI (All)",
		XLabel:      "ROI (Revenue / Price)",
		Orientation: domain.Horizontal,
		Categories:  []string{"Fairfield (Victoria)", "Kitsilano (Vancouver)"},
		Series:      []domain.Series{{Name: "roi_ratio", LabelFormat: "%.4f", Values: []float64{0.07, 0.05}}},
	}
}

func groupedChart() *domain.BarChart {
	return &domain.BarChart{
		ID:          "fig_rq3_license_share_prepost",
		Title:       "RQ3: Licensed Listings Share — Pre vs Post",
		YLabel:      "Licensed Share (%)",
		Orientation: domain.Vertical,
		Categories:  []string{"Vancouver", "Victoria"},
		Legend:      true,
		ValueMax:    115,
		Series: []domain.Series{
			{Name: "Pre", Color: "#9aa0a6", LabelFormat: "%.1f%%", Values: []float64{90, math.NaN()}},
			{Name: "Post", Color: "#ea4335", LabelFormat: "%.1f%%", Values: []float64{100, 40}},
		},
	}
}

func TestRender_WritesPNG(t *testing.T) {
	tests := []struct {
		name  string
		chart *domain.BarChart
	}{
		{"horizontal", horizontalChart()},
		{"grouped vertical with missing value", groupedChart()},
		{"empty", &domain.BarChart{ID: "empty", Title: "RQ2: Top Neighbourhoods by ROI — Kelowna", Orientation: domain.Horizontal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "figures")
			out := filepath.Join(dir, tt.chart.ID+".png")

			require.NoError(t, testRenderer().Render(tt.chart, out))

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			// 6.4in x 4.8in at 200 DPI
			assert.Equal(t, 1280, img.Bounds().Dx())
			assert.Equal(t, 960, img.Bounds().Dy())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary files must not be left behind")
		})
	}
}

func TestRender_NilChart(t *testing.T) {
	err := testRenderer().Render(nil, filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestPlot_Axes(t *testing.T) {
	t.Run("horizontal leaves room for labels", func(t *testing.T) {
		p, err := testRenderer().Plot(horizontalChart())
		require.NoError(t, err)
		assert.Equal(t, 0.0, p.X.Min)
		assert.InDelta(t, 0.07*labelHeadroom, p.X.Max, 1e-12)
		assert.Equal(t, "ROI (Revenue / Price)", p.X.Label.Text)
	})

	t.Run("explicit value max", func(t *testing.T) {
		p, err := testRenderer().Plot(groupedChart())
		require.NoError(t, err)
		assert.Equal(t, 0.0, p.Y.Min)
		assert.Equal(t, 115.0, p.Y.Max)
		assert.Equal(t, "Licensed Share (%)", p.Y.Label.Text)
	})
}

func TestSeriesOffset(t *testing.T) {
	assert.Equal(t, 0.0, float64(seriesOffset(0, 1, 10)))
	assert.Equal(t, -5.0, float64(seriesOffset(0, 2, 10)))
	assert.Equal(t, 5.0, float64(seriesOffset(1, 2, 10)))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.123", formatValue("%.3f", 0.12345))
	assert.Equal(t, "$180", formatValue("$%.0f", 180.4))
	assert.Equal(t, "75.0%", formatValue("%.1f%%", 75))
	assert.Equal(t, "1.50", formatValue("", 1.5))
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#1a73e8", want: color.RGBA{R: 0x1a, G: 0x73, B: 0xe8, A: 255}},
		{in: "ea4335", want: color.RGBA{R: 0xea, G: 0x43, B: 0x35, A: 255}},
		{in: "#fff", want: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "#12345", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
