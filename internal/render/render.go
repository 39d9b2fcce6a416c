// Package render draws chart models as PNG images using gonum/plot.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
	"rentalfigs/pkg/contracts/domain"
)

const (
	defaultBarColor = "#1f77b4"

	// fraction of a category slot covered by bars
	horizontalBarFill = 0.8
	verticalBarFill   = 0.76
	// headroom left past the longest bar for its value label
	labelHeadroom = 1.15
)

// Renderer turns chart models into PNG files
type Renderer struct {
	cfg config.RenderConfig
}

// NewRenderer creates a renderer for the given canvas settings
func NewRenderer(cfg config.RenderConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render draws chart and writes it to path. The PNG is written to a temporary
// file in the same directory and renamed into place.
func (r *Renderer) Render(chart *domain.BarChart, path string) error {
	if chart == nil {
		return apperrors.NewRenderError("nil chart", nil)
	}

	p, err := r.Plot(chart)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.png")
	if err != nil {
		return apperrors.NewStorageError("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := r.WritePNG(p, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("failed to close temp file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to move figure to %s", path), err)
	}
	return nil
}

// WritePNG draws p onto a raster canvas at the configured size and DPI
func (r *Renderer) WritePNG(p *plot.Plot, w io.Writer) error {
	c := vgimg.NewWith(
		vgimg.UseWH(r.width(), r.height()),
		vgimg.UseDPI(r.cfg.DPI),
	)
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return apperrors.NewRenderError("failed to encode png", err)
	}
	return nil
}

// Plot builds the gonum plot for chart without drawing it
func (r *Renderer) Plot(chart *domain.BarChart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = chart.Title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel

	if chart.IsEmpty() {
		p.X.Min, p.X.Max = 0, 1
		p.Y.Min, p.Y.Max = 0, 1
		return p, nil
	}

	var err error
	switch chart.Orientation {
	case domain.Horizontal:
		err = r.addHorizontal(p, chart)
	default:
		err = r.addVertical(p, chart)
	}
	if err != nil {
		return nil, apperrors.NewRenderError(fmt.Sprintf("failed to build %s", chart.ID), err)
	}
	return p, nil
}

// addHorizontal lays categories out top to bottom, first category on top
func (r *Renderer) addHorizontal(p *plot.Plot, chart *domain.BarChart) error {
	n := len(chart.Categories)
	slot := r.height() * 0.75 / vg.Length(n)
	width := clampWidth(slot * horizontalBarFill / vg.Length(len(chart.Series)))

	names := make([]string, n)
	for i, c := range chart.Categories {
		names[n-1-i] = c
	}

	minValue, maxValue := 0.0, 0.0
	for si, s := range chart.Series {
		values := make(plotter.Values, n)
		for i := 0; i < n; i++ {
			values[n-1-i] = barLength(valueAt(s.Values, i))
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Horizontal = true
		bars.Color = seriesColor(s)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = seriesOffset(si, len(chart.Series), width)
		p.Add(bars)
		if chart.Legend {
			p.Legend.Add(s.Name, bars)
		}

		var xys plotter.XYs
		var labels []string
		for i := 0; i < n; i++ {
			v := valueAt(s.Values, i)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minValue = math.Min(minValue, v)
			maxValue = math.Max(maxValue, v)
			xys = append(xys, plotter.XY{X: v, Y: float64(n - 1 - i)})
			labels = append(labels, formatValue(s.LabelFormat, v))
		}
		if len(xys) == 0 {
			continue
		}
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return err
		}
		lbl.Offset = vg.Point{X: vg.Points(r.cfg.LabelOffset), Y: bars.Offset}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].Font.Size = vg.Points(r.cfg.LabelFontSize)
			lbl.TextStyle[i].XAlign = draw.XLeft
			lbl.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(lbl)
	}

	p.NominalY(names...)
	p.X.Min = minValue * labelHeadroom
	if chart.ValueMax > 0 {
		p.X.Max = chart.ValueMax
	} else if maxValue > 0 {
		p.X.Max = maxValue * labelHeadroom
	}
	if chart.Legend {
		p.Legend.Top = true
	}
	return nil
}

// addVertical lays categories out left to right with grouped series
func (r *Renderer) addVertical(p *plot.Plot, chart *domain.BarChart) error {
	n := len(chart.Categories)
	slot := r.width() * 0.75 / vg.Length(n)
	width := clampWidth(slot * verticalBarFill / vg.Length(len(chart.Series)))

	minValue, maxValue := 0.0, 0.0
	for si, s := range chart.Series {
		values := make(plotter.Values, n)
		for i := 0; i < n; i++ {
			values[i] = barLength(valueAt(s.Values, i))
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = seriesColor(s)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = seriesOffset(si, len(chart.Series), width)
		p.Add(bars)
		if chart.Legend {
			p.Legend.Add(s.Name, bars)
		}

		var xys plotter.XYs
		var labels []string
		for i := 0; i < n; i++ {
			v := valueAt(s.Values, i)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minValue = math.Min(minValue, v)
			maxValue = math.Max(maxValue, v)
			xys = append(xys, plotter.XY{X: float64(i), Y: v})
			labels = append(labels, formatValue(s.LabelFormat, v))
		}
		if len(xys) == 0 {
			continue
		}
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return err
		}
		lbl.Offset = vg.Point{X: bars.Offset, Y: vg.Points(r.cfg.LabelOffset)}
		for i := range lbl.TextStyle {
			lbl.TextStyle[i].Font.Size = vg.Points(r.cfg.LabelFontSize)
			lbl.TextStyle[i].XAlign = draw.XCenter
			lbl.TextStyle[i].YAlign = draw.YBottom
		}
		p.Add(lbl)
	}

	p.NominalX(chart.Categories...)
	p.Y.Min = minValue * labelHeadroom
	if chart.ValueMax > 0 {
		p.Y.Max = chart.ValueMax
	} else if maxValue > 0 {
		p.Y.Max = maxValue * labelHeadroom
	}
	if chart.Legend {
		p.Legend.Top = true
	}
	return nil
}

func (r *Renderer) width() vg.Length {
	return vg.Length(r.cfg.Width) * vg.Inch
}

func (r *Renderer) height() vg.Length {
	return vg.Length(r.cfg.Height) * vg.Inch
}

// valueAt returns values[i] with missing and NaN entries as NaN
func valueAt(values []float64, i int) float64 {
	if i >= len(values) {
		return math.NaN()
	}
	return values[i]
}

// barLength maps a missing value to an empty bar
func barLength(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// seriesOffset centres a group of count bars of the given width on the tick
func seriesOffset(index, count int, width vg.Length) vg.Length {
	return (vg.Length(index) - vg.Length(count-1)/2) * width
}

func clampWidth(w vg.Length) vg.Length {
	switch {
	case w < vg.Points(2):
		return vg.Points(2)
	case w > vg.Points(60):
		return vg.Points(60)
	}
	return w
}

func formatValue(format string, v float64) string {
	if format == "" {
		format = "%.2f"
	}
	return fmt.Sprintf(format, v)
}

func seriesColor(s domain.Series) color.Color {
	hex := s.Color
	if hex == "" {
		hex = defaultBarColor
	}
	c, err := ParseHexColor(hex)
	if err != nil {
		c, _ = ParseHexColor(defaultBarColor)
	}
	return c
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque colour
func ParseHexColor(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
