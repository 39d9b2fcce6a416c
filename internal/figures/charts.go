// Package figures aggregates the summary tables into chart models. Each
// builder validates its input columns, reproduces the aggregation for one
// figure and returns a domain.BarChart; nothing here touches the filesystem.
package figures

import (
	stderrors "errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"rentalfigs/internal/config"
	apperrors "rentalfigs/internal/errors"
	"rentalfigs/internal/table"
	"rentalfigs/pkg/contracts/domain"
)

const (
	rfTopN  = 10
	roiTopN = 10

	colorPre       = "#9aa0a6"
	colorPostPrice = "#1a73e8"
	colorPostShare = "#ea4335"
)

// Periods are the pre/post policy periods in display order
var Periods = []string{"Pre", "Post"}

const (
	msgTopPredictorsColumns = "top_predictors_rq1.csv must have columns: model, rank, feature, importance"
	msgROIColumns           = "roi_merged_full.csv must have columns: city, neighbourhood, roi_ratio"
	msgPriceColumns         = "rq3_price_summary.csv must have columns: City, Period, mean_price (plus std_price, n)"
	msgShareColumns         = "rq3_license_share.csv must have columns: City, Period, licensed_share (plus licensed_n, n)"
)

// RFImportance charts the ten highest ranked random forest predictors
func RFImportance(t *table.Table) (*domain.BarChart, error) {
	if err := requireColumns(t, msgTopPredictorsColumns, "model", "rank", "feature", "importance"); err != nil {
		return nil, err
	}

	models := checkedStrings(t, "model")
	ranks := checkedFloats(t, "rank")
	features := checkedStrings(t, "feature")
	importance := checkedFloats(t, "importance")

	type predictor struct {
		rank       float64
		feature    string
		importance float64
	}
	var rf []predictor
	for i, m := range models {
		if strings.ToLower(strings.TrimSpace(m)) != "randomforest" {
			continue
		}
		rf = append(rf, predictor{rank: ranks[i], feature: features[i], importance: importance[i]})
	}

	sort.SliceStable(rf, func(i, j int) bool {
		a, b := rf[i].rank, rf[j].rank
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a < b
	})
	if len(rf) > rfTopN {
		rf = rf[:rfTopN]
	}

	chart := &domain.BarChart{
		ID:          "fig_rq1_rf_importance",
		Title:       "RQ1: Random Forest Top-10 Predictors of Annual Revenue",
		XLabel:      "Importance",
		Orientation: domain.Horizontal,
		Categories:  make([]string, len(rf)),
	}
	values := make([]float64, len(rf))
	for i, p := range rf {
		chart.Categories[i] = p.feature
		values[i] = p.importance
	}
	chart.Series = []domain.Series{{Name: "importance", LabelFormat: "%.3f", Values: values}}
	return chart, nil
}

// ROITopAll charts the ten (city, neighbourhood) pairs with the highest mean ROI
func ROITopAll(t *table.Table) (*domain.BarChart, error) {
	if err := requireColumns(t, msgROIColumns, "city", "neighbourhood", "roi_ratio"); err != nil {
		return nil, err
	}

	cities := checkedStrings(t, "city")
	neighbourhoods := checkedStrings(t, "neighbourhood")
	roi := checkedFloats(t, "roi_ratio")

	keys := make([]string, len(cities))
	labels := make(map[string]string)
	for i := range cities {
		if table.IsNull(cities[i]) || table.IsNull(neighbourhoods[i]) {
			continue
		}
		key := cities[i] + "\x00" + neighbourhoods[i]
		keys[i] = key
		labels[key] = fmt.Sprintf("%s (%s)", neighbourhoods[i], cities[i])
	}

	top := table.Head(table.SortDescending(table.GroupMean(keys, roi)), roiTopN)

	chart := roiChart("fig_rq2_roi_top10_all", "RQ2: Top-10 Neighbourhoods by ROI (All)", top)
	for i, g := range top {
		chart.Categories[i] = labels[g.Key]
	}
	return chart, nil
}

// ROITopByCity charts the topN neighbourhoods of city by mean ROI. The city
// match is case-insensitive.
func ROITopByCity(t *table.Table, city string, topN int) (*domain.BarChart, error) {
	if err := requireColumns(t, msgROIColumns, "city", "neighbourhood", "roi_ratio"); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = roiTopN
	}

	cities := checkedStrings(t, "city")
	neighbourhoods := checkedStrings(t, "neighbourhood")
	roi := checkedFloats(t, "roi_ratio")

	var keys []string
	var values []float64
	want := strings.ToLower(city)
	for i, c := range cities {
		if strings.ToLower(c) != want {
			continue
		}
		keys = append(keys, neighbourhoods[i])
		values = append(values, roi[i])
	}

	top := table.Head(table.SortDescending(table.GroupMean(keys, values)), topN)

	chart := roiChart(
		strings.TrimSuffix(config.CityFigureFile(city), ".png"),
		fmt.Sprintf("RQ2: Top Neighbourhoods by ROI — %s", city),
		top,
	)
	for i, g := range top {
		chart.Categories[i] = g.Key
	}
	return chart, nil
}

func roiChart(id, title string, top []table.Group) *domain.BarChart {
	values := make([]float64, len(top))
	for i, g := range top {
		values[i] = g.Value
	}
	return &domain.BarChart{
		ID:          id,
		Title:       title,
		XLabel:      "ROI (Revenue / Price)",
		Orientation: domain.Horizontal,
		Categories:  make([]string, len(top)),
		Series:      []domain.Series{{Name: "roi_ratio", LabelFormat: "%.4f", Values: values}},
	}
}

// AvgPricePrePost charts mean nightly price per city, pre vs post
func AvgPricePrePost(t *table.Table) (*domain.BarChart, error) {
	if err := requireColumns(t, msgPriceColumns, "City", "Period", "mean_price"); err != nil {
		return nil, err
	}

	cities, matrix := pivotByPeriod(t, "mean_price")

	return &domain.BarChart{
		ID:          "fig_rq3_avg_price_prepost",
		Title:       "RQ3: Average Nightly Price — Pre vs Post",
		YLabel:      "Average Price ($)",
		Orientation: domain.Vertical,
		Categories:  cities,
		Legend:      true,
		Series: []domain.Series{
			{Name: "Pre", Color: colorPre, LabelFormat: "$%.0f", Values: column(matrix, 0, 1)},
			{Name: "Post", Color: colorPostPrice, LabelFormat: "$%.0f", Values: column(matrix, 1, 1)},
		},
	}, nil
}

// LicenseSharePrePost charts the licensed listing share per city as a
// percentage, pre vs post
func LicenseSharePrePost(t *table.Table) (*domain.BarChart, error) {
	if err := requireColumns(t, msgShareColumns, "City", "Period", "licensed_share"); err != nil {
		return nil, err
	}

	cities, matrix := pivotByPeriod(t, "licensed_share")
	pre := column(matrix, 0, 100)
	post := column(matrix, 1, 100)

	upper := 100.0
	for _, v := range append(append([]float64(nil), pre...), post...) {
		if !math.IsNaN(v) && v*1.15 > upper {
			upper = v * 1.15
		}
	}

	return &domain.BarChart{
		ID:          "fig_rq3_license_share_prepost",
		Title:       "RQ3: Licensed Listings Share — Pre vs Post",
		YLabel:      "Licensed Share (%)",
		Orientation: domain.Vertical,
		Categories:  cities,
		Legend:      true,
		ValueMax:    upper,
		Series: []domain.Series{
			{Name: "Pre", Color: colorPre, LabelFormat: "%.1f%%", Values: pre},
			{Name: "Post", Color: colorPostShare, LabelFormat: "%.1f%%", Values: post},
		},
	}, nil
}

// pivotByPeriod returns the sorted cities and their City x Period means
func pivotByPeriod(t *table.Table, valueCol string) ([]string, [][]float64) {
	cities := checkedStrings(t, "City")
	periods := checkedStrings(t, "Period")
	values := checkedFloats(t, valueCol)

	rows := table.UniqueSorted(cities)
	if rows == nil {
		rows = []string{}
	}
	return rows, table.Pivot(cities, periods, values, rows, Periods)
}

func column(matrix [][]float64, col int, scale float64) []float64 {
	out := make([]float64, len(matrix))
	for i, row := range matrix {
		out[i] = row[col] * scale
	}
	return out
}

// checkedStrings reads a column that requireColumns has already confirmed,
// so the lookup cannot fail
func checkedStrings(t *table.Table, name string) []string {
	values, _ := t.Strings(name)
	return values
}

// checkedFloats is checkedStrings for numeric columns
func checkedFloats(t *table.Table, name string) []float64 {
	values, _ := t.Floats(name)
	return values
}

func requireColumns(t *table.Table, message string, names ...string) error {
	err := t.RequireColumns(names...)
	if err == nil {
		return nil
	}
	var missing *apperrors.MissingColumnsError
	if stderrors.As(err, &missing) {
		return apperrors.NewColumnsValidationError(message, missing)
	}
	return apperrors.NewAppValidationError(message)
}
