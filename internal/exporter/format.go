package exporter

import (
	"math"
	"strconv"

	"rentalfigs/pkg/contracts/domain"
)

// formatFloat formats a value with the shortest exact representation.
// Missing values are written as empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ChartHeaders returns the export header row for chart: the category column
// followed by one column per series
func ChartHeaders(chart *domain.BarChart) []string {
	headers := make([]string, 0, len(chart.Series)+1)
	headers = append(headers, "category")
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	return headers
}

// ChartRecords returns one row per category in display order
func ChartRecords(chart *domain.BarChart) [][]string {
	records := make([][]string, len(chart.Categories))
	for i, category := range chart.Categories {
		row := make([]string, 0, len(chart.Series)+1)
		row = append(row, category)
		for _, s := range chart.Series {
			v := math.NaN()
			if i < len(s.Values) {
				v = s.Values[i]
			}
			row = append(row, formatFloat(v))
		}
		records[i] = row
	}
	return records
}
