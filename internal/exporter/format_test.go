package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentalfigs/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero value", 0.0, "0"},
		{"positive integer", 123.0, "123"},
		{"negative integer", -456.0, "-456"},
		{"decimal", 123.456, "123.456"},
		{"small ratio", 0.0525, "0.0525"},
		{"nan is blank", math.NaN(), ""},
		{"inf is blank", math.Inf(1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestChartRecords(t *testing.T) {
	chart := &domain.BarChart{
		ID:         "fig_rq3_avg_price_prepost",
		Categories: []string{"Vancouver", "Victoria"},
		Series: []domain.Series{
			{Name: "Pre", Values: []float64{180, math.NaN()}},
			{Name: "Post", Values: []float64{210.5}},
		},
	}

	assert.Equal(t, []string{"category", "Pre", "Post"}, ChartHeaders(chart))
	assert.Equal(t, [][]string{
		{"Vancouver", "180", "210.5"},
		{"Victoria", "", ""},
	}, ChartRecords(chart))
}
