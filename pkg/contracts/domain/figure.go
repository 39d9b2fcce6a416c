package domain

import (
	"time"
)

// Orientation defines how bars are laid out on a chart
type Orientation string

const (
	// Horizontal bars grow along X with categories stacked top to bottom
	Horizontal Orientation = "horizontal"
	// Vertical bars grow along Y with categories left to right
	Vertical Orientation = "vertical"
)

// Series is one set of bar values, one value per chart category.
// NaN values are drawn as missing bars with no label.
type Series struct {
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"` // hex colour, e.g. "#1a73e8"
	LabelFormat string    `json:"label_format"`    // fmt verb applied to each value
	Values      []float64 `json:"values"`
}

// BarChart is a fully aggregated chart, ready for rendering or export
type BarChart struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	XLabel      string      `json:"x_label,omitempty"`
	YLabel      string      `json:"y_label,omitempty"`
	Orientation Orientation `json:"orientation"`
	Categories  []string    `json:"categories"`
	Series      []Series    `json:"series"`
	Legend      bool        `json:"legend"`

	// ValueMax overrides the upper bound of the value axis when non-zero
	ValueMax float64 `json:"value_max,omitempty"`
}

// IsEmpty reports whether the chart has no categories to draw
func (c *BarChart) IsEmpty() bool {
	return c == nil || len(c.Categories) == 0
}

// FigureStatus is the outcome of a single figure step
type FigureStatus string

const (
	FigureStatusPending   FigureStatus = "pending"
	FigureStatusRunning   FigureStatus = "running"
	FigureStatusCompleted FigureStatus = "completed"
	FigureStatusFailed    FigureStatus = "failed"
	FigureStatusSkipped   FigureStatus = "skipped"
)

// FigureInfo describes a figure that is available in the output directory
type FigureInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	URL        string    `json:"url"`
}
