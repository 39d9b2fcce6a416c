package exporter

import (
	"fmt"
	"sync"

	"rentalfigs/internal/config"
	"rentalfigs/pkg/contracts/domain"
)

// FigureExporter writes the aggregated data behind each figure next to the
// PNGs: one CSV per chart during the run and a combined workbook at the end
type FigureExporter struct {
	paths  *config.Paths
	csv    *CSVWriter
	mu     sync.Mutex
	charts []*domain.BarChart
}

// NewFigureExporter creates an exporter writing below paths.DataExportDir
func NewFigureExporter(paths *config.Paths) *FigureExporter {
	return &FigureExporter{
		paths: paths,
		csv:   NewCSVWriter(paths),
	}
}

// ExportChart writes data/<id>.csv for chart and keeps it for the workbook.
// It is safe for concurrent use.
func (e *FigureExporter) ExportChart(chart *domain.BarChart) (string, error) {
	path := e.paths.GetDataExportPath(chart.ID)
	if err := e.csv.WriteSimpleCSV(path, ChartHeaders(chart), ChartRecords(chart)); err != nil {
		return "", fmt.Errorf("failed to export data for %s: %w", chart.ID, err)
	}

	e.mu.Lock()
	e.charts = append(e.charts, chart)
	e.mu.Unlock()
	return path, nil
}

// Charts returns the charts exported so far
func (e *FigureExporter) Charts() []*domain.BarChart {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*domain.BarChart(nil), e.charts...)
}

// WriteWorkbook saves every exported chart, ordered as given by order, to
// the configured workbook file. Charts whose ID is not in order follow.
func (e *FigureExporter) WriteWorkbook(order []string) (string, error) {
	charts := e.Charts()
	rank := make(map[string]int, len(order))
	for i, id := range order {
		rank[id] = i
	}
	sorted := make([]*domain.BarChart, 0, len(charts))
	for _, id := range order {
		for _, c := range charts {
			if c.ID == id {
				sorted = append(sorted, c)
			}
		}
	}
	for _, c := range charts {
		if _, ok := rank[c.ID]; !ok {
			sorted = append(sorted, c)
		}
	}

	if err := WriteWorkbook(e.paths.WorkbookFile, sorted); err != nil {
		return "", err
	}
	return e.paths.WorkbookFile, nil
}
