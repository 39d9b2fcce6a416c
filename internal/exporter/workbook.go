package exporter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"rentalfigs/pkg/contracts/domain"
)

const (
	indexSheet     = "figures"
	maxSheetLength = 31
)

// WriteWorkbook saves every chart's data into one xlsx file: an index sheet
// listing the figures and one sheet per chart
func WriteWorkbook(path string, charts []*domain.BarChart) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", indexSheet); err != nil {
		return fmt.Errorf("failed to name index sheet: %w", err)
	}
	if err := f.SetSheetRow(indexSheet, "A1", &[]interface{}{"figure", "title", "sheet", "categories"}); err != nil {
		return fmt.Errorf("failed to write index header: %w", err)
	}

	used := map[string]bool{indexSheet: true}
	for i, chart := range charts {
		if chart == nil {
			continue
		}
		sheet := sheetName(chart.ID, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := writeChartSheet(f, sheet, chart); err != nil {
			return err
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{chart.ID, chart.Title, sheet, len(chart.Categories)}
		if err := f.SetSheetRow(indexSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write index row for %s: %w", chart.ID, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeChartSheet(f *excelize.File, sheet string, chart *domain.BarChart) error {
	header := make([]interface{}, 0, len(chart.Series)+1)
	for _, h := range ChartHeaders(chart) {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", chart.ID, err)
	}

	for i, category := range chart.Categories {
		row := make([]interface{}, 0, len(chart.Series)+1)
		row = append(row, category)
		for _, s := range chart.Series {
			if i < len(s.Values) && !math.IsNaN(s.Values[i]) && !math.IsInf(s.Values[i], 0) {
				row = append(row, s.Values[i])
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d for %s: %w", i, chart.ID, err)
		}
	}
	return nil
}

// sheetName derives a unique sheet name within the 31 character limit
func sheetName(id string, used map[string]bool) string {
	name := strings.TrimPrefix(id, "fig_")
	name = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(name)
	if len(name) > maxSheetLength {
		name = name[:maxSheetLength]
	}
	candidate := name
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		base := name
		if len(base)+len(suffix) > maxSheetLength {
			base = base[:maxSheetLength-len(suffix)]
		}
		candidate = base + suffix
	}
	used[candidate] = true
	return candidate
}
