// Package exporter writes the aggregated data behind each figure.
//
// CSVWriter: Core CSV writing with headers, append mode and a UTF-8 BOM for
// Excel compatibility.
//
// FigureExporter: Writes data/<figure>.csv for every rendered chart and
// collects the charts into a figures_data.xlsx workbook at the end of a run.
//
// Example usage:
//
//	exp := exporter.NewFigureExporter(paths)
//	csvPath, err := exp.ExportChart(chart)
//	...
//	workbook, err := exp.WriteWorkbook([]string{"fig_rq1_rf_importance"})
package exporter
