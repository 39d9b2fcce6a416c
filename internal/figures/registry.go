package figures

import (
	"fmt"
	"strings"

	"rentalfigs/internal/config"
	"rentalfigs/internal/table"
	"rentalfigs/pkg/contracts/domain"
)

// BuildFunc aggregates a loaded input table into a chart
type BuildFunc func(t *table.Table) (*domain.BarChart, error)

// Definition describes one figure: where its data comes from, where the PNG
// goes and how the chart is built
type Definition struct {
	ID          string
	Description string
	InputPath   string
	OutputFile  string
	// Optional inputs that are missing skip the figure instead of failing it
	Optional bool
	Build    BuildFunc
}

// Definitions returns the figures of a run in execution order
func Definitions(paths *config.Paths, cfg config.FiguresConfig) []Definition {
	defs := []Definition{
		{
			ID:          "fig_rq1_rf_importance",
			Description: "RQ1 random forest importance figure",
			InputPath:   paths.TopPredictorsCSV,
			OutputFile:  "fig_rq1_rf_importance.png",
			Build:       RFImportance,
		},
		{
			ID:          "fig_rq2_roi_top10_all",
			Description: "RQ2 ROI top-10 figure",
			InputPath:   paths.ROIFullCSV,
			OutputFile:  "fig_rq2_roi_top10_all.png",
			Build:       ROITopAll,
		},
	}

	for _, city := range cfg.Cities {
		city := city
		file := config.CityFigureFile(city)
		defs = append(defs, Definition{
			ID:          strings.TrimSuffix(file, ".png"),
			Description: fmt.Sprintf("RQ2 ROI %s figure", city),
			InputPath:   paths.ROIFullCSV,
			OutputFile:  file,
			Build: func(t *table.Table) (*domain.BarChart, error) {
				return ROITopByCity(t, city, cfg.TopN)
			},
		})
	}

	defs = append(defs,
		Definition{
			ID:          "fig_rq3_avg_price_prepost",
			Description: "RQ3 avg price figure",
			InputPath:   paths.PriceSummaryCSV,
			OutputFile:  "fig_rq3_avg_price_prepost.png",
			Optional:    true,
			Build:       AvgPricePrePost,
		},
		Definition{
			ID:          "fig_rq3_license_share_prepost",
			Description: "RQ3 license share figure",
			InputPath:   paths.LicenseShareCSV,
			OutputFile:  "fig_rq3_license_share_prepost.png",
			Optional:    true,
			Build:       LicenseSharePrePost,
		},
	)

	return defs
}

// Select filters defs down to the given IDs, keeping execution order.
// An empty selection keeps every definition; unknown IDs are an error.
func Select(defs []Definition, ids []string) ([]Definition, error) {
	if len(ids) == 0 {
		return defs, nil
	}

	known := make(map[string]bool, len(defs))
	for _, d := range defs {
		known[d.ID] = true
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSuffix(strings.TrimSpace(id), ".png")
		if id == "" {
			continue
		}
		if !known[id] {
			return nil, fmt.Errorf("unknown figure %q", id)
		}
		wanted[id] = true
	}

	var out []Definition
	for _, d := range defs {
		if wanted[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}
