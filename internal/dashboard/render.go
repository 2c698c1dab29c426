package dashboard

import (
	"fmt"

	"github.com/sells-group/co2-dashboard/internal/model"
)

// Chart carries the presentation hints the charting layer needs.
type Chart struct {
	Title  string `json:"title" yaml:"title"`
	X      string `json:"x" yaml:"x"`
	Y      string `json:"y" yaml:"y"`
	XLabel string `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty" yaml:"y_label,omitempty"`
	Color  string `json:"color" yaml:"color"`
	// ColorRange is set for continuous colour scales only.
	ColorRange []float64 `json:"color_range,omitempty" yaml:"color_range,omitempty"`
}

// Charts groups the chart hints of one render pass.
type Charts struct {
	TimeSeries Chart `json:"timeseries" yaml:"timeseries"`
	Scatter    Chart `json:"scatter" yaml:"scatter"`
	Bars       Chart `json:"bars" yaml:"bars"`
	Globe      Chart `json:"globe" yaml:"globe"`
}

// Views holds every table of one render pass. Table is the raw data table
// shown under the charts and has the same rows as TimeSeries.
type Views struct {
	Filter     model.FilterState `json:"filter" yaml:"filter"`
	TimeSeries []SeriesPoint     `json:"timeseries" yaml:"timeseries"`
	Scatter    []ScatterPoint    `json:"scatter" yaml:"scatter"`
	Bars       []SourceBar       `json:"bars" yaml:"bars"`
	Globe      []GlobePoint      `json:"globe" yaml:"globe"`
	Table      []SeriesPoint     `json:"table" yaml:"table"`
	Charts     Charts            `json:"charts" yaml:"charts"`
}

// Render computes all views for one filter state from scratch.
func Render(records []model.EmissionRecord, centroids model.Centroids, f model.FilterState) Views {
	series := TimeSeries(records, f.Year, f.Measure)
	table := make([]SeriesPoint, len(series))
	copy(table, series)

	return Views{
		Filter:     f,
		TimeSeries: series,
		Scatter:    ScatterPoints(records, f.Year),
		Bars:       SourceBars(records, f.Year, f.Source),
		Globe:      GlobeChoropleth(records, centroids, f.Year),
		Table:      table,
		Charts:     chartsFor(f),
	}
}

func chartsFor(f model.FilterState) Charts {
	return Charts{
		TimeSeries: Chart{
			Title:  fmt.Sprintf("%s over Time by Continent", f.Measure.Label()),
			X:      "year",
			Y:      "value",
			YLabel: f.Measure.Label(),
			Color:  "country",
		},
		Scatter: Chart{
			Title:  fmt.Sprintf("CO₂ vs GDP per Capita (%d)", f.Year),
			X:      "gdp_per_capita",
			Y:      "co2",
			XLabel: "GDP per Capita",
			YLabel: "CO₂ Emissions",
			Color:  "country",
		},
		Bars: Chart{
			Title:  fmt.Sprintf("%s by Continent (%d)", f.Source.Label(), f.Year),
			X:      "country",
			Y:      "value",
			YLabel: f.Source.Label(),
			Color:  "country",
		},
		Globe: Chart{
			Title:      fmt.Sprintf("Global CO₂ Heatmap (%d)", f.Year),
			X:          "iso_code",
			Y:          "co2",
			YLabel:     "CO₂ (Mt)",
			Color:      "co2",
			ColorRange: []float64{ColorMin, ColorMax},
		},
	}
}
