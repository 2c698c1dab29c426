package export

import (
	"github.com/sells-group/co2-dashboard/internal/dashboard"
	"github.com/sells-group/co2-dashboard/internal/model"
)

func ptr(v float64) *float64 { return &v }

func sampleViews() dashboard.Views {
	return dashboard.Views{
		Filter: model.FilterState{Year: 2010, Measure: model.MeasureTotal, Source: model.SourceCoal},
		TimeSeries: []dashboard.SeriesPoint{
			{Country: "Asia", Year: 2000, Value: 9000},
			{Country: "World", Year: 2010, Value: 33364.3},
		},
		Scatter: []dashboard.ScatterPoint{
			{Country: "China", GDPPerCapita: 9550.5, CO2: 8500, Size: dashboard.MarkerSize},
		},
		Bars: []dashboard.SourceBar{
			{Country: "Asia", Value: 7000},
			{Country: "Europe", Value: 1200},
		},
		Globe: []dashboard.GlobePoint{
			{ISOCode: "CHN", CO2: 8500, Country: "China", Latitude: ptr(35.5), Longitude: ptr(104.2)},
			{ISOCode: "", CO2: 12000, Country: "Asia"},
		},
		Table: []dashboard.SeriesPoint{
			{Country: "Asia", Year: 2000, Value: 9000},
			{Country: "World", Year: 2010, Value: 33364.3},
		},
		Charts: dashboard.Charts{
			TimeSeries: dashboard.Chart{Title: "CO₂ over Time by Continent"},
			Scatter:    dashboard.Chart{Title: "CO₂ vs GDP per Capita (2010)"},
			Bars:       dashboard.Chart{Title: "CO₂ from Coal by Continent (2010)"},
			Globe:      dashboard.Chart{Title: "Global CO₂ Heatmap (2010)"},
		},
	}
}
