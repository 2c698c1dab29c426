// Package dashboard turns the emissions dataset into the tables behind the
// dashboard's time series, scatter, bar and globe views.
//
// Every query is a pure function of the records and its parameters; nothing
// is shared between views or between calls.
package dashboard

import (
	"cmp"
	"slices"

	"github.com/sells-group/co2-dashboard/internal/model"
)

const (
	// MarkerSize is the uniform scatter marker size.
	MarkerSize = 10.0
	// ColorMin and ColorMax bound the globe colour scale in Mt CO₂. Values
	// outside are clamped by the renderer, not here.
	ColorMin = 0.0
	ColorMax = 17000.0
)

// SeriesPoint is one (region, year) value of the time series.
type SeriesPoint struct {
	Country string  `json:"country" yaml:"country"`
	Year    int     `json:"year" yaml:"year"`
	Value   float64 `json:"value" yaml:"value"`
}

// ScatterPoint is one nation's CO₂ against GDP per capita.
type ScatterPoint struct {
	Country      string  `json:"country" yaml:"country"`
	GDPPerCapita float64 `json:"gdp_per_capita" yaml:"gdp_per_capita"`
	CO2          float64 `json:"co2" yaml:"co2"`
	Size         float64 `json:"size" yaml:"size"`
}

// SourceBar is one continent's emissions from the selected fuel source.
type SourceBar struct {
	Country string  `json:"country" yaml:"country"`
	Value   float64 `json:"value" yaml:"value"`
}

// GlobePoint is one choropleth row. Latitude and Longitude are nil when the
// country has no matching boundary centroid.
type GlobePoint struct {
	ISOCode   string   `json:"iso_code" yaml:"iso_code"`
	CO2       float64  `json:"co2" yaml:"co2"`
	Country   string   `json:"country" yaml:"country"`
	Latitude  *float64 `json:"latitude" yaml:"latitude"`
	Longitude *float64 `json:"longitude" yaml:"longitude"`
}

type meanAcc struct {
	sum float64
	n   int
}

func (a meanAcc) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

// TimeSeries returns the measure for every region up to and including year,
// ordered by year. Rows sharing a year are ordered by region name.
func TimeSeries(records []model.EmissionRecord, year int, measure model.Measure) []SeriesPoint {
	type key struct {
		country string
		year    int
	}
	groups := make(map[key]meanAcc)
	for _, r := range records {
		if r.Year > year || !model.IsRegion(r.Country) {
			continue
		}
		k := key{r.Country, r.Year}
		acc := groups[k]
		acc.sum += r.Value(measure)
		acc.n++
		groups[k] = acc
	}

	out := make([]SeriesPoint, 0, len(groups))
	for k, acc := range groups {
		out = append(out, SeriesPoint{Country: k.country, Year: k.year, Value: acc.mean()})
	}
	// Group order first, then a stable sort on year alone.
	slices.SortFunc(out, func(a, b SeriesPoint) int {
		return cmp.Or(cmp.Compare(a.Country, b.Country), cmp.Compare(a.Year, b.Year))
	})
	slices.SortStableFunc(out, func(a, b SeriesPoint) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

// ScatterPoints returns mean CO₂ per (nation, GDP per capita) for year.
// Regional aggregates are excluded.
func ScatterPoints(records []model.EmissionRecord, year int) []ScatterPoint {
	type key struct {
		country string
		gdp     float64
	}
	groups := make(map[key]meanAcc)
	for _, r := range records {
		if r.Year != year || model.IsRegion(r.Country) {
			continue
		}
		k := key{r.Country, r.GDPPerCapita}
		acc := groups[k]
		acc.sum += r.CO2
		acc.n++
		groups[k] = acc
	}

	out := make([]ScatterPoint, 0, len(groups))
	for k, acc := range groups {
		out = append(out, ScatterPoint{
			Country:      k.country,
			GDPPerCapita: k.gdp,
			CO2:          acc.mean(),
			Size:         MarkerSize,
		})
	}
	slices.SortFunc(out, func(a, b ScatterPoint) int {
		return cmp.Or(cmp.Compare(a.Country, b.Country), cmp.Compare(a.GDPPerCapita, b.GDPPerCapita))
	})
	return out
}

// SourceBars sums the selected source per continent (World excluded) for
// year, largest first. Equal values keep continent name order.
func SourceBars(records []model.EmissionRecord, year int, source model.Source) []SourceBar {
	sums := make(map[string]float64)
	for _, r := range records {
		if r.Year != year || !model.IsContinent(r.Country) {
			continue
		}
		sums[r.Country] += r.SourceValue(source)
	}

	out := make([]SourceBar, 0, len(sums))
	for country, v := range sums {
		out = append(out, SourceBar{Country: country, Value: v})
	}
	slices.SortFunc(out, func(a, b SourceBar) int {
		return cmp.Compare(a.Country, b.Country)
	})
	slices.SortStableFunc(out, func(a, b SourceBar) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out
}

// GlobeChoropleth returns every row of year, regions and nations alike, in
// dataset order, joined to centroids by exact country name.
func GlobeChoropleth(records []model.EmissionRecord, centroids model.Centroids, year int) []GlobePoint {
	out := make([]GlobePoint, 0)
	for _, r := range records {
		if r.Year != year {
			continue
		}
		p := GlobePoint{ISOCode: r.ISOCode, CO2: r.CO2, Country: r.Country}
		if c, ok := centroids.Lookup(r.Country); ok {
			lat, lon := c.Latitude, c.Longitude
			p.Latitude, p.Longitude = &lat, &lon
		}
		out = append(out, p)
	}
	return out
}
