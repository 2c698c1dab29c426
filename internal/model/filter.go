package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Measure selects the CO₂ field plotted in the time series view.
type Measure string

const (
	MeasureTotal     Measure = "co2"
	MeasurePerCapita Measure = "co2_per_capita"
)

// Label returns the display label for the measure.
func (m Measure) Label() string {
	switch m {
	case MeasurePerCapita:
		return "CO₂/capita"
	default:
		return "CO₂"
	}
}

// Measures lists the selectable measures in display order.
var Measures = []Measure{MeasureTotal, MeasurePerCapita}

// ParseMeasure accepts a column name ("co2", "co2_per_capita") or the short
// form "total" / "per_capita".
func ParseMeasure(s string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "co2", "total":
		return MeasureTotal, nil
	case "co2_per_capita", "per_capita":
		return MeasurePerCapita, nil
	}
	return "", eris.Wrapf(ErrInvalidFilter, "unknown measure %q", s)
}

// Source selects the fuel source plotted in the bar view.
type Source string

const (
	SourceCoal Source = "coal_co2"
	SourceOil  Source = "oil_co2"
	SourceGas  Source = "gas_co2"
)

// Label returns the display label for the source.
func (s Source) Label() string {
	switch s {
	case SourceOil:
		return "CO₂ from Oil"
	case SourceGas:
		return "CO₂ from Gas"
	default:
		return "CO₂ from Coal"
	}
}

// Sources lists the selectable sources in display order.
var Sources = []Source{SourceCoal, SourceOil, SourceGas}

// ParseSource accepts a column name ("coal_co2") or the bare fuel ("coal").
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coal_co2", "coal":
		return SourceCoal, nil
	case "oil_co2", "oil":
		return SourceOil, nil
	case "gas_co2", "gas":
		return SourceGas, nil
	}
	return "", eris.Wrapf(ErrInvalidFilter, "unknown source %q", s)
}

// FilterState is the complete set of user-selected parameters for one
// rendering pass. It is a value type and is never mutated after creation.
type FilterState struct {
	Year    int     `json:"year" yaml:"year"`
	Measure Measure `json:"measure" yaml:"measure"`
	Source  Source  `json:"source" yaml:"source"`
}

// DefaultFilterState returns the filter shown before any user interaction.
func DefaultFilterState(year int) FilterState {
	return FilterState{Year: year, Measure: MeasureTotal, Source: SourceCoal}
}

// WithYear returns a copy with the year replaced.
func (f FilterState) WithYear(year int) FilterState {
	f.Year = year
	return f
}
