package dashboard

import (
	"github.com/sells-group/co2-dashboard/internal/emissions"
	"github.com/sells-group/co2-dashboard/internal/model"
)

const (
	// DefaultYear is the year selected before any interaction.
	DefaultYear = 2010
	// DefaultYearStep is the year slider increment.
	DefaultYearStep = 5
)

// YearSlider describes the year selector.
type YearSlider struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Step    int `json:"step" yaml:"step"`
	Default int `json:"default" yaml:"default"`
}

// Option is one choice of a radio selector.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Controls describes every user-facing input that feeds a FilterState.
type Controls struct {
	Year     YearSlider `json:"year" yaml:"year"`
	Measures []Option   `json:"measures" yaml:"measures"`
	Sources  []Option   `json:"sources" yaml:"sources"`
}

// BuildControls pins the year slider to the dataset's observed range. The
// default year is clamped into that range.
func BuildControls(records []model.EmissionRecord, defaultYear, step int) Controls {
	if step <= 0 {
		step = DefaultYearStep
	}
	minYear, maxYear, ok := emissions.YearRange(records)
	if !ok {
		minYear, maxYear = defaultYear, defaultYear
	}

	c := Controls{
		Year: YearSlider{
			Min:     minYear,
			Max:     maxYear,
			Step:    step,
			Default: min(max(defaultYear, minYear), maxYear),
		},
	}
	for _, m := range model.Measures {
		c.Measures = append(c.Measures, Option{Value: string(m), Label: m.Label()})
	}
	for _, s := range model.Sources {
		c.Sources = append(c.Sources, Option{Value: string(s), Label: s.Label()})
	}
	return c
}
