package model

// EmissionRecord is one (country, year) row of the CO₂ dataset.
// Missing source values are stored as 0; there is no zero vs unknown distinction.
type EmissionRecord struct {
	Country      string  `json:"country" yaml:"country"`
	ISOCode      string  `json:"iso_code,omitempty" yaml:"iso_code,omitempty"`
	Year         int     `json:"year" yaml:"year"`
	Population   float64 `json:"population" yaml:"population"`
	GDP          float64 `json:"gdp" yaml:"gdp"`
	CO2          float64 `json:"co2" yaml:"co2"`
	CO2PerCapita float64 `json:"co2_per_capita" yaml:"co2_per_capita"`
	CoalCO2      float64 `json:"coal_co2" yaml:"coal_co2"`
	OilCO2       float64 `json:"oil_co2" yaml:"oil_co2"`
	GasCO2       float64 `json:"gas_co2" yaml:"gas_co2"`
	GDPPerCapita float64 `json:"gdp_per_capita" yaml:"gdp_per_capita"`
}

// DeriveGDPPerCapita sets GDPPerCapita to GDP/Population, or 0 when the
// population is zero.
func (r *EmissionRecord) DeriveGDPPerCapita() {
	if r.Population != 0 {
		r.GDPPerCapita = r.GDP / r.Population
		return
	}
	r.GDPPerCapita = 0
}

// Value returns the field selected by the measure.
func (r EmissionRecord) Value(m Measure) float64 {
	switch m {
	case MeasurePerCapita:
		return r.CO2PerCapita
	default:
		return r.CO2
	}
}

// SourceValue returns the emissions attributed to the given fuel source.
func (r EmissionRecord) SourceValue(s Source) float64 {
	switch s {
	case SourceOil:
		return r.OilCO2
	case SourceGas:
		return r.GasCO2
	default:
		return r.CoalCO2
	}
}

// CountryCentroid is the approximate map marker location of a country.
type CountryCentroid struct {
	Country   string  `json:"country" yaml:"country"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Centroids maps a boundary feature name to its centroid.
type Centroids map[string]CountryCentroid

// Lookup returns the centroid for an exact country name.
func (c Centroids) Lookup(country string) (CountryCentroid, bool) {
	cc, ok := c[country]
	return cc, ok
}
