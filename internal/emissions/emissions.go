// Package emissions loads the OWID CO₂ dataset into EmissionRecords.
package emissions

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/co2-dashboard/internal/fetcher"
	"github.com/sells-group/co2-dashboard/internal/model"
)

// DefaultURL is the versionless location of the OWID CO₂ dataset.
const DefaultURL = "https://raw.githubusercontent.com/owid/co2-data/master/owid-co2-data.csv"

const sourceName = "emissions"

// RequiredColumns must all be present in the CSV header.
var RequiredColumns = []string{
	"country",
	"year",
	"population",
	"gdp",
	"co2",
	"co2_per_capita",
	"coal_co2",
	"oil_co2",
	"gas_co2",
	"iso_code",
}

// Load downloads the dataset at url and parses it. Any failure is returned as
// a *model.UnavailableError; there is no retry.
func Load(ctx context.Context, dl fetcher.Downloader, url string) ([]model.EmissionRecord, error) {
	log := zap.L().With(zap.String("component", "emissions"))
	log.Info("downloading emissions dataset", zap.String("url", url))

	body, err := dl.Download(ctx, url)
	if err != nil {
		return nil, model.NewUnavailableError(sourceName, eris.Wrap(err, "emissions: download"))
	}
	defer body.Close() //nolint:errcheck

	records, err := Parse(ctx, body)
	if err != nil {
		return nil, model.NewUnavailableError(sourceName, err)
	}

	minYear, maxYear, _ := YearRange(records)
	log.Info("emissions dataset loaded",
		zap.Int("records", len(records)),
		zap.Int("min_year", minYear),
		zap.Int("max_year", maxYear),
	)
	return records, nil
}

// Parse reads CSV text with a header row into records in file order. Empty
// or NaN numeric fields become 0, and gdp_per_capita is derived per row.
func Parse(ctx context.Context, r io.Reader) ([]model.EmissionRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The header is sent before the first row, so it is always ready by the
	// time a row arrives.
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var cols fetcher.Columns
	takeHeader := func() error {
		select {
		case h := <-headerCh:
			cols = fetcher.IndexHeader(h)
			return eris.Wrap(cols.Require(RequiredColumns...), "emissions: header")
		default:
			return eris.New("emissions: empty payload")
		}
	}

	var (
		records   []model.EmissionRecord
		line      = 1
		badFields int
	)
	for row := range rowCh {
		line++
		if cols == nil {
			if err := takeHeader(); err != nil {
				return nil, err
			}
		}

		rec, bad, err := parseRow(cols, row)
		if err != nil {
			return nil, eris.Wrapf(err, "emissions: line %d", line)
		}
		badFields += bad
		records = append(records, rec)
	}
	for err := range errCh {
		if err != nil {
			return nil, eris.Wrap(err, "emissions: parse csv")
		}
	}

	if cols == nil {
		if err := takeHeader(); err != nil {
			return nil, err
		}
	}
	if badFields > 0 {
		zap.L().Warn("emissions: unparsable numeric fields replaced with 0", zap.Int("fields", badFields))
	}
	return records, nil
}

func parseRow(cols fetcher.Columns, row []string) (model.EmissionRecord, int, error) {
	year, err := parseYear(cols.Get(row, "year"))
	if err != nil {
		return model.EmissionRecord{}, 0, err
	}

	bad := 0
	num := func(name string) float64 {
		v, ok := parseNumber(cols.Get(row, name))
		if !ok {
			bad++
		}
		return v
	}

	rec := model.EmissionRecord{
		Country:      cols.Get(row, "country"),
		ISOCode:      cols.Get(row, "iso_code"),
		Year:         year,
		Population:   num("population"),
		GDP:          num("gdp"),
		CO2:          num("co2"),
		CO2PerCapita: num("co2_per_capita"),
		CoalCO2:      num("coal_co2"),
		OilCO2:       num("oil_co2"),
		GasCO2:       num("gas_co2"),
	}
	rec.DeriveGDPPerCapita()
	return rec, bad, nil
}

// parseYear accepts "2010" and "2010.0"; an empty year is filled with 0.
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, eris.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// parseNumber returns 0 for empty, NaN, infinite and unparsable input. ok is
// false for non-empty input that is unparsable or infinite.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, true
	}
	return f, true
}

// YearRange returns the smallest and largest year in records. ok is false
// when records is empty.
func YearRange(records []model.EmissionRecord) (minYear, maxYear int, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}
	minYear, maxYear = records[0].Year, records[0].Year
	for _, r := range records[1:] {
		minYear = min(minYear, r.Year)
		maxYear = max(maxYear, r.Year)
	}
	return minYear, maxYear, true
}
