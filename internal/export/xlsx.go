// Package export writes rendered dashboard views as XLSX workbooks and as
// JSON, YAML or plain-text reports.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/co2-dashboard/internal/dashboard"
)

// Sheet names of the exported workbook, in order.
const (
	SheetFilter     = "Filter"
	SheetTimeSeries = "TimeSeries"
	SheetScatter    = "Scatter"
	SheetBars       = "Bars"
	SheetGlobe      = "Globe"
	SheetTable      = "Table"
)

// NewWorkbook builds a workbook with one sheet per view plus the filter.
func NewWorkbook(v dashboard.Views) (*xlsx.File, error) {
	f := xlsx.NewFile()

	filter, err := addSheet(f, SheetFilter, "year", "measure", "source")
	if err != nil {
		return nil, err
	}
	row := filter.AddRow()
	row.AddCell().SetInt(v.Filter.Year)
	row.AddCell().SetString(string(v.Filter.Measure))
	row.AddCell().SetString(string(v.Filter.Source))

	if err := writeSeries(f, SheetTimeSeries, v.TimeSeries); err != nil {
		return nil, err
	}

	scatter, err := addSheet(f, SheetScatter, "country", "gdp_per_capita", "co2", "size")
	if err != nil {
		return nil, err
	}
	for _, p := range v.Scatter {
		row := scatter.AddRow()
		row.AddCell().SetString(p.Country)
		row.AddCell().SetFloat(p.GDPPerCapita)
		row.AddCell().SetFloat(p.CO2)
		row.AddCell().SetFloat(p.Size)
	}

	bars, err := addSheet(f, SheetBars, "country", string(v.Filter.Source))
	if err != nil {
		return nil, err
	}
	for _, b := range v.Bars {
		row := bars.AddRow()
		row.AddCell().SetString(b.Country)
		row.AddCell().SetFloat(b.Value)
	}

	globe, err := addSheet(f, SheetGlobe, "iso_code", "co2", "country", "latitude", "longitude")
	if err != nil {
		return nil, err
	}
	for _, p := range v.Globe {
		row := globe.AddRow()
		row.AddCell().SetString(p.ISOCode)
		row.AddCell().SetFloat(p.CO2)
		row.AddCell().SetString(p.Country)
		optionalFloat(row.AddCell(), p.Latitude)
		optionalFloat(row.AddCell(), p.Longitude)
	}

	if err := writeSeries(f, SheetTable, v.Table); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteXLSX writes the workbook for v to w.
func WriteXLSX(w io.Writer, v dashboard.Views) error {
	f, err := NewWorkbook(v)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

// SaveXLSX writes the workbook for v to path.
func SaveXLSX(path string, v dashboard.Views) error {
	f, err := NewWorkbook(v)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func writeSeries(f *xlsx.File, name string, points []dashboard.SeriesPoint) error {
	sheet, err := addSheet(f, name, "country", "year", "value")
	if err != nil {
		return err
	}
	for _, p := range points {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Country)
		row.AddCell().SetInt(p.Year)
		row.AddCell().SetFloat(p.Value)
	}
	return nil
}

func addSheet(f *xlsx.File, name string, header ...string) (*xlsx.Sheet, error) {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %s", name)
	}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	return sheet, nil
}

// optionalFloat leaves the cell blank for a missing value.
func optionalFloat(c *xlsx.Cell, v *float64) {
	if v == nil {
		c.SetString("")
		return
	}
	c.SetFloat(*v)
}
