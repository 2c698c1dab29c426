package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/co2-dashboard/internal/dashboard"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatText:
		return f, nil
	}
	return "", eris.Errorf("export: unknown format %q (want json, yaml or text)", s)
}

// Encode writes v as JSON or YAML. Text output is type-specific; see
// WriteViewsText and WriteControlsText.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "export: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return eris.Wrap(enc.Close(), "export: close yaml encoder")
	}
	return eris.Errorf("export: format %q is not a structured encoding", format)
}

// WriteViews writes v in the requested format.
func WriteViews(w io.Writer, format Format, v dashboard.Views) error {
	if format == FormatText {
		return WriteViewsText(w, v)
	}
	return Encode(w, format, v)
}

// WriteControls writes c in the requested format.
func WriteControls(w io.Writer, format Format, c dashboard.Controls) error {
	if format == FormatText {
		return WriteControlsText(w, c)
	}
	return Encode(w, format, c)
}

var printer = message.NewPrinter(language.English)

// TableTitle heads the raw data table section of the text report.
const TableTitle = "CO₂ Data Table"

// WriteViewsText prints each view as an aligned table with thousands
// separators.
func WriteViewsText(w io.Writer, v dashboard.Views) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	section(tw, v.Charts.TimeSeries.Title)
	printer.Fprintf(tw, "country\tyear\t%s\n", v.Filter.Measure)
	for _, p := range v.TimeSeries {
		printer.Fprintf(tw, "%s\t%s\t%.3f\n", p.Country, strconv.Itoa(p.Year), p.Value)
	}

	section(tw, v.Charts.Scatter.Title)
	printer.Fprintf(tw, "country\tgdp_per_capita\tco2\n")
	for _, p := range v.Scatter {
		printer.Fprintf(tw, "%s\t%.2f\t%.3f\n", p.Country, p.GDPPerCapita, p.CO2)
	}

	section(tw, v.Charts.Bars.Title)
	printer.Fprintf(tw, "country\t%s\n", v.Filter.Source)
	for _, b := range v.Bars {
		printer.Fprintf(tw, "%s\t%.3f\n", b.Country, b.Value)
	}

	section(tw, v.Charts.Globe.Title)
	printer.Fprintf(tw, "iso_code\tcountry\tco2\tlatitude\tlongitude\n")
	for _, p := range v.Globe {
		printer.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%s\n", p.ISOCode, p.Country, p.CO2, optional(p.Latitude), optional(p.Longitude))
	}

	section(tw, TableTitle)
	printer.Fprintf(tw, "country\tyear\t%s\n", v.Filter.Measure)
	for _, p := range v.Table {
		printer.Fprintf(tw, "%s\t%s\t%.3f\n", p.Country, strconv.Itoa(p.Year), p.Value)
	}

	return eris.Wrap(tw.Flush(), "export: flush text report")
}

// WriteControlsText prints the selector configuration.
func WriteControlsText(w io.Writer, c dashboard.Controls) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	// Years print without grouping.
	fmt.Fprintf(tw, "year\tmin %d\tmax %d\tstep %d\tdefault %d\n", c.Year.Min, c.Year.Max, c.Year.Step, c.Year.Default)
	for _, m := range c.Measures {
		printer.Fprintf(tw, "measure\t%s\t%s\n", m.Value, m.Label)
	}
	for _, s := range c.Sources {
		printer.Fprintf(tw, "source\t%s\t%s\n", s.Value, s.Label)
	}
	return eris.Wrap(tw.Flush(), "export: flush controls")
}

func section(w io.Writer, title string) {
	printer.Fprintf(w, "\n== %s ==\n", title)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

// formatFloat renders v without exponent.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
