package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sells-group/co2-dashboard/internal/cache"
	"github.com/sells-group/co2-dashboard/internal/config"
	"github.com/sells-group/co2-dashboard/internal/dashboard"
	"github.com/sells-group/co2-dashboard/internal/emissions"
	"github.com/sells-group/co2-dashboard/internal/fetcher"
	"github.com/sells-group/co2-dashboard/internal/geo"
	"github.com/sells-group/co2-dashboard/internal/model"
	"github.com/sells-group/co2-dashboard/internal/monitoring"
)

// dashboardEnv holds the dashboard and its optional metrics collector.
type dashboardEnv struct {
	Dashboard *dashboard.Dashboard
	Metrics   *monitoring.Collector // nil unless a registry was supplied
}

// initDashboard wires the fetcher, both memoized loaders and the dashboard
// from config. Metrics are registered on reg when it is non-nil.
func initDashboard(c *config.Config, mode string, reg prometheus.Registerer) (*dashboardEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	env := &dashboardEnv{}
	if reg != nil {
		m, err := monitoring.NewCollector(reg)
		if err != nil {
			return nil, err
		}
		env.Metrics = m
	}

	dl := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.Data.UserAgent,
		Timeout:   time.Duration(c.Data.TimeoutSecs) * time.Second,
	})

	records := cache.NewMemo("emissions", func(ctx context.Context) ([]model.EmissionRecord, error) {
		return emissions.Load(ctx, dl, c.Data.CO2URL)
	})
	records.OnLoad = env.Metrics.ObserveLoad

	src := geo.Source{
		URL:       c.Data.BoundariesURL,
		Format:    geo.Format(c.Data.BoundariesFormat),
		NameField: c.Data.BoundariesNameField,
		TempDir:   c.Data.TempDir,
	}
	centroids := cache.NewMemo("boundaries", func(ctx context.Context) (model.Centroids, error) {
		return geo.LoadCentroids(ctx, dl, src)
	})
	centroids.OnLoad = env.Metrics.ObserveLoad

	env.Dashboard = dashboard.New(records, centroids, dashboard.Options{
		DefaultYear: c.Dashboard.DefaultYear,
		YearStep:    c.Dashboard.YearStep,
		OnRender:    env.Metrics.ObserveRender,
	})
	return env, nil
}

// filterFlags are the selector flags shared by render and export.
type filterFlags struct {
	year    int
	measure string
	source  string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&ff.year, "year", 0, "selected year (default from config)")
	cmd.Flags().StringVar(&ff.measure, "measure", string(model.MeasureTotal), "measure: co2 or co2_per_capita")
	cmd.Flags().StringVar(&ff.source, "source", string(model.SourceCoal), "source: coal_co2, oil_co2 or gas_co2")
}

// state builds a FilterState, starting from def for unset values.
func (ff *filterFlags) state(def model.FilterState) (model.FilterState, error) {
	f := def
	if ff.year != 0 {
		f.Year = ff.year
	}
	m, err := model.ParseMeasure(ff.measure)
	if err != nil {
		return f, err
	}
	s, err := model.ParseSource(ff.source)
	if err != nil {
		return f, err
	}
	f.Measure, f.Source = m, s
	return f, nil
}
