package dashboard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/co2-dashboard/internal/cache"
	"github.com/sells-group/co2-dashboard/internal/model"
)

// Options configures a Dashboard.
type Options struct {
	DefaultYear int
	YearStep    int
	// OnRender, if set, observes every successful render pass.
	OnRender func(f model.FilterState, d time.Duration, v Views)
}

// Dashboard owns the two memoized datasets and re-runs the pipeline for
// each FilterState. The cached datasets are never mutated after load, so a
// Dashboard is safe for concurrent use.
type Dashboard struct {
	records   *cache.Memo[[]model.EmissionRecord]
	centroids *cache.Memo[model.Centroids]
	opts      Options
}

// New creates a Dashboard over the given memoized loaders.
func New(records *cache.Memo[[]model.EmissionRecord], centroids *cache.Memo[model.Centroids], opts Options) *Dashboard {
	if opts.DefaultYear == 0 {
		opts.DefaultYear = DefaultYear
	}
	if opts.YearStep <= 0 {
		opts.YearStep = DefaultYearStep
	}
	return &Dashboard{records: records, centroids: centroids, opts: opts}
}

// Warm loads both datasets concurrently. A failure of either is returned and
// nothing is rendered.
func (d *Dashboard) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := d.records.Get(gctx)
		return err
	})
	g.Go(func() error {
		_, err := d.centroids.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "dashboard: warm caches")
	}
	return nil
}

// Render loads (or reuses) the datasets and computes every view for f.
func (d *Dashboard) Render(ctx context.Context, f model.FilterState) (Views, error) {
	records, err := d.records.Get(ctx)
	if err != nil {
		return Views{}, eris.Wrap(err, "dashboard: load records")
	}
	centroids, err := d.centroids.Get(ctx)
	if err != nil {
		return Views{}, eris.Wrap(err, "dashboard: load centroids")
	}

	start := time.Now()
	v := Render(records, centroids, f)
	elapsed := time.Since(start)

	zap.L().Debug("dashboard: rendered",
		zap.Int("year", f.Year),
		zap.String("measure", string(f.Measure)),
		zap.String("source", string(f.Source)),
		zap.Int("timeseries", len(v.TimeSeries)),
		zap.Int("scatter", len(v.Scatter)),
		zap.Int("bars", len(v.Bars)),
		zap.Int("globe", len(v.Globe)),
		zap.Duration("elapsed", elapsed),
	)
	if d.opts.OnRender != nil {
		d.opts.OnRender(f, elapsed, v)
	}
	return v, nil
}

// Controls describes the selectors for the loaded dataset.
func (d *Dashboard) Controls(ctx context.Context) (Controls, error) {
	records, err := d.records.Get(ctx)
	if err != nil {
		return Controls{}, eris.Wrap(err, "dashboard: load records")
	}
	return BuildControls(records, d.opts.DefaultYear, d.opts.YearStep), nil
}

// DefaultFilter returns the filter state shown before any interaction.
func (d *Dashboard) DefaultFilter() model.FilterState {
	return model.DefaultFilterState(d.opts.DefaultYear)
}

// Invalidate drops both cached datasets.
func (d *Dashboard) Invalidate() {
	d.records.Invalidate()
	d.centroids.Invalidate()
}

// DatasetStatus reports whether one dataset is cached.
type DatasetStatus struct {
	Loaded   bool       `json:"loaded" yaml:"loaded"`
	LoadedAt *time.Time `json:"loaded_at,omitempty" yaml:"loaded_at,omitempty"`
}

// Status reports the cache state of both datasets.
type Status struct {
	Emissions  DatasetStatus `json:"emissions" yaml:"emissions"`
	Boundaries DatasetStatus `json:"boundaries" yaml:"boundaries"`
}

// Status reports which datasets are currently cached. It never triggers a load.
func (d *Dashboard) Status() Status {
	return Status{
		Emissions:  datasetStatus(d.records.Loaded()),
		Boundaries: datasetStatus(d.centroids.Loaded()),
	}
}

func datasetStatus(loaded bool, at time.Time) DatasetStatus {
	s := DatasetStatus{Loaded: loaded}
	if loaded {
		s.LoadedAt = &at
	}
	return s
}
