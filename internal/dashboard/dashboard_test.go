package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/co2-dashboard/internal/cache"
	"github.com/sells-group/co2-dashboard/internal/model"
)

type loaders struct {
	recordCalls   atomic.Int32
	centroidCalls atomic.Int32
	recordErr     error
	centroidErr   error
}

func (l *loaders) dashboard(opts Options) *Dashboard {
	records := cache.NewMemo("records", func(ctx context.Context) ([]model.EmissionRecord, error) {
		l.recordCalls.Add(1)
		if l.recordErr != nil {
			return nil, l.recordErr
		}
		return fixtureRecords(), nil
	})
	centroids := cache.NewMemo("centroids", func(ctx context.Context) (model.Centroids, error) {
		l.centroidCalls.Add(1)
		if l.centroidErr != nil {
			return nil, l.centroidErr
		}
		return model.Centroids{"France": {Country: "France", Latitude: 46.6, Longitude: 2.4}}, nil
	})
	return New(records, centroids, opts)
}

func TestDashboard_RenderLoadsOnce(t *testing.T) {
	l := &loaders{}
	d := l.dashboard(Options{})

	for _, year := range []int{2000, 2005, 2010} {
		v, err := d.Render(context.Background(), d.DefaultFilter().WithYear(year))
		require.NoError(t, err)
		assert.Equal(t, year, v.Filter.Year)
	}
	assert.Equal(t, int32(1), l.recordCalls.Load())
	assert.Equal(t, int32(1), l.centroidCalls.Load())
}

func TestDashboard_InvalidateReloads(t *testing.T) {
	l := &loaders{}
	d := l.dashboard(Options{})

	_, err := d.Render(context.Background(), d.DefaultFilter())
	require.NoError(t, err)
	d.Invalidate()
	_, err = d.Render(context.Background(), d.DefaultFilter())
	require.NoError(t, err)

	assert.Equal(t, int32(2), l.recordCalls.Load())
	assert.Equal(t, int32(2), l.centroidCalls.Load())
}

func TestDashboard_RenderMatchesPureRender(t *testing.T) {
	l := &loaders{}
	d := l.dashboard(Options{})
	f := model.FilterState{Year: 2010, Measure: model.MeasureTotal, Source: model.SourceGas}

	v, err := d.Render(context.Background(), f)
	require.NoError(t, err)

	centroids := model.Centroids{"France": {Country: "France", Latitude: 46.6, Longitude: 2.4}}
	assert.Equal(t, Render(fixtureRecords(), centroids, f), v)
}

func TestDashboard_DataUnavailableIsFatal(t *testing.T) {
	l := &loaders{centroidErr: model.NewUnavailableError("boundaries", errors.New("status 502"))}
	d := l.dashboard(Options{})

	_, err := d.Render(context.Background(), d.DefaultFilter())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDataUnavailable))

	err = d.Warm(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDataUnavailable))
}

func TestDashboard_Warm(t *testing.T) {
	l := &loaders{}
	d := l.dashboard(Options{})

	require.NoError(t, d.Warm(context.Background()))
	assert.Equal(t, int32(1), l.recordCalls.Load())
	assert.Equal(t, int32(1), l.centroidCalls.Load())
}

func TestDashboard_Controls(t *testing.T) {
	l := &loaders{}
	d := l.dashboard(Options{DefaultYear: 2005, YearStep: 10})

	c, err := d.Controls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, YearSlider{Min: 2000, Max: 2020, Step: 10, Default: 2005}, c.Year)
	assert.Equal(t, 2005, d.DefaultFilter().Year)
}

func TestDashboard_OnRender(t *testing.T) {
	l := &loaders{}
	var observed model.FilterState
	d := l.dashboard(Options{OnRender: func(f model.FilterState, _ time.Duration, _ Views) {
		observed = f
	}})

	f := d.DefaultFilter().WithYear(2000)
	_, err := d.Render(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, f, observed)
}

func TestDashboard_Status(t *testing.T) {
	l := &loaders{}
	d := l.dashboard(Options{})

	s := d.Status()
	assert.False(t, s.Emissions.Loaded)
	assert.Nil(t, s.Emissions.LoadedAt)

	require.NoError(t, d.Warm(context.Background()))
	s = d.Status()
	assert.True(t, s.Emissions.Loaded)
	assert.True(t, s.Boundaries.Loaded)
	require.NotNil(t, s.Boundaries.LoadedAt)

	d.Invalidate()
	assert.False(t, d.Status().Emissions.Loaded)
	// Status never loads.
	assert.Equal(t, int32(1), l.recordCalls.Load())
}
