// Package monitoring exposes Prometheus metrics for dataset loads, render
// passes and HTTP requests.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/co2-dashboard/internal/dashboard"
	"github.com/sells-group/co2-dashboard/internal/model"
)

// Collector bundles the dashboard's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	DatasetLoads        *prometheus.CounterVec
	DatasetLoadDuration *prometheus.HistogramVec
	Renders             prometheus.Counter
	RenderDuration      prometheus.Histogram
	ViewRows            *prometheus.GaugeVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

// NewCollector registers metrics against reg, defaulting to the global
// Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dataset_loads_total",
			Help: "Remote dataset load attempts, labeled by dataset and result.",
		}, []string{"dataset", "result"}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Time to download and parse a remote dataset.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"dataset"}),
		Renders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_renders_total",
			Help: "Completed render passes.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_render_duration_seconds",
			Help:    "Time spent computing all views for one filter state.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ViewRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dashboard_view_rows",
			Help: "Row count of each view in the most recent render pass.",
		}, []string{"view"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Handled HTTP requests, labeled by route and status code.",
		}, []string{"route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"route"}),
	}

	for _, col := range []prometheus.Collector{
		c.DatasetLoads, c.DatasetLoadDuration, c.Renders, c.RenderDuration,
		c.ViewRows, c.HTTPRequests, c.HTTPDuration,
	} {
		if err := reg.Register(col); err != nil {
			return nil, eris.Wrap(err, "monitoring: register collector")
		}
	}
	return c, nil
}

// ObserveLoad records one dataset load attempt. Its signature matches
// cache.Memo.OnLoad.
func (c *Collector) ObserveLoad(dataset string, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.DatasetLoads.WithLabelValues(dataset, result).Inc()
	c.DatasetLoadDuration.WithLabelValues(dataset).Observe(d.Seconds())
}

// ObserveRender records one render pass. Its signature matches
// dashboard.Options.OnRender.
func (c *Collector) ObserveRender(_ model.FilterState, d time.Duration, v dashboard.Views) {
	if c == nil {
		return
	}
	c.Renders.Inc()
	c.RenderDuration.Observe(d.Seconds())
	c.ViewRows.WithLabelValues("timeseries").Set(float64(len(v.TimeSeries)))
	c.ViewRows.WithLabelValues("scatter").Set(float64(len(v.Scatter)))
	c.ViewRows.WithLabelValues("bars").Set(float64(len(v.Bars)))
	c.ViewRows.WithLabelValues("globe").Set(float64(len(v.Globe)))
}

// ObserveHTTP records one handled request.
func (c *Collector) ObserveHTTP(route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
