// Package server exposes dashboard views and controls as JSON for a
// charting frontend.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/co2-dashboard/internal/dashboard"
	"github.com/sells-group/co2-dashboard/internal/export"
	"github.com/sells-group/co2-dashboard/internal/model"
	"github.com/sells-group/co2-dashboard/internal/monitoring"
)

// Views that can be requested individually.
const (
	ViewTimeSeries = "timeseries"
	ViewScatter    = "scatter"
	ViewBars       = "bars"
	ViewGlobe      = "globe"
	ViewTable      = "table"
)

// Renderer produces views for a filter. *dashboard.Dashboard implements it.
type Renderer interface {
	Render(ctx context.Context, f model.FilterState) (dashboard.Views, error)
	Controls(ctx context.Context) (dashboard.Controls, error)
	DefaultFilter() model.FilterState
	Status() dashboard.Status
	Invalidate()
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// Metrics, if set, records request counts and serves /metrics.
	Metrics *monitoring.Collector
}

// Server routes API requests to a Renderer.
type Server struct {
	dash    Renderer
	opts    Options
	log     *zap.Logger
	handler http.Handler
}

// New builds the router for d.
func New(d Renderer, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		dash: d,
		opts: opts,
		log:  zap.L().With(zap.String("component", "server")),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/controls", s.handleControls)
		r.Get("/views", s.handleViews)
		r.Get("/views/{view}", s.handleView)
		r.Get("/export.xlsx", s.handleExport)
		r.Post("/cache/invalidate", s.handleInvalidate)
	})
	return r
}

// HealthResponse reports liveness and which datasets are cached.
type HealthResponse struct {
	Status   string           `json:"status"`
	Datasets dashboard.Status `json:"datasets"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Datasets: s.dash.Status()})
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	c, err := s.dash.Controls(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	v, err := s.render(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ViewResponse carries one view with the filter that produced it.
type ViewResponse struct {
	Filter model.FilterState `json:"filter"`
	Chart  *dashboard.Chart  `json:"chart,omitempty"`
	Rows   any               `json:"rows"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")
	switch name {
	case ViewTimeSeries, ViewScatter, ViewBars, ViewGlobe, ViewTable:
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown view " + strconv.Quote(name)})
		return
	}

	v, err := s.render(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := ViewResponse{Filter: v.Filter}
	switch name {
	case ViewTimeSeries:
		resp.Chart, resp.Rows = &v.Charts.TimeSeries, v.TimeSeries
	case ViewScatter:
		resp.Chart, resp.Rows = &v.Charts.Scatter, v.Scatter
	case ViewBars:
		resp.Chart, resp.Rows = &v.Charts.Bars, v.Bars
	case ViewGlobe:
		resp.Chart, resp.Rows = &v.Charts.Globe, v.Globe
	case ViewTable:
		resp.Rows = v.Table
	}
	writeJSON(w, http.StatusOK, resp)
}

// XLSXContentType is the media type of exported workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, err := s.render(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, v); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="co2-dashboard-%d.xlsx"`, v.Filter.Year))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	s.dash.Invalidate()
	s.log.Info("dataset caches invalidated", zap.String("request_id", RequestID(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) render(r *http.Request) (dashboard.Views, error) {
	f, err := ParseFilter(r, s.dash.DefaultFilter())
	if err != nil {
		return dashboard.Views{}, err
	}
	return s.dash.Render(r.Context(), f)
}

// ParseFilter reads year, measure and source query parameters. Missing
// parameters keep the value from def.
func ParseFilter(r *http.Request, def model.FilterState) (model.FilterState, error) {
	q := r.URL.Query()
	f := def

	if s := q.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return f, eris.Wrapf(model.ErrInvalidFilter, "year %q is not an integer", s)
		}
		f = f.WithYear(year)
	}
	if s := q.Get("measure"); s != "" {
		m, err := model.ParseMeasure(s)
		if err != nil {
			return f, err
		}
		f.Measure = m
	}
	if s := q.Get("source"); s != "" {
		src, err := model.ParseSource(s)
		if err != nil {
			return f, err
		}
		f.Source = src
	}
	return f, nil
}

// statusFor maps a pipeline error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a logged 500 rather than an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(map[string]string{"error": "encode response: " + err.Error()}) //nolint:errcheck
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}
