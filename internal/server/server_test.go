package server

import (
	"context"
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/co2-dashboard/internal/dashboard"
	"github.com/sells-group/co2-dashboard/internal/model"
	"github.com/sells-group/co2-dashboard/internal/monitoring"
)

type fakeRenderer struct {
	err         error
	infinite    bool
	loaded      bool
	invalidated atomic.Int32

	mu   sync.Mutex
	last model.FilterState
}

func (f *fakeRenderer) lastFilter() model.FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeRenderer) Render(_ context.Context, fs model.FilterState) (dashboard.Views, error) {
	f.mu.Lock()
	f.last = fs
	f.mu.Unlock()
	if f.err != nil {
		return dashboard.Views{}, f.err
	}
	records := []model.EmissionRecord{
		{Country: "Asia", Year: 2010, CO2: 15000, CoalCO2: 9000},
		{Country: "World", Year: 2010, CO2: 33000, CoalCO2: 14000},
		{Country: "China", ISOCode: "CHN", Year: 2010, CO2: 8500, GDP: 1e13, Population: 1e9},
	}
	for i := range records {
		records[i].DeriveGDPPerCapita()
	}
	if f.infinite {
		records[2].CO2 = math.Inf(1)
	}
	centroids := model.Centroids{"China": {Country: "China", Latitude: 35, Longitude: 104}}
	return dashboard.Render(records, centroids, fs), nil
}

func (f *fakeRenderer) Controls(context.Context) (dashboard.Controls, error) {
	if f.err != nil {
		return dashboard.Controls{}, f.err
	}
	return dashboard.BuildControls([]model.EmissionRecord{{Year: 1990}, {Year: 2020}}, 2010, 5), nil
}

func (f *fakeRenderer) DefaultFilter() model.FilterState { return model.DefaultFilterState(2010) }

func (f *fakeRenderer) Status() dashboard.Status {
	return dashboard.Status{Emissions: dashboard.DatasetStatus{Loaded: f.loaded}}
}

func (f *fakeRenderer) Invalidate() { f.invalidated.Add(1) }

func newTestServer(t *testing.T, r Renderer, opts Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(r, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{loaded: true}, Options{})

	var body HealthResponse
	resp := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body.Status)
	assert.True(t, body.Datasets.Emissions.Loaded)
	assert.False(t, body.Datasets.Boundaries.Loaded)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestViews_DefaultFilter(t *testing.T) {
	fr := &fakeRenderer{}
	ts := newTestServer(t, fr, Options{})

	var v dashboard.Views
	resp := getJSON(t, ts.URL+"/api/views", &v)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.DefaultFilterState(2010), fr.lastFilter())
	assert.Equal(t, 2010, v.Filter.Year)
	assert.Len(t, v.Scatter, 1)
	assert.Equal(t, "Global CO₂ Heatmap (2010)", v.Charts.Globe.Title)
}

func TestViews_QueryParams(t *testing.T) {
	fr := &fakeRenderer{}
	ts := newTestServer(t, fr, Options{})

	resp := getJSON(t, ts.URL+"/api/views?year=2020&measure=co2_per_capita&source=gas", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.FilterState{Year: 2020, Measure: model.MeasurePerCapita, Source: model.SourceGas}, fr.lastFilter())
}

func TestViews_EmptyYearEncodesArrays(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	resp, err := http.Get(ts.URL + "/api/views?year=1800")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	for _, key := range []string{"scatter", "bars", "globe"} {
		assert.JSONEq(t, "[]", string(raw[key]), key)
	}
}

func TestViews_InvalidFilter(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	for _, q := range []string{"measure=methane", "source=wind", "year=twenty"} {
		var body map[string]string
		resp := getJSON(t, ts.URL+"/api/views?"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body["error"], q)
	}
}

func TestViews_DataUnavailable(t *testing.T) {
	fr := &fakeRenderer{err: model.NewUnavailableError("emissions", eris.New("boom"))}
	ts := newTestServer(t, fr, Options{})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/views", &body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "data unavailable")

	resp = getJSON(t, ts.URL+"/api/controls", &body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestViews_InternalError(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{err: eris.New("unexpected")}, Options{})

	resp := getJSON(t, ts.URL+"/api/views", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSingleView(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	var resp struct {
		Filter model.FilterState     `json:"filter"`
		Chart  *dashboard.Chart      `json:"chart"`
		Rows   []dashboard.SourceBar `json:"rows"`
	}
	r := getJSON(t, ts.URL+"/api/views/bars?source=coal", &resp)
	require.Equal(t, http.StatusOK, r.StatusCode)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, "CO₂ from Coal by Continent (2010)", resp.Chart.Title)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Asia", resp.Rows[0].Country)
	assert.InDelta(t, 9000, resp.Rows[0].Value, 1e-9)
}

func TestSingleView_TableHasNoChart(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	resp, err := http.Get(ts.URL + "/api/views/table")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.NotContains(t, raw, "chart")
	assert.Contains(t, raw, "rows")
}

func TestSingleView_Unknown(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/views/pie", &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "unknown view")
}

func TestControls(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	var c dashboard.Controls
	resp := getJSON(t, ts.URL+"/api/controls", &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dashboard.YearSlider{Min: 1990, Max: 2020, Step: 5, Default: 2010}, c.Year)
	assert.Len(t, c.Measures, 2)
	assert.Len(t, c.Sources, 3)
}

func TestInvalidate(t *testing.T) {
	fr := &fakeRenderer{}
	ts := newTestServer(t, fr, Options{})

	resp, err := http.Post(ts.URL+"/api/cache/invalidate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, int32(1), fr.invalidated.Load())

	// GET is not routed.
	resp, err = http.Get(ts.URL + "/api/cache/invalidate")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{AllowedOrigins: []string{"http://charts.local"}})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/controls", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://charts.local")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://charts.local", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := monitoring.NewCollector(reg)
	require.NoError(t, err)
	ts := newTestServer(t, &fakeRenderer{}, Options{Metrics: c})

	getJSON(t, ts.URL+"/api/views/scatter", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("/api/views/{view}", "200")))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint_AbsentWithoutCollector(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseFilter(t *testing.T) {
	def := model.DefaultFilterState(2010)

	r := httptest.NewRequest(http.MethodGet, "/api/views?year=1990&measure=total", nil)
	f, err := ParseFilter(r, def)
	require.NoError(t, err)
	assert.Equal(t, model.FilterState{Year: 1990, Measure: model.MeasureTotal, Source: model.SourceCoal}, f)

	r = httptest.NewRequest(http.MethodGet, "/api/views?year=2010.5", nil)
	_, err = ParseFilter(r, def)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidFilter)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	err := Run(context.Background(), "invalid-addr", http.NotFoundHandler())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "server listen"))
}

func TestViews_UnencodableValueIs500(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{infinite: true}, Options{})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/views", &body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "encode response")
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"n":1}`, rr.Body.String())

	rr = httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]float64{"v": math.NaN()})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "encode response")
}

func TestExportXLSX(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	resp, err := http.Get(ts.URL + "/api/export.xlsx?year=2010&source=oil")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, XLSXContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "co2-dashboard-2010.xlsx")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	bars := f.Sheet["Bars"]
	require.NotNil(t, bars)
	assert.Equal(t, "oil_co2", bars.Rows[0].Cells[1].String())
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestExportXLSX_InvalidFilter(t *testing.T) {
	ts := newTestServer(t, &fakeRenderer{}, Options{})

	resp := getJSON(t, ts.URL+"/api/export.xlsx?measure=methane", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
