package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spektr-org/sharkscope/config"
	"github.com/spektr-org/sharkscope/engine"
	"github.com/spektr-org/sharkscope/helpers"
	"github.com/spektr-org/sharkscope/metrics"
)

func testDataset() *engine.Dataset {
	return engine.NewDataset([]engine.Incident{
		{Year: engine.Int(2020), Month: engine.Int(1), Day: engine.Int(15), State: "NSW", SharkName: "white shark",
			Activity: "surfing", Provocation: "unprovoked", Gender: "male", Age: engine.Float(25),
			Latitude: engine.Float(-33.89), Longitude: engine.Float(151.27)},
		{Year: engine.Int(2019), State: "New South Wales", SharkName: "white shark", Activity: "swimming", Gender: "female"},
		{Year: engine.Int(2021), State: "WA", SharkName: "tiger shark", Activity: "surfing"},
	})
}

type testServer struct {
	router  *Router
	metrics *metrics.Metrics
	logs    *observer.ObservedLogs
}

func newTestServer(t *testing.T, regions []helpers.Region) *testServer {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	m := metrics.New()

	r := NewRouter(log, m)
	r.RegisterRoutes(NewHandler(testDataset(), regions, m, log, engine.WithTopSpecies(1)))
	return &testServer{router: r, metrics: m, logs: logs}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/dashboard", `{"states":["New South Wales","NSW"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Filters    engine.FilterState `json:"filters"`
		Total      int                `json:"total"`
		Matched    int                `json:"matched"`
		Series     []engine.Series    `json:"series"`
		MapPoints  []engine.MapPoint  `json:"mapPoints"`
		QuickFacts []string           `json:"quickFacts"`
	}
	decode(t, rec, &got)

	assert.Equal(t, []string{"NSW"}, got.Filters.States, "filters are normalized")
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Matched)
	assert.Len(t, got.Series, 8)
	assert.Len(t, got.MapPoints, 1)
	require.Len(t, got.QuickFacts, 5)
	assert.Equal(t, "Total recorded attacks: 2", got.QuickFacts[0])
	assert.Equal(t, "Year range: 2019 - 2020", got.QuickFacts[1])
}

func TestDashboardEmptyBody(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Matched int `json:"matched"`
	}
	decode(t, rec, &got)
	assert.Equal(t, 3, got.Matched)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"malformed json", http.MethodPost, "/api/v1/dashboard", `{"states":`, http.StatusBadRequest},
		{"bad range", http.MethodPost, "/api/v1/incidents", `{"age_range":[1,2,3]}`, http.StatusBadRequest},
		{"missing dimension", http.MethodPost, "/api/v1/series", "", http.StatusBadRequest},
		{"unknown dimension", http.MethodPost, "/api/v1/series?dimension=colour", "", http.StatusBadRequest},
		{"negative limit", http.MethodPost, "/api/v1/series?dimension=species&limit=-1", "", http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/api/v1/dashboard", "", http.StatusMethodNotAllowed},
		{"post options", http.MethodPost, "/api/v1/options", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.target, tt.body)
			require.Equal(t, tt.status, rec.Code)

			var body map[string]string
			decode(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSeries(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/series?dimension=activity&mode=percent&limit=1", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got engine.Series
	decode(t, rec, &got)
	assert.Equal(t, "by_activity", got.Name)
	assert.Equal(t, engine.ModePercent, got.Mode)
	require.Len(t, got.Points, 1)
	assert.Equal(t, engine.Point{Label: "surfing", Value: 66.7}, got.Points[0])
}

func TestIncidents(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/incidents", `{"selected_sharks":["tiger shark"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got engine.TableData
	decode(t, rec, &got)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "2021", got.Rows[0][0])
	assert.Equal(t, "Total (1 records)", got.Summary.Label)
}

func TestCharts(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/charts", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []engine.ChartConfig
	decode(t, rec, &got)
	require.NotEmpty(t, got)
	assert.Equal(t, "bar", got[0].ChartType)
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodPost, "/api/v1/export", `{"states":["WA"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sharkscope.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Incidents")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestOptionsAndRegions(t *testing.T) {
	regions := []helpers.Region{{Name: "Western Australia", Code: "WA", Color: "#2196F3", Centroid: helpers.LatLon{Lat: -25, Lon: 122}}}
	s := newTestServer(t, regions)

	rec := s.do(http.MethodGet, "/api/v1/options", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var opts engine.FilterOptions
	decode(t, rec, &opts)
	assert.Equal(t, []string{"NSW", "WA"}, opts.States)
	assert.Equal(t, engine.Range{Lo: 2019, Hi: 2021}, opts.YearBounds)

	rec = s.do(http.MethodGet, "/api/v1/regions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []helpers.Region
	decode(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "WA", got[0].Code)

	empty := newTestServer(t, nil)
	rec = empty.do(http.MethodGet, "/api/v1/regions", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRequestIDAndLogging(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	entries := s.logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, generated, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "abc-123", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(http.StatusOK), entries[1].ContextMap()["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodPost, "/api/v1/dashboard", `{}`)
	s.do(http.MethodGet, "/api/v1/dashboard", "")

	rec := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sharkscope_requests_total{code="200",route="/api/v1/dashboard"} 1`)
	assert.Contains(t, body, `sharkscope_requests_total{code="405",route="/api/v1/dashboard"} 1`)
	assert.Contains(t, body, "sharkscope_matched_ratio_count 1")
}

func TestNewServerNilLogger(t *testing.T) {
	srv := NewServer(config.Server{ListenAddress: "127.0.0.1:0"}, http.NotFoundHandler(), nil)
	require.NotNil(t, srv.logger)
	assert.NotPanics(t, func() {
		assert.NoError(t, srv.Stop(context.Background()))
	})
}
