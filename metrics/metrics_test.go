package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/sharkscope/helpers"
)

func TestObserveLoad(t *testing.T) {
	m := New()
	m.ObserveLoad("incidents.csv", &helpers.LoadReport{
		Rows:          1200,
		MalformedRows: 3,
		FieldErrors:   map[string]int{"latitude": 7, "age": 2},
	})

	assert.Equal(t, 1200.0, testutil.ToFloat64(m.incidentsLoaded.WithLabelValues("incidents.csv")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.malformedRows))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.fieldErrors.WithLabelValues("latitude")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.fieldErrors))

	// a reload replaces the per-column counts
	m.ObserveLoad("incidents.csv", &helpers.LoadReport{Rows: 10, FieldErrors: map[string]int{"age": 1}})
	assert.Equal(t, 1, testutil.CollectAndCount(m.fieldErrors))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.incidentsLoaded.WithLabelValues("incidents.csv")))

	m.ObserveLoad("ignored", nil)
	assert.Equal(t, 1, testutil.CollectAndCount(m.incidentsLoaded))
}

func TestObserveRequestAndQuery(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/v1/dashboard", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("/api/v1/dashboard", http.StatusOK, 40*time.Millisecond)
	m.ObserveRequest("/api/v1/dashboard", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/dashboard", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/dashboard", "400")))

	m.ObserveQuery(25, 100)
	m.ObserveQuery(0, 0)
	m.ObserveRegions(8)
	assert.Equal(t, 8.0, testutil.ToFloat64(m.regionsLoaded))

	expected := `
# HELP sharkscope_requests_total HTTP requests by route and status code
# TYPE sharkscope_requests_total counter
sharkscope_requests_total{code="200",route="/api/v1/dashboard"} 2
sharkscope_requests_total{code="400",route="/api/v1/dashboard"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "sharkscope_requests_total"))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRegions(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sharkscope_regions_loaded 3")
	assert.Contains(t, string(body), "go_goroutines")
}
