package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spektr-org/sharkscope/helpers"
)

const namespace = "sharkscope"

// Metrics holds the collectors for data loading and dashboard queries. Each
// instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	incidentsLoaded *prometheus.GaugeVec
	malformedRows   prometheus.Gauge
	fieldErrors     *prometheus.GaugeVec
	regionsLoaded   prometheus.Gauge

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	matched         prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.incidentsLoaded = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "incidents_loaded",
		Help:      "Incidents held in memory, by source file",
	}, []string{"source"})
	m.malformedRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "malformed_rows",
		Help:      "CSV rows skipped at load because they could not be parsed",
	})
	m.fieldErrors = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "field_errors",
		Help:      "Cells degraded to missing at load, by column",
	}, []string{"column"})
	m.regionsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "regions_loaded",
		Help:      "State regions read from the boundary file",
	})
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	m.matched = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "matched_ratio",
		Help:      "Share of incidents selected by each applied filter state",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	m.registry.MustRegister(
		m.incidentsLoaded, m.malformedRows, m.fieldErrors, m.regionsLoaded,
		m.requests, m.requestDuration, m.matched,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLoad records the outcome of a CSV load.
func (m *Metrics) ObserveLoad(source string, report *helpers.LoadReport) {
	if report == nil {
		return
	}
	m.incidentsLoaded.WithLabelValues(source).Set(float64(report.Rows))
	m.malformedRows.Set(float64(report.MalformedRows))
	m.fieldErrors.Reset()
	for column, n := range report.FieldErrors {
		m.fieldErrors.WithLabelValues(column).Set(float64(n))
	}
}

// ObserveRegions records how many regions the boundary file produced.
func (m *Metrics) ObserveRegions(n int) {
	m.regionsLoaded.Set(float64(n))
}

// ObserveRequest counts one HTTP request and its latency.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveQuery records the share of the table a filter state selected.
// An empty table is not recorded.
func (m *Metrics) ObserveQuery(matched, total int) {
	if total <= 0 {
		return
	}
	m.matched.Observe(float64(matched) / float64(total))
}
