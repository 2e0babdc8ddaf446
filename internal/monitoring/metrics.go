package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

var (
	// result: ok | error
	SourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kingdom_source_fetches_total",
			Help: "Relation fetches by backend, entity and result",
		},
		[]string{"backend", "entity", "result"},
	)

	SourceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kingdom_source_fetch_duration_seconds",
			Help:    "Duration of relation fetches",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"backend", "entity"},
	)

	// result: hit | miss | error
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kingdom_cache_lookups_total",
			Help: "Dataset cache lookups by result",
		},
		[]string{"result"},
	)

	// kind: analyze | campaign | image | analyst
	// result: ok | error | timeout | blocked | empty
	GenerativeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kingdom_generative_calls_total",
			Help: "Calls to the generative model",
		},
		[]string{"kind", "result"},
	)

	ReportsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kingdom_reports_generated_total",
			Help: "PDF reports rendered",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestsTotal)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(SourceFetches)
		prometheus.MustRegister(SourceFetchDuration)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(GenerativeCalls)
		prometheus.MustRegister(ReportsGenerated)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
