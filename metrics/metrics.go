package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "docwatcher"

// Collector holds the Prometheus metrics of one docwatcher instance.
// Each collector owns its registry, so tests can build as many as they like.
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	// Pipeline metrics
	Imports        *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec
	ImportedBytes  prometheus.Counter
	WatchErrors    prometheus.Counter

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// SetSource reports the dedup tracker sizes
type SetSource interface {
	Snapshot() (completed, inFlight int)
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	imports := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files seen by the pipeline, by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	importDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time from claim to outcome, including the stabilization wait",
			Buckets:   []float64{0.5, 1, 2, 2.5, 3, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	importedBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_bytes_total",
			Help:      "Bytes copied into the consume folder",
		},
	)

	watchErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_errors_total",
			Help:      "Errors reported by the filesystem watcher",
		},
	)

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(
		imports,
		importDuration,
		importedBytes,
		watchErrors,
		httpRequests,
		httpDuration,
	)

	return &Collector{
		namespace:      namespace,
		registry:       registry,
		Imports:        imports,
		ImportDuration: importDuration,
		ImportedBytes:  importedBytes,
		WatchErrors:    watchErrors,
		HTTPRequests:   httpRequests,
		HTTPDuration:   httpDuration,
	}
}

// TrackSets exposes the completed and in-flight set sizes as gauges.
// Call it once per collector.
func (c *Collector) TrackSets(src SetSource) {
	c.registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: c.namespace,
				Name:      "processed_files",
				Help:      "Paths imported successfully since start",
			},
			func() float64 {
				completed, _ := src.Snapshot()
				return float64(completed)
			},
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: c.namespace,
				Name:      "processing_files",
				Help:      "Paths currently being imported",
			},
			func() float64 {
				_, inFlight := src.Snapshot()
				return float64(inFlight)
			},
		),
	)
}

// ObserveImport records one pipeline outcome
func (c *Collector) ObserveImport(trigger, outcome string, d time.Duration) {
	c.Imports.WithLabelValues(trigger, outcome).Inc()
	c.ImportDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
