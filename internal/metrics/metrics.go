package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shelf"

// Collector holds the Prometheus metrics of one shelf process.
// It implements library.Observer.
type Collector struct {
	registry *prometheus.Registry

	added    prometheus.Counter
	removed  prometheus.Counter
	updated  prometheus.Counter
	persists *prometheus.CounterVec
}

// New creates a collector with its own registry, so tests can build as
// many as they like.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_added_total",
			Help:      "Total number of books added.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_removed_total",
			Help:      "Total number of books removed.",
		}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_updated_total",
			Help:      "Total number of updates that changed a book.",
		}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_total",
			Help:      "Snapshot writes by result.",
		}, []string{"result"}),
	}

	c.registry.MustRegister(
		c.added,
		c.removed,
		c.updated,
		c.persists,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// TrackBooks exposes the current number of books through fn.
func (c *Collector) TrackBooks(fn func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "books",
		Help:      "Number of books currently in the library.",
	}, func() float64 { return float64(fn()) }))
}

// TrackStorage exposes storage availability (1 or 0) through fn.
func (c *Collector) TrackStorage(backend string, fn func() bool) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "storage_available",
		Help:        "Whether durable storage currently accepts writes.",
		ConstLabels: prometheus.Labels{"backend": backend},
	}, func() float64 {
		if fn() {
			return 1
		}
		return 0
	}))
}

func (c *Collector) BookAdded()   { c.added.Inc() }
func (c *Collector) BookRemoved() { c.removed.Inc() }
func (c *Collector) BookUpdated() { c.updated.Inc() }

func (c *Collector) Persisted(written bool, err error) {
	switch {
	case err != nil:
		c.persists.WithLabelValues("error").Inc()
	case !written:
		c.persists.WithLabelValues("skipped").Inc()
	default:
		c.persists.WithLabelValues("ok").Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
