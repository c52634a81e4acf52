// Package metrics exports control-loop counters and bag gauges to Prometheus.
// Every Collector owns its registry so several engines can coexist in one
// process (and in tests). A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cognerd"

// Collector holds the engine's metrics.
type Collector struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram

	tasks     *prometheus.CounterVec // by outcome
	evictions *prometheus.CounterVec // by bag
	fired     prometheus.Counter
	created   prometheus.Counter
	revisions prometheus.Counter
	answers   prometheus.Counter

	bagSize *prometheus.GaugeVec // by bag
	bagMass *prometheus.GaugeVec // by bag
}

// New creates a Collector with a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "cycles_total",
			Help:      "Work cycles executed",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one work cycle",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
		}),
		tasks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "memory",
			Name:      "tasks_total",
			Help:      "Tasks by outcome (input, derived, novel, neglected, ignored)",
		}, []string{"outcome"}),
		evictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bag",
			Name:      "evictions_total",
			Help:      "Items pushed out of a bag by capacity pressure",
		}, []string{"bag"}),
		fired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "concept",
			Name:      "fired_total",
			Help:      "Concept firing steps",
		}),
		created: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "concept",
			Name:      "created_total",
			Help:      "Concepts created",
		}),
		revisions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "concept",
			Name:      "revisions_total",
			Help:      "Judgments produced by revision",
		}),
		answers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "concept",
			Name:      "answers_total",
			Help:      "Better solutions found for questions",
		}),
		bagSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bag",
			Name:      "items",
			Help:      "Items currently held",
		}, []string{"bag"}),
		bagMass: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bag",
			Name:      "mass",
			Help:      "Sum of occupied level numbers",
		}, []string{"bag"}),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Cycle records one completed work cycle.
func (c *Collector) Cycle(d time.Duration) {
	if c == nil {
		return
	}
	c.cycles.Inc()
	c.cycleDuration.Observe(d.Seconds())
}

// Task counts a task outcome.
func (c *Collector) Task(outcome string) {
	if c == nil {
		return
	}
	c.tasks.WithLabelValues(outcome).Inc()
}

// Evicted counts an eviction from the named bag.
func (c *Collector) Evicted(bag string) {
	if c == nil {
		return
	}
	c.evictions.WithLabelValues(bag).Inc()
}

func (c *Collector) Fired() {
	if c != nil {
		c.fired.Inc()
	}
}

func (c *Collector) ConceptCreated() {
	if c != nil {
		c.created.Inc()
	}
}

func (c *Collector) Revised() {
	if c != nil {
		c.revisions.Inc()
	}
}

func (c *Collector) Answered() {
	if c != nil {
		c.answers.Inc()
	}
}

// BagSize sets the gauge for the named bag.
func (c *Collector) BagSize(bag string, n int) {
	if c == nil {
		return
	}
	c.bagSize.WithLabelValues(bag).Set(float64(n))
}

// BagMass sets the mass gauge for the named bag.
func (c *Collector) BagMass(bag string, mass int) {
	if c == nil {
		return
	}
	c.bagMass.WithLabelValues(bag).Set(float64(mass))
}
