// Package metrics exposes Prometheus counters for message routing and
// answer resolution. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the bot
type Collector struct {
	registry *prometheus.Registry

	Messages             *prometheus.CounterVec
	MessageDuration      prometheus.Histogram
	ResolverTiers        *prometheus.CounterVec
	CollaboratorFailures *prometheus.CounterVec
	CorpusSize           prometheus.Gauge
}

// NewCollector creates a collector registered on its own registry, so
// several collectors can coexist in tests.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	messages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Total number of processed messages by intent",
		},
		[]string{"intent"},
	)

	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_duration_seconds",
			Help:      "Time spent producing a reply",
			Buckets:   prometheus.DefBuckets,
		},
	)

	tiers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_tier_total",
			Help:      "Answer resolutions by winning tier",
		},
		[]string{"tier"},
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_failures_total",
			Help:      "Failures of external collaborators",
		},
		[]string{"collaborator"},
	)

	corpusSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_size",
			Help:      "Number of QA pairs in the active index",
		},
	)

	registry.MustRegister(messages, duration, tiers, failures, corpusSize)

	return &Collector{
		registry:             registry,
		Messages:             messages,
		MessageDuration:      duration,
		ResolverTiers:        tiers,
		CollaboratorFailures: failures,
		CorpusSize:           corpusSize,
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveMessage(intent string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Messages.WithLabelValues(intent).Inc()
	c.MessageDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ObserveTier(tier string) {
	if c == nil {
		return
	}
	c.ResolverTiers.WithLabelValues(tier).Inc()
}

func (c *Collector) CollaboratorFailed(name string) {
	if c == nil {
		return
	}
	c.CollaboratorFailures.WithLabelValues(name).Inc()
}

func (c *Collector) SetCorpusSize(n int) {
	if c == nil {
		return
	}
	c.CorpusSize.Set(float64(n))
}
