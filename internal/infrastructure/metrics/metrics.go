// Package metrics provides Prometheus collectors for feed aggregation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace for all site metrics.
	Namespace = "blog"

	// Subsystem is the subsystem for feed metrics.
	Subsystem = "feed"
)

// Fetch results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultTimeout = "timeout"
)

// Metrics holds the feed aggregation collectors.
type Metrics struct {
	FetchTotal      *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	ItemsPerSource  *prometheus.GaugeVec
	AggregatedItems prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates and registers the feed metrics on reg.
// A fresh registry is created when reg is nil.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "fetch_total",
				Help:      "Total number of feed source fetches by result",
			},
			[]string{"source", "result"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of a single feed source fetch and parse",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"source"},
		),
		ItemsPerSource: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "items",
				Help:      "Items returned by the last successful fetch of a source",
			},
			[]string{"source"},
		),
		AggregatedItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: Subsystem,
				Name:      "aggregated_items",
				Help:      "Items in the last aggregated feed",
			},
		),
		gatherer: reg,
	}
}

// ObserveFetch records the outcome of one source fetch.
// A nil receiver is a no-op.
func (m *Metrics) ObserveFetch(source, result string, took time.Duration, items int) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, result).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(took.Seconds())
	if result == ResultSuccess {
		m.ItemsPerSource.WithLabelValues(source).Set(float64(items))
	}
}

// ObserveAggregate records the size of a merged feed.
func (m *Metrics) ObserveAggregate(items int) {
	if m == nil {
		return
	}
	m.AggregatedItems.Set(float64(items))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
