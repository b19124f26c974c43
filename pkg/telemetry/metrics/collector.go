package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"net/http"
)

// Collector holds the registry and metric vectors for a single proxy
// process. It is safe for concurrent use by every in-flight request.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	signatureStore  prometheus.Gauge
}

// NewCollector builds a Collector registered against a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ccrelay",
				Name:      "requests_total",
				Help:      "Total number of proxied requests by upstream and response status.",
			},
			[]string{"upstream", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ccrelay",
				Name:      "request_duration_seconds",
				Help:      "Duration of a proxied request, from receipt to final byte written.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"upstream"},
		),
		signatureStore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ccrelay",
				Name:      "signature_store_size",
				Help:      "Current number of thinking-block signatures retained in the LRU store.",
			},
		),
	}

	registry.MustRegister(c.requestsTotal, c.requestDuration, c.signatureStore)
	return c
}

// RecordRequest records the outcome of one proxied request.
func (c *Collector) RecordRequest(upstream, status string, duration time.Duration) {
	c.requestsTotal.WithLabelValues(upstream, status).Inc()
	c.requestDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// SetSignatureStoreSize reports the signature store's current occupancy.
func (c *Collector) SetSignatureStoreSize(size int) {
	c.signatureStore.Set(float64(size))
}

// Handler returns the HTTP handler to mount at the configured metrics path.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}
