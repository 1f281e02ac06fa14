package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shorten outcomes
const (
	OutcomeOK            = "ok"
	OutcomeCached        = "cached"
	OutcomeInvalid       = "invalid"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
)

// Cache lookup results
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	QRCodesGenerated   *prometheus.CounterVec
	QRCodeCache        *prometheus.CounterVec
	QRCodeCacheEntries prometheus.Gauge
	ShortenRequests    *prometheus.CounterVec
	UpstreamLatency    prometheus.Histogram
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QRCodesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrlink",
			Name:      "qrcodes_generated_total",
			Help:      "QR codes rendered, by payload kind and output format.",
		}, []string{"kind", "format"}),
		QRCodeCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrlink",
			Name:      "qrcode_cache_total",
			Help:      "Rendered QR code cache lookups.",
		}, []string{"result"}),
		QRCodeCacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "qrlink",
			Name:      "qrcode_cache_entries",
			Help:      "Rendered QR codes currently cached.",
		}),
		ShortenRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrlink",
			Name:      "shorten_requests_total",
			Help:      "URL shorten requests, by outcome.",
		}, []string{"outcome"}),
		UpstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qrlink",
			Name:      "shortener_upstream_seconds",
			Help:      "Latency of calls to the shortening provider.",
			Buckets:   prometheus.ExponentialBucketsRange(0.01, 30, 12),
		}),
	}
}

// NewNop returns collectors registered nowhere, for tests and tools
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler exposes g in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
