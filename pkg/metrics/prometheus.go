package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	snapshotsSent    *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
	forecasts        *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		upstreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_upstream_requests_total",
				Help: "Total number of upstream API requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),
		snapshotsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_snapshots_sent_total",
				Help: "Total number of quote snapshots sent to backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fincast_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		forecasts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_forecasts_total",
				Help: "Total number of forecasts served by model",
			},
			[]string{"model"},
		),
	}
}

// RecordUpstreamRequest records an upstream API request outcome.
func (r *Recorder) RecordUpstreamRequest(endpoint, result string) {
	r.upstreamRequests.WithLabelValues(endpoint, result).Inc()
}

// RecordSnapshotSent records a snapshot sent to a backend.
func (r *Recorder) RecordSnapshotSent(backend, symbol string) {
	r.snapshotsSent.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordForecast records a served forecast by model name.
func (r *Recorder) RecordForecast(model string) {
	r.forecasts.WithLabelValues(model).Inc()
}
