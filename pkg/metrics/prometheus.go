package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesReceived *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	storeOps         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketradar_stream_messages_total",
				Help: "Total number of messages received per stream subscription",
			},
			[]string{"stream"},
		),
		reconnects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketradar_stream_reconnects_total",
				Help: "Total number of reconnect attempts per stream subscription",
			},
			[]string{"stream"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketradar_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketradar_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		storeOps: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketradar_store_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
	}
}

// RecordMessageReceived records an inbound stream message.
func (r *Recorder) RecordMessageReceived(stream string) {
	r.messagesReceived.WithLabelValues(stream).Inc()
}

// RecordReconnect records a reconnect attempt for a stream.
func (r *Recorder) RecordReconnect(stream string) {
	r.reconnects.WithLabelValues(stream).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordStoreOp records store operation latency in seconds.
func (r *Recorder) RecordStoreOp(op, backend string, seconds float64) {
	r.storeOps.WithLabelValues(op, backend).Observe(seconds)
}
