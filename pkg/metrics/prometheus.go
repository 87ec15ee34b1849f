package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	candlesStored *prometheus.CounterVec
	signalsIssued *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		candlesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golddesk_candles_stored_total",
				Help: "Total number of candles written to a backend",
			},
			[]string{"backend"},
		),
		signalsIssued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golddesk_signals_issued_total",
				Help: "Total number of trade signals issued",
			},
			[]string{"window", "direction"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "golddesk_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "golddesk_last_price",
				Help: "Last observed price for an instrument",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "golddesk_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCandleStored records one candle written to a backend.
func (r *Recorder) RecordCandleStored(backend string) {
	r.candlesStored.WithLabelValues(backend).Inc()
}

// RecordSignalIssued records one issued trade signal.
func (r *Recorder) RecordSignalIssued(window, direction string) {
	r.signalsIssued.WithLabelValues(window, direction).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for an instrument.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
