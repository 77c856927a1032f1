package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records panel metrics in Prometheus
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	evaluations  *prometheus.CounterVec
	styleSignals *prometheus.CounterVec
	fetchErrors  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
}

// New creates a recorder registered on the default registry
// Call once per process; a second call panics on duplicate registration.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panel_evaluations_total",
				Help: "Total number of evaluations by consensus signal and strength",
			},
			[]string{"signal", "strength"},
		),
		styleSignals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panel_style_signals_total",
				Help: "Total number of style opinions by style and signal",
			},
			[]string{"style", "signal"},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panel_fetch_errors_total",
				Help: "Metric sections that failed or timed out and were treated as missing",
			},
			[]string{"section"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "panel_operation_duration_seconds",
				Help:    "Duration of panel operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panel_http_requests_total",
				Help: "Total number of HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
	}
}

// RecordEvaluation records a finished evaluation
func (r *Recorder) RecordEvaluation(signal, strength string) {
	r.evaluations.WithLabelValues(signal, strength).Inc()
}

// RecordStyleSignal records one style's opinion
func (r *Recorder) RecordStyleSignal(style, signal string) {
	r.styleSignals.WithLabelValues(style, signal).Inc()
}

// RecordFetchError records a metric section absorbed as missing
func (r *Recorder) RecordFetchError(section string) {
	r.fetchErrors.WithLabelValues(section).Inc()
}

// RecordLatency records operation latency in seconds
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordHTTPRequest records a served HTTP request
func (r *Recorder) RecordHTTPRequest(route, status string) {
	r.httpRequests.WithLabelValues(route, status).Inc()
}
