// Package observability wires Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors of the service. A nil *Metrics records
// nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequests        *prometheus.CounterVec
	HTTPDurations       *prometheus.HistogramVec
	Evaluations         *prometheus.CounterVec
	EvaluationDurations *prometheus.HistogramVec
	EOPEpochs           prometheus.Gauge
}

// NewMetrics registers the collectors against reg, defaulting to the global
// Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geotides_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"}), "geotides_http_requests_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geotides_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route"}), "geotides_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}
	evaluations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geotides_evaluations_total",
		Help: "Total number of tide and EOP evaluations, labeled by operation and outcome.",
	}, []string{"operation", "outcome"}), "geotides_evaluations_total")
	if err != nil {
		return nil, err
	}
	evalDurations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geotides_evaluation_duration_seconds",
		Help:    "Evaluation latency in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"operation"}), "geotides_evaluation_duration_seconds")
	if err != nil {
		return nil, err
	}
	epochs, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geotides_eop_series_epochs",
		Help: "Number of epochs in the loaded EOP series.",
	}), "geotides_eop_series_epochs")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:            gatherer,
		HTTPRequests:        requests,
		HTTPDurations:       durations,
		Evaluations:         evaluations,
		EvaluationDurations: evalDurations,
		EOPEpochs:           epochs,
	}, nil
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDurations.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveEvaluation records one use-case operation.
func (m *Metrics) ObserveEvaluation(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Evaluations.WithLabelValues(operation, outcome).Inc()
	m.EvaluationDurations.WithLabelValues(operation).Observe(d.Seconds())
}

// SetEOPEpochs publishes the size of the EOP series.
func (m *Metrics) SetEOPEpochs(n int) {
	if m == nil {
		return
	}
	m.EOPEpochs.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
