package observability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func counterValue(t *testing.T, reg prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.ObserveRequest("GET", "/v1/eop", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/v1/eop", 200, 7*time.Millisecond)
	m.ObserveEvaluation("evaluate", errors.New("boom"), time.Millisecond)
	m.SetEOPEpochs(42)

	assert.Equal(t, 2.0, counterValue(t, reg, "geotides_http_requests_total",
		map[string]string{"method": "GET", "route": "/v1/eop", "code": "200"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "geotides_evaluations_total",
		map[string]string{"operation": "evaluate", "outcome": "error"}))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "geotides_eop_series_epochs 42")
}

func TestNewMetrics_Reregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, first.HTTPRequests, second.HTTPRequests)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.ObserveEvaluation("x", nil, time.Millisecond)
	m.SetEOPEpochs(1)
	assert.NotNil(t, m.Handler())
}

func TestInitTracing(t *testing.T) {
	ctx := context.Background()

	shutdown, err := InitTracing(ctx, TracingConfig{}, nil)
	require.NoError(t, err)
	require.NoError(t, shutdown(ctx))

	var buf bytes.Buffer
	shutdown, err = InitTracing(ctx, TracingConfig{Enabled: true, SampleRatio: 1, Output: &buf}, nil)
	require.NoError(t, err)
	_, span := otel.Tracer(TracerName).Start(ctx, "evaluate")
	span.End()
	ShutdownWithTimeout(ctx, shutdown, nil)
	assert.True(t, strings.Contains(buf.String(), `"Name":"evaluate"`), buf.String())
}
