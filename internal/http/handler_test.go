package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/observability"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, hn, ln []float64) *testServer {
	t.Helper()
	if !iers.Available() {
		t.Skip("precession-nutation excluded from build")
	}
	rot, err := earthrotation.New(earthrotation.Config{InterpolationDegree: -1})
	require.NoError(t, err)
	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	svc, err := usecase.NewService(usecase.Options{
		Rotation: rot,
		Tides:    tides.NewTides(tides.NewEarth(tides.EarthOptions{}), tides.Centrifugal{}),
		HN:       hn,
		LN:       ln,
		Metrics:  metrics,
	})
	require.NoError(t, err)
	return &testServer{
		router:  SetupRouter(RouterConfig{Service: svc, Metrics: metrics}),
		metrics: metrics,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var loveHN, loveLN = []float64{0, 0, 0.6078, 0.292, 0.175}, []float64{0, 0, 0.0847, 0.015, 0.010}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestGetComponents(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodGet, "/v1/tides/components", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"earthTide", "centrifugal"}, decode(t, w)["components"])
}

func TestGetConstituentsList(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodGet, "/v1/constituents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, len(tides.StandardConstituents), body["count"])
	first := body["constituents"].([]any)[0].(map[string]any)
	assert.Equal(t, "M2", first["name"])
	assert.Equal(t, "255.555", first["doodson"])
}

func TestGetEOP(t *testing.T) {
	s := newTestServer(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/eop?start=2021-10-02T00:00:00Z&end=2021-10-02T02:00:00Z&interval=1h", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
	var resp usecase.EOPResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Points, 3)
	assert.Equal(t, "2021-10-02T01:00:00.000Z", resp.Points[1].Time)
}

func TestGetEOP_BadQuery(t *testing.T) {
	s := newTestServer(t, nil, nil)
	tests := []struct {
		name  string
		query string
	}{
		{"missing start", ""},
		{"bad start", "?start=yesterday"},
		{"bad interval", "?start=2021-10-02T00:00:00Z&interval=often"},
		{"reversed", "?start=2021-10-02T00:00:00Z&end=2021-10-01T00:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/v1/eop"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, "malformed input", body["kind"])
			assert.NotEmpty(t, body["request_id"])
		})
	}
}

func TestGetEvaluate(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodGet, "/v1/tides/evaluate?lat=35.68&lon=139.77&start=2021-10-02T00:00:00Z&end=2021-10-02T03:00:00Z&components=earthTide&tensor=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp usecase.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"earthTide"}, resp.Components)
	require.Len(t, resp.Epochs, 4)
	require.NotNil(t, resp.Epochs[0].Points[0].Tensor)
	assert.InDelta(t, 35.68, resp.Epochs[0].Points[0].Location.Lat, 1e-12)

	w = s.do(t, http.MethodGet, "/v1/tides/evaluate?lon=139.77&start=2021-10-02T00:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/v1/tides/evaluate?lat=1&lon=2&start=2021-10-02T00:00:00Z&components=oceanPoleTide", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostEvaluate(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodPost, "/v1/tides/evaluate", map[string]any{
		"start":    "2021-10-02T00:00:00Z",
		"end":      "2021-10-02T00:30:00Z",
		"interval": "10m",
		"points":   []map[string]float64{{"lat": 0, "lon": 0}, {"lat": 60, "lon": 10, "height": 100}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp usecase.EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Epochs, 4)
	assert.Len(t, resp.Epochs[0].Points, 2)
	assert.Nil(t, resp.Epochs[0].Points[0].Tensor)

	w = s.do(t, http.MethodPost, "/v1/tides/evaluate", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostDeformation(t *testing.T) {
	s := newTestServer(t, loveHN, loveLN)
	w := s.do(t, http.MethodPost, "/v1/tides/deformation", map[string]any{
		"start":    "2021-10-02T00:00:00Z",
		"end":      "2021-10-02T12:00:00Z",
		"interval": "1h",
		"points":   []map[string]float64{{"lat": 35.68, "lon": 139.77}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp usecase.DeformationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Times, 13)
	require.Len(t, resp.Stations, 1)
	assert.Len(t, resp.Stations[0].Series, 13)
}

func TestPostDeformation_NoLoveNumbers(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodPost, "/v1/tides/deformation", map[string]any{
		"start":  "2021-10-02T00:00:00Z",
		"points": []map[string]float64{{"lat": 35.68, "lon": 139.77}},
	})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "missing dependency", decode(t, w)["kind"])
}

func TestPostOrbit(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodPost, "/v1/tides/orbit", map[string]any{
		"start":    "2021-10-02T00:00:00Z",
		"end":      "2021-10-02T00:10:00Z",
		"interval": "5m",
		"tle": []string{
			"1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
			"2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp usecase.OrbitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Samples, 3)
}

func TestGetHarmonics(t *testing.T) {
	s := newTestServer(t, nil, nil)
	w := s.do(t, http.MethodGet, "/v1/tides/harmonics?time=2021-10-02T00:00:00Z&max_degree=2&components=centrifugal", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp usecase.HarmonicsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.MaxDegree)
	assert.NotEmpty(t, resp.Coefficients)

	w = s.do(t, http.MethodGet, "/v1/tides/harmonics?time=2021-10-02T00:00:00Z&max_degree=two", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/v1/tides/harmonics", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.do(t, http.MethodGet, "/health", nil)
	s.do(t, http.MethodGet, "/nowhere", nil)

	w := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	text := w.Body.String()
	assert.Contains(t, text, `geotides_http_requests_total{code="200",method="GET",route="/health"} 1`)
	assert.Contains(t, text, `route="unmatched"`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.MalformedInput("x"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", domain.OutOfRange("x")), http.StatusUnprocessableEntity},
		{domain.MissingDependency("x"), http.StatusNotImplemented},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.err.Error(), " ", "_"), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
