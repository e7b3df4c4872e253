package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geotides/internal/adapter/store/gravity"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/observability"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/timescale"
)

var (
	testHN = []float64{0, 0, 0.6078, 0.292, 0.175}
	testLN = []float64{0, 0, 0.0847, 0.015, 0.010}

	tokyo   = Location{Lat: 35.68, Lon: 139.77, Height: 40}
	boulder = Location{Lat: 40.01, Lon: -105.27, Height: 1655}

	t0 = time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	if !iers.Available() {
		t.Skip("precession-nutation excluded from build")
	}
	rot, err := earthrotation.New(earthrotation.Config{InterpolationDegree: -1})
	require.NoError(t, err)
	pole, err := tides.NewPole(tides.PoleOptions{})
	require.NoError(t, err)
	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	svc, err := NewService(Options{
		Rotation:    rot,
		Tides:       tides.NewTides(tides.NewEarth(tides.EarthOptions{}), tides.Centrifugal{}, pole),
		HN:          testHN,
		LN:          testLN,
		Concurrency: 3,
		Metrics:     metrics,
	})
	require.NoError(t, err)
	return svc
}

func hourly(n int) TimeRange {
	return TimeRange{Start: t0, End: t0.Add(time.Duration(n-1) * time.Hour), Interval: time.Hour}
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Options{})
	assert.True(t, errors.Is(err, domain.ErrMissingDependency))

	rot, err := earthrotation.New(earthrotation.Config{InterpolationDegree: -1})
	require.NoError(t, err)
	_, err = NewService(Options{Rotation: rot, HN: []float64{0, 0, 0.6}, LN: []float64{0}})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestTimeRange_Validate(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		ok   bool
	}{
		{"single epoch", TimeRange{Start: t0, End: t0, Interval: time.Minute}, true},
		{"reversed", TimeRange{Start: t0.Add(time.Hour), End: t0, Interval: time.Minute}, false},
		{"sub-second interval", TimeRange{Start: t0, End: t0.Add(time.Hour), Interval: time.Millisecond}, false},
		{"too many epochs", TimeRange{Start: t0, End: t0.Add(30 * 24 * time.Hour), Interval: time.Minute}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrMalformedInput))
		})
	}
}

func TestEOP_WithoutSeries(t *testing.T) {
	svc := newTestService(t)
	resp, err := svc.EOP(context.Background(), EOPRequest{TimeRange: hourly(3)})
	require.NoError(t, err)

	require.Len(t, resp.Points, 3)
	assert.Equal(t, 0, resp.Series.Epochs)
	assert.Equal(t, "2021-10-02T00:00:00.000Z", resp.Points[0].Time)
	assert.Equal(t, "2021-10-02T02:00:00.000Z", resp.Points[2].Time)
	assert.InDelta(t, 59489.0, resp.Points[0].MJD, 1e-9)
	assert.Zero(t, resp.Points[0].XpArcsec)
	// The CIP moves by precession alone over two hours.
	assert.InDelta(t, resp.Points[0].XArcsec, resp.Points[2].XArcsec, 1e-2)
}

func TestEvaluate(t *testing.T) {
	svc := newTestService(t)
	resp, err := svc.Evaluate(context.Background(), EvaluateRequest{
		TimeRange: hourly(4),
		Points:    []Location{tokyo, boulder},
		Tensor:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"earthTide", "centrifugal", "poleTide"}, resp.Components)
	require.Len(t, resp.Epochs, 4)
	for _, ep := range resp.Epochs {
		require.Len(t, ep.Points, 2)
		assert.Equal(t, tokyo, ep.Points[0].Location)
		for _, v := range ep.Points {
			xyz := math.Sqrt(v.Gravity[0]*v.Gravity[0] + v.Gravity[1]*v.Gravity[1] + v.Gravity[2]*v.Gravity[2])
			neu := math.Sqrt(v.GravityNEU[0]*v.GravityNEU[0] + v.GravityNEU[1]*v.GravityNEU[1] + v.GravityNEU[2]*v.GravityNEU[2])
			assert.InDelta(t, xyz, neu, 1e-12)
			require.NotNil(t, v.Tensor)
			// Centrifugal gradients dominate the trace.
			assert.Greater(t, v.Tensor.XX+v.Tensor.YY+v.Tensor.ZZ, 0.0)
		}
	}
	assert.NotEqual(t, resp.Epochs[0].Points[0].Potential, resp.Epochs[3].Points[0].Potential)
}

func TestEvaluate_ComponentSelection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	req := EvaluateRequest{TimeRange: hourly(1), Points: []Location{tokyo}}

	all, err := svc.Evaluate(ctx, req)
	require.NoError(t, err)

	sum := 0.0
	for _, name := range []string{"earthTide", "centrifugal", "poleTide"} {
		req.Components = []string{name}
		part, err := svc.Evaluate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []string{name}, part.Components)
		assert.Nil(t, part.Epochs[0].Points[0].Tensor)
		sum += part.Epochs[0].Points[0].Potential
	}
	assert.InDelta(t, all.Epochs[0].Points[0].Potential, sum, 1e-9)

	req.Components = []string{"solidMoonTide"}
	_, err = svc.Evaluate(ctx, req)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestEvaluate_InvalidPoints(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, EvaluateRequest{TimeRange: hourly(1)})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	_, err = svc.Evaluate(ctx, EvaluateRequest{TimeRange: hourly(1), Points: []Location{{Lat: 91}}})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	many := make([]Location, MaxPoints+1)
	_, err = svc.Evaluate(ctx, EvaluateRequest{TimeRange: hourly(1), Points: many})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestDeformation_MatchesSingleEvaluation(t *testing.T) {
	svc := newTestService(t)
	n := deformationChunk + 6
	resp, err := svc.Deformation(context.Background(), DeformationRequest{
		TimeRange: hourly(n),
		Points:    []Location{tokyo, boulder},
	})
	require.NoError(t, err)
	require.Len(t, resp.Times, n)
	require.Len(t, resp.Stations, 2)

	for _, k := range []int{0, deformationChunk - 1, deformationChunk, n - 1} {
		for i, loc := range []Location{tokyo, boulder} {
			pos := loc.Cartesian()
			g, err := gravity.Normal{}.Gravity(pos)
			require.NoError(t, err)
			timeUTC := timescale.FromTime(t0.Add(time.Duration(k) * time.Hour))
			ep, err := tides.NewEpoch(timescale.UTCToGPS(timeUTC), svc.rotation)
			require.NoError(t, err)
			want, err := svc.tides.Deformation(ep, svc.env, pos, g, testHN, testLN)
			require.NoError(t, err)

			got := resp.Stations[i].Series[k]
			assert.InDelta(t, want.X, got.XYZ[0], 1e-9)
			assert.InDelta(t, want.Y, got.XYZ[1], 1e-9)
			assert.InDelta(t, want.Z, got.XYZ[2], 1e-9)

			neu := geom.LocalNorthEastUp(pos).InverseRotate(want)
			assert.InDelta(t, neu.Z, got.NEU[2], 1e-9)
		}
	}

	// Semi-diurnal tides give at least two vertical highs over three days.
	assert.GreaterOrEqual(t, len(resp.Stations[0].UpExtrema.Highs), 2)
	assert.Greater(t, resp.Stations[0].Gravity, 9.7)
}

func TestDeformation_RequiresLoveNumbers(t *testing.T) {
	rot, err := earthrotation.New(earthrotation.Config{InterpolationDegree: -1})
	require.NoError(t, err)
	svc, err := NewService(Options{Rotation: rot, Tides: tides.NewTides(tides.Centrifugal{})})
	require.NoError(t, err)

	_, err = svc.Deformation(context.Background(), DeformationRequest{TimeRange: hourly(1), Points: []Location{tokyo}})
	assert.True(t, errors.Is(err, domain.ErrMissingDependency))
}

func TestOrbit(t *testing.T) {
	svc := newTestService(t)
	resp, err := svc.Orbit(context.Background(), OrbitRequest{
		TimeRange:  TimeRange{Start: t0, End: t0.Add(10 * time.Minute), Interval: 5 * time.Minute},
		Line1:      "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
		Line2:      "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760",
		Components: []string{"earthTide"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Samples, 3)
	for _, s := range resp.Samples {
		assert.Greater(t, s.Height, 300e3)
		assert.Less(t, s.Height, 500e3)
		assert.LessOrEqual(t, math.Abs(s.Lat), 53.0)
		assert.NotZero(t, s.Potential)
	}

	_, err = svc.Orbit(context.Background(), OrbitRequest{TimeRange: hourly(1), Line1: "bad", Line2: "bad"})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestFindExtrema(t *testing.T) {
	start := timescale.FromDate(2021, 1, 1, 0, 0, 0)
	times, err := timescale.Series(start, start.Add(86400), 600)
	require.NoError(t, err)

	// Period of 12 h with the first maximum at 03:00 UTC.
	values := make([]float64, len(times))
	for i := range times {
		values[i] = math.Cos(2 * math.Pi * (float64(i)*600 - 3*3600) / 43200)
	}
	ex := findExtrema(times, values)
	require.Len(t, ex.Highs, 2)
	require.Len(t, ex.Lows, 2)
	assert.Equal(t, "2021-01-01T03:00:00.000Z", ex.Highs[0].Time)
	assert.Equal(t, "2021-01-01T09:00:00.000Z", ex.Lows[0].Time)
	assert.InDelta(t, 1.0, ex.Highs[0].Value, 1e-9)

	short := findExtrema(times[:2], values[:2])
	assert.Empty(t, short.Highs)
	assert.Empty(t, short.Lows)
}

func TestRefineExtremum_OffGrid(t *testing.T) {
	start := timescale.FromDate(2021, 1, 1, 0, 0, 0)
	times := []timescale.Time{start, start.Add(60), start.Add(120)}
	// Parabola with vertex at 75 s.
	f := func(x float64) float64 { return 2 - (x-75)*(x-75)/3600 }
	ex := refineExtremum(times, []float64{f(0), f(60), f(120)}, 1)
	assert.Equal(t, "2021-01-01T00:01:15.000Z", ex.Time)
	assert.InDelta(t, 2.0, ex.Value, 1e-12)
}

func TestHarmonics(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Harmonics(ctx, HarmonicsRequest{Time: t0, MaxDegree: -1, Components: []string{"centrifugal"}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.MaxDegree)
	require.NotEmpty(t, resp.Coefficients)
	assert.Equal(t, Coefficient{N: 0, M: 0, C: resp.Coefficients[0].C}, resp.Coefficients[0])
	assert.Greater(t, resp.Coefficients[0].C, 0.0)

	high, err := svc.Harmonics(ctx, HarmonicsRequest{Time: t0, MaxDegree: -1, MinDegree: 1, Components: []string{"centrifugal"}})
	require.NoError(t, err)
	for _, c := range high.Coefficients {
		assert.Equal(t, 2, c.N)
	}

	all, err := svc.Harmonics(ctx, HarmonicsRequest{Time: t0, MaxDegree: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"earthTide", "centrifugal", "poleTide"}, all.Components)
	assert.Equal(t, 4, all.MaxDegree)

	_, err = svc.Harmonics(ctx, HarmonicsRequest{Time: t0, MaxDegree: 2, MinDegree: 3})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
	_, err = svc.Harmonics(ctx, HarmonicsRequest{MaxDegree: 2})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}
