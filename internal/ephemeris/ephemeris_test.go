package ephemeris

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/timescale"
)

func TestAnalytic_SunAtSolstice(t *testing.T) {
	// 2020-06-20 21:44 UTC, June solstice.
	at := timescale.UTCToGPS(timescale.FromDate(2020, 6, 20, 21, 44, 0))
	pos, err := Analytic{}.Position(Sun, at)
	require.NoError(t, err)

	dist := pos.Norm() / domain.AstronomicalUnit
	assert.InDelta(t, 1.0163, dist, 1e-3)

	decl := math.Asin(pos.Z/pos.Norm()) / domain.DegToRad
	assert.InDelta(t, 23.44, decl, 0.02)

	ra := math.Atan2(pos.Y, pos.X) / domain.DegToRad
	assert.InDelta(t, 90.0, ra, 0.1)
}

func TestAnalytic_MoonDistance(t *testing.T) {
	start := timescale.FromDate(2024, 1, 1, 0, 0, 0)
	for day := 0; day < 60; day++ {
		pos, err := Analytic{}.Position(Moon, start.AddDays(float64(day)))
		require.NoError(t, err)
		km := pos.Norm() / 1e3
		assert.Greater(t, km, 355000.0)
		assert.Less(t, km, 407500.0)

		// The Moon never strays more than about 29° from the equator.
		decl := math.Abs(math.Asin(pos.Z/pos.Norm())) / domain.DegToRad
		assert.Less(t, decl, 29.5)
	}
}

func TestAnalytic_UnsupportedBody(t *testing.T) {
	_, err := Analytic{}.Position(Jupiter, timescale.FromMJD(60000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingDependency))
}

func TestParseBody(t *testing.T) {
	b, err := ParseBody(" Moon ")
	require.NoError(t, err)
	assert.Equal(t, Moon, b)
	assert.Equal(t, "moon", b.String())

	_, err = ParseBody("pluto")
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	assert.Equal(t, GMSun, Analytic{}.GM(Sun))
	assert.Zero(t, GM(Body(42)))
}
