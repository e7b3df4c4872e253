package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geotides/internal/domain"
)

// TestPolynomial_ExactForPolynomials checks that degree d reproduces polynomials of degree d.
func TestPolynomial_ExactForPolynomials(t *testing.T) {
	xs := []float64{0, 1, 2.5, 3, 4.2, 5, 7}
	cubic := func(x float64) float64 { return 1 - 2*x + 0.5*x*x - 0.1*x*x*x }
	values := make([][]float64, len(xs))
	for i, x := range xs {
		values[i] = []float64{cubic(x), 3 * x}
	}

	p, err := NewPolynomial(3)
	require.NoError(t, err)

	for _, x := range []float64{0, 0.3, 2.7, 4.9, 6.99, 7} {
		got, err := p.Interpolate(x, xs, values)
		require.NoError(t, err)
		assert.InDelta(t, cubic(x), got[0], 1e-12)
		assert.InDelta(t, 3*x, got[1], 1e-12)
	}
}

func TestPolynomial_Linear(t *testing.T) {
	xs := []float64{0, 1, 2}
	values := [][]float64{{0.1}, {0.2}, {0.3}}
	p, err := NewPolynomial(1)
	require.NoError(t, err)

	tests := []struct {
		x, want float64
	}{
		{0.5, 0.15},
		{1.0, 0.2},
		{1.75, 0.275},
	}
	for _, tt := range tests {
		got, err := p.Interpolate(tt.x, xs, values)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got[0], 1e-15)
	}
}

func TestPolynomial_TooFewSamples(t *testing.T) {
	p, err := NewPolynomial(3)
	require.NoError(t, err)
	_, err = p.Interpolate(0.5, []float64{0, 1, 2}, [][]float64{{1}, {2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	_, err = NewPolynomial(-1)
	assert.Error(t, err)
}

func TestPolynomial_SmoothFunction(t *testing.T) {
	// Cubic error bound for sin at h = 0.05 is about 1.3e-7.
	xs := make([]float64, 40)
	values := make([][]float64, 40)
	for i := range xs {
		xs[i] = float64(i) * 0.05
		values[i] = []float64{math.Sin(xs[i])}
	}
	p, err := NewPolynomial(3)
	require.NoError(t, err)
	got, err := p.Interpolate(1.234, xs, values)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(1.234), got[0], 1e-6)
}
