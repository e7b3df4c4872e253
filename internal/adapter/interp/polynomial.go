package interp

import (
	"fmt"
	"sort"

	"go.ngs.io/geotides/internal/domain"
)

// Polynomial interpolates tabulated series with a local Lagrange polynomial of
// fixed degree. The degree+1 support nodes are chosen around the query so that
// it falls into the central interval where the table allows it.
type Polynomial struct {
	degree int
}

// NewPolynomial creates an interpolator of the given degree.
func NewPolynomial(degree int) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("polynomial degree must be >= 0, got %d", degree)
	}
	return &Polynomial{degree: degree}, nil
}

// Degree returns the polynomial degree.
func (p *Polynomial) Degree() int { return p.degree }

// Nodes returns the number of support nodes used per query.
func (p *Polynomial) Nodes() int { return p.degree + 1 }

// Interpolate evaluates every column of values at x. xs must be strictly
// increasing and values[i] holds the row sampled at xs[i].
func (p *Polynomial) Interpolate(x float64, xs []float64, values [][]float64) ([]float64, error) {
	if len(xs) != len(values) {
		return nil, fmt.Errorf("got %d nodes but %d value rows", len(xs), len(values))
	}
	nodes := p.Nodes()
	if len(xs) < nodes {
		return nil, domain.MalformedInput("degree %d interpolation needs %d samples, have %d", p.degree, nodes, len(xs))
	}

	start := sort.SearchFloat64s(xs, x) - nodes/2
	start = max(0, min(start, len(xs)-nodes))

	cols := len(values[start])
	out := make([]float64, cols)
	for j := start; j < start+nodes; j++ {
		w := 1.0
		for k := start; k < start+nodes; k++ {
			if k != j {
				w *= (x - xs[k]) / (xs[j] - xs[k])
			}
		}
		if len(values[j]) != cols {
			return nil, fmt.Errorf("row %d has %d values, expected %d", j, len(values[j]), cols)
		}
		for c := 0; c < cols; c++ {
			out[c] += w * values[j][c]
		}
	}
	return out, nil
}
