// Package interp provides the interpolation schemes used by the adapters:
// local Lagrange polynomials for tabulated time series and bilinear
// interpolation on regular longitude/latitude grids.
package interp

import (
	"fmt"
	"math"
	"sort"
)

// Cell is one rectangle of a regular grid with the values at its corners.
type Cell struct {
	X0, X1 float64 // Longitude bounds.
	Y0, Y1 float64 // Latitude bounds.

	// V00 at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1), V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// Interpolate evaluates the bilinear surface
//
//	f(x,y) = (1-t)(1-u)V00 + t(1-u)V10 + (1-t)u V01 + tu V11
//
// with t = (x-X0)/(X1-X0) and u = (y-Y0)/(Y1-Y0).
func (c Cell) Interpolate(x, y float64) (float64, error) {
	if c.X1 <= c.X0 || c.Y1 <= c.Y0 {
		return 0, fmt.Errorf("degenerate cell [%g, %g]x[%g, %g]", c.X0, c.X1, c.Y0, c.Y1)
	}
	const epsilon = 1e-9
	if x < c.X0-epsilon || x > c.X1+epsilon || y < c.Y0-epsilon || y > c.Y1+epsilon {
		return 0, fmt.Errorf("point (%.6f, %.6f) is outside cell [%g, %g]x[%g, %g]", x, y, c.X0, c.X1, c.Y0, c.Y1)
	}

	t := math.Max(0, math.Min(1, (x-c.X0)/(c.X1-c.X0)))
	u := math.Max(0, math.Min(1, (y-c.Y0)/(c.Y1-c.Y0)))
	return (1-t)*(1-u)*c.V00 + t*(1-u)*c.V10 + (1-t)*u*c.V01 + t*u*c.V11, nil
}

// Grid2D is a regular longitude/latitude grid in degrees.
type Grid2D struct {
	X      []float64   // Longitudes, strictly increasing.
	Y      []float64   // Latitudes, strictly increasing.
	Values [][]float64 // Values[i][j] belongs to (X[j], Y[i]).
}

// Validate checks sizes and ordering.
func (g *Grid2D) Validate() error {
	if len(g.X) < 2 || len(g.Y) < 2 {
		return fmt.Errorf("grid needs at least 2x2 nodes, got %dx%d", len(g.X), len(g.Y))
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("number of value rows (%d) must match latitudes (%d)", len(g.Values), len(g.Y))
	}
	for i, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(g.X))
		}
	}
	if !sort.Float64sAreSorted(g.X) || !sort.Float64sAreSorted(g.Y) {
		return fmt.Errorf("grid coordinates must be increasing")
	}
	for i := 1; i < len(g.X); i++ {
		if g.X[i] == g.X[i-1] {
			return fmt.Errorf("duplicate longitude %g", g.X[i])
		}
	}
	for i := 1; i < len(g.Y); i++ {
		if g.Y[i] == g.Y[i-1] {
			return fmt.Errorf("duplicate latitude %g", g.Y[i])
		}
	}
	return nil
}

// InterpolateAt evaluates the grid at longitude x and latitude y (degrees).
// Longitudes are shifted by whole turns into the grid's range first.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	x = wrapInto(x, g.X[0], g.X[len(g.X)-1])

	xIdx, err := bracket(g.X, x)
	if err != nil {
		return 0, fmt.Errorf("longitude: %w", err)
	}
	yIdx, err := bracket(g.Y, y)
	if err != nil {
		return 0, fmt.Errorf("latitude: %w", err)
	}

	cell := Cell{
		X0:  g.X[xIdx],
		X1:  g.X[xIdx+1],
		Y0:  g.Y[yIdx],
		Y1:  g.Y[yIdx+1],
		V00: g.Values[yIdx][xIdx],
		V10: g.Values[yIdx][xIdx+1],
		V01: g.Values[yIdx+1][xIdx],
		V11: g.Values[yIdx+1][xIdx+1],
	}
	return cell.Interpolate(x, y)
}

// bracket returns i with axis[i] <= v <= axis[i+1].
func bracket(axis []float64, v float64) (int, error) {
	if v < axis[0] || v > axis[len(axis)-1] {
		return 0, fmt.Errorf("%.6f is outside [%.6f, %.6f]", v, axis[0], axis[len(axis)-1])
	}
	i := sort.SearchFloat64s(axis, v) - 1
	return max(0, min(i, len(axis)-2)), nil
}

func wrapInto(lon, lo, hi float64) float64 {
	for lon < lo && lon+360 <= hi+1e-9 {
		lon += 360
	}
	for lon > hi && lon-360 >= lo-1e-9 {
		lon -= 360
	}
	return lon
}
