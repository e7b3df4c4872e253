package harmonics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"go.ngs.io/geotides/internal/geom"
)

// DeformationBasis maps a coefficient vector to the displacements of a fixed
// set of points. It depends only on the points, their gravity, the Love
// numbers and the field's GM, R and max degree, so it is built once and
// applied to the field of every epoch. It is read-only after construction.
type DeformationBasis struct {
	a         *mat.Dense
	points    int
	maxDegree int
	gm        float64
	r         float64
}

// NewDeformationBasis builds the (3K)x(N+1)^2 displacement operator.
func NewDeformationBasis(points []geom.Vector3, gravity, hn, ln []float64, gm, r float64, maxDegree int) (*DeformationBasis, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("deformation basis needs at least one point")
	}
	if maxDegree < 0 {
		return nil, fmt.Errorf("deformation basis needs max degree >= 0, got %d", maxDegree)
	}
	if len(gravity) != len(points) {
		return nil, fmt.Errorf("got %d gravity values for %d points", len(gravity), len(points))
	}
	if len(hn) <= maxDegree || len(ln) <= maxDegree {
		return nil, fmt.Errorf("love numbers given to degree %d/%d, basis needs %d", len(hn)-1, len(ln)-1, maxDegree)
	}

	cols := (maxDegree + 1) * (maxDegree + 1)
	a := mat.NewDense(3*len(points), cols, nil)

	for k, point := range points {
		if gravity[k] == 0 {
			return nil, fmt.Errorf("gravity of point %d is zero", k)
		}
		up := point.Normalize()
		cnm, snm := CnmSnm(point.Scale(1/r), maxDegree+1)

		set := func(col int, vn float64, grad geom.Vector3, n int) {
			vertical := up.Scale(hn[n] / gravity[k] * vn)
			horizontal := grad.Sub(up.Scale(grad.Dot(up))).Scale(ln[n] / gravity[k])
			disp := vertical.Add(horizontal)
			a.Set(3*k+0, col, disp.X)
			a.Set(3*k+1, col, disp.Y)
			a.Set(3*k+2, col, disp.Z)
		}

		// Order 0.
		for n := 0; n <= maxDegree; n++ {
			nf := float64(n)
			wm0 := math.Sqrt((nf + 1) * (nf + 1))
			wp1 := math.Sqrt((nf+1)*(nf+2)) / math.Sqrt2
			cm0 := wm0 * cnm[n+1][0]
			cp1, sp1 := wp1*cnm[n+1][1], wp1*snm[n+1][1]

			vn := gm / r * cnm[n][0]
			grad := geom.Vector3{X: -2 * cp1, Y: -2 * sp1, Z: -2 * cm0}.
				Scale(gm / (2 * r) * math.Sqrt((2*nf+1)/(2*nf+3)))
			set(n*n, vn, grad, n)
		}

		// Other orders.
		for m := 1; m <= maxDegree; m++ {
			mf := float64(m)
			for n := m; n <= maxDegree; n++ {
				nf := float64(n)
				wm1 := math.Sqrt((nf - mf + 1) * (nf - mf + 2))
				if m == 1 {
					wm1 *= math.Sqrt2
				}
				wm0 := math.Sqrt((nf - mf + 1) * (nf + mf + 1))
				wp1 := math.Sqrt((nf + mf + 1) * (nf + mf + 2))
				cm1, sm1 := wm1*cnm[n+1][m-1], wm1*snm[n+1][m-1]
				cm0, sm0 := wm0*cnm[n+1][m], wm0*snm[n+1][m]
				cp1, sp1 := wp1*cnm[n+1][m+1], wp1*snm[n+1][m+1]
				scale := gm / (2 * r) * math.Sqrt((2*nf+1)/(2*nf+3))

				vn := gm / r * cnm[n][m]
				grad := geom.Vector3{X: cm1 - cp1, Y: -sm1 - sp1, Z: -2 * cm0}.Scale(scale)
				set(n*n+2*m-1, vn, grad, n)

				vn = gm / r * snm[n][m]
				grad = geom.Vector3{X: sm1 - sp1, Y: cm1 + cp1, Z: -2 * sm0}.Scale(scale)
				set(n*n+2*m, vn, grad, n)
			}
		}
	}

	return &DeformationBasis{a: a, points: len(points), maxDegree: maxDegree, gm: gm, r: r}, nil
}

// MaxDegree returns the degree the basis was built for.
func (b *DeformationBasis) MaxDegree() int { return b.maxDegree }

// Points returns the number of points.
func (b *DeformationBasis) Points() int { return b.points }

// Apply returns the displacement of every point caused by field. A field
// with another GM is converted to the basis GM; a field with another
// reference radius is rejected, since the horizontal part of the basis is
// tied to R. Degrees above the basis are ignored.
func (b *DeformationBasis) Apply(field *Field) ([]geom.Vector3, error) {
	out := make([]geom.Vector3, b.points)
	if field.IsEmpty() {
		return out, nil
	}
	if field.R != b.r {
		return nil, fmt.Errorf("field reference radius %g differs from basis radius %g", field.R, b.r)
	}
	if field.GM != b.gm {
		field = field.Rescale(b.gm, b.r)
	}
	x := mat.NewVecDense((b.maxDegree+1)*(b.maxDegree+1), field.VectorToDegree(b.maxDegree))
	var ax mat.VecDense
	ax.MulVec(b.a, x)
	for k := range out {
		out[k] = geom.Vector3{X: ax.AtVec(3*k + 0), Y: ax.AtVec(3*k + 1), Z: ax.AtVec(3*k + 2)}
	}
	return out, nil
}
