// Package harmonics implements fully normalized solid spherical harmonics and
// the synthesis of potential, gravity, gravity gradients and surface
// deformation from a coefficient field.
package harmonics

import (
	"fmt"
	"math"

	"go.ngs.io/geotides/internal/geom"
)

// Field holds fully normalized potential coefficients up to a maximum degree.
// C[n][m] and S[n][m] are defined for 0 <= m <= n. The zero value is the empty
// field (max degree -1), which is the identity of Add.
type Field struct {
	GM float64
	R  float64
	C  [][]float64
	S  [][]float64
}

// NewField returns a field of zero coefficients.
func NewField(maxDegree int, gm, r float64) *Field {
	f := &Field{GM: gm, R: r}
	if maxDegree < 0 {
		return f
	}
	f.C = triangle(maxDegree)
	f.S = triangle(maxDegree)
	return f
}

func triangle(maxDegree int) [][]float64 {
	out := make([][]float64, maxDegree+1)
	for n := range out {
		out[n] = make([]float64, n+1)
	}
	return out
}

// MaxDegree returns the maximum degree, -1 for the empty field.
func (f *Field) MaxDegree() int {
	if f == nil {
		return -1
	}
	return len(f.C) - 1
}

// IsEmpty reports whether the field has no coefficients.
func (f *Field) IsEmpty() bool { return f.MaxDegree() < 0 }

// Copy returns a deep copy.
func (f *Field) Copy() *Field {
	out := NewField(f.MaxDegree(), f.GM, f.R)
	for n := range out.C {
		copy(out.C[n], f.C[n])
		copy(out.S[n], f.S[n])
	}
	return out
}

// Add returns the coefficient-wise sum f+g. Coefficients of g are converted
// to the GM and R of f when they differ.
func (f *Field) Add(g *Field) *Field {
	if f.IsEmpty() {
		if g.IsEmpty() {
			return &Field{}
		}
		return g.Copy()
	}
	if g.IsEmpty() {
		return f.Copy()
	}

	maxDegree := max(f.MaxDegree(), g.MaxDegree())
	out := NewField(maxDegree, f.GM, f.R)
	for n := 0; n <= f.MaxDegree(); n++ {
		copy(out.C[n], f.C[n])
		copy(out.S[n], f.S[n])
	}
	factor := g.GM / f.GM
	ratio := g.R / f.R
	for n := 0; n <= g.MaxDegree(); n++ {
		for m := 0; m <= n; m++ {
			out.C[n][m] += factor * g.C[n][m]
			out.S[n][m] += factor * g.S[n][m]
		}
		factor *= ratio
	}
	return out
}

// Rescale returns the same potential expressed with another GM and R.
func (f *Field) Rescale(gm, r float64) *Field {
	if f.IsEmpty() {
		return &Field{GM: gm, R: r}
	}
	out := NewField(f.MaxDegree(), gm, r)
	factor := f.GM / gm
	ratio := f.R / r
	for n := 0; n <= f.MaxDegree(); n++ {
		for m := 0; m <= n; m++ {
			out.C[n][m] = factor * f.C[n][m]
			out.S[n][m] = factor * f.S[n][m]
		}
		factor *= ratio
	}
	return out
}

// Truncate returns a copy limited to degrees [minDegree, maxDegree]. Lower
// degrees are zeroed. A negative maxDegree keeps the full field.
func (f *Field) Truncate(maxDegree, minDegree int) *Field {
	if maxDegree < 0 || maxDegree > f.MaxDegree() {
		maxDegree = f.MaxDegree()
	}
	out := NewField(maxDegree, f.GM, f.R)
	for n := max(minDegree, 0); n <= maxDegree; n++ {
		copy(out.C[n], f.C[n])
		copy(out.S[n], f.S[n])
	}
	return out
}

// Scale multiplies all coefficients by factor in place.
func (f *Field) Scale(factor float64) {
	for n := range f.C {
		for m := range f.C[n] {
			f.C[n][m] *= factor
			f.S[n][m] *= factor
		}
	}
}

// Index returns the position of the (n,m) cosine coefficient in the
// coefficient vector; the sine coefficient follows at Index+1 for m > 0.
func Index(n, m int) int {
	if m == 0 {
		return n * n
	}
	return n*n + 2*m - 1
}

// Vector returns the coefficients ordered by degree, then order:
// (n,0), (n,1)c, (n,1)s, ..., (n,n)c, (n,n)s.
func (f *Field) Vector() []float64 {
	return f.VectorToDegree(f.MaxDegree())
}

// VectorToDegree returns the coefficient vector for degrees 0..maxDegree,
// padding missing degrees with zeros.
func (f *Field) VectorToDegree(maxDegree int) []float64 {
	x := make([]float64, (maxDegree+1)*(maxDegree+1))
	for n := 0; n <= min(maxDegree, f.MaxDegree()); n++ {
		x[n*n] = f.C[n][0]
		for m := 1; m <= n; m++ {
			x[n*n+2*m-1] = f.C[n][m]
			x[n*n+2*m] = f.S[n][m]
		}
	}
	return x
}

// FieldFromVector is the inverse of Vector.
func FieldFromVector(x []float64, gm, r float64) (*Field, error) {
	maxDegree := int(math.Round(math.Sqrt(float64(len(x))))) - 1
	if (maxDegree+1)*(maxDegree+1) != len(x) {
		return nil, fmt.Errorf("coefficient vector length %d is not a square", len(x))
	}
	f := NewField(maxDegree, gm, r)
	for n := 0; n <= maxDegree; n++ {
		f.C[n][0] = x[n*n]
		for m := 1; m <= n; m++ {
			f.C[n][m] = x[n*n+2*m-1]
			f.S[n][m] = x[n*n+2*m]
		}
	}
	return f, nil
}

// Potential evaluates V at a point.
func (f *Field) Potential(p geom.Vector3) float64 {
	if f.IsEmpty() {
		return 0
	}
	cnm, snm := CnmSnm(p.Scale(1/f.R), f.MaxDegree())
	sum := 0.0
	for n := 0; n <= f.MaxDegree(); n++ {
		for m := 0; m <= n; m++ {
			sum += f.C[n][m]*cnm[n][m] + f.S[n][m]*snm[n][m]
		}
	}
	return f.GM / f.R * sum
}

// RadialGradient evaluates dV/dr at a point.
func (f *Field) RadialGradient(p geom.Vector3) float64 {
	if f.IsEmpty() {
		return 0
	}
	cnm, snm := CnmSnm(p.Scale(1/f.R), f.MaxDegree())
	sum := 0.0
	for n := 0; n <= f.MaxDegree(); n++ {
		vn := 0.0
		for m := 0; m <= n; m++ {
			vn += f.C[n][m]*cnm[n][m] + f.S[n][m]*snm[n][m]
		}
		sum -= float64(n+1) * vn
	}
	return f.GM / f.R * sum / p.Norm()
}

// Gravity evaluates the gradient of V at a point.
func (f *Field) Gravity(p geom.Vector3) geom.Vector3 {
	if f.IsEmpty() {
		return geom.Vector3{}
	}
	cnm, snm := CnmSnm(p.Scale(1/f.R), f.MaxDegree()+1)
	var g geom.Vector3
	for n := 0; n <= f.MaxDegree(); n++ {
		g = g.Add(f.degreeGradient(n, cnm, snm))
	}
	return g.Scale(f.GM / (2 * f.R * f.R))
}

// degreeGradient returns the unscaled gradient contribution of degree n.
// cnm and snm must reach degree n+1.
func (f *Field) degreeGradient(n int, cnm, snm [][]float64) geom.Vector3 {
	g := math.Sqrt((2*float64(n) + 1) / (2*float64(n) + 3))
	nf := float64(n)

	// Order 0.
	wm0 := math.Sqrt((nf + 1) * (nf + 1))
	wp1 := math.Sqrt((nf+1)*(nf+2)) / math.Sqrt2
	c := f.C[n][0]
	out := geom.Vector3{
		X: g * c * (-2 * wp1 * cnm[n+1][1]),
		Y: g * c * (-2 * wp1 * snm[n+1][1]),
		Z: g * c * (-2 * wm0 * cnm[n+1][0]),
	}

	for m := 1; m <= n; m++ {
		mf := float64(m)
		wm1 := math.Sqrt((nf - mf + 1) * (nf - mf + 2))
		if m == 1 {
			wm1 *= math.Sqrt2
		}
		wm0 := math.Sqrt((nf - mf + 1) * (nf + mf + 1))
		wp1 := math.Sqrt((nf + mf + 1) * (nf + mf + 2))
		cm1, sm1 := wm1*cnm[n+1][m-1], wm1*snm[n+1][m-1]
		cm0, sm0 := wm0*cnm[n+1][m], wm0*snm[n+1][m]
		cp1, sp1 := wp1*cnm[n+1][m+1], wp1*snm[n+1][m+1]
		c, s := f.C[n][m], f.S[n][m]

		out.X += g * (c*(cm1-cp1) + s*(sm1-sp1))
		out.Y += g * (c*(-sm1-sp1) + s*(cm1+cp1))
		out.Z += g * (-2*c*cm0 - 2*s*sm0)
	}
	return out
}

// Derivatives returns three fields whose potentials are the x, y and z
// derivatives of the potential of f.
func (f *Field) Derivatives() (dx, dy, dz *Field) {
	if f.IsEmpty() {
		return &Field{}, &Field{}, &Field{}
	}
	n1 := f.MaxDegree() + 1
	dx, dy, dz = NewField(n1, f.GM, f.R), NewField(n1, f.GM, f.R), NewField(n1, f.GM, f.R)
	scale := 1 / (2 * f.R)
	for n := 0; n <= f.MaxDegree(); n++ {
		nf := float64(n)
		g := scale * math.Sqrt((2*nf+1)/(2*nf+3))

		c := f.C[n][0]
		wm0 := math.Sqrt((nf + 1) * (nf + 1))
		wp1 := math.Sqrt((nf+1)*(nf+2)) / math.Sqrt2
		dx.C[n+1][1] -= 2 * g * wp1 * c
		dy.S[n+1][1] -= 2 * g * wp1 * c
		dz.C[n+1][0] -= 2 * g * wm0 * c

		for m := 1; m <= n; m++ {
			mf := float64(m)
			wm1 := math.Sqrt((nf - mf + 1) * (nf - mf + 2))
			if m == 1 {
				wm1 *= math.Sqrt2
			}
			wm0 := math.Sqrt((nf - mf + 1) * (nf + mf + 1))
			wp1 := math.Sqrt((nf + mf + 1) * (nf + mf + 2))
			c, s := f.C[n][m], f.S[n][m]

			dx.C[n+1][m-1] += g * c * wm1
			dx.C[n+1][m+1] -= g * c * wp1
			dx.S[n+1][m-1] += g * s * wm1
			dx.S[n+1][m+1] -= g * s * wp1

			dy.S[n+1][m-1] -= g * c * wm1
			dy.S[n+1][m+1] -= g * c * wp1
			dy.C[n+1][m-1] += g * s * wm1
			dy.C[n+1][m+1] += g * s * wp1

			dz.C[n+1][m] -= 2 * g * c * wm0
			dz.S[n+1][m] -= 2 * g * s * wm0
		}
	}
	for _, d := range []*Field{dx, dy, dz} {
		for n := range d.S {
			d.S[n][0] = 0
		}
	}
	return dx, dy, dz
}

// GravityGradient evaluates the tensor of second derivatives of V.
func (f *Field) GravityGradient(p geom.Vector3) geom.Tensor3 {
	if f.IsEmpty() {
		return geom.Tensor3{}
	}
	fx, fy, fz := f.Derivatives()
	xx, xy, xz := fx.Derivatives()
	_, yy, yz := fy.Derivatives()
	_, _, zz := fz.Derivatives()
	return geom.Tensor3{
		XX: xx.Potential(p),
		XY: xy.Potential(p),
		XZ: xz.Potential(p),
		YY: yy.Potential(p),
		YZ: yz.Potential(p),
		ZZ: zz.Potential(p),
	}
}

// Deformation returns the elastic displacement of a surface point caused by
// the potential, using load or body Love numbers hn (vertical) and ln
// (horizontal) per degree and the local gravity.
func (f *Field) Deformation(p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	if f.IsEmpty() {
		return geom.Vector3{}, nil
	}
	if gravity == 0 {
		return geom.Vector3{}, fmt.Errorf("deformation needs non-zero gravity at %v", p)
	}
	if len(hn) <= f.MaxDegree() || len(ln) <= f.MaxDegree() {
		return geom.Vector3{}, fmt.Errorf("love numbers given to degree %d/%d, field needs %d",
			len(hn)-1, len(ln)-1, f.MaxDegree())
	}

	up := p.Normalize()
	cnm, snm := CnmSnm(p.Scale(1/f.R), f.MaxDegree()+1)
	var disp geom.Vector3
	for n := 0; n <= f.MaxDegree(); n++ {
		vn := 0.0
		for m := 0; m <= n; m++ {
			vn += f.C[n][m]*cnm[n][m] + f.S[n][m]*snm[n][m]
		}
		vn *= f.GM / f.R
		grad := f.degreeGradient(n, cnm, snm).Scale(f.GM / (2 * f.R))
		horizontal := grad.Sub(up.Scale(grad.Dot(up)))
		disp = disp.Add(up.Scale(hn[n] / gravity * vn)).Add(horizontal.Scale(ln[n] / gravity))
	}
	return disp, nil
}
