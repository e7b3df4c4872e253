// Package geom provides 3-D vectors, symmetric tensors, rotations and the
// reference ellipsoid used for station coordinates.
package geom

import (
	"fmt"
	"math"
)

// Vector3 is a Cartesian vector.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns v+w.
func (v Vector3) Add(w Vector3) Vector3 { return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v-w.
func (v Vector3) Sub(w Vector3) Vector3 { return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns f*v.
func (v Vector3) Scale(f float64) Vector3 { return Vector3{f * v.X, f * v.Y, f * v.Z} }

// Dot returns the inner product.
func (v Vector3) Dot(w Vector3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v×w.
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length.
func (v Vector3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector along v. The zero vector is returned unchanged.
func (v Vector3) Normalize() Vector3 {
	r := v.Norm()
	if r == 0 {
		return v
	}
	return v.Scale(1 / r)
}

// Slice returns the components as a slice.
func (v Vector3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }

func (v Vector3) String() string { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }

// Polar builds a vector from longitude, latitude (radians) and radius.
func Polar(lon, lat, r float64) Vector3 {
	return Vector3{
		r * math.Cos(lat) * math.Cos(lon),
		r * math.Cos(lat) * math.Sin(lon),
		r * math.Sin(lat),
	}
}

// Tensor3 is a symmetric 3x3 tensor.
type Tensor3 struct {
	XX, XY, XZ, YY, YZ, ZZ float64
}

// Add returns t+u.
func (t Tensor3) Add(u Tensor3) Tensor3 {
	return Tensor3{t.XX + u.XX, t.XY + u.XY, t.XZ + u.XZ, t.YY + u.YY, t.YZ + u.YZ, t.ZZ + u.ZZ}
}

// Scale returns f*t.
func (t Tensor3) Scale(f float64) Tensor3 {
	return Tensor3{f * t.XX, f * t.XY, f * t.XZ, f * t.YY, f * t.YZ, f * t.ZZ}
}

// Trace returns XX+YY+ZZ.
func (t Tensor3) Trace() float64 { return t.XX + t.YY + t.ZZ }

// Identity3 returns the unit tensor.
func Identity3() Tensor3 { return Tensor3{XX: 1, YY: 1, ZZ: 1} }

// Outer returns the dyadic product v vᵀ.
func Outer(v Vector3) Tensor3 {
	return Tensor3{v.X * v.X, v.X * v.Y, v.X * v.Z, v.Y * v.Y, v.Y * v.Z, v.Z * v.Z}
}
