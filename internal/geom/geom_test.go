package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got Vector3, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Z, got.Z, tol, "z")
}

func TestVector3_Algebra(t *testing.T) {
	a := Vector3{1, 2, 3}
	b := Vector3{-2, 0.5, 4}
	assert.InDelta(t, 11.0, a.Dot(b), 1e-15)
	assertVec(t, Vector3{6.5, -10, 4.5}, a.Cross(b), 1e-15)
	assert.InDelta(t, 0, a.Cross(b).Dot(a), 1e-12)
	assert.InDelta(t, 1, b.Normalize().Norm(), 1e-15)
}

func TestRotation_RotZ(t *testing.T) {
	r := RotZ(math.Pi / 2)
	// Frame rotation: the x axis of the old frame appears at -y in the new frame.
	assertVec(t, Vector3{0, -1, 0}, r.Rotate(Vector3{1, 0, 0}), 1e-15)
	assertVec(t, Vector3{1, 0, 0}, r.InverseRotate(r.Rotate(Vector3{1, 0, 0})), 1e-15)

	id := r.Mul(r.Inverse())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, id.M[i][j], 1e-15)
		}
	}
}

func TestRotation_RotateTensorPreservesTrace(t *testing.T) {
	tensor := Tensor3{XX: 1, XY: 0.2, XZ: -0.3, YY: 2, YZ: 0.1, ZZ: -3}
	r := RotX(0.3).Mul(RotY(-1.1)).Mul(RotZ(2.0))
	assert.InDelta(t, tensor.Trace(), r.RotateTensor(tensor).Trace(), 1e-12)
}

func TestLocalNorthEastUp(t *testing.T) {
	p := Polar(0, 0, 6378e3)
	r := LocalNorthEastUp(p)
	assertVec(t, Vector3{0, 0, 1}, r.Rotate(Vector3{1, 0, 0}), 1e-12) // north
	assertVec(t, Vector3{0, 1, 0}, r.Rotate(Vector3{0, 1, 0}), 1e-12) // east
	assertVec(t, Vector3{1, 0, 0}, r.Rotate(Vector3{0, 0, 1}), 1e-12) // up
}

func TestEllipsoid_RoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		lon, lat, h float64
	}{
		{"equator", 0.3, 0, 100},
		{"mid latitude", -1.2, 0.8, 2500},
		{"high latitude", 2.5, -1.45, -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := GRS80.Cartesian(tt.lon, tt.lat, tt.h)
			lon, lat, h := GRS80.Geodetic(p)
			assert.InDelta(t, tt.lon, lon, 1e-12)
			assert.InDelta(t, tt.lat, lat, 1e-11)
			assert.InDelta(t, tt.h, h, 1e-4)
		})
	}
}

func TestNormalGravity(t *testing.T) {
	equator := GRS80.Cartesian(0, 0, 0)
	pole := GRS80.Cartesian(0, math.Pi/2-1e-9, 0)
	assert.InDelta(t, 9.7803267715, NormalGravity(equator), 1e-6)
	assert.InDelta(t, 9.8321863685, NormalGravity(pole), 1e-6)

	// Free-air gradient of roughly 0.3086 mGal/m.
	high := GRS80.Cartesian(0, 0, 1000)
	assert.InDelta(t, -3.086e-3, NormalGravity(high)-NormalGravity(equator), 2e-5)
}
