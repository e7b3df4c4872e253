package geom

import "math"

// Rotation is an orthonormal 3x3 matrix acting on column vectors.
type Rotation struct {
	M [3][3]float64
}

// Identity returns the identity rotation.
func Identity() Rotation {
	return Rotation{M: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// RotX returns the frame rotation about the x axis by angle (radians).
func RotX(angle float64) Rotation {
	c, s := math.Cos(angle), math.Sin(angle)
	return Rotation{M: [3][3]float64{{1, 0, 0}, {0, c, s}, {0, -s, c}}}
}

// RotY returns the frame rotation about the y axis by angle (radians).
func RotY(angle float64) Rotation {
	c, s := math.Cos(angle), math.Sin(angle)
	return Rotation{M: [3][3]float64{{c, 0, -s}, {0, 1, 0}, {s, 0, c}}}
}

// RotZ returns the frame rotation about the z axis by angle (radians).
func RotZ(angle float64) Rotation {
	c, s := math.Cos(angle), math.Sin(angle)
	return Rotation{M: [3][3]float64{{c, s, 0}, {-s, c, 0}, {0, 0, 1}}}
}

// Mul returns the composition r·q (q applied first).
func (r Rotation) Mul(q Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[i][j] = r.M[i][0]*q.M[0][j] + r.M[i][1]*q.M[1][j] + r.M[i][2]*q.M[2][j]
		}
	}
	return out
}

// Inverse returns the transpose.
func (r Rotation) Inverse() Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[i][j] = r.M[j][i]
		}
	}
	return out
}

// Rotate applies r to v.
func (r Rotation) Rotate(v Vector3) Vector3 {
	return Vector3{
		r.M[0][0]*v.X + r.M[0][1]*v.Y + r.M[0][2]*v.Z,
		r.M[1][0]*v.X + r.M[1][1]*v.Y + r.M[1][2]*v.Z,
		r.M[2][0]*v.X + r.M[2][1]*v.Y + r.M[2][2]*v.Z,
	}
}

// InverseRotate applies the transpose of r to v.
func (r Rotation) InverseRotate(v Vector3) Vector3 {
	return Vector3{
		r.M[0][0]*v.X + r.M[1][0]*v.Y + r.M[2][0]*v.Z,
		r.M[0][1]*v.X + r.M[1][1]*v.Y + r.M[2][1]*v.Z,
		r.M[0][2]*v.X + r.M[1][2]*v.Y + r.M[2][2]*v.Z,
	}
}

// RotateTensor returns r T rᵀ.
func (r Rotation) RotateTensor(t Tensor3) Tensor3 {
	full := [3][3]float64{{t.XX, t.XY, t.XZ}, {t.XY, t.YY, t.YZ}, {t.XZ, t.YZ, t.ZZ}}
	var tmp, out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				tmp[i][j] += r.M[i][k] * full[k][j]
			}
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += tmp[i][k] * r.M[j][k]
			}
		}
	}
	return Tensor3{out[0][0], out[0][1], out[0][2], out[1][1], out[1][2], out[2][2]}
}

// LocalNorthEastUp returns the rotation whose columns are the north, east and
// up unit vectors at point (spherical approximation). Rotate maps local
// north/east/up components to the global frame.
func LocalNorthEastUp(point Vector3) Rotation {
	up := point.Normalize()
	east := Vector3{0, 0, 1}.Cross(up).Normalize()
	north := up.Cross(east).Normalize()
	return Rotation{M: [3][3]float64{
		{north.X, east.X, up.X},
		{north.Y, east.Y, up.Y},
		{north.Z, east.Z, up.Z},
	}}
}
