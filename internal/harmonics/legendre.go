package harmonics

import (
	"math"

	"go.ngs.io/geotides/internal/geom"
)

// CnmSnm computes the fully normalized solid harmonics 1/r^(n+1) Ynm of p up
// to maxDegree. p is usually scaled by 1/R before the call so that the values
// are dimensionless.
func CnmSnm(p geom.Vector3, maxDegree int) (cnm, snm [][]float64) {
	cnm = triangle(maxDegree)
	snm = triangle(maxDegree)
	if maxDegree < 0 {
		return cnm, snm
	}

	x, y, z := p.X, p.Y, p.Z
	r2 := x*x + y*y + z*z
	cnm[0][0] = 1 / math.Sqrt(r2)

	for m := 0; m <= maxDegree; m++ {
		mf := float64(m)
		if m > 0 {
			w := math.Sqrt((2*mf + 1) / (2 * mf))
			if m == 1 {
				w *= math.Sqrt2
			}
			c, s := cnm[m-1][m-1], snm[m-1][m-1]
			cnm[m][m] = w * (x*c - y*s) / r2
			snm[m][m] = w * (y*c + x*s) / r2
		}
		if m < maxDegree {
			w := math.Sqrt(2*mf + 3)
			cnm[m+1][m] = w * z * cnm[m][m] / r2
			snm[m+1][m] = w * z * snm[m][m] / r2
		}
		for n := m + 2; n <= maxDegree; n++ {
			nf := float64(n)
			a := math.Sqrt((2*nf + 1) * (2*nf - 1) / ((nf - mf) * (nf + mf)))
			b := math.Sqrt((2*nf + 1) * (nf - mf - 1) * (nf + mf - 1) / ((2*nf - 3) * (nf - mf) * (nf + mf)))
			cnm[n][m] = (a*z*cnm[n-1][m] - b*cnm[n-2][m]) / r2
			snm[n][m] = (a*z*snm[n-1][m] - b*snm[n-2][m]) / r2
		}
	}
	return cnm, snm
}
