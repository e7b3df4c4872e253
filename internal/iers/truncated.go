package iers

import (
	"math"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/timescale"
)

// nutationTerm is one luni-solar nutation term. Amplitudes are in units of
// 0.1 µas; the multipliers apply to l, l', F, D, Ω.
type nutationTerm struct {
	n                        [5]int
	ps, pst, pc, ec, ect, es float64
}

// Leading terms of the IAU 2000B luni-solar nutation.
var nutationTerms = []nutationTerm{
	{[5]int{0, 0, 0, 0, 1}, -172064161, -174666, 33386, 92052331, 9086, 15377},
	{[5]int{0, 0, 2, -2, 2}, -13170906, -1675, -13696, 5730336, -3015, -4587},
	{[5]int{0, 0, 2, 0, 2}, -2276413, -234, 2796, 978459, -485, 1374},
	{[5]int{0, 0, 0, 0, 2}, 2074554, 207, -698, -897492, 470, -291},
	{[5]int{0, 1, 0, 0, 0}, 1475877, -3633, 11817, 73871, -184, -1924},
	{[5]int{0, 1, 2, -2, 2}, -516821, 1226, -524, 224386, -677, -174},
	{[5]int{1, 0, 0, 0, 0}, 711159, 73, -872, -6750, 0, 358},
	{[5]int{0, 0, 2, 0, 1}, -387298, -367, 380, 200728, 18, 318},
	{[5]int{1, 0, 2, 0, 2}, -301461, -36, 816, 129025, -63, 367},
	{[5]int{0, -1, 2, -2, 2}, 215829, -494, 111, -95929, 299, 132},
	{[5]int{0, 0, 2, -2, 1}, 128227, 137, 181, -68982, -9, 39},
	{[5]int{-1, 0, 2, 0, 2}, 123457, 11, 19, -53311, 32, -4},
	{[5]int{-1, 0, 0, 2, 0}, 156994, 10, -168, -1235, 0, 82},
	{[5]int{1, 0, 0, 0, 1}, 63110, 63, 27, -33228, 0, -9},
	{[5]int{-1, 0, 0, 0, 1}, -57976, -63, -189, 31429, 0, -75},
	{[5]int{-1, 0, 2, 2, 2}, -59641, -11, 149, 25543, -11, 66},
	{[5]int{1, 0, 2, 0, 1}, -51613, -42, 129, 26366, 0, 78},
	{[5]int{-2, 0, 2, 0, 1}, 45893, 50, 31, -24236, -10, 20},
	{[5]int{0, 0, 0, 2, 0}, 63384, 11, -150, -1220, 0, 29},
	{[5]int{0, 0, 2, 2, 2}, -38571, -1, 158, 16452, -11, 68},
}

// sTerm is one periodic term of s+XY/2 in µas.
type sTerm struct {
	n        [5]int
	sin, cos float64
}

var sTerms0 = []sTerm{
	{[5]int{0, 0, 0, 0, 1}, -2640.73, 0.39},
	{[5]int{0, 0, 0, 0, 2}, -63.53, 0.02},
	{[5]int{0, 0, 2, -2, 3}, -11.75, -0.01},
	{[5]int{0, 0, 2, -2, 1}, -11.21, -0.01},
	{[5]int{0, 0, 2, -2, 2}, 4.57, 0},
	{[5]int{0, 0, 2, 0, 3}, -2.02, 0},
	{[5]int{0, 0, 2, 0, 1}, -1.98, 0},
	{[5]int{0, 0, 0, 0, 3}, 1.72, 0},
	{[5]int{0, 1, 0, 0, 1}, 1.41, 0.01},
	{[5]int{0, 1, 0, 0, -1}, 1.26, 0.01},
	{[5]int{1, 0, 0, 0, -1}, -0.63, 0},
	{[5]int{1, 0, 0, 0, 1}, -0.63, 0},
}

var sTerms2 = []sTerm{
	{[5]int{0, 0, 0, 0, 1}, 743.52, -0.17},
	{[5]int{0, 0, 2, -2, 2}, 56.91, 0.06},
	{[5]int{0, 0, 2, 0, 2}, 9.84, -0.01},
	{[5]int{0, 0, 0, 0, 2}, -8.85, 0.01},
}

// Truncated computes the CIP from the IAU 2006 Fukushima-Williams
// precession angles and the leading IAU 2000B nutation terms. The error
// against the full model stays at the milliarcsecond level.
type Truncated struct{}

// CIP implements PrecessionNutation.
func (Truncated) CIP(timeTT timescale.Time) (float64, float64, float64, error) {
	if err := checkAvailable(timeTT); err != nil {
		return 0, 0, 0, err
	}
	t := timescale.JulianCenturies(timeTT)
	args := DelaunayArguments(t).Array()

	gamb, phib, psib, epsa := fukushimaWilliams(t)
	dpsi, deps := nutation(t, args)

	r := geom.RotX(-(epsa + deps)).
		Mul(geom.RotZ(-(psib + dpsi))).
		Mul(geom.RotX(phib)).
		Mul(geom.RotZ(gamb))
	x, y := r.M[2][0], r.M[2][1]

	return x, y, cioLocator(t, args, x, y), nil
}

// fukushimaWilliams returns the IAU 2006 bias-precession angles in radians.
func fukushimaWilliams(t float64) (gamb, phib, psib, epsa float64) {
	poly := func(c ...float64) float64 {
		v := 0.0
		for i := len(c) - 1; i >= 0; i-- {
			v = v*t + c[i]
		}
		return v * domain.ArcsecToRad
	}
	gamb = poly(-0.052928, 10.556378, 0.4932044, -0.00031238, -0.000002788, 0.0000000260)
	phib = poly(84381.412819, -46.811016, 0.0511268, 0.00053289, -0.000000440, -0.0000000176)
	psib = poly(-0.041775, 5038.481484, 1.5584175, -0.00018522, -0.000026452, -0.0000000148)
	epsa = poly(84381.406, -46.836769, -0.0001831, 0.00200340, -0.000000576, -0.0000000434)
	return gamb, phib, psib, epsa
}

// nutation returns Δψ and Δε in radians, including the fixed planetary
// offsets and the IAU 2006 J2 rate adjustment.
func nutation(t float64, args [5]float64) (dpsi, deps float64) {
	const unit = 1e-7 * domain.ArcsecToRad
	for _, term := range nutationTerms {
		arg := 0.0
		for i, n := range term.n {
			arg += float64(n) * args[i]
		}
		s, c := math.Sincos(arg)
		dpsi += (term.ps+term.pst*t)*s + term.pc*c
		deps += (term.ec+term.ect*t)*c + term.es*s
	}
	dpsi = dpsi*unit - 0.135e-3*domain.ArcsecToRad
	deps = deps*unit + 0.388e-3*domain.ArcsecToRad

	fj2 := -2.7774e-6 * t
	return dpsi * (1 + 0.4697e-6 + fj2), deps * (1 + fj2)
}

// cioLocator evaluates s from the leading terms of the s+XY/2 series.
func cioLocator(t float64, args [5]float64, x, y float64) float64 {
	sum := func(terms []sTerm) float64 {
		v := 0.0
		for _, term := range terms {
			arg := 0.0
			for i, n := range term.n {
				arg += float64(n) * args[i]
			}
			s, c := math.Sincos(arg)
			v += term.sin*s + term.cos*c
		}
		return v
	}
	poly := 94 + t*(3808.65+t*(-122.68+t*(-72574.11+t*(27.98+t*15.62))))
	sxy2 := poly + sum(sTerms0) + t*t*sum(sTerms2)
	return sxy2*1e-6*domain.ArcsecToRad - x*y/2
}
