// Package iers implements the astronomical models of the IERS Conventions
// used for Earth orientation: fundamental arguments, sidereal time and Earth
// rotation angle, the celestial intermediate pole (truncated or from the full
// series tables) and harmonic short-period EOP corrections.
package iers

import (
	"math"

	"go.ngs.io/geotides/internal/domain"
)

const twoPi = 2 * math.Pi

// Delaunay holds the five luni-solar fundamental arguments in radians.
type Delaunay struct {
	L      float64 // Mean anomaly of the Moon.
	LPrime float64 // Mean anomaly of the Sun.
	F      float64 // Mean argument of latitude of the Moon.
	D      float64 // Mean elongation of the Moon from the Sun.
	Omega  float64 // Mean longitude of the ascending node of the Moon.
}

// Array returns the arguments in the order l, l', F, D, Ω.
func (d Delaunay) Array() [5]float64 {
	return [5]float64{d.L, d.LPrime, d.F, d.D, d.Omega}
}

// DelaunayArguments evaluates the fundamental arguments at t Julian
// centuries since J2000.
func DelaunayArguments(t float64) Delaunay {
	arg := func(c0, c1, c2, c3, c4 float64) float64 {
		return math.Mod(c0+t*(c1+t*(c2+t*(c3+t*c4))), 1296000) * domain.ArcsecToRad
	}
	return Delaunay{
		L:      arg(485868.249036, 1717915923.2178, 31.8792, 0.051635, -0.00024470),
		LPrime: arg(1287104.793048, 129596581.0481, -0.5532, 0.000136, -0.00001149),
		F:      arg(335779.526232, 1739527262.8478, -12.7512, -0.001037, 0.00000417),
		D:      arg(1072260.703692, 1602961601.2090, -6.3706, 0.006593, -0.00003169),
		Omega:  arg(450160.398036, -6962890.5431, 7.4722, 0.007702, -0.00005939),
	}
}

// PlanetaryArguments returns the mean longitudes of Mercury through Neptune
// followed by the general accumulated precession in longitude, in radians.
func PlanetaryArguments(t float64) [9]float64 {
	return [9]float64{
		math.Mod(4.402608842+2608.7903141574*t, twoPi),
		math.Mod(3.176146697+1021.3285546211*t, twoPi),
		math.Mod(1.753470314+628.3075849991*t, twoPi),
		math.Mod(6.203480913+334.0612426700*t, twoPi),
		math.Mod(0.599546497+52.9690962641*t, twoPi),
		math.Mod(0.874016757+21.3299104960*t, twoPi),
		math.Mod(5.481293872+7.4781598567*t, twoPi),
		math.Mod(5.311886287+3.8133035638*t, twoPi),
		(0.02438175 + 0.00000538691*t) * t,
	}
}

// FundamentalArguments returns the 14 arguments of the IERS series:
// l, l', F, D, Ω, L_Me, L_Ve, L_E, L_Ma, L_J, L_Sa, L_U, L_Ne, p_A.
func FundamentalArguments(t float64) [14]float64 {
	var out [14]float64
	d := DelaunayArguments(t).Array()
	copy(out[:5], d[:])
	p := PlanetaryArguments(t)
	copy(out[5:], p[:])
	return out
}

// TIOLocator returns s' in radians at t Julian centuries (TT).
func TIOLocator(t float64) float64 {
	return -47e-6 * t * domain.ArcsecToRad
}
