package iers

import (
	"math"

	"go.ngs.io/geotides/internal/timescale"
)

// GMST returns the Greenwich mean sidereal time in radians for a UT1 epoch.
func GMST(timeUT1 timescale.Time) float64 {
	tu0 := (float64(timeUT1.MJDInt()) - timescale.MJDJ2000) / 36525.0

	gmst0 := (6.0/24 + 41.0/(24*60) + 50.54841/86400) +
		(8640184.812866/86400)*tu0 +
		(0.093104/86400)*tu0*tu0 +
		(-6.2e-6/86400)*tu0*tu0*tu0
	r := 1.002737909350795 + 5.9006e-11*tu0 - 5.9e-15*tu0*tu0

	return normalizeAngle(twoPi * (gmst0 + r*timeUT1.MJDMod()))
}

// ERA returns the Earth rotation angle in radians for a UT1 epoch.
func ERA(timeUT1 timescale.Time) float64 {
	days := float64(timeUT1.MJDInt()-51544) + timeUT1.MJDMod() - 0.5
	_, frac := math.Modf(days)
	return normalizeAngle(twoPi * (0.7790572732640 + frac + 0.00273781191135448*days))
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}
