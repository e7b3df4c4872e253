package tides

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/timescale"
)

// MeanPole models the slowly moving reference pole in milliarcseconds.
type MeanPole interface {
	Position(t timescale.Time) (x, y float64)
}

// SecularPole is the linear secular pole of the IERS Conventions (2018
// update).
type SecularPole struct{}

// Position implements MeanPole.
func (SecularPole) Position(t timescale.Time) (float64, float64) {
	dy := timescale.DecimalYear(t) - 2000
	return 55.0 + 1.677*dy, 320.5 + 3.460*dy
}

// IERS2010Pole is the cubic/linear conventional mean pole of the IERS
// Conventions 2010.
type IERS2010Pole struct{}

// Position implements MeanPole.
func (IERS2010Pole) Position(t timescale.Time) (float64, float64) {
	dy := timescale.DecimalYear(t) - 2000
	if dy < 10 {
		return 55.974 + dy*(1.8243+dy*(0.18413+dy*0.007024)),
			346.346 + dy*(1.7896+dy*(-0.10729+dy*-0.000908))
	}
	return 23.513 + 7.6141*dy, 358.891 - 0.6287*dy
}

// ParseMeanPole maps a configuration name to a model. Empty selects the
// secular pole.
func ParseMeanPole(name string) (MeanPole, error) {
	switch name {
	case "", "secular":
		return SecularPole{}, nil
	case "iers2010":
		return IERS2010Pole{}, nil
	}
	return nil, domain.MalformedInput("unknown mean pole model %q", name)
}

// wobble returns m1, m2 in arcseconds for pole coordinates in radians.
func wobble(mp MeanPole, t timescale.Time, xp, yp float64) (m1, m2 float64) {
	xm, ym := mp.Position(t)
	m1 = xp/domain.ArcsecToRad - xm*1e-3
	m2 = -(yp/domain.ArcsecToRad - ym*1e-3)
	return m1, m2
}
