package iers

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/timescale"
)

// PrecessionNutation yields the celestial intermediate pole coordinates X, Y
// and the CIO locator s (radians) at a TT epoch.
type PrecessionNutation interface {
	CIP(timeTT timescale.Time) (x, y, s float64, err error)
}

// Unavailable is the model used when no precession-nutation source was
// configured. Every query fails with a missing dependency error.
type Unavailable struct {
	Reason string
}

// CIP implements PrecessionNutation.
func (u Unavailable) CIP(timeTT timescale.Time) (float64, float64, float64, error) {
	return 0, 0, 0, domain.MissingDependency("precession-nutation at %s: %s", timeTT, u.Reason)
}

// Available reports whether the built-in precession-nutation models were
// compiled in.
func Available() bool { return precessionAvailable }

func checkAvailable(timeTT timescale.Time) error {
	if !precessionAvailable {
		return domain.MissingDependency("precession-nutation at %s: library excluded from this build", timeTT)
	}
	return nil
}
