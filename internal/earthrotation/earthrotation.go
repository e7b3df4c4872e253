package earthrotation

import (
	"fmt"
	"math"

	"go.ngs.io/geotides/internal/adapter/interp"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/timescale"
)

// DefaultInterpolationDegree is the polynomial degree used for EOP series.
const DefaultInterpolationDegree = 3

// Orientation is the full Earth orientation at one epoch.
type Orientation struct {
	Xp, Yp  float64 // Pole coordinates (rad).
	Sp      float64 // TIO locator s' (rad).
	DeltaUT float64 // UT1-UTC (s).
	LOD     float64 // Excess length of day (s).
	X, Y    float64 // CIP coordinates in the celestial frame (rad).
	S       float64 // CIO locator (rad).
}

// Provider supplies Earth orientation for GPS epochs.
type Provider interface {
	Orientation(timeGPS timescale.Time) (Orientation, error)
	// Rotation returns the matrix rotating terrestrial into celestial
	// coordinates.
	Rotation(timeGPS timescale.Time) (geom.Rotation, error)
	// CelestialToTerrestrial returns the transpose of Rotation.
	CelestialToTerrestrial(timeGPS timescale.Time) (geom.Rotation, error)
	// RotaryAxis returns the instantaneous rotation vector of the Earth in
	// the terrestrial frame (rad/s).
	RotaryAxis(timeGPS timescale.Time) (geom.Vector3, error)
}

// Config selects the sources of an EarthRotation.
type Config struct {
	// Series is the tabulated EOP. Without it the tabulated part is zero
	// and any epoch is accepted.
	Series *Series
	// InterpolationDegree of the Lagrange polynomial; a negative value
	// selects DefaultInterpolationDegree.
	InterpolationDegree int
	// Precession provides the CIP. Nil selects iers.Truncated.
	Precession iers.PrecessionNutation
	// ShortPeriod models are summed on top of the series.
	ShortPeriod []*iers.ShortPeriodModel
}

// EarthRotation is immutable after construction and safe for concurrent
// use.
type EarthRotation struct {
	series      *Series
	poly        *interp.Polynomial
	precession  iers.PrecessionNutation
	shortPeriod []*iers.ShortPeriodModel
}

var _ Provider = (*EarthRotation)(nil)

// New creates an EarthRotation. Missing precession-nutation support is not
// an error here; it surfaces on the first query.
func New(cfg Config) (*EarthRotation, error) {
	degree := cfg.InterpolationDegree
	if degree < 0 {
		degree = DefaultInterpolationDegree
	}
	poly, err := interp.NewPolynomial(degree)
	if err != nil {
		return nil, fmt.Errorf("failed to create EOP interpolator: %w", err)
	}
	precession := cfg.Precession
	if precession == nil {
		precession = iers.Truncated{}
	}
	return &EarthRotation{
		series:      cfg.Series,
		poly:        poly,
		precession:  precession,
		shortPeriod: cfg.ShortPeriod,
	}, nil
}

// Series returns the tabulated EOP or nil.
func (e *EarthRotation) Series() *Series { return e.series }

// Orientation implements Provider.
func (e *EarthRotation) Orientation(timeGPS timescale.Time) (Orientation, error) {
	// A missing precession model takes precedence over range errors.
	timeTT := timescale.GPSToTT(timeGPS)
	x, y, s, err := e.precession.CIP(timeTT)
	if err != nil {
		return Orientation{}, fmt.Errorf("orientation at %s: %w", timeGPS.Format(), err)
	}

	timeUTC := timescale.GPSToUTC(timeGPS)
	eop := make([]float64, colDY+1)
	if e.series != nil {
		if !e.series.Contains(timeUTC) {
			return Orientation{}, domain.OutOfRange("time %s (UTC) is outside the EOP series [%s, %s]",
				timeUTC.Format(), e.series.Start().Format(), e.series.End().Format())
		}
		days := timeUTC.Sub(e.series.Start()).Days()
		values, err := e.poly.Interpolate(days, e.series.xs, e.series.values)
		if err != nil {
			return Orientation{}, fmt.Errorf("failed to interpolate EOP at %s: %w", timeUTC.Format(), err)
		}
		eop = values
	}

	var corr iers.Correction
	for _, m := range e.shortPeriod {
		corr = corr.Add(m.Evaluate(timeUTC))
	}

	o := Orientation{
		Xp:      eop[colXP] + corr.X*1e-6*domain.ArcsecToRad,
		Yp:      eop[colYP] + corr.Y*1e-6*domain.ArcsecToRad,
		DeltaUT: eop[colUT1MinusGPS] + timescale.GPSMinusUTC(timeUTC) + corr.UT1*1e-6,
		LOD:     eop[colLOD] + corr.LOD*1e-6,
	}

	o.Sp = iers.TIOLocator(timescale.JulianCenturies(timeTT))
	o.X = x + eop[colDX]
	o.Y = y + eop[colDY]
	o.S = s
	return o, nil
}

// Rotation implements Provider.
func (e *EarthRotation) Rotation(timeGPS timescale.Time) (geom.Rotation, error) {
	o, err := e.Orientation(timeGPS)
	if err != nil {
		return geom.Rotation{}, err
	}
	timeUT1 := timescale.GPSToUTC(timeGPS).Add(o.DeltaUT)
	return TerrestrialToCelestial(o, iers.ERA(timeUT1)), nil
}

// CelestialToTerrestrial implements Provider.
func (e *EarthRotation) CelestialToTerrestrial(timeGPS timescale.Time) (geom.Rotation, error) {
	r, err := e.Rotation(timeGPS)
	if err != nil {
		return geom.Rotation{}, err
	}
	return r.Inverse(), nil
}

// RotaryAxis implements Provider.
func (e *EarthRotation) RotaryAxis(timeGPS timescale.Time) (geom.Vector3, error) {
	o, err := e.Orientation(timeGPS)
	if err != nil {
		return geom.Vector3{}, err
	}
	return RotationVector(o), nil
}

// TerrestrialToCelestial combines polar motion W, Earth rotation R and the
// celestial motion of the pole Q into Q·R·W.
func TerrestrialToCelestial(o Orientation, era float64) geom.Rotation {
	w := geom.RotZ(-o.Sp).Mul(geom.RotY(o.Xp)).Mul(geom.RotX(o.Yp))
	r := geom.RotZ(-era)

	e := math.Atan2(o.Y, o.X)
	d := math.Atan(math.Sqrt((o.X*o.X + o.Y*o.Y) / (1 - o.X*o.X - o.Y*o.Y)))
	q := geom.RotZ(-e).Mul(geom.RotY(-d)).Mul(geom.RotZ(e)).Mul(geom.RotZ(o.S))

	return q.Mul(r).Mul(w)
}

// RotationVector returns the Earth rotation vector in the terrestrial frame.
func RotationVector(o Orientation) geom.Vector3 {
	rate := domain.EarthRotationRate * (1 - o.LOD/domain.SecondsPerDay)
	return geom.Vector3{X: o.Xp, Y: -o.Yp, Z: 1}.Normalize().Scale(rate)
}
