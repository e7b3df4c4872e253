// Package earthrotation interpolates Earth orientation parameters and builds
// the rotation between the terrestrial and the celestial reference frame.
package earthrotation

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/timescale"
)

// Record is one tabulated EOP epoch as published: pole coordinates and
// celestial pole offsets in arcseconds, UT1-UTC and LOD in seconds.
type Record struct {
	EpochUTC    timescale.Time
	XP, YP      float64
	UT1MinusUTC float64
	LOD         float64
	DX, DY      float64
}

// Column indices of the internal series.
const (
	colXP = iota
	colYP
	colUT1MinusGPS
	colLOD
	colDX
	colDY
)

// Series is a validated, unit-converted EOP table. Angles are in radians and
// UT1 is stored relative to GPS time so that it is continuous across leap
// seconds.
type Series struct {
	epochs []timescale.Time
	xs     []float64
	values [][]float64
}

// NewSeries converts and validates records. Epochs must be strictly
// increasing.
func NewSeries(records []Record) (*Series, error) {
	if len(records) == 0 {
		return nil, domain.MalformedInput("EOP series is empty")
	}

	s := &Series{
		epochs: make([]timescale.Time, len(records)),
		xs:     make([]float64, len(records)),
		values: make([][]float64, len(records)),
	}
	first := records[0].EpochUTC
	for i, r := range records {
		if i > 0 && !r.EpochUTC.After(records[i-1].EpochUTC) {
			return nil, domain.MalformedInput("EOP epochs not strictly increasing at row %d (%s after %s)",
				i, r.EpochUTC, records[i-1].EpochUTC)
		}
		s.epochs[i] = r.EpochUTC
		s.xs[i] = r.EpochUTC.Sub(first).Days()
		s.values[i] = []float64{
			colXP:          r.XP * domain.ArcsecToRad,
			colYP:          r.YP * domain.ArcsecToRad,
			colUT1MinusGPS: r.UT1MinusUTC - timescale.GPSMinusUTC(r.EpochUTC),
			colLOD:         r.LOD,
			colDX:          r.DX * domain.ArcsecToRad,
			colDY:          r.DY * domain.ArcsecToRad,
		}
	}
	return s, nil
}

// Len returns the number of epochs.
func (s *Series) Len() int { return len(s.epochs) }

// Start returns the first epoch (UTC).
func (s *Series) Start() timescale.Time { return s.epochs[0] }

// End returns the last epoch (UTC).
func (s *Series) End() timescale.Time { return s.epochs[len(s.epochs)-1] }

// Contains reports whether a UTC time lies within the tabulated span.
func (s *Series) Contains(timeUTC timescale.Time) bool {
	return !timeUTC.Before(s.Start()) && !timeUTC.After(s.End())
}
