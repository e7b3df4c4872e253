// Package orbit generates evaluation points along satellite ground tracks
// from two-line element sets.
package orbit

import (
	"math"
	"strings"

	satellite "github.com/joshuaferrara/go-satellite"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/timescale"
)

const (
	tleLineLength = 69
	kmToM         = 1000.0
)

// Sample is a propagated terrestrial position.
type Sample struct {
	TimeUTC  timescale.Time
	Position geom.Vector3 // Earth-fixed (m).
}

// Propagator evaluates an SGP4 orbit.
type Propagator struct {
	sat satellite.Satellite
}

// NewPropagator parses a TLE. The lines are checked for shape before they are
// handed to the SGP4 parser.
func NewPropagator(line1, line2 string) (*Propagator, error) {
	line1 = strings.TrimRight(line1, " \r\n")
	line2 = strings.TrimRight(line2, " \r\n")
	if len(line1) != tleLineLength || !strings.HasPrefix(line1, "1 ") {
		return nil, domain.MalformedInput("invalid TLE line 1 %q", line1)
	}
	if len(line2) != tleLineLength || !strings.HasPrefix(line2, "2 ") {
		return nil, domain.MalformedInput("invalid TLE line 2 %q", line2)
	}
	return &Propagator{sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72)}, nil
}

// Position returns the Earth-fixed position at a UTC epoch. Rotation uses
// GMST only; polar motion is neglected at the accuracy of SGP4.
func (p *Propagator) Position(timeUTC timescale.Time) (geom.Vector3, error) {
	t := timeUTC.Time()
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	posECI, _ := satellite.Propagate(p.sat, year, int(month), day, hour, minute, sec)
	if math.IsNaN(posECI.X) || math.IsNaN(posECI.Y) || math.IsNaN(posECI.Z) {
		return geom.Vector3{}, domain.OutOfRange("SGP4 propagation failed at %s", timeUTC)
	}
	jd := satellite.JDay(year, int(month), day, hour, minute, sec)
	posECEF := satellite.ECIToECEF(posECI, satellite.ThetaG_JD(jd))
	return geom.Vector3{X: posECEF.X * kmToM, Y: posECEF.Y * kmToM, Z: posECEF.Z * kmToM}, nil
}

// Track samples the orbit from start to end inclusive.
func (p *Propagator) Track(start, end timescale.Time, stepSeconds float64) ([]Sample, error) {
	times, err := timescale.Series(start, end, stepSeconds)
	if err != nil {
		return nil, err
	}
	samples := make([]Sample, len(times))
	for i, t := range times {
		pos, err := p.Position(t)
		if err != nil {
			return nil, err
		}
		samples[i] = Sample{TimeUTC: t, Position: pos}
	}
	return samples, nil
}
