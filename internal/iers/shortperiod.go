package iers

import (
	"math"

	"go.ngs.io/geotides/internal/timescale"
)

// HarmonicTerm is one line of a short-period EOP model. N multiplies the
// arguments (GMST+π, l, l', F, D, Ω); amplitudes are in µas for polar motion
// and µs for UT1 and LOD.
type HarmonicTerm struct {
	N              [6]int
	XSin, XCos     float64
	YSin, YCos     float64
	UT1Sin, UT1Cos float64
	LODSin, LODCos float64
}

// Correction holds short-period EOP variations in model units.
type Correction struct {
	X, Y     float64 // µas
	UT1, LOD float64 // µs
}

// Add returns the component-wise sum.
func (c Correction) Add(o Correction) Correction {
	return Correction{X: c.X + o.X, Y: c.Y + o.Y, UT1: c.UT1 + o.UT1, LOD: c.LOD + o.LOD}
}

// ShortPeriodModel is a harmonic model of diurnal and sub-diurnal EOP
// variations, such as ocean tide effects or libration.
type ShortPeriodModel struct {
	Name  string
	Terms []HarmonicTerm
}

// Evaluate sums all terms at a UTC epoch.
func (m *ShortPeriodModel) Evaluate(timeUTC timescale.Time) Correction {
	var out Correction
	if m == nil || len(m.Terms) == 0 {
		return out
	}

	d := DelaunayArguments(timescale.JulianCenturies(timescale.UTCToTT(timeUTC))).Array()
	args := [6]float64{GMST(timeUTC) + math.Pi, d[0], d[1], d[2], d[3], d[4]}

	for _, term := range m.Terms {
		arg := 0.0
		for i, n := range term.N {
			arg += float64(n) * args[i]
		}
		s, c := math.Sincos(arg)
		out.X += term.XSin*s + term.XCos*c
		out.Y += term.YSin*s + term.YCos*c
		out.UT1 += term.UT1Sin*s + term.UT1Cos*c
		out.LOD += term.LODSin*s + term.LODCos*c
	}
	return out
}
