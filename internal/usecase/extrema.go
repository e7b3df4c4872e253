package usecase

import (
	"go.ngs.io/geotides/internal/timescale"
)

// Extremum is a refined turning point of a sampled series.
type Extremum struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// Extrema lists the highs and lows of a series.
type Extrema struct {
	Highs []Extremum `json:"highs"`
	Lows  []Extremum `json:"lows"`
}

// findExtrema locates strict local maxima and minima of values sampled at
// the uniformly spaced times and refines each with a parabola through its
// neighbours. Plateaus are skipped.
func findExtrema(times []timescale.Time, values []float64) Extrema {
	ex := Extrema{Highs: []Extremum{}, Lows: []Extremum{}}
	if len(values) < 3 || len(times) != len(values) {
		return ex
	}
	for i := 1; i < len(values)-1; i++ {
		prev, curr, next := values[i-1], values[i], values[i+1]
		switch {
		case curr > prev && curr > next:
			ex.Highs = append(ex.Highs, refineExtremum(times, values, i))
		case curr < prev && curr < next:
			ex.Lows = append(ex.Lows, refineExtremum(times, values, i))
		}
	}
	return ex
}

// refineExtremum fits y = a + b·x + c·x² through samples i-1, i, i+1.
func refineExtremum(times []timescale.Time, values []float64, i int) Extremum {
	y0, y1, y2 := values[i-1], values[i], values[i+1]
	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return Extremum{Time: formatTime(times[i]), Value: y1}
	}
	// Offset of the vertex in units of the sampling step, within (-0.5, 0.5).
	delta := 0.5 * (y0 - y2) / denom
	step := times[i+1].Sub(times[i]).Seconds()
	return Extremum{
		Time:  formatTime(times[i].Add(delta * step)),
		Value: y1 - 0.25*(y0-y2)*delta,
	}
}
