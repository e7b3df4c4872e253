package iers

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/timescale"
)

// MaxSeriesPower is the highest power of t in the IERS 2010 CIP tables.
const MaxSeriesPower = 4

// SeriesTerm is one line of an IERS CIP table: amplitudes in µas for the
// argument Σ N[i]·FundamentalArguments[i].
type SeriesTerm struct {
	Sin, Cos float64
	N        [14]int
}

// SeriesTable holds the periodic terms of one CIP quantity grouped by the
// power of t they multiply.
type SeriesTable struct {
	Terms [MaxSeriesPower + 1][]SeriesTerm
}

// Len returns the total number of terms.
func (s *SeriesTable) Len() int {
	n := 0
	for _, terms := range s.Terms {
		n += len(terms)
	}
	return n
}

// Evaluate sums the periodic part in µas.
func (s *SeriesTable) Evaluate(t float64, args [14]float64) float64 {
	total := 0.0
	tj := 1.0
	for _, terms := range s.Terms {
		sum := 0.0
		for _, term := range terms {
			arg := 0.0
			for i, n := range term.N {
				if n != 0 {
					arg += float64(n) * args[i]
				}
			}
			sn, cs := math.Sincos(arg)
			sum += term.Sin*sn + term.Cos*cs
		}
		total += tj * sum
		tj *= t
	}
	return total
}

// ParseSeriesTable reads an IERS Conventions table (5.2a, 5.2b or 5.2d).
// A line containing "j = k" starts the block of terms multiplying t^k; a
// term line has 17 fields: index, sine and cosine amplitude, then the 14
// argument multipliers. Other lines are ignored.
func ParseSeriesTable(r io.Reader) (*SeriesTable, error) {
	table := &SeriesTable{}
	power := -1

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if idx := strings.Index(line, "j ="); idx >= 0 {
			fields := strings.Fields(line[idx+3:])
			if len(fields) == 0 {
				return nil, domain.MalformedInput("line %d: missing power after 'j ='", lineNo)
			}
			p, err := strconv.Atoi(fields[0])
			if err != nil || p < 0 || p > MaxSeriesPower {
				return nil, domain.MalformedInput("line %d: invalid power %q", lineNo, fields[0])
			}
			power = p
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 17 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		if power < 0 {
			return nil, domain.MalformedInput("line %d: term before any 'j =' header", lineNo)
		}

		var term SeriesTerm
		var err error
		if term.Sin, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, domain.WrapMalformed(err, "line %d: sine amplitude", lineNo)
		}
		if term.Cos, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, domain.WrapMalformed(err, "line %d: cosine amplitude", lineNo)
		}
		for i := range term.N {
			if term.N[i], err = strconv.Atoi(fields[3+i]); err != nil {
				return nil, domain.WrapMalformed(err, "line %d: multiplier %d", lineNo, i+1)
			}
		}
		table.Terms[power] = append(table.Terms[power], term)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read series table: %w", err)
	}
	if table.Len() == 0 {
		return nil, domain.MalformedInput("series table contains no terms")
	}
	return table, nil
}

// FullSeries evaluates the CIP from the complete IERS 2010 tables.
type FullSeries struct {
	X, Y, S *SeriesTable
}

// NewFullSeries checks that all three tables are present.
func NewFullSeries(x, y, s *SeriesTable) (*FullSeries, error) {
	if x == nil || y == nil || s == nil {
		return nil, domain.MalformedInput("full precession-nutation needs the X, Y and s tables")
	}
	return &FullSeries{X: x, Y: y, S: s}, nil
}

// CIP implements PrecessionNutation.
func (f *FullSeries) CIP(timeTT timescale.Time) (float64, float64, float64, error) {
	if err := checkAvailable(timeTT); err != nil {
		return 0, 0, 0, err
	}
	t := timescale.JulianCenturies(timeTT)
	args := FundamentalArguments(t)
	const unit = 1e-6 * domain.ArcsecToRad

	polyX := -16617 + t*(2004191898+t*(-429782.9+t*(-198618.34+t*(7.578+t*5.9285))))
	polyY := -6951 + t*(-25896+t*(-22407274.7+t*(1900.59+t*(1112.526+t*0.1358))))
	polyS := 94 + t*(3808.65+t*(-122.68+t*(-72574.11+t*(27.98+t*15.62))))

	x := (polyX + f.X.Evaluate(t, args)) * unit
	y := (polyY + f.Y.Evaluate(t, args)) * unit
	s := (polyS+f.S.Evaluate(t, args))*unit - x*y/2
	return x, y, s, nil
}
