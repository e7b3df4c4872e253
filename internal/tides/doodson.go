package tides

import (
	"fmt"
	"math"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/timescale"
)

// DoodsonNumber holds the multipliers of the Doodson arguments
// (τ, s, h, p, N', ps).
type DoodsonNumber [6]int

// ParseDoodson reads a Doodson number such as "255.555" or "056.554", or a
// known constituent name such as "M2".
func ParseDoodson(s string) (DoodsonNumber, error) {
	s = strings.TrimSpace(s)
	if c, ok := constituentByName[strings.ToUpper(s)]; ok {
		return c.Doodson, nil
	}
	digits := strings.ReplaceAll(s, ".", "")
	if len(digits) != 6 {
		return DoodsonNumber{}, domain.MalformedInput("invalid Doodson number %q", s)
	}
	var d DoodsonNumber
	for i, r := range digits {
		v, ok := doodsonDigit(r)
		if !ok {
			return DoodsonNumber{}, domain.MalformedInput("invalid Doodson number %q", s)
		}
		if i > 0 {
			v -= 5
		}
		d[i] = v
	}
	return d, nil
}

// Digits above 9 use the letters X (10) and E (11).
func doodsonDigit(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r == 'X' || r == 'x':
		return 10, true
	case r == 'E' || r == 'e':
		return 11, true
	}
	return 0, false
}

func (d DoodsonNumber) String() string {
	digit := func(v int) string {
		switch v {
		case 10:
			return "X"
		case 11:
			return "E"
		}
		return fmt.Sprint(v)
	}
	var b strings.Builder
	for i, v := range d {
		if i == 3 {
			b.WriteByte('.')
		}
		if i > 0 {
			v += 5
		}
		b.WriteString(digit(v))
	}
	return b.String()
}

// Name returns the conventional constituent name or the Doodson number.
func (d DoodsonNumber) Name() string {
	if c, ok := constituentByDoodson[d]; ok {
		return c.Name
	}
	return d.String()
}

// Doodson argument rates in degrees per hour.
var doodsonRates = [6]float64{14.4920521, 0.5490165, 0.0410686, 0.0046418, 0.0022064, 0.0000020}

// Speed returns the angular speed in degrees per hour.
func (d DoodsonNumber) Speed() float64 {
	speed := 0.0
	for i, n := range d {
		speed += float64(n) * doodsonRates[i]
	}
	return speed
}

// Argument returns Σ nᵢβᵢ for Doodson arguments β.
func (d DoodsonNumber) Argument(beta [6]float64) float64 {
	arg := 0.0
	for i, n := range d {
		arg += float64(n) * beta[i]
	}
	return arg
}

// DoodsonArguments returns (τ, s, h, p, N', ps) in radians. The
// fundamental arguments use TT, the sidereal time UT1.
func DoodsonArguments(timeGPS, timeUT1 timescale.Time) [6]float64 {
	d := iers.DelaunayArguments(timescale.GPSToJulianCenturies(timeGPS))
	s := d.F + d.Omega
	return [6]float64{
		iers.GMST(timeUT1) + math.Pi - s,
		s,
		s - d.D,
		s - d.L,
		-d.Omega,
		s - d.D - d.LPrime,
	}
}
