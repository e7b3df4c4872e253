// Package ephemeris supplies positions of the tide generating bodies.
package ephemeris

import (
	"fmt"
	"math"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/timescale"
)

// Body identifies a celestial body.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
)

var bodyNames = map[Body]string{
	Sun:     "sun",
	Moon:    "moon",
	Mercury: "mercury",
	Venus:   "venus",
	Mars:    "mars",
	Jupiter: "jupiter",
	Saturn:  "saturn",
}

func (b Body) String() string {
	if name, ok := bodyNames[b]; ok {
		return name
	}
	return fmt.Sprintf("body(%d)", int(b))
}

// ParseBody maps a lower-case body name to its identifier.
func ParseBody(name string) (Body, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range bodyNames {
		if n == name {
			return b, nil
		}
	}
	return 0, domain.MalformedInput("unknown body %q", name)
}

// Gravitational parameters (m^3/s^2).
const (
	GMSun     = 1.32712442099e20
	GMMoon    = 4.9028001e12
	GMMercury = 2.2032e13
	GMVenus   = 3.24858592e14
	GMMars    = 4.282837e13
	GMJupiter = 1.26712764e17
	GMSaturn  = 3.7940585e16
)

// GM returns the gravitational parameter of a body.
func GM(b Body) float64 {
	switch b {
	case Sun:
		return GMSun
	case Moon:
		return GMMoon
	case Mercury:
		return GMMercury
	case Venus:
		return GMVenus
	case Mars:
		return GMMars
	case Jupiter:
		return GMJupiter
	case Saturn:
		return GMSaturn
	}
	return 0
}

// Provider returns geocentric body positions in the celestial frame (m).
type Provider interface {
	Position(body Body, timeGPS timescale.Time) (geom.Vector3, error)
	GM(body Body) float64
}

// Analytic is a low-precision Sun and Moon ephemeris. Positions are accurate
// to about 0.01° for the Sun and a few arcminutes for the Moon, which keeps
// tidal potentials at the 1e-3 relative level.
type Analytic struct{}

// GM implements Provider.
func (Analytic) GM(body Body) float64 { return GM(body) }

// Position implements Provider.
func (a Analytic) Position(body Body, timeGPS timescale.Time) (geom.Vector3, error) {
	timeTT := timescale.GPSToTT(timeGPS)
	switch body {
	case Sun:
		return sunPosition(timeTT), nil
	case Moon:
		return moonPosition(timeTT), nil
	}
	return geom.Vector3{}, domain.MissingDependency("analytic ephemeris has no model for %s", body)
}

// sunPosition uses the Astronomical Almanac low-precision formulae, rotated
// from ecliptic to equatorial coordinates.
func sunPosition(timeTT timescale.Time) geom.Vector3 {
	d := timeTT.MJD() - timescale.MJDJ2000
	g := domain.Deg2Rad(357.528 + 0.9856003*d)
	lambda := domain.Deg2Rad(280.460 + 0.9856474*d + 1.915*math.Sin(g) + 0.020*math.Sin(2*g))
	eps := domain.Deg2Rad(23.439 - 0.0000004*d)
	r := domain.AstronomicalUnit * (1.00014 - 0.01671*math.Cos(g) - 0.00014*math.Cos(2*g))

	sl, cl := math.Sincos(lambda)
	se, ce := math.Sincos(eps)
	return geom.Vector3{X: r * cl, Y: r * sl * ce, Z: r * sl * se}
}

// moonPosition evaluates the leading perturbation terms of the lunar
// longitude, latitude and distance.
func moonPosition(timeTT timescale.Time) geom.Vector3 {
	t := timescale.JulianCenturies(timeTT)

	l0 := domain.Deg2Rad(218.31617 + 481267.88088*t - 1.3972*t)
	l := domain.Deg2Rad(134.96292 + 477198.86753*t)
	lp := domain.Deg2Rad(357.52543 + 35999.04944*t)
	f := domain.Deg2Rad(93.27283 + 483202.01873*t)
	d := domain.Deg2Rad(297.85027 + 445267.11135*t)

	lon := l0 + domain.Arcsec2Rad(22640*math.Sin(l)+769*math.Sin(2*l)-
		4586*math.Sin(l-2*d)+2370*math.Sin(2*d)-668*math.Sin(lp)-
		412*math.Sin(2*f)-212*math.Sin(2*l-2*d)-206*math.Sin(l+lp-2*d)+
		192*math.Sin(l+2*d)-165*math.Sin(lp-2*d)+148*math.Sin(l-lp)-
		125*math.Sin(d)-110*math.Sin(l+lp)-55*math.Sin(2*f-2*d))
	lat := domain.Arcsec2Rad(18520*math.Sin(f+lon-l0+domain.Arcsec2Rad(412*math.Sin(2*f)+541*math.Sin(lp))) -
		526*math.Sin(f-2*d))
	r := 1e3 * (385000 - 20905*math.Cos(l) - 3699*math.Cos(2*d-l) -
		2956*math.Cos(2*d) - 570*math.Cos(2*l) + 246*math.Cos(2*l-2*d) -
		205*math.Cos(lp-2*d) - 171*math.Cos(l+2*d) - 152*math.Cos(l+lp-2*d))

	ecliptic := geom.Polar(lon, lat, r)
	eps := domain.Deg2Rad(23.43929111)
	return geom.RotX(-eps).Rotate(ecliptic)
}
