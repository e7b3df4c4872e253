// Package domain holds the physical constants, unit helpers and error kinds
// shared by the geodesy packages.
package domain

import "math"

// Unit conversions.
const (
	DegToRad      = math.Pi / 180.0
	ArcsecToRad   = DegToRad / 3600.0
	SecondsPerDay = 86400.0
)

// Reference values of the Earth model.
const (
	// DefaultGM is the geocentric gravitational constant (m^3/s^2).
	DefaultGM = 3.986004415e14
	// DefaultR is the reference radius of the gravity field (m).
	DefaultR = 6378136.3
	// EarthRotationRate is the nominal angular velocity of the Earth (rad/s).
	EarthRotationRate = 7.29211585531e-5
	// GravitationalConstant is Newton's constant (m^3/(kg s^2)).
	GravitationalConstant = 6.67428e-11
	// AstronomicalUnit in metres.
	AstronomicalUnit = 149597870700.0
)

// GRS80 ellipsoid.
const (
	GRS80A        = 6378137.0
	GRS80InvFlat  = 298.257222101
	GRS80EquatorG = 9.7803267715
	GRS80PoleG    = 9.8321863685
	GRS80MRatio   = 0.00344978600308
)

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Arcsec2Rad converts arc-seconds to radians.
func Arcsec2Rad(as float64) float64 {
	return as * ArcsecToRad
}
