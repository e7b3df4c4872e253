package geom

import (
	"math"

	"go.ngs.io/geotides/internal/domain"
)

// Ellipsoid is a rotational ellipsoid given by semi-major axis and inverse flattening.
type Ellipsoid struct {
	A       float64
	InvFlat float64
}

// GRS80 is the reference ellipsoid for station coordinates.
var GRS80 = Ellipsoid{A: domain.GRS80A, InvFlat: domain.GRS80InvFlat}

func (e Ellipsoid) b() float64   { return e.A * (1 - 1/e.InvFlat) }
func (e Ellipsoid) e2() float64  { f := 1 / e.InvFlat; return f * (2 - f) }
func (e Ellipsoid) ep2() float64 { b := e.b(); return (e.A*e.A - b*b) / (b * b) }

// Cartesian converts geodetic longitude, latitude (radians) and height (m).
func (e Ellipsoid) Cartesian(lon, lat, h float64) Vector3 {
	sinB, cosB := math.Sin(lat), math.Cos(lat)
	n := e.A / math.Sqrt(1-e.e2()*sinB*sinB)
	return Vector3{
		(n + h) * cosB * math.Cos(lon),
		(n + h) * cosB * math.Sin(lon),
		(n*(1-e.e2()) + h) * sinB,
	}
}

// Geodetic converts a Cartesian point to longitude, latitude (radians) and height (m).
// Bowring's closed form is refined with two fixed-point iterations.
func (e Ellipsoid) Geodetic(p Vector3) (lon, lat, h float64) {
	lon = math.Atan2(p.Y, p.X)
	rho := math.Hypot(p.X, p.Y)
	b := e.b()
	e2 := e.e2()
	if rho < 1e-9 {
		lat = math.Copysign(math.Pi/2, p.Z)
		return lon, lat, math.Abs(p.Z) - b
	}
	theta := math.Atan2(p.Z*e.A, rho*b)
	st, ct := math.Sin(theta), math.Cos(theta)
	lat = math.Atan2(p.Z+e.ep2()*b*st*st*st, rho-e2*e.A*ct*ct*ct)
	for i := 0; i < 2; i++ {
		sinB := math.Sin(lat)
		n := e.A / math.Sqrt(1-e2*sinB*sinB)
		h = rho/math.Cos(lat) - n
		lat = math.Atan2(p.Z, rho*(1-e2*n/(n+h)))
	}
	sinB := math.Sin(lat)
	n := e.A / math.Sqrt(1-e2*sinB*sinB)
	if math.Abs(lat) < math.Pi/4 {
		h = rho/math.Cos(lat) - n
	} else {
		h = p.Z/sinB - n*(1-e2)
	}
	return lon, lat, h
}

// NormalGravity returns GRS80 normal gravity (m/s^2) at a point, using the
// Somigliana formula on the ellipsoid and a second-order height reduction.
func NormalGravity(p Vector3) float64 {
	const (
		ga = domain.GRS80EquatorG
		gb = domain.GRS80PoleG
		m  = domain.GRS80MRatio
	)
	e := GRS80
	f := 1 / e.InvFlat
	a := e.A
	b := e.b()

	_, lat, h := e.Geodetic(p)
	cos2 := math.Pow(math.Cos(lat), 2)
	sin2 := math.Pow(math.Sin(lat), 2)
	gamma0 := (a*ga*cos2 + b*gb*sin2) / math.Sqrt(a*a*cos2+b*b*sin2)
	return gamma0 - 2*ga/a*(1+f+m+(-3*f+5*m/2)*sin2)*h + 3*ga/a/a*h*h
}
