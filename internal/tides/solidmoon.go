package tides

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// SolidMoonOptions configures the solid Moon tide.
type SolidMoonOptions struct {
	K2 float64 `yaml:"k2"`
	GM float64 `yaml:"gm"`
	R  float64 `yaml:"r"`
}

// Default lunar parameters.
const (
	DefaultMoonK2 = 0.024059
	DefaultMoonR  = 1738000.0
)

// SolidMoon is the degree 2 deformation of the Moon caused by the Earth and
// the Sun. The field is centred on the Moon with axes parallel to the
// celestial frame; lunar libration is not modelled.
type SolidMoon struct {
	k2, gm, r float64
}

var _ Tide = (*SolidMoon)(nil)

// NewSolidMoon applies defaults to zero options.
func NewSolidMoon(opts SolidMoonOptions) (*SolidMoon, error) {
	s := &SolidMoon{k2: opts.K2, gm: opts.GM, r: opts.R}
	if s.k2 == 0 {
		s.k2 = DefaultMoonK2
	}
	if s.gm == 0 {
		s.gm = ephemeris.GMMoon
	}
	if s.r == 0 {
		s.r = DefaultMoonR
	}
	if s.gm < 0 || s.r < 0 {
		return nil, domain.MalformedInput("solid moon tide needs positive GM and R")
	}
	return s, nil
}

// Name implements Tide.
func (s *SolidMoon) Name() string { return string(KindSolidMoon) }

// SphericalHarmonics implements Tide.
func (s *SolidMoon) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	if env.Ephemeris == nil {
		return nil, domain.MissingDependency("no ephemeris for the solid moon tide")
	}
	moon, err := env.Ephemeris.Position(ephemeris.Moon, ep.Time)
	if err != nil {
		return nil, err
	}
	sun, err := env.Ephemeris.Position(ephemeris.Sun, ep.Time)
	if err != nil {
		return nil, err
	}

	f := harmonics.NewField(2, s.gm, s.r)
	bodies := []bodyState{
		{gm: domain.DefaultGM, pos: moon.Scale(-1)},
		{gm: env.Ephemeris.GM(ephemeris.Sun), pos: sun.Sub(moon)},
	}
	for _, b := range bodies {
		cnm, snm := harmonics.CnmSnm(b.pos.Scale(1/s.r), 2)
		w := s.k2 * b.gm / s.gm / 5
		for m := 0; m <= 2; m++ {
			f.C[2][m] += w * cnm[2][m]
			f.S[2][m] += w * snm[2][m]
		}
	}
	return finalize(f, maxDegree, minDegree, gm, r), nil
}

// Potential implements Tide.
func (s *SolidMoon) Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	return fieldPotential(s, ep, env, p)
}

// RadialGradient implements Tide.
func (s *SolidMoon) RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	return fieldRadialGradient(s, ep, env, p)
}

// Gravity implements Tide.
func (s *SolidMoon) Gravity(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	return fieldGravity(s, ep, env, p)
}

// GravityGradient implements Tide.
func (s *SolidMoon) GravityGradient(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	return fieldGravityGradient(s, ep, env, p)
}

// Deformation implements Tide.
func (s *SolidMoon) Deformation(ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	return fieldDeformation(s, ep, env, p, gravity, hn, ln)
}

// DeformationBatch implements Tide.
func (s *SolidMoon) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return fieldDeformationBatch(s, eps, env, points, gravity, hn, ln, disp)
}
