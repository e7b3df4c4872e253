package tides

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// PoleOptions configures the solid Earth pole tide.
type PoleOptions struct {
	MeanPole string `yaml:"meanPole"`
}

// Pole is the solid Earth response to the centrifugal effect of polar
// motion (IERS 2010, 6.4).
type Pole struct {
	meanPole MeanPole
}

var _ Tide = (*Pole)(nil)

// NewPole creates the component.
func NewPole(opts PoleOptions) (*Pole, error) {
	mp, err := ParseMeanPole(opts.MeanPole)
	if err != nil {
		return nil, err
	}
	return &Pole{meanPole: mp}, nil
}

// Name implements Tide.
func (p *Pole) Name() string { return string(KindPole) }

// SphericalHarmonics implements Tide.
func (p *Pole) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	o, err := env.orientation(ep.Time)
	if err != nil {
		return nil, err
	}
	m1, m2 := wobble(p.meanPole, ep.Time, o.Xp, o.Yp)

	f := harmonics.NewField(2, domain.DefaultGM, domain.DefaultR)
	f.C[2][1] = -1.333e-9 * (m1 + 0.0115*m2)
	f.S[2][1] = -1.333e-9 * (m2 - 0.0115*m1)
	return finalize(f, maxDegree, minDegree, gm, r), nil
}

// Potential implements Tide.
func (p *Pole) Potential(ep Epoch, env Environment, x geom.Vector3) (float64, error) {
	return fieldPotential(p, ep, env, x)
}

// RadialGradient implements Tide.
func (p *Pole) RadialGradient(ep Epoch, env Environment, x geom.Vector3) (float64, error) {
	return fieldRadialGradient(p, ep, env, x)
}

// Gravity implements Tide.
func (p *Pole) Gravity(ep Epoch, env Environment, x geom.Vector3) (geom.Vector3, error) {
	return fieldGravity(p, ep, env, x)
}

// GravityGradient implements Tide.
func (p *Pole) GravityGradient(ep Epoch, env Environment, x geom.Vector3) (geom.Tensor3, error) {
	return fieldGravityGradient(p, ep, env, x)
}

// Deformation implements Tide.
func (p *Pole) Deformation(ep Epoch, env Environment, x geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	return fieldDeformation(p, ep, env, x, gravity, hn, ln)
}

// DeformationBatch implements Tide.
func (p *Pole) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return fieldDeformationBatch(p, eps, env, points, gravity, hn, ln, disp)
}
