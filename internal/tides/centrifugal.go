package tides

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// Centrifugal is the potential of the current Earth rotation in the
// terrestrial frame, V = ½(|ω|²|r|² - (ω·r)²).
type Centrifugal struct{}

var _ Tide = Centrifugal{}

// Name implements Tide.
func (Centrifugal) Name() string { return string(KindCentrifugal) }

func rotaryAxis(ep Epoch, env Environment) (geom.Vector3, error) {
	if env.Rotation == nil {
		return geom.Vector3{}, domain.MissingDependency("no Earth rotation provider")
	}
	return env.Rotation.RotaryAxis(ep.Time)
}

// SphericalHarmonics implements Tide. The expansion reproduces the
// potential on the sphere of radius R.
func (c Centrifugal) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	w, err := rotaryAxis(ep, env)
	if err != nil {
		return nil, err
	}
	f := harmonics.NewField(2, domain.DefaultGM, domain.DefaultR)
	w2 := w.Dot(w)
	if w2 == 0 {
		return finalize(f, maxDegree, minDegree, gm, r), nil
	}
	scale := w2 * f.R * f.R * f.R / f.GM

	cnm, snm := harmonics.CnmSnm(w.Normalize(), 2)
	f.C[0][0] = scale / 3
	for m := 0; m <= 2; m++ {
		f.C[2][m] = -scale / 15 * cnm[2][m]
		f.S[2][m] = -scale / 15 * snm[2][m]
	}
	return finalize(f, maxDegree, minDegree, gm, r), nil
}

// Potential implements Tide.
func (c Centrifugal) Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	w, err := rotaryAxis(ep, env)
	if err != nil {
		return 0, err
	}
	wr := w.Dot(p)
	return 0.5 * (w.Dot(w)*p.Dot(p) - wr*wr), nil
}

// RadialGradient implements Tide.
func (c Centrifugal) RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	g, err := c.Gravity(ep, env, p)
	if err != nil {
		return 0, err
	}
	return g.Dot(p.Normalize()), nil
}

// Gravity implements Tide.
func (c Centrifugal) Gravity(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	w, err := rotaryAxis(ep, env)
	if err != nil {
		return geom.Vector3{}, err
	}
	return p.Scale(w.Dot(w)).Sub(w.Scale(w.Dot(p))), nil
}

// GravityGradient implements Tide.
func (c Centrifugal) GravityGradient(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	w, err := rotaryAxis(ep, env)
	if err != nil {
		return geom.Tensor3{}, err
	}
	return geom.Identity3().Scale(w.Dot(w)).Add(geom.Outer(w).Scale(-1)), nil
}

// Deformation implements Tide.
func (c Centrifugal) Deformation(ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	return fieldDeformation(c, ep, env, p, gravity, hn, ln)
}

// DeformationBatch implements Tide.
func (c Centrifugal) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return fieldDeformationBatch(c, eps, env, points, gravity, hn, ln, disp)
}
