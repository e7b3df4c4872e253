package tides

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// AstronomicalOptions configures the direct tide of external bodies.
type AstronomicalOptions struct {
	Bodies    []string `yaml:"bodies"`
	MaxDegree int      `yaml:"maxDegree"`
}

// Astronomical is the direct tidal attraction of the Sun, the Moon and the
// planets, reduced by the acceleration of the Earth's centre.
type Astronomical struct {
	bodies    []ephemeris.Body
	maxDegree int
}

var _ Tide = (*Astronomical)(nil)

// NewAstronomical validates the options. Defaults: sun and moon, degree 3.
func NewAstronomical(opts AstronomicalOptions) (*Astronomical, error) {
	names := opts.Bodies
	if len(names) == 0 {
		names = []string{"sun", "moon"}
	}
	a := &Astronomical{maxDegree: opts.MaxDegree}
	if a.maxDegree == 0 {
		a.maxDegree = 3
	}
	if a.maxDegree < 2 {
		return nil, domain.MalformedInput("astronomical tide needs maxDegree >= 2, got %d", a.maxDegree)
	}
	for _, name := range names {
		b, err := ephemeris.ParseBody(name)
		if err != nil {
			return nil, err
		}
		a.bodies = append(a.bodies, b)
	}
	return a, nil
}

// Name implements Tide.
func (a *Astronomical) Name() string { return string(KindAstronomical) }

type bodyState struct {
	gm  float64
	pos geom.Vector3 // terrestrial frame
}

func (a *Astronomical) states(ep Epoch, env Environment) ([]bodyState, error) {
	out := make([]bodyState, len(a.bodies))
	for i, b := range a.bodies {
		pos, err := env.bodyPosition(ep, b)
		if err != nil {
			return nil, err
		}
		out[i] = bodyState{gm: env.Ephemeris.GM(b), pos: pos}
	}
	return out, nil
}

// SphericalHarmonics implements Tide.
func (a *Astronomical) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	states, err := a.states(ep, env)
	if err != nil {
		return nil, err
	}
	return finalize(tidalField(states, a.maxDegree, 1), maxDegree, minDegree, gm, r), nil
}

// tidalField expands the degree 2 and higher potential of point masses with
// factor k applied to every coefficient.
func tidalField(states []bodyState, maxDegree int, k float64) *harmonics.Field {
	f := harmonics.NewField(maxDegree, domain.DefaultGM, domain.DefaultR)
	for _, s := range states {
		cnm, snm := harmonics.CnmSnm(s.pos.Scale(1/f.R), maxDegree)
		factor := k * s.gm / f.GM
		for n := 2; n <= maxDegree; n++ {
			w := factor / float64(2*n+1)
			for m := 0; m <= n; m++ {
				f.C[n][m] += w * cnm[n][m]
				f.S[n][m] += w * snm[n][m]
			}
		}
	}
	return f
}

// Potential implements Tide with the closed-form expression.
func (a *Astronomical) Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	states, err := a.states(ep, env)
	if err != nil {
		return 0, err
	}
	v := 0.0
	for _, s := range states {
		rho := s.pos.Norm()
		d := s.pos.Sub(p).Norm()
		v += s.gm * (1/d - 1/rho - p.Dot(s.pos)/(rho*rho*rho))
	}
	return v, nil
}

// RadialGradient implements Tide.
func (a *Astronomical) RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	g, err := a.Gravity(ep, env, p)
	if err != nil {
		return 0, err
	}
	return g.Dot(p.Normalize()), nil
}

// Gravity implements Tide.
func (a *Astronomical) Gravity(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	states, err := a.states(ep, env)
	if err != nil {
		return geom.Vector3{}, err
	}
	var g geom.Vector3
	for _, s := range states {
		d := s.pos.Sub(p)
		dn := d.Norm()
		rho := s.pos.Norm()
		g = g.Add(d.Scale(s.gm / (dn * dn * dn))).Sub(s.pos.Scale(s.gm / (rho * rho * rho)))
	}
	return g, nil
}

// GravityGradient implements Tide.
func (a *Astronomical) GravityGradient(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	states, err := a.states(ep, env)
	if err != nil {
		return geom.Tensor3{}, err
	}
	var t geom.Tensor3
	for _, s := range states {
		d := s.pos.Sub(p)
		dn := d.Norm()
		d3 := dn * dn * dn
		t = t.Add(geom.Outer(d).Scale(3 * s.gm / (d3 * dn * dn))).Add(geom.Identity3().Scale(-s.gm / d3))
	}
	return t, nil
}

// Deformation implements Tide.
func (a *Astronomical) Deformation(ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	return fieldDeformation(a, ep, env, p, gravity, hn, ln)
}

// DeformationBatch implements Tide.
func (a *Astronomical) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return fieldDeformationBatch(a, eps, env, points, gravity, hn, ln, disp)
}
