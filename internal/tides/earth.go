package tides

import (
	"math"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// EarthOptions configures the solid Earth tide.
type EarthOptions struct {
	// RemovePermanentTide subtracts the time average of C20 so the result
	// can be added to a zero-tide static field.
	RemovePermanentTide bool `yaml:"removePermanentTide"`
}

// Anelastic Love numbers of the frequency independent step (IERS 2010,
// Table 6.3), real and imaginary parts per order.
var (
	k2Real = [3]float64{0.30190, 0.29830, 0.30102}
	k2Imag = [3]float64{0, -0.00144, -0.00130}
	k3     = 0.093
	// k(+) transferring the degree 2 tide into degree 4.
	k4Plus = [3]float64{-0.00089, -0.00080, -0.00057}
)

// Permanent part of C20: A0·H0·k20.
const permanentC20 = 4.4228e-8 * -0.31460 * 0.30190

// Earth is the solid Earth tide caused by the Sun and the Moon.
type Earth struct {
	removePermanent bool
}

var _ Tide = (*Earth)(nil)

// NewEarth creates the component.
func NewEarth(opts EarthOptions) *Earth {
	return &Earth{removePermanent: opts.RemovePermanentTide}
}

// Name implements Tide.
func (e *Earth) Name() string { return string(KindEarth) }

func (e *Earth) states(ep Epoch, env Environment) ([]bodyState, error) {
	out := make([]bodyState, 0, 2)
	for _, b := range []ephemeris.Body{ephemeris.Sun, ephemeris.Moon} {
		pos, err := env.bodyPosition(ep, b)
		if err != nil {
			return nil, err
		}
		out = append(out, bodyState{gm: env.Ephemeris.GM(b), pos: pos})
	}
	return out, nil
}

// SphericalHarmonics implements Tide.
func (e *Earth) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	states, err := e.states(ep, env)
	if err != nil {
		return nil, err
	}
	tide := tidalField(states, 3, 1)

	f := harmonics.NewField(4, tide.GM, tide.R)
	for m := 0; m <= 2; m++ {
		c, s := tide.C[2][m], tide.S[2][m]
		f.C[2][m] = k2Real[m]*c + k2Imag[m]*s
		f.S[2][m] = k2Real[m]*s - k2Imag[m]*c
		f.C[4][m] = k4Plus[m] * c
		f.S[4][m] = k4Plus[m] * s
	}
	for m := 0; m <= 3; m++ {
		f.C[3][m] = k3 * tide.C[3][m]
		f.S[3][m] = k3 * tide.S[3][m]
	}
	if e.removePermanent {
		f.C[2][0] -= permanentC20
	}
	return finalize(f, maxDegree, minDegree, gm, r), nil
}

// Potential implements Tide.
func (e *Earth) Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	return fieldPotential(e, ep, env, p)
}

// RadialGradient implements Tide.
func (e *Earth) RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	return fieldRadialGradient(e, ep, env, p)
}

// Gravity implements Tide.
func (e *Earth) Gravity(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	return fieldGravity(e, ep, env, p)
}

// GravityGradient implements Tide.
func (e *Earth) GravityGradient(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	return fieldGravityGradient(e, ep, env, p)
}

// Deformation implements Tide with the in-phase degree 2 and 3 station
// displacement of the IERS Conventions (7.1.1, step 1) including the
// latitude dependence of h2 and l2. The hn, ln and gravity arguments are
// not used.
func (e *Earth) Deformation(ep Epoch, env Environment, p geom.Vector3, _ float64, _, _ []float64) (geom.Vector3, error) {
	states, err := e.states(ep, env)
	if err != nil {
		return geom.Vector3{}, err
	}
	return solidEarthDisplacement(p, states), nil
}

// DeformationBatch implements Tide.
func (e *Earth) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return pointwiseDeformationBatch(e, eps, env, points, gravity, hn, ln, disp)
}

func solidEarthDisplacement(p geom.Vector3, states []bodyState) geom.Vector3 {
	const (
		h3 = 0.292
		l3 = 0.015
	)
	up := p.Normalize()
	sinLat := up.Z
	p2 := (3*sinLat*sinLat - 1) / 2
	h2 := 0.6078 - 0.0006*p2
	l2 := 0.0847 + 0.0002*p2
	re := domain.DefaultR

	var disp geom.Vector3
	for _, s := range states {
		rho := s.pos.Norm()
		dir := s.pos.Scale(1 / rho)
		c := dir.Dot(up)
		horizontal := dir.Sub(up.Scale(c))

		f2 := s.gm / domain.DefaultGM * math.Pow(re, 4) / (rho * rho * rho)
		disp = disp.Add(up.Scale(f2 * h2 * (1.5*c*c - 0.5))).Add(horizontal.Scale(f2 * 3 * l2 * c))

		f3 := f2 * re / rho
		disp = disp.Add(up.Scale(f3 * h3 * (2.5*c*c*c - 1.5*c))).Add(horizontal.Scale(f3 * l3 * (7.5*c*c - 1.5)))
	}
	return disp
}
