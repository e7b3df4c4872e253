package tides

import (
	"math"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// OceanPoleOptions configures the ocean pole tide.
type OceanPoleOptions struct {
	// File holds self-consistent equilibrium coefficients
	// (n m A_R B_R A_I B_I). Without it the degree 2 closed form is used.
	File      string `yaml:"file"`
	MeanPole  string `yaml:"meanPole"`
	MaxDegree int    `yaml:"maxDegree"`
	// LoadLoveNumbers k'n starting at degree 2; defaults cover degrees 2..6.
	LoadLoveNumbers []float64 `yaml:"loadLoveNumbers"`
}

// OceanPoleModel holds the real (A_R, B_R) and imaginary (A_I, B_I) parts of
// the ocean pole tide coefficients as the C and S arrays of two fields.
type OceanPoleModel struct {
	Real, Imag *harmonics.Field
}

// MaxDegree returns the highest degree of the model.
func (m *OceanPoleModel) MaxDegree() int {
	return min(m.Real.MaxDegree(), m.Imag.MaxDegree())
}

var defaultLoadLoveNumbers = []float64{-0.3075, -0.195, -0.132, -0.1032, -0.0892}

// Ocean pole tide constants (IERS 2010, 6.5).
const (
	oceanPoleOmega   = 7.292115e-5
	oceanPoleA       = 6378136.6
	oceanPoleGM      = 3.986004418e14
	oceanPoleGravity = 9.7803278
	seawaterDensity  = 1025.0
	gamma2Real       = 0.6870
	gamma2Imag       = 0.0036
)

// OceanPole is the loading of the ocean pole tide (IERS 2010, 6.5).
type OceanPole struct {
	meanPole  MeanPole
	model     *OceanPoleModel
	maxDegree int
	rn        []float64
}

var _ Tide = (*OceanPole)(nil)

// NewOceanPole creates the component. A nil model selects the degree 2
// closed form.
func NewOceanPole(model *OceanPoleModel, opts OceanPoleOptions) (*OceanPole, error) {
	mp, err := ParseMeanPole(opts.MeanPole)
	if err != nil {
		return nil, err
	}
	op := &OceanPole{meanPole: mp, model: model, maxDegree: 2}
	if model == nil {
		return op, nil
	}
	if model.Real == nil || model.Imag == nil || model.MaxDegree() < 2 {
		return nil, domain.MalformedInput("ocean pole tide coefficients must reach degree 2")
	}
	op.maxDegree = model.MaxDegree()
	if opts.MaxDegree > 0 {
		op.maxDegree = min(op.maxDegree, opts.MaxDegree)
	}

	love := opts.LoadLoveNumbers
	if len(love) == 0 {
		love = defaultLoadLoveNumbers
	}
	factor := oceanPoleOmega * oceanPoleOmega * math.Pow(oceanPoleA, 4) / oceanPoleGM *
		4 * math.Pi * domain.GravitationalConstant * seawaterDensity / oceanPoleGravity
	op.rn = make([]float64, op.maxDegree+1)
	for n := 2; n <= op.maxDegree; n++ {
		op.rn[n] = factor * (1 + loadLove(love, n)) / float64(2*n+1)
	}
	return op, nil
}

// loadLove returns k'n, continuing beyond the table with k'n ∝ 1/n.
func loadLove(table []float64, n int) float64 {
	last := len(table) + 1
	if n <= last {
		return table[n-2]
	}
	return table[len(table)-1] * float64(last) / float64(n)
}

// Name implements Tide.
func (p *OceanPole) Name() string { return string(KindOceanPole) }

// SphericalHarmonics implements Tide.
func (p *OceanPole) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	o, err := env.orientation(ep.Time)
	if err != nil {
		return nil, err
	}
	m1, m2 := wobble(p.meanPole, ep.Time, o.Xp, o.Yp)

	if p.model == nil {
		f := harmonics.NewField(2, domain.DefaultGM, domain.DefaultR)
		f.C[2][1] = -2.1778e-10 * (m1 - 0.01724*m2)
		f.S[2][1] = -1.7232e-10 * (m2 - 0.03365*m1)
		return finalize(f, maxDegree, minDegree, gm, r), nil
	}

	m1 *= domain.ArcsecToRad
	m2 *= domain.ArcsecToRad
	inPhase := m1*gamma2Real + m2*gamma2Imag
	quadrature := m2*gamma2Real - m1*gamma2Imag

	f := harmonics.NewField(p.maxDegree, oceanPoleGM, oceanPoleA)
	for n := 2; n <= p.maxDegree; n++ {
		for m := 0; m <= n; m++ {
			f.C[n][m] = p.rn[n] * (p.model.Real.C[n][m]*inPhase + p.model.Imag.C[n][m]*quadrature)
			f.S[n][m] = p.rn[n] * (p.model.Real.S[n][m]*inPhase + p.model.Imag.S[n][m]*quadrature)
		}
	}
	return finalize(f, maxDegree, minDegree, gm, r), nil
}

// Potential implements Tide.
func (p *OceanPole) Potential(ep Epoch, env Environment, x geom.Vector3) (float64, error) {
	return fieldPotential(p, ep, env, x)
}

// RadialGradient implements Tide.
func (p *OceanPole) RadialGradient(ep Epoch, env Environment, x geom.Vector3) (float64, error) {
	return fieldRadialGradient(p, ep, env, x)
}

// Gravity implements Tide.
func (p *OceanPole) Gravity(ep Epoch, env Environment, x geom.Vector3) (geom.Vector3, error) {
	return fieldGravity(p, ep, env, x)
}

// GravityGradient implements Tide.
func (p *OceanPole) GravityGradient(ep Epoch, env Environment, x geom.Vector3) (geom.Tensor3, error) {
	return fieldGravityGradient(p, ep, env, x)
}

// Deformation implements Tide.
func (p *OceanPole) Deformation(ep Epoch, env Environment, x geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	return fieldDeformation(p, ep, env, x, gravity, hn, ln)
}

// DeformationBatch implements Tide.
func (p *OceanPole) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return fieldDeformationBatch(p, eps, env, points, gravity, hn, ln, disp)
}
