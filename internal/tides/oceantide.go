package tides

import (
	"math"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/timescale"
)

// DoodsonHarmonicOptions configures a harmonic tide model.
type DoodsonHarmonicOptions struct {
	// File holds the coefficients (CSV or NetCDF).
	File string `yaml:"file"`
	// Constituents restricts the model to the listed names or Doodson
	// numbers; empty uses all.
	Constituents     []string `yaml:"constituents"`
	NodalCorrections bool     `yaml:"nodalCorrections"`
	MaxDegree        int      `yaml:"maxDegree"`
	MinDegree        int      `yaml:"minDegree"`
}

// HarmonicConstituent holds the potential coefficients of one frequency.
// The potential is Cos·cos θ + Sin·sin θ with θ the Doodson argument.
type HarmonicConstituent struct {
	Doodson DoodsonNumber
	Cos     *harmonics.Field
	Sin     *harmonics.Field
}

// HarmonicModel is a set of constituents with common GM and R, e.g. an
// ocean tide model.
type HarmonicModel struct {
	GM, R        float64
	Constituents []HarmonicConstituent
}

// MaxDegree returns the highest degree of any constituent.
func (m *HarmonicModel) MaxDegree() int {
	maxDegree := -1
	for _, c := range m.Constituents {
		maxDegree = max(maxDegree, c.Cos.MaxDegree(), c.Sin.MaxDegree())
	}
	return maxDegree
}

// Validate checks that every constituent uses the model reference values.
func (m *HarmonicModel) Validate() error {
	if m.GM <= 0 || m.R <= 0 {
		return domain.MalformedInput("harmonic model needs positive GM and R, got %g, %g", m.GM, m.R)
	}
	seen := map[DoodsonNumber]bool{}
	for _, c := range m.Constituents {
		if c.Cos == nil || c.Sin == nil {
			return domain.MalformedInput("constituent %s lacks coefficients", c.Doodson.Name())
		}
		if seen[c.Doodson] {
			return domain.MalformedInput("constituent %s listed twice", c.Doodson.Name())
		}
		seen[c.Doodson] = true
	}
	return nil
}

// DoodsonHarmonic sums harmonic constituents driven by Doodson arguments.
type DoodsonHarmonic struct {
	model     *HarmonicModel
	nodal     bool
	maxDegree int
	minDegree int
}

var _ Tide = (*DoodsonHarmonic)(nil)

// NewDoodsonHarmonic selects constituents from model.
func NewDoodsonHarmonic(model *HarmonicModel, opts DoodsonHarmonicOptions) (*DoodsonHarmonic, error) {
	if model == nil {
		return nil, domain.MissingDependency("doodson harmonic tide without coefficients")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	selected := model
	if len(opts.Constituents) > 0 {
		want := map[DoodsonNumber]bool{}
		for _, s := range opts.Constituents {
			d, err := ParseDoodson(s)
			if err != nil {
				return nil, err
			}
			want[d] = true
		}
		selected = &HarmonicModel{GM: model.GM, R: model.R}
		for _, c := range model.Constituents {
			if want[c.Doodson] {
				selected.Constituents = append(selected.Constituents, c)
				delete(want, c.Doodson)
			}
		}
		if len(want) > 0 {
			missing := make([]string, 0, len(want))
			for d := range want {
				missing = append(missing, d.Name())
			}
			return nil, domain.MalformedInput("constituents not in model: %s", strings.Join(missing, ", "))
		}
	}

	maxDegree := opts.MaxDegree
	if maxDegree <= 0 {
		maxDegree = selected.MaxDegree()
	}
	return &DoodsonHarmonic{model: selected, nodal: opts.NodalCorrections, maxDegree: maxDegree, minDegree: opts.MinDegree}, nil
}

// Name implements Tide.
func (d *DoodsonHarmonic) Name() string { return string(KindDoodsonHarmonic) }

// Constituents returns the Doodson numbers in use.
func (d *DoodsonHarmonic) Constituents() []DoodsonNumber {
	out := make([]DoodsonNumber, len(d.model.Constituents))
	for i, c := range d.model.Constituents {
		out[i] = c.Doodson
	}
	return out
}

// SphericalHarmonics implements Tide.
func (d *DoodsonHarmonic) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	timeUT1, err := ut1(ep.Time, env)
	if err != nil {
		return nil, err
	}
	beta := DoodsonArguments(ep.Time, timeUT1)
	omega := iers.DelaunayArguments(timescale.GPSToJulianCenturies(ep.Time)).Omega

	field := harmonics.NewField(d.maxDegree, d.model.GM, d.model.R)
	for _, c := range d.model.Constituents {
		theta := c.Doodson.Argument(beta)
		f := 1.0
		if d.nodal {
			var u float64
			f, u = NodalCorrection(c.Doodson, omega)
			theta += u
		}
		sinT, cosT := math.Sincos(theta)
		accumulate(field, c.Cos, f*cosT)
		accumulate(field, c.Sin, f*sinT)
	}
	if d.minDegree > 0 {
		field = field.Truncate(d.maxDegree, d.minDegree)
	}
	return finalize(field, maxDegree, minDegree, gm, r), nil
}

// accumulate adds factor·src to dst up to the degree of dst.
func accumulate(dst, src *harmonics.Field, factor float64) {
	top := min(dst.MaxDegree(), src.MaxDegree())
	for n := 0; n <= top; n++ {
		for m := 0; m <= n; m++ {
			dst.C[n][m] += factor * src.C[n][m]
			dst.S[n][m] += factor * src.S[n][m]
		}
	}
}

// ut1 converts a GPS time with the rotation provider, or approximates UT1
// by UTC without one.
func ut1(timeGPS timescale.Time, env Environment) (timescale.Time, error) {
	timeUTC := timescale.GPSToUTC(timeGPS)
	if env.Rotation == nil {
		return timeUTC, nil
	}
	o, err := env.Rotation.Orientation(timeGPS)
	if err != nil {
		return timescale.Time{}, err
	}
	return timeUTC.Add(o.DeltaUT), nil
}

// Potential implements Tide.
func (d *DoodsonHarmonic) Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	return fieldPotential(d, ep, env, p)
}

// RadialGradient implements Tide.
func (d *DoodsonHarmonic) RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	return fieldRadialGradient(d, ep, env, p)
}

// Gravity implements Tide.
func (d *DoodsonHarmonic) Gravity(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	return fieldGravity(d, ep, env, p)
}

// GravityGradient implements Tide.
func (d *DoodsonHarmonic) GravityGradient(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	return fieldGravityGradient(d, ep, env, p)
}

// Deformation implements Tide.
func (d *DoodsonHarmonic) Deformation(ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	return fieldDeformation(d, ep, env, p, gravity, hn, ln)
}

// DeformationBatch implements Tide.
func (d *DoodsonHarmonic) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	return fieldDeformationBatch(d, eps, env, points, gravity, hn, ln, disp)
}
