package tides

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

func mustAstronomical(t *testing.T, maxDegree int) *Astronomical {
	t.Helper()
	a, err := NewAstronomical(AstronomicalOptions{MaxDegree: maxDegree})
	require.NoError(t, err)
	return a
}

func mustPole(t *testing.T) *Pole {
	t.Helper()
	p, err := NewPole(PoleOptions{})
	require.NoError(t, err)
	return p
}

func TestAstronomical_FieldMatchesDirectPotential(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000.3)
	a := mustAstronomical(t, 8)

	field, err := a.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, field.MaxDegree())

	for _, dir := range []geom.Vector3{{X: 1}, {Y: 1}, {X: 1, Y: -1, Z: 1}} {
		p := dir.Normalize().Scale(domain.DefaultR)
		direct, err := a.Potential(ep, env, p)
		require.NoError(t, err)
		assert.InDelta(t, direct, field.Potential(p), math.Max(math.Abs(direct)*1e-6, 1e-5))
	}
}

func TestAstronomical_GravityMatchesNumericalGradient(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000.3)
	a := mustAstronomical(t, 0)
	p := surfacePoints()[0]

	g, err := a.Gravity(ep, env, p)
	require.NoError(t, err)

	const h = 1000.0
	for i, axis := range []geom.Vector3{{X: 1}, {Y: 1}, {Z: 1}} {
		vp, err := a.Potential(ep, env, p.Add(axis.Scale(h)))
		require.NoError(t, err)
		vm, err := a.Potential(ep, env, p.Sub(axis.Scale(h)))
		require.NoError(t, err)
		assert.InDelta(t, (vp-vm)/(2*h), g.Slice()[i], 1e-9, "axis %d", i)
	}

	T, err := a.GravityGradient(ep, env, p)
	require.NoError(t, err)
	assert.InDelta(t, 0, T.Trace(), 1e-20)
}

func TestAstronomical_MissingEphemeris(t *testing.T) {
	a := mustAstronomical(t, 0)
	_, err := a.Potential(testEpoch(59000), Environment{}, surfacePoints()[0])
	assert.True(t, errors.Is(err, domain.ErrMissingDependency))

	_, err = NewAstronomical(AstronomicalOptions{Bodies: []string{"vulcan"}})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestTides_Linearity(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000.7)
	p := surfacePoints()[1]

	a := mustAstronomical(t, 0)
	b := mustPole(t)
	both := NewTides(a, b)

	va, err := a.Potential(ep, env, p)
	require.NoError(t, err)
	vb, err := b.Potential(ep, env, p)
	require.NoError(t, err)
	v, err := both.Potential(ep, env, p)
	require.NoError(t, err)
	assert.InDelta(t, va+vb, v, 1e-12)

	ra, _ := a.RadialGradient(ep, env, p)
	rb, _ := b.RadialGradient(ep, env, p)
	r, err := both.RadialGradient(ep, env, p)
	require.NoError(t, err)
	assert.InDelta(t, ra+rb, r, 1e-18)

	fa, err := a.SphericalHarmonics(ep, env, 4, 0, 0, 0)
	require.NoError(t, err)
	fb, err := b.SphericalHarmonics(ep, env, 4, 0, 0, 0)
	require.NoError(t, err)
	f, err := both.SphericalHarmonics(ep, env, 4, 0, 0, 0)
	require.NoError(t, err)
	sum := fa.Add(fb)
	require.Equal(t, sum.MaxDegree(), f.MaxDegree())
	for n := 0; n <= f.MaxDegree(); n++ {
		for m := 0; m <= n; m++ {
			assert.InDelta(t, sum.C[n][m], f.C[n][m], 1e-20)
			assert.InDelta(t, sum.S[n][m], f.S[n][m], 1e-20)
		}
	}

	// Duplicates add up.
	twice := NewTides(b, b)
	v2, err := twice.Potential(ep, env, p)
	require.NoError(t, err)
	assert.InDelta(t, 2*vb, v2, 1e-12)
}

func TestTides_Empty(t *testing.T) {
	empty := NewTides()
	env := testEnv()
	ep := testEpoch(59000)
	p := surfacePoints()[0]

	v, err := empty.Potential(ep, env, p)
	require.NoError(t, err)
	assert.Zero(t, v)

	g, err := empty.Acceleration(ep, env, p)
	require.NoError(t, err)
	assert.Equal(t, geom.Vector3{}, g)

	T, err := empty.GradientTensor(ep, env, p)
	require.NoError(t, err)
	assert.Equal(t, geom.Tensor3{}, T)

	f, err := empty.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
	assert.Empty(t, empty.Components())
}

func TestTides_CentrifugalPlusPole(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59100.2)
	p := surfacePoints()[2]
	pole := mustPole(t)
	agg := NewTides(Centrifugal{}, pole)

	gc, err := Centrifugal{}.Gravity(ep, env, p)
	require.NoError(t, err)
	gp, err := pole.Gravity(ep, env, p)
	require.NoError(t, err)
	g, err := agg.Acceleration(ep, env, p)
	require.NoError(t, err)

	want := gc.Add(gp)
	assert.InDelta(t, want.X, g.X, 1e-15)
	assert.InDelta(t, want.Y, g.Y, 1e-15)
	assert.InDelta(t, want.Z, g.Z, 1e-15)
}

func TestTides_DeformationBatchMatchesSingle(t *testing.T) {
	env := testEnv()
	points := surfacePoints()
	gravity := make([]float64, len(points))
	for k, p := range points {
		gravity[k] = geom.NormalGravity(p)
	}
	hn, ln := loveNumbers(4)
	eps := []Epoch{testEpoch(59000), testEpoch(59000.25), testEpoch(59000.5)}

	ocean, err := NewDoodsonHarmonic(m2Model(), DoodsonHarmonicOptions{})
	require.NoError(t, err)
	agg := NewTides(mustAstronomical(t, 3), NewEarth(EarthOptions{}), mustPole(t), Centrifugal{}, ocean)

	disp := NewDisplacements(len(points), len(eps))
	require.NoError(t, agg.DeformationBatch(eps, env, points, gravity, hn, ln, disp))

	for i, ep := range eps {
		for k, p := range points {
			single, err := agg.Deformation(ep, env, p, gravity[k], hn, ln)
			require.NoError(t, err)
			assert.InDelta(t, single.X, disp[k][i].X, 1e-9)
			assert.InDelta(t, single.Y, disp[k][i].Y, 1e-9)
			assert.InDelta(t, single.Z, disp[k][i].Z, 1e-9)
		}
	}
}

// epochField serves an empty field before switchMJD and a fixed degree-2
// field from then on.
type epochField struct {
	switchMJD float64
	field     *harmonics.Field
}

func (e epochField) SphericalHarmonics(ep Epoch, _ Environment, _, _ int, _, _ float64) (*harmonics.Field, error) {
	if ep.Time.MJD() < e.switchMJD {
		return &harmonics.Field{}, nil
	}
	return e.field, nil
}

func TestFieldDeformationBatch_EmptyFirstEpoch(t *testing.T) {
	f := harmonics.NewField(2, domain.DefaultGM, domain.DefaultR)
	f.C[2][0] = 1e-8
	f.C[2][2] = 3e-9
	src := epochField{switchMJD: 59000.5, field: f}
	points := surfacePoints()
	gravity := []float64{9.81, 9.80, 9.79}
	hn, ln := loveNumbers(2)
	eps := []Epoch{testEpoch(59000), testEpoch(59000.5), testEpoch(59001)}

	disp := NewDisplacements(len(points), len(eps))
	require.NoError(t, fieldDeformationBatch(src, eps, Environment{}, points, gravity, hn, ln, disp))

	for k, p := range points {
		assert.Equal(t, geom.Vector3{}, disp[k][0])
		want, err := f.Deformation(p, gravity[k], hn, ln)
		require.NoError(t, err)
		for i := 1; i < len(eps); i++ {
			assert.InDelta(t, want.X, disp[k][i].X, 1e-12)
			assert.InDelta(t, want.Y, disp[k][i].Y, 1e-12)
			assert.InDelta(t, want.Z, disp[k][i].Z, 1e-12)
		}
		assert.NotEqual(t, geom.Vector3{}, disp[k][1])
	}
}

func TestTides_DeformationBatchBufferShape(t *testing.T) {
	agg := NewTides(mustPole(t))
	points := surfacePoints()
	hn, ln := loveNumbers(2)
	err := agg.DeformationBatch([]Epoch{testEpoch(59000)}, testEnv(), points, []float64{9.8, 9.8, 9.8}, hn, ln,
		NewDisplacements(1, 1))
	assert.Error(t, err)
}

func TestTides_ErrorNamesComponent(t *testing.T) {
	agg := NewTides(Centrifugal{})
	_, err := agg.Potential(testEpoch(59000), Environment{}, surfacePoints()[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingDependency))
	assert.Contains(t, err.Error(), "centrifugal")
}

func TestCentrifugal_FieldOnSphere(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000)
	f, err := Centrifugal{}.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)

	for _, dir := range []geom.Vector3{{X: 1}, {Z: 1}, {X: 1, Y: 1, Z: 1}} {
		p := dir.Normalize().Scale(domain.DefaultR)
		v, err := Centrifugal{}.Potential(ep, env, p)
		require.NoError(t, err)
		assert.InDelta(t, v, f.Potential(p), 1e-4)
	}

	T, err := Centrifugal{}.GravityGradient(ep, env, surfacePoints()[0])
	require.NoError(t, err)
	w := domain.EarthRotationRate
	assert.InDelta(t, 2*w*w, T.Trace(), 1e-15)
}

func TestEarth_LoveNumberScaling(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000.4)
	a := mustAstronomical(t, 3)
	astro, err := a.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)

	earth := NewEarth(EarthOptions{})
	f, err := earth.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, f.MaxDegree())

	assert.InDelta(t, 0.30190*astro.C[2][0], f.C[2][0], 1e-20)
	assert.InDelta(t, 0.29830*astro.C[2][1]-0.00144*astro.S[2][1], f.C[2][1], 1e-20)
	assert.InDelta(t, 0.093*astro.S[3][2], f.S[3][2], 1e-20)
	assert.InDelta(t, -0.00089*astro.C[2][0], f.C[4][0], 1e-22)

	zeroTide := NewEarth(EarthOptions{RemovePermanentTide: true})
	z, err := zeroTide.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, f.C[2][0]-permanentC20, z.C[2][0], 1e-20)
}

func TestEarth_DisplacementUnderMoon(t *testing.T) {
	moon := geom.Vector3{Z: 384400e3}
	env := Environment{Ephemeris: fixedEphemeris{
		ephemeris.Moon: moon,
		ephemeris.Sun:  geom.Vector3{X: domain.AstronomicalUnit},
	}}
	ep := testEpoch(59000)
	pole := geom.Vector3{Z: domain.DefaultR}

	d, err := NewEarth(EarthOptions{}).Deformation(ep, env, pole, 0, nil, nil)
	require.NoError(t, err)
	// About 0.22 m uplift below the Moon, less 0.05 m from the Sun at 90°.
	assert.InDelta(t, 0.169, d.Z, 0.005)
	assert.InDelta(t, 0, d.X, 1e-6)
	assert.InDelta(t, 0, d.Y, 1e-9)
}

func TestPole_Coefficients(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000)
	f, err := mustPole(t).SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)

	o, _ := env.Rotation.Orientation(ep.Time)
	m1, m2 := wobble(SecularPole{}, ep.Time, o.Xp, o.Yp)
	assert.InDelta(t, -1.333e-9*(m1+0.0115*m2), f.C[2][1], 1e-22)
	assert.InDelta(t, -1.333e-9*(m2-0.0115*m1), f.S[2][1], 1e-22)
	assert.Zero(t, f.C[2][0])
}

func TestOceanPole_ClosedFormAndModel(t *testing.T) {
	env := testEnv()
	ep := testEpoch(59000)
	o, _ := env.Rotation.Orientation(ep.Time)
	m1, m2 := wobble(SecularPole{}, ep.Time, o.Xp, o.Yp)

	closed, err := NewOceanPole(nil, OceanPoleOptions{})
	require.NoError(t, err)
	f, err := closed.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, -2.1778e-10*(m1-0.01724*m2), f.C[2][1], 1e-22)
	assert.InDelta(t, -1.7232e-10*(m2-0.03365*m1), f.S[2][1], 1e-22)

	model := &OceanPoleModel{Real: harmonics.NewField(3, 1, 1), Imag: harmonics.NewField(3, 1, 1)}
	model.Real.C[2][1] = 1
	full, err := NewOceanPole(model, OceanPoleOptions{})
	require.NoError(t, err)
	g, err := full.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, g.MaxDegree())

	inPhase := (m1*gamma2Real + m2*gamma2Imag) * domain.ArcsecToRad
	assert.InDelta(t, full.rn[2]*inPhase, g.C[2][1], 1e-22)
	assert.Zero(t, g.C[3][1])

	_, err = NewOceanPole(&OceanPoleModel{Real: harmonics.NewField(1, 1, 1), Imag: harmonics.NewField(1, 1, 1)}, OceanPoleOptions{})
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

func TestLoadLove(t *testing.T) {
	assert.Equal(t, -0.3075, loadLove(defaultLoadLoveNumbers, 2))
	assert.Equal(t, -0.0892, loadLove(defaultLoadLoveNumbers, 6))
	assert.InDelta(t, -0.0892*6/12, loadLove(defaultLoadLoveNumbers, 12), 1e-15)
}

func TestSolidMoon_Field(t *testing.T) {
	s, err := NewSolidMoon(SolidMoonOptions{})
	require.NoError(t, err)
	f, err := s.SphericalHarmonics(testEpoch(59000), testEnv(), NaturalDegree, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, ephemeris.GMMoon, f.GM)
	assert.Equal(t, DefaultMoonR, f.R)
	assert.NotZero(t, f.C[2][0])
	assert.Zero(t, f.C[0][0])
}

func TestMeanPole(t *testing.T) {
	mp, err := ParseMeanPole("iers2010")
	require.NoError(t, err)
	x, y := mp.Position(testEpoch(51544.5).Time)
	assert.InDelta(t, 55.974, x, 1e-9)
	assert.InDelta(t, 346.346, y, 1e-9)

	x, y = SecularPole{}.Position(testEpoch(51544.5).Time)
	assert.InDelta(t, 55.0, x, 1e-9)
	assert.InDelta(t, 320.5, y, 1e-9)

	_, err = ParseMeanPole("cubic")
	assert.Error(t, err)
}

func TestTides_Select(t *testing.T) {
	earth := NewEarth(EarthOptions{})
	pole, err := NewPole(PoleOptions{})
	require.NoError(t, err)
	agg := NewTides(earth, Centrifugal{}, pole)

	sub, err := agg.Select("poleTide2010", "earthTide")
	require.NoError(t, err)
	assert.Equal(t, []string{"earthTide", "poleTide"}, sub.Components())

	all, err := agg.Select()
	require.NoError(t, err)
	assert.Equal(t, 3, all.Len())

	_, err = agg.Select("solidMoonTide")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
	_, err = agg.Select("bogus")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}
