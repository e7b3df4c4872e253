// Package tides evaluates tidal forces. Each component describes its effect
// as a spherical harmonic field in the terrestrial frame; the aggregator sums
// the components into potential, gravity, gravity gradient and surface
// deformation.
package tides

import (
	"fmt"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
	"go.ngs.io/geotides/internal/timescale"
)

// NaturalDegree requests a component's own maximum degree.
const NaturalDegree = -1

// Epoch is one evaluation time.
type Epoch struct {
	Time timescale.Time // GPS
	// RotEarth rotates celestial into terrestrial coordinates.
	RotEarth geom.Rotation
}

// NewEpoch builds an epoch with the rotation taken from a provider.
func NewEpoch(timeGPS timescale.Time, rotation earthrotation.Provider) (Epoch, error) {
	if rotation == nil {
		return Epoch{Time: timeGPS, RotEarth: geom.Identity()}, nil
	}
	r, err := rotation.CelestialToTerrestrial(timeGPS)
	if err != nil {
		return Epoch{}, err
	}
	return Epoch{Time: timeGPS, RotEarth: r}, nil
}

// Environment carries the external models a component may consult.
type Environment struct {
	Rotation  earthrotation.Provider
	Ephemeris ephemeris.Provider
}

func (env Environment) orientation(timeGPS timescale.Time) (earthrotation.Orientation, error) {
	if env.Rotation == nil {
		return earthrotation.Orientation{}, domain.MissingDependency("no Earth rotation provider")
	}
	return env.Rotation.Orientation(timeGPS)
}

// bodyPosition returns a body position in the terrestrial frame.
func (env Environment) bodyPosition(ep Epoch, body ephemeris.Body) (geom.Vector3, error) {
	if env.Ephemeris == nil {
		return geom.Vector3{}, domain.MissingDependency("no ephemeris for %s", body)
	}
	pos, err := env.Ephemeris.Position(body, ep.Time)
	if err != nil {
		return geom.Vector3{}, err
	}
	return ep.RotEarth.Rotate(pos), nil
}

// Tide is one tidal component.
type Tide interface {
	Name() string
	// SphericalHarmonics returns the tidal potential at ep. A negative
	// maxDegree keeps the component's natural degree; zero gm or r keeps
	// its reference values.
	SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error)
	Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error)
	RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error)
	Gravity(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error)
	GravityGradient(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error)
	Deformation(ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error)
	// DeformationBatch adds the displacement of every point at every epoch
	// to disp[point][epoch].
	DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error
}

// fieldSource is the part of a component the default evaluations build on.
type fieldSource interface {
	SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error)
}

func naturalField(src fieldSource, ep Epoch, env Environment) (*harmonics.Field, error) {
	return src.SphericalHarmonics(ep, env, NaturalDegree, 0, 0, 0)
}

func fieldPotential(src fieldSource, ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	f, err := naturalField(src, ep, env)
	if err != nil {
		return 0, err
	}
	return f.Potential(p), nil
}

func fieldRadialGradient(src fieldSource, ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	f, err := naturalField(src, ep, env)
	if err != nil {
		return 0, err
	}
	return f.RadialGradient(p), nil
}

func fieldGravity(src fieldSource, ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	f, err := naturalField(src, ep, env)
	if err != nil {
		return geom.Vector3{}, err
	}
	return f.Gravity(p), nil
}

func fieldGravityGradient(src fieldSource, ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	f, err := naturalField(src, ep, env)
	if err != nil {
		return geom.Tensor3{}, err
	}
	return f.GravityGradient(p), nil
}

func fieldDeformation(src fieldSource, ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	f, err := naturalField(src, ep, env)
	if err != nil {
		return geom.Vector3{}, err
	}
	return f.Deformation(p, gravity, hn, ln)
}

// fieldDeformationBatch builds one deformation basis from the first
// non-empty field and applies it to the field of every epoch. Epochs with an
// empty field add nothing.
func fieldDeformationBatch(src fieldSource, eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	if len(eps) == 0 || len(points) == 0 {
		return nil
	}
	if err := checkDisplacements(disp, len(points), len(eps)); err != nil {
		return err
	}

	var basis *harmonics.DeformationBasis
	for i, ep := range eps {
		field, err := naturalField(src, ep, env)
		if err != nil {
			return err
		}
		if field.IsEmpty() {
			continue
		}
		if basis == nil {
			basis, err = harmonics.NewDeformationBasis(points, gravity, hn, ln, field.GM, field.R, field.MaxDegree())
			if err != nil {
				return err
			}
		}
		d, err := basis.Apply(field)
		if err != nil {
			return err
		}
		for k := range d {
			disp[k][i] = disp[k][i].Add(d[k])
		}
	}
	return nil
}

// pointwiseDeformationBatch evaluates a single point deformation for every
// point and epoch.
func pointwiseDeformationBatch(t Tide, eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	if len(eps) == 0 || len(points) == 0 {
		return nil
	}
	if err := checkDisplacements(disp, len(points), len(eps)); err != nil {
		return err
	}
	if len(gravity) != len(points) {
		return fmt.Errorf("got %d gravity values for %d points", len(gravity), len(points))
	}
	for i, ep := range eps {
		for k, p := range points {
			d, err := t.Deformation(ep, env, p, gravity[k], hn, ln)
			if err != nil {
				return err
			}
			disp[k][i] = disp[k][i].Add(d)
		}
	}
	return nil
}

func checkDisplacements(disp [][]geom.Vector3, points, epochs int) error {
	if len(disp) != points {
		return fmt.Errorf("displacement buffer has %d rows for %d points", len(disp), points)
	}
	for k, row := range disp {
		if len(row) != epochs {
			return fmt.Errorf("displacement row %d has %d entries for %d epochs", k, len(row), epochs)
		}
	}
	return nil
}

// NewDisplacements allocates a zeroed [point][epoch] buffer.
func NewDisplacements(points, epochs int) [][]geom.Vector3 {
	disp := make([][]geom.Vector3, points)
	for k := range disp {
		disp[k] = make([]geom.Vector3, epochs)
	}
	return disp
}

// finalize converts a component field to the requested degree range and
// reference values.
func finalize(f *harmonics.Field, maxDegree, minDegree int, gm, r float64) *harmonics.Field {
	if gm == 0 {
		gm = f.GM
	}
	if r == 0 {
		r = f.R
	}
	if gm != f.GM || r != f.R {
		f = f.Rescale(gm, r)
	}
	if maxDegree < 0 && minDegree <= 0 {
		return f
	}
	return f.Truncate(maxDegree, minDegree)
}
