package tides

import (
	"fmt"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
)

// Tides is an ordered collection of components whose effects are summed.
// It is immutable after construction and safe for concurrent use.
type Tides struct {
	components []Tide
}

// NewTides wraps components. Duplicates are allowed and add up.
func NewTides(components ...Tide) *Tides {
	return &Tides{components: append([]Tide(nil), components...)}
}

// Components returns the component names in evaluation order.
func (t *Tides) Components() []string {
	names := make([]string, len(t.components))
	for i, c := range t.components {
		names[i] = c.Name()
	}
	return names
}

// Select returns the components whose name is listed, keeping their order.
// An empty list selects all.
func (t *Tides) Select(names ...string) (*Tides, error) {
	if len(names) == 0 {
		return t, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		kind, _, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		want[string(kind)] = true
	}
	out := &Tides{}
	for _, c := range t.components {
		if want[c.Name()] {
			out.components = append(out.components, c)
		}
	}
	for _, c := range out.components {
		delete(want, c.Name())
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		return nil, domain.MalformedInput("components not configured: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Len returns the number of components.
func (t *Tides) Len() int { return len(t.components) }

// Potential sums the tidal potential (m²/s²).
func (t *Tides) Potential(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	sum := 0.0
	for _, c := range t.components {
		v, err := c.Potential(ep, env, p)
		if err != nil {
			return 0, fmt.Errorf("%s: potential: %w", c.Name(), err)
		}
		sum += v
	}
	return sum, nil
}

// RadialGradient sums dV/dr (m/s²).
func (t *Tides) RadialGradient(ep Epoch, env Environment, p geom.Vector3) (float64, error) {
	sum := 0.0
	for _, c := range t.components {
		v, err := c.RadialGradient(ep, env, p)
		if err != nil {
			return 0, fmt.Errorf("%s: radial gradient: %w", c.Name(), err)
		}
		sum += v
	}
	return sum, nil
}

// Acceleration sums the gravity vectors (m/s²).
func (t *Tides) Acceleration(ep Epoch, env Environment, p geom.Vector3) (geom.Vector3, error) {
	var sum geom.Vector3
	for _, c := range t.components {
		g, err := c.Gravity(ep, env, p)
		if err != nil {
			return geom.Vector3{}, fmt.Errorf("%s: acceleration: %w", c.Name(), err)
		}
		sum = sum.Add(g)
	}
	return sum, nil
}

// GradientTensor sums the gravity gradients (1/s²).
func (t *Tides) GradientTensor(ep Epoch, env Environment, p geom.Vector3) (geom.Tensor3, error) {
	var sum geom.Tensor3
	for _, c := range t.components {
		g, err := c.GravityGradient(ep, env, p)
		if err != nil {
			return geom.Tensor3{}, fmt.Errorf("%s: gradient: %w", c.Name(), err)
		}
		sum = sum.Add(g)
	}
	return sum, nil
}

// Deformation sums the displacement of one point (m).
func (t *Tides) Deformation(ep Epoch, env Environment, p geom.Vector3, gravity float64, hn, ln []float64) (geom.Vector3, error) {
	var sum geom.Vector3
	for _, c := range t.components {
		d, err := c.Deformation(ep, env, p, gravity, hn, ln)
		if err != nil {
			return geom.Vector3{}, fmt.Errorf("%s: deformation: %w", c.Name(), err)
		}
		sum = sum.Add(d)
	}
	return sum, nil
}

// DeformationBatch adds the displacements of all points at all epochs to
// disp[point][epoch].
func (t *Tides) DeformationBatch(eps []Epoch, env Environment, points []geom.Vector3, gravity, hn, ln []float64, disp [][]geom.Vector3) error {
	for _, c := range t.components {
		if err := c.DeformationBatch(eps, env, points, gravity, hn, ln, disp); err != nil {
			return fmt.Errorf("%s: deformation: %w", c.Name(), err)
		}
	}
	return nil
}

// SphericalHarmonics sums the component fields. The result uses the GM and
// R of the first component after conversion; no components yield the empty
// field.
func (t *Tides) SphericalHarmonics(ep Epoch, env Environment, maxDegree, minDegree int, gm, r float64) (*harmonics.Field, error) {
	sum := &harmonics.Field{}
	for _, c := range t.components {
		f, err := c.SphericalHarmonics(ep, env, maxDegree, minDegree, gm, r)
		if err != nil {
			return nil, fmt.Errorf("%s: spherical harmonics: %w", c.Name(), err)
		}
		sum = sum.Add(f)
	}
	return sum, nil
}
