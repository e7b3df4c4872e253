package tides

import (
	"context"
	"fmt"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/logging"
)

// Kind is the configuration tag of a component.
type Kind string

// Supported components.
const (
	KindAstronomical    Kind = "astronomicalTide"
	KindEarth           Kind = "earthTide"
	KindDoodsonHarmonic Kind = "doodsonHarmonicTide"
	KindPole            Kind = "poleTide"
	KindOceanPole       Kind = "oceanPoleTide"
	KindCentrifugal     Kind = "centrifugal"
	KindSolidMoon       Kind = "solidMoonTide"
)

// Kinds lists the supported tags in a stable order.
var Kinds = []Kind{
	KindAstronomical, KindEarth, KindDoodsonHarmonic, KindPole,
	KindOceanPole, KindCentrifugal, KindSolidMoon,
}

var deprecatedKinds = map[string]Kind{
	"poleTide2010":      KindPole,
	"poleOceanTide2010": KindOceanPole,
	"moonTide":          KindSolidMoon,
}

// ParseKind resolves a tag. deprecated reports a renamed alias.
func ParseKind(tag string) (kind Kind, deprecated bool, err error) {
	for _, k := range Kinds {
		if string(k) == tag {
			return k, false, nil
		}
	}
	if k, ok := deprecatedKinds[tag]; ok {
		return k, true, nil
	}
	return "", false, domain.MalformedInput("unknown tide type %q", tag)
}

// Spec is one configured component: the tag and its options. Options holds
// the matching *XxxOptions value or nil for defaults.
type Spec struct {
	Type    string
	Options any
}

// CoefficientLoader reads coefficient files referenced by components.
type CoefficientLoader interface {
	LoadHarmonicModel(path string) (*HarmonicModel, error)
	LoadOceanPoleModel(path string) (*OceanPoleModel, error)
}

// New builds the aggregator from specs in order.
func New(specs []Spec, loader CoefficientLoader, log logging.Logger) (*Tides, error) {
	if log == nil {
		log = logging.Noop()
	}
	components := make([]Tide, 0, len(specs))
	for i, spec := range specs {
		kind, deprecated, err := ParseKind(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("tide %d: %w", i, err)
		}
		if deprecated {
			log.Warn(context.Background(), "deprecated tide type renamed",
				logging.String("type", spec.Type), logging.String("use", string(kind)))
		}
		c, err := build(kind, spec.Options, loader)
		if err != nil {
			return nil, fmt.Errorf("tide %d (%s): %w", i, kind, err)
		}
		log.Debug(context.Background(), "tide component configured", logging.String("type", string(kind)))
		components = append(components, c)
	}
	return NewTides(components...), nil
}

func build(kind Kind, options any, loader CoefficientLoader) (Tide, error) {
	switch kind {
	case KindAstronomical:
		opts, err := optionsAs[AstronomicalOptions](options)
		if err != nil {
			return nil, err
		}
		return NewAstronomical(opts)
	case KindEarth:
		opts, err := optionsAs[EarthOptions](options)
		if err != nil {
			return nil, err
		}
		return NewEarth(opts), nil
	case KindDoodsonHarmonic:
		opts, err := optionsAs[DoodsonHarmonicOptions](options)
		if err != nil {
			return nil, err
		}
		if opts.File == "" {
			return nil, domain.MalformedInput("doodson harmonic tide needs a coefficient file")
		}
		if loader == nil {
			return nil, domain.MissingDependency("no coefficient loader for %s", opts.File)
		}
		model, err := loader.LoadHarmonicModel(opts.File)
		if err != nil {
			return nil, err
		}
		return NewDoodsonHarmonic(model, opts)
	case KindPole:
		opts, err := optionsAs[PoleOptions](options)
		if err != nil {
			return nil, err
		}
		return NewPole(opts)
	case KindOceanPole:
		opts, err := optionsAs[OceanPoleOptions](options)
		if err != nil {
			return nil, err
		}
		var model *OceanPoleModel
		if opts.File != "" {
			if loader == nil {
				return nil, domain.MissingDependency("no coefficient loader for %s", opts.File)
			}
			if model, err = loader.LoadOceanPoleModel(opts.File); err != nil {
				return nil, err
			}
		}
		return NewOceanPole(model, opts)
	case KindCentrifugal:
		return Centrifugal{}, nil
	case KindSolidMoon:
		opts, err := optionsAs[SolidMoonOptions](options)
		if err != nil {
			return nil, err
		}
		return NewSolidMoon(opts)
	}
	return nil, domain.MalformedInput("unknown tide type %q", kind)
}

// optionsAs accepts T, *T or nil.
func optionsAs[T any](options any) (T, error) {
	var zero T
	switch o := options.(type) {
	case nil:
		return zero, nil
	case T:
		return o, nil
	case *T:
		if o == nil {
			return zero, nil
		}
		return *o, nil
	}
	return zero, domain.MalformedInput("options of type %T do not match %T", options, zero)
}
