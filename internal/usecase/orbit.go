package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/geotides/internal/adapter/orbit"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/timescale"
)

// OrbitRequest asks for the tidal acceleration along a satellite track
// given as a two-line element set.
type OrbitRequest struct {
	TimeRange
	Line1, Line2 string
	Components   []string
}

// OrbitSample holds the tidal values at one point of the track.
type OrbitSample struct {
	Time      string     `json:"time"`
	MJD       float64    `json:"mjd"`
	Position  [3]float64 `json:"position_m"`
	Lat       float64    `json:"lat"`
	Lon       float64    `json:"lon"`
	Height    float64    `json:"height"`
	Potential float64    `json:"potential_m2_s2"`
	Gravity   [3]float64 `json:"gravity_xyz_m_s2"`
}

// OrbitResponse is the result of Orbit.
type OrbitResponse struct {
	Components []string      `json:"components"`
	Samples    []OrbitSample `json:"samples"`
}

// Orbit propagates the satellite and evaluates the tides at each sample.
func (s *Service) Orbit(ctx context.Context, req OrbitRequest) (resp *OrbitResponse, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	prop, err := orbit.NewPropagator(req.Line1, req.Line2)
	if err != nil {
		return nil, err
	}
	agg, err := s.tides.Select(req.Components...)
	if err != nil {
		return nil, err
	}

	ctx, finish := s.startSpan(ctx, "orbit", attribute.StringSlice("components", agg.Components()))
	defer func() { finish(err) }()

	track, err := prop.Track(timescale.FromTime(req.Start), timescale.FromTime(req.End), req.Interval.Seconds())
	if err != nil {
		return nil, err
	}

	samples := make([]OrbitSample, len(track))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sm := range track {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ep, err := tides.NewEpoch(timescale.UTCToGPS(sm.TimeUTC), s.rotation)
			if err != nil {
				return err
			}
			samples[i], err = s.orbitSample(agg, ep, sm)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.log).Debug(ctx, "orbit evaluated", logging.Int("samples", len(samples)))
	return &OrbitResponse{Components: agg.Components(), Samples: samples}, nil
}

func (s *Service) orbitSample(agg *tides.Tides, ep tides.Epoch, sm orbit.Sample) (OrbitSample, error) {
	p := sm.Position
	pot, err := agg.Potential(ep, s.env, p)
	if err != nil {
		return OrbitSample{}, err
	}
	g, err := agg.Acceleration(ep, s.env, p)
	if err != nil {
		return OrbitSample{}, err
	}
	lon, lat, h := geom.GRS80.Geodetic(p)
	return OrbitSample{
		Time:      formatTime(sm.TimeUTC),
		MJD:       sm.TimeUTC.MJD(),
		Position:  [3]float64{p.X, p.Y, p.Z},
		Lat:       domain.Rad2Deg(lat),
		Lon:       domain.Rad2Deg(lon),
		Height:    h,
		Potential: pot,
		Gravity:   [3]float64{g.X, g.Y, g.Z},
	}, nil
}
