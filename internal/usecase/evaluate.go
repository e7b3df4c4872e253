package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/timescale"
)

// EvaluateRequest asks for tidal potential and gravity at points over time.
type EvaluateRequest struct {
	TimeRange
	Points []Location
	// Components restricts the sum to the named components; empty uses all.
	Components []string
	// Tensor adds the gravity gradient tensor.
	Tensor bool
}

// Validate checks the request.
func (r *EvaluateRequest) Validate() error {
	if err := r.TimeRange.Validate(); err != nil {
		return err
	}
	return validatePoints(r.Points, r.TimeRange)
}

func validatePoints(points []Location, tr TimeRange) error {
	if len(points) == 0 {
		return domain.MalformedInput("at least one point is required")
	}
	if len(points) > MaxPoints {
		return domain.MalformedInput("too many points (%d), at most %d", len(points), MaxPoints)
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return domain.WrapMalformed(err, "point %d", i)
		}
	}
	epochs := int(tr.End.Sub(tr.Start)/tr.Interval) + 1
	if n := epochs * len(points); n > MaxSamples {
		return domain.MalformedInput("too many samples (%d epochs x %d points)", epochs, len(points))
	}
	return nil
}

// TidalValues holds the summed tidal functionals at one point. Vectors are in
// the Earth-fixed frame and in local north/east/up.
type TidalValues struct {
	Potential      float64    `json:"potential_m2_s2"`
	RadialGradient float64    `json:"radial_gradient_s2"`
	Gravity        [3]float64 `json:"gravity_xyz_m_s2"`
	GravityNEU     [3]float64 `json:"gravity_neu_m_s2"`
	Tensor         *Tensor    `json:"tensor_s2,omitempty"`
	Location       Location   `json:"location"`
}

// Tensor is the symmetric gravity gradient in the Earth-fixed frame (1/s²).
type Tensor struct {
	XX float64 `json:"xx"`
	XY float64 `json:"xy"`
	XZ float64 `json:"xz"`
	YY float64 `json:"yy"`
	YZ float64 `json:"yz"`
	ZZ float64 `json:"zz"`
}

// EpochValues holds all points at one epoch.
type EpochValues struct {
	Time   string        `json:"time"`
	MJD    float64       `json:"mjd"`
	Points []TidalValues `json:"points"`
}

// EvaluateResponse is the result of Evaluate.
type EvaluateResponse struct {
	Components []string      `json:"components"`
	Epochs     []EpochValues `json:"epochs"`
}

// Evaluate sums the configured tides at every point and epoch. Epochs are
// evaluated concurrently.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (resp *EvaluateResponse, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	agg, err := s.tides.Select(req.Components...)
	if err != nil {
		return nil, err
	}
	times, err := req.utcTimes()
	if err != nil {
		return nil, domain.WrapMalformed(err, "invalid time range")
	}

	ctx, finish := s.startSpan(ctx, "evaluate",
		attribute.Int("epochs", len(times)),
		attribute.Int("points", len(req.Points)),
		attribute.StringSlice("components", agg.Components()))
	defer func() { finish(err) }()

	positions := make([]geom.Vector3, len(req.Points))
	frames := make([]geom.Rotation, len(req.Points))
	for i, p := range req.Points {
		positions[i] = p.Cartesian()
		frames[i] = geom.LocalNorthEastUp(positions[i])
	}

	epochs := make([]EpochValues, len(times))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, t := range times {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ep, err := tides.NewEpoch(timescale.UTCToGPS(t), s.rotation)
			if err != nil {
				return err
			}
			values := make([]TidalValues, len(positions))
			for k, pos := range positions {
				v, err := s.evaluatePoint(agg, ep, pos, frames[k], req.Tensor)
				if err != nil {
					return err
				}
				v.Location = req.Points[k]
				values[k] = v
			}
			epochs[i] = EpochValues{Time: formatTime(t), MJD: t.MJD(), Points: values}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.log).Debug(ctx, "tides evaluated",
		logging.Int("epochs", len(epochs)),
		logging.Int("points", len(positions)))
	return &EvaluateResponse{Components: agg.Components(), Epochs: epochs}, nil
}

func (s *Service) evaluatePoint(agg *tides.Tides, ep tides.Epoch, pos geom.Vector3, frame geom.Rotation, tensor bool) (TidalValues, error) {
	var v TidalValues
	var err error
	if v.Potential, err = agg.Potential(ep, s.env, pos); err != nil {
		return v, err
	}
	if v.RadialGradient, err = agg.RadialGradient(ep, s.env, pos); err != nil {
		return v, err
	}
	g, err := agg.Acceleration(ep, s.env, pos)
	if err != nil {
		return v, err
	}
	neu := frame.InverseRotate(g)
	v.Gravity = [3]float64{g.X, g.Y, g.Z}
	v.GravityNEU = [3]float64{neu.X, neu.Y, neu.Z}
	if tensor {
		t, err := agg.GradientTensor(ep, s.env, pos)
		if err != nil {
			return v, err
		}
		v.Tensor = &Tensor{XX: t.XX, XY: t.XY, XZ: t.XZ, YY: t.YY, YZ: t.YZ, ZZ: t.ZZ}
	}
	return v, nil
}
