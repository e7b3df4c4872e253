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

// deformationChunk is the number of epochs sharing one deformation basis.
const deformationChunk = 64

// DeformationRequest asks for the tidal displacement of stations.
type DeformationRequest struct {
	TimeRange
	Points     []Location
	Components []string
}

// Validate checks the request.
func (r *DeformationRequest) Validate() error {
	if err := r.TimeRange.Validate(); err != nil {
		return err
	}
	return validatePoints(r.Points, r.TimeRange)
}

// Displacement is the displacement of one station at one epoch (m).
type Displacement struct {
	XYZ [3]float64 `json:"xyz_m"`
	NEU [3]float64 `json:"neu_m"`
}

// StationDisplacements is the time series of one station.
type StationDisplacements struct {
	Location Location       `json:"location"`
	Gravity  float64        `json:"gravity_m_s2"`
	Series   []Displacement `json:"series"`
	// UpExtrema are the turning points of the vertical displacement.
	UpExtrema Extrema `json:"up_extrema"`
}

// DeformationResponse is the result of Deformation.
type DeformationResponse struct {
	Components []string               `json:"components"`
	Times      []string               `json:"times"`
	Stations   []StationDisplacements `json:"stations"`
}

// Deformation computes the displacement of every point at every epoch with
// the configured Love numbers. Epochs are split into chunks evaluated
// concurrently.
func (s *Service) Deformation(ctx context.Context, req DeformationRequest) (resp *DeformationResponse, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(s.hn) == 0 {
		return nil, domain.MissingDependency("Love numbers are not configured")
	}
	agg, err := s.tides.Select(req.Components...)
	if err != nil {
		return nil, err
	}
	times, err := req.utcTimes()
	if err != nil {
		return nil, domain.WrapMalformed(err, "invalid time range")
	}

	ctx, finish := s.startSpan(ctx, "deformation",
		attribute.Int("epochs", len(times)),
		attribute.Int("points", len(req.Points)),
		attribute.StringSlice("components", agg.Components()))
	defer func() { finish(err) }()

	positions := make([]geom.Vector3, len(req.Points))
	gravity := make([]float64, len(req.Points))
	for i, p := range req.Points {
		positions[i] = p.Cartesian()
		if gravity[i], err = s.gravity.Gravity(positions[i]); err != nil {
			return nil, err
		}
	}

	disp := make([][]geom.Vector3, len(positions))
	for i := range disp {
		disp[i] = make([]geom.Vector3, len(times))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for start := 0; start < len(times); start += deformationChunk {
		end := min(start+deformationChunk, len(times))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return s.deformChunk(agg, times[start:end], positions, gravity, disp, start)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp = &DeformationResponse{
		Components: agg.Components(),
		Times:      make([]string, len(times)),
		Stations:   make([]StationDisplacements, len(positions)),
	}
	for k, t := range times {
		resp.Times[k] = formatTime(t)
	}
	for i, pos := range positions {
		frame := geom.LocalNorthEastUp(pos)
		series := make([]Displacement, len(times))
		up := make([]float64, len(times))
		for k, d := range disp[i] {
			neu := frame.InverseRotate(d)
			series[k] = Displacement{
				XYZ: [3]float64{d.X, d.Y, d.Z},
				NEU: [3]float64{neu.X, neu.Y, neu.Z},
			}
			up[k] = neu.Z
		}
		resp.Stations[i] = StationDisplacements{
			Location:  req.Points[i],
			Gravity:   gravity[i],
			Series:    series,
			UpExtrema: findExtrema(times, up),
		}
	}

	logging.FromContext(ctx, s.log).Debug(ctx, "deformation evaluated",
		logging.Int("epochs", len(times)),
		logging.Int("points", len(positions)))
	return resp, nil
}

// deformChunk evaluates the epochs times into its own buffer and copies
// them to disp starting at column offset.
func (s *Service) deformChunk(agg *tides.Tides, times []timescale.Time, positions []geom.Vector3, gravity []float64, disp [][]geom.Vector3, offset int) error {
	eps := make([]tides.Epoch, len(times))
	for k, t := range times {
		ep, err := tides.NewEpoch(timescale.UTCToGPS(t), s.rotation)
		if err != nil {
			return err
		}
		eps[k] = ep
	}
	buf := make([][]geom.Vector3, len(positions))
	for i := range buf {
		buf[i] = make([]geom.Vector3, len(eps))
	}
	if err := agg.DeformationBatch(eps, s.env, positions, gravity, s.hn, s.ln, buf); err != nil {
		return err
	}
	for i := range buf {
		copy(disp[i][offset:], buf[i])
	}
	return nil
}
