package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/timescale"
)

// EOPRequest asks for Earth orientation over a time range.
type EOPRequest struct {
	TimeRange
}

// EOPPoint is the orientation at one epoch in conventional units.
type EOPPoint struct {
	Time        string  `json:"time"`
	MJD         float64 `json:"mjd"`
	XpArcsec    float64 `json:"xp_arcsec"`
	YpArcsec    float64 `json:"yp_arcsec"`
	SpArcsec    float64 `json:"sp_arcsec"`
	UT1MinusUTC float64 `json:"ut1_minus_utc_s"`
	LOD         float64 `json:"lod_s"`
	XArcsec     float64 `json:"x_arcsec"`
	YArcsec     float64 `json:"y_arcsec"`
	SArcsec     float64 `json:"s_arcsec"`
}

// EOPResponse holds the sampled orientation.
type EOPResponse struct {
	Series SeriesInfo `json:"series"`
	Points []EOPPoint `json:"points"`
}

// EOP evaluates the Earth orientation at each epoch of the request.
func (s *Service) EOP(ctx context.Context, req EOPRequest) (resp *EOPResponse, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	times, err := req.utcTimes()
	if err != nil {
		return nil, domain.WrapMalformed(err, "invalid time range")
	}

	ctx, finish := s.startSpan(ctx, "eop", attribute.Int("epochs", len(times)))
	defer func() { finish(err) }()

	points := make([]EOPPoint, len(times))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, t := range times {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, err := s.rotation.Orientation(timescale.UTCToGPS(t))
			if err != nil {
				return err
			}
			points[i] = EOPPoint{
				Time:        formatTime(t),
				MJD:         t.MJD(),
				XpArcsec:    o.Xp / domain.ArcsecToRad,
				YpArcsec:    o.Yp / domain.ArcsecToRad,
				SpArcsec:    o.Sp / domain.ArcsecToRad,
				UT1MinusUTC: o.DeltaUT,
				LOD:         o.LOD,
				XArcsec:     o.X / domain.ArcsecToRad,
				YArcsec:     o.Y / domain.ArcsecToRad,
				SArcsec:     o.S / domain.ArcsecToRad,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.log).Debug(ctx, "EOP evaluated", logging.Int("epochs", len(points)))
	return &EOPResponse{Series: s.Series(), Points: points}, nil
}
