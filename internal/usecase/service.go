// Package usecase validates requests and orchestrates Earth orientation and
// tide evaluations over epochs and points.
package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go.ngs.io/geotides/internal/adapter/store/gravity"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/observability"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/timescale"
)

// Request limits.
const (
	MaxEpochs = 10000
	MaxPoints = 1000
	// MaxSamples bounds epochs x points of one request.
	MaxSamples = 200000
)

// Options assembles a Service.
type Options struct {
	Rotation    *earthrotation.EarthRotation
	Ephemeris   ephemeris.Provider
	Tides       *tides.Tides
	Gravity     gravity.Source
	HN, LN      []float64
	Concurrency int
	Metrics     *observability.Metrics
	Logger      logging.Logger
}

// Service is safe for concurrent use.
type Service struct {
	rotation    *earthrotation.EarthRotation
	env         tides.Environment
	tides       *tides.Tides
	gravity     gravity.Source
	hn, ln      []float64
	concurrency int
	metrics     *observability.Metrics
	log         logging.Logger
	tracer      trace.Tracer
}

// NewService creates the service.
func NewService(opts Options) (*Service, error) {
	if opts.Rotation == nil {
		return nil, domain.MissingDependency("earth rotation is not configured")
	}
	if len(opts.HN) != len(opts.LN) {
		return nil, domain.MalformedInput("hn and ln differ in length (%d, %d)", len(opts.HN), len(opts.LN))
	}
	agg := opts.Tides
	if agg == nil {
		agg = tides.NewTides()
	}
	eph := opts.Ephemeris
	if eph == nil {
		eph = ephemeris.Analytic{}
	}
	grav := opts.Gravity
	if grav == nil {
		grav = gravity.Normal{}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	if series := opts.Rotation.Series(); series != nil {
		opts.Metrics.SetEOPEpochs(series.Len())
	}
	return &Service{
		rotation:    opts.Rotation,
		env:         tides.Environment{Rotation: opts.Rotation, Ephemeris: eph},
		tides:       agg,
		gravity:     grav,
		hn:          opts.HN,
		ln:          opts.LN,
		concurrency: max(1, opts.Concurrency),
		metrics:     opts.Metrics,
		log:         log,
		tracer:      otel.Tracer(observability.TracerName),
	}, nil
}

// Components returns the configured tide components in order.
func (s *Service) Components() []string { return s.tides.Components() }

// SeriesInfo describes the loaded EOP coverage.
type SeriesInfo struct {
	Epochs int    `json:"epochs"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// Series reports the EOP coverage; Epochs is zero without a table.
func (s *Service) Series() SeriesInfo {
	series := s.rotation.Series()
	if series == nil {
		return SeriesInfo{}
	}
	return SeriesInfo{
		Epochs: series.Len(),
		Start:  formatTime(series.Start()),
		End:    formatTime(series.End()),
	}
}

// Location is a point on or above the ellipsoid.
type Location struct {
	Lat    float64 `json:"lat"`    // Geodetic latitude (deg).
	Lon    float64 `json:"lon"`    // Longitude (deg).
	Height float64 `json:"height"` // Ellipsoidal height (m).
}

// Validate checks coordinate ranges.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return domain.MalformedInput("latitude must be between -90 and 90, got %g", l.Lat)
	}
	if l.Lon < -180 || l.Lon > 360 {
		return domain.MalformedInput("longitude must be between -180 and 360, got %g", l.Lon)
	}
	if l.Height < -20000 || l.Height > 1e8 {
		return domain.MalformedInput("height out of range: %g m", l.Height)
	}
	return nil
}

// Cartesian returns the Earth-fixed position on GRS80.
func (l Location) Cartesian() geom.Vector3 {
	return geom.GRS80.Cartesian(domain.Deg2Rad(l.Lon), domain.Deg2Rad(l.Lat), l.Height)
}

// TimeRange is an inclusive UTC range sampled at Interval.
type TimeRange struct {
	Start    time.Time
	End      time.Time
	Interval time.Duration
}

// Validate checks ordering, interval and size.
func (r TimeRange) Validate() error {
	if r.End.Before(r.Start) {
		return domain.MalformedInput("start time must not be after end time")
	}
	if r.Interval < time.Second {
		return domain.MalformedInput("interval must be at least 1 second")
	}
	if n := int(r.End.Sub(r.Start)/r.Interval) + 1; n > MaxEpochs {
		return domain.MalformedInput("too many epochs (%d) - reduce time range or increase interval", n)
	}
	return nil
}

// utcTimes returns the sampled UTC epochs.
func (r TimeRange) utcTimes() ([]timescale.Time, error) {
	return timescale.Series(timescale.FromTime(r.Start), timescale.FromTime(r.End), r.Interval.Seconds())
}

func formatTime(t timescale.Time) string {
	return t.Time().Format("2006-01-02T15:04:05.000Z")
}

// startSpan opens a span and returns a finish function recording the outcome
// in the span and the metrics.
func (s *Service) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "usecase."+operation, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveEvaluation(operation, err, time.Since(start))
	}
}
