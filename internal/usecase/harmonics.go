package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/timescale"
)

// maxHarmonicDegree bounds the degree a client may request.
const maxHarmonicDegree = 360

// HarmonicsRequest asks for the summed tidal field at one epoch.
type HarmonicsRequest struct {
	Time time.Time
	// MaxDegree of -1 keeps each component's own degree.
	MaxDegree  int
	MinDegree  int
	GM, R      float64
	Components []string
}

// Validate checks the request.
func (r *HarmonicsRequest) Validate() error {
	if r.Time.IsZero() {
		return domain.MalformedInput("time is required")
	}
	if r.MaxDegree < -1 || r.MaxDegree > maxHarmonicDegree {
		return domain.MalformedInput("max degree must be between -1 and %d, got %d", maxHarmonicDegree, r.MaxDegree)
	}
	if r.MinDegree < 0 || (r.MaxDegree >= 0 && r.MinDegree > r.MaxDegree) {
		return domain.MalformedInput("invalid min degree %d for max degree %d", r.MinDegree, r.MaxDegree)
	}
	if r.GM < 0 || r.R < 0 {
		return domain.MalformedInput("GM and R must not be negative")
	}
	return nil
}

// Coefficient is one fully normalized (n, m) pair.
type Coefficient struct {
	N int     `json:"n"`
	M int     `json:"m"`
	C float64 `json:"c"`
	S float64 `json:"s"`
}

// HarmonicsResponse lists the non-zero coefficients of the summed field.
type HarmonicsResponse struct {
	Time         string        `json:"time"`
	Components   []string      `json:"components"`
	GM           float64       `json:"gm"`
	R            float64       `json:"r"`
	MaxDegree    int           `json:"max_degree"`
	Coefficients []Coefficient `json:"coefficients"`
}

// Harmonics returns the spherical harmonic expansion of the selected tides.
// GM and R of zero select the reference values of the first component.
func (s *Service) Harmonics(ctx context.Context, req HarmonicsRequest) (resp *HarmonicsResponse, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	agg, err := s.tides.Select(req.Components...)
	if err != nil {
		return nil, err
	}

	_, finish := s.startSpan(ctx, "harmonics",
		attribute.Int("max_degree", req.MaxDegree),
		attribute.StringSlice("components", agg.Components()))
	defer func() { finish(err) }()

	timeUTC := timescale.FromTime(req.Time)
	ep, err := tides.NewEpoch(timescale.UTCToGPS(timeUTC), s.rotation)
	if err != nil {
		return nil, err
	}
	field, err := agg.SphericalHarmonics(ep, s.env, req.MaxDegree, req.MinDegree, req.GM, req.R)
	if err != nil {
		return nil, err
	}

	resp = &HarmonicsResponse{
		Time:         formatTime(timeUTC),
		Components:   agg.Components(),
		GM:           field.GM,
		R:            field.R,
		MaxDegree:    field.MaxDegree(),
		Coefficients: []Coefficient{},
	}
	for n := 0; n <= field.MaxDegree(); n++ {
		for m := 0; m <= n; m++ {
			if c, sn := field.C[n][m], field.S[n][m]; c != 0 || sn != 0 {
				resp.Coefficients = append(resp.Coefficients, Coefficient{N: n, M: m, C: c, S: sn})
			}
		}
	}
	return resp, nil
}
