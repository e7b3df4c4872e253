// Package app assembles the evaluation service from a configuration.
package app

import (
	"context"
	"fmt"

	"go.ngs.io/geotides/internal/adapter/store"
	"go.ngs.io/geotides/internal/adapter/store/coefficients"
	"go.ngs.io/geotides/internal/adapter/store/eop"
	"go.ngs.io/geotides/internal/adapter/store/gravity"
	"go.ngs.io/geotides/internal/config"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/observability"
	"go.ngs.io/geotides/internal/tides"
	"go.ngs.io/geotides/internal/usecase"
)

// Build loads every data file named by cfg and returns the service.
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, log logging.Logger) (*usecase.Service, error) {
	if log == nil {
		log = logging.Noop()
	}
	st := store.New(cfg.DataDir)

	rotation, err := buildRotation(ctx, cfg.EarthRotation, st, log)
	if err != nil {
		return nil, err
	}

	agg, err := tides.New(cfg.TideSpecs(), st, log)
	if err != nil {
		return nil, fmt.Errorf("failed to configure tides: %w", err)
	}

	var grav gravity.Source = gravity.Normal{}
	if path := cfg.Deformation.GravityGridFile; path != "" {
		log.Info(ctx, "using gridded surface gravity", logging.String("path", st.Resolve(path)))
		grav = gravity.NewStore(st.Resolve(path))
	}

	hn, ln := cfg.Deformation.HN, cfg.Deformation.LN
	if path := cfg.Deformation.LoveNumbersFile; path != "" {
		if hn, ln, err = coefficients.LoadLoveNumbers(st.Resolve(path)); err != nil {
			return nil, err
		}
		log.Info(ctx, "Love numbers loaded", logging.Int("max_degree", len(hn)-1))
	}

	svc, err := usecase.NewService(usecase.Options{
		Rotation:    rotation,
		Tides:       agg,
		Gravity:     grav,
		HN:          hn,
		LN:          ln,
		Concurrency: cfg.Concurrency,
		Metrics:     metrics,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "service ready", logging.Any("components", agg.Components()))
	return svc, nil
}

func buildRotation(ctx context.Context, cfg config.EarthRotationConfig, st *store.Store, log logging.Logger) (*earthrotation.EarthRotation, error) {
	rc := earthrotation.Config{InterpolationDegree: cfg.InterpolationDegree}

	if cfg.EOPFile != "" {
		series, err := eop.NewLoader(log).LoadSeries(ctx, st.Resolve(cfg.EOPFile))
		if err != nil {
			return nil, err
		}
		rc.Series = series
	} else {
		log.Warn(ctx, "no EOP file configured, tabulated Earth orientation is zero")
	}

	switch {
	case cfg.TruncatedNutation:
		rc.Precession = iers.Truncated{}
	case cfg.SeriesDir == "":
		log.Warn(ctx, "full nutation series requested without earthRotation.seriesDir, orientation queries will fail")
		rc.Precession = iers.Unavailable{Reason: "no series tables configured"}
	default:
		full, err := coefficients.LoadIERSSeries(st.Resolve(cfg.SeriesDir))
		if err != nil {
			return nil, err
		}
		rc.Precession = full
	}

	for _, sp := range []struct {
		path   string
		layout coefficients.ShortPeriodLayout
	}{
		{cfg.OceanTideEOPFile, coefficients.LayoutFull},
		{cfg.LibrationPolarMotionFile, coefficients.LayoutPolarMotion},
		{cfg.LibrationUT1File, coefficients.LayoutUT1},
	} {
		if sp.path == "" {
			continue
		}
		model, err := coefficients.LoadShortPeriod(st.Resolve(sp.path), sp.layout)
		if err != nil {
			return nil, err
		}
		rc.ShortPeriod = append(rc.ShortPeriod, model)
	}

	return earthrotation.New(rc)
}
