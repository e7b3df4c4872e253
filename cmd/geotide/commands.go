package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go.ngs.io/geotides/internal/app"
	"go.ngs.io/geotides/internal/config"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/usecase"
)

// options are shared by all subcommands.
type options struct {
	configPath string
	logLevel   string

	start, end string
	interval   time.Duration
	points     []string
	components []string
	tensor     bool
	tle        []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "geotide",
		Short:         "Evaluate Earth orientation, tidal potentials and station displacements",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration (defaults apply when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newComponentsCmd(opts),
		newEOPCmd(opts),
		newEvaluateCmd(opts),
		newDeformationCmd(opts),
		newOrbitCmd(opts),
		newHarmonicsCmd(opts),
	)
	return root
}

func addTimeFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.start, "start", "", "first epoch, RFC3339 UTC (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "last epoch, RFC3339 UTC (default: start)")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Hour, "sampling interval")
	_ = cmd.MarkFlagRequired("start")
}

func addPointFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringArrayVar(&opts.points, "point", nil, "station as lat,lon[,height] in degrees and metres (repeatable)")
	cmd.Flags().StringSliceVar(&opts.components, "components", nil, "restrict to these tide components")
	_ = cmd.MarkFlagRequired("point")
}

func newComponentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the configured tide components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{
				"components": svc.Components(),
				"series":     svc.Series(),
			})
		},
	}
}

func newEOPCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eop",
		Short: "Print Earth orientation parameters over a time range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			tr, err := opts.timeRange()
			if err != nil {
				return err
			}
			resp, err := svc.EOP(cmd.Context(), usecase.EOPRequest{TimeRange: tr})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	addTimeFlags(cmd, opts)
	return cmd
}

func newEvaluateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate tidal potential and gravity at stations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			tr, err := opts.timeRange()
			if err != nil {
				return err
			}
			points, err := parsePoints(opts.points)
			if err != nil {
				return err
			}
			resp, err := svc.Evaluate(cmd.Context(), usecase.EvaluateRequest{
				TimeRange:  tr,
				Points:     points,
				Components: opts.components,
				Tensor:     opts.tensor,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	addTimeFlags(cmd, opts)
	addPointFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.tensor, "tensor", false, "include the gravity gradient tensor")
	return cmd
}

func newDeformationCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deformation",
		Short: "Compute tidal station displacements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			tr, err := opts.timeRange()
			if err != nil {
				return err
			}
			points, err := parsePoints(opts.points)
			if err != nil {
				return err
			}
			resp, err := svc.Deformation(cmd.Context(), usecase.DeformationRequest{
				TimeRange:  tr,
				Points:     points,
				Components: opts.components,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	addTimeFlags(cmd, opts)
	addPointFlags(cmd, opts)
	return cmd
}

func newOrbitCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "Evaluate tides along a satellite orbit given as a TLE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(opts.tle) != 2 {
				return fmt.Errorf("--tle must be given twice (line 1 and line 2), got %d", len(opts.tle))
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			tr, err := opts.timeRange()
			if err != nil {
				return err
			}
			resp, err := svc.Orbit(cmd.Context(), usecase.OrbitRequest{
				TimeRange:  tr,
				Line1:      opts.tle[0],
				Line2:      opts.tle[1],
				Components: opts.components,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	addTimeFlags(cmd, opts)
	cmd.Flags().StringArrayVar(&opts.tle, "tle", nil, "two-line element set, one flag per line")
	cmd.Flags().StringSliceVar(&opts.components, "components", nil, "restrict to these tide components")
	return cmd
}

func newHarmonicsCmd(opts *options) *cobra.Command {
	var (
		at                   string
		maxDegree, minDegree int
		gm, radius           float64
	)
	cmd := &cobra.Command{
		Use:   "harmonics",
		Short: "Print the spherical harmonic expansion of the tides at one epoch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("invalid --time (expected RFC3339): %w", err)
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			resp, err := svc.Harmonics(cmd.Context(), usecase.HarmonicsRequest{
				Time:       t.UTC(),
				MaxDegree:  maxDegree,
				MinDegree:  minDegree,
				GM:         gm,
				R:          radius,
				Components: opts.components,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&at, "time", "", "epoch, RFC3339 UTC (required)")
	cmd.Flags().IntVar(&maxDegree, "max-degree", -1, "truncate at this degree (-1: natural degree)")
	cmd.Flags().IntVar(&minDegree, "min-degree", 0, "zero degrees below this one")
	cmd.Flags().Float64Var(&gm, "gm", 0, "reference GM (0: model value)")
	cmd.Flags().Float64Var(&radius, "radius", 0, "reference radius (0: model value)")
	cmd.Flags().StringSliceVar(&opts.components, "components", nil, "restrict to these tide components")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func (o *options) service(cmd *cobra.Command) (*usecase.Service, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{Level: o.logLevel, Output: cmd.ErrOrStderr()})
	return app.Build(cmd.Context(), cfg, nil, log)
}

func (o *options) timeRange() (usecase.TimeRange, error) {
	start, err := time.Parse(time.RFC3339, o.start)
	if err != nil {
		return usecase.TimeRange{}, fmt.Errorf("invalid --start (expected RFC3339): %w", err)
	}
	end := start
	if o.end != "" {
		if end, err = time.Parse(time.RFC3339, o.end); err != nil {
			return usecase.TimeRange{}, fmt.Errorf("invalid --end (expected RFC3339): %w", err)
		}
	}
	return usecase.TimeRange{Start: start.UTC(), End: end.UTC(), Interval: o.interval}, nil
}

// parsePoints reads "lat,lon[,height]" values.
func parsePoints(values []string) ([]usecase.Location, error) {
	points := make([]usecase.Location, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid point %q, expected lat,lon[,height]", v)
		}
		nums := make([]float64, 3)
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid point %q: %w", v, err)
			}
			nums[i] = f
		}
		points = append(points, usecase.Location{Lat: nums[0], Lon: nums[1], Height: nums[2]})
	}
	return points, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
