// Package main converts ocean tide coefficient files between the CSV and
// NetCDF layouts read by doodsonHarmonicTide.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.ngs.io/geotides/internal/adapter/store/oceantide"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/tides"
)

func main() {
	in := flag.String("in", "", "Input coefficient file (.csv or .nc)")
	out := flag.String("out", "", "Output coefficient file (.csv or .nc)")
	gm := flag.Float64("gm", domain.DefaultGM, "Reference GM of CSV coefficients (m^3/s^2)")
	radius := flag.Float64("radius", domain.DefaultR, "Reference radius of CSV coefficients (m)")
	flag.Parse()

	log := logging.NewFromEnv()
	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "usage: oceantide-convert -in FILE -out FILE [-gm GM] [-radius R]")
		os.Exit(2)
	}
	if err := convert(context.Background(), *in, *out, *gm, *radius, log); err != nil {
		log.Error(context.Background(), "conversion failed", logging.Err(err))
		os.Exit(1)
	}
}

func convert(ctx context.Context, in, out string, gm, radius float64, log logging.Logger) error {
	model, err := read(in, gm, radius)
	if err != nil {
		return err
	}
	log.Info(ctx, "coefficients read",
		logging.String("path", in),
		logging.Int("constituents", len(model.Constituents)),
		logging.Int("max_degree", model.MaxDegree()))

	if err := write(out, model); err != nil {
		return err
	}
	log.Info(ctx, "coefficients written", logging.String("path", out))
	return nil
}

func read(path string, gm, radius float64) (*tides.HarmonicModel, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		return oceantide.ReadNetCDF(path)
	case ".csv":
		//nolint:gosec // G304: path is given on the command line.
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = file.Close() }()
		return oceantide.ReadCSV(file, gm, radius)
	}
	return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
}

func write(path string, model *tides.HarmonicModel) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc":
		return oceantide.WriteNetCDF(path, model)
	case ".csv":
		//nolint:gosec // G304: path is given on the command line.
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := oceantide.WriteCSV(file, model); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	}
	return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
}
