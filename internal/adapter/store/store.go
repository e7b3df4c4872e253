// Package store resolves coefficient files referenced by the configuration
// and caches the parsed models.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.ngs.io/geotides/internal/adapter/store/coefficients"
	"go.ngs.io/geotides/internal/adapter/store/oceantide"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/tides"
)

// Store loads tide coefficient files relative to a data directory.
type Store struct {
	dataDir   string
	harmonic  map[string]*tides.HarmonicModel
	oceanPole map[string]*tides.OceanPoleModel
	mu        sync.RWMutex
}

var _ tides.CoefficientLoader = (*Store)(nil)

// New creates a store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{
		dataDir:   dataDir,
		harmonic:  make(map[string]*tides.HarmonicModel),
		oceanPole: make(map[string]*tides.OceanPoleModel),
	}
}

// Resolve returns path itself when absolute, otherwise path under the data
// directory.
func (s *Store) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dataDir, path)
}

// LoadHarmonicModel reads a NetCDF (.nc) or CSV (.csv) ocean tide model. CSV
// models use the default GM and reference radius.
func (s *Store) LoadHarmonicModel(path string) (*tides.HarmonicModel, error) {
	full := s.Resolve(path)
	s.mu.RLock()
	model, ok := s.harmonic[full]
	s.mu.RUnlock()
	if ok {
		return model, nil
	}

	var err error
	switch strings.ToLower(filepath.Ext(full)) {
	case ".nc":
		model, err = oceantide.ReadNetCDF(full)
	case ".csv":
		model, err = readCSV(full)
	default:
		return nil, domain.MalformedInput("unsupported ocean tide file format %q", filepath.Ext(full))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ocean tide model %s: %w", full, err)
	}

	s.mu.Lock()
	s.harmonic[full] = model
	s.mu.Unlock()
	return model, nil
}

func readCSV(path string) (*tides.HarmonicModel, error) {
	//nolint:gosec // G304: path comes from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return oceantide.ReadCSV(file, domain.DefaultGM, domain.DefaultR)
}

// LoadOceanPoleModel reads ocean pole tide coefficients.
func (s *Store) LoadOceanPoleModel(path string) (*tides.OceanPoleModel, error) {
	full := s.Resolve(path)
	s.mu.RLock()
	model, ok := s.oceanPole[full]
	s.mu.RUnlock()
	if ok {
		return model, nil
	}

	model, err := coefficients.LoadOceanPole(full)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.oceanPole[full] = model
	s.mu.Unlock()
	return model, nil
}
