// Package config loads the geotides configuration: a YAML file decoded over
// defaults, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"go.ngs.io/geotides/internal/tides"
)

// Config is the complete configuration.
type Config struct {
	DataDir       string              `yaml:"dataDir"`
	EarthRotation EarthRotationConfig `yaml:"earthRotation"`
	Tides         []TideConfig        `yaml:"tides"`
	Deformation   DeformationConfig   `yaml:"deformation"`
	Server        ServerConfig        `yaml:"server"`
	Tracing       TracingConfig       `yaml:"tracing"`
	// Concurrency bounds the number of epochs evaluated in parallel.
	Concurrency int `yaml:"concurrency"`
}

// EarthRotationConfig selects the EOP table and the precession-nutation and
// short-period models. Relative paths are resolved against DataDir.
type EarthRotationConfig struct {
	EOPFile             string `yaml:"eopFile"`
	TruncatedNutation   bool   `yaml:"truncatedNutation"`
	InterpolationDegree int    `yaml:"interpolationDegree"`
	// SeriesDir holds tab5.2a/b/d for the full IERS 2010 model. It is used
	// unless TruncatedNutation is set.
	SeriesDir                string `yaml:"seriesDir"`
	OceanTideEOPFile         string `yaml:"oceanTideEOPFile"`
	LibrationPolarMotionFile string `yaml:"librationPolarMotionFile"`
	LibrationUT1File         string `yaml:"librationUT1File"`
}

// DeformationConfig holds the load response used for displacements.
type DeformationConfig struct {
	// LoveNumbersFile overrides HN and LN when set.
	LoveNumbersFile string    `yaml:"loveNumbersFile"`
	HN              []float64 `yaml:"hn"`
	LN              []float64 `yaml:"ln"`
	// GravityGridFile selects gridded surface gravity; normal gravity
	// otherwise.
	GravityGridFile string `yaml:"gravityGridFile"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port               string   `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"corsAllowedOrigins"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	SampleRatio float64 `yaml:"sampleRatio"`
}

// TideConfig is one entry of the tides list. The type tag selects the
// options struct the remaining keys decode into.
type TideConfig struct {
	tides.Spec
	// Deprecated reports that Type was given by a renamed alias.
	Deprecated bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TideConfig) UnmarshalYAML(node *yaml.Node) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := node.Decode(&head); err != nil {
		return err
	}
	if head.Type == "" {
		return fmt.Errorf("line %d: tide entry without type", node.Line)
	}
	kind, deprecated, err := tides.ParseKind(head.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	var options any
	switch kind {
	case tides.KindAstronomical:
		options, err = decode[tides.AstronomicalOptions](node)
	case tides.KindEarth:
		options, err = decode[tides.EarthOptions](node)
	case tides.KindDoodsonHarmonic:
		options, err = decode[tides.DoodsonHarmonicOptions](node)
	case tides.KindPole:
		options, err = decode[tides.PoleOptions](node)
	case tides.KindOceanPole:
		options, err = decode[tides.OceanPoleOptions](node)
	case tides.KindSolidMoon:
		options, err = decode[tides.SolidMoonOptions](node)
	case tides.KindCentrifugal:
	}
	if err != nil {
		return fmt.Errorf("line %d: %s options: %w", node.Line, kind, err)
	}
	t.Spec = tides.Spec{Type: head.Type, Options: options}
	t.Deprecated = deprecated
	return nil
}

func decode[T any](node *yaml.Node) (*T, error) {
	var out T
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarshalYAML writes the entry back as a flat mapping with the type first.
func (t TideConfig) MarshalYAML() (any, error) {
	node := &yaml.Node{}
	if t.Options != nil {
		if err := node.Encode(t.Options); err != nil {
			return nil, err
		}
	} else {
		node.Kind = yaml.MappingNode
	}
	typeKey := &yaml.Node{Kind: yaml.ScalarNode, Value: "type"}
	typeValue := &yaml.Node{Kind: yaml.ScalarNode, Value: t.Type}
	node.Content = append([]*yaml.Node{typeKey, typeValue}, node.Content...)
	return node, nil
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() Config {
	return Config{
		DataDir: "./data",
		EarthRotation: EarthRotationConfig{
			TruncatedNutation:   true,
			InterpolationDegree: 3,
		},
		Tides: []TideConfig{
			{Spec: tides.Spec{Type: string(tides.KindAstronomical)}},
			{Spec: tides.Spec{Type: string(tides.KindEarth)}},
			{Spec: tides.Spec{Type: string(tides.KindPole)}},
			{Spec: tides.Spec{Type: string(tides.KindOceanPole)}},
		},
		Deformation: DeformationConfig{
			HN: []float64{0, 0, 0.6078, 0.292, 0.175},
			LN: []float64{0, 0, 0.0847, 0.015, 0.010},
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Tracing: TracingConfig{
			SampleRatio: 1.0,
		},
		Concurrency: 4,
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		//nolint:gosec // G304: path is given by the operator.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// A tides list in the file replaces the default one.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("GEOTIDES_DATA_DIR", c.DataDir)
	c.EarthRotation.EOPFile = getEnv("GEOTIDES_EOP_FILE", c.EarthRotation.EOPFile)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.CORSAllowedOrigins = splitList(origins)
	}
	if v := getEnv("GEOTIDES_CONCURRENCY", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server port is empty"))
	}
	if c.EarthRotation.InterpolationDegree < 0 {
		errs = append(errs, fmt.Errorf("interpolation degree must be >= 0, got %d", c.EarthRotation.InterpolationDegree))
	}
	if c.Deformation.LoveNumbersFile == "" && len(c.Deformation.HN) != len(c.Deformation.LN) {
		errs = append(errs, fmt.Errorf("hn and ln differ in length (%d, %d)", len(c.Deformation.HN), len(c.Deformation.LN)))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing sample ratio must be in [0, 1], got %g", c.Tracing.SampleRatio))
	}
	for i, t := range c.Tides {
		if _, _, err := tides.ParseKind(t.Type); err != nil {
			errs = append(errs, fmt.Errorf("tides[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// TideSpecs returns the configured components for tides.New.
func (c *Config) TideSpecs() []tides.Spec {
	specs := make([]tides.Spec, len(c.Tides))
	for i, t := range c.Tides {
		specs[i] = t.Spec
	}
	return specs
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
