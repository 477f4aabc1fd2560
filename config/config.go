// Package config provides configuration loading and validation for the ocean
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every construction parameter of an ocean simulation.
type Config struct {
	Resolution         int        `yaml:"resolution"`
	UseHalfFloat       bool       `yaml:"use_half_float"`
	PatchSize          float32    `yaml:"patch_size"`
	Wind               [2]float32 `yaml:"wind"`
	Choppiness         float32    `yaml:"choppiness"`
	ClearColor         [4]float32 `yaml:"clear_color"`
	GeometryOrigin     [2]float32 `yaml:"geometry_origin"`
	SunDirection       [3]float32 `yaml:"sun_direction"`
	OceanColor         [3]float32 `yaml:"ocean_color"`
	SkyColor           [3]float32 `yaml:"sky_color"`
	Exposure           float32    `yaml:"exposure"`
	GeometryResolution int        `yaml:"geometry_resolution"`
	GeometrySize       float32    `yaml:"geometry_size"`
	PhaseSeed          uint64     `yaml:"phase_seed"`
}

// ValidationError names the configuration field that was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("parsing embedded defaults: %v", err))
	}
	return cfg
}

// Load reads the embedded defaults and overlays the file at path, if any.
// Only the keys present in the file override defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration once, at construction time.
func (c *Config) Validate() error {
	if c.Resolution < 2 || c.Resolution&(c.Resolution-1) != 0 {
		return &ValidationError{"resolution", fmt.Sprintf("%d is not a power of two >= 2", c.Resolution)}
	}
	if c.GeometryResolution < 1 {
		return &ValidationError{"geometry_resolution", fmt.Sprintf("%d must be at least 1", c.GeometryResolution)}
	}

	scalars := []struct {
		name     string
		v        float32
		positive bool
	}{
		{"patch_size", c.PatchSize, true},
		{"geometry_size", c.GeometrySize, true},
		{"choppiness", c.Choppiness, false},
		{"exposure", c.Exposure, false},
	}
	for _, s := range scalars {
		if !finite(s.v) {
			return &ValidationError{s.name, "not a finite number"}
		}
		if s.positive && s.v <= 0 {
			return &ValidationError{s.name, fmt.Sprintf("%v must be positive", s.v)}
		}
	}
	if c.Exposure < 0 {
		return &ValidationError{"exposure", fmt.Sprintf("%v must not be negative", c.Exposure)}
	}

	vectors := map[string][]float32{
		"wind":            c.Wind[:],
		"clear_color":     c.ClearColor[:],
		"geometry_origin": c.GeometryOrigin[:],
		"sun_direction":   c.SunDirection[:],
		"ocean_color":     c.OceanColor[:],
		"sky_color":       c.SkyColor[:],
	}
	for name, v := range vectors {
		for _, f := range v {
			if !finite(f) {
				return &ValidationError{name, "contains a non-finite component"}
			}
		}
	}
	if c.SunDirection == [3]float32{} {
		return &ValidationError{"sun_direction", "must not be the zero vector"}
	}
	return nil
}

// WriteYAML saves the configuration as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
