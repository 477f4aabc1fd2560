package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Resolution != 64 {
		t.Errorf("resolution = %d, want 64", cfg.Resolution)
	}
	if cfg.PatchSize != 250 || cfg.Choppiness != 1.5 || cfg.Wind != [2]float32{10, 10} {
		t.Errorf("unexpected simulation defaults: %+v", cfg)
	}
	if cfg.SunDirection != [3]float32{-1, 1, 1} {
		t.Errorf("sun direction = %v", cfg.SunDirection)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocean.yaml")
	if err := os.WriteFile(path, []byte("resolution: 128\nwind: [3, -4]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Resolution != 128 {
		t.Errorf("resolution = %d, want 128", cfg.Resolution)
	}
	if cfg.Wind != [2]float32{3, -4} {
		t.Errorf("wind = %v, want [3 -4]", cfg.Wind)
	}
	if cfg.PatchSize != 250 {
		t.Errorf("patch size = %v, default should survive the overlay", cfg.PatchSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestValidateRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, 1, 3, 48, 100, -64} {
		cfg := Default()
		cfg.Resolution = n
		err := cfg.Validate()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "resolution" {
			t.Errorf("resolution %d: got %v, want a resolution ValidationError", n, err)
		}
	}
}

func TestValidateRejectsBadScalars(t *testing.T) {
	cases := map[string]func(*Config){
		"patch_size":          func(c *Config) { c.PatchSize = 0 },
		"geometry_size":       func(c *Config) { c.GeometrySize = -1 },
		"geometry_resolution": func(c *Config) { c.GeometryResolution = 0 },
		"exposure":            func(c *Config) { c.Exposure = -0.1 },
		"choppiness":          func(c *Config) { c.Choppiness = float32(math.NaN()) },
		"wind":                func(c *Config) { c.Wind[0] = float32(math.Inf(1)) },
		"sun_direction":       func(c *Config) { c.SunDirection = [3]float32{} },
	}
	for field, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		var ve *ValidationError
		if err := cfg.Validate(); !errors.As(err, &ve) || ve.Field != field {
			t.Errorf("%s: got %v", field, err)
		}
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Resolution = 256
	cfg.PhaseSeed = 7
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *back != *cfg {
		t.Errorf("reloaded %+v, want %+v", back, cfg)
	}
}
