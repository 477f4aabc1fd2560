package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/richinsley/goocean/config"
)

// OutputManager writes per-window pass timings to perf.csv and the run's
// configuration to config.yaml.
type OutputManager struct {
	dir               string
	perfFile          *os.File
	perfHeaderWritten bool
}

// NewOutputManager creates dir and opens perf.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	return &OutputManager{dir: dir, perfFile: f}, nil
}

// WriteConfig saves the configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePerf appends one window of statistics to perf.csv.
func (om *OutputManager) WritePerf(s Stats) error {
	if om == nil {
		return nil
	}
	records := []StatsCSV{s.ToCSV()}
	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

func (om *OutputManager) Close() error {
	if om == nil || om.perfFile == nil {
		return nil
	}
	return om.perfFile.Close()
}
