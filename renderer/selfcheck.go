package renderer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/richinsley/goocean/config"
	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/softgpu"
	"github.com/richinsley/goocean/spectral"
)

// Relative tolerances of the self-check per storage precision.
const (
	toleranceFloat32 = 1e-3
	toleranceFloat16 = 2e-2
)

// SelfCheckReport compares one GPU frame against the CPU device.
type SelfCheckReport struct {
	Resolution int
	Format     graphics.Format
	// TransformError is the relative error of the GPU FFT against a direct
	// transform of the GPU's own spectrum.
	TransformError float64
	// DisplacementError is the relative error of the GPU displacement map
	// against the CPU device.
	DisplacementError float64
	// NormalError is the largest absolute difference between normal maps.
	NormalError float64
	Tolerance   float64
}

func (r *SelfCheckReport) Passed() bool {
	return r.TransformError <= r.Tolerance &&
		r.DisplacementError <= r.Tolerance &&
		r.NormalError <= r.Tolerance*10
}

func (r *SelfCheckReport) String() string {
	return fmt.Sprintf("%dx%d %s: transform %.2e, displacement %.2e, normals %.2e (tolerance %.0e)",
		r.Resolution, r.Resolution, r.Format, r.TransformError, r.DisplacementError, r.NormalError, r.Tolerance)
}

// SelfCheck renders the first frame of sim and of a CPU simulation built from
// the same configuration and seed, then compares their maps. sim must not
// have rendered yet.
func SelfCheck(sim *ocean.Simulation, cfg *config.Config, dt float32) (*SelfCheckReport, error) {
	if sim.Frame() != 0 {
		return nil, errors.New("self-check needs a simulation that has not rendered")
	}

	cpuCfg := *cfg
	cpuCfg.UseHalfFloat = sim.Format() == graphics.FormatFloat16
	dev, err := softgpu.New(cfg.Resolution)
	if err != nil {
		return nil, err
	}
	ref, err := ocean.New(dev, &cpuCfg, ocean.WithSeed(sim.Seed()))
	if err != nil {
		return nil, fmt.Errorf("creating cpu reference: %w", err)
	}
	defer ref.Close()

	camera := NewCamera()
	view, projection := camera.View(), camera.Projection(1, 1)
	if err := sim.Render(dt, view, projection, camera.Position()); err != nil {
		return nil, err
	}
	if err := ref.Render(dt, view, projection, camera.Position()); err != nil {
		return nil, fmt.Errorf("rendering cpu reference: %w", err)
	}

	report := &SelfCheckReport{
		Resolution: sim.Resolution(),
		Format:     sim.Format(),
		Tolerance:  toleranceFloat32,
	}
	if report.Format == graphics.FormatFloat16 {
		report.Tolerance = toleranceFloat16
	}

	spectrum, err := sim.ReadSpectrum()
	if err != nil {
		return nil, err
	}
	displacement, err := sim.ReadDisplacement()
	if err != nil {
		return nil, err
	}
	direct, err := spectral.ReferenceTransform(spectrum, sim.Resolution())
	if err != nil {
		return nil, err
	}
	report.TransformError = relativeError(displacement, direct)

	cpuDisplacement, err := ref.ReadDisplacement()
	if err != nil {
		return nil, err
	}
	report.DisplacementError = relativeError(displacement, cpuDisplacement)

	normals, err := sim.ReadNormals()
	if err != nil {
		return nil, err
	}
	cpuNormals, err := ref.ReadNormals()
	if err != nil {
		return nil, err
	}
	report.NormalError = floats.Distance(toFloat64(normals), toFloat64(cpuNormals), math.Inf(1))

	ocean.Logger().Info("self-check finished", "report", report.String(), "passed", report.Passed())
	return report, nil
}

// relativeError is the largest absolute difference over the largest
// reference magnitude, considering only the rgb channels.
func relativeError(got, want []float32) float64 {
	g, w := rgb(got), rgb(want)
	if len(g) != len(w) {
		return math.Inf(1)
	}
	diff := floats.Distance(g, w, math.Inf(1))
	scale := floats.Norm(w, math.Inf(1))
	if scale == 0 {
		return diff
	}
	return diff / scale
}

func rgb(rgba []float32) []float64 {
	out := make([]float64, 0, len(rgba)/4*3)
	for i := 0; i+3 < len(rgba); i += 4 {
		out = append(out, float64(rgba[i]), float64(rgba[i+1]), float64(rgba[i+2]))
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
