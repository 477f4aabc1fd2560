package ocean

import (
	"fmt"

	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/spectral"
)

// Transformer performs the unnormalised 2D Stockham FFT of two complex fields
// packed per texel (rg and ba). It owns its two scratch targets and programs.
type Transformer struct {
	dev        graphics.Device
	iterations int
	horizontal graphics.Program
	vertical   graphics.Program
	scratch    [2]graphics.Target
	uniforms   graphics.Uniforms
}

// NewTransformer creates the programs and ping/pong scratch targets on dev.
func NewTransformer(dev graphics.Device, format graphics.Format) (*Transformer, error) {
	n := dev.Resolution()
	if !spectral.IsPowerOfTwo(n) || n < 2 {
		return nil, &ConfigurationError{Field: "resolution", Reason: fmt.Sprintf("%d is not a power of two >= 2", n)}
	}
	t := &Transformer{dev: dev, iterations: spectral.Iterations(n)}
	var err error
	if t.horizontal, err = dev.NewProgram(graphics.KernelSubtransformHorizontal); err != nil {
		t.Close()
		return nil, &ResourceCreationError{Resource: "horizontal subtransform program", Format: format, Err: err}
	}
	if t.vertical, err = dev.NewProgram(graphics.KernelSubtransformVertical); err != nil {
		t.Close()
		return nil, &ResourceCreationError{Resource: "vertical subtransform program", Format: format, Err: err}
	}
	for i, name := range []string{"ping_transform", "pong_transform"} {
		desc := graphics.TargetDesc{Name: name, Format: format, Filter: graphics.FilterNearest, Wrap: graphics.WrapClamp}
		if t.scratch[i], err = dev.NewTarget(desc); err != nil {
			t.Close()
			return nil, &ResourceCreationError{Resource: name, Format: format, Err: err}
		}
	}
	return t, nil
}

// Passes returns the number of draws one Run issues.
func (t *Transformer) Passes() int { return 2 * t.iterations }

// Run transforms src into dst: log2(N) horizontal passes then log2(N)
// vertical passes, alternating between the scratch targets, with the final
// pass written straight into dst. src and dst must differ from the scratch
// targets and from each other.
func (t *Transformer) Run(src, dst graphics.Target) error {
	last := 2*t.iterations - 1
	for pass := 0; pass <= last; pass++ {
		prog := t.horizontal
		if pass >= t.iterations {
			prog = t.vertical
		}
		out := t.scratch[pass%2]
		if pass == last {
			out = dst
		}
		t.uniforms = graphics.Uniforms{SubtransformSize: float32(spectral.SubtransformSize(pass % t.iterations))}
		if err := t.dev.Draw(prog, out, &t.uniforms, src); err != nil {
			return fmt.Errorf("pass %d of %d: %w", pass+1, last+1, err)
		}
		src = out
	}
	return nil
}

// Close releases the programs and scratch targets.
func (t *Transformer) Close() {
	for _, p := range []graphics.Program{t.horizontal, t.vertical} {
		if p != nil {
			t.dev.DeleteProgram(p)
		}
	}
	for _, s := range t.scratch {
		if s != nil {
			t.dev.DeleteTarget(s)
		}
	}
	t.horizontal, t.vertical = nil, nil
	t.scratch = [2]graphics.Target{}
}
