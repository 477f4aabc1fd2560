// Package softgpu is a CPU implementation of graphics.Device. It evaluates
// every simulation kernel texel by texel with the same expressions as the
// GLSL kernels, which makes the whole pipeline observable without a GPU.
package softgpu

import (
	"fmt"
	"slices"

	"github.com/x448/float16"

	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/spectral"
)

type target struct {
	desc graphics.TargetDesc
	data []float32
}

func (t *target) Name() string            { return t.desc.Name }
func (t *target) Format() graphics.Format { return t.desc.Format }

type program struct {
	kernel graphics.Kernel
}

func (p *program) Kernel() graphics.Kernel { return p.kernel }

// Option configures a Device.
type Option func(*Device)

// WithUnsupportedFormats makes NewTarget reject the given formats the way a
// GPU lacking float render-target support would.
func WithUnsupportedFormats(formats ...graphics.Format) Option {
	return func(d *Device) { d.unsupported = append(d.unsupported, formats...) }
}

// WithDrawHook installs a hook run before every draw. A non-nil error aborts
// the draw and is returned wrapped in graphics.ErrDeviceLost.
func WithDrawHook(hook func(k graphics.Kernel) error) Option {
	return func(d *Device) { d.hook = hook }
}

// Device is a CPU graphics.Device.
type Device struct {
	n           int
	unsupported []graphics.Format
	hook        func(graphics.Kernel) error
	trace       []graphics.Kernel
	live        map[*target]struct{}
}

// New creates a device whose targets are n×n.
func New(n int, opts ...Option) (*Device, error) {
	if !spectral.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("resolution %d is not a power of two", n)
	}
	d := &Device{n: n, live: make(map[*target]struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Device) Resolution() int { return d.n }

func (d *Device) NewTarget(desc graphics.TargetDesc) (graphics.Target, error) {
	if slices.Contains(d.unsupported, desc.Format) {
		return nil, fmt.Errorf("target %s as %s: %w", desc.Name, desc.Format, graphics.ErrUnsupportedFormat)
	}
	t := &target{desc: desc, data: make([]float32, d.n*d.n*4)}
	if desc.Data != nil {
		if len(desc.Data) != len(t.data) {
			return nil, fmt.Errorf("target %s: seed data has %d floats, want %d", desc.Name, len(desc.Data), len(t.data))
		}
		copy(t.data, desc.Data)
		quantize(t.data, desc.Format)
	}
	t.desc.Data = nil
	d.live[t] = struct{}{}
	return t, nil
}

func (d *Device) NewProgram(k graphics.Kernel) (graphics.Program, error) {
	if k < graphics.KernelInitialSpectrum || k > graphics.KernelNormals {
		return nil, fmt.Errorf("unknown kernel %v", k)
	}
	return &program{kernel: k}, nil
}

func (d *Device) Draw(p graphics.Program, dst graphics.Target, u *graphics.Uniforms, inputs ...graphics.Target) error {
	prog, ok := p.(*program)
	if !ok {
		return fmt.Errorf("program %T does not belong to this device", p)
	}
	out, err := d.own(dst)
	if err != nil {
		return err
	}
	srcs := make([]*target, len(inputs))
	for i, in := range inputs {
		if in == dst {
			return fmt.Errorf("%v: target %s is both input and output", prog.kernel, out.desc.Name)
		}
		if srcs[i], err = d.own(in); err != nil {
			return err
		}
	}
	if want := inputCount(prog.kernel); len(srcs) != want {
		return fmt.Errorf("%v: got %d inputs, want %d", prog.kernel, len(srcs), want)
	}
	if d.hook != nil {
		if err := d.hook(prog.kernel); err != nil {
			return fmt.Errorf("%v: %w: %w", prog.kernel, graphics.ErrDeviceLost, err)
		}
	}

	if u.Clear {
		for i := 0; i < len(out.data); i += 4 {
			copy(out.data[i:i+4], u.ClearColor[:])
		}
	}
	kernel := kernelFunc(prog.kernel)
	for y := 0; y < d.n; y++ {
		for x := 0; x < d.n; x++ {
			texel := kernel(d.n, x, y, u, srcs)
			o := (y*d.n + x) * 4
			for c := 0; c < 4; c++ {
				out.data[o+c] = float32(texel[c])
			}
		}
	}
	quantize(out.data, out.desc.Format)
	d.trace = append(d.trace, prog.kernel)
	return nil
}

func (d *Device) Read(t graphics.Target) ([]float32, error) {
	tt, err := d.own(t)
	if err != nil {
		return nil, err
	}
	return slices.Clone(tt.data), nil
}

func (d *Device) DeleteTarget(t graphics.Target) {
	if tt, ok := t.(*target); ok {
		delete(d.live, tt)
	}
}

func (d *Device) DeleteProgram(graphics.Program) {}

// Trace returns the kernels drawn so far, in order.
func (d *Device) Trace() []graphics.Kernel {
	return slices.Clone(d.trace)
}

// ResetTrace forgets recorded draws.
func (d *Device) ResetTrace() {
	d.trace = d.trace[:0]
}

// LiveTargets returns the number of targets created and not yet deleted.
func (d *Device) LiveTargets() int {
	return len(d.live)
}

func (d *Device) own(t graphics.Target) (*target, error) {
	tt, ok := t.(*target)
	if !ok {
		return nil, fmt.Errorf("target %T does not belong to this device", t)
	}
	if _, ok := d.live[tt]; !ok {
		return nil, fmt.Errorf("target %s was deleted", tt.desc.Name)
	}
	return tt, nil
}

func quantize(data []float32, f graphics.Format) {
	if f != graphics.FormatFloat16 {
		return
	}
	for i, v := range data {
		data[i] = float16.Fromfloat32(v).Float32()
	}
}
