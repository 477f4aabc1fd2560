// Package glbackend runs the ocean kernels on OpenGL 4.1 or OpenGL ES 3.
// Every render target is a float texture attached to its own framebuffer and
// every kernel is one fragment program drawn over a fullscreen quad.
package glbackend

import (
	"fmt"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/shader"
	"github.com/richinsley/goocean/spectral"
	"github.com/richinsley/goocean/translator"
)

var glInitOnce sync.Once

// InitGL loads the GL function pointers for the current context once per
// process.
func InitGL() error {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	return nil
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Option configures a Device.
type Option func(*Device)

// WithGLES selects ESSL output from the translator and GLES vertex shaders.
func WithGLES(gles bool) Option {
	return func(d *Device) { d.gles = gles }
}

type program struct {
	kernel  graphics.Kernel
	handle  uint32
	locs    uniformLocations
	samples []int32
}

func (p *program) Kernel() graphics.Kernel { return p.kernel }

type uniformLocations struct {
	resolution       int32
	wind             int32
	size             int32
	deltaTime        int32
	choppiness       int32
	subtransformSize int32
}

// Device is a graphics.Device backed by the GL context current on the
// calling thread. All methods must be called from that thread.
type Device struct {
	n           int
	gles        bool
	floatLinear bool
	quadVAO uint32
	quadVBO uint32
	live    map[*target]struct{}
}

// New creates an n×n device. The GL context must be current.
func New(n int, opts ...Option) (*Device, error) {
	if !spectral.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("resolution %d is not a power of two", n)
	}
	if err := InitGL(); err != nil {
		return nil, err
	}
	d := &Device{n: n, live: make(map[*target]struct{})}
	for _, opt := range opts {
		opt(d)
	}

	d.floatLinear = !d.gles || hasExtension("GL_OES_texture_float_linear")

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	ocean.Logger().Info("gl device created",
		"resolution", n, "gles", d.gles, "float_linear", d.floatLinear,
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"version", gl.GoStr(gl.GetString(gl.VERSION)))
	return d, nil
}

func (d *Device) Resolution() int { return d.n }

// IsGLES reports whether the device compiles for OpenGL ES.
func (d *Device) IsGLES() bool { return d.gles }

func (d *Device) NewTarget(desc graphics.TargetDesc) (graphics.Target, error) {
	if f := samplerFilter(desc.Filter, desc.Format, d.floatLinear); f != desc.Filter {
		ocean.Logger().Debug("32-bit float targets are not filterable, sampling nearest", "target", desc.Name)
		desc.Filter = f
	}
	t, err := newTarget(d.n, desc)
	if err != nil {
		return nil, err
	}
	d.live[t] = struct{}{}
	return t, nil
}

func (d *Device) NewProgram(k graphics.Kernel) (graphics.Program, error) {
	src, err := shader.Kernel(k)
	if err != nil {
		return nil, err
	}
	code, mapped, err := translator.Fragment(src, d.gles)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", k, err)
	}
	handle, err := LinkProgram(shader.FullscreenVertex(d.gles), code)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", k, err)
	}

	p := &program{kernel: k, handle: handle}
	p.locs = uniformLocations{
		resolution:       UniformLocation(handle, mapped, shader.UniformResolution),
		wind:             UniformLocation(handle, mapped, shader.UniformWind),
		size:             UniformLocation(handle, mapped, shader.UniformSize),
		deltaTime:        UniformLocation(handle, mapped, shader.UniformDeltaTime),
		choppiness:       UniformLocation(handle, mapped, shader.UniformChoppiness),
		subtransformSize: UniformLocation(handle, mapped, shader.UniformSubtransformSize),
	}
	for _, name := range shader.KernelInputs(k) {
		p.samples = append(p.samples, UniformLocation(handle, mapped, name))
	}
	ocean.Logger().Debug("kernel program linked", "kernel", k.String(), "program", handle)
	return p, nil
}

func (d *Device) Draw(p graphics.Program, dst graphics.Target, u *graphics.Uniforms, inputs ...graphics.Target) error {
	prog, ok := p.(*program)
	if !ok || prog.handle == 0 {
		return fmt.Errorf("program %T does not belong to this device", p)
	}
	out, err := d.own(dst)
	if err != nil {
		return err
	}
	if len(inputs) != len(prog.samples) {
		return fmt.Errorf("%v: got %d inputs, want %d", prog.kernel, len(inputs), len(prog.samples))
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

	gl.BindFramebuffer(gl.FRAMEBUFFER, out.fbo)
	gl.Viewport(0, 0, int32(d.n), int32(d.n))
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	if u.Clear {
		gl.ClearColor(u.ClearColor[0], u.ClearColor[1], u.ClearColor[2], u.ClearColor[3])
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}

	gl.UseProgram(prog.handle)
	setUniforms(prog.locs, d.n, u)
	for i, src := range srcs {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, src.textureID)
		if loc := prog.samples[i]; loc != -1 {
			gl.Uniform1i(loc, int32(i))
		}
	}

	d.DrawQuad()

	for i := range srcs {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if err := glError(); err != nil {
		return fmt.Errorf("%v into %s: %w: %w", prog.kernel, out.desc.Name, graphics.ErrDeviceLost, err)
	}
	return nil
}

func setUniforms(locs uniformLocations, n int, u *graphics.Uniforms) {
	if locs.resolution != -1 {
		gl.Uniform1i(locs.resolution, int32(n))
	}
	if locs.wind != -1 {
		gl.Uniform2f(locs.wind, u.Wind[0], u.Wind[1])
	}
	if locs.size != -1 {
		gl.Uniform1f(locs.size, u.Size)
	}
	if locs.deltaTime != -1 {
		gl.Uniform1f(locs.deltaTime, u.DeltaTime)
	}
	if locs.choppiness != -1 {
		gl.Uniform1f(locs.choppiness, u.Choppiness)
	}
	if locs.subtransformSize != -1 {
		gl.Uniform1f(locs.subtransformSize, u.SubtransformSize)
	}
}

// Read copies a target back as float32 RGBA rows, bottom row first.
func (d *Device) Read(t graphics.Target) ([]float32, error) {
	tt, err := d.own(t)
	if err != nil {
		return nil, err
	}
	data := make([]float32, d.n*d.n*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, tt.fbo)
	gl.ReadPixels(0, 0, int32(d.n), int32(d.n), gl.RGBA, gl.FLOAT, gl.Ptr(data))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if err := glError(); err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", tt.desc.Name, graphics.ErrDeviceLost, err)
	}
	return data, nil
}

func (d *Device) DeleteTarget(t graphics.Target) {
	if tt, ok := t.(*target); ok {
		if _, live := d.live[tt]; live {
			tt.destroy()
			delete(d.live, tt)
		}
	}
}

func (d *Device) DeleteProgram(p graphics.Program) {
	if prog, ok := p.(*program); ok && prog.handle != 0 {
		gl.DeleteProgram(prog.handle)
		prog.handle = 0
	}
}

// TextureID returns the GL texture behind a target created by this device,
// or 0 for any other target.
func (d *Device) TextureID(t graphics.Target) uint32 {
	if tt, ok := t.(*target); ok {
		return tt.textureID
	}
	return 0
}

// Shutdown releases the quad and every target still alive.
func (d *Device) Shutdown() {
	for t := range d.live {
		t.destroy()
	}
	clear(d.live)
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
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

// DrawQuad draws the fullscreen quad with whatever program and framebuffer
// are bound.
func (d *Device) DrawQuad() {
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}
