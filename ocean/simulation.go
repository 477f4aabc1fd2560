// Package ocean runs a spectral ocean simulation on a graphics.Device.
//
// Each frame advances the phase field, combines it with the cached initial
// spectrum, transforms the packed spectrum to a displacement map with a
// Stockham FFT and derives a normal map from it. Every intermediate stays on
// the device; nothing is read back during Render.
package ocean

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goocean/config"
	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/spectral"
)

// Pass names reported to an Observer and used as RenderError stages.
const (
	PassInitialSpectrum = "initial_spectrum"
	PassPhase           = "phase"
	PassSpectrum        = "spectrum"
	PassTransform       = "transform"
	PassNormals         = "normals"
)

// Observer is notified around each frame and pass, typically to time them.
type Observer interface {
	BeginFrame()
	BeginPass(name string)
	EndFrame()
}

type nopObserver struct{}

func (nopObserver) BeginFrame()      {}
func (nopObserver) BeginPass(string) {}
func (nopObserver) EndFrame()        {}

// Option configures a Simulation.
type Option func(*Simulation)

// WithObserver reports frame and pass boundaries to o.
func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observer = o }
}

// WithSeed fixes the seed of the initial phase field, overriding the
// configured one.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.seed = seed }
}

type programs struct {
	initialSpectrum graphics.Program
	phase           graphics.Program
	spectrum        graphics.Program
	normals         graphics.Program
}

// Simulation owns every device resource of one ocean. It is driven from a
// single goroutine; only Params may be used concurrently.
type Simulation struct {
	dev        graphics.Device
	n          int
	format     graphics.Format
	clearColor [4]float32
	seed       uint64
	observer   Observer

	params   *Parameters
	mesh     *Mesh
	material *Material

	prog        programs
	transformer *Transformer

	seedPhase       graphics.Target
	initialSpectrum graphics.Target
	spectrum        graphics.Target
	displacement    graphics.Target
	normalMap       graphics.Target
	phases          [2]graphics.Target
	targets         []graphics.Target

	// pingPhase selects phases[0] as the current phase field.
	pingPhase bool
	// initial is set until the seed texture has been consumed.
	initial    bool
	normalSize float32
	frame      uint64
	uniforms   graphics.Uniforms
}

// New validates cfg and creates every render target and program the
// simulation needs on dev. Configuration problems yield a
// *ConfigurationError and device failures a *ResourceCreationError; both are
// fatal.
func New(dev graphics.Device, cfg *config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		var ve *config.ValidationError
		if errors.As(err, &ve) {
			return nil, &ConfigurationError{Field: ve.Field, Reason: ve.Reason, Err: err}
		}
		return nil, &ConfigurationError{Field: "config", Reason: err.Error(), Err: err}
	}
	if dev.Resolution() != cfg.Resolution {
		return nil, &ConfigurationError{
			Field:  "resolution",
			Reason: fmt.Sprintf("device is %d×%d, config asks for %d", dev.Resolution(), dev.Resolution(), cfg.Resolution),
		}
	}

	s := &Simulation{
		dev:        dev,
		n:          cfg.Resolution,
		format:     graphics.FormatFloat32,
		clearColor: cfg.ClearColor,
		seed:       cfg.PhaseSeed,
		observer:   nopObserver{},
		pingPhase:  true,
		initial:    true,
	}
	if cfg.UseHalfFloat {
		s.format = graphics.FormatFloat16
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == 0 {
		s.seed = uint64(time.Now().UnixNano())
	}

	s.params = NewParameters(Values{
		Wind:         mgl32.Vec2(cfg.Wind),
		Size:         cfg.PatchSize,
		Choppiness:   cfg.Choppiness,
		SunDirection: mgl32.Vec3(cfg.SunDirection),
		OceanColor:   mgl32.Vec3(cfg.OceanColor),
		SkyColor:     mgl32.Vec3(cfg.SkyColor),
		Exposure:     cfg.Exposure,
	})
	s.normalSize = cfg.PatchSize

	if err := s.createTargets(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.createPrograms(); err != nil {
		s.Close()
		return nil, err
	}

	s.mesh = NewMesh(cfg.GeometryResolution, cfg.GeometrySize, cfg.GeometryOrigin)
	s.material = &Material{
		GeometrySize:    cfg.GeometrySize,
		DisplacementMap: s.displacement,
		NormalMap:       s.normalMap,
		Projection:      mgl32.Ident4(),
		View:            mgl32.Ident4(),
	}
	s.material.update(s.params.Snapshot(), mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec3{})

	Logger().Info("ocean simulation created",
		"resolution", s.n, "format", s.format.String(), "seed", s.seed,
		"mesh_vertices", s.mesh.VertexCount())
	return s, nil
}

func (s *Simulation) createTargets() error {
	// The first target probes float support; the other precision is tried
	// before giving up.
	probe := graphics.TargetDesc{Name: "initial_spectrum", Filter: graphics.FilterNearest, Wrap: graphics.WrapRepeat}
	t, err := s.newTarget(probe)
	if errors.Is(err, graphics.ErrUnsupportedFormat) {
		fallback := graphics.FormatFloat16
		if s.format == graphics.FormatFloat16 {
			fallback = graphics.FormatFloat32
		}
		Logger().Warn("render target format unsupported, trying fallback",
			"format", s.format.String(), "fallback", fallback.String())
		s.format = fallback
		t, err = s.newTarget(probe)
	}
	if err != nil {
		return err
	}
	s.initialSpectrum = t

	nearestClamp := func(name string) graphics.TargetDesc {
		return graphics.TargetDesc{Name: name, Filter: graphics.FilterNearest, Wrap: graphics.WrapClamp}
	}
	linearRepeat := func(name string) graphics.TargetDesc {
		return graphics.TargetDesc{Name: name, Filter: graphics.FilterLinear, Wrap: graphics.WrapRepeat}
	}
	seed := nearestClamp("seed_phase")
	seed.Data = spectral.SeedPhases(s.n, s.seed)

	slots := []struct {
		dst  *graphics.Target
		desc graphics.TargetDesc
	}{
		{&s.seedPhase, seed},
		{&s.spectrum, nearestClamp("spectrum")},
		{&s.phases[0], nearestClamp("ping_phase")},
		{&s.phases[1], nearestClamp("pong_phase")},
		{&s.displacement, linearRepeat("displacement")},
		{&s.normalMap, linearRepeat("normal_map")},
	}
	for _, slot := range slots {
		if *slot.dst, err = s.newTarget(slot.desc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulation) newTarget(desc graphics.TargetDesc) (graphics.Target, error) {
	desc.Format = s.format
	t, err := s.dev.NewTarget(desc)
	if err != nil {
		return nil, &ResourceCreationError{Resource: desc.Name, Format: desc.Format, Err: err}
	}
	s.targets = append(s.targets, t)
	Logger().Debug("render target created", "name", desc.Name, "format", desc.Format.String(), "size", s.n)
	return t, nil
}

func (s *Simulation) createPrograms() error {
	slots := []struct {
		dst *graphics.Program
		k   graphics.Kernel
	}{
		{&s.prog.initialSpectrum, graphics.KernelInitialSpectrum},
		{&s.prog.phase, graphics.KernelPhase},
		{&s.prog.spectrum, graphics.KernelSpectrum},
		{&s.prog.normals, graphics.KernelNormals},
	}
	for _, slot := range slots {
		p, err := s.dev.NewProgram(slot.k)
		if err != nil {
			return &ResourceCreationError{Resource: slot.k.String() + " program", Format: s.format, Err: err}
		}
		*slot.dst = p
	}
	t, err := NewTransformer(s.dev, s.format)
	if err != nil {
		return err
	}
	s.transformer = t
	return nil
}

// Render advances the simulation by dt seconds and refreshes the surface
// material for the given camera. Passes run in a fixed order, each reading
// the previous one's output. A failed pass yields a *RenderError; the next
// call resumes from the last written buffers.
func (s *Simulation) Render(dt float32, view, projection mgl32.Mat4, camera mgl32.Vec3) error {
	values, changed := s.params.take()
	s.frame++
	s.observer.BeginFrame()
	defer s.observer.EndFrame()

	if changed {
		if err := s.renderInitialSpectrum(values); err != nil {
			s.params.Invalidate()
			return s.renderError(PassInitialSpectrum, err)
		}
		s.normalSize = values.Size
	}
	if err := s.renderPhase(values, dt); err != nil {
		return s.renderError(PassPhase, err)
	}
	if err := s.renderSpectrum(values); err != nil {
		return s.renderError(PassSpectrum, err)
	}
	if err := s.renderTransform(); err != nil {
		return s.renderError(PassTransform, err)
	}
	if err := s.renderNormals(); err != nil {
		return s.renderError(PassNormals, err)
	}

	s.material.update(values, view, projection, camera)
	return nil
}

func (s *Simulation) renderError(stage string, err error) error {
	Logger().Debug("ocean pass failed", "stage", stage, "frame", s.frame, "err", err)
	return &RenderError{Stage: stage, Frame: s.frame, Err: err}
}

func (s *Simulation) renderInitialSpectrum(v Values) error {
	s.observer.BeginPass(PassInitialSpectrum)
	s.uniforms = graphics.Uniforms{
		Wind:       v.Wind,
		Size:       v.Size,
		Clear:      true,
		ClearColor: s.clearColor,
	}
	Logger().Debug("regenerating initial spectrum", "wind", v.Wind, "size", v.Size)
	return s.dev.Draw(s.prog.initialSpectrum, s.initialSpectrum, &s.uniforms)
}

func (s *Simulation) renderPhase(v Values, dt float32) error {
	s.observer.BeginPass(PassPhase)
	current, next := s.phases[0], s.phases[1]
	if !s.pingPhase {
		current, next = next, current
	}
	if s.initial {
		current = s.seedPhase
	}
	s.uniforms = graphics.Uniforms{Size: v.Size, DeltaTime: dt}
	if err := s.dev.Draw(s.prog.phase, next, &s.uniforms, current); err != nil {
		return err
	}
	s.initial = false
	s.pingPhase = !s.pingPhase
	return nil
}

func (s *Simulation) currentPhase() graphics.Target {
	if s.initial {
		return s.seedPhase
	}
	if s.pingPhase {
		return s.phases[0]
	}
	return s.phases[1]
}

func (s *Simulation) renderSpectrum(v Values) error {
	s.observer.BeginPass(PassSpectrum)
	s.uniforms = graphics.Uniforms{Size: v.Size, Choppiness: v.Choppiness}
	return s.dev.Draw(s.prog.spectrum, s.spectrum, &s.uniforms, s.currentPhase(), s.initialSpectrum)
}

func (s *Simulation) renderTransform() error {
	s.observer.BeginPass(PassTransform)
	return s.transformer.Run(s.spectrum, s.displacement)
}

func (s *Simulation) renderNormals() error {
	s.observer.BeginPass(PassNormals)
	s.uniforms = graphics.Uniforms{Size: s.normalSize, Clear: true, ClearColor: s.clearColor}
	return s.dev.Draw(s.prog.normals, s.normalMap, &s.uniforms, s.displacement)
}

// Params returns the live-tunable parameters.
func (s *Simulation) Params() *Parameters { return s.params }

// Mesh returns the surface grid.
func (s *Simulation) Mesh() *Mesh { return s.mesh }

// Material returns the surface shader uniforms refreshed by Render.
func (s *Simulation) Material() *Material { return s.material }

// DisplacementMap is the read-only displacement texture (rgb = x, height, z).
func (s *Simulation) DisplacementMap() graphics.Target { return s.displacement }

// NormalMap is the read-only normal texture.
func (s *Simulation) NormalMap() graphics.Target { return s.normalMap }

// Resolution returns N.
func (s *Simulation) Resolution() int { return s.n }

// Format returns the storage format actually used for the targets.
func (s *Simulation) Format() graphics.Format { return s.format }

// Frame returns the number of Render calls so far.
func (s *Simulation) Frame() uint64 { return s.frame }

// Seed returns the seed of the initial phase field.
func (s *Simulation) Seed() uint64 { return s.seed }

// ReadDisplacement copies the displacement map back for diagnostics.
func (s *Simulation) ReadDisplacement() ([]float32, error) { return s.dev.Read(s.displacement) }

// ReadNormals copies the normal map back for diagnostics.
func (s *Simulation) ReadNormals() ([]float32, error) { return s.dev.Read(s.normalMap) }

// ReadInitialSpectrum copies the cached initial spectrum back for diagnostics.
func (s *Simulation) ReadInitialSpectrum() ([]float32, error) { return s.dev.Read(s.initialSpectrum) }

// ReadSpectrum copies the most recent packed spectrum back for diagnostics.
func (s *Simulation) ReadSpectrum() ([]float32, error) { return s.dev.Read(s.spectrum) }

// ReadPhases copies the current phase field back for diagnostics.
func (s *Simulation) ReadPhases() ([]float32, error) { return s.dev.Read(s.currentPhase()) }

// Close releases every device resource. The simulation must not be used
// afterwards.
func (s *Simulation) Close() {
	if s.transformer != nil {
		s.transformer.Close()
		s.transformer = nil
	}
	for _, p := range []graphics.Program{
		s.prog.initialSpectrum, s.prog.phase, s.prog.spectrum, s.prog.normals,
	} {
		if p != nil {
			s.dev.DeleteProgram(p)
		}
	}
	s.prog = programs{}
	for _, t := range s.targets {
		s.dev.DeleteTarget(t)
	}
	s.targets = nil
}
