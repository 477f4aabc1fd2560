package graphics

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when a device cannot render into any
	// floating-point RGBA target.
	ErrUnsupportedFormat = errors.New("floating-point render target unsupported")
	// ErrDeviceLost is returned when a draw could not be issued or completed.
	ErrDeviceLost = errors.New("graphics device lost")
)

// Kernel identifies one of the simulation passes a Device knows how to run.
type Kernel int

const (
	KernelInitialSpectrum Kernel = iota
	KernelPhase
	KernelSpectrum
	KernelSubtransformHorizontal
	KernelSubtransformVertical
	KernelNormals
)

var kernelNames = [...]string{
	KernelInitialSpectrum:        "initial_spectrum",
	KernelPhase:                  "phase",
	KernelSpectrum:               "spectrum",
	KernelSubtransformHorizontal: "subtransform_horizontal",
	KernelSubtransformVertical:   "subtransform_vertical",
	KernelNormals:                "normals",
}

func (k Kernel) String() string {
	if k >= 0 && int(k) < len(kernelNames) {
		return kernelNames[k]
	}
	return fmt.Sprintf("kernel(%d)", int(k))
}

// Format is the storage precision of a render target.
type Format int

const (
	FormatFloat32 Format = iota
	FormatFloat16
)

func (f Format) String() string {
	if f == FormatFloat16 {
		return "RGBA16F"
	}
	return "RGBA32F"
}

// Filter selects texel filtering when a target is sampled with normalised
// coordinates.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Wrap selects the addressing mode outside [0,1].
type Wrap int

const (
	WrapClamp Wrap = iota
	WrapRepeat
)

// TargetDesc describes an N×N RGBA floating-point render target.
type TargetDesc struct {
	Name   string
	Format Format
	Filter Filter
	Wrap   Wrap
	// Data optionally seeds the target with N*N*4 floats in row-major RGBA order.
	Data []float32
}

// Target is a render target owned by a Device. It is both a draw target and
// a texture that later passes sample.
type Target interface {
	Name() string
	Format() Format
}

// Program is a compiled kernel owned by whoever created it.
type Program interface {
	Kernel() Kernel
}

// Uniforms carries every per-draw value any kernel reads. Kernels ignore the
// fields they do not use.
type Uniforms struct {
	Wind             [2]float32
	Size             float32
	DeltaTime        float32
	Choppiness       float32
	SubtransformSize float32
	// Clear, when set, clears the destination to ClearColor before drawing.
	Clear      bool
	ClearColor [4]float32
}

// Device executes simulation kernels on square power-of-two targets. All
// methods must be called from the goroutine that owns the device.
type Device interface {
	// Resolution returns the side length N of every target.
	Resolution() int
	NewTarget(desc TargetDesc) (Target, error)
	NewProgram(k Kernel) (Program, error)
	// Draw runs p over every texel of dst. Inputs are bound in order to the
	// kernel's samplers; dst must not appear among inputs.
	Draw(p Program, dst Target, u *Uniforms, inputs ...Target) error
	// Read copies a target back to the CPU. It is a diagnostic path and is
	// never part of the per-frame pipeline.
	Read(t Target) ([]float32, error)
	DeleteTarget(t Target)
	DeleteProgram(p Program)
}
