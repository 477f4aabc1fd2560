package softgpu

import (
	"math"

	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/spectral"
)

type kernel func(n, x, y int, u *graphics.Uniforms, in []*target) [4]float64

func inputCount(k graphics.Kernel) int {
	switch k {
	case graphics.KernelInitialSpectrum:
		return 0
	case graphics.KernelSpectrum:
		return 2
	default:
		return 1
	}
}

func kernelFunc(k graphics.Kernel) kernel {
	switch k {
	case graphics.KernelInitialSpectrum:
		return initialSpectrum
	case graphics.KernelPhase:
		return phase
	case graphics.KernelSpectrum:
		return spectrum
	case graphics.KernelSubtransformHorizontal:
		return subtransform(true)
	case graphics.KernelSubtransformVertical:
		return subtransform(false)
	default:
		return normals
	}
}

// fetch reads texel (x,y) with repeat addressing.
func (t *target) fetch(n, x, y int) [4]float64 {
	x = ((x % n) + n) % n
	y = ((y % n) + n) % n
	o := (y*n + x) * 4
	return [4]float64{float64(t.data[o]), float64(t.data[o+1]), float64(t.data[o+2]), float64(t.data[o+3])}
}

func initialSpectrum(n, x, y int, u *graphics.Uniforms, _ []*target) [4]float64 {
	kx, ky := spectral.WaveVector(x, y, n, float64(u.Size))
	h := spectral.InitialAmplitude(kx, ky, float64(u.Wind[0]), float64(u.Wind[1]), float64(u.Size))
	return [4]float64{h, 0, 0, 0}
}

func phase(n, x, y int, u *graphics.Uniforms, in []*target) [4]float64 {
	kx, ky := spectral.WaveVector(x, y, n, float64(u.Size))
	p := spectral.AdvancePhase(in[0].fetch(n, x, y)[0], math.Hypot(kx, ky), float64(u.DeltaTime))
	return [4]float64{p, 0, 0, 0}
}

// spectrum reads phases from in[0] and the initial spectrum from in[1].
func spectrum(n, x, y int, u *graphics.Uniforms, in []*target) [4]float64 {
	p := in[0].fetch(n, x, y)[0]
	h0 := in[1].fetch(n, x, y)
	h0m := in[1].fetch(n, spectral.Mirror(x, n), spectral.Mirror(y, n))
	return spectral.SpectrumTexel(complex(h0[0], h0[1]), complex(h0m[0], h0m[1]), p, x, y, n, float64(u.Size), float64(u.Choppiness))
}

func subtransform(horizontal bool) kernel {
	return func(n, x, y int, u *graphics.Uniforms, in []*target) [4]float64 {
		s := int(u.SubtransformSize)
		index := y
		if horizontal {
			index = x
		}
		evenIndex, oddIndex := spectral.Butterfly(index, s, n)
		var even, odd [4]float64
		if horizontal {
			even, odd = in[0].fetch(n, evenIndex, y), in[0].fetch(n, oddIndex, y)
		} else {
			even, odd = in[0].fetch(n, x, evenIndex), in[0].fetch(n, x, oddIndex)
		}
		w := spectral.Twiddle(index, s)
		a := complex(even[0], even[1]) + w*complex(odd[0], odd[1])
		b := complex(even[2], even[3]) + w*complex(odd[2], odd[3])
		return [4]float64{real(a), imag(a), real(b), imag(b)}
	}
}

func normals(n, x, y int, u *graphics.Uniforms, in []*target) [4]float64 {
	disp := func(dx, dy int) spectral.Vec3 {
		t := in[0].fetch(n, x+dx, y+dy)
		return spectral.Vec3{t[0], t[1], t[2]}
	}
	texelSize := float64(u.Size) / float64(n)
	// top is -y in texture space, matching the -z world edge.
	nrm := spectral.Normal(disp(0, 0), disp(1, 0), disp(-1, 0), disp(0, -1), disp(0, 1), texelSize)
	return [4]float64{nrm[0], nrm[1], nrm[2], 1}
}
