package spectral

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/mjibson/go-dsp/fft"
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Iterations returns log2(n) for a power-of-two n.
func Iterations(n int) int {
	return bits.TrailingZeros(uint(n))
}

// SubtransformSize is the Stockham subtransform size used by iteration i of
// either the horizontal or the vertical sweep.
func SubtransformSize(i int) int {
	return 1 << (i + 1)
}

// Butterfly returns the input indices read when producing output index for a
// transform of size n at subtransform size s.
func Butterfly(index, s, n int) (even, odd int) {
	half := s / 2
	even = (index/s)*half + index%half
	return even, even + n/2
}

// Twiddle returns e^{-2πi·index/s}.
func Twiddle(index, s int) complex128 {
	arg := -TwoPi * float64(index) / float64(s)
	return complex(math.Cos(arg), math.Sin(arg))
}

// ReferenceTransform applies the same unnormalised 2D transform the Stockham
// passes perform, using go-dsp, to both complex fields packed in an n×n RGBA
// image. It is an oracle for tests and the self-check mode.
func ReferenceTransform(rgba []float32, n int) ([]float32, error) {
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("transform size %d is not a power of two", n)
	}
	if len(rgba) != n*n*4 {
		return nil, fmt.Errorf("expected %d floats, got %d", n*n*4, len(rgba))
	}

	first := make([][]complex128, n)
	second := make([][]complex128, n)
	for y := 0; y < n; y++ {
		first[y] = make([]complex128, n)
		second[y] = make([]complex128, n)
		for x := 0; x < n; x++ {
			o := (y*n + x) * 4
			first[y][x] = complex(float64(rgba[o]), float64(rgba[o+1]))
			second[y][x] = complex(float64(rgba[o+2]), float64(rgba[o+3]))
		}
	}

	first = fft.FFT2(first)
	second = fft.FFT2(second)

	out := make([]float32, len(rgba))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			o := (y*n + x) * 4
			out[o] = float32(real(first[y][x]))
			out[o+1] = float32(imag(first[y][x]))
			out[o+2] = float32(real(second[y][x]))
			out[o+3] = float32(imag(second[y][x]))
		}
	}
	return out, nil
}

// InverseReference undoes ReferenceTransform, recovering the spectrum from a
// transformed image within floating-point tolerance.
func InverseReference(rgba []float32, n int) ([]float32, error) {
	if len(rgba) != n*n*4 {
		return nil, fmt.Errorf("expected %d floats, got %d", n*n*4, len(rgba))
	}
	first := make([][]complex128, n)
	second := make([][]complex128, n)
	for y := 0; y < n; y++ {
		first[y] = make([]complex128, n)
		second[y] = make([]complex128, n)
		for x := 0; x < n; x++ {
			o := (y*n + x) * 4
			first[y][x] = complex(float64(rgba[o]), float64(rgba[o+1]))
			second[y][x] = complex(float64(rgba[o+2]), float64(rgba[o+3]))
		}
	}
	first = fft.IFFT2(first)
	second = fft.IFFT2(second)

	out := make([]float32, len(rgba))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			o := (y*n + x) * 4
			out[o] = float32(real(first[y][x]))
			out[o+1] = float32(imag(first[y][x]))
			out[o+2] = float32(real(second[y][x]))
			out[o+3] = float32(imag(second[y][x]))
		}
	}
	return out, nil
}
