// Package spectral holds the per-texel mathematics of the ocean simulation.
//
// Every GPU kernel in the shader package has a counterpart here, written so
// that the CPU device and the tests evaluate exactly the same expressions the
// fragment shaders do.
package spectral

import "math"

const (
	// G is gravitational acceleration in m/s².
	G = 9.81
	// KM is the wavenumber of the gravity-capillary spectral peak.
	KM = 370.0
	// CM is the phase speed at KM.
	CM = 0.23
	// Omega is the inverse wave age of a fully developed sea.
	Omega = 0.84

	TwoPi = 2 * math.Pi
)

// Fold maps a texel coordinate in [0,n) to its signed frequency index in
// [-n/2, n/2).
func Fold(i, n int) int {
	if i < n/2 {
		return i
	}
	return i - n
}

// Mirror returns the texel coordinate holding the frequency -Fold(i, n).
func Mirror(i, n int) int {
	return (n - i) % n
}

// WaveVector returns K = 2π·(n,m)/size for texel (x,y) of an n×n grid.
func WaveVector(x, y, n int, size float64) (kx, ky float64) {
	kx = TwoPi * float64(Fold(x, n)) / size
	ky = TwoPi * float64(Fold(y, n)) / size
	return kx, ky
}

// Dispersion is the deep-water dispersion relation with capillary correction,
// ω(k) = √(g·k·(1+(k/KM)²)).
func Dispersion(k float64) float64 {
	r := k / KM
	return math.Sqrt(G * k * (1 + r*r))
}

// InitialAmplitude evaluates the unified directional spectrum for wavevector
// (kx,ky) and returns the real amplitude h0 stored in the initial spectrum
// texture. The zero wavevector and a calm wind both yield zero.
func InitialAmplitude(kx, ky, windX, windY, size float64) float64 {
	k := math.Hypot(kx, ky)
	wind := math.Hypot(windX, windY)
	if k == 0 || wind == 0 {
		return 0
	}

	kp := G * sq(Omega/wind)

	c := Dispersion(k) / k
	cp := Dispersion(kp) / kp

	lpm := math.Exp(-1.25 * sq(kp/k))
	gamma := 1.7
	sigma := 0.08 * (1 + 4*math.Pow(Omega, -3))
	peak := math.Exp(-sq(math.Sqrt(k/kp)-1) / 2 * sq(sigma))
	jp := math.Pow(gamma, peak)
	fp := lpm * jp * math.Exp(-Omega/math.Sqrt(10)*(math.Sqrt(k/kp)-1))
	alphap := 0.006 * math.Sqrt(Omega)
	bl := 0.5 * alphap * cp / c * fp

	z0 := 0.000037 * sq(wind) / G * math.Pow(wind/cp, 0.9)
	uStar := 0.41 * wind / math.Log(10/z0)
	var alpham float64
	if uStar < CM {
		alpham = 0.01 * (1 + math.Log(uStar/CM))
	} else {
		alpham = 0.01 * (1 + 3*math.Log(uStar/CM))
	}
	fm := math.Exp(-0.25 * sq(k/KM-1))
	bh := 0.5 * alpham * CM / c * fm * lpm

	a0 := math.Ln2 / 4
	am := 0.13 * uStar / CM
	delta := math.Tanh(a0 + 4*math.Pow(c/cp, 2.5) + am*math.Pow(CM/c, 2.5))

	cosPhi := (windX*kx + windY*ky) / (wind * k)

	s := (1 / TwoPi) * math.Pow(k, -4) * (bl + bh) * (1 + delta*(2*cosPhi*cosPhi-1))

	dk := TwoPi / size
	return math.Sqrt(s/2) * dk
}

// AdvancePhase returns (phase + ω(k)·dt) mod 2π, kept inside [0, 2π) even when
// rounding lands exactly on the modulus.
func AdvancePhase(phase, k, dt float64) float64 {
	p := math.Mod(phase+Dispersion(k)*dt, TwoPi)
	if p < 0 {
		p += TwoPi
	}
	if float32(p) >= float32(TwoPi) {
		p = 0
	}
	return p
}

// SpectrumTexel combines the initial amplitude at K and at -K with the current
// phase and returns the packed texel (hX + i·h, hZ) as RGBA for texel (x,y)
// of an n×n grid.
//
// h(K) = h0(K)·e^{iφ} + conj(h0(-K))·e^{-iφ}; the horizontal fields are
// -i·(K/|K|)·h scaled by choppiness. The DC texel is zero. On the Nyquist
// column hX is zero, and on the Nyquist row hZ is zero: there the frequency
// is its own mirror, so the odd factor Kx/|K| (or Ky/|K|) would make the
// field anti-Hermitian and its transform would land in the height channel.
func SpectrumTexel(h0, h0Mirror complex128, phase float64, x, y, n int, size, choppiness float64) [4]float64 {
	kx, ky := WaveVector(x, y, n, size)
	k := math.Hypot(kx, ky)
	if k == 0 {
		return [4]float64{}
	}
	pv := complex(math.Cos(phase), math.Sin(phase))
	h := h0*pv + conj(h0Mirror)*conj(pv)

	dirX, dirZ := kx/k, ky/k
	if x == n/2 {
		dirX = 0
	}
	if y == n/2 {
		dirZ = 0
	}
	hx := -1i * h * complex(dirX*choppiness, 0)
	hz := -1i * h * complex(dirZ*choppiness, 0)

	packed := hx + 1i*h
	return [4]float64{real(packed), imag(packed), real(hz), imag(hz)}
}

func sq(x float64) float64 { return x * x }

func conj(z complex128) complex128 { return complex(real(z), -imag(z)) }
