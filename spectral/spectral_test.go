package spectral

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestInitialAmplitudeZeroAtDC(t *testing.T) {
	winds := [][2]float64{{10, 10}, {0.5, -3}, {-25, 4}, {0, 0}}
	sizes := []float64{1, 100, 250, 5000}
	for _, w := range winds {
		for _, s := range sizes {
			if h := InitialAmplitude(0, 0, w[0], w[1], s); h != 0 {
				t.Errorf("wind %v size %v: DC amplitude = %v, want 0", w, s, h)
			}
		}
	}
}

func TestInitialAmplitudeFiniteAndNonNegative(t *testing.T) {
	n := 64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			kx, ky := WaveVector(x, y, n, 250)
			h := InitialAmplitude(kx, ky, 10, 10, 250)
			if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
				t.Fatalf("texel (%d,%d): amplitude %v", x, y, h)
			}
		}
	}
}

func TestInitialAmplitudeFavoursWindDirection(t *testing.T) {
	k := TwoPi * 4 / 250
	along := InitialAmplitude(k, 0, 10, 0, 250)
	across := InitialAmplitude(0, k, 10, 0, 250)
	if along <= across {
		t.Errorf("amplitude along wind %v should exceed amplitude across wind %v", along, across)
	}
}

// Values evaluated independently from the unified spectrum shader expression
// for wind (10,10) and a 250 m patch.
func TestInitialAmplitudeGolden(t *testing.T) {
	tests := []struct {
		n, m int
		want float64
	}{
		{1, 0, 0.225235437008329},
		{0, 1, 0.225235437008329},
		{3, 2, 0.085640187018368},
		{-5, 7, 0.008907859332369908},
		{20, -3, 0.0020822060268960193},
		{-32, -32, 0.00045700958479150057},
	}
	for _, tt := range tests {
		kx, ky := TwoPi*float64(tt.n)/250, TwoPi*float64(tt.m)/250
		got := InitialAmplitude(kx, ky, 10, 10, 250)
		if !scalar.EqualWithinRel(got, tt.want, 1e-9) {
			t.Errorf("(%d,%d): amplitude = %.17g, want %.17g", tt.n, tt.m, got, tt.want)
		}
	}
}

func TestFoldAndMirror(t *testing.T) {
	n := 8
	want := []int{0, 1, 2, 3, -4, -3, -2, -1}
	for i, w := range want {
		if got := Fold(i, n); got != w {
			t.Errorf("Fold(%d) = %d, want %d", i, got, w)
		}
	}
	for i := 0; i < n; i++ {
		m := Mirror(i, n)
		if i != n/2 && Fold(m, n) != -Fold(i, n) {
			t.Errorf("Mirror(%d) = %d folds to %d, want %d", i, m, Fold(m, n), -Fold(i, n))
		}
	}
	if Mirror(0, n) != 0 {
		t.Errorf("Mirror(0) = %d, want 0", Mirror(0, n))
	}
}

func TestAdvancePhaseStaysInRange(t *testing.T) {
	limit := float32(TwoPi)
	phase := 0.0
	for frame := 0; frame < 10000; frame++ {
		for _, k := range []float64{0, 0.01, 0.5, 3, 100, 370, 2000} {
			p := AdvancePhase(phase, k, 1.0/60.0+float64(frame%7)*0.013)
			if p < 0 || float32(p) >= limit {
				t.Fatalf("frame %d k %v: phase %v outside [0, 2π)", frame, k, p)
			}
			phase = p
		}
	}
	if p := AdvancePhase(TwoPi-1e-12, 0, 0); float32(p) >= limit {
		t.Errorf("phase just below 2π rounded to %v", p)
	}
}

func TestDispersionDeepWaterLimit(t *testing.T) {
	k := 0.05
	want := math.Sqrt(G * k)
	if got := Dispersion(k); math.Abs(got-want)/want > 1e-6 {
		t.Errorf("Dispersion(%v) = %v, want ≈ %v", k, got, want)
	}
}

func TestSpectrumTexelZeroAtDC(t *testing.T) {
	got := SpectrumTexel(complex(3, 0), complex(2, 0), 1.2, 0, 0, 16, 250, 1.5)
	if got != [4]float64{} {
		t.Errorf("DC texel = %v, want zero", got)
	}
}

func TestSpectrumTexelDropsNyquistHorizontalFields(t *testing.T) {
	const n, size = 16, 250.0
	h0, h0m := complex(0.3, 0), complex(0.2, 0)

	// Nyquist column: no x displacement, only height and z.
	got := SpectrumTexel(h0, h0m, 0.7, n/2, 3, n, size, 1.5)
	noChop := SpectrumTexel(h0, h0m, 0.7, n/2, 3, n, size, 0)
	if got[0] != noChop[0] || got[1] != noChop[1] {
		t.Errorf("Nyquist column texel %v carries x displacement, want first pair %v", got, noChop[:2])
	}
	if got[2] == 0 && got[3] == 0 {
		t.Errorf("Nyquist column texel %v lost its z displacement", got)
	}

	// Nyquist row: no z displacement.
	got = SpectrumTexel(h0, h0m, 0.7, 3, n/2, n, size, 1.5)
	noChop = SpectrumTexel(h0, h0m, 0.7, 3, n/2, n, size, 0)
	if got[2] != 0 || got[3] != 0 {
		t.Errorf("Nyquist row texel %v carries z displacement", got)
	}
	if got[0] == noChop[0] && got[1] == noChop[1] {
		t.Errorf("Nyquist row texel %v lost its x displacement", got)
	}
}

// stockham runs the butterfly passes over rows then columns exactly as the
// subtransform kernels do.
func stockham(in []complex128, n int) []complex128 {
	src := append([]complex128(nil), in...)
	dst := make([]complex128, len(in))
	iterations := Iterations(n)
	for pass := 0; pass < 2*iterations; pass++ {
		s := SubtransformSize(pass % iterations)
		horizontal := pass < iterations
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				index := y
				if horizontal {
					index = x
				}
				even, odd := Butterfly(index, s, n)
				var e, o complex128
				if horizontal {
					e, o = src[y*n+even], src[y*n+odd]
				} else {
					e, o = src[even*n+x], src[odd*n+x]
				}
				dst[y*n+x] = e + Twiddle(index, s)*o
			}
		}
		src, dst = dst, src
	}
	return src
}

func TestStockhamMatchesReference(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16} {
		field := make([]complex128, n*n)
		rgba := make([]float32, n*n*4)
		for i := range field {
			re := math.Sin(float64(i)*0.37) + 0.25
			im := math.Cos(float64(i)*1.3) - 0.5
			field[i] = complex(re, im)
			rgba[i*4] = float32(re)
			rgba[i*4+1] = float32(im)
		}
		got := stockham(field, n)
		ref, err := ReferenceTransform(rgba, n)
		if err != nil {
			t.Fatal(err)
		}
		for i := range got {
			if math.Abs(real(got[i])-float64(ref[i*4])) > 1e-4 || math.Abs(imag(got[i])-float64(ref[i*4+1])) > 1e-4 {
				t.Fatalf("n=%d index %d: stockham %v, reference (%v,%v)", n, i, got[i], ref[i*4], ref[i*4+1])
			}
		}
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	n := 16
	rgba := make([]float32, n*n*4)
	for i := range rgba {
		rgba[i] = float32(math.Sin(float64(i) * 0.11))
	}
	spatial, err := ReferenceTransform(rgba, n)
	if err != nil {
		t.Fatal(err)
	}
	back, err := InverseReference(spatial, n)
	if err != nil {
		t.Fatal(err)
	}
	a := make([]float64, len(rgba))
	b := make([]float64, len(rgba))
	for i := range rgba {
		a[i], b[i] = float64(rgba[i]), float64(back[i])
	}
	if !floats.EqualApprox(a, b, 1e-4) {
		t.Error("inverse of the reference transform did not recover the input")
	}
}

func TestReferenceTransformRejectsBadSize(t *testing.T) {
	if _, err := ReferenceTransform(make([]float32, 12*12*4), 12); err == nil {
		t.Error("expected an error for a non power-of-two size")
	}
}

func TestSeedPhasesSymmetricAndDeterministic(t *testing.T) {
	n := 32
	a := SeedPhases(n, 42)
	b := SeedPhases(n, 42)
	c := SeedPhases(n, 43)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seed 42 produced different data at %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical phases")
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			p := a[(y*n+x)*4]
			if p < 0 || p >= float32(TwoPi) {
				t.Errorf("phase %v at (%d,%d) outside [0, 2π)", p, x, y)
			}
			m := a[(Mirror(y, n)*n+Mirror(x, n))*4]
			if p != m {
				t.Errorf("phase at (%d,%d) = %v, mirror = %v", x, y, p, m)
			}
		}
	}
}

func TestNormalOfFlatSurfacePointsUp(t *testing.T) {
	var zero Vec3
	got := Normal(zero, zero, zero, zero, zero, 3.9)
	if math.Abs(got[0]) > 1e-12 || math.Abs(got[1]-1) > 1e-12 || math.Abs(got[2]) > 1e-12 {
		t.Errorf("flat normal = %v, want (0,1,0)", got)
	}
}

func TestNormalTiltsAwayFromSlope(t *testing.T) {
	// height rising toward +x tilts the normal toward -x.
	got := Normal(Vec3{}, Vec3{0, 1, 0}, Vec3{0, -1, 0}, Vec3{}, Vec3{}, 1)
	if got[0] >= 0 || got[1] <= 0 {
		t.Errorf("normal on +x slope = %v, want negative x and positive y", got)
	}
}
