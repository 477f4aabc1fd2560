package ocean_test

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/softgpu"
	"github.com/richinsley/goocean/spectral"
)

func newTransformer(t *testing.T, n int) (*ocean.Transformer, *softgpu.Device) {
	t.Helper()
	dev, err := softgpu.New(n)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := ocean.NewTransformer(dev, graphics.FormatFloat32)
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr, dev
}

func transformTargets(t *testing.T, dev *softgpu.Device, data []float32) (src, dst graphics.Target) {
	t.Helper()
	src, err := dev.NewTarget(graphics.TargetDesc{Name: "src", Format: graphics.FormatFloat32, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	dst, err = dev.NewTarget(graphics.TargetDesc{Name: "dst", Format: graphics.FormatFloat32})
	if err != nil {
		t.Fatal(err)
	}
	return src, dst
}

func TestTransformerOfImpulseIsConstant(t *testing.T) {
	const n = 16
	tr, dev := newTransformer(t, n)
	data := make([]float32, n*n*4)
	copy(data, []float32{1, 0, 2, -1})
	src, dst := transformTargets(t, dev, data)

	if err := tr.Run(src, dst); err != nil {
		t.Fatal(err)
	}
	out, err := dev.Read(dst)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out); i += 4 {
		got := toFloat64(out[i : i+4])
		if !floats.EqualApprox(got, []float64{1, 0, 2, -1}, 1e-6) {
			t.Fatalf("texel %d = %v, want (1,0,2,-1)", i/4, got)
		}
	}
}

func TestTransformerMatchesReference(t *testing.T) {
	for _, n := range []int{2, 4, 8, 32} {
		tr, dev := newTransformer(t, n)
		rng := rand.New(rand.NewPCG(uint64(n), 1))
		data := make([]float32, n*n*4)
		for i := range data {
			data[i] = float32(rng.NormFloat64())
		}
		src, dst := transformTargets(t, dev, data)

		dev.ResetTrace()
		if err := tr.Run(src, dst); err != nil {
			t.Fatal(err)
		}
		if got := len(dev.Trace()); got != tr.Passes() || got != 2*spectral.Iterations(n) {
			t.Errorf("n=%d: %d draws, want %d", n, got, 2*spectral.Iterations(n))
		}
		out, err := dev.Read(dst)
		if err != nil {
			t.Fatal(err)
		}
		want, err := spectral.ReferenceTransform(data, n)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(toFloat64(out), toFloat64(want), 1e-4*float64(n)) {
			t.Errorf("n=%d: Stockham output differs from reference", n)
		}

		back, err := spectral.InverseReference(out, n)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(toFloat64(back), toFloat64(data), 1e-4) {
			t.Errorf("n=%d: inverse of transform does not recover the input", n)
		}
	}
}

func TestTransformerRejectsBadResolution(t *testing.T) {
	dev, err := softgpu.New(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ocean.NewTransformer(dev, graphics.FormatFloat32); err == nil {
		t.Error("NewTransformer accepted a 1×1 device")
	}
}

func TestTransformerCloseReleasesScratch(t *testing.T) {
	dev, err := softgpu.New(8)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := ocean.NewTransformer(dev, graphics.FormatFloat32)
	if err != nil {
		t.Fatal(err)
	}
	if dev.LiveTargets() != 2 {
		t.Fatalf("LiveTargets() = %d, want 2", dev.LiveTargets())
	}
	tr.Close()
	if dev.LiveTargets() != 0 {
		t.Errorf("LiveTargets() = %d after Close, want 0", dev.LiveTargets())
	}
}
