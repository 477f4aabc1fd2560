package softgpu

import (
	"errors"
	"testing"

	"github.com/x448/float16"

	"github.com/richinsley/goocean/graphics"
)

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := New(12); err == nil {
		t.Error("New(12) succeeded")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	d, err := New(4, WithUnsupportedFormats(graphics.FormatFloat32))
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.NewTarget(graphics.TargetDesc{Name: "x", Format: graphics.FormatFloat32})
	if !errors.Is(err, graphics.ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := d.NewTarget(graphics.TargetDesc{Name: "y", Format: graphics.FormatFloat16}); err != nil {
		t.Errorf("half float target: %v", err)
	}
}

func TestSeedDataIsCopiedAndQuantized(t *testing.T) {
	d, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	seed := make([]float32, 16)
	seed[0] = 0.1
	tg, err := d.NewTarget(graphics.TargetDesc{Name: "s", Format: graphics.FormatFloat16, Data: seed})
	if err != nil {
		t.Fatal(err)
	}
	seed[0] = 5
	got, err := d.Read(tg)
	if err != nil {
		t.Fatal(err)
	}
	if want := float16.Fromfloat32(0.1).Float32(); got[0] != want {
		t.Errorf("texel = %v, want %v", got[0], want)
	}

	if _, err := d.NewTarget(graphics.TargetDesc{Name: "short", Data: make([]float32, 3)}); err == nil {
		t.Error("short seed data accepted")
	}
}

func TestDrawValidatesInputs(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := d.NewTarget(graphics.TargetDesc{Name: "a"})
	b, _ := d.NewTarget(graphics.TargetDesc{Name: "b"})
	phase, _ := d.NewProgram(graphics.KernelPhase)
	u := &graphics.Uniforms{Size: 1, DeltaTime: 0.1}

	if err := d.Draw(phase, a, u, a); err == nil {
		t.Error("drawing a target into itself succeeded")
	}
	if err := d.Draw(phase, a, u); err == nil {
		t.Error("draw with missing input succeeded")
	}
	d.DeleteTarget(b)
	if err := d.Draw(phase, a, u, b); err == nil {
		t.Error("draw from a deleted target succeeded")
	}
	if len(d.Trace()) != 0 {
		t.Errorf("rejected draws were traced: %v", d.Trace())
	}
}

func TestDrawHookWrapsDeviceLost(t *testing.T) {
	cause := errors.New("gpu hang")
	d, err := New(4, WithDrawHook(func(k graphics.Kernel) error {
		if k == graphics.KernelNormals {
			return cause
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := d.NewTarget(graphics.TargetDesc{Name: "src"})
	dst, _ := d.NewTarget(graphics.TargetDesc{Name: "dst"})
	p, _ := d.NewProgram(graphics.KernelNormals)
	err = d.Draw(p, dst, &graphics.Uniforms{Size: 4}, src)
	if !errors.Is(err, graphics.ErrDeviceLost) || !errors.Is(err, cause) {
		t.Errorf("error = %v, want ErrDeviceLost wrapping the cause", err)
	}
}

func TestClearColorFillsBeforeKernel(t *testing.T) {
	d, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	dst, _ := d.NewTarget(graphics.TargetDesc{Name: "h0"})
	p, _ := d.NewProgram(graphics.KernelInitialSpectrum)
	u := &graphics.Uniforms{Size: 250, Clear: true, ClearColor: [4]float32{1, 1, 1, 0}}
	if err := d.Draw(p, dst, u); err != nil {
		t.Fatal(err)
	}
	out, _ := d.Read(dst)
	// The kernel writes every channel, so no clear colour survives.
	for i := 0; i < len(out); i += 4 {
		if out[i+1] != 0 || out[i+2] != 0 || out[i+3] != 0 {
			t.Fatalf("texel %d = %v", i/4, out[i:i+4])
		}
	}
}

func TestFetchRepeats(t *testing.T) {
	tg := &target{data: make([]float32, 4*4*4)}
	tg.data[(3*4+3)*4] = 7
	if got := tg.fetch(4, -1, -1)[0]; got != 7 {
		t.Errorf("fetch(-1,-1) = %v, want 7", got)
	}
	if got := tg.fetch(4, 7, 7)[0]; got != 7 {
		t.Errorf("fetch(7,7) = %v, want 7", got)
	}
}
