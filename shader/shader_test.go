package shader

import (
	"strings"
	"testing"

	"github.com/richinsley/goocean/graphics"
)

var kernels = []graphics.Kernel{
	graphics.KernelInitialSpectrum,
	graphics.KernelPhase,
	graphics.KernelSpectrum,
	graphics.KernelSubtransformHorizontal,
	graphics.KernelSubtransformVertical,
	graphics.KernelNormals,
}

func TestKernelSources(t *testing.T) {
	for _, k := range kernels {
		src, err := Kernel(k)
		if err != nil {
			t.Fatalf("%v: %v", k, err)
		}
		if !strings.HasPrefix(src, "#version 300 es\n") {
			t.Errorf("%v: source does not start with the WebGL2 version line", k)
		}
		if strings.Count(src, "void main()") != 1 {
			t.Errorf("%v: want exactly one main", k)
		}
		for _, in := range KernelInputs(k) {
			if !strings.Contains(src, "uniform sampler2D "+in+";") {
				t.Errorf("%v: input %s is not declared", k, in)
			}
		}
	}
}

func TestSubtransformDirection(t *testing.T) {
	h, _ := Kernel(graphics.KernelSubtransformHorizontal)
	v, _ := Kernel(graphics.KernelSubtransformVertical)
	if !strings.Contains(h, "#define HORIZONTAL") {
		t.Error("horizontal kernel lacks the HORIZONTAL define")
	}
	if strings.Contains(v, "#define HORIZONTAL") {
		t.Error("vertical kernel defines HORIZONTAL")
	}
}

func TestKernelInputCounts(t *testing.T) {
	want := map[graphics.Kernel]int{
		graphics.KernelInitialSpectrum:        0,
		graphics.KernelPhase:                  1,
		graphics.KernelSpectrum:               2,
		graphics.KernelSubtransformHorizontal: 1,
		graphics.KernelSubtransformVertical:   1,
		graphics.KernelNormals:                1,
	}
	for k, n := range want {
		if got := len(KernelInputs(k)); got != n {
			t.Errorf("%v: %d inputs, want %d", k, got, n)
		}
	}
}

func TestUnknownKernel(t *testing.T) {
	if _, err := Kernel(graphics.Kernel(99)); err == nil {
		t.Error("Kernel(99) succeeded")
	}
}

func TestSurfaceShadersDeclareMaterialUniforms(t *testing.T) {
	for _, gles := range []bool{false, true} {
		vs := SurfaceVertex(gles)
		for _, u := range []string{UniformProjectionMatrix, UniformViewMatrix, UniformSize, UniformGeometrySize, UniformDisplacementMap} {
			if !strings.Contains(vs, u) {
				t.Errorf("gles=%v: surface vertex shader lacks %s", gles, u)
			}
		}
	}
	fs := SurfaceFragment()
	for _, u := range []string{UniformNormalMap, UniformCameraPosition, UniformOceanColor, UniformSkyColor, UniformSunDirection, UniformExposure} {
		if !strings.Contains(fs, u) {
			t.Errorf("surface fragment shader lacks %s", u)
		}
	}
}
