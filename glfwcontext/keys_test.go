package glfwcontext

import (
	"testing"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goocean/ocean"
)

func binding(t *testing.T, key glfw.Key) KeyBinding {
	t.Helper()
	for _, b := range ParameterBindings() {
		if b.Key == key {
			return b
		}
	}
	t.Fatalf("no binding for key %v", key)
	return KeyBinding{}
}

func TestBindingsAdjustValues(t *testing.T) {
	v := ocean.Values{Size: 250, Choppiness: 1.5, Exposure: 0.35}
	v.Wind[0], v.Wind[1] = 10, 10

	binding(t, glfw.KeyD).Apply(&v)
	binding(t, glfw.KeyS).Apply(&v)
	binding(t, glfw.KeyX).Apply(&v)
	if v.Wind[0] != 11 || v.Wind[1] != 9 {
		t.Errorf("wind = %v, want (11, 9)", v.Wind)
	}
	if v.Size != 275 {
		t.Errorf("size = %v, want 275", v.Size)
	}
}

func TestBindingsClampAtZero(t *testing.T) {
	v := ocean.Values{Choppiness: 0.05, Exposure: 0.01, Size: 1}
	binding(t, glfw.KeyQ).Apply(&v)
	binding(t, glfw.KeyMinus).Apply(&v)
	binding(t, glfw.KeyZ).Apply(&v)
	if v.Choppiness != 0 || v.Exposure != 0 || v.Size != 1 {
		t.Errorf("values = %+v, want choppiness 0, exposure 0, size 1", v)
	}
}

func TestBindingKeysAreUnique(t *testing.T) {
	seen := map[glfw.Key]bool{glfw.KeyEscape: true}
	for _, b := range ParameterBindings() {
		if seen[b.Key] {
			t.Errorf("key %v bound twice", b.Key)
		}
		seen[b.Key] = true
	}
}
