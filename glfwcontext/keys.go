package glfwcontext

import (
	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goocean/ocean"
)

// KeyBinding adjusts the live parameters when Key is pressed.
type KeyBinding struct {
	Key   glfw.Key
	Help  string
	Apply func(v *ocean.Values)
}

// ParameterBindings returns the default keyboard controls.
func ParameterBindings() []KeyBinding {
	return []KeyBinding{
		{glfw.KeyA, "wind x -1", func(v *ocean.Values) { v.Wind[0]-- }},
		{glfw.KeyD, "wind x +1", func(v *ocean.Values) { v.Wind[0]++ }},
		{glfw.KeyS, "wind y -1", func(v *ocean.Values) { v.Wind[1]-- }},
		{glfw.KeyW, "wind y +1", func(v *ocean.Values) { v.Wind[1]++ }},
		{glfw.KeyQ, "choppiness -0.1", func(v *ocean.Values) { v.Choppiness = max(0, v.Choppiness-0.1) }},
		{glfw.KeyE, "choppiness +0.1", func(v *ocean.Values) { v.Choppiness += 0.1 }},
		{glfw.KeyZ, "size /1.1", func(v *ocean.Values) { v.Size = max(1, v.Size/1.1) }},
		{glfw.KeyX, "size *1.1", func(v *ocean.Values) { v.Size *= 1.1 }},
		{glfw.KeyMinus, "exposure -0.05", func(v *ocean.Values) { v.Exposure = max(0, v.Exposure-0.05) }},
		{glfw.KeyEqual, "exposure +0.05", func(v *ocean.Values) { v.Exposure += 0.05 }},
	}
}

// BindParameters registers every binding against p. Each press goes through
// Parameters.Apply, so it regenerates the spectrum on the next frame.
func (c *Context) BindParameters(p *ocean.Parameters, bindings []KeyBinding) {
	for _, b := range bindings {
		apply := b.Apply
		c.RegisterKeyCallback(b.Key, func() {
			p.Apply(apply)
			v := p.Snapshot()
			ocean.Logger().Debug("parameters changed from keyboard",
				"wind", v.Wind, "size", v.Size, "choppiness", v.Choppiness, "exposure", v.Exposure)
		})
	}
}
