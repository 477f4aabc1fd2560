package graphics

// Context defines the interface for an OpenGL context hosting the ocean.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	IsGLES() bool
	// GetDragDelta returns the cursor movement in pixels since the last call
	// while the primary button is held, and the scroll offset accumulated
	// since the last call.
	GetDragDelta() (dx, dy, scroll float32)
}
