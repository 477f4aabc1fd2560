package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

// Context is a GLFW window implementing graphics.Context. It accumulates
// primary-button drags and scroll for the orbit camera.
type Context struct {
	window *glfw.Window

	dragging   bool
	lastX      float64
	lastY      float64
	dragX      float64
	dragY      float64
	scroll     float64
	keyActions map[glfw.Key]func()
}

// New creates a window with a 4.1 core context. Record and self-check modes
// use a hidden window.
func New(width, height int, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	win, err := glfw.CreateWindow(width, height, "goocean", nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:     win,
		keyActions: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetMouseButtonCallback(c.glfwMouseButtonCallback)
	win.SetCursorPosCallback(c.glfwCursorPosCallback)
	win.SetScrollCallback(c.glfwScrollCallback)
	return c, nil
}

// RegisterKeyCallback runs f whenever key is pressed or held down.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyActions[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press || action == glfw.Repeat {
		if f, ok := c.keyActions[key]; ok {
			f()
		}
	}
}

func (c *Context) glfwMouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	c.dragging = action == glfw.Press
	if c.dragging {
		c.lastX, c.lastY = w.GetCursorPos()
	}
}

func (c *Context) glfwCursorPosCallback(w *glfw.Window, x, y float64) {
	if !c.dragging {
		return
	}
	c.dragX += x - c.lastX
	c.dragY += y - c.lastY
	c.lastX, c.lastY = x, y
}

func (c *Context) glfwScrollCallback(w *glfw.Window, xoff, yoff float64) {
	c.scroll += yoff
}

// GetDragDelta returns and resets the accumulated drag and scroll.
func (c *Context) GetDragDelta() (dx, dy, scroll float32) {
	dx, dy, scroll = float32(c.dragX), float32(c.dragY), float32(c.scroll)
	c.dragX, c.dragY, c.scroll = 0, 0, 0
	return dx, dy, scroll
}

func (c *Context) IsGLES() bool {
	// GLFW does not provide a direct way to check if the context is GLES.
	return false
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// DetachCurrent makes no context current on the calling thread.
func (c *Context) DetachCurrent() {
	glfw.DetachCurrentContext()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down GLFW. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
