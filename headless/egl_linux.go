//go:build linux

package headless

import (
	"fmt"
	"log"
	"time"
	"unsafe"
)

/*
#cgo LDFLAGS: -lEGL -lGLESv2
#include <EGL/egl.h>
#include <EGL/eglext.h>

// Extension entry points are resolved at runtime and called through these
// wrappers.
static PFNEGLQUERYDEVICESEXTPROC eglQueryDevicesEXT_ptr = NULL;
static PFNEGLGETPLATFORMDISPLAYEXTPROC eglGetPlatformDisplayEXT_ptr = NULL;

static void initialize_egl_extension_pointers() {
    eglQueryDevicesEXT_ptr = (PFNEGLQUERYDEVICESEXTPROC) eglGetProcAddress("eglQueryDevicesEXT");
    eglGetPlatformDisplayEXT_ptr = (PFNEGLGETPLATFORMDISPLAYEXTPROC) eglGetProcAddress("eglGetPlatformDisplayEXT");
}

static EGLDisplay get_platform_display(EGLenum platform, void *native_display, const EGLint *attrib_list) {
    if (eglGetPlatformDisplayEXT_ptr) {
        return eglGetPlatformDisplayEXT_ptr(platform, native_display, attrib_list);
    }
    return EGL_NO_DISPLAY;
}

static EGLBoolean query_devices(EGLint max_devices, EGLDeviceEXT *devices, EGLint *num_devices) {
    if (eglQueryDevicesEXT_ptr) {
        return eglQueryDevicesEXT_ptr(max_devices, devices, num_devices);
    }
    return EGL_FALSE;
}
*/
import "C"

// Headless is an EGL pbuffer context with an OpenGL ES 3 client. It
// implements graphics.Context for record and self-check runs on machines
// without a display.
type Headless struct {
	display C.EGLDisplay
	context C.EGLContext
	surface C.EGLSurface
	width   int
	height  int
	start   time.Time
}

// getEGLDisplay prefers a display on an enumerated device and falls back to
// the default display.
func getEGLDisplay() (C.EGLDisplay, error) {
	C.initialize_egl_extension_pointers()

	var numDevices C.EGLint
	if C.query_devices(0, nil, &numDevices) == C.EGL_FALSE || numDevices == 0 {
		log.Println("Warning: EGL_EXT_device_query not supported or no devices found. Falling back to EGL_DEFAULT_DISPLAY.")
		display := C.eglGetDisplay(C.EGLNativeDisplayType(C.EGL_DEFAULT_DISPLAY))
		if display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
			return display, fmt.Errorf("eglGetDisplay(EGL_DEFAULT_DISPLAY) failed")
		}
		return display, nil
	}

	devices := make([]C.EGLDeviceEXT, numDevices)
	if C.query_devices(numDevices, &devices[0], &numDevices) == C.EGL_FALSE {
		return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("failed to query EGL devices")
	}
	for i := 0; i < int(numDevices); i++ {
		display := C.get_platform_display(C.EGL_PLATFORM_DEVICE_EXT, unsafe.Pointer(devices[i]), nil)
		if display != C.EGLDisplay(C.EGL_NO_DISPLAY) {
			log.Printf("Using EGL device %d of %d.", i, numDevices)
			return display, nil
		}
	}
	return C.EGLDisplay(C.EGL_NO_DISPLAY), fmt.Errorf("no EGL device yielded a display")
}

// New creates a width×height pbuffer and makes its context current on the
// calling thread.
func New(width, height int) (*Headless, error) {
	h := &Headless{
		display: C.EGLDisplay(C.EGL_NO_DISPLAY),
		context: C.EGLContext(C.EGL_NO_CONTEXT),
		surface: C.EGLSurface(C.EGL_NO_SURFACE),
		width:   width,
		height:  height,
	}

	var err error
	if h.display, err = getEGLDisplay(); err != nil {
		return nil, fmt.Errorf("failed to get EGL display: %w", err)
	}

	var major, minor C.EGLint
	if C.eglInitialize(h.display, &major, &minor) == C.EGL_FALSE {
		return nil, fmt.Errorf("failed to initialize EGL")
	}
	log.Printf("EGL Initialized. Version: %d.%d", major, minor)

	configAttribs := []C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_PBUFFER_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_DEPTH_SIZE, 24,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_ES3_BIT,
		C.EGL_NONE,
	}
	var config C.EGLConfig
	var numConfig C.EGLint
	if C.eglChooseConfig(h.display, &configAttribs[0], &config, 1, &numConfig) == C.EGL_FALSE || numConfig == 0 {
		h.Shutdown()
		return nil, fmt.Errorf("failed to choose EGL config")
	}

	pbufferAttribs := []C.EGLint{
		C.EGL_WIDTH, C.EGLint(width),
		C.EGL_HEIGHT, C.EGLint(height),
		C.EGL_NONE,
	}
	h.surface = C.eglCreatePbufferSurface(h.display, config, &pbufferAttribs[0])
	if h.surface == C.EGLSurface(C.EGL_NO_SURFACE) {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create pbuffer surface")
	}

	contextAttribs := []C.EGLint{
		C.EGL_CONTEXT_CLIENT_VERSION, 3,
		C.EGL_NONE,
	}
	h.context = C.eglCreateContext(h.display, config, C.EGLContext(C.EGL_NO_CONTEXT), &contextAttribs[0])
	if h.context == C.EGLContext(C.EGL_NO_CONTEXT) {
		h.Shutdown()
		return nil, fmt.Errorf("failed to create EGL context")
	}

	if err := h.makeCurrent(); err != nil {
		h.Shutdown()
		return nil, err
	}
	h.start = time.Now()
	return h, nil
}

func (h *Headless) makeCurrent() error {
	if C.eglMakeCurrent(h.display, h.surface, h.surface, h.context) == C.EGL_FALSE {
		return fmt.Errorf("failed to make EGL context current (0x%x)", int(C.eglGetError()))
	}
	return nil
}

// isCurrent reports whether this context is bound on the calling thread.
func (h *Headless) isCurrent() bool {
	return h.context != C.EGLContext(C.EGL_NO_CONTEXT) && C.eglGetCurrentContext() == h.context
}

func (h *Headless) MakeCurrent() {
	if err := h.makeCurrent(); err != nil {
		log.Printf("Headless: %v", err)
	}
}

func (h *Headless) Shutdown() {
	if h.display == C.EGLDisplay(C.EGL_NO_DISPLAY) {
		return
	}
	C.eglMakeCurrent(h.display, C.EGLSurface(C.EGL_NO_SURFACE), C.EGLSurface(C.EGL_NO_SURFACE), C.EGLContext(C.EGL_NO_CONTEXT))
	if h.context != C.EGLContext(C.EGL_NO_CONTEXT) {
		C.eglDestroyContext(h.display, h.context)
		h.context = C.EGLContext(C.EGL_NO_CONTEXT)
	}
	if h.surface != C.EGLSurface(C.EGL_NO_SURFACE) {
		C.eglDestroySurface(h.display, h.surface)
		h.surface = C.EGLSurface(C.EGL_NO_SURFACE)
	}
	C.eglTerminate(h.display)
	h.display = C.EGLDisplay(C.EGL_NO_DISPLAY)
}

// ShouldClose is always false; headless runs end on their own.
func (h *Headless) ShouldClose() bool { return false }

func (h *Headless) EndFrame() {
	C.eglSwapBuffers(h.display, h.surface)
}

func (h *Headless) GetFramebufferSize() (int, int) { return h.width, h.height }

func (h *Headless) Time() float64 { return time.Since(h.start).Seconds() }

func (h *Headless) IsGLES() bool { return true }

func (h *Headless) GetDragDelta() (dx, dy, scroll float32) { return 0, 0, 0 }
