// Package renderer hosts an ocean simulation in a GL context: it draws the
// displaced surface with an orbit camera, shows it in a window or encodes it
// with ffmpeg.
package renderer

import (
	"errors"
	"fmt"
	"log"
	"math"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goocean/glbackend"
	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/options"
	"github.com/richinsley/goocean/shader"
)

// maxFrameDelta caps the simulated step after a stall, such as a window drag.
const maxFrameDelta = 0.1

type Renderer struct {
	context           graphics.Context
	device            *glbackend.Device
	sim               *ocean.Simulation
	camera            *Camera
	surface           *surface
	offscreenRenderer *OffscreenRenderer
	blitProgram       uint32
	blitTextureLoc    int32
	flipProgram       uint32
	flipTextureLoc    int32
	width             int
	height            int
	recordMode        bool
	failedFrames      int
}

// New creates the surface and presentation resources for sim. The context
// must be current and dev must be the device sim was created on.
func New(ctx graphics.Context, dev *glbackend.Device, sim *ocean.Simulation, opts *options.RunOptions) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		device:     dev,
		sim:        sim,
		camera:     NewCamera(),
		width:      *opts.Width,
		height:     *opts.Height,
		recordMode: *opts.Mode == options.ModeRecord,
	}

	var err error
	if !r.recordMode {
		r.width, r.height = ctx.GetFramebufferSize()
	}
	r.offscreenRenderer, err = NewOffscreenRenderer(r.width, r.height)
	if err != nil {
		return nil, fmt.Errorf("failed to create offscreen renderer: %w", err)
	}
	r.surface, err = newSurface(sim.Mesh(), ctx.IsGLES())
	if err != nil {
		r.Shutdown()
		return nil, err
	}
	r.blitProgram, r.blitTextureLoc, err = newBlitProgram(false, ctx.IsGLES())
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	r.flipProgram, r.flipTextureLoc, err = newBlitProgram(true, ctx.IsGLES())
	if err != nil {
		r.Shutdown()
		return nil, fmt.Errorf("failed to create flip program: %w", err)
	}
	return r, nil
}

func newBlitProgram(flip, isGLES bool) (uint32, int32, error) {
	program, err := glbackend.LinkProgram(shader.BlitVertex(isGLES), shader.GetBlitFragmentShader(flip, isGLES))
	if err != nil {
		return 0, -1, err
	}
	return program, glbackend.UniformLocation(program, nil, shader.UniformTexture), nil
}

// Camera returns the orbit camera used for every frame.
func (r *Renderer) Camera() *Camera { return r.camera }

// FailedFrames counts frames whose simulation step failed.
func (r *Renderer) FailedFrames() int { return r.failedFrames }

// RenderFrame advances the simulation by dt and draws the surface into the
// offscreen buffer. A transient simulation failure is logged and the
// previous maps are drawn; any other error is returned.
func (r *Renderer) RenderFrame(dt float32) error {
	if !r.recordMode {
		fbWidth, fbHeight := r.context.GetFramebufferSize()
		if fbWidth > 0 && fbHeight > 0 {
			if err := r.offscreenRenderer.Resize(fbWidth, fbHeight); err != nil {
				return err
			}
			r.width, r.height = fbWidth, fbHeight
		}
	}

	view := r.camera.View()
	projection := r.camera.Projection(r.width, r.height)
	if err := r.sim.Render(dt, view, projection, r.camera.Position()); err != nil {
		if !errors.Is(err, ocean.ErrTransientRender) {
			return err
		}
		r.failedFrames++
		ocean.Logger().Warn("ocean frame failed", "err", err, "failed_frames", r.failedFrames)
	}

	m := r.sim.Material()
	r.offscreenRenderer.Bind(backgroundColor(m))
	r.surface.draw(m, r.device.TextureID(m.DisplacementMap), r.device.TextureID(m.NormalMap))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// backgroundColor is the sky color through the surface shader's tone map.
func backgroundColor(m *ocean.Material) [3]float32 {
	var c [3]float32
	for i := range c {
		c[i] = 1 - float32(math.Exp(float64(-m.SkyColor[i]*m.Exposure)))
	}
	return c
}

func (r *Renderer) blit(program uint32, textureLoc int32, fbo uint32, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.offscreenRenderer.textureID)
	gl.Uniform1i(textureLoc, 0)
	r.device.DrawQuad()
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Run drives the interactive window until it is closed.
func (r *Renderer) Run() error {
	lastTime := r.context.Time()
	for !r.context.ShouldClose() {
		now := r.context.Time()
		dt := float32(math.Min(now-lastTime, maxFrameDelta))
		lastTime = now

		dx, dy, scroll := r.context.GetDragDelta()
		r.camera.Orbit(dx, dy)
		r.camera.Zoom(scroll)

		if err := r.RenderFrame(dt); err != nil {
			return err
		}

		fbWidth, fbHeight := r.context.GetFramebufferSize()
		r.blit(r.blitProgram, r.blitTextureLoc, 0, fbWidth, fbHeight)
		r.context.EndFrame()
	}
	return nil
}

// Record renders Duration seconds at a fixed step and pipes the frames to
// ffmpeg.
func (r *Renderer) Record(opts *options.RunOptions) error {
	log.Println("Starting in record mode...")
	frameChan := make(chan *Frame, numBuffers)
	encoderDoneChan := make(chan error, 1)

	go runEncoder(opts, frameChan, encoderDoneChan)

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	timeStep := float32(1.0 / float64(*opts.FPS))

	var renderErr error
	for i := 0; i < totalFrames; i++ {
		if renderErr = r.RenderFrame(timeStep); renderErr != nil {
			log.Printf("Error rendering frame %d: %v", i, renderErr)
			break
		}
		r.blit(r.flipProgram, r.flipTextureLoc, r.offscreenRenderer.readFbo, r.width, r.height)
		pixels := r.offscreenRenderer.ReadPixels()

		select {
		case frameChan <- &Frame{Pixels: pixels, PTS: int64(i)}:
		case err := <-encoderDoneChan:
			close(frameChan)
			if err == nil {
				err = errors.New("ffmpeg exited early")
			}
			return fmt.Errorf("encoder stopped at frame %d: %w", i, err)
		}
	}

	close(frameChan)
	if err := <-encoderDoneChan; err != nil {
		return err
	}
	log.Printf("Recorded %d frames to %s (%d failed)", totalFrames, *opts.OutputFile, r.failedFrames)
	return renderErr
}

func (r *Renderer) Shutdown() {
	if r.surface != nil {
		r.surface.destroy()
	}
	gl.DeleteProgram(r.blitProgram)
	gl.DeleteProgram(r.flipProgram)
	if r.offscreenRenderer != nil {
		r.offscreenRenderer.Destroy()
	}
}
