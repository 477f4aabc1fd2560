package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Frame is one rendered frame ready for encoding: RGBA8 rows, top row first.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// OffscreenRenderer holds the color and depth attachments the surface is
// drawn into, plus a second color buffer the image is flipped into for
// readback.
type OffscreenRenderer struct {
	fbo               uint32
	textureID         uint32
	depthRenderbuffer uint32
	readFbo           uint32
	readTextureID     uint32
	width             int
	height            int
}

func NewOffscreenRenderer(width, height int) (*OffscreenRenderer, error) {
	or := &OffscreenRenderer{}
	gl.GenFramebuffers(1, &or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.GenRenderbuffers(1, &or.depthRenderbuffer)
	gl.GenFramebuffers(1, &or.readFbo)
	gl.GenTextures(1, &or.readTextureID)
	if err := or.Resize(width, height); err != nil {
		or.Destroy()
		return nil, err
	}
	return or, nil
}

// Resize reallocates every attachment. It is a no-op when the size is
// unchanged.
func (or *OffscreenRenderer) Resize(width, height int) error {
	if width == or.width && height == or.height {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("offscreen size %dx%d is empty", width, height)
	}
	or.width, or.height = width, height

	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	allocateColor(or.textureID, width, height)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)
	gl.BindRenderbuffer(gl.RENDERBUFFER, or.depthRenderbuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, or.depthRenderbuffer)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return fmt.Errorf("main offscreen fbo is not complete")
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, or.readFbo)
	allocateColor(or.readTextureID, width, height)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.readTextureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("readback fbo is not complete")
	}
	return nil
}

func allocateColor(texture uint32, width, height int) {
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Bind makes the main framebuffer the draw target and clears it.
func (or *OffscreenRenderer) Bind(clear [3]float32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.Viewport(0, 0, int32(or.width), int32(or.height))
	gl.ClearColor(clear[0], clear[1], clear[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads the flipped copy back as top-down RGBA8 rows. The
// caller must have drawn into the readback framebuffer first.
func (or *OffscreenRenderer) ReadPixels() []byte {
	pixels := make([]byte, or.width*or.height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, or.readFbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return pixels
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
	gl.DeleteRenderbuffers(1, &or.depthRenderbuffer)
	gl.DeleteFramebuffers(1, &or.readFbo)
	gl.DeleteTextures(1, &or.readTextureID)
}
