package glbackend

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goocean/graphics"
)

// target is one N×N float texture with the framebuffer that renders into it.
type target struct {
	desc      graphics.TargetDesc
	fbo       uint32
	textureID uint32
}

func (t *target) Name() string            { return t.desc.Name }
func (t *target) Format() graphics.Format { return t.desc.Format }

// newTarget allocates the texture, uploads the seed data if any and attaches
// it to a fresh framebuffer. An incomplete framebuffer means the format is
// not renderable on this device.
func newTarget(n int, desc graphics.TargetDesc) (*target, error) {
	t := &target{desc: desc}
	t.desc.Data = nil

	var pixels unsafe.Pointer
	if desc.Data != nil {
		if len(desc.Data) != n*n*4 {
			return nil, fmt.Errorf("target %s: seed data has %d floats, want %d", desc.Name, len(desc.Data), n*n*4)
		}
		pixels = gl.Ptr(desc.Data)
	}

	gl.GenTextures(1, &t.textureID)
	gl.BindTexture(gl.TEXTURE_2D, t.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat(desc.Format), int32(n), int32(n), 0, gl.RGBA, gl.FLOAT, pixels)

	minFilter, magFilter := getFilterMode(desc.Filter)
	wrapmode := getWrapMode(desc.Wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapmode)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapmode)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return nil, fmt.Errorf("framebuffer for %s as %s is not complete (0x%x): %w",
			desc.Name, desc.Format, status, graphics.ErrUnsupportedFormat)
	}
	return t, nil
}

func (t *target) destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if t.textureID != 0 {
		gl.DeleteTextures(1, &t.textureID)
		t.textureID = 0
	}
}
