package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goocean/graphics"
)

func getWrapMode(wrap graphics.Wrap) int32 {
	switch wrap {
	case graphics.WrapRepeat:
		return gl.REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}

func getFilterMode(filter graphics.Filter) (minFilter, magFilter int32) {
	switch filter {
	case graphics.FilterLinear:
		return gl.LINEAR, gl.LINEAR
	default:
		return gl.NEAREST, gl.NEAREST
	}
}

// samplerFilter downgrades linear filtering of 32-bit float textures to
// nearest when the context cannot filter them. Such a texture would
// otherwise be incomplete and sample as black.
func samplerFilter(filter graphics.Filter, format graphics.Format, floatLinear bool) graphics.Filter {
	if filter == graphics.FilterLinear && format == graphics.FormatFloat32 && !floatLinear {
		return graphics.FilterNearest
	}
	return filter
}

// hasExtension reports whether the current context advertises name.
func hasExtension(name string) bool {
	var count int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &count)
	for i := int32(0); i < count; i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))) == name {
			return true
		}
	}
	return false
}

func internalFormat(f graphics.Format) int32 {
	if f == graphics.FormatFloat16 {
		return gl.RGBA16F
	}
	return gl.RGBA32F
}

// glError drains the GL error queue and reports the first error, if any.
func glError() error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	for gl.GetError() != gl.NO_ERROR {
	}
	return fmt.Errorf("gl error %s", errorName(code))
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("0x%x", code)
	}
}

// uniformName returns the name a declared uniform has in translated code,
// or "" when the translator dropped it.
func uniformName(mapped map[string]string, name string) string {
	if mapped == nil {
		return name
	}
	return mapped[name]
}
