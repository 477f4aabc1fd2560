package shader

import (
	"fmt"

	"github.com/richinsley/goocean/graphics"
)

// Uniform names shared by the kernels and the surface shaders.
const (
	UniformResolution       = "u_resolution"
	UniformWind             = "u_wind"
	UniformSize             = "u_size"
	UniformDeltaTime        = "u_deltaTime"
	UniformChoppiness       = "u_choppiness"
	UniformSubtransformSize = "u_subtransformSize"

	UniformProjectionMatrix = "u_projectionMatrix"
	UniformViewMatrix       = "u_viewMatrix"
	UniformCameraPosition   = "u_cameraPosition"
	UniformGeometrySize     = "u_geometrySize"
	UniformSkyColor         = "u_skyColor"
	UniformOceanColor       = "u_oceanColor"
	UniformSunDirection     = "u_sunDirection"
	UniformExposure         = "u_exposure"
	UniformDisplacementMap  = "u_displacementMap"
	UniformNormalMap        = "u_normalMap"
	UniformTexture          = "u_texture"
)

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const fullscreenVertexGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitVertexGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const surfaceVertexGL = `#version 410 core
layout (location = 0) in vec3 in_position;
layout (location = 1) in vec2 in_uv;
out vec3 v_position;
out vec2 v_uv;

uniform mat4 u_projectionMatrix;
uniform mat4 u_viewMatrix;
uniform float u_size;
uniform float u_geometrySize;
uniform sampler2D u_displacementMap;

void main() {
    vec3 position = in_position + texture(u_displacementMap, in_uv).rgb * (u_geometrySize / u_size);
    v_position = position;
    v_uv = in_uv;
    gl_Position = u_projectionMatrix * u_viewMatrix * vec4(position, 1.0);
}
`

const blitFragmentFlipGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const fullscreenVertexGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const blitVertexGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

const surfaceVertexGLES = `#version 300 es
precision highp float;
layout (location = 0) in vec3 in_position;
layout (location = 1) in vec2 in_uv;
out vec3 v_position;
out vec2 v_uv;

uniform mat4 u_projectionMatrix;
uniform mat4 u_viewMatrix;
uniform float u_size;
uniform float u_geometrySize;
uniform highp sampler2D u_displacementMap;

void main() {
    vec3 position = in_position + texture(u_displacementMap, in_uv).rgb * (u_geometrySize / u_size);
    v_position = position;
    v_uv = in_uv;
    gl_Position = u_projectionMatrix * u_viewMatrix * vec4(position, 1.0);
}
`

const blitFragmentFlipGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y)); }
`

const blitFragmentGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
void main() { fragColor = texture(u_texture, frag_uv); }
`

// ────────────────────────────────── Public API ─────────────────────────────────

// FullscreenVertex is the vertex stage of every simulation kernel. It draws
// the two-triangle quad; kernels address texels through gl_FragCoord.
func FullscreenVertex(isGLES bool) string {
	if isGLES {
		return fullscreenVertexGLES
	}
	return fullscreenVertexGL
}

// BlitVertex is the vertex stage of the blit program.
func BlitVertex(isGLES bool) string {
	if isGLES {
		return blitVertexGLES
	}
	return blitVertexGL
}

// SurfaceVertex displaces the flat mesh by the displacement map.
func SurfaceVertex(isGLES bool) string {
	if isGLES {
		return surfaceVertexGLES
	}
	return surfaceVertexGL
}

func GetBlitFragmentShader(flip, isGLES bool) string {
	if isGLES {
		if flip {
			return blitFragmentFlipGLES
		}
		return blitFragmentGLES
	}
	if flip {
		return blitFragmentFlipGL
	}
	return blitFragmentGL
}

// Kernel returns the WebGL2 fragment source of a simulation kernel. The
// source goes through the translator before compilation.
func Kernel(k graphics.Kernel) (string, error) {
	var body string
	switch k {
	case graphics.KernelInitialSpectrum:
		body = initialSpectrumKernel
	case graphics.KernelPhase:
		body = phaseKernel
	case graphics.KernelSpectrum:
		body = spectrumKernel
	case graphics.KernelSubtransformHorizontal:
		body = "#define HORIZONTAL\n" + subtransformKernel
	case graphics.KernelSubtransformVertical:
		body = subtransformKernel
	case graphics.KernelNormals:
		body = normalsKernel
	default:
		return "", fmt.Errorf("no shader for kernel %v", k)
	}
	return kernelPreamble + body, nil
}

// KernelInputs names the sampler uniforms of a kernel in the order a
// device binds its input targets.
func KernelInputs(k graphics.Kernel) []string {
	switch k {
	case graphics.KernelInitialSpectrum:
		return nil
	case graphics.KernelPhase:
		return []string{"u_phases"}
	case graphics.KernelSpectrum:
		return []string{"u_phases", "u_initialSpectrum"}
	case graphics.KernelNormals:
		return []string{UniformDisplacementMap}
	default:
		return []string{"u_input"}
	}
}

// SurfaceFragment is the WebGL2 fragment stage of the ocean surface:
// Fresnel-weighted sky reflection over diffuse water, tone mapped.
func SurfaceFragment() string {
	return surfaceFragment
}
