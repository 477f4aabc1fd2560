package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goocean/glbackend"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/shader"
	"github.com/richinsley/goocean/translator"
)

// surfaceVaryings are the outputs of the surface vertex stage, which the
// translator may rename in the fragment stage.
var surfaceVaryings = []string{"v_position", "v_uv"}

type surfaceLocations struct {
	projection      int32
	view            int32
	size            int32
	geometrySize    int32
	displacementMap int32
	normalMap       int32
	cameraPosition  int32
	oceanColor      int32
	skyColor        int32
	sunDirection    int32
	exposure        int32
}

// surface draws the ocean mesh displaced by the simulation's maps.
type surface struct {
	program    uint32
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	locs       surfaceLocations
}

func newSurface(mesh *ocean.Mesh, isGLES bool) (*surface, error) {
	code, mapped, err := translator.Fragment(shader.SurfaceFragment(), isGLES)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	vs := renameVaryings(shader.SurfaceVertex(isGLES), mapped)
	program, err := glbackend.LinkProgram(vs, code)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}

	s := &surface{program: program, indexCount: int32(len(mesh.Indices()))}
	// Vertex stage uniforms are not translated.
	s.locs = surfaceLocations{
		projection:      glbackend.UniformLocation(program, nil, shader.UniformProjectionMatrix),
		view:            glbackend.UniformLocation(program, nil, shader.UniformViewMatrix),
		size:            glbackend.UniformLocation(program, nil, shader.UniformSize),
		geometrySize:    glbackend.UniformLocation(program, nil, shader.UniformGeometrySize),
		displacementMap: glbackend.UniformLocation(program, nil, shader.UniformDisplacementMap),
		normalMap:       glbackend.UniformLocation(program, mapped, shader.UniformNormalMap),
		cameraPosition:  glbackend.UniformLocation(program, mapped, shader.UniformCameraPosition),
		oceanColor:      glbackend.UniformLocation(program, mapped, shader.UniformOceanColor),
		skyColor:        glbackend.UniformLocation(program, mapped, shader.UniformSkyColor),
		sunDirection:    glbackend.UniformLocation(program, mapped, shader.UniformSunDirection),
		exposure:        glbackend.UniformLocation(program, mapped, shader.UniformExposure),
	}

	vertices, indices := mesh.Vertices(), mesh.Indices()
	gl.GenVertexArrays(1, &s.vao)
	gl.GenBuffers(1, &s.vbo)
	gl.GenBuffers(1, &s.ebo)
	gl.BindVertexArray(s.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	stride := int32(ocean.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	ocean.Logger().Debug("surface mesh uploaded",
		"vertices", mesh.VertexCount(), "triangles", len(indices)/3)
	return s, nil
}

// draw renders the mesh into the bound framebuffer. The two textures are the
// GL names of the material's displacement and normal maps.
func (s *surface) draw(m *ocean.Material, displacement, normals uint32) {
	gl.Enable(gl.DEPTH_TEST)
	gl.UseProgram(s.program)

	gl.UniformMatrix4fv(s.locs.projection, 1, false, &m.Projection[0])
	gl.UniformMatrix4fv(s.locs.view, 1, false, &m.View[0])
	gl.Uniform1f(s.locs.size, m.Size)
	gl.Uniform1f(s.locs.geometrySize, m.GeometrySize)
	gl.Uniform3fv(s.locs.cameraPosition, 1, &m.CameraPosition[0])
	gl.Uniform3fv(s.locs.oceanColor, 1, &m.OceanColor[0])
	gl.Uniform3fv(s.locs.skyColor, 1, &m.SkyColor[0])
	gl.Uniform3fv(s.locs.sunDirection, 1, &m.SunDirection[0])
	gl.Uniform1f(s.locs.exposure, m.Exposure)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, displacement)
	gl.Uniform1i(s.locs.displacementMap, 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, normals)
	gl.Uniform1i(s.locs.normalMap, 1)

	gl.BindVertexArray(s.vao)
	gl.DrawElements(gl.TRIANGLES, s.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.DEPTH_TEST)
}

func (s *surface) destroy() {
	gl.DeleteProgram(s.program)
	gl.DeleteBuffers(1, &s.ebo)
	gl.DeleteBuffers(1, &s.vbo)
	gl.DeleteVertexArrays(1, &s.vao)
}

// renameVaryings rewrites the vertex stage outputs to the names the
// translated fragment stage expects.
func renameVaryings(vertexSource string, mapped map[string]string) string {
	var pairs []string
	for _, name := range surfaceVaryings {
		if m, ok := mapped[name]; ok && m != "" && m != name {
			pairs = append(pairs, name, m)
		}
	}
	if len(pairs) == 0 {
		return vertexSource
	}
	return strings.NewReplacer(pairs...).Replace(vertexSource)
}
