package ocean

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goocean/graphics"
)

// Material holds the uniform values of the surface shader. Render refreshes
// it every frame; the host binds it before drawing the mesh.
type Material struct {
	Projection     mgl32.Mat4
	View           mgl32.Mat4
	CameraPosition mgl32.Vec3

	Size         float32
	GeometrySize float32
	SkyColor     mgl32.Vec3
	OceanColor   mgl32.Vec3
	SunDirection mgl32.Vec3
	Exposure     float32

	DisplacementMap graphics.Target
	NormalMap       graphics.Target
}

// DisplacementScale maps simulation-space displacement to world space.
func (m *Material) DisplacementScale() float32 {
	return m.GeometrySize / m.Size
}

func (m *Material) update(v Values, view, projection mgl32.Mat4, camera mgl32.Vec3) {
	m.Projection = projection
	m.View = view
	m.CameraPosition = camera
	m.Size = v.Size
	m.SkyColor = v.SkyColor
	m.OceanColor = v.OceanColor
	m.SunDirection = v.SunDirection
	m.Exposure = v.Exposure
}
