package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	orbitSpeed   = 0.005 // radians per dragged pixel
	zoomFactor   = 1.1   // distance ratio per scroll step
	minElevation = 0.05
	maxElevation = math.Pi/2 - 0.05
	minDistance  = 5
	maxDistance  = 20000
)

// Camera orbits a target point. Dragging changes azimuth and elevation,
// scrolling changes the distance.
type Camera struct {
	Target    mgl32.Vec3
	Distance  float32
	Azimuth   float32 // around +Y, zero looking down -Z
	Elevation float32

	FovY float32 // degrees
	Near float32
	Far  float32
}

// NewCamera returns a camera at (45, 35, 45) looking at the origin.
func NewCamera() *Camera {
	c := &Camera{FovY: 55, Near: 0.5, Far: 300000}
	c.LookFrom(mgl32.Vec3{45, 35, 45})
	return c
}

// LookFrom places the camera at eye, keeping the current target.
func (c *Camera) LookFrom(eye mgl32.Vec3) {
	d := eye.Sub(c.Target)
	c.Distance = d.Len()
	if c.Distance == 0 {
		c.Distance = minDistance
		return
	}
	c.Azimuth = float32(math.Atan2(float64(d[0]), float64(d[2])))
	c.Elevation = float32(math.Asin(float64(d[1] / c.Distance)))
}

// Position returns the eye position in world space.
func (c *Camera) Position() mgl32.Vec3 {
	el, az := float64(c.Elevation), float64(c.Azimuth)
	offset := mgl32.Vec3{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix for a viewport of the given
// size in pixels.
func (c *Camera) Projection(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// Orbit rotates the camera by a drag of dx, dy pixels.
func (c *Camera) Orbit(dx, dy float32) {
	c.Azimuth -= dx * orbitSpeed
	c.Elevation = mgl32.Clamp(c.Elevation+dy*orbitSpeed, minElevation, maxElevation)
}

// Zoom moves the camera toward the target for positive scroll steps.
func (c *Camera) Zoom(steps float32) {
	if steps == 0 {
		return
	}
	d := float64(c.Distance) * math.Pow(zoomFactor, -float64(steps))
	c.Distance = mgl32.Clamp(float32(d), minDistance, maxDistance)
}
