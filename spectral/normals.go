package spectral

import (
	"math"
	"math/rand/v2"
)

// Vec3 is a displacement or normal in simulation space (x right, y up, z
// toward the viewer).
type Vec3 [3]float64

func (a Vec3) add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a Vec3) cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Normal estimates the surface normal at a texel from the displacement of the
// texel and its four direct neighbours, texelSize apart in world units. The
// four edge-vector cross products are summed and normalised.
func Normal(center, right, left, top, bottom Vec3, texelSize float64) Vec3 {
	r := Vec3{texelSize, 0, 0}.add(right).sub(center)
	l := Vec3{-texelSize, 0, 0}.add(left).sub(center)
	t := Vec3{0, 0, -texelSize}.add(top).sub(center)
	b := Vec3{0, 0, texelSize}.add(bottom).sub(center)

	sum := r.cross(t).add(t.cross(l)).add(l.cross(b)).add(b.cross(r))
	length := math.Sqrt(sum[0]*sum[0] + sum[1]*sum[1] + sum[2]*sum[2])
	if length == 0 {
		return Vec3{0, 1, 0}
	}
	return Vec3{sum[0] / length, sum[1] / length, sum[2] / length}
}

// SeedPhases builds the n×n RGBA seed texture for the phase integrator. The
// red channel holds a phase uniform in [0, 2π); texels for K and -K share a
// phase so the evolved spectrum stays Hermitian and transforms to real fields.
func SeedPhases(n int, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float32, n*n*4)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			mx, my := Mirror(x, n), Mirror(y, n)
			if my*n+mx < y*n+x {
				data[(y*n+x)*4] = data[(my*n+mx)*4]
				continue
			}
			p := float32(rng.Float64() * TwoPi)
			if p >= float32(TwoPi) {
				p = 0
			}
			data[(y*n+x)*4] = p
		}
	}
	return data
}
