package ocean

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Values is one consistent set of live-tunable parameters.
type Values struct {
	Wind         mgl32.Vec2
	Size         float32
	Choppiness   float32
	SunDirection mgl32.Vec3
	OceanColor   mgl32.Vec3
	SkyColor     mgl32.Vec3
	Exposure     float32
}

// Parameters guards the live-tunable values. Setters may be called from any
// goroutine; each one raises the changed flag so the initial spectrum is
// regenerated at the start of the next frame. The simulation takes a
// consistent snapshot once per frame, so a frame never sees a half-applied
// update.
type Parameters struct {
	mu      sync.Mutex
	values  Values
	changed bool
}

// NewParameters returns parameters holding v with a regeneration pending.
func NewParameters(v Values) *Parameters {
	return &Parameters{values: v, changed: true}
}

func (p *Parameters) update(f func(v *Values)) {
	p.mu.Lock()
	f(&p.values)
	p.changed = true
	p.mu.Unlock()
}

// SetSize sets the patch extent. A size that is not positive and finite
// would yield non-finite wave vectors, so it is rejected and the parameters
// are left untouched.
func (p *Parameters) SetSize(size float32) error {
	if !(size > 0) || math.IsInf(float64(size), 1) {
		return &ConfigurationError{Field: "size", Reason: "must be positive and finite"}
	}
	p.update(func(v *Values) { v.Size = size })
	return nil
}

func (p *Parameters) SetChoppiness(c float32) {
	p.update(func(v *Values) { v.Choppiness = c })
}

func (p *Parameters) SetWind(x, y float32) {
	p.update(func(v *Values) { v.Wind = mgl32.Vec2{x, y} })
}

func (p *Parameters) SetWindX(x float32) {
	p.update(func(v *Values) { v.Wind[0] = x })
}

func (p *Parameters) SetWindY(y float32) {
	p.update(func(v *Values) { v.Wind[1] = y })
}

func (p *Parameters) SetSunDirection(d mgl32.Vec3) {
	p.update(func(v *Values) { v.SunDirection = d })
}

func (p *Parameters) SetExposure(e float32) {
	p.update(func(v *Values) { v.Exposure = e })
}

func (p *Parameters) SetOceanColor(c mgl32.Vec3) {
	p.update(func(v *Values) { v.OceanColor = c })
}

func (p *Parameters) SetSkyColor(c mgl32.Vec3) {
	p.update(func(v *Values) { v.SkyColor = c })
}

// Apply runs f against the values under the lock and raises the changed
// flag, so several fields can be updated as one. f is trusted: callers
// validate the values it writes.
func (p *Parameters) Apply(f func(v *Values)) {
	p.update(f)
}

// Invalidate forces the initial spectrum to be regenerated next frame.
func (p *Parameters) Invalidate() {
	p.mu.Lock()
	p.changed = true
	p.mu.Unlock()
}

// ClearChanged drops a pending regeneration request.
func (p *Parameters) ClearChanged() {
	p.mu.Lock()
	p.changed = false
	p.mu.Unlock()
}

// Changed reports whether a regeneration is pending.
func (p *Parameters) Changed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changed
}

// Snapshot returns a copy of the current values.
func (p *Parameters) Snapshot() Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.values
}

// take returns the current values and the changed flag, clearing the flag.
func (p *Parameters) take() (Values, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	changed := p.changed
	p.changed = false
	return p.values, changed
}
