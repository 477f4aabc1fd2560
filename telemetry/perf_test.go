package telemetry

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goocean/config"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/softgpu"
)

var _ ocean.Observer = (*Collector)(nil)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int, report func(Stats)) (*Collector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := NewCollector(window, report)
	c.now = clock.now
	return c, clock
}

func TestCollectorPassBreakdown(t *testing.T) {
	c, clock := newTestCollector(4, nil)
	c.BeginFrame()
	c.BeginPass(ocean.PassPhase)
	clock.advance(time.Millisecond)
	c.BeginPass(ocean.PassTransform)
	clock.advance(3 * time.Millisecond)
	c.EndFrame()

	s := c.Stats()
	if s.Frames != 1 || s.WindowEnd != 1 {
		t.Fatalf("frames = %d, window end = %d", s.Frames, s.WindowEnd)
	}
	if s.MeanFrame != 4*time.Millisecond {
		t.Errorf("mean frame = %v, want 4ms", s.MeanFrame)
	}
	if s.PassMean[ocean.PassPhase] != time.Millisecond || s.PassMean[ocean.PassTransform] != 3*time.Millisecond {
		t.Errorf("pass means = %v", s.PassMean)
	}
	if s.PassPct[ocean.PassPhase] != 25 || s.PassPct[ocean.PassTransform] != 75 {
		t.Errorf("pass shares = %v", s.PassPct)
	}
	if s.FPS != 250 {
		t.Errorf("fps = %v, want 250", s.FPS)
	}
}

func TestCollectorRollingWindow(t *testing.T) {
	var reports []Stats
	c, clock := newTestCollector(4, func(s Stats) { reports = append(reports, s) })
	for i := 1; i <= 10; i++ {
		c.BeginFrame()
		c.BeginPass(ocean.PassSpectrum)
		clock.advance(time.Duration(i) * time.Millisecond)
		c.EndFrame()
	}

	if c.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", c.Frames())
	}
	if len(reports) != 2 || reports[0].WindowEnd != 4 || reports[1].WindowEnd != 8 {
		t.Fatalf("reports = %+v", reports)
	}
	// Frames 5..8 took 5, 6, 7 and 8 ms.
	if r := reports[1]; r.MeanFrame != 6500*time.Microsecond || r.MaxFrame != 8*time.Millisecond || r.P95Frame != 8*time.Millisecond {
		t.Errorf("second window = mean %v, p95 %v, max %v", r.MeanFrame, r.P95Frame, r.MaxFrame)
	}

	// The window now holds frames 7..10.
	s := c.Stats()
	if s.Frames != 4 || s.MeanFrame != 8500*time.Microsecond {
		t.Errorf("frames = %d, mean = %v", s.Frames, s.MeanFrame)
	}
}

func TestEmptyStats(t *testing.T) {
	c := NewCollector(0, nil)
	s := c.Stats()
	if s.Frames != 0 || s.MeanFrame != 0 || s.FPS != 0 || s.PassMean == nil {
		t.Errorf("empty stats = %+v", s)
	}
	if len(c.samples) != 60 {
		t.Errorf("default window = %d, want 60", len(c.samples))
	}
}

func TestCollectorObservesSimulation(t *testing.T) {
	cfg := config.Default()
	cfg.Resolution = 16
	cfg.PhaseSeed = 3
	dev, err := softgpu.New(cfg.Resolution)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCollector(8, nil)
	sim, err := ocean.New(dev, cfg, ocean.WithObserver(c))
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	for i := 0; i < 3; i++ {
		if err := sim.Render(1.0/60, mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec3{}); err != nil {
			t.Fatal(err)
		}
	}
	if c.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", c.Frames())
	}
	if _, ok := c.samples[0].Passes[ocean.PassInitialSpectrum]; !ok {
		t.Error("first frame did not time the initial spectrum")
	}
	if _, ok := c.samples[1].Passes[ocean.PassInitialSpectrum]; ok {
		t.Error("second frame regenerated the initial spectrum")
	}
	for _, pass := range Passes[1:] {
		if _, ok := c.samples[2].Passes[pass]; !ok {
			t.Errorf("pass %s not timed", pass)
		}
	}
}
