// Package telemetry times the simulation passes over a rolling window and
// writes the aggregates as CSV.
package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/richinsley/goocean/ocean"
)

// Passes lists the pass names in pipeline order.
var Passes = []string{
	ocean.PassInitialSpectrum,
	ocean.PassPhase,
	ocean.PassSpectrum,
	ocean.PassTransform,
	ocean.PassNormals,
}

// Sample holds timing data for a single frame.
type Sample struct {
	Frame  uint64
	Total  time.Duration
	Passes map[string]time.Duration
}

// Collector implements ocean.Observer. It keeps the last windowSize frames
// and calls report each time another windowSize frames have completed.
//
// Times are CPU wall clock between observer callbacks. On a GL device the
// draw calls return before the GPU has executed them, so pass times measure
// command submission; the frame total includes any stall the readback or
// buffer swap forces. Only the CPU device reports true per-pass cost.
type Collector struct {
	windowSize  int
	samples     []Sample
	writeIndex  int
	sampleCount int
	frames      uint64
	report      func(Stats)
	now         func() time.Time

	current    map[string]time.Duration
	frameStart time.Time
	passStart  time.Time
	lastPass   string
}

// NewCollector creates a collector over windowSize frames. report may be nil.
func NewCollector(windowSize int, report func(Stats)) *Collector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &Collector{
		windowSize: windowSize,
		samples:    make([]Sample, windowSize),
		report:     report,
		now:        time.Now,
	}
}

func (c *Collector) BeginFrame() {
	c.frameStart = c.now()
	c.current = make(map[string]time.Duration)
	c.lastPass = ""
}

func (c *Collector) BeginPass(pass string) {
	now := c.now()
	if c.lastPass != "" {
		c.current[c.lastPass] += now.Sub(c.passStart)
	}
	c.passStart = now
	c.lastPass = pass
}

func (c *Collector) EndFrame() {
	now := c.now()
	if c.lastPass != "" {
		c.current[c.lastPass] += now.Sub(c.passStart)
		c.lastPass = ""
	}
	c.frames++
	c.samples[c.writeIndex] = Sample{Frame: c.frames, Total: now.Sub(c.frameStart), Passes: c.current}
	c.writeIndex = (c.writeIndex + 1) % c.windowSize
	if c.sampleCount < c.windowSize {
		c.sampleCount++
	}
	if c.report != nil && c.frames%uint64(c.windowSize) == 0 {
		c.report(c.Stats())
	}
}

// Frames counts every completed frame, including those outside the window.
func (c *Collector) Frames() uint64 { return c.frames }

// Stats holds aggregated timings over the current window.
type Stats struct {
	WindowEnd uint64
	Frames    int
	MeanFrame time.Duration
	P95Frame  time.Duration
	MaxFrame  time.Duration
	FPS       float64
	PassMean  map[string]time.Duration
	// PassPct is each pass's share of the mean frame time, in percent.
	PassPct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (c *Collector) Stats() Stats {
	s := Stats{
		WindowEnd: c.frames,
		Frames:    c.sampleCount,
		PassMean:  make(map[string]time.Duration),
		PassPct:   make(map[string]float64),
	}
	if c.sampleCount == 0 {
		return s
	}

	totals := make([]float64, c.sampleCount)
	passSum := make(map[string]time.Duration)
	for i, sample := range c.samples[:c.sampleCount] {
		totals[i] = float64(sample.Total)
		for pass, d := range sample.Passes {
			passSum[pass] += d
		}
	}
	mean := stat.Mean(totals, nil)
	slices.Sort(totals)
	s.MeanFrame = time.Duration(mean)
	s.P95Frame = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))
	s.MaxFrame = time.Duration(totals[len(totals)-1])
	if mean > 0 {
		s.FPS = float64(time.Second) / mean
	}
	for pass, sum := range passSum {
		avg := sum / time.Duration(c.sampleCount)
		s.PassMean[pass] = avg
		if mean > 0 {
			s.PassPct[pass] = float64(avg) / mean * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Uint64("window_end", s.WindowEnd),
		slog.Int64("mean_frame_us", s.MeanFrame.Microseconds()),
		slog.Int64("p95_frame_us", s.P95Frame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
		slog.Float64("fps", s.FPS),
	}
	for _, pass := range Passes {
		if pct, ok := s.PassPct[pass]; ok {
			attrs = append(attrs, slog.Float64(pass+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// StatsCSV is a flat struct for CSV export of Stats.
type StatsCSV struct {
	WindowEnd          uint64  `csv:"window_end"`
	Frames             int     `csv:"frames"`
	MeanFrameUS        int64   `csv:"mean_frame_us"`
	P95FrameUS         int64   `csv:"p95_frame_us"`
	MaxFrameUS         int64   `csv:"max_frame_us"`
	FPS                float64 `csv:"fps"`
	InitialSpectrumPct float64 `csv:"initial_spectrum_pct"`
	PhasePct           float64 `csv:"phase_pct"`
	SpectrumPct        float64 `csv:"spectrum_pct"`
	TransformPct       float64 `csv:"transform_pct"`
	NormalsPct         float64 `csv:"normals_pct"`
}

// ToCSV converts Stats to a flat CSV-friendly struct.
func (s Stats) ToCSV() StatsCSV {
	return StatsCSV{
		WindowEnd:          s.WindowEnd,
		Frames:             s.Frames,
		MeanFrameUS:        s.MeanFrame.Microseconds(),
		P95FrameUS:         s.P95Frame.Microseconds(),
		MaxFrameUS:         s.MaxFrame.Microseconds(),
		FPS:                s.FPS,
		InitialSpectrumPct: s.PassPct[ocean.PassInitialSpectrum],
		PhasePct:           s.PassPct[ocean.PassPhase],
		SpectrumPct:        s.PassPct[ocean.PassSpectrum],
		TransformPct:       s.PassPct[ocean.PassTransform],
		NormalsPct:         s.PassPct[ocean.PassNormals],
	}
}
