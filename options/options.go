package options

import "flag"

// Run modes.
const (
	ModeInteractive = "interactive"
	ModeRecord      = "record"
	ModeSelfCheck   = "selfcheck"
)

type RunOptions struct {
	ConfigFile *string
	Mode       *string
	Width      *int
	Height     *int
	FPS        *int
	Duration   *float64
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
	TuneAddr   *string // websocket listen address for live tuning; empty disables it
	StatsDir   *string // directory for per-pass timing CSV; empty disables it
	LogLevel   *string
	Seed       *uint64 // overrides phase_seed when non-zero
	HalfFloat  *bool   // forces half-float targets regardless of the config file
	Headless   *bool   // EGL pbuffer instead of a hidden window for record and selfcheck
	Help       *bool
}

// Register defines every run option on fs.
func Register(fs *flag.FlagSet) *RunOptions {
	return &RunOptions{
		ConfigFile: fs.String("config", "", "YAML configuration file overlaid on the defaults"),
		Mode:       fs.String("mode", ModeInteractive, "Run mode: interactive, record or selfcheck"),
		Width:      fs.Int("width", 1280, "Width of the window or video"),
		Height:     fs.Int("height", 720, "Height of the window or video"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		OutputFile: fs.String("output", "ocean.mp4", "Output file name for recording"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:      fs.String("codec", "h264", "Video codec for recording: h264 or hevc"),
		TuneAddr:   fs.String("tune", "", "Listen address of the live tuning websocket, e.g. localhost:8090"),
		StatsDir:   fs.String("stats", "", "Directory for per-pass timing CSV"),
		LogLevel:   fs.String("loglevel", "info", "Log level: debug, info, warn or error"),
		Seed:       fs.Uint64("seed", 0, "Seed of the initial phase field (0 keeps the configured seed)"),
		HalfFloat:  fs.Bool("halffloat", false, "Use half-float render targets"),
		Headless:   fs.Bool("headless", false, "Render record and selfcheck runs through EGL without a window (Linux)"),
		Help:       fs.Bool("help", false, "Show help message"),
	}
}
