package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/richinsley/goocean/config"
	"github.com/richinsley/goocean/glbackend"
	"github.com/richinsley/goocean/glfwcontext"
	"github.com/richinsley/goocean/graphics"
	"github.com/richinsley/goocean/headless"
	"github.com/richinsley/goocean/ocean"
	"github.com/richinsley/goocean/options"
	"github.com/richinsley/goocean/renderer"
	"github.com/richinsley/goocean/telemetry"
	"github.com/richinsley/goocean/tuning"
)

func init() {
	runtime.LockOSThread()
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

func loadConfig(opts *options.RunOptions) (*config.Config, error) {
	cfg, err := config.Load(*opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if *opts.Seed != 0 {
		cfg.PhaseSeed = *opts.Seed
	}
	if *opts.HalfFloat {
		cfg.UseHalfFloat = true
	}
	return cfg, nil
}

// newContext opens a window for interactive runs and a hidden window or an
// EGL pbuffer otherwise.
func newContext(opts *options.RunOptions) (graphics.Context, *glfwcontext.Context, error) {
	interactive := *opts.Mode == options.ModeInteractive
	if *opts.Headless && !interactive {
		h, err := headless.New(*opts.Width, *opts.Height)
		if err != nil {
			return nil, nil, err
		}
		return h, nil, nil
	}
	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	c, err := glfwcontext.New(*opts.Width, *opts.Height, interactive)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	c.MakeCurrent()
	return c, c, nil
}

func run(opts *options.RunOptions) error {
	switch *opts.Mode {
	case options.ModeInteractive, options.ModeRecord, options.ModeSelfCheck:
	default:
		return fmt.Errorf("unknown mode %q", *opts.Mode)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	gfx, window, err := newContext(opts)
	if err != nil {
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	defer func() {
		gfx.Shutdown()
		if window != nil {
			glfwcontext.TerminateGraphics()
		}
	}()

	dev, err := glbackend.New(cfg.Resolution, glbackend.WithGLES(gfx.IsGLES()))
	if err != nil {
		return err
	}
	defer dev.Shutdown()

	outputs, err := telemetry.NewOutputManager(*opts.StatsDir)
	if err != nil {
		return err
	}
	defer outputs.Close()

	collector := telemetry.NewCollector(*opts.FPS, func(s telemetry.Stats) {
		slog.Debug("perf", "stats", s)
		if err := outputs.WritePerf(s); err != nil {
			slog.Warn("writing perf stats", "err", err)
		}
	})
	sim, err := ocean.New(dev, cfg, ocean.WithObserver(collector))
	if err != nil {
		return err
	}
	defer sim.Close()

	// Record the resolved seed so a run can be reproduced from its config.
	cfg.PhaseSeed = sim.Seed()
	if err := outputs.WriteConfig(cfg); err != nil {
		return err
	}

	if *opts.Mode == options.ModeSelfCheck {
		report, err := renderer.SelfCheck(sim, cfg, 1/float32(*opts.FPS))
		if err != nil {
			return err
		}
		fmt.Println(report)
		if !report.Passed() {
			return fmt.Errorf("self-check failed")
		}
		return nil
	}

	r, err := renderer.New(gfx, dev, sim, opts)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *opts.TuneAddr != "" {
		srv := tuning.NewServer(sim.Params())
		go func() {
			if err := srv.ListenAndServe(ctx, *opts.TuneAddr); err != nil {
				log.Printf("Tuning server stopped: %v", err)
			}
		}()
	}

	if *opts.Mode == options.ModeRecord {
		if err := r.Record(opts); err != nil {
			return fmt.Errorf("recording failed: %w", err)
		}
		out := *opts.OutputFile
		return cfg.WriteYAML(strings.TrimSuffix(out, filepath.Ext(out)) + ".yaml")
	}

	window.BindParameters(sim.Params(), glfwcontext.ParameterBindings())
	log.Println("Starting interactive render loop...")
	return r.Run()
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Spectral ocean viewer/recorder")
		flag.PrintDefaults()
		return
	}

	level, err := parseLevel(*opts.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	ocean.SetLogger(logger)

	if err := run(opts); err != nil {
		log.Fatalf("%v", err)
	}
}
