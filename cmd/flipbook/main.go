package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ivlev/flipbook/internal/config"
	"github.com/ivlev/flipbook/internal/engine"
	"github.com/ivlev/flipbook/internal/export"
	"github.com/ivlev/flipbook/internal/system"
)

func main() {
	if err := run(); err != nil {
		slog.Error("flipbook failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	configPtr := flag.String("config", "", "Path to a YAML config file")
	projectPtr := flag.String("project", "", "Project to open (default: newest .json in the project directory)")
	newPtr := flag.Bool("new", false, "Start a blank animation instead of opening a project")
	importPtr := flag.String("import", "", "PDF, GIF, image or image directory to import as frames")
	scriptPtr := flag.String("script", "", "YAML gesture script to draw")
	savePtr := flag.String("save", "", "Save the project to this path")
	exportPtr := flag.String("export", "", "Export to .gif, .png (numbered sequence) or .mp4")
	fpsPtr := flag.Int("fps", 0, "Playback and export FPS")
	widthPtr := flag.Int("width", 0, "Canvas width of a new animation")
	heightPtr := flag.Int("height", 0, "Canvas height of a new animation")
	workersPtr := flag.Int("workers", 0, "Parallel encoders/renderers")
	logLevelPtr := flag.String("log-level", "", "debug, info, warn or error")
	playPtr := flag.Duration("play", 0, "Play the animation for this long and report frame changes")
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		var err error
		cfg, err = config.Load(*configPtr)
		if err != nil {
			return err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fps":
			cfg.FPS = *fpsPtr
		case "width":
			cfg.Width = *widthPtr
		case "height":
			cfg.Height = *heightPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "log-level":
			cfg.LogLevel = *logLevelPtr
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.VideoEncoder == "auto" && strings.EqualFold(filepath.Ext(*exportPtr), ".mp4") {
		cfg.VideoEncoder = export.BestH264Encoder(ctx)
		if cfg.VideoEncoder != "libx264" {
			logger.Info("hardware acceleration detected", slog.String("encoder", cfg.VideoEncoder))
		}
	}

	studio := engine.New(cfg, logger)
	defer studio.Stop()

	projectPath := *projectPtr
	if projectPath == "" && !*newPtr && *importPtr == "" {
		if latest, err := system.FindLatestProject(cfg.ProjectDir); err == nil {
			projectPath = latest
			logger.Info("opening latest project", slog.String("path", projectPath))
		}
	}
	if projectPath != "" {
		if err := report(studio.Load(projectPath)); err != nil {
			return err
		}
	}

	if *importPtr != "" {
		if err := report(studio.Import(ctx, *importPtr)); err != nil {
			return err
		}
	}
	if *scriptPtr != "" {
		if err := report(studio.ApplyScript(*scriptPtr)); err != nil {
			return err
		}
	}

	if *playPtr > 0 {
		play(ctx, logger, studio, *playPtr)
	}

	if *savePtr != "" {
		if err := os.MkdirAll(filepath.Dir(*savePtr), 0755); err != nil {
			return err
		}
		if err := report(studio.Save(*savePtr)); err != nil {
			return err
		}
	}

	if *exportPtr != "" {
		out := *exportPtr
		if !strings.ContainsRune(out, filepath.Separator) {
			out = filepath.Join(cfg.OutputDir, out)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return err
		}
		if err := report(studio.Export(ctx, out)); err != nil {
			return err
		}
	}

	store := studio.Store()
	fmt.Printf("%d frames, %dx%d @ %d FPS\n", store.Len(), store.Width(), store.Height(), studio.Config().FPS)
	return nil
}

// report prints a user-facing result and passes on its error.
func report(res engine.Result, err error) error {
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	return err
}

func play(ctx context.Context, logger *slog.Logger, studio *engine.Studio, d time.Duration) {
	var ticks atomic.Int64
	studio.OnChange(func(index, count int) {
		ticks.Add(1)
		logger.Debug("frame", slog.Int("index", index), slog.Int("frames", count))
	})
	report(studio.PlayPause())

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
	studio.Stop()
	studio.OnChange(nil)

	logger.Info("playback finished", slog.Duration("played", d), slog.Int64("ticks", ticks.Load()),
		slog.Int("frame", studio.Store().ActiveIndex()))
}
