package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/flipbook/internal/tool"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// MaxFPS is the highest frame rate Validate accepts.
const MaxFPS = 1000

// Config holds the settings of an editing session.
type Config struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	FPS          int    `yaml:"fps"`
	Background   string `yaml:"background"` // #rrggbb
	Color        string `yaml:"color"`      // initial draw color, #rrggbb
	PencilWidth  int    `yaml:"pencil_width"`
	BrushWidth   int    `yaml:"brush_width"`
	Workers      int    `yaml:"workers"`
	ProjectDir   string `yaml:"project_dir"`
	OutputDir    string `yaml:"output_dir"`
	VideoEncoder string `yaml:"video_encoder"` // "auto" picks a hardware encoder when available
	Quality      int    `yaml:"quality"`       // 0 picks a default for the encoder
	DPI          int    `yaml:"dpi"`           // PDF import resolution
	LogLevel     string `yaml:"log_level"`
}

// Default returns the settings of a fresh 800×600 animation at 24 FPS.
func Default() Config {
	return Config{
		Width:        800,
		Height:       600,
		FPS:          24,
		Background:   "#ffffff",
		Color:        "#000000",
		PencilWidth:  tool.DefaultWidth,
		BrushWidth:   tool.DefaultWidth,
		Workers:      runtime.NumCPU(),
		ProjectDir:   "projects",
		OutputDir:    "output",
		VideoEncoder: "auto",
		Quality:      0,
		DPI:          150,
		LogLevel:     "info",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Write stores cfg as YAML at path.
func Write(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that all settings are usable.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Width, c.Height))
	}
	if c.FPS <= 0 || c.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("fps %d not in [1, %d]", c.FPS, MaxFPS))
	}
	if _, err := tool.ParseColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := tool.ParseColor(c.Color); err != nil {
		errs = append(errs, fmt.Errorf("color: %w", err))
	}
	for _, w := range []struct {
		name string
		val  int
	}{{"pencil_width", c.PencilWidth}, {"brush_width", c.BrushWidth}} {
		if w.val < tool.MinWidth || w.val > tool.MaxWidth {
			errs = append(errs, fmt.Errorf("%s %d not in [%d, %d]", w.name, w.val, tool.MinWidth, tool.MaxWidth))
		}
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", c.Workers))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Interval returns the display time of one frame, truncated to whole
// milliseconds: 24 FPS gives 41ms.
func (c Config) Interval() time.Duration {
	if c.FPS <= 0 {
		return 0
	}
	return time.Duration(1000/c.FPS) * time.Millisecond
}

// BackgroundColor returns the parsed background color, or white if it is
// malformed.
func (c Config) BackgroundColor() color.RGBA {
	bg, err := tool.ParseColor(c.Background)
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return bg
}

// ToolState returns the initial tool selection described by the config.
func (c Config) ToolState() tool.State {
	ts := tool.Default()
	if col, err := tool.ParseColor(c.Color); err == nil {
		ts = ts.WithColor(col)
	}
	if s, err := ts.WithPencilWidth(c.PencilWidth); err == nil {
		ts = s
	}
	if s, err := ts.WithBrushWidth(c.BrushWidth); err == nil {
		ts = s
	}
	return ts
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(c.LogLevel)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// SegmentParams describes how frames are encoded into a video.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
}

// SegmentParams returns the video encoding parameters for a store of the
// given size.
func (c Config) SegmentParams(width, height int) SegmentParams {
	return SegmentParams{
		Width:   width,
		Height:  height,
		FPS:     c.FPS,
		Encoder: c.VideoEncoder,
		Quality: c.Quality,
	}
}
