// Package engine ties the frame store, drawing engine, playback scheduler
// and file codecs together behind the operations a UI offers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/config"
	"github.com/ivlev/flipbook/internal/drawing"
	"github.com/ivlev/flipbook/internal/export"
	"github.com/ivlev/flipbook/internal/frames"
	"github.com/ivlev/flipbook/internal/playback"
	"github.com/ivlev/flipbook/internal/project"
	"github.com/ivlev/flipbook/internal/script"
	"github.com/ivlev/flipbook/internal/source"
	"github.com/ivlev/flipbook/internal/tool"
)

// Result is the outcome of a Studio operation as shown to the user. Level
// is Info for success, Warn for refused operations and Error for failures.
type Result struct {
	Message string
	Level   slog.Level
}

func info(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...), Level: slog.LevelInfo}
}

// Studio is a single animation being edited. Apart from OnChange callbacks,
// which may run on the playback goroutine, all methods are expected to be
// called from one goroutine.
type Studio struct {
	cfg     config.Config
	log     *slog.Logger
	store   *frames.Store
	pen     *drawing.Engine
	player  *playback.Scheduler
	tool    tool.State
	encoder export.VideoEncoder

	mu       sync.Mutex
	onChange func(index, count int)
}

// New returns a studio holding one blank frame of cfg's size. A nil logger
// means slog.Default().
func New(cfg config.Config, logger *slog.Logger) *Studio {
	if logger == nil {
		logger = slog.Default()
	}
	store := frames.New(cfg.Width, cfg.Height, cfg.BackgroundColor())
	s := &Studio{
		cfg:   cfg,
		log:   logger,
		store: store,
		pen:   drawing.New(store),
		tool:  cfg.ToolState(),
	}
	s.player = playback.New(store, cfg.Interval(), s.changed)
	return s
}

// SetVideoEncoder replaces the ffmpeg encoder used for video export.
func (s *Studio) SetVideoEncoder(enc export.VideoEncoder) {
	s.encoder = enc
}

// Store returns the frames being edited.
func (s *Studio) Store() *frames.Store { return s.store }

// Tool returns the current tool selection.
func (s *Studio) Tool() tool.State { return s.tool }

// Config returns the studio settings. FPS reflects the last loaded project.
func (s *Studio) Config() config.Config { return s.cfg }

// Render calls fn with the active frame under the store's read lock. fn
// must not keep b or modify it.
func (s *Studio) Render(fn func(index int, b *canvas.Buffer)) {
	s.store.View(fn)
}

// Playing reports whether playback is running.
func (s *Studio) Playing() bool { return s.player.Playing() }

// OnChange registers fn to be called with the active index and frame count
// whenever the displayed frame changes. fn may be called from the playback
// goroutine.
func (s *Studio) OnChange(fn func(index, count int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Studio) changed(index int) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(index, s.store.Len())
	}
}

func (s *Studio) refresh() {
	s.changed(s.store.ActiveIndex())
}

// fail logs err and turns it into a Result.
func (s *Studio) fail(op string, err error, attrs ...any) (Result, error) {
	level := slog.LevelError
	var msg string
	switch {
	case errors.Is(err, frames.ErrCannotDeleteLastFrame):
		level = slog.LevelWarn
		msg = "You cannot delete the only frame."
	case errors.Is(err, frames.ErrIndexOutOfRange):
		level = slog.LevelWarn
		msg = fmt.Sprintf("No such frame: %v", err)
	case errors.Is(err, tool.ErrInvalidWidth), errors.Is(err, tool.ErrUnknownTool), errors.Is(err, tool.ErrInvalidColor):
		level = slog.LevelWarn
		msg = err.Error()
	case errors.Is(err, project.ErrCorruptProjectFile):
		msg = fmt.Sprintf("The animation file is damaged: %v", err)
	default:
		msg = fmt.Sprintf("Error during %s: %v", op, err)
	}
	s.log.Log(context.Background(), level, op+" failed", append(attrs, slog.Any("err", err))...)
	return Result{Message: msg, Level: level}, err
}

// SelectTool selects the pencil, brush or eraser by name.
func (s *Studio) SelectTool(name string) (Result, error) {
	k, err := tool.ParseKind(name)
	if err != nil {
		return s.fail("select tool", err)
	}
	s.tool = s.tool.WithKind(k)
	s.log.Debug("tool selected", slog.String("tool", k.String()))
	return info("Tool: %s", k), nil
}

// SelectColor sets the draw color. Alpha is ignored.
func (s *Studio) SelectColor(c color.Color) (Result, error) {
	s.tool = s.tool.WithColor(color.RGBAModel.Convert(c).(color.RGBA))
	hex := tool.FormatColor(s.tool.Color())
	s.log.Debug("color selected", slog.String("color", hex))
	return info("Color: %s", hex), nil
}

// SelectColorHex sets the draw color from a #rrggbb string.
func (s *Studio) SelectColorHex(hex string) (Result, error) {
	c, err := tool.ParseColor(hex)
	if err != nil {
		return s.fail("select color", err)
	}
	return s.SelectColor(c)
}

// SetPencilWidth sets the pencil width in pixels.
func (s *Studio) SetPencilWidth(w int) (Result, error) {
	ts, err := s.tool.WithPencilWidth(w)
	if err != nil {
		return s.fail("set pencil width", err)
	}
	s.tool = ts
	return info("Pencil width: %d", w), nil
}

// SetBrushWidth sets the width of the brush and the eraser.
func (s *Studio) SetBrushWidth(w int) (Result, error) {
	ts, err := s.tool.WithBrushWidth(w)
	if err != nil {
		return s.fail("set brush width", err)
	}
	s.tool = ts
	return info("Brush width: %d", w), nil
}

// NewFrame appends a blank frame and makes it active.
func (s *Studio) NewFrame() (Result, error) {
	i := s.store.AppendBlankFrame()
	s.refresh()
	s.log.Debug("frame added", slog.Int("index", i), slog.Int("frames", s.store.Len()))
	return info("Frame %d of %d", i+1, s.store.Len()), nil
}

// DeleteFrame removes the active frame. The only frame cannot be deleted.
func (s *Studio) DeleteFrame() (Result, error) {
	if err := s.store.DeleteActiveFrame(); err != nil {
		return s.fail("delete frame", err)
	}
	s.refresh()
	return info("Frame deleted, %d left", s.store.Len()), nil
}

// SelectFrame makes frame i (zero-based) active.
func (s *Studio) SelectFrame(i int) (Result, error) {
	if err := s.store.SetActiveIndex(i); err != nil {
		return s.fail("select frame", err)
	}
	s.refresh()
	return info("Frame %d of %d", i+1, s.store.Len()), nil
}

// PlayPause starts playback if stopped and stops it otherwise.
func (s *Studio) PlayPause() (Result, error) {
	if s.player.Toggle() {
		s.log.Info("playback started", slog.Duration("interval", s.player.Interval()))
		return info("Playing at %d FPS", s.cfg.FPS), nil
	}
	s.log.Info("playback stopped", slog.Int("frame", s.store.ActiveIndex()))
	return info("Paused"), nil
}

// Stop halts playback.
func (s *Studio) Stop() {
	s.player.Stop()
}

// PointerDown starts a stroke at (x, y).
func (s *Studio) PointerDown(x, y int) {
	s.pen.PointerDown(x, y)
}

// PointerMove extends the current stroke to (x, y) with the selected tool.
func (s *Studio) PointerMove(x, y int) {
	if s.pen.PointerMove(x, y, s.tool) {
		s.refresh()
	}
}

// PointerUp ends the current stroke.
func (s *Studio) PointerUp() {
	s.pen.PointerUp()
}

// Load replaces the animation with the project at path. On failure the
// current animation is kept.
func (s *Studio) Load(path string) (Result, error) {
	doc, err := project.Load(path, s.store)
	if err != nil {
		return s.fail("load", err, slog.String("path", path))
	}
	s.cfg.Width, s.cfg.Height = s.store.Width(), s.store.Height()
	switch {
	case doc.FPS == 0 || doc.FPS == s.cfg.FPS:
	case doc.FPS < 0 || doc.FPS > config.MaxFPS:
		s.log.Warn("ignoring project frame rate", slog.String("path", path), slog.Int("fps", doc.FPS),
			slog.Int("using", s.cfg.FPS))
	default:
		s.setFPS(doc.FPS)
	}
	s.refresh()
	s.log.Info("project loaded", slog.String("path", path), slog.Int("frames", s.store.Len()),
		slog.Int("width", s.store.Width()), slog.Int("height", s.store.Height()))
	return info("The animation was loaded successfully (%d frames).", s.store.Len()), nil
}

func (s *Studio) setFPS(fps int) {
	playing := s.player.Playing()
	s.player.Stop()
	s.cfg.FPS = fps
	s.player = playback.New(s.store, s.cfg.Interval(), s.changed)
	if playing {
		s.player.Start()
	}
}

// Save writes the animation to path as a project file.
func (s *Studio) Save(path string) (Result, error) {
	if err := project.Save(path, s.store, s.cfg.FPS); err != nil {
		return s.fail("save", err, slog.String("path", path))
	}
	s.log.Info("project saved", slog.String("path", path), slog.Int("frames", s.store.Len()))
	return info("The animation was saved successfully."), nil
}

// Export writes the animation to path as a GIF, PNG sequence or MP4,
// chosen by the extension.
func (s *Studio) Export(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	bufs := s.store.Snapshot()
	files, err := export.Export(ctx, path, bufs, export.Options{
		Interval: s.cfg.Interval(),
		Workers:  s.cfg.Workers,
		Video:    s.cfg.SegmentParams(s.store.Width(), s.store.Height()),
		Encoder:  s.encoder,
	})
	if err != nil {
		return s.fail("export", err, slog.String("path", path))
	}
	s.log.Info("animation exported", slog.String("path", path), slog.Int("frames", len(bufs)),
		slog.Int("files", len(files)), slog.Duration("took", time.Since(start)))
	if len(files) > 1 {
		return info("The animation was exported successfully (%d files).", len(files)), nil
	}
	return info("The animation was exported successfully."), nil
}

// Import replaces the animation with frames taken from a PDF, a GIF, an
// image or a directory of images, scaled to the canvas size.
func (s *Studio) Import(ctx context.Context, path string) (Result, error) {
	src, err := source.Open(path, s.cfg.DPI)
	if err != nil {
		return s.fail("import", err, slog.String("path", path))
	}
	defer src.Close()

	bufs, err := source.Frames(ctx, src, s.store.Width(), s.store.Height(), s.store.Background(), s.cfg.Workers)
	if err != nil {
		return s.fail("import", err, slog.String("path", path))
	}
	if err := s.store.Replace(bufs); err != nil {
		return s.fail("import", err, slog.String("path", path))
	}
	s.refresh()
	s.log.Info("frames imported", slog.String("path", path), slog.Int("frames", len(bufs)))
	return info("Imported %d frames.", len(bufs)), nil
}

// ApplyScript replays the gesture script at path onto the animation. The
// tool selection afterwards is the one used by the script's last stroke.
func (s *Studio) ApplyScript(path string) (Result, error) {
	sc, err := script.ReadScript(path)
	if err != nil {
		return s.fail("apply script", err, slog.String("path", path))
	}
	ts, err := script.Apply(sc, s.store, s.pen, s.tool)
	if err != nil {
		return s.fail("apply script", err, slog.String("path", path))
	}
	s.tool = ts
	s.refresh()
	s.log.Info("script applied", slog.String("path", path), slog.Int("strokes", sc.StrokeCount()))
	return info("Drew %d strokes on %d frames.", sc.StrokeCount(), len(sc.Frames)), nil
}
