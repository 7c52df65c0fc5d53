// Package export writes animations to GIF, PNG sequences and video.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/config"
	"github.com/ivlev/flipbook/internal/project"
	"github.com/ivlev/flipbook/internal/system"
)

var (
	// ErrIO is the same value as project.ErrIO so callers can match file
	// system failures from either package.
	ErrIO = project.ErrIO

	// ErrNoFrames is returned when asked to export an empty frame list.
	ErrNoFrames = errors.New("no frames to export")

	// ErrUnknownFormat is returned by Format for unsupported extensions.
	ErrUnknownFormat = errors.New("unknown export format")
)

// Kind is an export file format.
type Kind int

const (
	KindGIF Kind = iota
	KindPNG
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindGIF:
		return "gif"
	case KindPNG:
		return "png"
	case KindVideo:
		return "mp4"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Format returns the export kind for path, chosen by its extension.
func Format(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif":
		return KindGIF, nil
	case ".png":
		return KindPNG, nil
	case ".mp4":
		return KindVideo, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Options controls Export.
type Options struct {
	Interval time.Duration
	Workers  int
	Video    config.SegmentParams
	Encoder  VideoEncoder // nil means ffmpeg from PATH
}

// Export writes frames to path in the format chosen by Format and returns
// the files it produced. A PNG sequence uses path without its extension as
// the base name.
func Export(ctx context.Context, path string, frames []*canvas.Buffer, opts Options) ([]string, error) {
	kind, err := Format(path)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	w, h := frames[0].Width(), frames[0].Height()
	if err := system.CheckMemory(ctx, system.FrameBytes(len(frames), w, h)); err != nil {
		return nil, err
	}

	switch kind {
	case KindGIF:
		if err := SaveGIF(path, frames, opts.Interval); err != nil {
			return nil, err
		}
		return []string{path}, nil
	case KindPNG:
		return PNGSequence(ctx, strings.TrimSuffix(path, filepath.Ext(path)), frames, opts.Workers)
	default:
		enc := opts.Encoder
		if enc == nil {
			enc = &FFmpegEncoder{}
		}
		params := opts.Video
		params.Width, params.Height = w, h
		if err := enc.Encode(ctx, frames, path, params); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}
}
