package export

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/config"
)

// VideoEncoder turns frames into a video file.
type VideoEncoder interface {
	Encode(ctx context.Context, frames []*canvas.Buffer, videoPath string, params config.SegmentParams) error
}

// FFmpegEncoder pipes raw frames into an ffmpeg process.
type FFmpegEncoder struct {
	// Binary is the ffmpeg executable; empty means "ffmpeg" from PATH.
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

// Encode writes frames to videoPath. Missing ffmpeg and encoder failures
// wrap ErrIO.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames []*canvas.Buffer, videoPath string, params config.SegmentParams) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	bin, err := exec.LookPath(e.binary())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if params.Encoder == "" || params.Encoder == "auto" {
		params.Encoder = detectH264Encoder(ctx, bin)
	}
	params.Quality = DefaultQuality(params.Encoder, params.Quality)
	args := buildFFmpegArgs(videoPath, params)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe error: %w", ErrIO, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: ffmpeg start error: %w", ErrIO, err)
	}

	werr := writeRawRGB(stdin, frames)
	stdin.Close()
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: ffmpeg error: %w, output: %s", ErrIO, err, lastLines(stderr.String(), 5))
	}
	if werr != nil {
		return fmt.Errorf("%w: write raw error: %w", ErrIO, werr)
	}
	return nil
}

func buildFFmpegArgs(videoPath string, params config.SegmentParams) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgb24",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
		// yuv420p needs even dimensions.
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-c:v", params.Encoder,
	}

	switch params.Encoder {
	case "h264_videotoolbox":
		bitrate := params.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", params.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", params.Quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

func writeRawRGB(w io.Writer, frames []*canvas.Buffer) error {
	for _, f := range frames {
		if _, err := w.Write(f.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// BestH264Encoder returns the first hardware H.264 encoder the local ffmpeg
// supports, falling back to libx264.
func BestH264Encoder(ctx context.Context) string {
	return detectH264Encoder(ctx, "ffmpeg")
}

func detectH264Encoder(ctx context.Context, bin string) string {
	out, err := exec.CommandContext(ctx, bin, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality returns q, or a sensible quality for encoder if q is 0.
func DefaultQuality(encoder string, q int) int {
	if q != 0 {
		return q
	}
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
