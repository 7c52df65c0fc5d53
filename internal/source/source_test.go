package source

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/export"
)

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

var (
	red   = color.RGBA{R: 0xff, A: 0xff}
	green = color.RGBA{G: 0xff, A: 0xff}
)

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 4, green)
	writePNG(t, filepath.Join(dir, "a.PNG"), 4, 4, red)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(dir, 150)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()
	if src.Len() != 2 {
		t.Fatalf("Expected 2 images, got %d", src.Len())
	}

	frames, err := Frames(context.Background(), src, 4, 4, canvas.White, 2)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if got := frames[0].RGBAt(0, 0); got != red {
		t.Errorf("Expected a.PNG first, got %v", got)
	}
	if got := frames[1].RGBAt(3, 3); got != green {
		t.Errorf("Expected b.png second, got %v", got)
	}
	if _, err := src.Frame(2); err == nil {
		t.Error("Expected error for out-of-range frame")
	}
}

func TestFramesLetterbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, path, 20, 10, red)

	src, err := Open(path, 150)
	if err != nil {
		t.Fatal(err)
	}
	frames, err := Frames(context.Background(), src, 10, 10, canvas.White, 1)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	b := frames[0]
	if b.Width() != 10 || b.Height() != 10 {
		t.Fatalf("Expected 10x10, got %dx%d", b.Width(), b.Height())
	}
	if got := b.RGBAt(5, 0); got != canvas.White {
		t.Errorf("Expected white letterbox bar, got %v", got)
	}
	if got := b.RGBAt(5, 5); got != red {
		t.Errorf("Expected scaled image in the middle, got %v", got)
	}
}

func TestFramesEmpty(t *testing.T) {
	src, err := NewImageSource(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Frames(context.Background(), src, 4, 4, canvas.White, 1); err != ErrEmptySource {
		t.Errorf("Expected ErrEmptySource, got %v", err)
	}
}

func TestGIFSourceRoundTrip(t *testing.T) {
	a := canvas.New(8, 6, canvas.White)
	a.DrawLine(0, 0, 7, 5, red, 1)
	b := canvas.New(8, 6, canvas.White)
	b.DrawLine(0, 5, 7, 0, green, 2)

	path := filepath.Join(t.TempDir(), "anim.gif")
	if err := export.SaveGIF(path, []*canvas.Buffer{a, b}, 100*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	frames, err := Frames(context.Background(), src, 8, 6, canvas.White, 2)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}
	if !frames[0].Equal(a) || !frames[1].Equal(b) {
		t.Error("Imported GIF frames differ from the exported ones")
	}
}

func TestOpenMissing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"missing.pdf", "missing.gif", "missing.png"} {
		if _, err := Open(filepath.Join(dir, name), 72); err == nil {
			t.Errorf("Expected error opening %s", name)
		}
	}
}
