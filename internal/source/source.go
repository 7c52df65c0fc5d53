// Package source imports frames from PDFs, GIFs and image files.
package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/system"
)

// ErrEmptySource is returned when a source has no frames.
var ErrEmptySource = errors.New("source has no frames")

// Source is a sequence of images that can become animation frames.
type Source interface {
	Len() int
	Frame(index int) (image.Image, error)
	Close() error
}

// Open returns a Source for path: a PDF document, an animated GIF, or an
// image file or directory of images. PDF pages are rendered at dpi.
func Open(path string, dpi int) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFSource(path, dpi)
	case ".gif":
		return NewGIFSource(path)
	}
	return NewImageSource(path)
}

type PDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewPDFSource(path string, dpi int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (p *PDFSource) Len() int {
	return p.doc.NumPage()
}

// Frame renders page index. Each call opens its own document handle so
// pages can be rendered concurrently.
func (p *PDFSource) Frame(index int) (image.Image, error) {
	doc, err := fitz.New(p.path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(index, float64(p.dpi))
}

func (p *PDFSource) Close() error {
	return p.doc.Close()
}

// Frames renders every image of src onto width×height buffers, letterboxed
// on bg, using up to workers goroutines.
func Frames(ctx context.Context, src Source, width, height int, bg color.RGBA, workers int) ([]*canvas.Buffer, error) {
	n := src.Len()
	if n == 0 {
		return nil, ErrEmptySource
	}
	if err := system.CheckMemory(ctx, system.FrameBytes(n, width, height)); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]*canvas.Buffer, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := src.Frame(i)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			out[i] = canvas.FromImage(img, width, height, bg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
