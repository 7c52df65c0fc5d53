package source

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ImageSource reads a single image file or every PNG and JPEG of a
// directory in name order.
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".jpg", ".jpeg", ".png":
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		slices.Sort(paths)
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) Len() int {
	return len(s.paths)
}

func (s *ImageSource) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("image index %d out of range [0, %d)", index, len(s.paths))
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.paths[index], err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// GIFSource yields the fully composed frames of an animated GIF.
type GIFSource struct {
	frames []*image.RGBA
}

func NewGIFSource(path string) (*GIFSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}
	screen := image.NewRGBA(bounds)
	frames := make([]*image.RGBA, 0, len(g.Image))
	for i, img := range g.Image {
		var prev *image.RGBA
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalPrevious {
			prev = cloneRGBA(screen)
		}
		draw.Draw(screen, img.Bounds(), img, img.Bounds().Min, draw.Over)
		frames = append(frames, cloneRGBA(screen))

		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				draw.Draw(screen, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				screen = prev
			}
		}
	}
	return &GIFSource{frames: frames}, nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func (s *GIFSource) Len() int {
	return len(s.frames)
}

func (s *GIFSource) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(s.frames) {
		return nil, fmt.Errorf("gif frame %d out of range [0, %d)", index, len(s.frames))
	}
	return s.frames[index], nil
}

func (s *GIFSource) Close() error {
	return nil
}
