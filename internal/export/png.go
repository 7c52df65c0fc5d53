package export

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/system"
)

// SequencePath returns the file name of frame i of a PNG sequence.
func SequencePath(base string, i int) string {
	return fmt.Sprintf("%s_%d.png", base, i)
}

// PNGSequence writes every frame to base_<i>.png, encoding up to workers
// frames in parallel. Files written before a failure are left in place.
// The returned paths are those written successfully, in frame order.
func PNGSequence(ctx context.Context, base string, frames []*canvas.Buffer, workers int) ([]string, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if workers < 1 {
		workers = 1
	}

	written := make([]bool, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writePNG(SequencePath(base, i), f); err != nil {
				return err
			}
			written[i] = true
			return nil
		})
	}
	err := g.Wait()

	var paths []string
	for i, ok := range written {
		if ok {
			paths = append(paths, SequencePath(base, i))
		}
	}
	return paths, err
}

func writePNG(path string, b *canvas.Buffer) (err error) {
	img := b.ToRGBA(system.GetImage(b.Bounds()))
	defer system.PutImage(img)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		cerr := f.Close()
		if err == nil && cerr != nil {
			err = fmt.Errorf("%w: %w", ErrIO, cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, path, err)
	}
	return nil
}
