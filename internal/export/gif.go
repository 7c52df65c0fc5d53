package export

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/ivlev/flipbook/internal/canvas"
)

// Delay converts a frame interval to GIF delay units of 1/100s, rounding
// to the nearest unit. Intervals shorter than 10ms are clamped to one
// unit since a zero delay is treated as "as fast as possible".
func Delay(interval time.Duration) int {
	d := int((interval + 5*time.Millisecond) / (10 * time.Millisecond))
	if d < 1 {
		d = 1
	}
	return d
}

// GIF encodes frames as an infinitely looping animated GIF with every frame
// shown for interval.
func GIF(w io.Writer, frames []*canvas.Buffer, interval time.Duration) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	delay := Delay(interval)
	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0,
	}
	for i, f := range frames {
		g.Image[i] = paletted(f)
		g.Delay[i] = delay
	}
	return gif.EncodeAll(w, g)
}

// SaveGIF writes the GIF encoding of frames to path.
func SaveGIF(path string, frames []*canvas.Buffer, interval time.Duration) (err error) {
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
	if err := GIF(f, frames, interval); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrIO, path, err)
	}
	return nil
}

// paletted converts a frame to a paletted image. Frames with at most 256
// distinct colors get an exact palette; others are dithered onto the Plan 9
// palette.
func paletted(b *canvas.Buffer) *image.Paletted {
	bounds := b.Bounds()
	index := make(map[color.RGBA]uint8)
	var pal color.Palette
	pix := make([]uint8, bounds.Dx()*bounds.Dy())
	exact := true
scan:
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := b.RGBAt(x, y)
			i, ok := index[c]
			if !ok {
				if len(pal) == 256 {
					exact = false
					break scan
				}
				i = uint8(len(pal))
				index[c] = i
				pal = append(pal, c)
			}
			pix[y*bounds.Dx()+x] = i
		}
	}
	if exact {
		return &image.Paletted{Pix: pix, Stride: bounds.Dx(), Rect: bounds, Palette: pal}
	}

	dst := image.NewPaletted(bounds, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, bounds, b, image.Point{})
	return dst
}
