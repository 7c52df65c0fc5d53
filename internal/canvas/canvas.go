// Package canvas provides the fixed-size RGB pixel buffers that make up the
// frames of an animation.
package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// ErrMalformedBuffer is returned when raw pixel data does not match the
// declared buffer dimensions.
var ErrMalformedBuffer = errors.New("malformed buffer")

// White is the default background color of new frames.
var White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Buffer is a width×height grid of RGB pixels stored row-major, three bytes
// per pixel. Buffer implements image.Image; every pixel is opaque.
type Buffer struct {
	w, h int
	pix  []byte
}

// New returns a buffer of the given dimensions filled with fill.
// New panics if width or height is not positive.
func New(width, height int, fill color.RGBA) *Buffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("canvas: invalid dimensions %dx%d", width, height))
	}
	b := &Buffer{w: width, h: height, pix: make([]byte, width*height*3)}
	b.Fill(fill)
	return b
}

// FromBytes returns a buffer backed by a copy of the raw RGB bytes in p.
// The length of p must be exactly width*height*3.
func FromBytes(width, height int, p []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrMalformedBuffer, width, height)
	}
	if width > math.MaxInt/3/height {
		return nil, fmt.Errorf("%w: dimensions %dx%d too large", ErrMalformedBuffer, width, height)
	}
	if len(p) != width*height*3 {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d", ErrMalformedBuffer, len(p), width*height*3, width, height)
	}
	pix := make([]byte, len(p))
	copy(pix, p)
	return &Buffer{w: width, h: height, pix: pix}, nil
}

// FromImage renders img onto a new width×height buffer filled with bg. The
// image is scaled to fit while keeping its aspect ratio and is centered.
func FromImage(img image.Image, width, height int, bg color.RGBA) *Buffer {
	rect := image.Rect(0, 0, width, height)
	dst := image.NewRGBA(rect)
	draw.Draw(dst, rect, &image.Uniform{C: bg}, image.Point{}, draw.Src)

	sb := img.Bounds()
	switch {
	case sb.Empty():
	case sb.Size() == rect.Size():
		draw.Draw(dst, rect, img, sb.Min, draw.Over)
	default:
		draw.CatmullRom.Scale(dst, fitRect(sb, rect), img, sb, draw.Over, nil)
	}

	b := &Buffer{w: width, h: height, pix: make([]byte, width*height*3)}
	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		out := b.pix[y*width*3 : (y+1)*width*3]
		for x := 0; x < width; x++ {
			out[x*3] = row[x*4]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return b
}

// fitRect returns the largest rectangle with the aspect ratio of src that
// fits centered in dst.
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	w, h := dw, sh*dw/sw
	if h > dh {
		w, h = sw*dh/sh, dh
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	x := dst.Min.X + (dw-w)/2
	y := dst.Min.Y + (dh-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.w }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.h }

// Bytes returns a copy of the raw row-major RGB bytes.
func (b *Buffer) Bytes() []byte {
	p := make([]byte, len(b.pix))
	copy(p, b.pix)
	return p
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{w: b.w, h: b.h, pix: b.Bytes()}
}

// Equal reports whether b and o have the same dimensions and pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.w == o.w && b.h == o.h && bytes.Equal(b.pix, o.pix)
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c color.RGBA) {
	for i := 0; i < len(b.pix); i += 3 {
		b.pix[i] = c.R
		b.pix[i+1] = c.G
		b.pix[i+2] = c.B
	}
}

// RGBAt returns the color of the pixel at (x, y). Points outside the
// buffer return the zero color.
func (b *Buffer) RGBAt(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return color.RGBA{}
	}
	i := (y*b.w + x) * 3
	return color.RGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: 0xff}
}

// Set sets the pixel at (x, y) to c. Points outside the buffer are ignored.
func (b *Buffer) Set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	i := (y*b.w + x) * 3
	b.pix[i] = c.R
	b.pix[i+1] = c.G
	b.pix[i+2] = c.B
}

// ColorModel implements the image.Image interface.
func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements the image.Image interface.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.w, b.h) }

// At implements the image.Image interface.
func (b *Buffer) At(x, y int) color.Color { return b.RGBAt(x, y) }

// ToRGBA copies the buffer into dst and returns it. If dst is nil or its
// bounds differ from the buffer's, a new image is allocated.
func (b *Buffer) ToRGBA(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect != b.Bounds() {
		dst = image.NewRGBA(b.Bounds())
	}
	for y := 0; y < b.h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.w*4]
		in := b.pix[y*b.w*3 : (y+1)*b.w*3]
		for x := 0; x < b.w; x++ {
			row[x*4] = in[x*3]
			row[x*4+1] = in[x*3+1]
			row[x*4+2] = in[x*3+2]
			row[x*4+3] = 0xff
		}
	}
	return dst
}
