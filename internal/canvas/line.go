package canvas

import (
	"image"
	"image/color"
	"math"
)

// DrawLine rasterizes a straight stroke of the given width from (x0, y0) to
// (x1, y1), overwriting the pixels it covers with c. Every point visited by
// the line is stamped with a round brush of diameter width. Coordinates
// outside the buffer are allowed; the parts of the stroke that fall outside
// are discarded.
func (b *Buffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA, width int) {
	if width < 1 {
		width = 1
	}
	stamp := brush(width)

	// Restrict the walk to the part of the segment that can touch the
	// buffer so far off-canvas pointers do not cost a long walk.
	pad := float64(width)
	fx0, fy0, fx1, fy1, ok := clipSegment(
		float64(x0), float64(y0), float64(x1), float64(y1),
		-pad, -pad, float64(b.w-1)+pad, float64(b.h-1)+pad,
	)
	if !ok {
		return
	}
	x0, y0 = int(math.Round(fx0)), int(math.Round(fy0))
	x1, y1 = int(math.Round(fx1)), int(math.Round(fy1))

	bresenham(x0, y0, x1, y1, func(x, y int) {
		for _, p := range stamp {
			b.Set(x+p.X, y+p.Y, c)
		}
	})
}

// bresenham calls fn for each integer point on the line from (x0, y0) to
// (x1, y1), both ends included.
func bresenham(x0, y0, x1, y1 int, fn func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	for {
		fn(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// brush returns the pixel offsets of a round brush with the given diameter.
// Even diameters are centered between pixels, so the offsets span
// [-width/2, width/2-1] on each axis.
func brush(width int) []image.Point {
	if width <= 1 {
		return []image.Point{{}}
	}
	lo := -(width / 2)
	hi := lo + width - 1
	c := float64(lo+hi) / 2
	r2 := float64(width) * float64(width) / 4
	pts := make([]image.Point, 0, width*width)
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			fx, fy := float64(dx)-c, float64(dy)-c
			if fx*fx+fy*fy <= r2 {
				pts = append(pts, image.Point{X: dx, Y: dy})
			}
		}
	}
	return pts
}

// clipSegment clips the segment (x0, y0)-(x1, y1) to the rectangle
// [minX, maxX]×[minY, maxY] using the Liang–Barsky algorithm. It reports
// false if no part of the segment lies within the rectangle.
func clipSegment(x0, y0, x1, y1, minX, minY, maxX, maxY float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
