// Package drawing turns pointer gestures into strokes on the active frame.
package drawing

import (
	"image"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/frames"
	"github.com/ivlev/flipbook/internal/tool"
)

// Engine is the gesture state machine. Between PointerDown and PointerUp
// every PointerMove commits one segment from the previous pointer position
// to the new one onto the store's active frame.
//
// Engine is not safe for concurrent use; pointer events are expected to
// arrive from a single UI goroutine.
type Engine struct {
	store   *frames.Store
	drawing bool
	last    image.Point
}

// New returns an idle engine drawing onto store.
func New(store *frames.Store) *Engine {
	return &Engine{store: store}
}

// Drawing reports whether a gesture is in progress.
func (e *Engine) Drawing() bool { return e.drawing }

// PointerDown starts a gesture at (x, y). Nothing is drawn.
func (e *Engine) PointerDown(x, y int) {
	e.drawing = true
	e.last = image.Point{X: x, Y: y}
}

// PointerMove draws a segment from the previous pointer position to (x, y)
// using ts and records (x, y) as the new previous position. It does
// nothing if no gesture is in progress and reports whether a segment was
// committed.
func (e *Engine) PointerMove(x, y int, ts tool.State) bool {
	if !e.drawing {
		return false
	}
	from := e.last
	bg := e.store.Background()
	e.store.Update(func(b *canvas.Buffer) {
		b.DrawLine(from.X, from.Y, x, y, ts.StrokeColor(bg), ts.Width())
	})
	e.last = image.Point{X: x, Y: y}
	return true
}

// PointerUp ends the gesture. Nothing is drawn.
func (e *Engine) PointerUp() {
	e.drawing = false
	e.last = image.Point{}
}
