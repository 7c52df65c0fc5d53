package script

import (
	"errors"

	"github.com/ivlev/flipbook/internal/drawing"
	"github.com/ivlev/flipbook/internal/frames"
	"github.com/ivlev/flipbook/internal/tool"
)

type resolved struct {
	ts     tool.State
	points []Point
}

// resolve checks every stroke of s and returns, per frame, the tool state
// each stroke is drawn with. Tool selections carry over from one stroke to
// the next, starting from base.
func (s *Script) resolve(base tool.State) ([][]resolved, error) {
	out := make([][]resolved, len(s.Frames))
	ts := base
	for fi, f := range s.Frames {
		for si, st := range f.Strokes {
			if len(st.Points) == 0 {
				return nil, invalid(fi, si, errors.New("no points"))
			}
			if st.Tool != "" {
				k, err := tool.ParseKind(st.Tool)
				if err != nil {
					return nil, invalid(fi, si, err)
				}
				ts = ts.WithKind(k)
			}
			if st.Color != "" {
				c, err := tool.ParseColor(st.Color)
				if err != nil {
					return nil, invalid(fi, si, err)
				}
				ts = ts.WithColor(c)
			}
			if st.Width != 0 {
				var err error
				if ts.Kind() == tool.Pencil {
					ts, err = ts.WithPencilWidth(st.Width)
				} else {
					ts, err = ts.WithBrushWidth(st.Width)
				}
				if err != nil {
					return nil, invalid(fi, si, err)
				}
			}
			out[fi] = append(out[fi], resolved{ts: ts, points: st.Points})
		}
	}
	return out, nil
}

// Apply draws s onto store through eng, appending frames as needed, and
// returns the tool state after the last stroke. The script is checked
// before anything is drawn; an invalid script leaves the store untouched.
// The active frame is left on the last frame the script touched.
func Apply(s *Script, store *frames.Store, eng *drawing.Engine, base tool.State) (tool.State, error) {
	plan, err := s.resolve(base)
	if err != nil {
		return base, err
	}

	ts := base
	for fi, strokes := range plan {
		for store.Len() <= fi {
			store.AppendBlankFrame()
		}
		if err := store.SetActiveIndex(fi); err != nil {
			return ts, err
		}
		for _, st := range strokes {
			p := st.points[0]
			eng.PointerDown(p.X, p.Y)
			if len(st.points) == 1 {
				// A single point still marks the canvas.
				eng.PointerMove(p.X, p.Y, st.ts)
			}
			for _, p := range st.points[1:] {
				eng.PointerMove(p.X, p.Y, st.ts)
			}
			eng.PointerUp()
			ts = st.ts
		}
	}
	return ts, nil
}
