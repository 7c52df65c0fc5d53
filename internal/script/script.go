// Package script replays YAML gesture scripts through the drawing engine.
//
// A script lists strokes per frame:
//
//	version: "1.0"
//	frames:
//	  - strokes:
//	      - tool: brush
//	        color: "#ff0000"
//	        width: 6
//	        points: [{x: 10, y: 10}, {x: 200, y: 120}]
//	  - strokes: []
//
// Frame i of the script draws onto frame i of the store; missing frames are
// appended. Stroke fields left empty keep the current tool selection.
package script

import (
	"errors"
	"fmt"
)

// Version is the script format written by WriteScript.
const Version = "1.0"

// ErrInvalidScript is returned for scripts that name unknown tools,
// malformed colors, out-of-range widths or strokes without points.
var ErrInvalidScript = errors.New("invalid script")

// Script is a complete drawing session.
type Script struct {
	Version string        `yaml:"version"`
	Frames  []FrameScript `yaml:"frames"`
}

// FrameScript holds the strokes drawn on one frame.
type FrameScript struct {
	Strokes []Stroke `yaml:"strokes"`
}

// Stroke is one pointer gesture: pointer-down at the first point, a move to
// every following point, then pointer-up.
type Stroke struct {
	Tool   string  `yaml:"tool,omitempty"`
	Color  string  `yaml:"color,omitempty"` // #rrggbb
	Width  int     `yaml:"width,omitempty"`
	Points []Point `yaml:"points,flow"`
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// StrokeCount returns the total number of strokes in s.
func (s *Script) StrokeCount() int {
	n := 0
	for _, f := range s.Frames {
		n += len(f.Strokes)
	}
	return n
}

func invalid(frame, stroke int, err error) error {
	return fmt.Errorf("%w: frame %d stroke %d: %w", ErrInvalidScript, frame, stroke, err)
}
