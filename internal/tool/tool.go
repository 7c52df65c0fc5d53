// Package tool describes the drawing tool selection applied to strokes.
package tool

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Stroke widths are bounded to this range.
const (
	MinWidth     = 1
	MaxWidth     = 50
	DefaultWidth = 2
)

var (
	// ErrInvalidWidth is returned for widths outside [MinWidth, MaxWidth].
	ErrInvalidWidth = errors.New("invalid stroke width")

	// ErrUnknownTool is returned when parsing an unrecognised tool name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidColor is returned when parsing a malformed color string.
	ErrInvalidColor = errors.New("invalid color")
)

// Kind identifies a drawing tool.
type Kind int

const (
	Pencil Kind = iota
	Brush
	Eraser
)

func (k Kind) String() string {
	switch k {
	case Pencil:
		return "pencil"
	case Brush:
		return "brush"
	case Eraser:
		return "eraser"
	default:
		return fmt.Sprintf("tool(%d)", int(k))
	}
}

// ParseKind returns the tool named s.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pencil":
		return Pencil, nil
	case "brush":
		return Brush, nil
	case "eraser":
		return Eraser, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
	}
}

// State is an immutable tool selection. The With methods return modified
// copies; the zero value is not valid, use Default.
type State struct {
	kind   Kind
	color  color.RGBA
	pencil int
	brush  int
}

// Default returns a pencil drawing in black with both widths set to
// DefaultWidth.
func Default() State {
	return State{
		kind:   Pencil,
		color:  color.RGBA{A: 0xff},
		pencil: DefaultWidth,
		brush:  DefaultWidth,
	}
}

// Kind returns the selected tool.
func (s State) Kind() Kind { return s.kind }

// Color returns the draw color.
func (s State) Color() color.RGBA { return s.color }

// PencilWidth returns the pencil stroke width.
func (s State) PencilWidth() int { return s.pencil }

// BrushWidth returns the brush stroke width.
func (s State) BrushWidth() int { return s.brush }

// Width returns the stroke width of the selected tool. The eraser uses the
// brush width.
func (s State) Width() int {
	if s.kind == Pencil {
		return s.pencil
	}
	return s.brush
}

// StrokeColor returns the color a segment drawn with the selected tool is
// painted in. The eraser always paints background.
func (s State) StrokeColor(background color.RGBA) color.RGBA {
	if s.kind == Eraser {
		return background
	}
	return s.color
}

// WithKind returns s with the tool set to k.
func (s State) WithKind(k Kind) State {
	s.kind = k
	return s
}

// WithColor returns s with the draw color set to c. The alpha channel is
// forced opaque since buffers hold RGB only.
func (s State) WithColor(c color.RGBA) State {
	c.A = 0xff
	s.color = c
	return s
}

// WithPencilWidth returns s with the pencil width set to w.
func (s State) WithPencilWidth(w int) (State, error) {
	if err := checkWidth(w); err != nil {
		return s, err
	}
	s.pencil = w
	return s, nil
}

// WithBrushWidth returns s with the brush width set to w.
func (s State) WithBrushWidth(w int) (State, error) {
	if err := checkWidth(w); err != nil {
		return s, err
	}
	s.brush = w
	return s, nil
}

func checkWidth(w int) error {
	if w < MinWidth || w > MaxWidth {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidWidth, w, MinWidth, MaxWidth)
	}
	return nil
}

// ParseColor parses a "#rrggbb" or "#rgb" hex color as returned by color
// picker dialogs.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// FormatColor returns c as a "#rrggbb" hex string.
func FormatColor(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
