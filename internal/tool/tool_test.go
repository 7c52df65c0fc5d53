package tool

import (
	"errors"
	"image/color"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()
	if s.Kind() != Pencil {
		t.Errorf("Expected pencil, got %v", s.Kind())
	}
	if s.Color() != (color.RGBA{A: 0xff}) {
		t.Errorf("Expected black, got %v", s.Color())
	}
	if s.PencilWidth() != DefaultWidth || s.BrushWidth() != DefaultWidth {
		t.Errorf("Expected widths %d, got pencil=%d brush=%d", DefaultWidth, s.PencilWidth(), s.BrushWidth())
	}
}

func TestWidthBounds(t *testing.T) {
	tests := []struct {
		w       int
		wantErr bool
	}{
		{0, true},
		{-3, true},
		{1, false},
		{25, false},
		{50, false},
		{51, true},
	}
	for _, tt := range tests {
		s, err := Default().WithPencilWidth(tt.w)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidWidth) {
				t.Errorf("WithPencilWidth(%d): expected ErrInvalidWidth, got %v", tt.w, err)
			}
			if s.PencilWidth() != DefaultWidth {
				t.Errorf("WithPencilWidth(%d) changed width on error", tt.w)
			}
			continue
		}
		if err != nil {
			t.Errorf("WithPencilWidth(%d) failed: %v", tt.w, err)
		}
		if s.PencilWidth() != tt.w {
			t.Errorf("Expected pencil width %d, got %d", tt.w, s.PencilWidth())
		}

		s, err = Default().WithBrushWidth(tt.w)
		if err != nil {
			t.Errorf("WithBrushWidth(%d) failed: %v", tt.w, err)
		}
		if s.BrushWidth() != tt.w {
			t.Errorf("Expected brush width %d, got %d", tt.w, s.BrushWidth())
		}
	}
}

func TestWidthPerTool(t *testing.T) {
	s, _ := Default().WithPencilWidth(3)
	s, _ = s.WithBrushWidth(17)
	if s.Width() != 3 {
		t.Errorf("Pencil: expected width 3, got %d", s.Width())
	}
	if w := s.WithKind(Brush).Width(); w != 17 {
		t.Errorf("Brush: expected width 17, got %d", w)
	}
	if w := s.WithKind(Eraser).Width(); w != 17 {
		t.Errorf("Eraser: expected width 17, got %d", w)
	}
}

func TestImmutable(t *testing.T) {
	a := Default()
	b := a.WithKind(Eraser).WithColor(color.RGBA{R: 0xff})
	if a.Kind() != Pencil || a.Color() != (color.RGBA{A: 0xff}) {
		t.Error("With methods modified the receiver")
	}
	if b.Color().A != 0xff {
		t.Errorf("Expected opaque color, got %v", b.Color())
	}
}

func TestStrokeColor(t *testing.T) {
	bg := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	red := color.RGBA{R: 0xff, A: 0xff}
	s := Default().WithColor(red)
	if got := s.StrokeColor(bg); got != red {
		t.Errorf("Pencil: expected %v, got %v", red, got)
	}
	if got := s.WithKind(Eraser).StrokeColor(bg); got != bg {
		t.Errorf("Eraser: expected background %v, got %v", bg, got)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Pencil, Brush, Eraser} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("spray"); !errors.Is(err, ErrUnknownTool) {
		t.Errorf("Expected ErrUnknownTool, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#ff0080", want: color.RGBA{R: 0xff, B: 0x80, A: 0xff}},
		{in: "00ff00", want: color.RGBA{G: 0xff, A: 0xff}},
		{in: "#fff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "black", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("ParseColor(%q): expected ErrInvalidColor, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q): expected %v, got %v", tt.in, tt.want, got)
		}
		if back, _ := ParseColor(FormatColor(got)); back != got {
			t.Errorf("FormatColor(%v) did not round trip: %s", got, FormatColor(got))
		}
	}
}
