// Package frames holds the ordered timeline of canvas buffers that make up
// an animation.
package frames

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/ivlev/flipbook/internal/canvas"
)

var (
	// ErrCannotDeleteLastFrame is returned when deleting would leave the
	// store without frames.
	ErrCannotDeleteLastFrame = errors.New("cannot delete the last frame")

	// ErrIndexOutOfRange is returned for frame indexes outside [0, Len()).
	ErrIndexOutOfRange = errors.New("frame index out of range")

	// ErrDimensionMismatch is returned by Replace when the new frames do
	// not all share the same dimensions.
	ErrDimensionMismatch = errors.New("frame dimension mismatch")
)

// Store is an ordered, never empty sequence of equally sized canvas
// buffers with one active frame.
//
// All methods are safe for concurrent use. Buffers returned by ActiveFrame
// and Frame are owned by the store; callers that mutate them must do so
// through Update.
type Store struct {
	mu     sync.RWMutex
	width  int
	height int
	bg     color.RGBA
	frames []*canvas.Buffer
	active int
}

// New returns a store holding a single blank width×height frame.
func New(width, height int, background color.RGBA) *Store {
	s := &Store{width: width, height: height, bg: background}
	s.frames = []*canvas.Buffer{canvas.New(width, height, background)}
	return s
}

// Width returns the width shared by all frames.
func (s *Store) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width
}

// Height returns the height shared by all frames.
func (s *Store) Height() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height
}

// Background returns the color new frames are filled with.
func (s *Store) Background() color.RGBA {
	return s.bg
}

// Len returns the number of frames.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// ActiveIndex returns the index of the active frame.
func (s *Store) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ActiveFrame returns the active buffer.
func (s *Store) ActiveFrame() *canvas.Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames[s.active]
}

// Frame returns the buffer at index i.
func (s *Store) Frame(i int) (*canvas.Buffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.frames) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.frames))
	}
	return s.frames[i], nil
}

// AppendBlankFrame appends a frame filled with the background color, makes
// it active and returns its index.
func (s *Store) AppendBlankFrame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, canvas.New(s.width, s.height, s.bg))
	s.active = len(s.frames) - 1
	return s.active
}

// DeleteActiveFrame removes the active frame. If it was the last frame in
// the sequence the new last frame becomes active, otherwise the frame that
// moved into its slot does.
func (s *Store) DeleteActiveFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 1 {
		return ErrCannotDeleteLastFrame
	}
	copy(s.frames[s.active:], s.frames[s.active+1:])
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	if s.active == len(s.frames) {
		s.active--
	}
	return nil
}

// SetActiveIndex makes frame i active.
func (s *Store) SetActiveIndex(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.frames) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.frames))
	}
	s.active = i
	return nil
}

// Advance moves the active index to the next frame, wrapping to the first,
// and returns the new index.
func (s *Store) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = (s.active + 1) % len(s.frames)
	return s.active
}

// Update calls fn with the active buffer while holding the store's write
// lock, so readers never observe a partially applied mutation.
func (s *Store) Update(fn func(b *canvas.Buffer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.frames[s.active])
}

// View calls fn with the active buffer and its index while holding the
// store's read lock.
func (s *Store) View(fn func(index int, b *canvas.Buffer)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.active, s.frames[s.active])
}

// Snapshot returns deep copies of all frames in order.
func (s *Store) Snapshot() []*canvas.Buffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*canvas.Buffer, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Clone()
	}
	return out
}

// Replace swaps the whole sequence for frames and resets the active index
// to 0. frames must be non-empty and share the same dimensions; on error
// the store is left unchanged. The store takes ownership of the buffers.
func (s *Store) Replace(frames []*canvas.Buffer) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrDimensionMismatch)
	}
	w, h := frames[0].Width(), frames[0].Height()
	for i, f := range frames {
		if f.Width() != w || f.Height() != h {
			return fmt.Errorf("%w: frame %d is %dx%d, want %dx%d", ErrDimensionMismatch, i, f.Width(), f.Height(), w, h)
		}
	}
	seq := make([]*canvas.Buffer, len(frames))
	copy(seq, frames)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = w, h
	s.frames = seq
	s.active = 0
	return nil
}
