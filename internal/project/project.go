// Package project reads and writes animation project files.
//
// A project is a JSON document holding the frame dimensions and every frame
// as base64-encoded raw RGB bytes:
//
//	{"version":1,"width":800,"height":600,"fps":24,"frames":["..."]}
package project

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/frames"
)

// Version is the project format version written by Save.
const Version = 1

// MaxDimension bounds the canvas width and height a project may declare.
const MaxDimension = 1 << 15

// Ext is the conventional project file extension.
const Ext = ".json"

var (
	// ErrCorruptProjectFile is returned when a project document cannot be
	// parsed or its frames do not match its dimensions.
	ErrCorruptProjectFile = errors.New("corrupt project file")

	// ErrIO is returned when a file cannot be read or written.
	ErrIO = errors.New("i/o error")
)

// Document is the serialized form of a project.
type Document struct {
	Version int      `json:"version"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	FPS     int      `json:"fps,omitempty"`
	Frames  []string `json:"frames"`
}

// NewDocument encodes bufs into a document. All buffers must share the
// same dimensions.
func NewDocument(bufs []*canvas.Buffer, fps int) (*Document, error) {
	if len(bufs) == 0 {
		return nil, errors.New("no frames")
	}
	doc := &Document{
		Version: Version,
		Width:   bufs[0].Width(),
		Height:  bufs[0].Height(),
		FPS:     fps,
		Frames:  make([]string, len(bufs)),
	}
	for i, b := range bufs {
		if b.Width() != doc.Width || b.Height() != doc.Height {
			return nil, fmt.Errorf("frame %d is %dx%d, want %dx%d", i, b.Width(), b.Height(), doc.Width, doc.Height)
		}
		doc.Frames[i] = base64.StdEncoding.EncodeToString(b.Bytes())
	}
	return doc, nil
}

// Buffers decodes the document's frames.
func (d *Document) Buffers() ([]*canvas.Buffer, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: missing or invalid dimensions %dx%d", ErrCorruptProjectFile, d.Width, d.Height)
	}
	if d.Width > MaxDimension || d.Height > MaxDimension {
		return nil, fmt.Errorf("%w: dimensions %dx%d exceed %d", ErrCorruptProjectFile, d.Width, d.Height, MaxDimension)
	}
	if len(d.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrCorruptProjectFile)
	}
	bufs := make([]*canvas.Buffer, len(d.Frames))
	for i, f := range d.Frames {
		raw, err := base64.StdEncoding.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %w", ErrCorruptProjectFile, i, err)
		}
		b, err := canvas.FromBytes(d.Width, d.Height, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %w", ErrCorruptProjectFile, i, err)
		}
		bufs[i] = b
	}
	return bufs, nil
}

// Encode writes the frames of store to w.
func Encode(w io.Writer, store *frames.Store, fps int) error {
	doc, err := NewDocument(store.Snapshot(), fps)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(doc)
}

// Decode reads and validates a document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptProjectFile, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrCorruptProjectFile)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptProjectFile, doc.Version)
	}
	return &doc, nil
}

// Save writes the frames of store to path. The document is written to a
// temporary file in the same directory and renamed into place, so an
// existing project is never left truncated.
func Save(path string, store *frames.Store, fps int) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".flipbook-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err = Encode(f, store, fps); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Load reads the project at path and replaces the frames of store with
// its frames, resetting the active index to 0. On any error store is left
// unchanged.
func Load(path string, store *frames.Store) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	bufs, err := doc.Buffers()
	if err != nil {
		return nil, err
	}
	if err := store.Replace(bufs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptProjectFile, err)
	}
	return doc, nil
}
