package project

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/flipbook/internal/canvas"
	"github.com/ivlev/flipbook/internal/frames"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func sameFrames(t *testing.T, a, b *frames.Store) {
	t.Helper()
	if a.Len() != b.Len() {
		t.Fatalf("Frame count mismatch: %d != %d", a.Len(), b.Len())
	}
	if a.Width() != b.Width() || a.Height() != b.Height() {
		t.Fatalf("Dimension mismatch: %dx%d != %dx%d", a.Width(), a.Height(), b.Width(), b.Height())
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	for i := range sa {
		if !sa[i].Equal(sb[i]) {
			t.Errorf("Frame %d differs", i)
		}
	}
}

func TestScenarioSaveLoad(t *testing.T) {
	store := frames.New(800, 600, canvas.White)
	store.AppendBlankFrame()
	store.AppendBlankFrame()
	if store.Len() != 3 || store.ActiveIndex() != 2 {
		t.Fatalf("Expected 3 frames with active 2, got %d active %d", store.Len(), store.ActiveIndex())
	}
	if err := store.DeleteActiveFrame(); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 2 || store.ActiveIndex() != 1 {
		t.Fatalf("Expected 2 frames with active 1, got %d active %d", store.Len(), store.ActiveIndex())
	}
	store.Update(func(b *canvas.Buffer) { b.DrawLine(10, 10, 790, 590, red, 7) })

	path := filepath.Join(t.TempDir(), "anim.json")
	if err := Save(path, store, 24); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := frames.New(16, 16, canvas.White)
	doc, err := Load(path, loaded)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.FPS != 24 || doc.Version != Version {
		t.Errorf("Unexpected document header: version=%d fps=%d", doc.Version, doc.FPS)
	}
	if loaded.Width() != 800 || loaded.Height() != 600 {
		t.Errorf("Expected 800x600, got %dx%d", loaded.Width(), loaded.Height())
	}
	if loaded.ActiveIndex() != 0 {
		t.Errorf("Expected active index 0 after load, got %d", loaded.ActiveIndex())
	}
	sameFrames(t, store, loaded)
}

func TestRoundTripStream(t *testing.T) {
	store := frames.New(7, 5, canvas.White)
	for i := 0; i < 4; i++ {
		store.Update(func(b *canvas.Buffer) { b.DrawLine(0, i, 6, 4-i, color.RGBA{G: uint8(40 * i), A: 0xff}, i+1) })
		store.AppendBlankFrame()
	}

	var buf bytes.Buffer
	if err := Encode(&buf, store, 12); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	doc, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	bufs, err := doc.Buffers()
	if err != nil {
		t.Fatalf("Buffers failed: %v", err)
	}
	got := frames.New(1, 1, canvas.White)
	if err := got.Replace(bufs); err != nil {
		t.Fatal(err)
	}
	sameFrames(t, store, got)
}

func TestLoadCorrupt(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(make([]byte, 2*2*3))
	short := base64.StdEncoding.EncodeToString(make([]byte, 2*2*3-1))
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not_json", doc: "frames: nope"},
		{name: "truncated", doc: `{"version":1,"width":2,"height":2,"frames":["` + good},
		{name: "bad_base64", doc: `{"version":1,"width":2,"height":2,"frames":["` + good + `","!!!"]}`},
		{name: "short_frame", doc: `{"version":1,"width":2,"height":2,"frames":["` + good + `","` + short + `"]}`},
		{name: "no_dimensions", doc: `{"frames":["` + good + `"]}`},
		{name: "no_frames", doc: `{"version":1,"width":2,"height":2,"frames":[]}`},
		{name: "future_version", doc: `{"version":99,"width":2,"height":2,"frames":["` + good + `"]}`},
		{name: "frames_not_strings", doc: `{"version":1,"width":2,"height":2,"frames":[1,2]}`},
		{name: "trailing_garbage", doc: `{"version":1,"width":2,"height":2,"frames":["` + good + `"]} not json at all`},
		{name: "second_document", doc: `{"version":1,"width":2,"height":2,"frames":["` + good + `"]}{}`},
		{name: "overflowing_dimensions", doc: `{"version":1,"width":4294967296,"height":4294967296,"frames":[""]}`},
		{name: "oversized_dimensions", doc: `{"version":1,"width":40000,"height":1,"frames":[""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}

			store := frames.New(3, 3, canvas.White)
			store.AppendBlankFrame()
			store.Update(func(b *canvas.Buffer) { b.Set(1, 1, red) })
			before := store.Snapshot()

			_, err := Load(path, store)
			if !errors.Is(err, ErrCorruptProjectFile) {
				t.Fatalf("Expected ErrCorruptProjectFile, got %v", err)
			}
			if store.Len() != 2 || store.ActiveIndex() != 1 || store.Width() != 3 {
				t.Errorf("Failed load changed the store: len=%d active=%d width=%d", store.Len(), store.ActiveIndex(), store.Width())
			}
			after := store.Snapshot()
			for i := range before {
				if !before[i].Equal(after[i]) {
					t.Errorf("Failed load changed frame %d", i)
				}
			}
		})
	}
}

func TestShortFrameIsMalformed(t *testing.T) {
	doc := &Document{Version: 1, Width: 2, Height: 2, Frames: []string{base64.StdEncoding.EncodeToString([]byte{1, 2, 3})}}
	_, err := doc.Buffers()
	if !errors.Is(err, ErrCorruptProjectFile) || !errors.Is(err, canvas.ErrMalformedBuffer) {
		t.Errorf("Expected corrupt project wrapping malformed buffer, got %v", err)
	}
}

func TestTrailingWhitespaceAccepted(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(make([]byte, 3))
	doc, err := Decode(strings.NewReader(`{"version":1,"width":1,"height":1,"frames":["` + good + `"]}` + "\n\n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, err := doc.Buffers(); err != nil {
		t.Errorf("Buffers failed: %v", err)
	}
}

func TestSaveFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.json")
	if err := Save(path, frames.New(2, 2, canvas.White), 24); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := fi.Mode().Perm(); perm != 0644 {
		t.Errorf("Expected mode 0644, got %o", perm)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := frames.New(2, 2, canvas.White)
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), store)
	if !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}

func TestSaveUnwritable(t *testing.T) {
	store := frames.New(2, 2, canvas.White)
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "anim.json")
	if err := Save(path, store, 24); !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}

func TestSaveKeepsOldFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anim.json")
	store := frames.New(2, 2, canvas.White)
	if err := Save(path, store, 24); err != nil {
		t.Fatal(err)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Saving over a directory fails at rename; the old file is untouched
	// and no temporary file is left behind.
	if err := Save(dir, store, 24); !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO saving over a directory, got %v", err)
	}
	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(old, cur) {
		t.Error("Existing project changed by failed save")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the project file in %s, found %d entries", dir, len(entries))
	}
}
