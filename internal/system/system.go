package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// ErrInsufficientMemory is returned by CheckMemory when the system does not
// have enough available memory for an operation.
var ErrInsufficientMemory = errors.New("insufficient memory")

// FrameBytes returns the approximate working set of n RGBA frames of the
// given size.
func FrameBytes(n, width, height int) uint64 {
	return uint64(n) * uint64(width) * uint64(height) * 4
}

// CheckMemory returns ErrInsufficientMemory if less than need bytes are
// available. If memory statistics cannot be read the check passes.
func CheckMemory(ctx context.Context, need uint64) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil || vm == nil {
		return nil
	}
	if vm.Available < need {
		return fmt.Errorf("%w: need %d MiB, %d MiB available", ErrInsufficientMemory, need>>20, vm.Available>>20)
	}
	return nil
}

// FindLatestProject returns the most recently modified project file in dir.
func FindLatestProject(dir string) (string, error) {
	return findLatest(dir, ".json")
}

func findLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(extensions, "/"), dir)
	}

	return latestFile, nil
}

func hasExt(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
