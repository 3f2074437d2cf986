package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fenilsonani/winsweep/internal/platform"
)

// outcome is the result of a single filesystem probe. Any I/O failure
// (permission denied, vanished entry, path too long) becomes outcomeSkip and
// the caller moves on to the next entry.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeSkip
)

func probeLstat(path string) (fs.FileInfo, outcome) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, outcomeSkip
	}
	return info, outcomeOK
}

func probeReadDir(path string) ([]fs.DirEntry, outcome) {
	entries, err := os.ReadDir(path)
	if err != nil && len(entries) == 0 {
		return nil, outcomeSkip
	}
	// ReadDir returns what it read before an error; keep the partial listing.
	return entries, outcomeOK
}

func probeInfo(d fs.DirEntry) (fs.FileInfo, outcome) {
	info, err := d.Info()
	if err != nil {
		return nil, outcomeSkip
	}
	return info, outcomeOK
}

// isLink reports whether a directory entry must not be descended into:
// symlinks, junctions and other reparse points.
func isLink(path string, mode fs.FileMode) bool {
	if mode&(fs.ModeSymlink|fs.ModeIrregular) != 0 {
		return true
	}
	if mode.IsDir() {
		return platform.IsReparsePoint(path)
	}
	return false
}

// subdirs lists the real (non-link) subdirectories of dir in enumeration order.
func subdirs(dir string) []string {
	entries, res := probeReadDir(dir)
	if res == outcomeSkip {
		return nil
	}
	var dirs []string
	for _, d := range entries {
		if !d.IsDir() {
			continue
		}
		full := filepath.Join(dir, d.Name())
		if isLink(full, d.Type()) {
			continue
		}
		dirs = append(dirs, full)
	}
	return dirs
}

// SizeOf returns the total size in bytes of every regular file reachable
// from path without following links. A regular file returns its own size;
// a missing or unreadable path returns 0.
func SizeOf(path string) int64 {
	return SizeOfContext(context.Background(), path)
}

// SizeOfContext is SizeOf with cancellation, polled between directory
// entries. A cancelled walk returns the partial total.
func SizeOfContext(ctx context.Context, path string) int64 {
	info, res := probeLstat(path)
	if res == outcomeSkip {
		return 0
	}
	if info.Mode().IsRegular() {
		return info.Size()
	}
	if !info.IsDir() || isLink(path, info.Mode()) {
		return 0
	}

	var total int64
	stack := []string{path}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, res := probeReadDir(dir)
		if res == outcomeSkip {
			continue
		}

		for _, d := range entries {
			if ctx.Err() != nil {
				return total
			}

			full := filepath.Join(dir, d.Name())
			mode := d.Type()

			switch {
			case isLink(full, mode):
				continue
			case mode.IsDir():
				stack = append(stack, full)
			case mode.IsRegular():
				if fi, res := probeInfo(d); res == outcomeOK {
					total += fi.Size()
				}
			}
		}
	}

	return total
}
