package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// visitFiles walks dir without following links, skipping directories whose
// name starts with a dot, and calls fn for every regular file.
func visitFiles(ctx context.Context, dir string, fn func(path string, info fs.FileInfo)) {
	stack := []string{dir}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, res := probeReadDir(current)
		if res == outcomeSkip {
			continue
		}

		for _, d := range entries {
			if ctx.Err() != nil {
				return
			}

			full := filepath.Join(current, d.Name())
			mode := d.Type()

			switch {
			case isLink(full, mode):
				continue
			case mode.IsDir():
				if strings.HasPrefix(d.Name(), ".") {
					continue
				}
				stack = append(stack, full)
			case mode.IsRegular():
				if info, res := probeInfo(d); res == outcomeOK {
					fn(full, info)
				}
			}
		}
	}
}

// scanLargeFiles yields the largest files above the threshold in the user's
// personal folders, biggest first.
func (s *Scanner) scanLargeFiles(ctx context.Context, em *emitter) int {
	dirs := s.userDirs(s.config.Scan.LargeFileDirs)
	threshold := s.config.Scan.LargeFileThreshold.Int64()

	var found []Finding
	for i, dir := range dirs {
		if ctx.Err() != nil {
			break
		}
		em.status("Scanning %s for large files", dir)
		visitFiles(ctx, dir, func(path string, info fs.FileInfo) {
			if info.Size() <= threshold {
				return
			}
			found = append(found, Finding{
				Category: CategoryLargeFiles,
				Software: info.Name(),
				Detail:   relOrBase(s.env.UserProfile, filepath.Dir(path)),
				Path:     path,
				Size:     info.Size(),
				ModTime:  info.ModTime(),
			})
		})
		em.progress(i+1, len(dirs))
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Size != found[j].Size {
			return found[i].Size > found[j].Size
		}
		return found[i].Path < found[j].Path
	})
	if limit := s.config.Scan.LargeFileLimit; limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	for _, f := range found {
		em.item(f)
	}

	return len(dirs)
}
