package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/fenilsonani/winsweep/pkg/utils"
)

type dupCandidate struct {
	path    string
	size    int64
	modTime time.Time
}

type dupGroup struct {
	key     string
	members []dupCandidate
}

// scanDuplicates buckets files by size, hashes only buckets with more than
// one member, and yields every member of each identical group. The newest
// file of a group is marked keep.
func (s *Scanner) scanDuplicates(ctx context.Context, em *emitter) int {
	minSize := s.config.Scan.DuplicateMinSize.Int64()
	if minSize < 1 {
		minSize = 1
	}

	bySize := make(map[int64][]dupCandidate)
	seen := make(map[string]bool)

	for _, dir := range s.userDirs(s.config.Scan.DuplicateDirs) {
		if ctx.Err() != nil {
			break
		}
		em.status("Indexing %s", dir)
		visitFiles(ctx, dir, func(path string, info fs.FileInfo) {
			if info.Size() < minSize || seen[pathKey(path)] {
				return
			}
			seen[pathKey(path)] = true
			bySize[info.Size()] = append(bySize[info.Size()], dupCandidate{
				path:    path,
				size:    info.Size(),
				modTime: info.ModTime(),
			})
		})
	}

	var buckets [][]dupCandidate
	for _, files := range bySize {
		if len(files) > 1 {
			buckets = append(buckets, files)
		}
	}
	// Largest sizes first so the most valuable groups surface early.
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i][0].size > buckets[j][0].size
	})

	em.status("Comparing %d size groups", len(buckets))
	chunk := s.config.Scan.HashChunkSize.Int64()
	total := len(buckets)

	runPool(ctx, s.config.Scan.HashWorkers, buckets, func(ctx context.Context, bucket []dupCandidate) {
		for _, group := range hashBucket(ctx, bucket, chunk) {
			emitGroup(em, group)
		}
	}, func(done int) {
		em.progress(done, total)
	})

	return total
}

// hashBucket splits same-size candidates into groups with identical content
// hashes. Unreadable files are dropped. Groups are returned in a stable order.
func hashBucket(ctx context.Context, bucket []dupCandidate, chunk int64) []dupGroup {
	byHash := make(map[string][]dupCandidate)
	for _, c := range bucket {
		if ctx.Err() != nil {
			return nil
		}
		h, err := utils.HashFileQuick(c.path, chunk)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%d-%s", c.size, h)
		byHash[key] = append(byHash[key], c)
	}

	keys := make([]string, 0, len(byHash))
	for k, members := range byHash {
		if len(members) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	groups := make([]dupGroup, 0, len(keys))
	for _, k := range keys {
		members := byHash[k]
		sort.SliceStable(members, func(i, j int) bool {
			if !members[i].modTime.Equal(members[j].modTime) {
				return members[i].modTime.After(members[j].modTime)
			}
			return members[i].path < members[j].path
		})
		groups = append(groups, dupGroup{key: k, members: members})
	}
	return groups
}

func emitGroup(em *emitter, group dupGroup) {
	keep := group.members[0]
	for i, c := range group.members {
		f := Finding{
			Category: CategoryDuplicates,
			Software: filepath.Base(c.path),
			Path:     c.path,
			Size:     c.size,
			ModTime:  c.modTime,
			Group:    group.key,
		}
		if i == 0 {
			f.Mark = MarkKeep
			f.Detail = fmt.Sprintf("keep (%d copies)", len(group.members))
		} else {
			f.Mark = MarkDuplicate
			f.Detail = "duplicate of " + keep.path
		}
		em.item(f)
	}
}
