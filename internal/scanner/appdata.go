package scanner

import (
	"context"
	"path/filepath"
)

// vendorJob is one folder handed to the traversal pool. root is the folder
// the vendor was found in; junk root paths are classified relative to it.
type vendorJob struct {
	root   string
	vendor string
}

// scanAppData walks every vendor folder under Local and Roaming AppData.
func (s *Scanner) scanAppData(ctx context.Context, em *emitter) int {
	var jobs []vendorJob
	seen := make(map[string]bool)

	for _, root := range []string{s.env.LocalAppData, s.env.RoamingAppData} {
		if root == "" || seen[pathKey(root)] {
			continue
		}
		seen[pathKey(root)] = true

		em.status("Listing %s", root)
		for _, dir := range subdirs(root) {
			jobs = append(jobs, vendorJob{root: root, vendor: dir})
		}
	}

	em.status("Scanning %d application folders", len(jobs))
	s.sweepVendors(ctx, em, jobs, s.config.Scan.AppDataWorkers, func(job vendorJob, junk string) Finding {
		vendorName := filepath.Base(job.vendor)
		cls := s.classifier.Classify(vendorName, relOrBase(job.root, junk))
		return Finding{
			Category: cls.Category,
			Software: cls.Name,
			Detail:   relOrBase(job.vendor, junk),
			Path:     junk,
		}
	})

	return len(jobs)
}

// scanCustom walks each user-configured folder; the folder itself is depth 0.
func (s *Scanner) scanCustom(ctx context.Context, em *emitter) int {
	var jobs []vendorJob
	seen := make(map[string]bool)

	for _, p := range s.config.CustomPaths {
		p = filepath.Clean(p)
		if seen[pathKey(p)] {
			continue
		}
		seen[pathKey(p)] = true
		if info, res := probeLstat(p); res == outcomeSkip || !info.IsDir() {
			em.status("Skipping missing folder %s", p)
			continue
		}
		jobs = append(jobs, vendorJob{root: filepath.Dir(p), vendor: p})
	}

	if len(jobs) == 0 {
		return 0
	}

	em.status("Scanning %d custom folders", len(jobs))
	s.sweepVendors(ctx, em, jobs, s.config.Scan.AppDataWorkers, func(job vendorJob, junk string) Finding {
		return Finding{
			Category: CategoryCustom,
			Software: filepath.Base(job.vendor),
			Detail:   relOrBase(job.vendor, junk),
			Path:     junk,
		}
	})

	return len(jobs)
}

// sweepVendors runs the depth-limited junk-root traversal for every job on a
// bounded pool. build describes a junk root; its size is filled in here.
func (s *Scanner) sweepVendors(ctx context.Context, em *emitter, jobs []vendorJob, workers int, build func(vendorJob, string) Finding) {
	t := Traverser{DepthLimit: s.config.Scan.DepthLimit, IsJunk: s.classifier.IsJunkDir}
	total := len(jobs)

	runPool(ctx, workers, jobs, func(ctx context.Context, job vendorJob) {
		t.Walk(ctx, job.vendor, func(junk string) {
			f := build(job, junk)
			f.Size = SizeOfContext(ctx, junk)
			em.item(f)
		})
	}, func(done int) {
		em.progress(done, total)
	})
}

// relOrBase returns path relative to base, or its base name when path is base.
func relOrBase(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return rel
}
