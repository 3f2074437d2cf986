package scanner

import (
	"context"
	"path/filepath"

	"github.com/fenilsonani/winsweep/internal/platform"
)

type systemTarget struct {
	name   string
	detail string
	path   string
}

func (s *Scanner) systemTargets() []systemTarget {
	candidates := []systemTarget{
		{"User temp files", "%TEMP%", s.env.Temp},
		{"Windows temp files", `%SystemRoot%\Temp`, joinIf(s.env.SystemRoot, "Temp")},
		{"Prefetch data", `%SystemRoot%\Prefetch`, joinIf(s.env.SystemRoot, "Prefetch")},
		{"Windows Update downloads", `SoftwareDistribution\Download`, joinIf(s.env.SystemRoot, "SoftwareDistribution", "Download")},
		{"Error reports", `Microsoft\Windows\WER`, joinIf(s.env.LocalAppData, "Microsoft", "Windows", "WER")},
	}

	seen := make(map[string]bool)
	var targets []systemTarget
	for _, t := range candidates {
		if t.path == "" || seen[pathKey(t.path)] {
			continue
		}
		seen[pathKey(t.path)] = true
		targets = append(targets, t)
	}
	return targets
}

// scanSystemJunk measures the recycle bin across drives, then each fixed
// system junk location.
func (s *Scanner) scanSystemJunk(ctx context.Context, em *emitter) int {
	targets := s.systemTargets()
	total := len(targets) + 1

	em.status("Measuring recycle bin")
	var binSize int64
	for _, drive := range s.drives() {
		if ctx.Err() != nil {
			break
		}
		binSize += SizeOfContext(ctx, filepath.Join(drive, "$Recycle.Bin"))
	}
	em.item(Finding{
		Category: CategorySystem,
		Software: "Recycle Bin",
		Detail:   "all drives",
		Path:     platform.SentinelRecycleBin,
		Size:     binSize,
	})
	em.progress(1, total)

	for i, t := range targets {
		if ctx.Err() != nil {
			break
		}
		em.status("Scanning %s", t.name)
		em.item(Finding{
			Category: CategorySystem,
			Software: t.name,
			Detail:   t.detail,
			Path:     t.path,
			Size:     SizeOfContext(ctx, t.path),
		})
		em.progress(i+2, total)
	}

	return total
}
