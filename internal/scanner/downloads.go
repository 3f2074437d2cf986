package scanner

import (
	"context"
	"path/filepath"
	"strings"
)

// installerDateFormat is how installer dates appear in findings.
const installerDateFormat = "2006-01-02"

// scanInstallers yields installer and archive files directly inside
// Downloads that have not been modified for InstallerAgeDays.
func (s *Scanner) scanInstallers(ctx context.Context, em *emitter) int {
	dir := s.env.UserFolder("Downloads")
	if dir == "" {
		return 0
	}

	exts := make(map[string]bool)
	for _, e := range s.config.Scan.InstallerExtensions {
		exts[strings.ToLower(e)] = true
	}
	cutoff := s.now().AddDate(0, 0, -s.config.Scan.InstallerAgeDays)

	em.status("Scanning %s for old installers", dir)
	entries, res := probeReadDir(dir)
	if res == outcomeSkip {
		return 1
	}

	for _, d := range entries {
		if ctx.Err() != nil {
			break
		}
		if !d.Type().IsRegular() || !exts[strings.ToLower(filepath.Ext(d.Name()))] {
			continue
		}
		info, res := probeInfo(d)
		if res == outcomeSkip || !info.ModTime().Before(cutoff) {
			continue
		}

		date := info.ModTime().Format(installerDateFormat)
		em.item(Finding{
			Category: CategoryInstallers,
			Software: d.Name(),
			Detail:   date,
			Path:     filepath.Join(dir, d.Name()),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Date:     date,
		})
	}

	return 1
}
