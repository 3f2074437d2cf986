// Package scanner discovers reclaimable disk space and streams what it finds
// as events.
package scanner

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/winsweep/internal/classifier"
	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/platform"
)

// Scanner runs scan modes. A Scanner holds no per-scan state, so concurrent
// Scan calls do not interfere.
type Scanner struct {
	config     *config.Config
	env        *platform.Env
	sys        platform.System
	classifier *classifier.Classifier
	logger     *logging.Logger
	now        func() time.Time
}

// New creates a scanner. env supplies every folder the scanner walks; sys
// supplies drive enumeration and registry lookups.
func New(cfg *config.Config, env *platform.Env, sys platform.System, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.Discard()
	}

	rules := make([]classifier.Rule, 0, len(cfg.Vendors))
	for _, v := range cfg.Vendors {
		rules = append(rules, classifier.Rule{Keyword: v.Keyword, Category: v.Category, Name: v.Name})
	}

	return &Scanner{
		config:     cfg,
		env:        env,
		sys:        sys,
		classifier: classifier.New(rules...),
		logger:     logger,
		now:        time.Now,
	}
}

// Scan starts mode in the background and returns its event stream. The
// stream ends with one EventDone and is then closed. Cancelling ctx stops
// the scan between directory entries.
func (s *Scanner) Scan(ctx context.Context, mode Mode) <-chan Event {
	out := make(chan Event, ChannelBufferSize)

	go func() {
		defer close(out)
		start := s.now()
		em := newEmitter(ctx, out, mode, start)
		total := s.run(ctx, em, mode)
		em.progress(total, total)
		em.done()
		s.logger.Debug("%s finished in %v: %d items, %d bytes",
			mode, s.now().Sub(start).Round(time.Millisecond), em.found.Load(), em.foundSize.Load())
	}()

	return out
}

// ScanModes runs modes one after another and forwards their events as a
// single stream with one EventDone at the end. A finding whose path was
// already reported, or lies inside one that was, is dropped: on Windows
// %TEMP% sits under Local AppData, so system-junk and appdata-sweep both
// see it.
func (s *Scanner) ScanModes(ctx context.Context, modes []Mode) <-chan Event {
	out := make(chan Event, ChannelBufferSize)

	go func() {
		defer close(out)
		em := newEmitter(ctx, out, "", s.now())
		reported := make(map[string]bool)

		for _, mode := range modes {
			forwarding := true
			// Always drain the inner stream so its producer can finish.
			for ev := range s.Scan(ctx, mode) {
				if ev.Kind == EventDone || !forwarding {
					continue
				}
				if ev.Kind == EventItem {
					key := pathKey(ev.Finding.Path)
					if coveredBy(reported, key) {
						s.logger.Debug("%s: %s already reported, skipping", mode, ev.Finding.Path)
						continue
					}
					reported[key] = true
				}
				forwarding = em.send(ev)
			}
			if ctx.Err() != nil {
				break
			}
		}
		em.done()
	}()

	return out
}

// run dispatches a mode and returns the number of work units it reported.
func (s *Scanner) run(ctx context.Context, em *emitter, mode Mode) int {
	if d := s.config.Scan.Deadline; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
		defer func() {
			if ctx.Err() == context.DeadlineExceeded {
				em.status("Scan deadline of %s reached; results are partial", d)
			}
		}()
	}

	s.logger.Debug("scan %s started", mode)
	defer s.logger.Debug("scan %s finished", mode)

	switch mode {
	case ModeSystemJunk:
		return s.scanSystemJunk(ctx, em)
	case ModeAppData:
		return s.scanAppData(ctx, em)
	case ModeCustom:
		return s.scanCustom(ctx, em)
	case ModeAccounts:
		return s.scanAccounts(ctx, em)
	case ModeInstallers:
		return s.scanInstallers(ctx, em)
	case ModeLargeFiles:
		return s.scanLargeFiles(ctx, em)
	case ModeDuplicates:
		return s.scanDuplicates(ctx, em)
	case ModePrivacy:
		return s.scanPrivacy(ctx, em)
	default:
		em.status("Unknown scan mode %q", mode)
		return 0
	}
}

// drives returns the configured drive roots, or the platform's fixed drives.
func (s *Scanner) drives() []string {
	if len(s.config.Scan.DriveRoots) > 0 {
		return s.config.Scan.DriveRoots
	}
	if s.sys == nil {
		return nil
	}
	return s.sys.FixedDrives()
}

// userDirs resolves folder names (Downloads, Videos...) under the profile.
func (s *Scanner) userDirs(names []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, n := range names {
		var dir string
		if filepath.IsAbs(n) {
			dir = n
		} else {
			dir = s.env.UserFolder(n)
		}
		if dir == "" {
			continue
		}
		key := pathKey(dir)
		if seen[key] {
			continue
		}
		seen[key] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// pathKey normalises a path for de-duplication. Windows paths are case-insensitive.
func pathKey(p string) string {
	return strings.ToLower(filepath.Clean(p))
}

// coveredBy reports whether key or one of its parent folders is in reported.
func coveredBy(reported map[string]bool, key string) bool {
	for {
		if reported[key] {
			return true
		}
		parent := filepath.Dir(key)
		if parent == key {
			return false
		}
		key = parent
	}
}

// joinIf joins elem onto base, or returns "" when base is unknown.
func joinIf(base string, elem ...string) string {
	if base == "" {
		return ""
	}
	return filepath.Join(append([]string{base}, elem...)...)
}
