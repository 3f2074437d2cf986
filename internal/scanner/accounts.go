package scanner

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fenilsonani/winsweep/internal/config"
)

type vendorRoot struct {
	target *config.AccountTarget
	path   string
}

type accountJob struct {
	target *config.AccountTarget
	name   string
	path   string
}

// scanAccounts locates chat application data roots on every drive and
// yields one finding per account folder inside them.
func (s *Scanner) scanAccounts(ctx context.Context, em *emitter) int {
	byName := make(map[string]*config.AccountTarget)
	for i := range s.config.Accounts {
		t := &s.config.Accounts[i]
		for _, n := range t.RootNames {
			key := strings.ToLower(n)
			if _, ok := byName[key]; !ok {
				byName[key] = t
			}
		}
	}
	if len(byName) == 0 {
		return 0
	}

	em.status("Locating chat application data")
	bases := s.accountBases(ctx)

	em.status("Searching %d locations", len(bases))
	roots := s.findVendorRoots(ctx, bases, byName)

	deny := make(map[string]bool)
	for _, n := range s.config.Scan.AccountDenylist {
		deny[strings.ToLower(n)] = true
	}

	var jobs []accountJob
	for _, r := range roots {
		for _, dir := range subdirs(r.path) {
			name := filepath.Base(dir)
			if deny[strings.ToLower(name)] {
				continue
			}
			jobs = append(jobs, accountJob{target: r.target, name: name, path: dir})
		}
	}

	em.status("Measuring %d accounts", len(jobs))
	total := len(jobs)
	runPool(ctx, s.config.Scan.AccountWorkers, jobs, func(ctx context.Context, job accountJob) {
		em.item(Finding{
			Category: CategoryAccounts,
			Software: job.target.Name,
			Detail:   job.name,
			Path:     job.path,
			Size:     SizeOfContext(ctx, job.path),
		})
	}, func(done int) {
		em.progress(done, total)
	})

	return total
}

// accountBases lists the folders whose children may be vendor roots:
// registry save paths, Documents, %APPDATA%\Tencent, each drive root and each
// non-excluded top-level folder of each drive.
func (s *Scanner) accountBases(ctx context.Context) []string {
	var bases []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[pathKey(p)] {
			return
		}
		seen[pathKey(p)] = true
		bases = append(bases, p)
	}

	if s.sys != nil {
		for _, t := range s.config.Accounts {
			for _, loc := range t.Registry {
				v, ok := s.sys.RegistryString(loc.Key, loc.Value)
				if !ok || !looksLikePath(v) {
					continue
				}
				add(v)
			}
		}
	}

	add(s.env.UserFolder("Documents"))
	add(joinIf(s.env.RoamingAppData, "Tencent"))

	excluded := make(map[string]bool)
	for _, n := range s.config.Scan.ExcludedTopFolders {
		excluded[strings.ToLower(n)] = true
	}

	for _, drive := range s.drives() {
		if ctx.Err() != nil {
			break
		}
		add(drive)
		for _, dir := range subdirs(drive) {
			if excluded[strings.ToLower(filepath.Base(dir))] {
				continue
			}
			add(dir)
		}
	}

	return bases
}

// findVendorRoots checks each base (and its children) against the vendor
// root names on the drive worker pool.
func (s *Scanner) findVendorRoots(ctx context.Context, bases []string, byName map[string]*config.AccountTarget) []vendorRoot {
	var (
		mu    sync.Mutex
		found = make(map[string]vendorRoot)
		order []string
	)
	record := func(t *config.AccountTarget, path string) {
		key := pathKey(path)
		mu.Lock()
		defer mu.Unlock()
		if _, ok := found[key]; ok {
			return
		}
		found[key] = vendorRoot{target: t, path: path}
		order = append(order, key)
	}

	runPool(ctx, s.config.Scan.DriveWorkers, bases, func(ctx context.Context, base string) {
		if t, ok := byName[strings.ToLower(filepath.Base(base))]; ok {
			record(t, base)
			return
		}
		for _, dir := range subdirs(base) {
			if t, ok := byName[strings.ToLower(filepath.Base(dir))]; ok {
				record(t, dir)
			}
		}
	}, nil)

	roots := make([]vendorRoot, 0, len(order))
	for _, key := range order {
		roots = append(roots, found[key])
	}
	return roots
}

// looksLikePath filters registry values such as WeChat's "MyDocument:"
// placeholder, which means the default Documents folder.
func looksLikePath(v string) bool {
	if strings.HasSuffix(v, ":") && len(v) > 2 {
		return false
	}
	return filepath.IsAbs(v) || (len(v) >= 3 && v[1] == ':')
}
