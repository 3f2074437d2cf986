// Package cleaner deletes or shreds scan findings.
package cleaner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/progress"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/security"
)

// Options control a batch clean
type Options struct {
	Shred  bool
	DryRun bool
	// Workers bounds concurrent targets; 0 uses the configured value.
	Workers int
}

// BatchResult represents the result of cleaning a set of findings
type BatchResult struct {
	Items      int
	Succeeded  int
	BytesFreed int64
	Errors     int
	Failures   []*DeletionError
	// Skipped findings need an elevated process and were not attempted.
	Skipped  []scanner.Finding
	DryRun   bool
	Shredded bool
	Duration time.Duration
}

// Cleaner runs the executor over many findings with safeguards
type Cleaner struct {
	config            *config.Config
	executor          *Executor
	permissionManager *PermissionManager
	manifest          *DeletionManifest
	progressReporter  *progress.ProgressReporter
	logger            *logging.Logger
}

// New creates a new Cleaner. The user's top-level folders are protected
// from deletion in addition to the system defaults and the configured
// protected paths.
func New(cfg *config.Config, env *platform.Env, sys platform.System, logger *logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.Discard()
	}

	validator := security.NewPathValidator()
	for _, p := range cfg.ProtectedPaths {
		validator.AddProtectedTree(p)
	}

	exec := NewExecutor(cfg, sys, validator, logger)
	if env != nil {
		for _, p := range []string{env.UserProfile, env.LocalAppData, env.RoamingAppData, env.Downloads, env.Documents, env.Desktop, env.SystemRoot} {
			validator.AddProtectedPath(p)
		}
		// These folders are emptied, never removed.
		exec.PreserveRoot(env.Temp)
		if env.SystemRoot != "" {
			exec.PreserveRoot(filepath.Join(env.SystemRoot, "Temp"))
			exec.PreserveRoot(filepath.Join(env.SystemRoot, "Prefetch"))
		}
	}

	return &Cleaner{
		config:            cfg,
		executor:          exec,
		permissionManager: NewPermissionManager(sys, env),
		manifest:          NewDeletionManifest(),
		progressReporter:  progress.NewProgressReporter(),
		logger:            logger,
	}
}

// Executor returns the single-target executor
func (c *Cleaner) Executor() *Executor {
	return c.executor
}

// SetProgressReporter sets a custom progress reporter
func (c *Cleaner) SetProgressReporter(pr *progress.ProgressReporter) {
	c.progressReporter = pr
}

// GetProgressReporter returns the cleaner's progress reporter
func (c *Cleaner) GetProgressReporter() *progress.ProgressReporter {
	return c.progressReporter
}

// CleanAll deletes or shreds every finding on a bounded pool. Findings that
// need administrator rights are skipped when the process is not elevated.
// Failures never stop the batch; they are counted in the result.
func (c *Cleaner) CleanAll(ctx context.Context, findings []scanner.Finding, opts Options) *BatchResult {
	start := time.Now()
	result := &BatchResult{
		Items:    len(findings),
		DryRun:   opts.DryRun || c.config.Clean.DryRun,
		Shredded: opts.Shred,
	}

	report := c.permissionManager.AnalyzePermissions(findings)
	result.Skipped = report.RequiresElevation
	for _, f := range report.RequiresElevation {
		c.logger.Warn("skipping %s: administrator rights required", f.Path)
	}

	targets := report.Normal
	totalFiles := len(targets)
	totalSize := report.TotalNormalSize

	c.reportCleanProgress(progress.PhaseCleaning, "", 0, totalFiles, 0, totalSize, 0, result, start)

	if result.DryRun {
		for i, f := range targets {
			result.Succeeded++
			result.BytesFreed += f.Size
			c.reportCleanProgress(progress.PhaseCleaning, f.Path, i+1, totalFiles, result.BytesFreed, totalSize, 0, result, start)
		}
		result.Duration = time.Since(start)
		c.reportCleanProgress(progress.PhaseComplete, "", totalFiles, totalFiles, result.BytesFreed, totalSize, 0, result, start)
		return result
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = c.config.Clean.Workers
	}
	if workers < 1 {
		workers = 1
	}
	if workers > config.MaxCleanWorkers {
		workers = config.MaxCleanWorkers
	}

	var (
		freed     atomic.Int64
		errCount  atomic.Int64
		done      atomic.Int64
		succeeded atomic.Int64
		mu        sync.Mutex
		g         errgroup.Group
	)
	g.SetLimit(workers)

	for _, f := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			var res Result
			if opts.Shred {
				res = c.executor.ShredContext(ctx, f.Path)
			} else {
				res = c.executor.DeleteContext(ctx, f.Path)
			}
			// A successful bulk operation freed what the scan measured.
			if f.IsSentinel() && res.Errors == 0 && f.Size > res.BytesFreed {
				res.BytesFreed = f.Size
			}

			bytes := freed.Add(res.BytesFreed)
			errs := errCount.Add(int64(res.Errors))
			if res.Errors == 0 {
				succeeded.Add(1)
			}
			if res.BytesFreed > 0 {
				c.manifest.Add(f.Path, res.BytesFreed, f.Category)
			}
			if len(res.Failures) > 0 {
				mu.Lock()
				result.Failures = append(result.Failures, res.Failures...)
				mu.Unlock()
			}

			n := done.Add(1)
			c.reportCleanProgress(progress.PhaseCleaning, f.Path, int(n), totalFiles, bytes, totalSize, int(errs), result, start)
			return nil
		})
	}
	_ = g.Wait()

	result.BytesFreed = freed.Load()
	result.Errors = int(errCount.Load())
	result.Succeeded = int(succeeded.Load())
	result.Duration = time.Since(start)

	c.logger.Info("cleaned %d/%d items, freed %d bytes, %d errors", result.Succeeded, totalFiles, result.BytesFreed, result.Errors)
	c.reportCleanProgress(progress.PhaseComplete, "", int(done.Load()), totalFiles, result.BytesFreed, totalSize, result.Errors, result, start)

	return result
}

// CleanCategory cleans the findings of one category
func (c *Cleaner) CleanCategory(ctx context.Context, findings []scanner.Finding, category string, opts Options) *BatchResult {
	var filtered []scanner.Finding
	for _, f := range findings {
		if f.Category == category {
			filtered = append(filtered, f)
		}
	}
	return c.CleanAll(ctx, filtered, opts)
}

// GetPermissionReport analyzes findings without deleting anything
func (c *Cleaner) GetPermissionReport(findings []scanner.Finding) *PermissionReport {
	return c.permissionManager.AnalyzePermissions(findings)
}

// GetManifest returns the deletion manifest
func (c *Cleaner) GetManifest() *DeletionManifest {
	return c.manifest
}

// SaveManifest saves the deletion manifest to a file
func (c *Cleaner) SaveManifest(path string) error {
	return c.manifest.Save(path)
}

// reportCleanProgress reports clean progress to listeners
func (c *Cleaner) reportCleanProgress(phase progress.Phase, currentFile string, deletedFiles, totalFiles int, deletedSize, totalSize int64, errorCount int, result *BatchResult, startTime time.Time) {
	if c.progressReporter == nil {
		return
	}

	c.progressReporter.UpdateCleanProgress(&progress.CleanProgress{
		Phase:        phase,
		CurrentFile:  currentFile,
		DeletedFiles: deletedFiles,
		TotalFiles:   totalFiles,
		DeletedSize:  deletedSize,
		TotalSize:    totalSize,
		ErrorCount:   errorCount,
		StartTime:    startTime,
		Shredding:    result.Shredded,
		DryRun:       result.DryRun,
	})
}

// DeletionManifest keeps track of deleted targets
type DeletionManifest struct {
	mu        sync.Mutex
	Files     []DeletedFileInfo
	Timestamp time.Time
	TotalSize int64
}

// DeletedFileInfo represents information about a deleted target
type DeletedFileInfo struct {
	Path      string
	Size      int64
	Category  string
	DeletedAt time.Time
}

// NewDeletionManifest creates a new DeletionManifest
func NewDeletionManifest() *DeletionManifest {
	return &DeletionManifest{
		Files:     []DeletedFileInfo{},
		Timestamp: time.Now(),
	}
}

// Add adds a target to the manifest. Safe for concurrent use.
func (m *DeletionManifest) Add(path string, size int64, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files = append(m.Files, DeletedFileInfo{
		Path:      path,
		Size:      size,
		Category:  category,
		DeletedAt: time.Now(),
	})
	m.TotalSize += size
}

// Save saves the manifest to a file
func (m *DeletionManifest) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Deletion Manifest\n")
	fmt.Fprintf(file, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(file, "Total Size: %d bytes\n", m.TotalSize)
	fmt.Fprintf(file, "Total Items: %d\n\n", len(m.Files))

	for _, f := range m.Files {
		fmt.Fprintf(file, "%s | %d bytes | %s | %s\n",
			f.Path, f.Size, f.Category, f.DeletedAt.Format(time.RFC3339))
	}

	return nil
}
