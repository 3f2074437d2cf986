// Package daemon runs scheduled sweeps: scan, clean, record history.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/history"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/procs"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

// ErrAlreadyRunning is returned when another daemon holds the lock file.
var ErrAlreadyRunning = errors.New("daemon already running")

// closeGrace is how long a vendor application gets to exit before it is killed.
const closeGrace = 5 * time.Second

// Daemon represents the sweep daemon
type Daemon struct {
	config    *config.Config
	env       *platform.Env
	sys       platform.System
	scheduler *Scheduler
	logger    *logging.Logger
	history   *history.Store
	procs     *procs.Manager
	lock      *flock.Flock

	running     bool
	shutdownCtx context.Context
	cancelFunc  context.CancelFunc
	mu          sync.RWMutex
}

// New creates a new daemon instance
func New(cfg *config.Config, env *platform.Env, sys platform.System, logger *logging.Logger) (*Daemon, error) {
	if cfg.Daemon == nil || !cfg.Daemon.Enabled {
		return nil, fmt.Errorf("daemon not enabled in configuration")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	lockPath, err := lockFile(cfg.Daemon)
	if err != nil {
		return nil, err
	}

	var store *history.Store
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve history path: %w", err)
		}
		if store, err = history.NewStore(path); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:      cfg,
		env:         env,
		sys:         sys,
		logger:      logger,
		history:     store,
		procs:       procs.New(logger),
		lock:        flock.New(lockPath),
		shutdownCtx: ctx,
		cancelFunc:  cancel,
	}
	d.scheduler = NewScheduler(d, cfg.Daemon.Schedules)

	return d, nil
}

func lockFile(cfg *config.DaemonConfig) (string, error) {
	if cfg.LockFile != "" {
		return cfg.LockFile, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve lock file: %w", err)
	}
	return filepath.Join(dir, "daemon.lock"), nil
}

// Start runs the scheduler until Stop is called or the process receives
// SIGINT or SIGTERM. Only one daemon may run per lock file.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	d.logger.Info("Starting sweep daemon")

	if err := d.acquireLock(); err != nil {
		return err
	}
	defer d.releaseLock()

	stopSignals := d.setupSignalHandlers()
	defer stopSignals()

	if err := d.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer d.scheduler.Stop()

	d.logger.Info("Daemon started with %d schedules", len(d.config.Daemon.Schedules))

	<-d.shutdownCtx.Done()

	d.logger.Info("Daemon shutting down")
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	if d.cancelFunc != nil {
		d.cancelFunc()
	}
}

// IsRunning returns whether the daemon is running
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Config returns the configuration the daemon was built with.
func (d *Daemon) Config() *config.Config {
	return d.config
}

// Scheduler returns the daemon's scheduler
func (d *Daemon) Scheduler() *Scheduler {
	return d.scheduler
}

// RunJob scans the job's modes, cleans every finding and records the run in
// history. A dry-run job still records what it would have freed.
func (d *Daemon) RunJob(ctx context.Context, job *Job) (*cleaner.BatchResult, error) {
	d.logger.Info("Running sweep job: %s", job.Name)
	start := time.Now()

	if d.config.Scan.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Scan.Deadline)
		defer cancel()
	}

	scn := scanner.New(d.config, d.env, d.sys, d.logger)
	findings := scanner.Collect(scn.ScanModes(ctx, job.Modes))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	d.logger.Info("Scan completed for job %s: %d items, %d bytes",
		job.Name, len(findings), scanner.TotalSize(findings))

	if job.CloseApps && !job.DryRun {
		d.closeApps(ctx, job)
	}

	clnr := cleaner.New(d.config, d.env, d.sys, d.logger)
	result := clnr.CleanAll(ctx, findings, cleaner.Options{Shred: job.Shred, DryRun: job.DryRun})

	d.logger.Info("Sweep job %s completed in %v: %d items, freed %d bytes, %d errors",
		job.Name, time.Since(start).Round(time.Millisecond), result.Succeeded, result.BytesFreed, result.Errors)

	if d.history != nil && !result.DryRun {
		rec := history.Record{
			Mode:       job.ModeLabel(),
			BytesFreed: result.BytesFreed,
			ItemCount:  result.Succeeded,
			Errors:     result.Errors,
			Shredded:   result.Shredded,
		}
		if _, err := d.history.Append(rec); err != nil {
			return result, fmt.Errorf("failed to record history: %w", err)
		}
	}

	return result, nil
}

// closeApps stops the chat clients whose account folders the job may wipe.
func (d *Daemon) closeApps(ctx context.Context, job *Job) {
	if !job.hasMode(scanner.ModeAccounts) && !job.hasMode(scanner.ModePrivacy) {
		return
	}
	var names []string
	for _, a := range d.config.Accounts {
		names = append(names, a.Processes...)
	}
	stopped, err := d.procs.Close(ctx, names, closeGrace)
	if err != nil {
		d.logger.Warn("closing applications: %v", err)
	}
	for _, p := range stopped {
		d.logger.Info("closed %s (pid %d)", p.Name, p.PID)
	}
}

// setupSignalHandlers stops the daemon on SIGINT or SIGTERM. The returned
// function releases the handler.
func (d *Daemon) setupSignalHandlers() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received shutdown signal: %v", sig)
			d.Stop()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// acquireLock takes the single-instance lock without blocking.
func (d *Daemon) acquireLock() error {
	if err := os.MkdirAll(filepath.Dir(d.lock.Path()), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock held: %s)", ErrAlreadyRunning, d.lock.Path())
	}
	return nil
}

// releaseLock releases the lock file
func (d *Daemon) releaseLock() error {
	return d.lock.Unlock()
}
