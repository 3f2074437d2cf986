package daemon

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

// Job is a resolved schedule: the modes to scan and how to clean.
type Job struct {
	Name      string
	Schedule  string
	Preset    string
	Modes     []scanner.Mode
	Shred     bool
	DryRun    bool
	CloseApps bool
	NextRun   time.Time
}

// ModeLabel names the job in history: the preset if any, else its modes.
func (j *Job) ModeLabel() string {
	if j.Preset != "" {
		return j.Preset
	}
	names := make([]string, len(j.Modes))
	for i, m := range j.Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ",")
}

func (j *Job) hasMode(mode scanner.Mode) bool {
	for _, m := range j.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

// ResolveJob turns a configured schedule into a Job, expanding its preset.
func ResolveJob(cfg *config.Config, sch config.Schedule) (*Job, error) {
	names := sch.Modes
	if sch.Preset != "" {
		var err error
		if names, err = cfg.ResolveModes(sch.Preset); err != nil {
			return nil, err
		}
	}
	modes, err := scanner.ParseModes(names)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", sch.Name, err)
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("schedule %s has no modes", sch.Name)
	}
	return &Job{
		Name:      sch.Name,
		Schedule:  sch.Schedule,
		Preset:    sch.Preset,
		Modes:     modes,
		Shred:     sch.Shred,
		DryRun:    sch.DryRun,
		CloseApps: sch.CloseApps,
	}, nil
}

// Scheduler manages scheduled sweep jobs
type Scheduler struct {
	daemon    *Daemon
	cron      *cron.Cron
	jobs      map[string]cron.EntryID
	specs     map[string]*Job
	jobsMu    sync.RWMutex
	running   bool
	schedules []config.Schedule
}

// scheduleParser accepts five-field cron expressions and descriptors such
// as @daily.
var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NextRun returns when a schedule expression next fires after from.
func NextRun(spec string, from time.Time) (time.Time, error) {
	sched, err := scheduleParser.Parse(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched.Next(from), nil
}

// NewScheduler creates a new scheduler. A run that is still going when its
// next tick fires is not started twice.
func NewScheduler(daemon *Daemon, schedules []config.Schedule) *Scheduler {
	logger := cronLogger{daemon.logger}
	c := cron.New(cron.WithParser(scheduleParser), cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	return &Scheduler{
		daemon:    daemon,
		cron:      c,
		jobs:      make(map[string]cron.EntryID),
		specs:     make(map[string]*Job),
		schedules: schedules,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	for _, schedule := range s.schedules {
		if err := s.addJobInternal(schedule); err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", schedule.Name, err)
		}
	}

	s.cron.Start()
	s.running = true

	s.daemon.logger.Info("Scheduler started with %d jobs", len(s.jobs))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.daemon.logger.Warn("Scheduler stop timed out")
	}

	s.running = false
	s.daemon.logger.Info("Scheduler stopped")
}

// addJobInternal adds a job (internal, no lock)
func (s *Scheduler) addJobInternal(schedule config.Schedule) error {
	if _, exists := s.jobs[schedule.Name]; exists {
		return fmt.Errorf("job %s already exists", schedule.Name)
	}

	job, err := ResolveJob(s.daemon.config, schedule)
	if err != nil {
		return err
	}

	jobFunc := func() {
		s.daemon.logger.Info("Executing scheduled job: %s", job.Name)

		if _, err := s.daemon.RunJob(s.daemon.shutdownCtx, job); err != nil {
			s.daemon.logger.Error("Job %s failed: %v", job.Name, err)
		}
	}

	id, err := s.cron.AddFunc(schedule.Schedule, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.jobs[schedule.Name] = id
	s.specs[schedule.Name] = job

	job.NextRun = s.cron.Entry(id).Next
	s.daemon.logger.Info("Added job: %s, next run: %v", schedule.Name, job.NextRun)
	return nil
}

// AddJob adds a new job to the scheduler
func (s *Scheduler) AddJob(schedule config.Schedule) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	return s.addJobInternal(schedule)
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(name string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	id, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(id)
	delete(s.jobs, name)
	delete(s.specs, name)

	s.daemon.logger.Info("Removed job: %s", name)
	return nil
}

// GetNextRun returns the next run time for a job
func (s *Scheduler) GetNextRun(name string) (time.Time, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	id, exists := s.jobs[name]
	if !exists {
		return time.Time{}, fmt.Errorf("job %s not found", name)
	}

	return s.cron.Entry(id).Next, nil
}

// ListJobs returns information about all jobs, in cron order
func (s *Scheduler) ListJobs() []JobInfo {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	names := make(map[cron.EntryID]string, len(s.jobs))
	for n, id := range s.jobs {
		names[id] = n
	}

	jobs := make([]JobInfo, 0, len(s.jobs))
	for _, entry := range s.cron.Entries() {
		name, ok := names[entry.ID]
		if !ok {
			continue
		}
		jobs = append(jobs, JobInfo{
			Name:    name,
			Modes:   s.specs[name].ModeLabel(),
			NextRun: entry.Next,
			PrevRun: entry.Prev,
		})
	}

	return jobs
}

// TriggerJob runs a job now, outside its schedule
func (s *Scheduler) TriggerJob(name string) error {
	s.jobsMu.RLock()
	job, exists := s.specs[name]
	s.jobsMu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.daemon.logger.Info("Manually triggering job: %s", name)
	_, err := s.daemon.RunJob(s.daemon.shutdownCtx, job)
	return err
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string
	Modes   string
	NextRun time.Time
	PrevRun time.Time
}

// cronLogger adapts the application logger to cron's key/value logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Slog().Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Slog().Error(msg, append(keysAndValues, "error", err)...)
}
