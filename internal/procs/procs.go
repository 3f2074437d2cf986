// Package procs finds and stops running applications that hold files the
// cleaner wants to remove, such as a chat client locking its account folder.
package procs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/fenilsonani/winsweep/internal/logging"
)

// Info identifies a running process
type Info struct {
	PID  int32
	Name string
}

// Manager lists and terminates processes. The zero value is not usable;
// call New.
type Manager struct {
	list      func(ctx context.Context) ([]Info, error)
	terminate func(ctx context.Context, pid int32) error
	kill      func(ctx context.Context, pid int32) error
	poll      time.Duration
	logger    *logging.Logger
}

// New returns a Manager backed by the operating system process table.
func New(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		list:      listProcesses,
		terminate: terminateProcess,
		kill:      killProcess,
		poll:      100 * time.Millisecond,
		logger:    logger,
	}
}

// Match returns the processes whose executable name equals one of names,
// ignoring case and an optional ".exe" suffix. Results are sorted by PID.
func Match(running []Info, names []string) []Info {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[normalize(n)] = true
	}

	var out []Info
	for _, p := range running {
		if want[normalize(p.Name)] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

func normalize(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".exe")
}

// Find returns the running processes matching names.
func (m *Manager) Find(ctx context.Context, names []string) ([]Info, error) {
	if len(names) == 0 {
		return nil, nil
	}
	running, err := m.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	return Match(running, names), nil
}

// Close asks every process matching names to exit, waits up to grace for
// them to go away and kills whatever is left. It returns the processes that
// were stopped.
func (m *Manager) Close(ctx context.Context, names []string, grace time.Duration) ([]Info, error) {
	targets, err := m.Find(ctx, names)
	if err != nil || len(targets) == 0 {
		return nil, err
	}

	var errs []error
	for _, p := range targets {
		m.logger.Info("closing %s (pid %d)", p.Name, p.PID)
		if err := m.terminate(ctx, p.PID); err != nil {
			m.logger.Debug("terminate %d: %v", p.PID, err)
		}
	}

	remaining := m.waitGone(ctx, targets, grace)
	for _, p := range remaining {
		m.logger.Warn("%s (pid %d) did not exit, killing it", p.Name, p.PID)
		if err := m.kill(ctx, p.PID); err != nil {
			errs = append(errs, fmt.Errorf("kill %s (pid %d): %w", p.Name, p.PID, err))
		}
	}

	return targets, errors.Join(errs...)
}

// waitGone polls until none of targets is running or grace elapses, and
// returns the ones still alive.
func (m *Manager) waitGone(ctx context.Context, targets []Info, grace time.Duration) []Info {
	deadline := time.Now().Add(grace)
	for {
		alive := m.stillRunning(ctx, targets)
		if len(alive) == 0 || time.Now().After(deadline) {
			return alive
		}
		select {
		case <-ctx.Done():
			return alive
		case <-time.After(m.poll):
		}
	}
}

func (m *Manager) stillRunning(ctx context.Context, targets []Info) []Info {
	running, err := m.list(ctx)
	if err != nil {
		return targets
	}
	pids := make(map[int32]string, len(running))
	for _, p := range running {
		pids[p.PID] = p.Name
	}

	var alive []Info
	for _, t := range targets {
		// A reused PID with another name is a different process.
		if name, ok := pids[t.PID]; ok && normalize(name) == normalize(t.Name) {
			alive = append(alive, t)
		}
	}
	return alive
}

func listProcesses(ctx context.Context) ([]Info, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(ps))
	for _, p := range ps {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, Info{PID: p.Pid, Name: name})
	}
	return out, nil
}

func terminateProcess(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.TerminateWithContext(ctx)
}

func killProcess(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return nil
		}
		return err
	}
	return p.KillWithContext(ctx)
}
