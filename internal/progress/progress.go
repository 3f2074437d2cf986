// Package progress fans cleanup progress out to listeners such as the
// terminal views. Scan progress travels on the scanner's event stream.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/fenilsonani/winsweep/pkg/utils"
)

// Phase represents the current phase of a cleanup
type Phase string

const (
	PhaseCleaning Phase = "cleaning"
	PhaseComplete Phase = "complete"
)

// listenerBuffer is how many snapshots a slow listener may fall behind
// before updates to it are dropped.
const listenerBuffer = 10

// CleanProgress is a snapshot of a running cleanup. Files count findings,
// so one directory target is one file here.
type CleanProgress struct {
	Phase        Phase
	CurrentFile  string
	DeletedFiles int
	TotalFiles   int
	DeletedSize  int64
	TotalSize    int64
	ErrorCount   int
	StartTime    time.Time
	Shredding    bool
	DryRun       bool
}

// Percent is the share of findings processed, 0 to 100.
func (p *CleanProgress) Percent() int {
	if p.TotalFiles <= 0 {
		return 0
	}
	return p.DeletedFiles * 100 / p.TotalFiles
}

// ETA extrapolates the remaining time from the average time per finding.
// It is zero until the first finding is done.
func (p *CleanProgress) ETA(now time.Time) time.Duration {
	if p.DeletedFiles == 0 || p.TotalFiles <= p.DeletedFiles {
		return 0
	}
	per := now.Sub(p.StartTime) / time.Duration(p.DeletedFiles)
	return time.Duration(p.TotalFiles-p.DeletedFiles) * per
}

// String renders the snapshot as one status line.
func (p *CleanProgress) String() string {
	if p == nil {
		return "Preparing cleanup..."
	}

	if p.Phase == PhaseComplete {
		return fmt.Sprintf("Cleanup complete: %d items (%s) in %s",
			p.DeletedFiles, utils.FormatBytes(p.DeletedSize),
			FormatDuration(time.Since(p.StartTime)))
	}

	verb := "Cleaning"
	switch {
	case p.DryRun:
		verb = "Simulating"
	case p.Shredding:
		verb = "Shredding"
	}

	line := fmt.Sprintf("%s... %d/%d items (%d%%) - %s freed",
		verb, p.DeletedFiles, p.TotalFiles, p.Percent(), utils.FormatBytes(p.DeletedSize))
	if p.ErrorCount > 0 {
		line += fmt.Sprintf(" [%d errors]", p.ErrorCount)
	}
	if eta := p.ETA(time.Now()); eta > 0 {
		line += " ETA: " + FormatDuration(eta)
	}
	return line
}

// ProgressReporter broadcasts cleanup snapshots. Sends never block: a full
// listener misses the update.
type ProgressReporter struct {
	mu        sync.RWMutex
	last      *CleanProgress
	listeners []chan interface{}
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{}
}

// Subscribe returns a channel that receives *CleanProgress updates.
func (pr *ProgressReporter) Subscribe() <-chan interface{} {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	ch := make(chan interface{}, listenerBuffer)
	pr.listeners = append(pr.listeners, ch)
	return ch
}

// Unsubscribe removes and closes a listener channel. Call it only once no
// further updates can be published, or the next send would panic.
func (pr *ProgressReporter) Unsubscribe(ch <-chan interface{}) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	for i, listener := range pr.listeners {
		if listener == ch {
			close(listener)
			pr.listeners = append(pr.listeners[:i], pr.listeners[i+1:]...)
			return
		}
	}
}

// UpdateCleanProgress records update and notifies listeners
func (pr *ProgressReporter) UpdateCleanProgress(update *CleanProgress) {
	pr.mu.Lock()
	pr.last = update
	listeners := append([]chan interface{}(nil), pr.listeners...)
	pr.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// GetCleanProgress returns the latest snapshot, or nil before the first.
func (pr *ProgressReporter) GetCleanProgress() *CleanProgress {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.last
}

// FormatDuration formats d as 1h2m3s, dropping leading zero units.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
