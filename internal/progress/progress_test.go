package progress

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{1400 * time.Millisecond, "1s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanProgressString(t *testing.T) {
	start := time.Now().Add(-10 * time.Second)

	tests := []struct {
		name string
		p    *CleanProgress
		want []string
	}{
		{"nil", nil, []string{"Preparing cleanup"}},
		{
			"cleaning",
			&CleanProgress{Phase: PhaseCleaning, DeletedFiles: 1, TotalFiles: 4, DeletedSize: 2048, StartTime: start},
			[]string{"Cleaning... 1/4 items (25%)", "2.00 KB freed", "ETA: 30s"},
		},
		{
			"dry run with errors",
			&CleanProgress{Phase: PhaseCleaning, TotalFiles: 2, ErrorCount: 1, DryRun: true, StartTime: start},
			[]string{"Simulating...", "[1 errors]"},
		},
		{
			"shred",
			&CleanProgress{Phase: PhaseCleaning, TotalFiles: 2, Shredding: true, StartTime: start},
			[]string{"Shredding..."},
		},
		{
			"complete",
			&CleanProgress{Phase: PhaseComplete, DeletedFiles: 4, TotalFiles: 4, DeletedSize: 10, StartTime: start},
			[]string{"Cleanup complete: 4 items (10.00 B)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.p.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("String() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestCleanProgressPercentAndETA(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &CleanProgress{DeletedFiles: 3, TotalFiles: 4, StartTime: start}

	if got := p.Percent(); got != 75 {
		t.Errorf("Percent = %d", got)
	}
	if got := p.ETA(start.Add(9 * time.Second)); got != 3*time.Second {
		t.Errorf("ETA = %v, want 3s", got)
	}
	if got := (&CleanProgress{}).Percent(); got != 0 {
		t.Errorf("empty Percent = %d", got)
	}
	if got := (&CleanProgress{TotalFiles: 2, StartTime: start}).ETA(start.Add(time.Minute)); got != 0 {
		t.Errorf("ETA before first item = %v", got)
	}
}

func TestReporterBroadcast(t *testing.T) {
	pr := NewProgressReporter()
	a := pr.Subscribe()
	b := pr.Subscribe()

	if pr.GetCleanProgress() != nil {
		t.Fatal("no snapshot before the first update")
	}

	update := &CleanProgress{Phase: PhaseCleaning, TotalFiles: 1}
	pr.UpdateCleanProgress(update)

	for _, ch := range []<-chan interface{}{a, b} {
		if got := <-ch; got != update {
			t.Errorf("listener got %v", got)
		}
	}
	if pr.GetCleanProgress() != update {
		t.Error("latest snapshot not recorded")
	}

	pr.Unsubscribe(a)
	if _, ok := <-a; ok {
		t.Error("unsubscribed channel should be closed")
	}
	pr.UpdateCleanProgress(&CleanProgress{Phase: PhaseComplete})
	if len(b) != 1 {
		t.Errorf("remaining listener has %d updates, want 1", len(b))
	}
	pr.Unsubscribe(b)
}

func TestReporterDropsWhenFull(t *testing.T) {
	pr := NewProgressReporter()
	ch := pr.Subscribe()
	defer pr.Unsubscribe(ch)

	for i := 0; i < listenerBuffer+5; i++ {
		pr.UpdateCleanProgress(&CleanProgress{DeletedFiles: i})
	}
	if len(ch) != listenerBuffer {
		t.Errorf("buffered %d, want %d", len(ch), listenerBuffer)
	}
	if pr.GetCleanProgress().DeletedFiles != listenerBuffer+4 {
		t.Error("latest snapshot should not be dropped")
	}
}
