package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/progress"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

func TestWatchPlainOutput(t *testing.T) {
	events := make(chan scanner.Event, 8)
	a := scanner.Finding{Category: "Application cache", Software: "Vendor", Path: `C:\v\Cache`, Size: 100}
	b := scanner.Finding{Category: scanner.CategorySystem, Software: "Windows", Path: platform.SentinelRecycleBin, Size: 50}
	events <- scanner.Event{Kind: scanner.EventStatus, Message: "Scanning AppData"}
	events <- scanner.Event{Kind: scanner.EventItem, Finding: &a}
	events <- scanner.Event{Kind: scanner.EventProgress, Current: 1, Total: 2}
	events <- scanner.Event{Kind: scanner.EventStatus, Message: "Checking Recycle Bin"}
	events <- scanner.Event{Kind: scanner.EventItem, Finding: &b}
	events <- scanner.Event{Kind: scanner.EventDone}
	close(events)

	var buf bytes.Buffer
	lp := NewLiveProgress(&buf)
	findings := lp.Watch(events)

	if len(findings) != 2 || findings[0].Path != a.Path {
		t.Fatalf("findings = %+v", findings)
	}
	want := "Scanning AppData\nChecking Recycle Bin\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if strings.Contains(buf.String(), "\033") {
		t.Error("non-terminal output must not contain escape codes")
	}
}

func TestPrintTree(t *testing.T) {
	findings := []scanner.Finding{
		{Category: "Application cache", Software: "Vendor", Detail: "Cache", Path: `C:\v\Cache`, Size: 4096},
		{Category: "Application cache", Software: "Vendor", Detail: "GPUCache", Path: `C:\v\GPUCache`, Size: 1024},
		{Category: "Application cache", Software: "Vendor", Detail: "Code Cache", Path: `C:\v\Code Cache`, Size: 10},
		{Category: scanner.CategoryDuplicates, Software: "a.bin", Path: `C:\d\a.bin`, Size: 10, Mark: scanner.MarkKeep},
	}

	var buf bytes.Buffer
	PrintTree(&buf, findings, 2)
	out := buf.String()

	for _, want := range []string{"Application cache (5.01 KB)", "Vendor", "... and 1 more", "[keep]", "Total: 4 items"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Application cache") > strings.Index(out, scanner.CategoryDuplicates) {
		t.Errorf("largest category should come first:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}

func TestFollowCleanPlain(t *testing.T) {
	updates := make(chan interface{}, 4)
	updates <- &progress.CleanProgress{Phase: progress.PhaseCleaning, TotalFiles: 2}
	updates <- "not a snapshot"
	updates <- &progress.CleanProgress{Phase: progress.PhaseComplete, DeletedFiles: 2, TotalFiles: 2, DeletedSize: 2048}
	close(updates)

	var buf bytes.Buffer
	NewLiveProgress(&buf).FollowClean(updates)

	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "Cleanup complete: 2 items (2.00 KB)") {
		t.Errorf("output = %q, want only the final line", out)
	}
}
