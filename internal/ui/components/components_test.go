package components

import (
	"strings"
	"testing"
	"time"

	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

func TestStatusBarRender(t *testing.T) {
	bar := NewStatusBar("Categories")
	bar.SetSelection(2, 5, 2048)
	bar.SetShortcuts(Shortcut{"space", "toggle"}, Shortcut{"enter", "continue"})

	out := bar.Render(100)
	for _, want := range []string{"Categories", "2/5 selected", "2.00 KB", "toggle", "continue"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q: %q", want, out)
		}
	}
}

func TestStatusBarDropsHintsWhenNarrow(t *testing.T) {
	bar := NewStatusBar("Findings")
	bar.SetShortcuts(Shortcut{"space", "toggle"}, Shortcut{"enter", "continue"}, Shortcut{"q", "quit"})

	out := bar.Render(30)
	if strings.Contains(out, "quit") {
		t.Errorf("narrow bar kept the last hint: %q", out)
	}
	if !strings.Contains(out, "Findings") {
		t.Errorf("narrow bar lost the view name: %q", out)
	}
}

func TestFindingInfoPanel(t *testing.T) {
	f := scanner.Finding{
		Category: scanner.CategoryDuplicates,
		Software: "a.bin",
		Path:     `C:\Users\alice\Downloads\a.bin`,
		Size:     4096,
		Mode:     scanner.ModeDuplicates,
		ModTime:  time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		Mark:     scanner.MarkDuplicate,
	}

	panel := FindingInfoPanel(f, 100)
	labels := map[string]string{}
	for _, item := range panel.Items() {
		labels[item.Label] = item.Value
	}
	if labels["Duplicate"] != scanner.MarkDuplicate {
		t.Errorf("Duplicate = %q", labels["Duplicate"])
	}
	if labels["Modified"] != "2026-01-02 03:04" {
		t.Errorf("Modified = %q", labels["Modified"])
	}
	if _, ok := labels["Detail"]; ok {
		t.Error("empty Detail should be skipped")
	}

	if panel.Render() != "" {
		t.Error("hidden panel should render nothing")
	}
	panel.Toggle()
	if !strings.Contains(panel.Render(), "a.bin") {
		t.Error("visible panel should render the path")
	}
}

func TestFindingInfoPanelSentinel(t *testing.T) {
	panel := FindingInfoPanel(scanner.Finding{Path: platform.SentinelRecycleBin, Size: 1}, 80)
	found := false
	for _, item := range panel.Items() {
		if item.Label == "Action" {
			found = true
		}
	}
	if !found {
		t.Error("sentinel finding should explain its action")
	}
}
