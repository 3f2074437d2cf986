package models

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/testutil"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "ctrl+a":
		return tea.KeyMsg{Type: tea.KeyCtrlA}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and returns its message, or nil.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func sampleFindings() []scanner.Finding {
	return []scanner.Finding{
		{Category: scanner.CategorySystem, Software: "Windows", Detail: "Recycle Bin", Path: platform.SentinelRecycleBin, Size: 1000},
		{Category: "Application cache", Software: "Vendor", Path: `C:\Users\alice\AppData\Local\Vendor\Cache`, Size: 5000},
		{Category: scanner.CategoryPrivacyBrowser, Software: "Google Chrome", Path: `C:\Users\alice\AppData\Local\Google\Chrome\User Data`, Size: 9000},
		{Category: scanner.CategoryDuplicates, Path: `C:\d\a.bin`, Size: 10, Mark: scanner.MarkKeep, Group: "g"},
		{Category: scanner.CategoryDuplicates, Path: `C:\d\b.bin`, Size: 10, Mark: scanner.MarkDuplicate, Group: "g"},
	}
}

// =============================================================================
// Scan View Tests
// =============================================================================

func TestScanViewConsumesEvents(t *testing.T) {
	events := make(chan scanner.Event, 8)
	f1 := sampleFindings()[0]
	f2 := sampleFindings()[1]
	events <- scanner.Event{Kind: scanner.EventStatus, Message: "Scanning AppData"}
	events <- scanner.Event{Kind: scanner.EventItem, Finding: &f1}
	events <- scanner.Event{Kind: scanner.EventProgress, Current: 1, Total: 4}
	events <- scanner.Event{Kind: scanner.EventItem, Finding: &f2}
	events <- scanner.Event{Kind: scanner.EventDone}
	close(events)

	m := NewScanViewModel(events, 100, 40)
	var complete *ScanCompleteMsg
	msg := run(waitForEvent(events))
	for i := 0; i < 5 && msg != nil; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		msg = run(cmd)
		if done, ok := msg.(ScanCompleteMsg); ok {
			complete = &done
			break
		}
	}

	if complete == nil {
		t.Fatal("Done did not produce ScanCompleteMsg")
	}
	if len(complete.Findings) != 2 {
		t.Errorf("findings = %d, want 2", len(complete.Findings))
	}
	cats := m.Categories()
	if len(cats) != 2 || cats[0].Name != "Application cache" {
		t.Errorf("Categories = %+v, largest should be first", cats)
	}
	if m.current != 1 || m.total != 4 {
		t.Errorf("progress = %d/%d, want 1/4", m.current, m.total)
	}
	if !strings.Contains(m.View(), "Scan complete") {
		t.Error("view should report completion")
	}
}

func TestScanViewClosedStreamCountsAsDone(t *testing.T) {
	events := make(chan scanner.Event)
	close(events)

	msg, ok := run(waitForEvent(events)).(ScanEventMsg)
	if !ok || msg.Event.Kind != scanner.EventDone {
		t.Fatalf("closed stream = %+v, want Done", msg)
	}
}

// =============================================================================
// Category View Tests
// =============================================================================

func TestCategoryDefaults(t *testing.T) {
	m := NewCategoryViewModel(sampleFindings(), 100, 40)

	selected := map[string]bool{}
	for _, c := range m.Categories() {
		selected[c.Name] = c.Selected
	}
	want := map[string]bool{
		scanner.CategorySystem:         true,
		"Application cache":            true,
		scanner.CategoryPrivacyBrowser: false,
		scanner.CategoryDuplicates:     false,
	}
	for name, sel := range want {
		if selected[name] != sel {
			t.Errorf("%s selected = %v, want %v", name, selected[name], sel)
		}
	}
	if m.Categories()[0].Name != scanner.CategoryPrivacyBrowser {
		t.Errorf("first category = %s, want the largest", m.Categories()[0].Name)
	}
}

func TestCategorySelection(t *testing.T) {
	m := NewCategoryViewModel(sampleFindings(), 100, 40)

	m, _ = m.Update(key("ctrl+d"))
	_, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("enter with nothing selected should not proceed")
	}

	m, _ = m.Update(key(" "))
	_, cmd = m.Update(key("enter"))
	msg, ok := run(cmd).(CategoriesSelectedMsg)
	if !ok || len(msg.Categories) != 1 || msg.Categories[0] != scanner.CategoryPrivacyBrowser {
		t.Errorf("selection = %+v", msg)
	}
}

func TestCategoryViewEmpty(t *testing.T) {
	m := NewCategoryViewModel(nil, 100, 40)
	if !strings.Contains(m.View(), "Nothing to clean") {
		t.Error("empty view should say there is nothing to clean")
	}
}

// =============================================================================
// Browser View Tests
// =============================================================================

func TestBrowserSkipsKeptDuplicate(t *testing.T) {
	m := NewBrowserViewModel(sampleFindings(), []string{scanner.CategoryDuplicates}, 100, 40)

	selected := m.Selected()
	if len(selected) != 1 || selected[0].Mark != scanner.MarkDuplicate {
		t.Fatalf("Selected = %+v, want only the duplicate", selected)
	}

	m, _ = m.Update(key(" "))
	if len(m.Selected()) != 2 {
		t.Error("space should select the kept copy")
	}
	m, _ = m.Update(key("ctrl+d"))
	if len(m.Selected()) != 0 {
		t.Error("ctrl+d should clear the selection")
	}
	m, _ = m.Update(key("ctrl+a"))
	_, cmd := m.Update(key("enter"))
	if msg, ok := run(cmd).(FindingsSelectedMsg); !ok || len(msg.Findings) != 2 {
		t.Errorf("enter = %+v", msg)
	}
}

func TestBrowserInfoPanel(t *testing.T) {
	m := NewBrowserViewModel(sampleFindings(), []string{scanner.CategorySystem}, 100, 40)

	m, _ = m.Update(key("i"))
	if !m.InfoVisible() {
		t.Fatal("i should open the detail panel")
	}
	if !strings.Contains(m.View(), "Recycle Bin") {
		t.Error("panel should describe the finding")
	}
	m, _ = m.Update(key("esc"))
	if m.InfoVisible() {
		t.Error("esc should close the detail panel")
	}
}

func TestBrowserPaging(t *testing.T) {
	var findings []scanner.Finding
	for i := 0; i < 50; i++ {
		findings = append(findings, scanner.Finding{Category: "c", Path: filepath.Join("x", string(rune('a'+i%26))), Size: 1})
	}
	m := NewBrowserViewModel(findings, []string{"c"}, 100, 20)
	for i := 0; i < 20; i++ {
		m, _ = m.Update(key("down"))
	}
	if m.offset == 0 || m.cursor < m.offset || m.cursor >= m.offset+m.pageSize {
		t.Errorf("cursor %d not visible in window offset %d size %d", m.cursor, m.offset, m.pageSize)
	}
}

// =============================================================================
// Confirm View Tests
// =============================================================================

func TestCalculateRiskLevel(t *testing.T) {
	all := sampleFindings()
	tests := []struct {
		name     string
		findings []scanner.Finding
		opts     cleaner.Options
		want     RiskLevel
	}{
		{"system only", all[:2], cleaner.Options{}, RiskLow},
		{"privacy", all[:3], cleaner.Options{}, RiskHigh},
		{"duplicates", all[3:], cleaner.Options{}, RiskMedium},
		{"shred", all[:1], cleaner.Options{Shred: true}, RiskHigh},
		{"large batch", make([]scanner.Finding, 501), cleaner.Options{}, RiskMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateRiskLevel(tt.findings, tt.opts); got != tt.want {
				t.Errorf("calculateRiskLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfirmKeys(t *testing.T) {
	all := sampleFindings()

	high := NewConfirmViewModel(all, 0, cleaner.Options{}, 100, 40)
	if _, cmd := high.Update(key("enter")); run(cmd) != (CancelledMsg{}) {
		t.Error("high risk should default to Cancel")
	}

	low := NewConfirmViewModel(all[:2], 1, cleaner.Options{DryRun: true}, 100, 40)
	if _, cmd := low.Update(key("enter")); run(cmd) != (ConfirmedMsg{}) {
		t.Error("low risk should default to Proceed")
	}
	if _, cmd := low.Update(key("e")); run(cmd) != (ReviewSelectionMsg{}) {
		t.Error("e should return to review")
	}
	view := low.View()
	for _, want := range []string{"simulate deleting 2 items", "1 items need administrator rights"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestConfirmShredNotice(t *testing.T) {
	all := sampleFindings()

	m := NewConfirmViewModel(all[:1], 0, cleaner.Options{Shred: true}, 100, 40)
	m.SetShredBytes(1 << 20)
	view := m.View()
	for _, want := range []string{"best-effort overwrite of the first 1.00 MB", "not a secure erase"} {
		if !strings.Contains(view, want) {
			t.Errorf("shred view missing %q", want)
		}
	}
	if strings.Contains(view, "cannot be recovered") {
		t.Error("shred view should not promise the data is unrecoverable")
	}

	plain := NewConfirmViewModel(all[:1], 0, cleaner.Options{}, 100, 40)
	if strings.Contains(plain.View(), "secure erase") {
		t.Error("shred notice shown without --shred")
	}
}

// =============================================================================
// App Flow Tests
// =============================================================================

func TestAppFlowCleansSelection(t *testing.T) {
	f := testutil.NewFixture(t)
	junk := f.CreateSizedFile("Users/alice/AppData/Local/Vendor/Cache/blob.bin", 2048)
	keep := f.CreateSizedFile("Users/alice/AppData/Local/Vendor/Profile/login.db", 10)

	findings := []scanner.Finding{
		{Category: "Application cache", Software: "Vendor", Path: filepath.Dir(junk), Size: 2048},
		{Category: scanner.CategoryPrivacyBrowser, Software: "Vendor", Path: filepath.Dir(keep), Size: 10},
	}

	cfg := config.GetDefault()
	cfg.Clean.RetryMaxElapsed = 200 * time.Millisecond
	m := NewAppModel(context.Background(), Deps{Config: cfg, Env: f.Env(), Sys: testutil.NewFakeSystem()}, nil, cleaner.Options{})

	step := func(msg tea.Msg) tea.Msg {
		t.Helper()
		_, cmd := m.Update(msg)
		return run(cmd)
	}

	step(ScanCompleteMsg{Findings: findings})
	if m.State() != ViewCategorySelection {
		t.Fatalf("state = %v, want category selection", m.State())
	}

	next := step(key("enter"))
	step(next)
	if m.State() != ViewFileBrowser {
		t.Fatalf("state = %v, want file browser", m.State())
	}

	next = step(key("enter"))
	step(next)
	if m.State() != ViewConfirmation {
		t.Fatalf("state = %v, want confirmation", m.State())
	}

	step(key("y"))
	step(ConfirmedMsg{})
	if m.State() != ViewCleaning {
		t.Fatalf("state = %v, want cleaning", m.State())
	}

	step(m.cleanupView.performCleanup())
	if m.State() != ViewSummary {
		t.Fatalf("state = %v, want summary", m.State())
	}

	result := m.Result()
	if result == nil || result.Succeeded != 1 || result.BytesFreed != 2048 {
		t.Fatalf("Result = %+v, want one item and 2048 bytes", result)
	}
	f.AssertFileNotExists(junk)
	f.AssertFileExists(keep)
	if !strings.Contains(m.View(), "Deleted 1 items") {
		t.Errorf("summary view = %q", m.View())
	}
}

func TestAppHelpAndQuit(t *testing.T) {
	m := NewAppModel(context.Background(), Deps{Config: config.GetDefault()}, nil, cleaner.Options{})
	m.Update(ScanCompleteMsg{Findings: sampleFindings()})

	m.Update(key("?"))
	if m.State() != ViewHelp || !strings.Contains(m.View(), "Category Selection") {
		t.Fatal("? should open context help")
	}
	m.Update(key("x"))
	if m.State() != ViewCategorySelection {
		t.Fatal("any key should close help")
	}

	_, cmd := m.Update(key("q"))
	if _, ok := run(cmd).(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel the context")
	}
}
