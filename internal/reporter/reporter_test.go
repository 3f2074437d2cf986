package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/history"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

func sampleFindings() []scanner.Finding {
	return []scanner.Finding{
		{Category: "Browser", Software: "Google Chrome", Detail: "Cache", Path: `C:\Users\alice\AppData\Local\Google\Chrome\User Data\Default\Cache`, Size: 50 * utils.MB},
		{Category: "Logs", Software: "SomeTool", Detail: "Crashpad", Path: `C:\Users\alice\AppData\Roaming\SomeTool\Crashpad`, Size: 300},
		{Category: scanner.CategorySystem, Software: "Windows", Detail: "Recycle Bin", Path: platform.SentinelRecycleBin, Size: 2 * utils.MB},
		{Category: scanner.CategoryDuplicates, Software: "a.bin", Detail: "keep (2 copies)", Path: `C:\Users\alice\Downloads\a.bin`, Size: 4096, Mark: scanner.MarkKeep, Group: "4096-abc"},
	}
}

func fixedReporter(buf *bytes.Buffer, format OutputFormat) *Reporter {
	r := New(buf, format)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"summary", FormatSummary, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReportSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := fixedReporter(&buf, FormatSummary).Report(sampleFindings()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Total Items: 4", "Browser", "50.00 MB", scanner.CategorySystem} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	// Largest category first.
	if strings.Index(out, "Browser") > strings.Index(out, scanner.CategorySystem) {
		t.Errorf("categories not ordered by size:\n%s", out)
	}
}

func TestReportSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := fixedReporter(&buf, FormatSummary).Report(nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Breakdown") {
		t.Error("empty summary should not print a breakdown")
	}
}

func TestReportTable(t *testing.T) {
	var buf bytes.Buffer
	if err := fixedReporter(&buf, FormatTable).Report(sampleFindings()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"Category", platform.SentinelRecycleBin, "keep: keep (2 copies)", "Total: 4 items"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestReportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := fixedReporter(&buf, FormatJSON).Report(sampleFindings()); err != nil {
		t.Fatal(err)
	}

	var doc document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.TotalItems != 4 {
		t.Errorf("TotalItems = %d, want 4", doc.TotalItems)
	}
	if doc.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("Timestamp = %q", doc.Timestamp)
	}
	if doc.Findings[3].Mark != scanner.MarkKeep {
		t.Errorf("Mark = %q, want keep", doc.Findings[3].Mark)
	}
	if doc.Categories[0].Category != "Browser" {
		t.Errorf("first category = %q, want Browser", doc.Categories[0].Category)
	}
}

func TestReportJSONEmptyFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := fixedReporter(&buf, FormatJSON).Report(nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"findings": []`) {
		t.Errorf("empty findings should encode as []:\n%s", buf.String())
	}
}

func TestReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := fixedReporter(&buf, FormatYAML).Report(sampleFindings()); err != nil {
		t.Fatal(err)
	}

	var doc document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(doc.Findings) != 4 || doc.Findings[2].Path != platform.SentinelRecycleBin {
		t.Errorf("findings = %+v", doc.Findings)
	}
}

func TestReportUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, "xml").Report(sampleFindings()); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := SaveToFile(sampleFindings(), path, FormatJSON); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("saved report is not valid JSON")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "...hijkl" {
		t.Errorf("truncate = %q, want ...hijkl", got)
	}
}

func TestWriteCleanResult(t *testing.T) {
	result := &cleaner.BatchResult{
		Items:      3,
		Succeeded:  1,
		BytesFreed: 2048,
		Errors:     1,
		Failures:   []*cleaner.DeletionError{{Path: `C:\x`, Reason: cleaner.ErrorFileInUse}},
		Skipped:    []scanner.Finding{{Path: `C:\Windows\Temp`, Size: 10}},
		Duration:   1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	WriteCleanResult(&buf, result)
	out := buf.String()

	for _, want := range []string{"Deleted 1 of 2 items", "2.00 KB", "1 errors", "File in use: 1", `C:\Windows\Temp`} {
		if !strings.Contains(out, want) {
			t.Errorf("clean result missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	WriteCleanResult(&buf, &cleaner.BatchResult{Items: 1, Succeeded: 1, DryRun: true})
	if !strings.Contains(buf.String(), "Would delete") {
		t.Errorf("dry run output = %q", buf.String())
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	WriteHistory(&buf, nil, history.Totals{})
	if !strings.Contains(buf.String(), "No cleanups") {
		t.Errorf("empty history = %q", buf.String())
	}

	now := time.Now()
	records := []history.Record{
		{Timestamp: now, Mode: "privacy-sweep", BytesFreed: utils.MB, ItemCount: 4, Shredded: true},
	}
	totals := history.Totals{Runs: 1, BytesFreed: utils.MB, Items: 4, First: now, Last: now}

	buf.Reset()
	WriteHistory(&buf, records, totals)
	for _, want := range []string{"privacy-sweep (shred)", "1.00 MB", "1 runs"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("history missing %q:\n%s", want, buf.String())
		}
	}
}
