// Package reporter renders scan findings and cleanup results.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/pkg/utils"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatSummary:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
	now    func() time.Time
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
		now:    time.Now,
	}
}

// document is the machine-readable report layout shared by JSON and YAML.
type document struct {
	Timestamp          string            `json:"timestamp" yaml:"timestamp"`
	TotalItems         int               `json:"total_items" yaml:"total_items"`
	TotalSize          int64             `json:"total_size" yaml:"total_size"`
	TotalSizeFormatted string            `json:"total_size_formatted" yaml:"total_size_formatted"`
	Categories         []categoryTotal   `json:"categories" yaml:"categories"`
	Findings           []scanner.Finding `json:"findings" yaml:"findings"`
}

type categoryTotal struct {
	Category string `json:"category" yaml:"category"`
	Items    int    `json:"items" yaml:"items"`
	Size     int64  `json:"size" yaml:"size"`
}

// Report renders findings in the reporter's format
func (r *Reporter) Report(findings []scanner.Finding) error {
	switch r.format {
	case FormatTable:
		return r.reportTable(findings)
	case FormatJSON:
		return r.reportJSON(findings)
	case FormatYAML:
		return r.reportYAML(findings)
	case FormatSummary:
		return r.reportSummary(findings)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// categoryTotals returns per-category totals, largest first.
func categoryTotals(findings []scanner.Finding) []categoryTotal {
	grouped := scanner.GroupByCategory(findings)
	totals := make([]categoryTotal, 0, len(grouped))
	for category, items := range grouped {
		totals = append(totals, categoryTotal{
			Category: category,
			Items:    len(items),
			Size:     scanner.TotalSize(items),
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Size != totals[j].Size {
			return totals[i].Size > totals[j].Size
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// reportSummary generates a summary report
func (r *Reporter) reportSummary(findings []scanner.Finding) error {
	total := scanner.TotalSize(findings)

	fmt.Fprintf(r.writer, "=== Scan Summary ===\n")
	fmt.Fprintf(r.writer, "Total Items: %d\n", len(findings))
	fmt.Fprintf(r.writer, "Total Size: %s\n", utils.FormatBytes(total))
	if len(findings) == 0 {
		return nil
	}

	fmt.Fprintf(r.writer, "\nBreakdown by Category:\n")
	for _, c := range categoryTotals(findings) {
		fmt.Fprintf(r.writer, "  %-28s %5d items  %12s\n", c.Category, c.Items, utils.FormatBytes(c.Size))
	}
	return nil
}

// reportTable generates a table report
func (r *Reporter) reportTable(findings []scanner.Finding) error {
	rule := strings.Repeat("-", 132)

	fmt.Fprintf(r.writer, "%-24s | %-20s | %-24s | %12s | %s\n", "Category", "Software", "Detail", "Size", "Path")
	fmt.Fprintln(r.writer, rule)

	for _, f := range findings {
		detail := f.Detail
		if f.Mark != "" {
			detail = f.Mark + ": " + detail
		}
		fmt.Fprintf(r.writer, "%-24s | %-20s | %-24s | %12s | %s\n",
			truncate(f.Category, 24),
			truncate(f.Software, 20),
			truncate(detail, 24),
			f.DisplaySize(),
			f.Path)
	}

	fmt.Fprintln(r.writer, rule)
	fmt.Fprintf(r.writer, "Total: %d items, %s\n", len(findings), utils.FormatBytes(scanner.TotalSize(findings)))
	return nil
}

// truncate shortens s to n runes, keeping the tail where paths are most
// specific.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return "..." + string(runes[len(runes)-(n-3):])
}

func (r *Reporter) document(findings []scanner.Finding) document {
	if findings == nil {
		findings = []scanner.Finding{}
	}
	total := scanner.TotalSize(findings)
	return document{
		Timestamp:          r.now().Format(time.RFC3339),
		TotalItems:         len(findings),
		TotalSize:          total,
		TotalSizeFormatted: utils.FormatBytes(total),
		Categories:         categoryTotals(findings),
		Findings:           findings,
	}
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(findings []scanner.Finding) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r.document(findings))
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(findings []scanner.Finding) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(r.document(findings))
}

// SaveToFile saves the report to a file
func SaveToFile(findings []scanner.Finding, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(findings)
}
