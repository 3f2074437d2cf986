package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/history"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// WriteCleanResult prints the outcome of a batch clean.
func WriteCleanResult(w io.Writer, result *cleaner.BatchResult) {
	verb := "Deleted"
	switch {
	case result.DryRun:
		verb = "Would delete"
	case result.Shredded:
		verb = "Shredded"
	}

	fmt.Fprintf(w, "\n%s %d of %d items, %s freed in %s\n",
		verb, result.Succeeded, result.Items-len(result.Skipped),
		utils.FormatBytes(result.BytesFreed),
		result.Duration.Round(time.Millisecond))

	if result.Errors > 0 {
		fmt.Fprintf(w, "%d errors\n", result.Errors)
		fmt.Fprint(w, cleaner.FormatErrorSummary(result.Failures))
	}
	if n := len(result.Skipped); n > 0 {
		fmt.Fprintf(w, "Skipped %d items that need administrator rights:\n", n)
		for _, f := range result.Skipped {
			fmt.Fprintf(w, "  %s (%s)\n", f.Path, f.DisplaySize())
		}
	}
}

// WriteHistory prints history records, newest first, followed by totals.
func WriteHistory(w io.Writer, records []history.Record, totals history.Totals) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No cleanups recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-20s | %-28s | %6s | %12s | %6s\n", "When", "Mode", "Items", "Freed", "Errors")
	for _, r := range records {
		mode := r.Mode
		if r.Shredded {
			mode += " (shred)"
		}
		fmt.Fprintf(w, "%-20s | %-28s | %6d | %12s | %6d\n",
			humanize.Time(r.Timestamp), truncate(mode, 28), r.ItemCount,
			utils.FormatBytes(r.BytesFreed), r.Errors)
	}

	fmt.Fprintf(w, "\n%d runs since %s: %s freed from %d items\n",
		totals.Runs, totals.First.Format("2006-01-02"),
		utils.FormatBytes(totals.BytesFreed), totals.Items)
}
