package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/fenilsonani/winsweep/internal/progress"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// LiveProgress prints scan events. On a terminal it redraws one status
// line in place; otherwise it writes one line per status message.
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	live       bool
	termWidth  int
	status     string
	found      int
	totalSize  int64
	current    int
	total      int
	frame      int
	startTime  time.Time
	lastUpdate time.Time
	throttle   time.Duration
}

// NewLiveProgress writes to out. Live redraw is used only when out is a
// terminal.
func NewLiveProgress(out io.Writer) *LiveProgress {
	lp := &LiveProgress{
		out:       out,
		termWidth: 80,
		startTime: time.Now(),
		throttle:  100 * time.Millisecond,
	}
	if f, ok := out.(*os.File); ok && IsTerminal(f) {
		lp.live = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			lp.termWidth = w
		}
	}
	return lp
}

// IsTerminal reports whether f is an interactive terminal, including
// Cygwin and MSYS consoles.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Watch drains events, printing progress, and returns the findings in
// arrival order.
func (lp *LiveProgress) Watch(events <-chan scanner.Event) []scanner.Finding {
	var findings []scanner.Finding
	for ev := range events {
		switch ev.Kind {
		case scanner.EventItem:
			if ev.Finding != nil {
				findings = append(findings, *ev.Finding)
				lp.update(func() {
					lp.found++
					lp.totalSize += ev.Finding.Size
				}, false)
			}
		case scanner.EventStatus:
			lp.update(func() { lp.status = ev.Message }, true)
		case scanner.EventProgress:
			lp.update(func() { lp.current, lp.total = ev.Current, ev.Total }, false)
		case scanner.EventDone:
			lp.Finish()
		}
	}
	return findings
}

func (lp *LiveProgress) update(apply func(), isStatus bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	apply()
	if !lp.live {
		if isStatus {
			fmt.Fprintln(lp.out, lp.status)
		}
		return
	}

	now := time.Now()
	if now.Sub(lp.lastUpdate) < lp.throttle {
		return
	}
	lp.lastUpdate = now
	lp.render()
}

// render draws the status line. Callers hold mu.
func (lp *LiveProgress) render() {
	lp.frame = (lp.frame + 1) % len(spinnerFrames)
	line := fmt.Sprintf("%s %s | %d items | %s | %s",
		spinnerFrames[lp.frame],
		lp.status,
		lp.found,
		utils.FormatBytes(lp.totalSize),
		time.Since(lp.startTime).Round(time.Second))
	if lp.total > 0 {
		line += fmt.Sprintf(" | %d/%d", lp.current, lp.total)
	}
	fmt.Fprintf(lp.out, "\r\033[K%s", truncate(line, lp.termWidth-1))
}

// Finish clears the live status line.
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if lp.live {
		fmt.Fprint(lp.out, "\r\033[K")
	}
}

// FollowClean prints cleanup snapshots until updates is closed. A terminal
// gets a redrawn status line; other writers get only the final line.
func (lp *LiveProgress) FollowClean(updates <-chan interface{}) {
	for u := range updates {
		p, ok := u.(*progress.CleanProgress)
		if !ok {
			continue
		}

		lp.mu.Lock()
		switch {
		case lp.live && p.Phase == progress.PhaseComplete:
			fmt.Fprint(lp.out, "\r\033[K")
		case lp.live:
			fmt.Fprintf(lp.out, "\r\033[K%s", truncate(p.String(), lp.termWidth-1))
		case p.Phase == progress.PhaseComplete:
			fmt.Fprintln(lp.out, p.String())
		}
		lp.mu.Unlock()
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// PrintTree prints findings grouped by category then software, largest
// category first. At most maxPerGroup paths are listed under each
// software entry.
func PrintTree(w io.Writer, findings []scanner.Finding, maxPerGroup int) {
	grouped := scanner.GroupByCategory(findings)
	categories := make([]string, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		si, sj := scanner.TotalSize(grouped[categories[i]]), scanner.TotalSize(grouped[categories[j]])
		if si != sj {
			return si > sj
		}
		return categories[i] < categories[j]
	})

	for _, cat := range categories {
		items := grouped[cat]
		fmt.Fprintf(w, "\n╭─ %s (%s)\n", cat, utils.FormatBytes(scanner.TotalSize(items)))

		bySoftware := make(map[string][]scanner.Finding)
		var names []string
		for _, f := range items {
			if _, ok := bySoftware[f.Software]; !ok {
				names = append(names, f.Software)
			}
			bySoftware[f.Software] = append(bySoftware[f.Software], f)
		}
		sort.Strings(names)

		for i, name := range names {
			group := bySoftware[name]
			last := i == len(names)-1
			connector, indent := "├", "│   "
			if last {
				connector, indent = "╰", "    "
			}
			label := name
			if label == "" {
				label = "(unnamed)"
			}
			fmt.Fprintf(w, "%s── %s (%s)\n", connector, label, utils.FormatBytes(scanner.TotalSize(group)))

			shown := len(group)
			if maxPerGroup > 0 && shown > maxPerGroup {
				shown = maxPerGroup
			}
			for j := 0; j < shown; j++ {
				f := group[j]
				branch := "├"
				if j == shown-1 && shown == len(group) {
					branch = "╰"
				}
				detail := ""
				if f.Detail != "" {
					detail = " " + f.Detail
				}
				if f.Mark != "" {
					detail += " [" + f.Mark + "]"
				}
				fmt.Fprintf(w, "%s%s── %s%s (%s)\n", indent, branch, f.Path, detail, f.DisplaySize())
			}
			if shown < len(group) {
				fmt.Fprintf(w, "%s╰── ... and %d more\n", indent, len(group)-shown)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("═", 56))
	fmt.Fprintf(w, "Total: %d items | %s\n", len(findings), utils.FormatBytes(scanner.TotalSize(findings)))
}
