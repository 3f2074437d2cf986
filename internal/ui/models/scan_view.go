package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/winsweep/internal/ui/utils"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// ScanViewModel follows a scan event stream until its Done event.
type ScanViewModel struct {
	events    <-chan scanner.Event
	spinner   spinner.Model
	progress  progress.Model
	scanning  bool
	findings  []scanner.Finding
	totals    map[string]*CategoryProgress
	status    string
	current   int
	total     int
	startTime time.Time
	width     int
	height    int
}

// CategoryProgress tracks running totals for one category
type CategoryProgress struct {
	Name  string
	Count int
	Size  int64
}

// ScanEventMsg wraps one event read from the scan stream.
type ScanEventMsg struct {
	Event scanner.Event
}

// NewScanViewModel creates a scan view reading from events.
func NewScanViewModel(events <-chan scanner.Event, width, height int) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return &ScanViewModel{
		events:    events,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		scanning:  true,
		totals:    make(map[string]*CategoryProgress),
		startTime: time.Now(),
		width:     width,
		height:    height,
	}
}

// Init initializes the scan view
func (m *ScanViewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// waitForEvent reads the next event. A closed stream counts as Done so the
// view can never hang on a producer that exited early.
func waitForEvent(events <-chan scanner.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return ScanEventMsg{Event: scanner.Event{Kind: scanner.EventDone}}
		}
		return ScanEventMsg{Event: ev}
	}
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (*ScanViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ScanEventMsg:
		if !m.scanning {
			return m, nil
		}
		ev := msg.Event
		switch ev.Kind {
		case scanner.EventItem:
			if ev.Finding != nil {
				m.addFinding(*ev.Finding)
			}
		case scanner.EventStatus:
			m.status = ev.Message
		case scanner.EventProgress:
			m.current, m.total = ev.Current, ev.Total
		case scanner.EventDone:
			m.scanning = false
			findings := m.findings
			return m, func() tea.Msg { return ScanCompleteMsg{Findings: findings} }
		}
		return m, waitForEvent(m.events)
	}

	return m, nil
}

func (m *ScanViewModel) addFinding(f scanner.Finding) {
	m.findings = append(m.findings, f)
	cp := m.totals[f.Category]
	if cp == nil {
		cp = &CategoryProgress{Name: f.Category}
		m.totals[f.Category] = cp
	}
	cp.Count++
	cp.Size += f.Size
}

// Categories returns running totals, largest first.
func (m *ScanViewModel) Categories() []CategoryProgress {
	out := make([]CategoryProgress, 0, len(m.totals))
	for _, cp := range m.totals {
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Scanning"))
	b.WriteString("\n\n")

	if m.scanning {
		b.WriteString(m.spinner.View())
		b.WriteString(" Scanning... ")
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
		b.WriteString("\n\n")

		if m.status != "" {
			b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(m.status, 70)))
			b.WriteString("\n\n")
		}
		if m.total > 0 {
			b.WriteString(m.progress.ViewAs(float64(m.current) / float64(m.total)))
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %d/%d", m.current, m.total)))
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString(styles.SuccessStyle.Render("Scan complete"))
		b.WriteString("\n\n")
	}

	var total int64
	for _, cp := range m.Categories() {
		b.WriteString(fmt.Sprintf("  %s: %s items, %s\n",
			styles.CategoryStyle.Render(cp.Name),
			styles.BoldStyle.Render(fmt.Sprintf("%d", cp.Count)),
			styles.FileSizeStyle.Render(utils.FormatBytes(cp.Size)),
		))
		total += cp.Size
	}

	b.WriteString("\n")
	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("Total: %d items, %s", len(m.findings), utils.FormatBytes(total))))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to cancel"))

	return b.String()
}
