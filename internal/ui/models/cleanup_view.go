package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	prog "github.com/fenilsonani/winsweep/internal/progress"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/winsweep/internal/ui/utils"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// CleanProgressMsg carries a progress snapshot from the running clean.
type CleanProgressMsg struct {
	Progress *prog.CleanProgress
}

// CleanupViewModel runs the batch clean and shows its progress
type CleanupViewModel struct {
	ctx       context.Context
	cleaner   *cleaner.Cleaner
	findings  []scanner.Finding
	opts      cleaner.Options
	updates   <-chan interface{}
	spinner   spinner.Model
	progress  progress.Model
	last      *prog.CleanProgress
	startTime time.Time
}

// NewCleanupViewModel prepares a clean of findings. The clean starts in Init.
func NewCleanupViewModel(ctx context.Context, clnr *cleaner.Cleaner, findings []scanner.Finding, opts cleaner.Options) *CleanupViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	reporter := clnr.GetProgressReporter()
	if reporter == nil {
		reporter = prog.NewProgressReporter()
		clnr.SetProgressReporter(reporter)
	}

	return &CleanupViewModel{
		ctx:       ctx,
		cleaner:   clnr,
		findings:  findings,
		opts:      opts,
		updates:   reporter.Subscribe(),
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		startTime: time.Now(),
	}
}

// Init starts the clean
func (m *CleanupViewModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.performCleanup, waitForCleanProgress(m.updates))
}

func waitForCleanProgress(updates <-chan interface{}) tea.Cmd {
	return func() tea.Msg {
		for u := range updates {
			if p, ok := u.(*prog.CleanProgress); ok {
				return CleanProgressMsg{Progress: p}
			}
		}
		return nil
	}
}

// Update handles messages
func (m *CleanupViewModel) Update(msg tea.Msg) (*CleanupViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CleanProgressMsg:
		m.last = msg.Progress
		if m.last.Phase == prog.PhaseComplete {
			return m, nil
		}
		return m, waitForCleanProgress(m.updates)
	}

	return m, nil
}

// View renders the cleanup view
func (m *CleanupViewModel) View() string {
	var b strings.Builder

	title := "Cleaning"
	switch {
	case m.opts.DryRun:
		title = "Cleaning (dry run)"
	case m.opts.Shred:
		title = "Shredding"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	b.WriteString(" Working... ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s)", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n\n")

	if p := m.last; p != nil && p.TotalFiles > 0 {
		b.WriteString(m.progress.ViewAs(float64(p.Percent()) / 100))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%d/%d items, %s of %s freed",
			p.DeletedFiles, p.TotalFiles,
			utils.FormatBytes(p.DeletedSize), utils.FormatBytes(p.TotalSize)))
		if p.ErrorCount > 0 {
			b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf(", %d errors", p.ErrorCount)))
		}
		if eta := p.ETA(time.Now()); eta > 0 {
			b.WriteString(styles.DimStyle.Render(" ETA " + prog.FormatDuration(eta)))
		}
		b.WriteString("\n")
		if p.CurrentFile != "" {
			b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(p.CurrentFile, 70)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to stop after the current item"))
	return b.String()
}

// Close stops listening for progress. Call it once the clean has returned.
func (m *CleanupViewModel) Close() {
	m.cleaner.GetProgressReporter().Unsubscribe(m.updates)
}

func (m *CleanupViewModel) performCleanup() tea.Msg {
	result := m.cleaner.CleanAll(m.ctx, m.findings, m.opts)
	return CleanupCompleteMsg{Result: result}
}
