package ui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/models"
)

// scanModel shows scan progress and exits once the stream is done.
type scanModel struct {
	view     *models.ScanViewModel
	cancel   context.CancelFunc
	findings []scanner.Finding
	done     bool
}

func (m *scanModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m *scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" || s == "esc" {
			m.cancel()
		}
		return m, nil
	case models.ScanCompleteMsg:
		m.findings = msg.Findings
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *scanModel) View() string {
	if m.done {
		return ""
	}
	return m.view.View() + "\n"
}

// RunScan draws scan progress on out until the stream ends and returns the
// findings. Pressing q or ctrl+c cancels the scan; findings gathered so far
// are still returned.
func RunScan(ctx context.Context, events <-chan scanner.Event, in io.Reader, out io.Writer) ([]scanner.Finding, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := &scanModel{
		view:   models.NewScanViewModel(events, 80, 24),
		cancel: cancel,
	}

	p := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()

	// The scanner stops on cancel; drain whatever it already queued.
	go func() {
		for range events {
		}
	}()

	if err != nil {
		return m.findings, fmt.Errorf("error running scan progress: %w", err)
	}
	if fm, ok := final.(*scanModel); ok {
		return fm.findings, nil
	}
	return m.findings, nil
}
