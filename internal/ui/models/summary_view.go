package models

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// SummaryViewModel handles the summary/results view
type SummaryViewModel struct {
	result *cleaner.BatchResult
}

// NewSummaryViewModel creates a new summary view model
func NewSummaryViewModel(result *cleaner.BatchResult) *SummaryViewModel {
	return &SummaryViewModel{result: result}
}

// Init initializes the summary view
func (m *SummaryViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *SummaryViewModel) Update(msg tea.Msg) (*SummaryViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		return m, tea.Quit
	}
	return m, nil
}

// View renders the summary view
func (m *SummaryViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Summary"))
	b.WriteString("\n\n")

	if r := m.result; r != nil {
		verb := "Deleted"
		switch {
		case r.DryRun:
			verb = "Would delete"
		case r.Shredded:
			verb = "Shredded"
		}
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("%s %d items", verb, r.Succeeded)))
		b.WriteString("\n")
		b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("Space freed: %s", utils.FormatBytes(r.BytesFreed))))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" in %s", r.Duration.Round(time.Millisecond))))
		b.WriteString("\n\n")

		if n := len(r.Skipped); n > 0 {
			b.WriteString(styles.WarningStyle.Render(fmt.Sprintf("Skipped %d items that need administrator rights", n)))
			b.WriteString("\n")
		}
		if r.Errors > 0 {
			b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("%d errors", r.Errors)))
			b.WriteString("\n")
			b.WriteString(cleaner.FormatErrorSummary(r.Failures))
		}
		if r.DryRun {
			b.WriteString("\n")
			b.WriteString(styles.InfoStyle.Render("Dry run: nothing was removed."))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("Press q or enter to exit"))

	return b.String()
}
