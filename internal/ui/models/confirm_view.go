package models

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/winsweep/internal/ui/utils"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// RiskLevel represents the risk level of a deletion operation
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

const (
	buttonYes = iota
	buttonReview
	buttonCancel
)

// ConfirmViewModel handles the confirmation screen
type ConfirmViewModel struct {
	findings   []scanner.Finding
	needsAdmin int
	opts       cleaner.Options
	shredBytes int64
	cursor     int
	riskLevel  RiskLevel
	width      int
	height     int
}

// NewConfirmViewModel summarizes the selection. needsAdmin is the number of
// findings the clean will skip for lack of administrator rights.
func NewConfirmViewModel(findings []scanner.Finding, needsAdmin int, opts cleaner.Options, width, height int) *ConfirmViewModel {
	risk := calculateRiskLevel(findings, opts)
	cursor := buttonYes
	if risk == RiskHigh {
		cursor = buttonCancel
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	return &ConfirmViewModel{
		findings:   findings,
		needsAdmin: needsAdmin,
		opts:       opts,
		cursor:     cursor,
		riskLevel:  risk,
		width:      width,
		height:     height,
	}
}

// calculateRiskLevel grades a selection. Account and privacy data or a
// shred is high risk; user files or a large batch is medium.
func calculateRiskLevel(findings []scanner.Finding, opts cleaner.Options) RiskLevel {
	if opts.Shred {
		return RiskHigh
	}
	risk := RiskLow
	for _, f := range findings {
		switch {
		case f.Category == scanner.CategoryAccounts, strings.HasPrefix(f.Category, "Privacy"):
			return RiskHigh
		case f.Category == scanner.CategoryLargeFiles, f.Category == scanner.CategoryDuplicates:
			risk = RiskMedium
		}
	}
	if len(findings) > 500 {
		risk = RiskMedium
	}
	return risk
}

// SetShredBytes sets how much of each file a shred overwrites, for the
// notice shown when shredding.
func (m *ConfirmViewModel) SetShredBytes(n int64) {
	m.shredBytes = n
}

// Risk returns the computed risk level.
func (m *ConfirmViewModel) Risk() RiskLevel {
	return m.riskLevel
}

// Init initializes the confirm view
func (m *ConfirmViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ConfirmViewModel) Update(msg tea.Msg) (*ConfirmViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			if m.cursor > buttonYes {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < buttonCancel {
				m.cursor++
			}
		case "tab":
			m.cursor = (m.cursor + 1) % 3
		case "enter":
			switch m.cursor {
			case buttonYes:
				return m, func() tea.Msg { return ConfirmedMsg{} }
			case buttonReview:
				return m, func() tea.Msg { return ReviewSelectionMsg{} }
			default:
				return m, func() tea.Msg { return CancelledMsg{} }
			}
		case "y":
			return m, func() tea.Msg { return ConfirmedMsg{} }
		case "e":
			return m, func() tea.Msg { return ReviewSelectionMsg{} }
		case "n":
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	return m, nil
}

// View renders the confirmation view
func (m *ConfirmViewModel) View() string {
	var b strings.Builder

	if warning := uiutils.GetSizeWarningBanner(m.width, m.height); warning != "" {
		b.WriteString(warning)
	}

	verb := "delete"
	switch {
	case m.opts.DryRun:
		verb = "simulate deleting"
	case m.opts.Shred:
		verb = "shred"
	}

	b.WriteString(styles.TitleStyle.Render("Confirm"))
	b.WriteString("\n\n")
	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("You are about to %s %d items (%s)",
		verb, len(m.findings), utils.FormatBytes(scanner.TotalSize(m.findings)))))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Breakdown:"))
	b.WriteString("\n")
	grouped := scanner.GroupByCategory(m.findings)
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		items := grouped[name]
		b.WriteString(fmt.Sprintf("  %-30s %4d items (%s)\n",
			styles.CategoryStyle.Render(name+":"),
			len(items),
			styles.FileSizeStyle.Render(utils.FormatBytes(scanner.TotalSize(items)))))
	}
	b.WriteString("\n")

	if m.needsAdmin > 0 {
		b.WriteString(styles.WarningStyle.Render(fmt.Sprintf(
			"%d items need administrator rights and will be skipped", m.needsAdmin)))
		b.WriteString("\n")
	}

	text, render := m.riskDisplay()
	b.WriteString(fmt.Sprintf("Risk: %s\n", render(text)))
	if m.riskLevel == RiskHigh {
		b.WriteString(styles.ErrorStyle.Render("The selection includes account data, private data or a shred."))
		b.WriteString("\n")
	}
	if !m.opts.DryRun {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render("This action cannot be undone."))
		b.WriteString("\n")
		if m.opts.Shred {
			b.WriteString(styles.WarningStyle.Render(cleaner.ShredNotice(m.shredBytes)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	yesBtn, reviewBtn, cancelBtn := "[ Proceed ]", "[ Review ]", "[ Cancel ]"
	switch m.cursor {
	case buttonYes:
		yesBtn = styles.HighlightStyle.Render(yesBtn)
	case buttonReview:
		reviewBtn = styles.HighlightStyle.Render(reviewBtn)
	case buttonCancel:
		cancelBtn = styles.HighlightStyle.Render(cancelBtn)
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s", yesBtn, reviewBtn, cancelBtn))
	b.WriteString("\n\n")

	help := "y:proceed  e:edit  n:cancel  left/right:navigate"
	if m.width < 60 {
		help = "y  e  n"
	}
	b.WriteString(styles.HelpStyle.Render(help))

	return b.String()
}

func (m *ConfirmViewModel) riskDisplay() (string, func(...string) string) {
	switch m.riskLevel {
	case RiskHigh:
		return "HIGH", styles.ErrorStyle.Render
	case RiskMedium:
		return "MEDIUM", styles.WarningStyle.Render
	default:
		return "LOW", styles.SuccessStyle.Render
	}
}
