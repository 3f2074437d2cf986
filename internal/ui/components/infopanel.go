package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// InfoPanel is a bordered box of label/value rows.
type InfoPanel struct {
	title   string
	content []InfoItem
	visible bool
	width   int
}

// InfoItem represents a single piece of information
type InfoItem struct {
	Label string
	Value string
}

// NewInfoPanel creates a new info panel
func NewInfoPanel(title string, width int) *InfoPanel {
	return &InfoPanel{title: title, width: width}
}

// AddItem adds a row; empty values are skipped.
func (p *InfoPanel) AddItem(label, value string) {
	if value == "" {
		return
	}
	p.content = append(p.content, InfoItem{Label: label, Value: value})
}

// SetVisible sets the visibility of the panel
func (p *InfoPanel) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible returns whether the panel is visible
func (p *InfoPanel) IsVisible() bool {
	return p.visible
}

// Toggle toggles the visibility of the panel
func (p *InfoPanel) Toggle() {
	p.visible = !p.visible
}

// Items returns the panel rows.
func (p *InfoPanel) Items() []InfoItem {
	return p.content
}

// Render renders the info panel
func (p *InfoPanel) Render() string {
	if !p.visible || len(p.content) == 0 {
		return ""
	}

	panelWidth := p.width / 2
	if panelWidth < 40 {
		panelWidth = 40
	}
	if panelWidth > 80 {
		panelWidth = 80
	}

	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.FocusBorder).
		Padding(1, 2).
		Width(panelWidth)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Underline(true)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(styles.Text)

	var content strings.Builder
	content.WriteString(titleStyle.Render(p.title))
	content.WriteString("\n\n")
	for i, item := range p.content {
		content.WriteString(labelStyle.Render(item.Label) + ": ")
		content.WriteString(valueStyle.Render(item.Value))
		if i < len(p.content)-1 {
			content.WriteString("\n")
		}
	}
	content.WriteString("\n\n")
	content.WriteString(styles.HelpStyle.Render("Press i or esc to close"))

	return panelStyle.Render(content.String())
}

// FindingInfoPanel describes one finding.
func FindingInfoPanel(f scanner.Finding, width int) *InfoPanel {
	panel := NewInfoPanel("Finding", width)

	panel.AddItem("Path", f.Path)
	panel.AddItem("Category", f.Category)
	panel.AddItem("Software", f.Software)
	panel.AddItem("Detail", f.Detail)
	panel.AddItem("Size", fmt.Sprintf("%s (%d bytes)", utils.FormatBytes(f.Size), f.Size))
	panel.AddItem("Found by", string(f.Mode))
	if !f.ModTime.IsZero() {
		panel.AddItem("Modified", f.ModTime.Format("2006-01-02 15:04"))
	}
	panel.AddItem("Duplicate", f.Mark)
	if f.IsSentinel() {
		panel.AddItem("Action", "system operation, size is an estimate")
	}
	return panel
}
