package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/winsweep/internal/ui/styles"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// Shortcut is one key hint shown on the right of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the one-line footer shared by the list views.
type StatusBar struct {
	viewName  string
	selected  int
	total     int
	size      int64
	shortcuts []Shortcut
}

// NewStatusBar creates a new status bar
func NewStatusBar(viewName string) *StatusBar {
	return &StatusBar{viewName: viewName}
}

// SetSelection sets the selection count, total, and size
func (s *StatusBar) SetSelection(selected, total int, size int64) {
	s.selected = selected
	s.total = total
	s.size = size
}

// SetShortcuts sets the key hints, rendered in the given order.
func (s *StatusBar) SetShortcuts(shortcuts ...Shortcut) {
	s.shortcuts = shortcuts
}

// Render renders the status bar with the given width
func (s *StatusBar) Render(width int) string {
	if width <= 0 {
		width = 80
	}

	var parts []string
	if s.viewName != "" {
		parts = append(parts, styles.BoldStyle.Render(s.viewName))
	}
	if s.total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d selected", s.selected, s.total))
	}
	if s.size > 0 {
		parts = append(parts, styles.FileSizeStyle.Render(utils.FormatBytes(s.size)))
	}
	leftSide := strings.Join(parts, " | ")

	var hints []string
	for _, sc := range s.shortcuts {
		hints = append(hints, styles.DimStyle.Render(sc.Key)+":"+sc.Desc)
	}
	rightSide := strings.Join(hints, " ")

	leftLen := lipgloss.Width(leftSide)
	rightLen := lipgloss.Width(rightSide)
	spacing := width - leftLen - rightLen - 2

	if spacing < 1 {
		// Drop hints from the end until the bar fits.
		for len(hints) > 0 && leftLen+lipgloss.Width(strings.Join(hints, " "))+3 > width {
			hints = hints[:len(hints)-1]
		}
		rightSide = strings.Join(hints, " ")
		spacing = width - leftLen - lipgloss.Width(rightSide) - 2
		if spacing < 1 {
			spacing = 1
		}
	}

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.BgDark).
		Padding(0, 1).
		Width(width).
		Render(leftSide + strings.Repeat(" ", spacing) + rightSide)
}
