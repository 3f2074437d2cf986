package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/components"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/winsweep/internal/ui/utils"
)

// BrowserViewModel lists the findings of the chosen categories for
// per-item selection.
type BrowserViewModel struct {
	findings []scanner.Finding
	selected map[int]bool
	cursor   int
	offset   int
	pageSize int
	info     *components.InfoPanel
	width    int
	height   int
}

// NewBrowserViewModel keeps the findings in the given categories. Every
// finding starts selected except the kept copy of a duplicate group.
func NewBrowserViewModel(findings []scanner.Finding, categories []string, width, height int) *BrowserViewModel {
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	var filtered []scanner.Finding
	selected := make(map[int]bool)
	for _, f := range findings {
		if !wanted[f.Category] {
			continue
		}
		if f.Mark != scanner.MarkKeep {
			selected[len(filtered)] = true
		}
		filtered = append(filtered, f)
	}

	if height == 0 {
		height = 24
	}
	return &BrowserViewModel{
		findings: filtered,
		selected: selected,
		pageSize: uiutils.CalculatePageSize(height),
		width:    width,
		height:   height,
	}
}

// InfoVisible reports whether the detail panel is open.
func (m *BrowserViewModel) InfoVisible() bool {
	return m.info != nil && m.info.IsVisible()
}

// Init initializes the browser view
func (m *BrowserViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *BrowserViewModel) Update(msg tea.Msg) (*BrowserViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pageSize = uiutils.CalculatePageSize(msg.Height)
		m.clampOffset()

	case tea.KeyMsg:
		if m.InfoVisible() {
			switch msg.String() {
			case "i", "esc":
				m.info.SetVisible(false)
			}
			return m, nil
		}

		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.findings)-1 {
				m.cursor++
			}
		case "pgup":
			m.cursor -= m.pageSize
			if m.cursor < 0 {
				m.cursor = 0
			}
		case "pgdown":
			m.cursor += m.pageSize
			if m.cursor > len(m.findings)-1 {
				m.cursor = len(m.findings) - 1
			}
		case " ", "space":
			if m.cursor < len(m.findings) {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case "ctrl+a":
			for i := range m.findings {
				m.selected[i] = true
			}
		case "ctrl+d":
			m.selected = make(map[int]bool)
		case "i":
			if m.cursor < len(m.findings) {
				m.info = components.FindingInfoPanel(m.findings[m.cursor], m.width)
				m.info.SetVisible(true)
			}
		case "enter":
			return m, m.proceed()
		}
		m.clampOffset()
	}

	return m, nil
}

func (m *BrowserViewModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Selected returns the chosen findings in list order.
func (m *BrowserViewModel) Selected() []scanner.Finding {
	var out []scanner.Finding
	for i, f := range m.findings {
		if m.selected[i] {
			out = append(out, f)
		}
	}
	return out
}

// View renders the browser view
func (m *BrowserViewModel) View() string {
	if m.InfoVisible() {
		return m.info.Render()
	}

	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Select Findings"))
	b.WriteString("\n\n")

	pathWidth := m.width - 40
	if pathWidth < 30 {
		pathWidth = 30
	}

	end := m.offset + m.pageSize
	if end > len(m.findings) {
		end = len(m.findings)
	}
	for i := m.offset; i < end; i++ {
		f := m.findings[i]

		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("> ")
		}
		checkbox := styles.UncheckedBox()
		if m.selected[i] {
			checkbox = styles.CheckedBox()
		}

		label := f.Path
		if f.IsSentinel() {
			label = f.Software + ": " + f.Detail
		}
		line := fmt.Sprintf("%s%s %s %s",
			cursor,
			checkbox,
			styles.FilePathStyle.Render(uiutils.TruncatePath(label, pathWidth)),
			styles.FileSizeStyle.Render(f.DisplaySize()),
		)
		if f.Mark == scanner.MarkKeep {
			line += " " + styles.DimStyle.Render("(keep)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	selected := m.Selected()
	size := scanner.TotalSize(selected)

	b.WriteString("\n")
	bar := components.NewStatusBar("Findings")
	bar.SetSelection(len(selected), len(m.findings), size)
	bar.SetShortcuts(
		components.Shortcut{Key: "space", Desc: "toggle"},
		components.Shortcut{Key: "i", Desc: "details"},
		components.Shortcut{Key: "enter", Desc: "continue"},
		components.Shortcut{Key: "esc", Desc: "back"},
		components.Shortcut{Key: "?", Desc: "help"},
	)
	b.WriteString(bar.Render(m.width))

	return b.String()
}

func (m *BrowserViewModel) proceed() tea.Cmd {
	selected := m.Selected()
	if len(selected) == 0 {
		return nil
	}
	return func() tea.Msg {
		return FindingsSelectedMsg{Findings: selected}
	}
}
