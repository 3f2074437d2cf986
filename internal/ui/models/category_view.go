package models

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/winsweep/internal/classifier"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/components"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
	uiutils "github.com/fenilsonani/winsweep/internal/ui/utils"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// SafetyLevel represents the safety level of a category
type SafetyLevel int

const (
	SafetyLow SafetyLevel = iota
	SafetyMedium
	SafetyHigh
)

func (s SafetyLevel) String() string {
	switch s {
	case SafetyHigh:
		return "SAFE"
	case SafetyMedium:
		return "CAUTION"
	default:
		return "RISKY"
	}
}

// CategoryItem represents a selectable category
type CategoryItem struct {
	Name        string
	Count       int
	Size        int64
	Selected    bool
	SafetyLevel SafetyLevel
	Recommended bool
	Description string
}

// CategoryViewModel handles category selection
type CategoryViewModel struct {
	categories []CategoryItem
	cursor     int
	width      int
	height     int
}

// NewCategoryViewModel groups findings by category, largest first, with
// safe categories preselected.
func NewCategoryViewModel(findings []scanner.Finding, width, height int) *CategoryViewModel {
	var categories []CategoryItem
	for name, items := range scanner.GroupByCategory(findings) {
		safety, recommended := categoryDefaults(name)
		categories = append(categories, CategoryItem{
			Name:        name,
			Count:       len(items),
			Size:        scanner.TotalSize(items),
			Selected:    recommended,
			SafetyLevel: safety,
			Recommended: recommended,
			Description: categoryDescription(name),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Size != categories[j].Size {
			return categories[i].Size > categories[j].Size
		}
		return categories[i].Name < categories[j].Name
	})

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	return &CategoryViewModel{
		categories: categories,
		width:      width,
		height:     height,
	}
}

// Categories returns the category rows in display order.
func (m *CategoryViewModel) Categories() []CategoryItem {
	return m.categories
}

// Init initializes the category view
func (m *CategoryViewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *CategoryViewModel) Update(msg tea.Msg) (*CategoryViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.categories)-1 {
				m.cursor++
			}
		case "g":
			m.cursor = 0
		case "G":
			if len(m.categories) > 0 {
				m.cursor = len(m.categories) - 1
			}
		case " ", "space":
			if m.cursor < len(m.categories) {
				m.categories[m.cursor].Selected = !m.categories[m.cursor].Selected
			}
		case "x":
			if m.cursor < len(m.categories) {
				m.categories[m.cursor].Selected = !m.categories[m.cursor].Selected
				if m.cursor < len(m.categories)-1 {
					m.cursor++
				}
			}
		case "ctrl+a":
			for i := range m.categories {
				m.categories[i].Selected = true
			}
		case "ctrl+d":
			for i := range m.categories {
				m.categories[i].Selected = false
			}
		case "enter":
			return m, m.proceed()
		}
	}

	return m, nil
}

// View renders the category selection view
func (m *CategoryViewModel) View() string {
	var b strings.Builder

	if warning := uiutils.GetSizeWarningBanner(m.width, m.height); warning != "" {
		b.WriteString(warning)
	}

	b.WriteString(styles.TitleStyle.Render("Select Categories"))
	b.WriteString("\n\n")

	if len(m.categories) == 0 {
		b.WriteString(styles.SuccessStyle.Render("Nothing to clean."))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("Press q to exit"))
		return b.String()
	}

	var selectedItems, selectedCats int
	var selectedSize int64
	for i, cat := range m.categories {
		cursor := "  "
		if i == m.cursor {
			cursor = styles.SelectedStyle.Render("> ")
		}
		checkbox := styles.UncheckedBox()
		if cat.Selected {
			checkbox = styles.CheckedBox()
			selectedCats++
			selectedItems += cat.Count
			selectedSize += cat.Size
		}

		name := lipgloss.NewStyle().Foreground(styles.CategoryColor(cat.Name)).Bold(true).Render(cat.Name)
		safety := lipgloss.NewStyle().Foreground(styles.SafetyColor(cat.SafetyLevel.String())).Render(cat.SafetyLevel.String())
		line := fmt.Sprintf("%s%s %s %s", cursor, checkbox, name, safety)
		if cat.Recommended {
			line += " " + styles.RecommendedBadgeStyle.Render("RECOMMENDED")
		}
		size := lipgloss.NewStyle().Foreground(styles.SizeColor(cat.Size)).Bold(true).Render(utils.FormatBytes(cat.Size))
		line += fmt.Sprintf(" (%s items, %s)", styles.DimStyle.Render(fmt.Sprintf("%d", cat.Count)), size)

		b.WriteString(line)
		b.WriteString("\n")

		if i == m.cursor && m.width >= 100 {
			desc := lipgloss.NewStyle().Foreground(styles.TextDim).Italic(true).MarginLeft(6)
			b.WriteString(desc.Render(cat.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Selected: %d items, %s", selectedItems, utils.FormatBytes(selectedSize))))
	b.WriteString("\n\n")

	bar := components.NewStatusBar("Categories")
	bar.SetSelection(selectedCats, len(m.categories), selectedSize)
	bar.SetShortcuts(
		components.Shortcut{Key: "space", Desc: "toggle"},
		components.Shortcut{Key: "ctrl+a", Desc: "all"},
		components.Shortcut{Key: "ctrl+d", Desc: "none"},
		components.Shortcut{Key: "enter", Desc: "continue"},
		components.Shortcut{Key: "?", Desc: "help"},
		components.Shortcut{Key: "q", Desc: "quit"},
	)
	b.WriteString(bar.Render(m.width))

	return b.String()
}

func (m *CategoryViewModel) proceed() tea.Cmd {
	var selected []string
	for _, cat := range m.categories {
		if cat.Selected {
			selected = append(selected, cat.Name)
		}
	}
	if len(selected) == 0 {
		return nil
	}
	return func() tea.Msg {
		return CategoriesSelectedMsg{Categories: selected}
	}
}

// categoryDefaults returns the safety level and whether the category is
// preselected.
func categoryDefaults(category string) (SafetyLevel, bool) {
	switch {
	case category == scanner.CategorySystem:
		return SafetyHigh, true
	case category == scanner.CategoryInstallers, category == scanner.CategoryCustom:
		return SafetyMedium, true
	case category == scanner.CategoryLargeFiles, category == scanner.CategoryDuplicates:
		return SafetyMedium, false
	case category == scanner.CategoryAccounts, strings.HasPrefix(category, "Privacy"):
		return SafetyLow, false
	default:
		// Application data classified from AppData.
		return SafetyHigh, true
	}
}

var categoryDescriptions = map[string]string{
	scanner.CategorySystem:             "Temp folders, prefetch, update caches and the Recycle Bin",
	scanner.CategoryInstallers:         "Setup packages in Downloads older than the configured age",
	scanner.CategoryLargeFiles:         "The largest files in your user folders",
	scanner.CategoryDuplicates:         "Identical files; one copy per group is kept",
	scanner.CategoryCustom:             "Folders you added to the configuration",
	scanner.CategoryAccounts:           "Per-account data of chat clients, including message history",
	scanner.CategoryPrivacyCredentials: "SSH keys and cloud CLI credentials",
	scanner.CategoryPrivacyBrowser:     "Browser profiles with cookies and saved logins",
	scanner.CategoryPrivacyMail:        "Local mail archives",
	scanner.CategoryPrivacyChat:        "Chat client data outside account folders",
	scanner.CategoryPrivacyHistory:     "Shell and console history files",
	scanner.CategoryPrivacyTraces:      "Clipboard and network caches plus the Windows credential vault",
	classifier.CategoryLogs:            "Log files and crash dumps written by applications",
}

func categoryDescription(category string) string {
	if desc, ok := categoryDescriptions[category]; ok {
		return desc
	}
	return "Cache data that applications rebuild on demand"
}
