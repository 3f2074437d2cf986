package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fenilsonani/winsweep/internal/classifier"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

// Theme colors
var (
	Primary     = lipgloss.Color("#2563EB")
	Secondary   = lipgloss.Color("#60A5FA")
	Success     = lipgloss.Color("#10B981")
	Warning     = lipgloss.Color("#F59E0B")
	Danger      = lipgloss.Color("#EF4444")
	Info        = lipgloss.Color("#38BDF8")
	Muted       = lipgloss.Color("#6B7280")
	Text        = lipgloss.Color("#F3F4F6")
	TextDim     = lipgloss.Color("#9CA3AF")
	Border      = lipgloss.Color("#4B5563")
	FocusBorder = lipgloss.Color("#3B82F6")
	BgDark      = lipgloss.Color("#1F2937")
	BgLight     = lipgloss.Color("#374151")
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	CheckboxStyle = lipgloss.NewStyle().
			Foreground(Success)

	CheckboxUncheckedStyle = lipgloss.NewStyle().
				Foreground(Muted)

	FilePathStyle = lipgloss.NewStyle().
			Foreground(Info)

	FileSizeStyle = lipgloss.NewStyle().
			Foreground(Warning)

	CategoryStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true)

	RecommendedBadgeStyle = lipgloss.NewStyle().
				Foreground(BgDark).
				Background(Success).
				Padding(0, 1)

	DimStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)
)

func CheckedBox() string {
	return CheckboxStyle.Render("[x]")
}

func UncheckedBox() string {
	return CheckboxUncheckedStyle.Render("[ ]")
}

// CategoryColor picks a stable color for a finding category.
func CategoryColor(category string) lipgloss.Color {
	switch {
	case category == scanner.CategorySystem:
		return Success
	case strings.HasPrefix(category, "Privacy"):
		return Danger
	case category == scanner.CategoryAccounts:
		return Danger
	case category == scanner.CategoryLargeFiles, category == scanner.CategoryDuplicates:
		return Warning
	case category == scanner.CategoryInstallers, category == scanner.CategoryCustom:
		return Info
	case category == classifier.CategoryLogs:
		return Secondary
	default:
		return Primary
	}
}

// SafetyColor colors a safety label produced by the category view.
func SafetyColor(label string) lipgloss.Color {
	switch label {
	case "SAFE":
		return Success
	case "CAUTION":
		return Warning
	default:
		return Danger
	}
}

// SizeColor grades a byte count: red from 1 GB, amber from 100 MB.
func SizeColor(size int64) lipgloss.Color {
	switch {
	case size >= 1<<30:
		return Danger
	case size >= 100<<20:
		return Warning
	default:
		return TextDim
	}
}
