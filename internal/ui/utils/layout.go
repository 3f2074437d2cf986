package utils

import (
	"fmt"
	"strings"

	"github.com/fenilsonani/winsweep/internal/ui/styles"
)

const (
	// MinTerminalWidth is the minimum recommended terminal width
	MinTerminalWidth = 80
	// MinTerminalHeight is the minimum recommended terminal height
	MinTerminalHeight = 24
)

// TruncatePath shortens a path to maxWidth, keeping the drive or first
// element and the final element. Both slash styles count as separators so
// Windows paths render the same on any host.
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	if maxWidth < 10 {
		return "..."
	}

	sep := "\\"
	if !strings.Contains(path, sep) {
		sep = "/"
	}
	parts := strings.Split(path, sep)
	last := parts[len(parts)-1]

	if len(last) > maxWidth-4 {
		return "..." + last[len(last)-(maxWidth-4):]
	}

	head := parts[0]
	if head == "" && len(parts) > 1 {
		head = sep + parts[1]
	}
	candidate := head + sep + "..." + sep + last
	if len(parts) > 2 && len(candidate) <= maxWidth {
		// Pull in trailing elements while they fit.
		tail := last
		for i := len(parts) - 2; i > 1; i-- {
			next := parts[i] + sep + tail
			if len(head)+len(sep)*2+3+len(next) > maxWidth {
				break
			}
			tail = next
		}
		return head + sep + "..." + sep + tail
	}
	return "..." + sep + last
}

// CalculatePageSize returns how many list rows fit below the title and
// above the footer.
func CalculatePageSize(terminalHeight int) int {
	const reservedLines = 10

	pageSize := terminalHeight - reservedLines
	if pageSize < 5 {
		pageSize = 5
	}
	return pageSize
}

// IsTerminalTooSmall checks if the terminal is below minimum recommended size
func IsTerminalTooSmall(width, height int) bool {
	return width < MinTerminalWidth || height < MinTerminalHeight
}

// GetSizeWarningBanner returns a warning banner if terminal is too small
func GetSizeWarningBanner(width, height int) string {
	if !IsTerminalTooSmall(width, height) {
		return ""
	}

	warning := "Terminal too small, 80x24 or larger recommended"
	if width > 0 && height > 0 {
		warning += styles.DimStyle.Render(" (current: ") +
			styles.WarningStyle.Render(fmt.Sprintf("%dx%d", width, height)) +
			styles.DimStyle.Render(")")
	}

	return styles.WarningStyle.Render(warning) + "\n\n"
}

// TruncateString truncates a string to maxLen, adding ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
