package utils

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	B  = 1
	KB = 1024 * B
	MB = 1024 * KB
	GB = 1024 * MB
	TB = 1024 * GB
)

// FormatBytes converts bytes to the two-decimal display form used in reports
// ("512.00 B", "50.00 MB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0.00 B"
	}

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%.2f B", float64(bytes))
	}
}

// ParseSize converts a human-readable size to bytes.
// Bare unit suffixes (KB, MB, GB) are binary, matching FormatBytes.
func ParseSize(size string) (int64, error) {
	s := strings.TrimSpace(size)
	if s == "" {
		return 0, fmt.Errorf("invalid size format: %q", size)
	}

	upper := strings.ToUpper(s)
	for _, unit := range []string{"KB", "MB", "GB", "TB"} {
		if strings.HasSuffix(upper, unit) {
			s = s[:len(s)-2] + unit[:1] + "iB"
			break
		}
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size format: %q: %w", size, err)
	}
	return int64(n), nil
}

// SumSizes adds up a slice of sizes
func SumSizes(sizes []int64) int64 {
	var total int64
	for _, size := range sizes {
		total += size
	}
	return total
}
