package scanner

import (
	"fmt"
	"strings"
	"time"

	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// Mode selects a scan strategy
type Mode string

const (
	ModeSystemJunk Mode = "system-junk"
	ModeAppData    Mode = "appdata-sweep"
	ModeAccounts   Mode = "vendor-account-discovery"
	ModeInstallers Mode = "installer-sweep"
	ModeLargeFiles Mode = "large-file-sweep"
	ModeDuplicates Mode = "duplicate-file-sweep"
	ModePrivacy    Mode = "privacy-sweep"
	ModeCustom     Mode = "custom-sweep"
)

// Modes lists every scan mode in display order.
func Modes() []Mode {
	return []Mode{
		ModeSystemJunk,
		ModeAppData,
		ModeCustom,
		ModeAccounts,
		ModeInstallers,
		ModeLargeFiles,
		ModeDuplicates,
		ModePrivacy,
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes() {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown scan mode: %q", s)
}

// ParseModes converts a list of mode names.
func ParseModes(names []string) ([]Mode, error) {
	modes := make([]Mode, 0, len(names))
	for _, n := range names {
		m, err := ParseMode(n)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// Categories for findings that do not come from the vendor classifier.
const (
	CategorySystem     = "System junk"
	CategoryAccounts   = "Chat accounts"
	CategoryInstallers = "Old installers"
	CategoryLargeFiles = "Large files"
	CategoryDuplicates = "Duplicate files"
	CategoryCustom     = "Custom folders"

	CategoryPrivacyCredentials = "Privacy: credentials"
	CategoryPrivacyBrowser     = "Privacy: browser data"
	CategoryPrivacyMail        = "Privacy: mail archives"
	CategoryPrivacyChat        = "Privacy: chat data"
	CategoryPrivacyHistory     = "Privacy: shell history"
	CategoryPrivacyTraces      = "Privacy: system traces"
)

// Duplicate group marks
const (
	MarkKeep      = "keep"
	MarkDuplicate = "duplicate"
)

// Finding is one reclaimable target discovered by a scan.
type Finding struct {
	Category string    `json:"category" yaml:"category"`
	Software string    `json:"software" yaml:"software"`
	Detail   string    `json:"detail" yaml:"detail"`
	Path     string    `json:"path" yaml:"path"`
	Size     int64     `json:"size" yaml:"size"`
	Mode     Mode      `json:"mode" yaml:"mode"`
	ModTime  time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	Date     string    `json:"date,omitempty" yaml:"date,omitempty"`
	Mark     string    `json:"mark,omitempty" yaml:"mark,omitempty"`
	Group    string    `json:"group,omitempty" yaml:"group,omitempty"`
}

// IsSentinel reports whether the finding stands for a bulk platform operation.
func (f Finding) IsSentinel() bool {
	return platform.IsSentinel(f.Path)
}

// DisplaySize formats Size for reports
func (f Finding) DisplaySize() string {
	return utils.FormatBytes(f.Size)
}

// EventKind discriminates Event
type EventKind int

const (
	EventItem EventKind = iota
	EventStatus
	EventProgress
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventItem:
		return "item"
	case EventStatus:
		return "status"
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one message on a scan stream. Finding is set for EventItem,
// Message for EventStatus, Current/Total/StartTime for EventProgress.
// Every stream ends with exactly one EventDone.
type Event struct {
	Kind      EventKind
	Finding   *Finding
	Message   string
	Current   int
	Total     int
	StartTime time.Time
}

// GroupByCategory groups findings by their category
func GroupByCategory(findings []Finding) map[string][]Finding {
	grouped := make(map[string][]Finding)
	for _, f := range findings {
		grouped[f.Category] = append(grouped[f.Category], f)
	}
	return grouped
}

// TotalSize sums finding sizes
func TotalSize(findings []Finding) int64 {
	var total int64
	for _, f := range findings {
		total += f.Size
	}
	return total
}
