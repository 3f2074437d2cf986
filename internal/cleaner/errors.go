package cleaner

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	"github.com/fenilsonani/winsweep/internal/platform"
)

// ErrorReason categorizes why a deletion failed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileInUse
	ErrorFileNotFound
	ErrorUnreadableDir
	ErrorProtectedPath
	ErrorInvalidPath
	ErrorPlatform
	ErrorUnknown
)

// String returns a human-readable error reason
func (e ErrorReason) String() string {
	switch e {
	case ErrorPermissionDenied:
		return "Permission denied"
	case ErrorFileInUse:
		return "File is in use"
	case ErrorFileNotFound:
		return "File not found"
	case ErrorUnreadableDir:
		return "Unreadable directory"
	case ErrorProtectedPath:
		return "Protected path"
	case ErrorInvalidPath:
		return "Invalid path"
	case ErrorPlatform:
		return "System operation failed"
	case ErrorUnknown:
		return "Unknown error"
	default:
		return "Unspecified error"
	}
}

// DeletionError represents a detailed deletion error
type DeletionError struct {
	Path           string
	Reason         ErrorReason
	Original       error
	Retryable      bool
	NeedsElevation bool
}

// Error implements the error interface
func (e *DeletionError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage returns a user-friendly error message
func (e *DeletionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		if e.NeedsElevation {
			return fmt.Sprintf("Need administrator rights to delete: %s", e.Path)
		}
		return fmt.Sprintf("Permission denied: %s", e.Path)
	case ErrorFileInUse:
		return fmt.Sprintf("File is being used: %s (close the application and try again)", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("Already deleted: %s", e.Path)
	case ErrorUnreadableDir:
		return fmt.Sprintf("Could not list folder: %s", e.Path)
	case ErrorProtectedPath:
		return fmt.Sprintf("Refusing protected path: %s", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("Invalid or unsafe path: %s", e.Path)
	case ErrorPlatform:
		return fmt.Sprintf("System operation failed for %s: %v", e.Path, e.Original)
	default:
		return fmt.Sprintf("Error deleting %s: %v", e.Path, e.Original)
	}
}

// CategorizeError analyzes an error and returns a categorized DeletionError
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}

	var existing *DeletionError
	if errors.As(err, &existing) {
		return existing
	}

	delErr := &DeletionError{
		Path:     path,
		Original: err,
		Reason:   ErrorUnknown,
	}

	var perr *platform.PlatformError
	if errors.As(err, &perr) {
		delErr.Reason = ErrorPlatform
		return delErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && isInUse(errno) {
		delErr.Reason = ErrorFileInUse
		delErr.Retryable = true
		return delErr
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		delErr.Reason = ErrorFileNotFound
	case errors.Is(err, fs.ErrPermission):
		delErr.Reason = ErrorPermissionDenied
		delErr.NeedsElevation = true
	}

	return delErr
}

// GroupErrors groups deletion errors by reason
func GroupErrors(errors []*DeletionError) map[ErrorReason][]*DeletionError {
	grouped := make(map[ErrorReason][]*DeletionError)
	for _, err := range errors {
		grouped[err.Reason] = append(grouped[err.Reason], err)
	}
	return grouped
}

// FormatErrorSummary creates a user-friendly summary of errors
func FormatErrorSummary(errors []*DeletionError) string {
	if len(errors) == 0 {
		return ""
	}

	grouped := GroupErrors(errors)
	var b strings.Builder
	b.WriteString("\nIssues encountered:\n")

	if perms, ok := grouped[ErrorPermissionDenied]; ok {
		fmt.Fprintf(&b, "   ├─ Permission denied: %d files\n", len(perms))
		b.WriteString("   │  └─ Tip: Run from an elevated prompt\n")
	}
	if busy, ok := grouped[ErrorFileInUse]; ok {
		fmt.Fprintf(&b, "   ├─ File in use: %d files\n", len(busy))
		b.WriteString("   │  └─ Tip: Close applications and retry\n")
	}
	if dirs, ok := grouped[ErrorUnreadableDir]; ok {
		fmt.Fprintf(&b, "   ├─ Unreadable folders: %d\n", len(dirs))
	}
	if prot, ok := grouped[ErrorProtectedPath]; ok {
		fmt.Fprintf(&b, "   ├─ Protected paths refused: %d\n", len(prot))
	}
	if sys, ok := grouped[ErrorPlatform]; ok {
		fmt.Fprintf(&b, "   ├─ System operations failed: %d\n", len(sys))
	}
	if notFound, ok := grouped[ErrorFileNotFound]; ok {
		fmt.Fprintf(&b, "   ├─ Already deleted: %d files\n", len(notFound))
	}
	other := len(grouped[ErrorUnknown]) + len(grouped[ErrorInvalidPath])
	if other > 0 {
		fmt.Fprintf(&b, "   └─ Other errors: %d files\n", other)
	}

	return b.String()
}
