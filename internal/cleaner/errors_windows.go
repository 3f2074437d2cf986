//go:build windows

package cleaner

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// isInUse matches the errors Windows returns while another process holds
// the file open without delete sharing.
func isInUse(errno syscall.Errno) bool {
	switch errno {
	case windows.ERROR_SHARING_VIOLATION, windows.ERROR_LOCK_VIOLATION, windows.ERROR_BUSY:
		return true
	}
	return false
}
