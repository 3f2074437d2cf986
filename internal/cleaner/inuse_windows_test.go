//go:build windows

package cleaner

import (
	"errors"

	"golang.org/x/sys/windows"
)

var errInUse error = windows.ERROR_SHARING_VIOLATION

func mkfifo(string) error {
	return errors.New("unsupported")
}
