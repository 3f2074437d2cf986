//go:build !windows

package cleaner

import "syscall"

var errInUse error = syscall.EBUSY

func mkfifo(path string) error {
	return syscall.Mkfifo(path, 0644)
}
