//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

var (
	modShell32          = windows.NewLazySystemDLL("shell32.dll")
	procEmptyRecycleBin = modShell32.NewProc("SHEmptyRecycleBinW")

	modUser32          = windows.NewLazySystemDLL("user32.dll")
	procOpenClipboard  = modUser32.NewProc("OpenClipboard")
	procEmptyClipboard = modUser32.NewProc("EmptyClipboard")
	procCloseClipboard = modUser32.NewProc("CloseClipboard")
)

const (
	sherbNoConfirmation = 0x00000001
	sherbNoProgressUI   = 0x00000002
	sherbNoSound        = 0x00000004

	// E_UNEXPECTED is returned when the bin is already empty.
	hresultUnexpected = 0x8000FFFF

	fileAttributeReparsePoint = 0x400

	shellFoldersKey = `Software\Microsoft\Windows\CurrentVersion\Explorer\User Shell Folders`
	downloadsGUID   = "{374DE290-123F-4565-9164-39C4925E467B}"
)

type nativeSystem struct{}

// Native returns the System backed by Win32 calls.
func Native() System {
	return nativeSystem{}
}

func (nativeSystem) FixedDrives() []string {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil
	}

	var drives []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := fmt.Sprintf("%c:\\", 'A'+i)
		ptr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}
		if windows.GetDriveType(ptr) == windows.DRIVE_FIXED {
			drives = append(drives, root)
		}
	}
	return drives
}

func (nativeSystem) RegistryString(key, value string) (string, bool) {
	k, err := registry.OpenKey(registry.CURRENT_USER, key, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()

	v, _, err := k.GetStringValue(value)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", false
	}
	if expanded, err := registry.ExpandString(v); err == nil {
		v = expanded
	}
	return filepath.Clean(v), true
}

func (nativeSystem) EmptyRecycleBin() error {
	flags := uintptr(sherbNoConfirmation | sherbNoProgressUI | sherbNoSound)
	ret, _, _ := procEmptyRecycleBin.Call(0, 0, flags)

	hr := uint32(ret)
	if hr != 0 && hr != hresultUnexpected {
		return &PlatformError{Op: "empty recycle bin", Err: fmt.Errorf("HRESULT 0x%08x", hr)}
	}
	return nil
}

func (nativeSystem) ClearClipboard() error {
	if r, _, err := procOpenClipboard.Call(0); r == 0 {
		return &PlatformError{Op: "open clipboard", Err: err}
	}
	defer procCloseClipboard.Call()

	if r, _, err := procEmptyClipboard.Call(); r == 0 {
		return &PlatformError{Op: "empty clipboard", Err: err}
	}
	return nil
}

func (nativeSystem) FlushNetworkTrace() error {
	if err := hiddenCommand("ipconfig", "/flushdns").Run(); err != nil {
		return &PlatformError{Op: "flush dns cache", Err: err}
	}
	// Clearing the ARP table needs elevation; a failure here is not fatal.
	_ = hiddenCommand("arp", "-d", "*").Run()
	return nil
}

func (nativeSystem) ClearCredentialVault() error {
	out, err := hiddenCommand("cmdkey", "/list").Output()
	if err != nil {
		return &PlatformError{Op: "list credentials", Err: err}
	}

	var failed int
	for _, target := range parseCmdkeyTargets(out) {
		if err := hiddenCommand("cmdkey", "/delete:"+target).Run(); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return &PlatformError{Op: "delete credentials", Err: fmt.Errorf("%d entries could not be removed", failed)}
	}
	return nil
}

func (nativeSystem) IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// IsReparsePoint reports whether path is a symlink, junction or other
// reparse point.
func IsReparsePoint(path string) bool {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return false
	}
	return attrs&fileAttributeReparsePoint != 0
}

func knownFolders(home string) userFolders {
	f := defaultFolders(home)

	k, err := registry.OpenKey(registry.CURRENT_USER, shellFoldersKey, registry.QUERY_VALUE)
	if err != nil {
		return f
	}
	defer k.Close()

	read := func(name, fallback string) string {
		v, _, err := k.GetStringValue(name)
		if err != nil || strings.TrimSpace(v) == "" {
			return fallback
		}
		if expanded, err := registry.ExpandString(v); err == nil {
			v = expanded
		}
		return filepath.Clean(v)
	}
	f.Desktop = read("Desktop", f.Desktop)
	f.Documents = read("Personal", f.Documents)
	f.Downloads = read(downloadsGUID, f.Downloads)
	return f
}

func hiddenCommand(name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return cmd
}
