//go:build !windows

package platform

type nativeSystem struct{}

// Native returns a System whose bulk operations report ErrUnsupported.
func Native() System {
	return nativeSystem{}
}

func (nativeSystem) FixedDrives() []string { return nil }

func (nativeSystem) RegistryString(key, value string) (string, bool) { return "", false }

func (nativeSystem) EmptyRecycleBin() error {
	return &PlatformError{Op: "empty recycle bin", Err: ErrUnsupported}
}

func (nativeSystem) ClearClipboard() error {
	return &PlatformError{Op: "clear clipboard", Err: ErrUnsupported}
}

func (nativeSystem) FlushNetworkTrace() error {
	return &PlatformError{Op: "flush network trace", Err: ErrUnsupported}
}

func (nativeSystem) ClearCredentialVault() error {
	return &PlatformError{Op: "clear credential vault", Err: ErrUnsupported}
}

func (nativeSystem) IsElevated() bool { return false }

// IsReparsePoint is false off Windows; symlinks are caught by Lstat mode bits.
func IsReparsePoint(path string) bool { return false }

func knownFolders(home string) userFolders {
	return defaultFolders(home)
}
