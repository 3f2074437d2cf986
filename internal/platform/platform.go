// Package platform confines environment lookups and operating-system bulk
// operations (recycle bin, clipboard, registry, drives) behind small types
// that the scanner and cleaner receive explicitly.
package platform

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Sentinel tokens stand in for targets that are not a single filesystem path.
const (
	SentinelRecycleBin      = "RECYCLE_BIN"
	SentinelClipboard       = "CLIPBOARD"
	SentinelNetworkTrace    = "NETWORK_TRACE"
	SentinelCredentialVault = "CREDENTIAL_VAULT"
)

// IsSentinel reports whether path is one of the sentinel tokens.
func IsSentinel(path string) bool {
	switch path {
	case SentinelRecycleBin, SentinelClipboard, SentinelNetworkTrace, SentinelCredentialVault:
		return true
	}
	return false
}

// ErrUnsupported is returned by bulk operations on platforms without them.
var ErrUnsupported = errors.New("operation not supported on this platform")

// Env holds the well-known folders the scanner walks.
type Env struct {
	UserProfile    string `yaml:"user_profile" json:"user_profile"`
	LocalAppData   string `yaml:"local_appdata" json:"local_appdata"`
	RoamingAppData string `yaml:"roaming_appdata" json:"roaming_appdata"`
	Temp           string `yaml:"temp" json:"temp"`
	SystemRoot     string `yaml:"system_root" json:"system_root"`
	Downloads      string `yaml:"downloads" json:"downloads"`
	Documents      string `yaml:"documents" json:"documents"`
	Desktop        string `yaml:"desktop" json:"desktop"`
}

// FromEnvironment reads the process environment. It is the only place the
// scanner's folder locations come from the environment.
func FromEnvironment() *Env {
	home := os.Getenv("USERPROFILE")
	if home == "" {
		home, _ = os.UserHomeDir()
	}

	env := &Env{
		UserProfile:    home,
		LocalAppData:   os.Getenv("LOCALAPPDATA"),
		RoamingAppData: os.Getenv("APPDATA"),
		Temp:           os.TempDir(),
		SystemRoot:     os.Getenv("SystemRoot"),
	}

	if env.LocalAppData == "" && home != "" {
		env.LocalAppData = filepath.Join(home, "AppData", "Local")
	}
	if env.RoamingAppData == "" && home != "" {
		env.RoamingAppData = filepath.Join(home, "AppData", "Roaming")
	}
	if env.SystemRoot == "" && runtime.GOOS == "windows" {
		env.SystemRoot = `C:\Windows`
	}

	folders := knownFolders(home)
	env.Downloads = folders.Downloads
	env.Documents = folders.Documents
	env.Desktop = folders.Desktop

	return env
}

// Merge returns a copy of e with every non-empty field of override applied.
func (e *Env) Merge(override Env) *Env {
	out := *e
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = filepath.Clean(os.ExpandEnv(v))
		}
	}
	set(&out.UserProfile, override.UserProfile)
	set(&out.LocalAppData, override.LocalAppData)
	set(&out.RoamingAppData, override.RoamingAppData)
	set(&out.Temp, override.Temp)
	set(&out.SystemRoot, override.SystemRoot)
	set(&out.Downloads, override.Downloads)
	set(&out.Documents, override.Documents)
	set(&out.Desktop, override.Desktop)
	return &out
}

// UserFolder returns a folder under the user profile, preferring the
// resolved Downloads/Documents/Desktop locations for those names.
func (e *Env) UserFolder(name string) string {
	switch strings.ToLower(name) {
	case "downloads":
		if e.Downloads != "" {
			return e.Downloads
		}
	case "documents":
		if e.Documents != "" {
			return e.Documents
		}
	case "desktop":
		if e.Desktop != "" {
			return e.Desktop
		}
	}
	if e.UserProfile == "" {
		return ""
	}
	return filepath.Join(e.UserProfile, name)
}

type userFolders struct {
	Downloads string
	Documents string
	Desktop   string
}

func defaultFolders(home string) userFolders {
	if home == "" {
		return userFolders{}
	}
	return userFolders{
		Downloads: filepath.Join(home, "Downloads"),
		Documents: filepath.Join(home, "Documents"),
		Desktop:   filepath.Join(home, "Desktop"),
	}
}

// System is the set of operating-system calls the engine depends on.
type System interface {
	// FixedDrives returns local fixed drive roots such as `C:\`.
	FixedDrives() []string
	// RegistryString reads a string value under HKEY_CURRENT_USER.
	RegistryString(key, value string) (string, bool)
	EmptyRecycleBin() error
	ClearClipboard() error
	FlushNetworkTrace() error
	ClearCredentialVault() error
	IsElevated() bool
}

// PlatformError wraps a failed bulk operation.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}
