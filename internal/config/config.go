package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/security"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Paths          platform.Env        `yaml:"paths"`
	Scan           ScanConfig          `yaml:"scan"`
	Clean          CleanConfig         `yaml:"clean"`
	Accounts       []AccountTarget     `yaml:"accounts"`
	Vendors        []VendorRule        `yaml:"vendors,omitempty"`
	CustomPaths    []string            `yaml:"custom_paths"`
	ProtectedPaths []string            `yaml:"protected_paths"`
	Presets        map[string][]string `yaml:"presets"`
	History        HistoryConfig       `yaml:"history"`
	Log            LogConfig           `yaml:"log"`
	Daemon         *DaemonConfig       `yaml:"daemon,omitempty"`
}

// ScanConfig tunes the scan modes
type ScanConfig struct {
	DepthLimit          int           `yaml:"depth_limit"`
	AppDataWorkers      int           `yaml:"appdata_workers"`
	DriveWorkers        int           `yaml:"drive_workers"`
	AccountWorkers      int           `yaml:"account_workers"`
	HashWorkers         int           `yaml:"hash_workers"`
	InstallerAgeDays    int           `yaml:"installer_age_days"`
	InstallerExtensions []string      `yaml:"installer_extensions"`
	LargeFileThreshold  ByteSize      `yaml:"large_file_threshold"`
	LargeFileLimit      int           `yaml:"large_file_limit"`
	LargeFileDirs       []string      `yaml:"large_file_dirs"`
	DuplicateDirs       []string      `yaml:"duplicate_dirs"`
	DuplicateMinSize    ByteSize      `yaml:"duplicate_min_size"`
	HashChunkSize       ByteSize      `yaml:"hash_chunk_size"`
	ExcludedTopFolders  []string      `yaml:"excluded_top_folders"`
	AccountDenylist     []string      `yaml:"account_denylist"`
	DriveRoots          []string      `yaml:"drive_roots,omitempty"` // replaces drive enumeration when set
	Deadline            time.Duration `yaml:"deadline"`
}

// CleanConfig tunes the deletion executor
type CleanConfig struct {
	Workers         int           `yaml:"workers"`
	ShredBytes      ByteSize      `yaml:"shred_bytes"`
	RetryMaxElapsed time.Duration `yaml:"retry_max_elapsed"`
	SentinelSize    ByteSize      `yaml:"sentinel_size"`
	DryRun          bool          `yaml:"dry_run"`
}

// AccountTarget describes a chat application whose per-account folders
// can be discovered on any drive.
type AccountTarget struct {
	Name      string             `yaml:"name"`
	RootNames []string           `yaml:"root_names"`
	Registry  []RegistryLocation `yaml:"registry,omitempty"`
	Processes []string           `yaml:"processes,omitempty"`
}

// RegistryLocation is a HKCU key/value holding a save path.
type RegistryLocation struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// VendorRule adds a classification rule ahead of the built-in table.
type VendorRule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
	Name     string `yaml:"name"`
}

// HistoryConfig controls the cleanup history log
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// LogConfig controls the application logger
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DaemonConfig holds daemon mode configuration
type DaemonConfig struct {
	Enabled   bool       `yaml:"enabled"`
	LockFile  string     `yaml:"lock_file,omitempty"`
	LogFile   string     `yaml:"log_file,omitempty"`
	LogLevel  string     `yaml:"log_level"`
	Schedules []Schedule `yaml:"schedules"`
}

// Schedule defines a scheduled sweep
type Schedule struct {
	Name      string   `yaml:"name"`
	Schedule  string   `yaml:"schedule"` // Cron expression
	Preset    string   `yaml:"preset,omitempty"`
	Modes     []string `yaml:"modes,omitempty"`
	Shred     bool     `yaml:"shred"`
	DryRun    bool     `yaml:"dry_run"`
	CloseApps bool     `yaml:"close_apps"`
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so omitted keys keep their default values.
	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	s := c.Scan
	if s.DepthLimit < 1 {
		return fmt.Errorf("scan depth limit must be >= 1")
	}
	for name, n := range map[string]int{
		"appdata_workers": s.AppDataWorkers,
		"drive_workers":   s.DriveWorkers,
		"account_workers": s.AccountWorkers,
		"hash_workers":    s.HashWorkers,
	} {
		if n < 1 || n > 64 {
			return fmt.Errorf("scan %s must be between 1 and 64, got %d", name, n)
		}
	}
	if s.InstallerAgeDays < 0 {
		return fmt.Errorf("installer age must be >= 0")
	}
	if s.LargeFileThreshold <= 0 {
		return fmt.Errorf("large file threshold must be > 0")
	}
	if s.LargeFileLimit < 1 {
		return fmt.Errorf("large file limit must be >= 1")
	}
	if s.HashChunkSize <= 0 {
		return fmt.Errorf("hash chunk size must be > 0")
	}
	if s.Deadline < 0 {
		return fmt.Errorf("scan deadline must be >= 0")
	}
	for _, ext := range s.InstallerExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("installer extension must start with '.': %s", ext)
		}
	}

	if c.Clean.Workers < 1 || c.Clean.Workers > MaxCleanWorkers {
		return fmt.Errorf("clean workers must be between 1 and %d, got %d", MaxCleanWorkers, c.Clean.Workers)
	}
	if c.Clean.ShredBytes <= 0 {
		return fmt.Errorf("shred bytes must be > 0")
	}
	if c.Clean.RetryMaxElapsed < 0 {
		return fmt.Errorf("retry max elapsed must be >= 0")
	}

	for _, a := range c.Accounts {
		if a.Name == "" || len(a.RootNames) == 0 {
			return fmt.Errorf("account target needs a name and at least one root name")
		}
	}

	for _, path := range c.CustomPaths {
		if err := security.ValidatePath(path); err != nil {
			return fmt.Errorf("invalid custom path %q: %w", path, err)
		}
	}
	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	for name, modes := range c.Presets {
		if len(modes) == 0 {
			return fmt.Errorf("preset %q has no modes", name)
		}
	}

	if c.Daemon != nil {
		for _, sch := range c.Daemon.Schedules {
			if sch.Schedule == "" {
				return fmt.Errorf("schedule %q has no cron expression", sch.Name)
			}
			if sch.Preset == "" && len(sch.Modes) == 0 {
				return fmt.Errorf("schedule %q needs a preset or modes", sch.Name)
			}
			if sch.Preset != "" {
				if _, ok := c.Presets[sch.Preset]; !ok {
					return fmt.Errorf("schedule %q references unknown preset %q", sch.Name, sch.Preset)
				}
			}
		}
	}

	return nil
}

// ResolveModes expands a preset name to its mode list.
func (c *Config) ResolveModes(preset string) ([]string, error) {
	modes, ok := c.Presets[preset]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", preset)
	}
	return modes, nil
}

// AddCustomPath records a custom scan folder. Duplicates are ignored.
func (c *Config) AddCustomPath(path string) error {
	clean := filepath.Clean(path)
	if err := security.ValidatePath(clean); err != nil {
		return err
	}
	for _, p := range c.CustomPaths {
		if strings.EqualFold(p, clean) {
			return nil
		}
	}
	c.CustomPaths = append(c.CustomPaths, clean)
	return nil
}

// RemoveCustomPath drops a custom scan folder. It reports whether the path was present.
func (c *Config) RemoveCustomPath(path string) bool {
	clean := filepath.Clean(path)
	for i, p := range c.CustomPaths {
		if strings.EqualFold(p, clean) {
			c.CustomPaths = append(c.CustomPaths[:i], c.CustomPaths[i+1:]...)
			return true
		}
	}
	return false
}

// ConfigDir returns the directory holding config, history and sessions.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "winsweep"), nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// HistoryPath returns the configured history file, or the default location.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.jsonl"), nil
}

// SessionsDir returns the directory holding saved scans.
func SessionsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
