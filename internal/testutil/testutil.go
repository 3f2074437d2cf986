// Package testutil provides test helpers and fixtures for winsweep tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fenilsonani/winsweep/internal/platform"
)

// TestFixture holds a temporary user profile laid out like a Windows one.
type TestFixture struct {
	T       *testing.T
	RootDir string // Root temp directory (auto-cleaned)

	Profile    string
	Local      string
	Roaming    string
	Temp       string
	SystemRoot string
	Downloads  string
	Documents  string
}

// NewFixture creates a new test fixture with standard directory structure
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()
	profile := filepath.Join(root, "Users", "alice")

	f := &TestFixture{
		T:          t,
		RootDir:    root,
		Profile:    profile,
		Local:      filepath.Join(profile, "AppData", "Local"),
		Roaming:    filepath.Join(profile, "AppData", "Roaming"),
		Temp:       filepath.Join(profile, "AppData", "Local", "Temp"),
		SystemRoot: filepath.Join(root, "Windows"),
		Downloads:  filepath.Join(profile, "Downloads"),
		Documents:  filepath.Join(profile, "Documents"),
	}

	for _, dir := range []string{f.Local, f.Roaming, f.Temp, f.SystemRoot, f.Downloads, f.Documents} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return f
}

// Env returns folder locations pointing into the fixture.
func (f *TestFixture) Env() *platform.Env {
	return &platform.Env{
		UserProfile:    f.Profile,
		LocalAppData:   f.Local,
		RoamingAppData: f.Roaming,
		Temp:           f.Temp,
		SystemRoot:     f.SystemRoot,
		Downloads:      f.Downloads,
		Documents:      f.Documents,
		Desktop:        filepath.Join(f.Profile, "Desktop"),
	}
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file with specified content and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateSizedFile creates a zero-filled file of exactly size bytes
func (f *TestFixture) CreateSizedFile(relPath string, size int64) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}
	defer file.Close()
	if err := file.Truncate(size); err != nil {
		f.T.Fatalf("failed to size file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	oldTime := time.Now().Add(-age)

	if err := os.Chtimes(fullPath, oldTime, oldTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateRandomFile creates a file with random content
func (f *TestFixture) CreateRandomFile(relPath string, size int) string {
	f.T.Helper()
	content := make([]byte, size)
	rand.Read(content)
	return f.CreateFile(relPath, content)
}

// Touch sets a file's modification time
func (f *TestFixture) Touch(path string, mtime time.Time) {
	f.T.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", path, err)
	}
}

// =============================================================================
// Directory Helpers
// =============================================================================

// CreateDir creates a directory and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateUnreadableDir creates a directory holding one file and then removes
// every permission from it. Permissions are restored on cleanup.
func (f *TestFixture) CreateUnreadableDir(relPath string, size int64) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateSizedFile(filepath.Join(relPath, "hidden.bin"), size)
	if err := os.Chmod(dirPath, 0000); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// CreateReadOnlyDir creates a read-only directory (files inside can't be deleted)
func (f *TestFixture) CreateReadOnlyDir(relPath string) string {
	f.T.Helper()

	dirPath := f.CreateDir(relPath)
	f.CreateFile(filepath.Join(relPath, "trapped.txt"), []byte("trapped"))
	if err := os.Chmod(dirPath, 0555); err != nil {
		f.T.Fatalf("failed to chmod directory %s: %v", dirPath, err)
	}

	f.T.Cleanup(func() {
		os.Chmod(dirPath, 0755)
	})

	return dirPath
}

// CreateSymlink creates a symbolic link, skipping the test where links
// cannot be created.
func (f *TestFixture) CreateSymlink(target, linkPath string) string {
	f.T.Helper()

	fullLinkPath := f.Path(linkPath)
	if err := os.MkdirAll(filepath.Dir(fullLinkPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", filepath.Dir(fullLinkPath), err)
	}
	if err := os.Symlink(target, fullLinkPath); err != nil {
		f.T.Skipf("cannot create symlink %s: %v", fullLinkPath, err)
	}

	return fullLinkPath
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a relative path within the fixture
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// RelPath returns the relative path from the fixture root
func (f *TestFixture) RelPath(fullPath string) string {
	rel, _ := filepath.Rel(f.RootDir, fullPath)
	return rel
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// AssertFileSize checks if file has expected size
func (f *TestFixture) AssertFileSize(path string, expectedSize int64) {
	f.T.Helper()
	info, err := os.Stat(path)
	if err != nil {
		f.T.Errorf("failed to stat %s: %v", path, err)
		return
	}
	if info.Size() != expectedSize {
		f.T.Errorf("file %s has size %d, want %d", path, info.Size(), expectedSize)
	}
}

// =============================================================================
// Fake platform
// =============================================================================

// FakeSystem is an in-memory platform.System. Bulk operations are counted
// and fail with Err when it is set.
type FakeSystem struct {
	Drives   []string
	Registry map[string]string
	Elevated bool
	Err      error

	mu    sync.Mutex
	calls map[string]int
}

// NewFakeSystem creates a fake with the given drive roots.
func NewFakeSystem(drives ...string) *FakeSystem {
	return &FakeSystem{Drives: drives, Registry: make(map[string]string)}
}

// SetRegistry stores a value returned by RegistryString.
func (s *FakeSystem) SetRegistry(key, value, data string) {
	s.Registry[key+`\`+value] = data
}

// Calls returns how often a bulk operation was invoked.
func (s *FakeSystem) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *FakeSystem) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
	if s.Err != nil {
		return &platform.PlatformError{Op: op, Err: s.Err}
	}
	return nil
}

func (s *FakeSystem) FixedDrives() []string { return s.Drives }

func (s *FakeSystem) RegistryString(key, value string) (string, bool) {
	v, ok := s.Registry[key+`\`+value]
	return v, ok
}

func (s *FakeSystem) EmptyRecycleBin() error      { return s.record("EmptyRecycleBin") }
func (s *FakeSystem) ClearClipboard() error       { return s.record("ClearClipboard") }
func (s *FakeSystem) FlushNetworkTrace() error    { return s.record("FlushNetworkTrace") }
func (s *FakeSystem) ClearCredentialVault() error { return s.record("ClearCredentialVault") }
func (s *FakeSystem) IsElevated() bool            { return s.Elevated }

// =============================================================================
// Utility Functions
// =============================================================================

// GetDirSize returns the total size of all files in a directory
func GetDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// IsRoot returns true if running as root/admin
func IsRoot() bool {
	return os.Geteuid() == 0
}

// SkipIfRoot skips the test if running as root, where permission bits do
// not stop reads.
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if IsRoot() {
		t.Skip("skipping test when running as root")
	}
}

// SkipOnWindows skips tests that depend on POSIX permission bits
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on windows")
	}
}

// ContainsString checks if a string contains a substring (case-insensitive)
func ContainsString(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
