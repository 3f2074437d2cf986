package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator handles path validation before deletion. Windows paths are
// compared case-insensitively.
type PathValidator struct {
	// exact entries may not be deleted themselves; their children may.
	exact []string
	// tree entries protect everything beneath them.
	tree []string
}

// NewPathValidator creates a new PathValidator with default protected paths
func NewPathValidator() *PathValidator {
	return &PathValidator{
		exact: []string{
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData`,
			`C:\Users`,
		},
		tree: []string{
			`C:\Windows\System32`,
			`C:\Windows\SysWOW64`,
			`C:\Windows\WinSxS`,
			`C:\Windows\Boot`,
			`C:\Recovery`,
			`C:\System Volume Information`,
		},
	}
}

// ValidatePathForDeletion performs validation on a path before deletion.
// This is the single gate the cleaner passes every filesystem target through.
func (pv *PathValidator) ValidatePathForDeletion(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	// Resolve symlinks so a link inside a cache folder cannot point the
	// cleaner at a protected location.
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to resolve symlinks: %w", err)
		}
		resolved = path
	}

	for _, p := range []string{path, filepath.Clean(resolved)} {
		if err := pv.checkProtectedPaths(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath checks that path is usable as a scan or deletion target:
// absolute, free of control characters, and not a bare drive root.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains control characters: %q", path)
	}
	if isDriveRoot(path) {
		return fmt.Errorf("refusing drive root: %s", path)
	}
	if !filepath.IsAbs(path) && !isWindowsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	return nil
}

func (pv *PathValidator) checkProtectedPaths(cleanPath string) error {
	if isDriveRoot(cleanPath) {
		return fmt.Errorf("refusing to delete drive root: %s", cleanPath)
	}

	for _, protected := range pv.exact {
		if samePath(cleanPath, protected) {
			return fmt.Errorf("refusing to delete protected path: %s", cleanPath)
		}
	}

	for _, protected := range pv.tree {
		if samePath(cleanPath, protected) || isUnder(cleanPath, protected) {
			return fmt.Errorf("refusing to delete system path: %s", cleanPath)
		}
	}

	return nil
}

// IsProtectedPath checks if a path is refused by the validator
func (pv *PathValidator) IsProtectedPath(path string) bool {
	return pv.checkProtectedPaths(filepath.Clean(path)) != nil
}

// AddProtectedPath protects a single folder (not its contents), such as the
// user profile or an AppData root.
func (pv *PathValidator) AddProtectedPath(path string) {
	if path == "" {
		return
	}
	pv.exact = append(pv.exact, filepath.Clean(path))
}

// AddProtectedTree protects a folder and everything beneath it.
func (pv *PathValidator) AddProtectedTree(path string) {
	if path == "" {
		return
	}
	pv.tree = append(pv.tree, filepath.Clean(path))
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.TrimSuffix(strings.ToLower(p), "/")
}

func samePath(a, b string) bool {
	return normalize(a) == normalize(b)
}

func isUnder(path, dir string) bool {
	return strings.HasPrefix(normalize(path), normalize(dir)+"/")
}

// isDriveRoot matches "C:", "C:\" and, on test hosts, "/".
func isDriveRoot(p string) bool {
	p = strings.TrimRight(p, `\/`)
	if p == "" {
		return true
	}
	return len(p) == 2 && p[1] == ':' && isLetter(p[0])
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && isLetter(p[0]) && p[1] == ':' && (p[2] == '\\' || p[2] == '/')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
