package cleaner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

// PermissionManager decides which targets need an elevated process.
type PermissionManager struct {
	elevated   bool
	adminRoots []string
}

// NewPermissionManager creates a PermissionManager. Folders under the
// Windows directory, Program Files and ProgramData need administrator
// rights to modify.
func NewPermissionManager(sys platform.System, env *platform.Env) *PermissionManager {
	pm := &PermissionManager{}
	if sys != nil {
		pm.elevated = sys.IsElevated()
	}
	if env != nil && env.SystemRoot != "" {
		pm.adminRoots = append(pm.adminRoots, env.SystemRoot)
	}
	for _, v := range []string{"ProgramFiles", "ProgramFiles(x86)", "ProgramData"} {
		if dir := os.Getenv(v); dir != "" {
			pm.adminRoots = append(pm.adminRoots, dir)
		}
	}
	return pm
}

// IsElevated reports whether the process runs with administrator rights.
func (pm *PermissionManager) IsElevated() bool {
	return pm.elevated
}

// RequiresElevation reports whether deleting path needs rights this
// process does not have. Sentinels never do; the recycle bin and clipboard
// are per-user.
func (pm *PermissionManager) RequiresElevation(path string) bool {
	if pm.elevated || platform.IsSentinel(path) {
		return false
	}
	for _, root := range pm.adminRoots {
		if underOrEqual(path, root) {
			return true
		}
	}
	return false
}

func underOrEqual(path, dir string) bool {
	p := strings.ToLower(filepath.Clean(path))
	d := strings.ToLower(filepath.Clean(dir))
	return p == d || strings.HasPrefix(p, d+string(filepath.Separator))
}

// IsSpecialFile checks if a path is a special file (device, socket, pipe)
func IsSpecialFile(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeDevice != 0:
		return true, fmt.Errorf("is a device file")
	case mode&os.ModeCharDevice != 0:
		return true, fmt.Errorf("is a character device")
	case mode&os.ModeSocket != 0:
		return true, fmt.Errorf("is a socket")
	case mode&os.ModeNamedPipe != 0:
		return true, fmt.Errorf("is a named pipe (FIFO)")
	}

	return false, nil
}

// IsSafeToDelete refuses device files, sockets and pipes as targets.
func IsSafeToDelete(path string) error {
	if isSpecial, err := IsSpecialFile(path); isSpecial {
		return fmt.Errorf("refusing to delete special file: %w", err)
	}
	return nil
}

// PermissionReport splits findings by the rights needed to delete them
type PermissionReport struct {
	Normal            []scanner.Finding
	RequiresElevation []scanner.Finding
	TotalNormalSize   int64
	TotalElevatedSize int64
}

// AnalyzePermissions sorts findings into those this process can delete and
// those that need an elevated prompt.
func (pm *PermissionManager) AnalyzePermissions(findings []scanner.Finding) *PermissionReport {
	report := &PermissionReport{}
	for _, f := range findings {
		if pm.RequiresElevation(f.Path) {
			report.RequiresElevation = append(report.RequiresElevation, f)
			report.TotalElevatedSize += f.Size
			continue
		}
		report.Normal = append(report.Normal, f)
		report.TotalNormalSize += f.Size
	}
	return report
}
