package fileutil

import (
	"os"
	"path/filepath"
	"strings"
)

// IsUnderTempRoot reports whether path resides under the platform's canonical
// temporary directory (os.TempDir). Directories classified this way are
// treated as disposable: the provisioner wipes them before use and the exit
// guard deletes them on shutdown.
//
// This is a prefix heuristic, not a guarantee. A user-chosen directory that
// happens to live under the system temp root (for example a deliberately
// long-lived /tmp/mydata) is misclassified as disposable and will be deleted.
// Callers who need their data to survive must place it outside the temp root.
func IsUnderTempRoot(path string) bool {
	if path == "" {
		return false
	}
	tempRoot := filepath.Clean(os.TempDir())
	cleaned := filepath.Clean(path)
	if cleaned == tempRoot {
		return true
	}
	return strings.HasPrefix(cleaned, tempRoot+string(os.PathSeparator))
}
