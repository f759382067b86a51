package fileutil

import (
	"fmt"
	"os"
	"runtime"
)

// ForceExecutable sets the execute bits on path. Distribution archives do not
// always preserve permissions, so unpacked server binaries may land without
// the execute bit; the wrapped binary cannot be spawned until it is restored.
// No-op on Windows, where execute permission is not a file mode concern.
func ForceExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.Chmod(path, info.Mode()|0o755); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
