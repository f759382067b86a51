package embedsql

import (
	"log/slog"

	"github.com/embedsql/embedsql/internal/core"
)

// SetLogger replaces the package-level logger used by embedsql.
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute.
//
// SetLogger is safe to call concurrently with other embedsql operations.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
