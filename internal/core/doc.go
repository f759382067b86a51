// Package core implements the embedded database lifecycle: unpacking a
// bundled distribution, provisioning the base and data directories, seeding
// the data directory with the install command, supervising the server
// process, and guaranteeing cleanup when the host process terminates.
//
// The package is internal; consumers use the public embedsql package, which
// wraps a core.DB behind a small interface.
package core
