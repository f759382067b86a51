// Package netutil provides free-port allocation with an in-process
// reservation registry, used when a database instance is configured with
// port 0 (pick an ephemeral server port).
package netutil
