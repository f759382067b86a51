// Package process provides supervision of external database server processes.
//
// It defines BaseProcess for common start/stop behavior (single cmd.Wait
// goroutine, SIGTERM-then-SIGKILL shutdown, stdout/stderr capture to log
// files), a console line scanner for text-based readiness detection, a
// Builder for assembling argument vectors with normalized file paths, and
// WaitReadyTCP for polling-based port checks.
package process
