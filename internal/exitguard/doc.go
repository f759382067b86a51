// Package exitguard maintains a process-wide registry of cleanup actions
// that must run when the host terminates: stopping supervised database
// processes and deleting disposable data directories.
//
// Go has no atexit hook, so "normal termination" is approximated two ways:
// a signal handler (SIGINT/SIGTERM) installed on first registration, and an
// explicit Fire call for hosts that shut down by returning from main. Each
// registered action runs at most once regardless of how firing is triggered.
package exitguard
