package exitguard

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// registry holds the pending cleanup actions keyed by owner identity.
// Registering under an existing key replaces the action, so an orchestrator
// that stops and starts again never accumulates duplicate cleanups.
var (
	mu      sync.Mutex
	actions = make(map[string]func())

	// installOnce guards signal-handler installation. The handler lives for
	// the remainder of the process; there is no teardown because firing is
	// terminal by definition.
	installOnce sync.Once
)

// Register adds (or replaces) the cleanup action for the given id.
// The first registration installs the process signal handler.
func Register(id string, fn func()) {
	if id == "" || fn == nil {
		return
	}
	installOnce.Do(installSignalHandler)

	mu.Lock()
	defer mu.Unlock()
	actions[id] = fn
}

// Unregister removes the cleanup action for the given id, if any.
func Unregister(id string) {
	mu.Lock()
	defer mu.Unlock()
	delete(actions, id)
}

// Fire runs every registered action exactly once each, in unspecified order,
// and empties the registry. Safe to call multiple times and from multiple
// goroutines; actions drained by one Fire are invisible to concurrent or
// later calls. Actions are responsible for their own error handling; a
// cleanup failure during teardown has no caller left to report to.
func Fire() {
	mu.Lock()
	pending := make([]func(), 0, len(actions))
	for _, fn := range actions {
		pending = append(pending, fn)
	}
	actions = make(map[string]func())
	mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// installSignalHandler arranges for Fire to run when the process receives
// SIGINT or SIGTERM. After cleanup the signal is re-raised with the default
// disposition restored, so the host still terminates with the conventional
// signal exit status.
func installSignalHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-ch
		Fire()
		signal.Stop(ch)
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(sig)
		}
	}()
}

// resetForTesting empties the registry so tests can run in isolation within
// a single binary. The signal handler, once installed, stays installed.
func resetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	actions = make(map[string]func())
}
