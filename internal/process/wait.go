package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// Sentinel errors returned by WaitReadyTCP for invalid configuration.
var (
	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = errors.New("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = errors.New("timeout must be positive")
)

// tcpDialTimeout is the per-attempt timeout for the dial in WaitReadyTCP.
// Generous for localhost; attempts that fail because nothing is listening
// return immediately with connection refused, so this only guards against
// pathological cases.
const tcpDialTimeout = time.Second

// WaitReadyTCPConfig configures a TCP readiness poll.
type WaitReadyTCPConfig struct {
	Interval      time.Duration   // poll interval
	Timeout       time.Duration   // overall timeout
	Name          string          // for logging and error context
	Port          int             // port on 127.0.0.1 to dial
	Logger        *slog.Logger    // optional, defaults to slog.Default()
	ProcessExited <-chan struct{} // if non-nil, abort immediately when closed
}

// WaitReadyTCP polls until a TCP connection to 127.0.0.1:port succeeds or
// the timeout elapses. Used to verify that a server which has announced
// readiness on its console is actually accepting connections.
func WaitReadyTCP(ctx context.Context, cfg WaitReadyTCPConfig) error {
	if cfg.Name == "" {
		return errors.New("wait ready: name must not be empty")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	dialer := &net.Dialer{Timeout: tcpDialTimeout}

	// attempt is incremented without synchronization because
	// PollUntilContextTimeout invokes the condition sequentially.
	attempt := 0
	if err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			if cfg.ProcessExited != nil {
				select {
				case <-cfg.ProcessExited:
					return false, fmt.Errorf("process %s: %w", cfg.Name, ErrProcessExited)
				default:
				}
			}

			attempt++
			conn, err := dialer.DialContext(pollCtx, "tcp", addr)
			if err != nil {
				log.Debug("tcp readiness attempt failed",
					"name", cfg.Name, "port", cfg.Port, "attempt", attempt, "error", err)
				return false, nil
			}
			_ = conn.Close()
			log.Debug("tcp readiness confirmed", "name", cfg.Name, "port", cfg.Port, "attempt", attempt)
			return true, nil
		}); err != nil {
		return fmt.Errorf("wait for %s readiness on port %d: %w", cfg.Name, cfg.Port, err)
	}
	return nil
}
