package process

import (
	"bytes"
	"strings"
	"sync"
)

// Matcher decides whether a console line satisfies a wait. The readiness
// contract with the wrapped binary is a verbatim line of output, but keeping
// the matching strategy behind this interface lets it evolve (regex,
// structured log parsing) without touching the supervisor.
type Matcher interface {
	Match(line string) bool
}

// substringMatcher matches lines containing an exact, case-sensitive substring.
type substringMatcher string

func (m substringMatcher) Match(line string) bool {
	return strings.Contains(line, string(m))
}

// Substring returns a Matcher that matches any line containing s verbatim.
func Substring(s string) Matcher {
	return substringMatcher(s)
}

// LineWait is a one-shot wait handle for a console line. Its Done channel is
// closed the first time a matching line is observed.
type LineWait struct {
	matcher Matcher
	done    chan struct{}
	once    sync.Once

	mu   sync.Mutex
	line string
}

// Done returns a channel closed once a matching line has been observed.
func (w *LineWait) Done() <-chan struct{} {
	return w.done
}

// Line returns the matched line, or "" if no match has been observed yet.
func (w *LineWait) Line() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.line
}

func (w *LineWait) signal(line string) {
	w.once.Do(func() {
		w.mu.Lock()
		w.line = line
		w.mu.Unlock()
		close(w.done)
	})
}

// lineScanner is an io.Writer that splits a byte stream into lines and feeds
// each complete line to the registered waiters. It is interposed between a
// process's stdout/stderr and its log files so readiness text can be detected
// without consuming the stream.
type lineScanner struct {
	mu      sync.Mutex
	partial bytes.Buffer
	waiters []*LineWait
}

func newLineScanner() *lineScanner {
	return &lineScanner{}
}

// Expect registers a waiter notified on the first line matched by m.
// Waiters must be registered before the process starts writing; lines seen
// earlier are not replayed.
func (s *lineScanner) Expect(m Matcher) *LineWait {
	w := &LineWait{matcher: m, done: make(chan struct{})}
	s.mu.Lock()
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()
	return w
}

// Write implements io.Writer. It never fails so that a scan problem can not
// break the process's output pipeline.
func (s *lineScanner) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rest := p
	for {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			s.partial.Write(rest)
			break
		}
		s.partial.Write(rest[:idx])
		s.deliverLocked(s.partial.String())
		s.partial.Reset()
		rest = rest[idx+1:]
	}
	return len(p), nil
}

// Flush delivers any trailing partial line. Called once after the process
// exits, since a final line without a newline would otherwise never match.
func (s *lineScanner) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.partial.Len() > 0 {
		s.deliverLocked(s.partial.String())
		s.partial.Reset()
	}
}

func (s *lineScanner) deliverLocked(line string) {
	line = strings.TrimSuffix(line, "\r")
	for _, w := range s.waiters {
		if w.matcher.Match(line) {
			w.signal(line)
		}
	}
}
