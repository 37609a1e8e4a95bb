// File path: internal/common/once.go
package common

import "sync"

// OnceGuard runs a setup function exactly once even when many goroutines
// race on first use. Unlike sync.Once, a failed attempt leaves the guard
// open so a later caller can retry after fixing the configuration.
type OnceGuard struct {
	mu   sync.Mutex
	done bool
}

// Do invokes fn unless a previous invocation already succeeded.
// Concurrent callers block until the in-flight attempt finishes and then
// observe its outcome.
func (g *OnceGuard) Do(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return nil
	}
	if fn != nil {
		if err := fn(); err != nil {
			return err
		}
	}
	g.done = true
	return nil
}

// Done reports whether the guarded initialization has completed.
func (g *OnceGuard) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}
