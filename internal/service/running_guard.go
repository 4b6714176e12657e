package service

import (
	"context"
	"sync"
	"time"
)

// ExportedRunGuard is an exported alias so _test packages can test the guard.
type ExportedRunGuard = runGuard

// ─────────────────────────────────────────────────────────────
// runGuard: at most one run per key, with shutdown draining
// ─────────────────────────────────────────────────────────────

type run struct {
	started time.Time
	done    chan struct{}
}

type runGuard struct {
	mu   sync.Mutex
	runs map[string]*run
}

// Begin claims key. When a run for key is already in flight it returns
// false and the time that run started.
func (g *runGuard) Begin(key string) (bool, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.runs == nil {
		g.runs = make(map[string]*run)
	}
	if r, ok := g.runs[key]; ok {
		return false, r.started
	}
	g.runs[key] = &run{started: time.Now(), done: make(chan struct{})}
	return true, time.Time{}
}

// End releases key. Ending a key that is not running is a no-op.
func (g *runGuard) End(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.runs[key]; ok {
		close(r.done)
		delete(g.runs, key)
	}
}

// Wait blocks until every run in flight when it was called has ended, or
// ctx is done.
func (g *runGuard) Wait(ctx context.Context) {
	g.mu.Lock()
	pending := make([]chan struct{}, 0, len(g.runs))
	for _, r := range g.runs {
		pending = append(pending, r.done)
	}
	g.mu.Unlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
	}
}
