// Package guard provides per-key mutual exclusion.
//
// The aggregation pipeline uses it to serialize aggregate-then-transition
// sequences for one interview while leaving different interviews fully
// parallel. Lock entries are reference counted and removed once the last
// holder releases, so the map does not grow with the number of interviews
// ever seen.
package guard

import (
	"context"
	"fmt"
	"sync"
)

// entry is one keyed lock plus its reference count.
type entry struct {
	mu   sync.Mutex
	refs int
}

// Guard hands out a mutex per key.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// New creates an empty Guard.
func New() *Guard {
	return &Guard{locks: make(map[string]*entry)}
}

// Do runs fn while holding the lock for key. The context is checked before
// the lock is taken; fn itself is not interruptible once started, matching
// the aggregation contract (short, non-cancellable critical sections).
func (g *Guard) Do(ctx context.Context, key string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("guard %s: %w", key, err)
	}

	e := g.acquire(key)
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		g.release(key)
	}()

	return fn()
}

func (g *Guard) acquire(key string) *entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.locks[key]
	if !ok {
		e = &entry{}
		g.locks[key] = e
	}
	e.refs++
	return e
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(g.locks, key)
	}
}

// Size returns the number of keys currently holding or waiting on a lock.
func (g *Guard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
