// Package lock provides writer locks for the inventory ledger.
package lock

import (
	"context"
	"sync"

	"stockrecon/internal/port"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Local serialises writers inside one process. A key is tracked only while someone holds
// or waits for it.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal creates an in-process Locker.
func NewLocal() *Local {
	return &Local{entries: make(map[string]*entry)}
}

func (l *Local) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Local) drop(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Keys reports how many keys are currently held or awaited.
func (l *Local) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Obtain blocks until key is free or ctx is done.
func (l *Local) Obtain(ctx context.Context, key string) (port.Lock, error) {
	e := l.acquire(key)
	select {
	case e.sem <- struct{}{}:
		return &localLock{owner: l, key: key, entry: e}, nil
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}
}

type localLock struct {
	once  sync.Once
	owner *Local
	key   string
	entry *entry
}

func (l *localLock) Release(_ context.Context) error {
	l.once.Do(func() {
		<-l.entry.sem
		l.owner.drop(l.key, l.entry)
	})
	return nil
}
