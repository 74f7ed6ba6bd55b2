package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
)

// Locker serialises mutations of one bracket. Release is safe to call more
// than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker is an in-process Locker for single instance deployments.
type LocalLocker struct {
	wait time.Duration

	mu   sync.Mutex
	held map[string]*entry
}

type entry struct {
	slot chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{wait: wait, held: make(map[string]*entry)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.held[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		l.held[key] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.slot <- struct{}{}:
	case <-timer.C:
		l.drop(key, e)
		return nil, fmt.Errorf("%w: %s is busy", bracket.ErrLockContention, key)
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			l.drop(key, e)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.held, key)
	}
}
