package service

import "sync"

// sessionLocks serializes work per quiz session inside one process.
// Entries are reference counted and dropped when unused.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int64]*sessionLock)}
}

// Lock blocks until the session is free and returns the unlock func.
func (l *sessionLocks) Lock(id int64) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &sessionLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()

		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
