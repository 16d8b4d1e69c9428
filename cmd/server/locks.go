package main

import "sync"

type sessionLock struct {
	sync.Mutex
	refs int
}

// sessionLocks serialises moves on the same game session. Entries are
// dropped once nobody holds or waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int64]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int64]*sessionLock)}
}

// Lock blocks until the session is free and returns its unlock function.
func (l *sessionLocks) Lock(id int64) (unlock func()) {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sessionLock{}
		l.locks[id] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
