package service

import "sync"

// billLocks serializes writers of the same bill. Entries are dropped once no
// goroutine holds or waits for them.
type billLocks struct {
	mu    sync.Mutex
	locks map[string]*billLock
}

type billLock struct {
	sync.Mutex
	refs int
}

func newBillLocks() *billLocks {
	return &billLocks{locks: make(map[string]*billLock)}
}

// lock blocks until the caller is the only writer of billID and returns the
// function that releases it.
func (l *billLocks) lock(billID string) func() {
	l.mu.Lock()
	bl, ok := l.locks[billID]
	if !ok {
		bl = &billLock{}
		l.locks[billID] = bl
	}
	bl.refs++
	l.mu.Unlock()

	bl.Lock()
	return func() {
		bl.Unlock()
		l.mu.Lock()
		bl.refs--
		if bl.refs == 0 {
			delete(l.locks, billID)
		}
		l.mu.Unlock()
	}
}

func (l *billLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
