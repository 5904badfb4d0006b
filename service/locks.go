package service

import "sync"

// keyedLocks hands out one RWMutex per stored job id. Entries live as long as the
// process, like the jobs they guard.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.RWMutex)}
}

func (k *keyedLocks) lookup(id string) (*sync.RWMutex, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	return l, ok
}

func (k *keyedLocks) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (k *keyedLocks) get(id string) *sync.RWMutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		k.locks[id] = l
	}
	return l
}
