package limiter

import "sync"

// keyedMutex serializes callers that share a key.
type keyedMutex struct {
	mu    sync.Mutex             // Guards locks
	locks map[string]*keyedEntry // Live entries by key
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int // Holders plus waiters
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free and returns its unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{} // First caller for key
		k.locks[key] = e
	}
	e.refs++ // Count before releasing the map lock
	k.mu.Unlock()

	e.mu.Lock() // Wait for the key
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key) // Last one out drops the entry
		}
		k.mu.Unlock()
	}
}
