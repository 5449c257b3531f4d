package server

import "sync"

// keyLocks serializes all commands addressing the same session id while
// letting commands on different ids run fully in parallel. Entries are
// refcounted so the registry does not grow with dead session ids.
type keyLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{entries: make(map[string]*lockEntry)}
}

func (k *keyLocks) lock(id string) {
	k.mu.Lock()
	entry, ok := k.entries[id]
	if !ok {
		entry = &lockEntry{}
		k.entries[id] = entry
	}
	entry.refs++
	k.mu.Unlock()
	entry.mu.Lock()
}

func (k *keyLocks) unlock(id string) {
	k.mu.Lock()
	entry, ok := k.entries[id]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, id)
		}
	}
	k.mu.Unlock()
	if ok {
		entry.mu.Unlock()
	}
}
