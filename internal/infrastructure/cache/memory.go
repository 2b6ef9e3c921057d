package cache

import "sync"

// memoryView is an in-process read-through view over the sidecar files.
// The filesystem stays the source of truth; everything here must be
// reconstructible by re-reading the keys from disk.
type memoryView struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func newMemoryView() *memoryView {
	return &memoryView{items: make(map[string][]byte)}
}

func (mv *memoryView) set(key string, value []byte) {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	// copy so callers can't mutate the cached blob
	b := make([]byte, len(value))
	copy(b, value)
	mv.items[key] = b
}

func (mv *memoryView) get(key string) ([]byte, bool) {
	mv.mu.RLock()
	defer mv.mu.RUnlock()
	b, ok := mv.items[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

func (mv *memoryView) delete(key string) {
	mv.mu.Lock()
	defer mv.mu.Unlock()
	delete(mv.items, key)
}
