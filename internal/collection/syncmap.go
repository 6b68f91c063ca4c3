package collection

import "sync"

// SyncMap is a generic map guarded by a read/write mutex
type SyncMap[K comparable, V any] struct {
	mux sync.RWMutex
	m   map[K]V
}

// Get returns the value stored under key
func (s *SyncMap[K, V]) Get(key K) (V, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Put stores value under key
func (s *SyncMap[K, V]) Put(key K, value V) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.m[key] = value
}

// Delete removes key
func (s *SyncMap[K, V]) Delete(key K) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.m, key)
}

// Len returns the number of entries
func (s *SyncMap[K, V]) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.m)
}

// Range calls fn for a snapshot of entries until fn returns false
func (s *SyncMap[K, V]) Range(fn func(key K, value V) bool) {
	s.mux.RLock()
	keys := make([]K, 0, len(s.m))
	values := make([]V, 0, len(s.m))
	for k, v := range s.m {
		keys = append(keys, k)
		values = append(values, v)
	}
	s.mux.RUnlock()
	for i := range keys {
		if !fn(keys[i], values[i]) {
			return
		}
	}
}

// NewSyncMap creates an empty SyncMap
func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{m: make(map[K]V)}
}
