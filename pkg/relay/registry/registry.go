package registry

import (
	"cmp"
	"maps"
	"slices"
	"sync"
)

// Registry is a concurrency-safe table of named entries.
//
// Entries are only ever added or overlaid, never deleted: an emitter keeps
// the chain of an event (and with it the epoch and memory) after its last
// handler unsubscribes.
type Registry[K cmp.Ordered, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// New creates an empty registry.
func New[K cmp.Ordered, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// From creates a registry holding a copy of entries.
func From[K cmp.Ordered, V any](entries map[K]V) *Registry[K, V] {
	r := New[K, V]()
	maps.Copy(r.entries, entries)
	return r
}

// Get returns the entry named key.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Ensure returns the entry named key, building it from the key on first
// use. build runs at most once per key, under the write lock.
func (r *Registry[K, V]) Ensure(key K, build func(K) V) V {
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[key]; ok {
		return v
	}
	v = build(key)
	r.entries[key] = v
	return v
}

// Names returns every key in ascending order.
func (r *Registry[K, V]) Names() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Overlay returns a new registry holding r's entries with overrides laid
// on top. Neither input is modified.
func (r *Registry[K, V]) Overlay(overrides map[K]V) *Registry[K, V] {
	r.mu.RLock()
	out := From(r.entries)
	r.mu.RUnlock()

	maps.Copy(out.entries, overrides)
	return out
}
