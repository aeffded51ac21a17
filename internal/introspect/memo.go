package introspect

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Memo is a concurrency-safe, write-once-per-key memoizing lookup.
// Concurrent callers asking for the same missing key share one load.
type Memo[V any] struct {
	values sync.Map
	group  singleflight.Group
}

type memoEntry[V any] struct {
	value V
	err   error
}

// Get returns the cached value for key, calling load on the first request.
// Errors are cached as well: a key that failed to load keeps failing.
func (m *Memo[V]) Get(key string, load func() (V, error)) (V, error) {
	if cached, ok := m.values.Load(key); ok {
		entry := cached.(memoEntry[V])
		return entry.value, entry.err
	}

	result, _, _ := m.group.Do(key, func() (interface{}, error) {
		if cached, ok := m.values.Load(key); ok {
			return cached, nil
		}
		value, err := load()
		entry := memoEntry[V]{value: value, err: err}
		m.values.Store(key, entry)
		return entry, nil
	})

	entry := result.(memoEntry[V])
	return entry.value, entry.err
}

// Len returns the number of cached keys.
func (m *Memo[V]) Len() int {
	n := 0
	m.values.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}
