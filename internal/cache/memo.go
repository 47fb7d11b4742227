// Package cache holds small in-process caches that sit in front of gateway
// calls.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a memoized value stays fresh.
const DefaultTTL = 5 * time.Minute

// FetchFunc produces a fresh value.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Memo is a single-slot, time-bounded cache around one fetch function.
//
// The slot is only written after a successful fetch, and the lock is never
// held while fetching. Two Gets that both find the slot stale will both
// fetch; the last to finish wins.
type Memo[T any] struct {
	fetch FetchFunc[T]
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	data      T
	fetchedAt time.Time
	ok        bool
}

// Option configures a Memo.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewMemo creates a Memo around fetch. A ttl <= 0 uses DefaultTTL.
func NewMemo[T any](fetch FetchFunc[T], ttl time.Duration, opts ...Option) *Memo[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memo[T]{fetch: fetch, ttl: ttl, now: o.now}
}

// TTL returns the freshness window.
func (m *Memo[T]) TTL() time.Duration {
	return m.ttl
}

// Get returns the cached value when it is younger than the TTL, otherwise
// calls fetch once. A successful fetch is stored with the time Get was
// entered; a failed fetch is returned as-is and the previous slot is kept.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	now := m.now()

	m.mu.Lock()
	if m.ok && now.Sub(m.fetchedAt) < m.ttl {
		v := m.data
		m.mu.Unlock()
		return v, nil
	}
	m.mu.Unlock()

	v, err := m.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	m.mu.Lock()
	m.data = v
	m.fetchedAt = now
	m.ok = true
	m.mu.Unlock()
	return v, nil
}

// Peek returns the slot contents without fetching, regardless of age.
func (m *Memo[T]) Peek() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.ok
}

// FetchedAt returns when the slot was last filled, and false when empty.
func (m *Memo[T]) FetchedAt() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchedAt, m.ok
}

// Clear empties the slot unconditionally.
func (m *Memo[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.data = zero
	m.fetchedAt = time.Time{}
	m.ok = false
}
