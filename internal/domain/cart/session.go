package cart

import (
	"context"
	"sync"
	"time"
)

// session pairs a cart with the last time it was touched.
type session struct {
	store    *Store
	lastSeen time.Time
}

// Manager owns one Store per browser session, keyed by session identifier.
// Sessions are created lazily on first access and evicted after staying idle
// for the configured TTL. Carts live in memory only; nothing survives a
// process restart.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewManager creates a Manager that evicts carts idle for longer than ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Get returns the cart for the session, creating an empty one if needed.
// Every call refreshes the session's idle timer. Lookup, touch, and create
// happen under one write lock so a concurrent eviction can never hand the
// caller a store that is no longer in the map.
func (m *Manager) Get(id string) *Store {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.lastSeen = now
		return s.store
	}
	s := &session{store: New(), lastSeen: now}
	m.sessions[id] = s
	return s.store
}

// Drop removes the session's cart immediately.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// evictIdle removes sessions that have not been touched within the TTL.
func (m *Manager) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) >= m.ttl {
			delete(m.sessions, id)
		}
	}
}

// StartEviction launches a background goroutine that periodically evicts
// idle sessions. It stops when ctx is cancelled.
func (m *Manager) StartEviction(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				m.evictIdle(now)
			}
		}
	}()
}
