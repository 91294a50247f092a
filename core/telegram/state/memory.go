package state

import "sync"

const lockStripes = 64

type memoryStore[S any] struct {
	mu       sync.RWMutex
	sessions map[int64]S
	stripes  [lockStripes]sync.Mutex
}

// NewMemoryStore constructs an in-memory Store. Sessions do not survive restarts.
func NewMemoryStore[S any]() Store[S] {
	return &memoryStore[S]{sessions: make(map[int64]S)}
}

func (m *memoryStore[S]) GetOrCreate(userID int64, fresh func() S) S {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := fresh()
	m.sessions[userID] = s
	return s
}

func (m *memoryStore[S]) Get(userID int64) (S, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *memoryStore[S]) Save(userID int64, s S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

func (m *memoryStore[S]) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryStore[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memoryStore[S]) Lock(userID int64) func() {
	stripe := &m.stripes[uint64(userID)%lockStripes]
	stripe.Lock()
	return stripe.Unlock
}
