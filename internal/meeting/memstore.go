package meeting

import (
	"context"
	"sync"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// Meetings live only as long as the process; there is no durable layer.
// The zero value is ready to use.
type MemStore struct {
	mu     sync.RWMutex
	order  []string
	byID   map[string]Meeting
	active *Meeting
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		byID: make(map[string]Meeting),
	}
}

// Upsert implements [Store.Upsert].
func (s *MemStore) Upsert(ctx context.Context, m Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byID == nil {
		s.byID = make(map[string]Meeting)
	}

	if _, exists := s.byID[m.ID]; exists {
		// Re-save: drop the old position so the meeting moves to the end.
		for i, id := range s.order {
			if id == m.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.order = append(s.order, m.ID)
	s.byID[m.ID] = m
	return nil
}

// Get implements [Store.Get].
func (s *MemStore) Get(ctx context.Context, id string) (Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.byID[id]
	if !ok {
		return Meeting{}, ErrNotFound
	}
	return m, nil
}

// List implements [Store.List].
func (s *MemStore) List(ctx context.Context) ([]Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Meeting, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.byID[id])
	}
	return result, nil
}

// Len returns the number of committed meetings.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Active implements [Store.Active].
func (s *MemStore) Active() *Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive implements [Store.SetActive].
func (s *MemStore) SetActive(m *Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = m
}
