package memory

import (
	"sync"

	"bossbounty/internal/domain/game"
)

const defaultCapacity = 1000

// Store keeps the most recent journal events in process memory. Once full,
// the oldest events are dropped.
type Store struct {
	mu       sync.RWMutex
	capacity int
	events   []game.Event
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{capacity: capacity}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
