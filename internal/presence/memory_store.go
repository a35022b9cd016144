package presence

import (
	"context"
	"sync"
)

// MemoryStore keeps room membership in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]map[string]struct{})}
}

func (s *MemoryStore) Add(_ context.Context, room, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, ok := s.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		s.rooms[room] = members
	}
	members[connID] = struct{}{}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, room, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if members, ok := s.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(s.rooms, room)
		}
	}
	return nil
}

func (s *MemoryStore) Count(_ context.Context, room string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rooms[room])), nil
}

func (s *MemoryStore) Close() error { return nil }
