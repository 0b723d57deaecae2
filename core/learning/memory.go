package learning

import (
	"context"
	"sync"

	"github.com/cscx-ai/meetopt/core/model"
)

// MemoryRequestStore is an in-process RequestStore for tests and the memory
// store backend.
type MemoryRequestStore struct {
	mu   sync.RWMutex
	data map[string]model.MeetingRequest
}

// NewMemoryRequestStore returns an empty MemoryRequestStore.
func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{data: make(map[string]model.MeetingRequest)}
}

// Get returns the request by ID.
func (s *MemoryRequestStore) Get(_ context.Context, id string) (model.MeetingRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	return r, ok, nil
}

// Put upserts the request.
func (s *MemoryRequestStore) Put(_ context.Context, r model.MeetingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[r.ID] = r
	return nil
}
