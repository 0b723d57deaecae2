package pattern

import (
	"context"
	"sync"

	"github.com/cscx-ai/meetopt/core/model"
)

// Key identifies one pattern row. StakeholderID may be empty for
// customer-level aggregates.
type Key struct {
	CustomerID    string
	StakeholderID string
}

// Store is the durable keyed cache of computed pattern statistics. It is a
// materialized view over raw history with a freshness TTL, not authoritative
// storage.
//
// UpsertMerge must apply the read-modify-write atomically per key so that two
// concurrently recorded outcomes never lose an update.
type Store interface {
	Get(ctx context.Context, key Key) (model.PatternAnalysis, bool, error)
	Put(ctx context.Context, key Key, a model.PatternAnalysis) error
	UpsertMerge(ctx context.Context, key Key, merge func(old model.PatternAnalysis, found bool) model.PatternAnalysis) (model.PatternAnalysis, error)
}

// MemoryStore is a mutex-guarded in-process Store, used in tests and when
// embedding without persistence.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[Key]model.PatternAnalysis
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[Key]model.PatternAnalysis)}
}

// Get returns the stored analysis for the key.
func (s *MemoryStore) Get(_ context.Context, key Key) (model.PatternAnalysis, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[key]
	return a, ok, nil
}

// Put stores the analysis under the key.
func (s *MemoryStore) Put(_ context.Context, key Key, a model.PatternAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = a
	return nil
}

// UpsertMerge applies merge under the store lock and returns the new value.
func (s *MemoryStore) UpsertMerge(_ context.Context, key Key, merge func(old model.PatternAnalysis, found bool) model.PatternAnalysis) (model.PatternAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rows[key]
	next := merge(old, ok)
	s.rows[key] = next
	return next, nil
}
