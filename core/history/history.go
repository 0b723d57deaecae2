// Package history defines the collaborator contract for fetching historical
// meeting records and the merge rules applied when more than one stream feeds
// the same key.
package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

// FetchLimit bounds the number of entries an analysis considers.
const FetchLimit = 100

// Source returns meeting history for a (customer, optional stakeholder) key,
// newest first. Implementations live outside the core; a sqlite-backed mirror
// ships in infra/store.
type Source interface {
	FetchMeetingHistory(ctx context.Context, customerID, stakeholderID string) ([]model.MeetingHistoryEntry, error)
}

// MultiSource merges several sources into one contract-conforming stream:
// entries are deduplicated, sorted newest first and capped at FetchLimit.
// Typical wiring is one request-outcome source and one calendar-sync source.
type MultiSource struct {
	Sources []Source
}

// FetchMeetingHistory fetches from every source and merges the results. A
// failing source fails the whole fetch; the analyzer degrades to its
// cold-start default in that case.
func (m MultiSource) FetchMeetingHistory(ctx context.Context, customerID, stakeholderID string) ([]model.MeetingHistoryEntry, error) {
	var all []model.MeetingHistoryEntry
	for _, s := range m.Sources {
		entries, err := s.FetchMeetingHistory(ctx, customerID, stakeholderID)
		if err != nil {
			return nil, fmt.Errorf("fetch history: %w", err)
		}
		all = append(all, entries...)
	}
	return Merge(all), nil
}

// Merge sorts entries newest first, drops duplicates and caps the result at
// FetchLimit. Two entries are duplicates when they share the key and the
// scheduled minute; the earlier-listed entry wins, so callers should append
// the authoritative stream first.
func Merge(entries []model.MeetingHistoryEntry) []model.MeetingHistoryEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]model.MeetingHistoryEntry, 0, len(entries))
	for _, e := range entries {
		k := dedupeKey(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})
	if len(out) > FetchLimit {
		out = out[:FetchLimit]
	}
	return out
}

func dedupeKey(e model.MeetingHistoryEntry) string {
	return fmt.Sprintf("%s|%s|%d", e.CustomerID, e.StakeholderID, e.ScheduledAt.Truncate(time.Minute).Unix())
}

// MemorySource is an in-process Source for tests and the memory store
// backend.
type MemorySource struct {
	mu      sync.Mutex
	entries []model.MeetingHistoryEntry
}

// NewMemorySource returns an empty MemorySource.
func NewMemorySource() *MemorySource { return &MemorySource{} }

// Add appends an entry.
func (m *MemorySource) Add(e model.MeetingHistoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

// FetchMeetingHistory returns the merged entries for the key. An empty
// stakeholder ID matches all entries for the customer.
func (m *MemorySource) FetchMeetingHistory(_ context.Context, customerID, stakeholderID string) ([]model.MeetingHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.MeetingHistoryEntry
	for _, e := range m.entries {
		if e.CustomerID != customerID {
			continue
		}
		if stakeholderID != "" && e.StakeholderID != stakeholderID {
			continue
		}
		out = append(out, e)
	}
	return Merge(out), nil
}
