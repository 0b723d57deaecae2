package pattern

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

func TestMemoryStoreUpsertMergeIsAtomic(t *testing.T) {
	store := NewMemoryStore()
	key := Key{CustomerID: "c", StakeholderID: "s"}

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, _ = store.UpsertMerge(context.Background(), key, func(old model.PatternAnalysis, found bool) model.PatternAnalysis {
				old.TotalMeetings++
				return old
			})
		}()
	}
	wg.Wait()

	a, found, err := store.Get(context.Background(), key)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if a.TotalMeetings != writers {
		t.Fatalf("lost updates: total=%d want %d", a.TotalMeetings, writers)
	}
}

func TestMemoryStorePutGetRoundtrip(t *testing.T) {
	store := NewMemoryStore()
	key := Key{CustomerID: "c"}
	want := DefaultAnalysis("c", "", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := store.Put(context.Background(), key, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, found, err := store.Get(context.Background(), key)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !got.CalculatedAt.Equal(want.CalculatedAt) || got.CustomerID != "c" {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
	if _, found, _ := store.Get(context.Background(), Key{CustomerID: "other"}); found {
		t.Error("unexpected row for unrelated key")
	}
}
