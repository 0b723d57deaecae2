package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/core/pattern"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "meetopt.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return db
}

var storeNow = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

func TestPatternStoreRoundtrip(t *testing.T) {
	db := openTestDB(t)
	patterns := db.Patterns()
	key := pattern.Key{CustomerID: "cust-1", StakeholderID: "stake-1"}

	_, found, err := patterns.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, found)

	want := pattern.DefaultAnalysis("cust-1", "stake-1", storeNow)
	require.NoError(t, patterns.Put(context.Background(), key, want))

	got, found, err := patterns.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "cust-1", got.CustomerID)
	assert.True(t, got.ColdStart)
	assert.True(t, got.CalculatedAt.Equal(storeNow))
	assert.Len(t, got.PreferredDays, 3)
}

func TestPatternStoreUpsertMergeSerializesWriters(t *testing.T) {
	db := openTestDB(t)
	patterns := db.Patterns()
	key := pattern.Key{CustomerID: "cust-1"}

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := patterns.UpsertMerge(context.Background(), key, func(old model.PatternAnalysis, found bool) model.PatternAnalysis {
				if !found {
					old = model.PatternAnalysis{CustomerID: "cust-1"}
				}
				old.TotalMeetings++
				old.CalculatedAt = storeNow
				return old
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, found, err := patterns.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, writers, got.TotalMeetings)
}

func TestPreferenceStoreRoundtrip(t *testing.T) {
	db := openTestDB(t)
	prefs := db.Preferences()

	want := model.StakeholderPreferences{
		StakeholderID:      "stake-1",
		PreferredDays:      []time.Weekday{time.Tuesday, time.Thursday},
		PreferredTimeStart: 9,
		PreferredTimeEnd:   12,
		ConfidenceScore:    0.8,
		Source:             model.SourceStated,
		UpdatedAt:          storeNow,
	}
	require.NoError(t, prefs.Put(context.Background(), want))

	got, found, err := prefs.Get(context.Background(), "stake-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want.PreferredDays, got.PreferredDays)
	assert.Equal(t, model.SourceStated, got.Source)

	// Upsert replaces the row.
	want.Source = model.SourceManual
	require.NoError(t, prefs.Put(context.Background(), want))
	got, _, err = prefs.Get(context.Background(), "stake-1")
	require.NoError(t, err)
	assert.Equal(t, model.SourceManual, got.Source)
}

func TestRequestStoreRoundtripAndList(t *testing.T) {
	db := openTestDB(t)
	requests := db.Requests()

	for i, id := range []string{"req-1", "req-2", "req-3"} {
		require.NoError(t, requests.Put(context.Background(), model.MeetingRequest{
			ID:         id,
			CustomerID: "cust-1",
			Status:     model.StatusDraft,
			CreatedAt:  storeNow.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, found, err := requests.Get(context.Background(), "req-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "cust-1", got.CustomerID)

	_, found, err = requests.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)

	list, err := requests.ListByCustomer(context.Background(), "cust-1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "req-3", list[0].ID, "newest first")
	assert.Equal(t, "req-2", list[1].ID)

	// Status update lands on the same row.
	got.Status = model.StatusSent
	require.NoError(t, requests.Put(context.Background(), got))
	got, _, err = requests.Get(context.Background(), "req-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, got.Status)
}

func TestHistoryStoreDedupeAndFilter(t *testing.T) {
	db := openTestDB(t)
	hist := db.History()

	base := model.MeetingHistoryEntry{
		CustomerID:    "cust-1",
		StakeholderID: "stake-1",
		ScheduledAt:   storeNow,
		Outcome:       model.OutcomeAccepted,
		Subject:       "first write",
	}
	require.NoError(t, hist.Add(context.Background(), base))

	dup := base
	dup.Subject = "second write"
	require.NoError(t, hist.Add(context.Background(), dup), "re-adding the same slot is a no-op")

	other := base
	other.StakeholderID = "stake-2"
	other.ScheduledAt = storeNow.Add(time.Hour)
	require.NoError(t, hist.Add(context.Background(), other))

	got, err := hist.FetchMeetingHistory(context.Background(), "cust-1", "stake-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first write", got[0].Subject)

	got, err = hist.FetchMeetingHistory(context.Background(), "cust-1", "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, !got[0].ScheduledAt.Before(got[1].ScheduledAt), "newest first")

	got, err = hist.FetchMeetingHistory(context.Background(), "cust-2", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
