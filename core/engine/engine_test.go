package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cscx-ai/meetopt/core/calendar"
	"github.com/cscx-ai/meetopt/core/events"
	"github.com/cscx-ai/meetopt/core/history"
	"github.com/cscx-ai/meetopt/core/learning"
	"github.com/cscx-ai/meetopt/core/metrics"
	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/core/pattern"
	"github.com/cscx-ai/meetopt/core/preference"
	"github.com/cscx-ai/meetopt/infra/logger"
	"github.com/cscx-ai/meetopt/internal/eventbus"
)

// Monday 2026-02-09 08:00 UTC.
var engNow = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

type captureSink struct {
	optimizations []metrics.OptimizationEvent
	outcomes      []metrics.OutcomeEvent
}

func (s *captureSink) RecordOptimization(ev metrics.OptimizationEvent) error {
	s.optimizations = append(s.optimizations, ev)
	return nil
}

func (s *captureSink) RecordOutcome(ev metrics.OutcomeEvent) error {
	s.outcomes = append(s.outcomes, ev)
	return nil
}

type testHarness struct {
	engine   *Engine
	source   *history.MemorySource
	requests *learning.MemoryRequestStore
	prefs    *preference.MemoryStore
	sink     *captureSink
	bus      *eventbus.Bus[events.Event]
}

func newHarness(t *testing.T, cal calendar.Provider) *testHarness {
	return newHarnessWith(t, cal, func(*Options) {})
}

func newHarnessWith(t *testing.T, cal calendar.Provider, tweak func(*Options)) *testHarness {
	t.Helper()
	source := history.NewMemorySource()
	patterns := pattern.NewMemoryStore()
	analyzer := pattern.NewAnalyzer(patterns, source, logger.NopLogger{})
	analyzer.SetClock(func() time.Time { return engNow })

	prefStore := preference.NewMemoryStore()
	prefs := preference.NewService(prefStore, logger.NopLogger{})
	prefs.SetClock(func() time.Time { return engNow })

	requests := learning.NewMemoryRequestStore()
	learner := learning.NewLearner(patterns, prefs, requests, logger.NopLogger{})
	learner.SetClock(func() time.Time { return engNow })

	sink := &captureSink{}
	bus := eventbus.New[events.Event]()
	t.Cleanup(bus.Close)

	opts := Options{
		Analyzer:    analyzer,
		Preferences: prefs,
		Requests:    requests,
		Learner:     learner,
		Calendar:    cal,
		Bus:         bus,
		Sink:        sink,
		Logger:      logger.NopLogger{},
	}
	tweak(&opts)
	eng, err := New(opts)
	require.NoError(t, err)
	next := 0
	eng.SetClock(func() time.Time { return engNow }, func() string {
		next++
		return []string{"req-1", "req-2", "req-3"}[(next-1)%3]
	})
	return &testHarness{engine: eng, source: source, requests: requests, prefs: prefStore, sink: sink, bus: bus}
}

func seedHistory(h *testHarness, n int) {
	// Tuesdays at 10:00, all accepted.
	at := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		h.source.Add(model.MeetingHistoryEntry{
			CustomerID:      "cust-1",
			StakeholderID:   "stake-1",
			ScheduledAt:     at.AddDate(0, 0, -7*i),
			DurationMinutes: 30,
			Format:          model.FormatVideo,
			Outcome:         model.OutcomeAccepted,
		})
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestGenerateColdStart(t *testing.T) {
	h := newHarness(t, nil)

	req, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:   "cust-1",
		CustomerName: "Acme Corp",
	})
	require.NoError(t, err)

	assert.True(t, req.Analysis.ColdStart)
	assert.Equal(t, 0.0, req.Analysis.Confidence)
	assert.Equal(t, 30, req.DurationMinutes)
	assert.Equal(t, model.FormatVideo, req.Format)
	require.NotEmpty(t, req.ProposedTimes)
	for _, s := range req.ProposedTimes {
		assert.Contains(t, []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday}, s.Day)
		assert.Contains(t, []int{10, 11, 14, 15}, s.HourOfDay)
		assert.False(t, s.AvailabilityConfirmed, "no calendar was consulted")
	}
	assert.Equal(t, model.StatusDraft, req.Status)

	// The draft is persisted under its generated ID.
	stored, found, err := h.requests.Get(context.Background(), req.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, req.Subject, stored.Subject)
}

func TestGenerateWithHistoryAndCalendar(t *testing.T) {
	h := newHarness(t, calendar.AlwaysFree{})
	seedHistory(h, 10)

	req, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:     "cust-1",
		CustomerName:   "Acme Corp",
		StakeholderID:  "stake-1",
		CalendarUserID: "me@example.com",
		SlotCount:      3,
	})
	require.NoError(t, err)

	assert.False(t, req.Analysis.ColdStart)
	assert.Equal(t, 0.5, req.Analysis.Confidence)
	require.Len(t, req.ProposedTimes, 3)
	for _, s := range req.ProposedTimes {
		assert.True(t, s.AvailabilityConfirmed)
	}
	assert.GreaterOrEqual(t, req.OptimizationScore, 75.0)

	require.Len(t, h.sink.optimizations, 1)
	ev := h.sink.optimizations[0]
	assert.Equal(t, req.ID, ev.RequestID)
	assert.Equal(t, 3, ev.SlotCount)
	assert.False(t, ev.CacheHit)
	assert.False(t, ev.ColdStart)
}

func TestGenerateSecondCallHitsCache(t *testing.T) {
	h := newHarness(t, nil)
	seedHistory(h, 5)

	_, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{CustomerID: "cust-1", StakeholderID: "stake-1"})
	require.NoError(t, err)
	_, err = h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{CustomerID: "cust-1", StakeholderID: "stake-1"})
	require.NoError(t, err)

	require.Len(t, h.sink.optimizations, 2)
	assert.False(t, h.sink.optimizations[0].CacheHit)
	assert.True(t, h.sink.optimizations[1].CacheHit)
}

func TestGenerateRequiresCustomerID(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{})
	require.Error(t, err)
}

type failingCalendar struct{}

func (failingCalendar) FreeBusy(context.Context, string, calendar.Window, int) ([]model.Interval, error) {
	return nil, errors.New("calendar unreachable")
}

func TestGenerateCalendarFailureDegrades(t *testing.T) {
	h := newHarness(t, failingCalendar{})
	seedHistory(h, 10)

	req, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:     "cust-1",
		StakeholderID:  "stake-1",
		CalendarUserID: "me@example.com",
	})
	require.NoError(t, err, "calendar failure must not fail the request")
	for _, s := range req.ProposedTimes {
		assert.False(t, s.AvailabilityConfirmed, "availability is unknown, not confirmed")
	}
}

func TestGenerateUsesConfiguredDefaults(t *testing.T) {
	h := newHarnessWith(t, nil, func(o *Options) {
		o.DefaultTimezone = "America/New_York"
		o.DefaultSlotCount = 2
	})
	seedHistory(h, 10)

	req, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:    "cust-1",
		StakeholderID: "stake-1",
	})
	require.NoError(t, err)

	require.Len(t, req.ProposedTimes, 2)
	for _, s := range req.ProposedTimes {
		assert.Contains(t, s.DisplayTime, "EST")
	}

	// An explicit slot count on the request still wins over the default.
	req, err = h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:    "cust-1",
		StakeholderID: "stake-1",
		SlotCount:     3,
	})
	require.NoError(t, err)
	assert.Len(t, req.ProposedTimes, 3)
}

type captureCalendar struct {
	durations []int
}

func (c *captureCalendar) FreeBusy(_ context.Context, _ string, _ calendar.Window, durationMinutes int) ([]model.Interval, error) {
	c.durations = append(c.durations, durationMinutes)
	return nil, nil
}

func TestFreeBusyReceivesResolvedDuration(t *testing.T) {
	cal := &captureCalendar{}
	h := newHarness(t, cal)

	// No duration on the request or in history; the learned default applies
	// and must reach the calendar lookup.
	_, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:     "cust-1",
		CalendarUserID: "me@example.com",
	})
	require.NoError(t, err)

	require.Len(t, cal.durations, 1)
	assert.Equal(t, 30, cal.durations[0])
}

func TestOutcomeRoundtrip(t *testing.T) {
	h := newHarness(t, nil)
	seedHistory(h, 10)

	req, err := h.engine.GenerateOptimizedRequest(context.Background(), GenerateInput{
		CustomerID:    "cust-1",
		StakeholderID: "stake-1",
	})
	require.NoError(t, err)

	sub := h.bus.Subscribe()
	latency := 4.0
	require.NoError(t, h.engine.RecordOutcome(context.Background(), req.ID, model.OutcomeAccepted, &latency, &req.ProposedTimes[0]))

	stored, found, err := h.requests.Get(context.Background(), req.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StatusAccepted, stored.Status)

	require.Len(t, h.sink.outcomes, 1)
	assert.Equal(t, model.OutcomeAccepted, h.sink.outcomes[0].Outcome)

	select {
	case ev := <-sub:
		rec, ok := ev.(events.OutcomeRecorded)
		require.True(t, ok, "got %T", ev)
		assert.Equal(t, req.ID, rec.RequestID)
	case <-time.After(time.Second):
		t.Fatal("no outcome event published")
	}
}

func TestRecordOutcomeUnknownRequest(t *testing.T) {
	h := newHarness(t, nil)
	err := h.engine.RecordOutcome(context.Background(), "nope", model.OutcomeDeclined, nil, nil)
	require.Error(t, err)
}

type stubDirectory struct{ info StakeholderInfo }

func (d stubDirectory) Stakeholder(context.Context, string) (StakeholderInfo, bool, error) {
	return d.info, true, nil
}

func TestGetMeetingPatternsAttachesDirectoryInfo(t *testing.T) {
	source := history.NewMemorySource()
	patterns := pattern.NewMemoryStore()
	analyzer := pattern.NewAnalyzer(patterns, source, logger.NopLogger{})
	prefs := preference.NewService(preference.NewMemoryStore(), logger.NopLogger{})
	eng, err := New(Options{
		Analyzer:    analyzer,
		Preferences: prefs,
		Requests:    learning.NewMemoryRequestStore(),
		Directory:   stubDirectory{info: StakeholderInfo{ID: "stake-1", Name: "Dana Reyes", Timezone: "America/Chicago"}},
		Logger:      logger.NopLogger{},
	})
	require.NoError(t, err)

	summary, err := eng.GetMeetingPatterns(context.Background(), "cust-1", "stake-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", summary.StakeholderName)
	assert.Equal(t, "America/Chicago", summary.Timezone)
	assert.True(t, summary.ColdStart)
}
