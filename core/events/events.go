// Package events defines the notifications the engine publishes on its bus.
// Observers such as the metrics bridge subscribe to these; delivery is
// best-effort and never blocks the engine.
package events

import (
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

// Event is implemented by every engine notification.
type Event interface{ eventName() string }

// RequestComposed fires after an optimization run persisted a draft request.
type RequestComposed struct {
	RequestID     string
	CustomerID    string
	StakeholderID string
	Score         float64
	SlotCount     int
	CacheHit      bool
	ColdStart     bool
	Time          time.Time
}

func (RequestComposed) eventName() string { return "request_composed" }

// PatternRecomputed fires when an analysis was rebuilt from raw history
// rather than served from the cache.
type PatternRecomputed struct {
	CustomerID    string
	StakeholderID string
	TotalMeetings int
	Confidence    float64
	ColdStart     bool
	Time          time.Time
}

func (PatternRecomputed) eventName() string { return "pattern_recomputed" }

// OutcomeRecorded fires after an outcome was folded into the pattern store.
type OutcomeRecorded struct {
	RequestID     string
	CustomerID    string
	StakeholderID string
	Outcome       model.OutcomeStatus
	Day           time.Weekday
	Hour          int
	TotalMeetings int
	Time          time.Time
}

func (OutcomeRecorded) eventName() string { return "outcome_recorded" }

// PreferencesPromoted fires when inferred preferences cleared the confidence
// gate and were written to the preference store.
type PreferencesPromoted struct {
	StakeholderID string
	Confidence    float64
	Time          time.Time
}

func (PreferencesPromoted) eventName() string { return "preferences_promoted" }
