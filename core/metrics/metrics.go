package metrics

import (
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

// OptimizationEvent captures one completed optimization run.
type OptimizationEvent struct {
	RequestID      string
	CustomerID     string
	StakeholderID  string
	Score          float64
	SlotCount      int
	OptimalSlots   int
	ConfirmedSlots int
	CacheHit       bool
	ColdStart      bool
	Time           time.Time
}

// OutcomeEvent captures one reported meeting outcome.
type OutcomeEvent struct {
	RequestID         string
	CustomerID        string
	StakeholderID     string
	Outcome           model.OutcomeStatus
	Day               time.Weekday
	Hour              int
	NewAcceptanceRate float64
	TotalMeetings     int
	Promoted          bool
	Time              time.Time
}

// Sink records engine events for observability purposes.
type Sink interface {
	RecordOptimization(ev OptimizationEvent) error
	RecordOutcome(ev OutcomeEvent) error
}

// NopSink discards all events.
type NopSink struct{}

// RecordOptimization discards the event.
func (NopSink) RecordOptimization(OptimizationEvent) error { return nil }

// RecordOutcome discards the event.
func (NopSink) RecordOutcome(OutcomeEvent) error { return nil }
