package model

import "time"

// RequestStatus is the lifecycle state of a composed meeting request.
type RequestStatus string

const (
	StatusDraft       RequestStatus = "draft"
	StatusSent        RequestStatus = "sent"
	StatusAccepted    RequestStatus = "accepted"
	StatusDeclined    RequestStatus = "declined"
	StatusRescheduled RequestStatus = "rescheduled"
	StatusCancelled   RequestStatus = "cancelled"
	StatusNoResponse  RequestStatus = "no_response"
)

// StatusForOutcome maps a reported outcome onto the request lifecycle.
func StatusForOutcome(o OutcomeStatus) RequestStatus {
	switch o {
	case OutcomeAccepted:
		return StatusAccepted
	case OutcomeDeclined:
		return StatusDeclined
	case OutcomeRescheduled:
		return StatusRescheduled
	case OutcomeCancelled:
		return StatusCancelled
	default:
		return StatusNoResponse
	}
}

// ProposedTime is one candidate slot offered to the stakeholder. Display
// strings are rendered in the stakeholder's timezone.
type ProposedTime struct {
	Start           time.Time    `json:"start"`
	Day             time.Weekday `json:"day"`
	HourOfDay       int          `json:"hour_of_day"`
	DisplayDate     string       `json:"display_date"`
	DisplayTime     string       `json:"display_time"`
	DurationMinutes int          `json:"duration_minutes"`

	// IsOptimal: day acceptance >=0.7 AND hour acceptance >=0.7 AND the day is
	// preferred (or no preferences are available).
	IsOptimal bool `json:"is_optimal"`
	// AvailabilityConfirmed is true only when a free/busy check succeeded and
	// the whole slot is free.
	AvailabilityConfirmed bool `json:"availability_confirmed"`
}

// ImpactTier grades how much a recommendation is expected to matter.
type ImpactTier string

const (
	ImpactHigh   ImpactTier = "high"
	ImpactMedium ImpactTier = "medium"
	ImpactLow    ImpactTier = "low"
)

// Recommendation is one deterministic scheduling hint attached to a request.
type Recommendation struct {
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Reasoning string     `json:"reasoning"`
	Impact    ImpactTier `json:"impact"`
}

// MeetingRequest is the persisted artifact of one optimization run. It is
// created as a draft, mutated only by outcome reporting and never deleted by
// this subsystem.
type MeetingRequest struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customer_id"`
	StakeholderID string `json:"stakeholder_id,omitempty"`
	MeetingType   string `json:"meeting_type"`

	Subject string `json:"subject"`
	Body    string `json:"body"`

	ProposedTimes   []ProposedTime `json:"proposed_times"`
	DurationMinutes int            `json:"duration_minutes"`
	Format          MeetingFormat  `json:"format"`

	Analysis          PatternAnalysis  `json:"analysis"`
	Recommendations   []Recommendation `json:"recommendations"`
	OptimizationScore float64          `json:"optimization_score"`

	Status               RequestStatus `json:"status"`
	CreatedAt            time.Time     `json:"created_at"`
	RespondedAt          *time.Time    `json:"responded_at,omitempty"`
	ResponseLatencyHours *float64      `json:"response_latency_hours,omitempty"`
	AcceptedSlot         *ProposedTime `json:"accepted_slot,omitempty"`
}
