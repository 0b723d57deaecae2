package model

import "time"

// MeetingFormat defines how a meeting is held.
type MeetingFormat string

const (
	FormatVideo    MeetingFormat = "video"
	FormatPhone    MeetingFormat = "phone"
	FormatInPerson MeetingFormat = "in_person"
)

// OutcomeStatus is the reported result of a meeting proposal.
type OutcomeStatus string

const (
	OutcomeAccepted    OutcomeStatus = "accepted"
	OutcomeDeclined    OutcomeStatus = "declined"
	OutcomeRescheduled OutcomeStatus = "rescheduled"
	OutcomeCancelled   OutcomeStatus = "cancelled"
	OutcomeNoResponse  OutcomeStatus = "no_response"
)

// Accepted reports whether the outcome counts as a positive observation.
func (o OutcomeStatus) Accepted() bool { return o == OutcomeAccepted }

// Valid reports whether the outcome is one of the known statuses.
func (o OutcomeStatus) Valid() bool {
	switch o {
	case OutcomeAccepted, OutcomeDeclined, OutcomeRescheduled, OutcomeCancelled, OutcomeNoResponse:
		return true
	}
	return false
}

// MeetingHistoryEntry is one historical meeting touchpoint. Entries are
// immutable once recorded and arrive from two sources: sent-request outcomes
// and synced calendar events.
type MeetingHistoryEntry struct {
	CustomerID           string        `json:"customer_id"`
	StakeholderID        string        `json:"stakeholder_id,omitempty"`
	ScheduledAt          time.Time     `json:"scheduled_at"`
	DurationMinutes      int           `json:"duration_minutes"`
	Format               MeetingFormat `json:"format"`
	Outcome              OutcomeStatus `json:"outcome"`
	ResponseLatencyHours *float64      `json:"response_latency_hours,omitempty"`
	Subject              string        `json:"subject,omitempty"`
}

// DayOfWeek returns the weekday the meeting was scheduled on.
func (e MeetingHistoryEntry) DayOfWeek() time.Weekday { return e.ScheduledAt.Weekday() }

// HourOfDay returns the hour (0-23) the meeting was scheduled at.
func (e MeetingHistoryEntry) HourOfDay() int { return e.ScheduledAt.Hour() }

// Interval is a half-open [Start, End) time range, used for free/busy data.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Covers reports whether the interval fully contains [start, start+d).
func (i Interval) Covers(start time.Time, d time.Duration) bool {
	end := start.Add(d)
	return !start.Before(i.Start) && !end.After(i.End)
}
