package model

import "time"

// DayPreference is the observed acceptance behaviour for one weekday.
type DayPreference struct {
	Day            time.Weekday `json:"day"`
	AcceptanceRate float64      `json:"acceptance_rate"`
	Count          int          `json:"count"`
}

// HourPreference is the observed acceptance behaviour for one hour of day.
type HourPreference struct {
	Hour           int     `json:"hour"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	Count          int     `json:"count"`
}

// PatternAnalysis is the derived, cacheable aggregate of a stakeholder's
// historical meeting behaviour, keyed by (customer, optional stakeholder).
// It is a materialized view over raw history, not a source of truth.
type PatternAnalysis struct {
	CustomerID    string `json:"customer_id"`
	StakeholderID string `json:"stakeholder_id,omitempty"`

	TotalMeetings    int     `json:"total_meetings"`
	AcceptedMeetings int     `json:"accepted_meetings"`
	AcceptanceRate   float64 `json:"acceptance_rate"`

	// Latency statistics over entries that reported a response latency.
	AvgResponseLatencyHours    float64 `json:"avg_response_latency_hours"`
	StdDevResponseLatencyHours float64 `json:"stddev_response_latency_hours"`

	// Ranked descending by acceptance rate. Buckets without observations are
	// omitted except in the cold-start default profile.
	PreferredDays  []DayPreference  `json:"preferred_days"`
	PreferredHours []HourPreference `json:"preferred_hours"`

	PreferredDurationMinutes int           `json:"preferred_duration_minutes"`
	PreferredFormat          MeetingFormat `json:"preferred_format"`

	LastMeetingAt        time.Time `json:"last_meeting_at"`
	DaysSinceLastMeeting int       `json:"days_since_last_meeting"`

	SuccessfulSubjects []string `json:"successful_subjects,omitempty"`

	// Confidence grows with history size and saturates at ConfidenceSaturation
	// meetings. Always in [0,1].
	Confidence float64 `json:"confidence"`

	// ColdStart marks the documented default profile returned when no history
	// exists for the key.
	ColdStart bool `json:"cold_start"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// ConfidenceSaturation is the history size at which confidence reaches 1.0.
const ConfidenceSaturation = 20

// ConfidenceFor returns min(1, total/ConfidenceSaturation).
func ConfidenceFor(totalMeetings int) float64 {
	if totalMeetings >= ConfidenceSaturation {
		return 1
	}
	if totalMeetings <= 0 {
		return 0
	}
	return float64(totalMeetings) / ConfidenceSaturation
}

// DayRate returns the acceptance rate for the given weekday and whether the
// day has an observed (or default) bucket.
func (a PatternAnalysis) DayRate(d time.Weekday) (float64, bool) {
	for _, p := range a.PreferredDays {
		if p.Day == d {
			return p.AcceptanceRate, true
		}
	}
	return 0, false
}

// HourRate returns the acceptance rate for the given hour and whether the hour
// has an observed (or default) bucket.
func (a PatternAnalysis) HourRate(h int) (float64, bool) {
	for _, p := range a.PreferredHours {
		if p.Hour == h {
			return p.AcceptanceRate, true
		}
	}
	return 0, false
}
