package model

import "time"

// Provenance tags the origin of a preference record and governs whether it
// may be overwritten by inference.
type Provenance string

const (
	SourceManual      Provenance = "manual"
	SourceStated      Provenance = "stated"
	SourceAutoLearned Provenance = "auto_learned"
)

// AvoidWindow is an hour range a stakeholder asked not to be booked in.
// Days limits the window to specific weekdays; an empty list applies it to
// every day.
type AvoidWindow struct {
	Days      []time.Weekday `json:"days,omitempty"`
	StartHour int            `json:"start_hour"`
	EndHour   int            `json:"end_hour"`
	Reason    string         `json:"reason,omitempty"`
}

// AppliesTo reports whether the window covers the given weekday and hour.
func (w AvoidWindow) AppliesTo(day time.Weekday, hour int) bool {
	if hour < w.StartHour || hour >= w.EndHour {
		return false
	}
	if len(w.Days) == 0 {
		return true
	}
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}

// StakeholderPreferences is an explicit-or-inferred scheduling profile.
// Records with SourceManual or SourceStated provenance are never silently
// replaced by inference.
type StakeholderPreferences struct {
	StakeholderID string `json:"stakeholder_id"`
	Timezone      string `json:"timezone,omitempty"`

	PreferredDays []time.Weekday `json:"preferred_days,omitempty"`
	// Preferred time-of-day window [start, end) in hours of the stakeholder's
	// timezone. Both zero means no window is set.
	PreferredTimeStart int `json:"preferred_time_start"`
	PreferredTimeEnd   int `json:"preferred_time_end"`

	PreferredDurationMinutes int           `json:"preferred_duration_minutes"`
	PreferredFormat          MeetingFormat `json:"preferred_format,omitempty"`

	AvoidDays    []time.Weekday `json:"avoid_days,omitempty"`
	AvoidWindows []AvoidWindow  `json:"avoid_windows,omitempty"`

	Notes           string     `json:"notes,omitempty"`
	ConfidenceScore float64    `json:"confidence_score"`
	Source          Provenance `json:"source"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasTimeWindow reports whether a preferred time-of-day window is set.
func (p StakeholderPreferences) HasTimeWindow() bool {
	return p.PreferredTimeEnd > p.PreferredTimeStart
}

// AllowsHour reports whether the hour falls inside the preferred window, or
// true when no window is set.
func (p StakeholderPreferences) AllowsHour(hour int) bool {
	if !p.HasTimeWindow() {
		return true
	}
	return hour >= p.PreferredTimeStart && hour < p.PreferredTimeEnd
}

// PrefersDay reports whether the weekday is one of the preferred days.
func (p StakeholderPreferences) PrefersDay(d time.Weekday) bool {
	for _, day := range p.PreferredDays {
		if day == d {
			return true
		}
	}
	return false
}

// IsAvoidDay reports whether the weekday was explicitly excluded.
func (p StakeholderPreferences) IsAvoidDay(d time.Weekday) bool {
	for _, day := range p.AvoidDays {
		if day == d {
			return true
		}
	}
	return false
}

// InAvoidWindow reports whether the day/hour pair falls in an avoid window.
func (p StakeholderPreferences) InAvoidWindow(day time.Weekday, hour int) bool {
	for _, w := range p.AvoidWindows {
		if w.AppliesTo(day, hour) {
			return true
		}
	}
	return false
}
