package pattern

import (
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

// Cold-start default profile: mid-week days, mid-morning and early-afternoon
// hours, a 30 minute video call. The neutral 0.5 rate matches the EMA prior so
// the first recorded outcome moves the estimate symmetrically.
const (
	DefaultDurationMinutes = 30
	DefaultRate            = 0.5
)

var (
	defaultDays  = []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday}
	defaultHours = []int{10, 11, 14, 15}
)

// DefaultAnalysis returns the documented cold-start profile for a key with no
// history. Confidence is zero; this is a fallback, not an error.
func DefaultAnalysis(customerID, stakeholderID string, now time.Time) model.PatternAnalysis {
	days := make([]model.DayPreference, 0, len(defaultDays))
	for _, d := range defaultDays {
		days = append(days, model.DayPreference{Day: d, AcceptanceRate: DefaultRate})
	}
	hours := make([]model.HourPreference, 0, len(defaultHours))
	for _, h := range defaultHours {
		hours = append(hours, model.HourPreference{Hour: h, AcceptanceRate: DefaultRate})
	}
	return model.PatternAnalysis{
		CustomerID:               customerID,
		StakeholderID:            stakeholderID,
		PreferredDays:            days,
		PreferredHours:           hours,
		PreferredDurationMinutes: DefaultDurationMinutes,
		PreferredFormat:          model.FormatVideo,
		DaysSinceLastMeeting:     -1,
		Confidence:               0,
		ColdStart:                true,
		CalculatedAt:             now,
	}
}
