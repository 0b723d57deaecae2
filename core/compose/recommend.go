package compose

import (
	"fmt"
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

// Recommendation thresholds.
const (
	staleAfterDays   = 30
	erraticLatencySD = 24.0
)

// Recommendations derives the deterministic hint list from the analysis and
// request shape. Each entry carries a machine-checkable reasoning string and
// an impact tier.
func Recommendations(in Input) []model.Recommendation {
	var recs []model.Recommendation
	a := in.Analysis

	if len(a.PreferredDays) > 0 && a.PreferredDays[0].Count > 0 {
		best := a.PreferredDays[0]
		recs = append(recs, model.Recommendation{
			Type:      "best_day",
			Message:   fmt.Sprintf("Schedule on %s for the best response odds", best.Day),
			Reasoning: fmt.Sprintf("day=%s acceptance_rate=%.2f observations=%d", best.Day, best.AcceptanceRate, best.Count),
			Impact:    model.ImpactHigh,
		})
	}
	if len(a.PreferredHours) > 0 && a.PreferredHours[0].Count > 0 {
		best := a.PreferredHours[0]
		recs = append(recs, model.Recommendation{
			Type:      "best_hour",
			Message:   fmt.Sprintf("Aim for %s", formatHour(best.Hour)),
			Reasoning: fmt.Sprintf("hour=%d acceptance_rate=%.2f observations=%d", best.Hour, best.AcceptanceRate, best.Count),
			Impact:    model.ImpactMedium,
		})
	}
	if a.PreferredDurationMinutes > 0 && in.DurationMinutes > 0 && a.PreferredDurationMinutes != in.DurationMinutes {
		recs = append(recs, model.Recommendation{
			Type:      "duration_mismatch",
			Message:   fmt.Sprintf("Consider %d minutes instead of %d", a.PreferredDurationMinutes, in.DurationMinutes),
			Reasoning: fmt.Sprintf("preferred_duration=%d requested_duration=%d", a.PreferredDurationMinutes, in.DurationMinutes),
			Impact:    model.ImpactMedium,
		})
	}
	if a.PreferredFormat != "" && in.Format != "" && a.PreferredFormat != in.Format {
		recs = append(recs, model.Recommendation{
			Type:      "format_mismatch",
			Message:   fmt.Sprintf("This stakeholder usually accepts %s meetings", a.PreferredFormat),
			Reasoning: fmt.Sprintf("preferred_format=%s requested_format=%s", a.PreferredFormat, in.Format),
			Impact:    model.ImpactLow,
		})
	}
	if a.DaysSinceLastMeeting > staleAfterDays {
		recs = append(recs, model.Recommendation{
			Type:      "stale_relationship",
			Message:   fmt.Sprintf("No meeting in %d days; consider a warmer opener", a.DaysSinceLastMeeting),
			Reasoning: fmt.Sprintf("days_since_last_meeting=%d threshold=%d", a.DaysSinceLastMeeting, staleAfterDays),
			Impact:    model.ImpactHigh,
		})
	}
	if in.Purpose == "" && len(a.SuccessfulSubjects) > 0 {
		recs = append(recs, model.Recommendation{
			Type:      "subject_line",
			Message:   fmt.Sprintf("Subject %q has worked well before", a.SuccessfulSubjects[0]),
			Reasoning: fmt.Sprintf("successful_subjects=%d", len(a.SuccessfulSubjects)),
			Impact:    model.ImpactLow,
		})
	}
	if a.StdDevResponseLatencyHours > erraticLatencySD {
		recs = append(recs, model.Recommendation{
			Type:      "response_variance",
			Message:   "Response times vary widely; allow extra lead time",
			Reasoning: fmt.Sprintf("latency_stddev_hours=%.1f threshold=%.1f", a.StdDevResponseLatencyHours, erraticLatencySD),
			Impact:    model.ImpactLow,
		})
	}
	return recs
}

func formatHour(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3 PM")
}
