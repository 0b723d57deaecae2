// Package slotgen enumerates and ranks candidate meeting slots from a pattern
// analysis, optional stakeholder preferences and optional free/busy data.
package slotgen

import (
	"sort"
	"time"

	"github.com/cscx-ai/meetopt/core/calendar"
	"github.com/cscx-ai/meetopt/core/model"
)

// Planning parameters. The horizon is fixed; widening it when nothing
// qualifies is an explicit non-goal of this version.
const (
	HorizonDays      = 14
	TopHoursPerDay   = 4
	WeekendRateGate  = 0.5
	OptimalThreshold = 0.7
	DefaultSlotCount = 3
)

// Request carries everything one slot-generation run needs.
type Request struct {
	Analysis    model.PatternAnalysis
	Preferences *model.StakeholderPreferences
	Timezone    string
	// DurationMinutes of the proposed meeting.
	DurationMinutes int
	// Free lists known-free intervals. Only meaningful when CalendarChecked
	// is true; an unchecked calendar means availability is unknown.
	Free            []model.Interval
	CalendarChecked bool
	// Count is the number of candidates to collect; DefaultSlotCount if zero.
	Count int
}

// Generator proposes candidate slots. The zero value is not usable; call New.
type Generator struct {
	now func() time.Time
}

// New returns a Generator using the wall clock.
func New() Generator { return Generator{now: time.Now} }

// NewWithClock returns a Generator with a fixed time source, for tests.
func NewWithClock(now func() time.Time) Generator { return Generator{now: now} }

// Propose scans day offsets 1..HorizonDays from now, filters candidate hours
// through avoid-days, the weekend gate, the preferred time window and avoid
// windows, then orders the survivors: optimal first, then calendar-confirmed,
// then soonest. If nothing qualifies within the horizon the collected (possibly
// empty) set is returned as-is.
func (g Generator) Propose(req Request) []model.ProposedTime {
	count := req.Count
	if count <= 0 {
		count = DefaultSlotCount
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute

	loc, err := time.LoadLocation(req.Timezone)
	if err != nil || req.Timezone == "" {
		loc = time.UTC
	}
	now := g.now().In(loc)

	hours := req.Analysis.PreferredHours
	if len(hours) > TopHoursPerDay {
		hours = hours[:TopHoursPerDay]
	}

	var out []model.ProposedTime
	for offset := 1; offset <= HorizonDays && len(out) < count; offset++ {
		date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, offset)
		day := date.Weekday()

		if req.Preferences != nil && req.Preferences.IsAvoidDay(day) {
			continue
		}
		dayRate, dayObserved := req.Analysis.DayRate(day)
		if (day == time.Saturday || day == time.Sunday) && (!dayObserved || dayRate < WeekendRateGate) {
			continue
		}

		for _, h := range hours {
			if len(out) >= count {
				break
			}
			if req.Preferences != nil {
				if !req.Preferences.AllowsHour(h.Hour) {
					continue
				}
				if req.Preferences.InAvoidWindow(day, h.Hour) {
					continue
				}
			}
			start := date.Add(time.Duration(h.Hour) * time.Hour)
			confirmed := req.CalendarChecked && calendar.SlotFree(req.Free, start, duration)
			hourRate, _ := req.Analysis.HourRate(h.Hour)
			optimal := dayRate >= OptimalThreshold && hourRate >= OptimalThreshold &&
				(req.Preferences == nil || len(req.Preferences.PreferredDays) == 0 || req.Preferences.PrefersDay(day))

			out = append(out, model.ProposedTime{
				Start:                 start,
				Day:                   day,
				HourOfDay:             h.Hour,
				DisplayDate:           start.Format("Monday, January 2"),
				DisplayTime:           start.Format("3:04 PM MST"),
				DurationMinutes:       req.DurationMinutes,
				IsOptimal:             optimal,
				AvailabilityConfirmed: confirmed,
			})
		}
	}

	// Historically optimal, calendar-confirmed slots go first even when they
	// are further out; identical flags keep the sooner date first.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsOptimal != out[j].IsOptimal {
			return out[i].IsOptimal
		}
		if out[i].AvailabilityConfirmed != out[j].AvailabilityConfirmed {
			return out[i].AvailabilityConfirmed
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
