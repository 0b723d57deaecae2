// Package pattern derives meeting-acceptance statistics from raw history and
// caches them in a keyed store with a freshness TTL.
package pattern

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/cscx-ai/meetopt/core/history"
	"github.com/cscx-ai/meetopt/core/logger"
	"github.com/cscx-ai/meetopt/core/model"
)

// CacheTTL is the freshness window of a stored analysis.
const CacheTTL = 24 * time.Hour

// Subject lines qualify as "successful" at two or more occurrences with at
// least 70% acceptance, capped at five.
const (
	subjectMinCount   = 2
	subjectMinRate    = 0.7
	subjectMaxResults = 5
)

// Analyzer computes and caches PatternAnalysis rows.
type Analyzer struct {
	store  Store
	source history.Source
	log    logger.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewAnalyzer returns an Analyzer with the standard 24h TTL.
func NewAnalyzer(store Store, source history.Source, log logger.Logger) *Analyzer {
	return &Analyzer{store: store, source: source, log: log, ttl: CacheTTL, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (a *Analyzer) SetClock(now func() time.Time) { a.now = now }

// SetTTL overrides the cache freshness window.
func (a *Analyzer) SetTTL(ttl time.Duration) { a.ttl = ttl }

// Analyze returns the pattern analysis for the key, serving a fresh cached row
// when one exists and recomputing from history otherwise. The second return
// reports whether the cache was hit. Collaborator failures degrade to the
// cold-start default; no error is surfaced.
func (a *Analyzer) Analyze(ctx context.Context, customerID, stakeholderID string) (model.PatternAnalysis, bool) {
	key := Key{CustomerID: customerID, StakeholderID: stakeholderID}
	now := a.now()

	cached, found, err := a.store.Get(ctx, key)
	if err != nil {
		a.log.Warnf("pattern store get %s/%s: %v", customerID, stakeholderID, err)
	} else if found && now.Sub(cached.CalculatedAt) < a.ttl {
		return cached, true
	}

	entries, err := a.source.FetchMeetingHistory(ctx, customerID, stakeholderID)
	if err != nil {
		// Availability over strictness: degrade to the default profile and
		// leave the cache untouched so the next call retries the fetch.
		a.log.Warnf("history fetch %s/%s: %v", customerID, stakeholderID, err)
		return DefaultAnalysis(customerID, stakeholderID, now), false
	}

	analysis := Compute(entries, customerID, stakeholderID, now)
	if err := a.store.Put(ctx, key, analysis); err != nil {
		a.log.Warnf("pattern store put %s/%s: %v", customerID, stakeholderID, err)
	}
	return analysis, false
}

type bucket struct {
	accepted int
	total    int
}

// Compute derives a PatternAnalysis from history entries. Entries are expected
// newest first; Compute itself is pure and unit-testable without storage.
func Compute(entries []model.MeetingHistoryEntry, customerID, stakeholderID string, now time.Time) model.PatternAnalysis {
	if len(entries) > history.FetchLimit {
		entries = entries[:history.FetchLimit]
	}
	if len(entries) == 0 {
		return DefaultAnalysis(customerID, stakeholderID, now)
	}

	dayBuckets := make(map[time.Weekday]*bucket)
	hourBuckets := make(map[int]*bucket)

	var accepted int
	var latencies []float64
	durCount := make(map[int]int)
	durNewest := make(map[int]int)
	fmtCount := make(map[model.MeetingFormat]int)
	subjCount := make(map[string]*bucket)
	lastMeeting := entries[0].ScheduledAt

	for i, e := range entries {
		day, hour := e.DayOfWeek(), e.HourOfDay()
		if dayBuckets[day] == nil {
			dayBuckets[day] = &bucket{}
		}
		if hourBuckets[hour] == nil {
			hourBuckets[hour] = &bucket{}
		}
		dayBuckets[day].total++
		hourBuckets[hour].total++
		if e.ScheduledAt.After(lastMeeting) {
			lastMeeting = e.ScheduledAt
		}
		if e.ResponseLatencyHours != nil {
			latencies = append(latencies, *e.ResponseLatencyHours)
		}
		if e.Subject != "" {
			if subjCount[e.Subject] == nil {
				subjCount[e.Subject] = &bucket{}
			}
			subjCount[e.Subject].total++
		}
		if !e.Outcome.Accepted() {
			continue
		}
		accepted++
		dayBuckets[day].accepted++
		hourBuckets[hour].accepted++
		durCount[e.DurationMinutes]++
		if _, ok := durNewest[e.DurationMinutes]; !ok {
			durNewest[e.DurationMinutes] = i
		}
		fmtCount[e.Format]++
		if e.Subject != "" {
			subjCount[e.Subject].accepted++
		}
	}

	days := make([]model.DayPreference, 0, len(dayBuckets))
	for d, b := range dayBuckets {
		days = append(days, model.DayPreference{
			Day:            d,
			AcceptanceRate: float64(b.accepted) / float64(b.total),
			Count:          b.total,
		})
	}
	sort.SliceStable(days, func(i, j int) bool {
		if days[i].AcceptanceRate != days[j].AcceptanceRate {
			return days[i].AcceptanceRate > days[j].AcceptanceRate
		}
		if days[i].Count != days[j].Count {
			return days[i].Count > days[j].Count
		}
		return days[i].Day < days[j].Day
	})

	hours := make([]model.HourPreference, 0, len(hourBuckets))
	for h, b := range hourBuckets {
		hours = append(hours, model.HourPreference{
			Hour:           h,
			AcceptanceRate: float64(b.accepted) / float64(b.total),
			Count:          b.total,
		})
	}
	sort.SliceStable(hours, func(i, j int) bool {
		if hours[i].AcceptanceRate != hours[j].AcceptanceRate {
			return hours[i].AcceptanceRate > hours[j].AcceptanceRate
		}
		if hours[i].Count != hours[j].Count {
			return hours[i].Count > hours[j].Count
		}
		return hours[i].Hour < hours[j].Hour
	})

	analysis := model.PatternAnalysis{
		CustomerID:               customerID,
		StakeholderID:            stakeholderID,
		TotalMeetings:            len(entries),
		AcceptedMeetings:         accepted,
		AcceptanceRate:           float64(accepted) / float64(len(entries)),
		PreferredDays:            days,
		PreferredHours:           hours,
		PreferredDurationMinutes: preferredDuration(durCount, durNewest),
		PreferredFormat:          preferredFormat(fmtCount),
		SuccessfulSubjects:       successfulSubjects(subjCount, entries),
		LastMeetingAt:            lastMeeting,
		DaysSinceLastMeeting:     int(now.Sub(lastMeeting).Hours() / 24),
		Confidence:               model.ConfidenceFor(len(entries)),
		CalculatedAt:             now,
	}
	if len(latencies) > 0 {
		analysis.AvgResponseLatencyHours = stat.Mean(latencies, nil)
	}
	if len(latencies) > 1 {
		analysis.StdDevResponseLatencyHours = stat.StdDev(latencies, nil)
	}
	return analysis
}

// preferredDuration is the mode of accepted durations; ties go to the
// duration seen most recently.
func preferredDuration(count, newest map[int]int) int {
	best, bestCount, bestNewest := DefaultDurationMinutes, 0, int(^uint(0)>>1)
	for d, c := range count {
		n := newest[d]
		if c > bestCount || (c == bestCount && n < bestNewest) {
			best, bestCount, bestNewest = d, c, n
		}
	}
	return best
}

func preferredFormat(count map[model.MeetingFormat]int) model.MeetingFormat {
	best, bestCount := model.FormatVideo, 0
	// Deterministic tie-break order.
	for _, f := range []model.MeetingFormat{model.FormatVideo, model.FormatPhone, model.FormatInPerson} {
		if c := count[f]; c > bestCount {
			best, bestCount = f, c
		}
	}
	return best
}

func successfulSubjects(subjCount map[string]*bucket, entries []model.MeetingHistoryEntry) []string {
	type scored struct {
		subject string
		rate    float64
		first   int
	}
	firstSeen := make(map[string]int)
	for i, e := range entries {
		if e.Subject == "" {
			continue
		}
		if _, ok := firstSeen[e.Subject]; !ok {
			firstSeen[e.Subject] = i
		}
	}
	var out []scored
	for s, b := range subjCount {
		if b.total < subjectMinCount {
			continue
		}
		rate := float64(b.accepted) / float64(b.total)
		if rate < subjectMinRate {
			continue
		}
		out = append(out, scored{subject: s, rate: rate, first: firstSeen[s]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rate != out[j].rate {
			return out[i].rate > out[j].rate
		}
		return out[i].first < out[j].first
	})
	if len(out) > subjectMaxResults {
		out = out[:subjectMaxResults]
	}
	subjects := make([]string, 0, len(out))
	for _, s := range out {
		subjects = append(subjects, s.subject)
	}
	return subjects
}
