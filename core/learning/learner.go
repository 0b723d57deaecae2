package learning

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cscx-ai/meetopt/core/logger"
	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/core/pattern"
	"github.com/cscx-ai/meetopt/core/preference"
)

// Promotion gate: inferred preferences are written back only once enough
// history exists and the inference is confident.
const (
	PromoteMinMeetings   = 5
	PromoteMinConfidence = 0.7
)

// RequestStore persists meeting requests. Implemented by infra/store and by
// test fakes.
type RequestStore interface {
	Get(ctx context.Context, id string) (model.MeetingRequest, bool, error)
	Put(ctx context.Context, r model.MeetingRequest) error
}

// Result reports what one recorded outcome changed.
type Result struct {
	Request             model.MeetingRequest
	Analysis            model.PatternAnalysis
	Day                 time.Weekday
	Hour                int
	Observed            float64
	PatternUpdated      bool
	PreferencesPromoted bool
}

// Learner applies reported outcomes to the request, the pattern store and,
// under the promotion gate, the preference store. This is the only write path
// into the pattern store; the analyzer's cache-miss recompute is a read-time
// reconciliation.
type Learner struct {
	patterns pattern.Store
	prefs    *preference.Service
	requests RequestStore
	log      logger.Logger
	alpha    float64
	now      func() time.Time
}

// NewLearner returns a Learner with the default EMA factor.
func NewLearner(patterns pattern.Store, prefs *preference.Service, requests RequestStore, log logger.Logger) *Learner {
	return &Learner{
		patterns: patterns,
		prefs:    prefs,
		requests: requests,
		log:      log,
		alpha:    DefaultAlpha,
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (l *Learner) SetClock(now func() time.Time) { l.now = now }

// RecordOutcome updates the request's lifecycle state and folds the outcome
// into the pattern store via the EMA rule. An unknown request ID is an error;
// everything downstream of the request update degrades instead of failing.
func (l *Learner) RecordOutcome(ctx context.Context, requestID string, outcome model.OutcomeStatus, latencyHours *float64, acceptedSlot *model.ProposedTime) (Result, error) {
	if !outcome.Valid() {
		return Result{}, fmt.Errorf("invalid outcome %q", outcome)
	}
	req, found, err := l.requests.Get(ctx, requestID)
	if err != nil {
		return Result{}, fmt.Errorf("request store get: %w", err)
	}
	if !found {
		return Result{}, fmt.Errorf("meeting request %s not found", requestID)
	}

	now := l.now()
	req.Status = model.StatusForOutcome(outcome)
	req.RespondedAt = &now
	req.ResponseLatencyHours = latencyHours
	if outcome.Accepted() && acceptedSlot != nil {
		slot := *acceptedSlot
		req.AcceptedSlot = &slot
	}
	if err := l.requests.Put(ctx, req); err != nil {
		return Result{}, fmt.Errorf("request store put: %w", err)
	}

	res := Result{Request: req}

	// Observation point: the accepted slot when one was reported, otherwise
	// the first proposed slot. Declines are attributed to the lead option.
	day, hour, ok := observationPoint(req, outcome, acceptedSlot)
	if !ok {
		l.log.Debugf("request %s has no proposed times, skipping pattern update", requestID)
		return res, nil
	}
	observed := 0.0
	if outcome.Accepted() {
		observed = 1.0
	}
	res.Day, res.Hour, res.Observed = day, hour, observed

	key := pattern.Key{CustomerID: req.CustomerID, StakeholderID: req.StakeholderID}
	updated, err := l.patterns.UpsertMerge(ctx, key, func(old model.PatternAnalysis, rowFound bool) model.PatternAnalysis {
		return applyOutcome(old, rowFound, key, day, hour, observed, outcome.Accepted(), l.alpha, now)
	})
	if err != nil {
		// Degrade: the outcome is recorded on the request even when the
		// pattern write fails.
		l.log.Warnf("pattern upsert %s/%s: %v", key.CustomerID, key.StakeholderID, err)
		return res, nil
	}
	res.Analysis = updated
	res.PatternUpdated = true

	res.PreferencesPromoted = l.maybePromote(ctx, req.StakeholderID, updated, now)
	return res, nil
}

// maybePromote writes inferred preferences through the provenance guard once
// the confidence gate is passed.
func (l *Learner) maybePromote(ctx context.Context, stakeholderID string, a model.PatternAnalysis, now time.Time) bool {
	if stakeholderID == "" || a.TotalMeetings < PromoteMinMeetings {
		return false
	}
	inferred := preference.Infer(stakeholderID, a, now)
	if inferred.ConfidenceScore < PromoteMinConfidence {
		return false
	}
	if err := l.prefs.Update(ctx, inferred, model.SourceAutoLearned); err != nil {
		l.log.Warnf("preference promotion %s: %v", stakeholderID, err)
		return false
	}
	return true
}

func observationPoint(req model.MeetingRequest, outcome model.OutcomeStatus, acceptedSlot *model.ProposedTime) (time.Weekday, int, bool) {
	if outcome.Accepted() && acceptedSlot != nil {
		return acceptedSlot.Day, acceptedSlot.HourOfDay, true
	}
	if len(req.ProposedTimes) > 0 {
		first := req.ProposedTimes[0]
		return first.Day, first.HourOfDay, true
	}
	return 0, 0, false
}

// applyOutcome is the merge step run atomically inside the store: EMA-update
// the observed day and hour buckets, bump the counters and re-rank.
func applyOutcome(old model.PatternAnalysis, found bool, key pattern.Key, day time.Weekday, hour int, observed float64, accepted bool, alpha float64, now time.Time) model.PatternAnalysis {
	a := old
	if !found {
		a = model.PatternAnalysis{CustomerID: key.CustomerID, StakeholderID: key.StakeholderID}
	}
	// Clone bucket slices so earlier Get callers never observe the merge.
	a.PreferredDays = append([]model.DayPreference(nil), a.PreferredDays...)
	a.PreferredHours = append([]model.HourPreference(nil), a.PreferredHours...)

	updatedDay := false
	for i, p := range a.PreferredDays {
		if p.Day == day {
			a.PreferredDays[i].AcceptanceRate = EMA(p.AcceptanceRate, observed, alpha)
			a.PreferredDays[i].Count++
			updatedDay = true
			break
		}
	}
	if !updatedDay {
		a.PreferredDays = append(a.PreferredDays, model.DayPreference{
			Day:            day,
			AcceptanceRate: EMA(PriorRate, observed, alpha),
			Count:          1,
		})
	}
	sort.SliceStable(a.PreferredDays, func(i, j int) bool {
		return a.PreferredDays[i].AcceptanceRate > a.PreferredDays[j].AcceptanceRate
	})

	updatedHour := false
	for i, p := range a.PreferredHours {
		if p.Hour == hour {
			a.PreferredHours[i].AcceptanceRate = EMA(p.AcceptanceRate, observed, alpha)
			a.PreferredHours[i].Count++
			updatedHour = true
			break
		}
	}
	if !updatedHour {
		a.PreferredHours = append(a.PreferredHours, model.HourPreference{
			Hour:           hour,
			AcceptanceRate: EMA(PriorRate, observed, alpha),
			Count:          1,
		})
	}
	sort.SliceStable(a.PreferredHours, func(i, j int) bool {
		return a.PreferredHours[i].AcceptanceRate > a.PreferredHours[j].AcceptanceRate
	})

	a.TotalMeetings++
	if accepted {
		a.AcceptedMeetings++
		a.LastMeetingAt = now
		a.DaysSinceLastMeeting = 0
	}
	a.AcceptanceRate = float64(a.AcceptedMeetings) / float64(a.TotalMeetings)
	a.Confidence = model.ConfidenceFor(a.TotalMeetings)
	if a.PreferredDurationMinutes == 0 {
		a.PreferredDurationMinutes = pattern.DefaultDurationMinutes
	}
	if a.PreferredFormat == "" {
		a.PreferredFormat = model.FormatVideo
	}
	a.ColdStart = false
	// Last write wins; the TTL bounds staleness against a concurrent
	// cache-miss recompute.
	a.CalculatedAt = now
	return a
}
