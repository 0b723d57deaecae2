// Package engine orchestrates one optimization run end to end: pattern
// analysis, preference resolution, slot generation, composition, persistence
// and outcome learning. It is a library-level boundary; transports wrap it
// from the outside.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cscx-ai/meetopt/core/calendar"
	"github.com/cscx-ai/meetopt/core/compose"
	"github.com/cscx-ai/meetopt/core/events"
	"github.com/cscx-ai/meetopt/core/learning"
	"github.com/cscx-ai/meetopt/core/logger"
	"github.com/cscx-ai/meetopt/core/metrics"
	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/core/pattern"
	"github.com/cscx-ai/meetopt/core/preference"
	"github.com/cscx-ai/meetopt/core/slotgen"
	"github.com/cscx-ai/meetopt/internal/eventbus"
)

// StakeholderInfo is live display metadata resolved at read time; it is never
// cached with the analysis.
type StakeholderInfo struct {
	ID       string
	Name     string
	Timezone string
}

// Directory resolves stakeholder display metadata. Implemented outside the
// core; optional.
type Directory interface {
	Stakeholder(ctx context.Context, id string) (StakeholderInfo, bool, error)
}

// PatternSummary is an analysis with live metadata attached.
type PatternSummary struct {
	model.PatternAnalysis
	StakeholderName string
	Timezone        string
}

// Options wires an Engine. Analyzer, Preferences, Requests and Logger are
// required; the rest degrade to absent collaborators.
type Options struct {
	Analyzer    *pattern.Analyzer
	Preferences *preference.Service
	Requests    learning.RequestStore
	Learner     *learning.Learner
	Calendar    calendar.Provider
	Directory   Directory
	// DefaultTimezone applies when neither the request nor the stakeholder
	// preferences carry one; empty means UTC.
	DefaultTimezone string
	// DefaultSlotCount applies when the request does not ask for a specific
	// number of proposed times; zero keeps the generator's built-in count.
	DefaultSlotCount int
	Bus              *eventbus.Bus[events.Event]
	Sink             metrics.Sink
	Logger           logger.Logger
}

// Engine is the meeting scheduling optimization engine.
type Engine struct {
	analyzer     *pattern.Analyzer
	prefs        *preference.Service
	requests     learning.RequestStore
	learner      *learning.Learner
	calendar     calendar.Provider
	directory    Directory
	defaultTZ    string
	defaultSlots int
	slots        slotgen.Generator
	composer     compose.Composer
	bus          *eventbus.Bus[events.Event]
	sink         metrics.Sink
	log          logger.Logger
	now          func() time.Time
}

// New validates the options and returns an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Analyzer == nil || opts.Preferences == nil || opts.Requests == nil || opts.Logger == nil {
		return nil, errors.New("engine: analyzer, preferences, requests and logger are required")
	}
	learner := opts.Learner
	sink := opts.Sink
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{
		analyzer:     opts.Analyzer,
		prefs:        opts.Preferences,
		requests:     opts.Requests,
		learner:      learner,
		calendar:     opts.Calendar,
		directory:    opts.Directory,
		defaultTZ:    opts.DefaultTimezone,
		defaultSlots: opts.DefaultSlotCount,
		slots:        slotgen.New(),
		composer:     compose.New(),
		bus:          opts.Bus,
		sink:         sink,
		log:          opts.Logger,
		now:          time.Now,
	}, nil
}

// SetClock overrides the time source for the engine and its slot generator
// and composer, for tests.
func (e *Engine) SetClock(now func() time.Time, newID func() string) {
	e.now = now
	e.slots = slotgen.NewWithClock(now)
	e.composer = compose.NewWithClock(now, newID)
}

// GenerateInput describes one optimization request.
type GenerateInput struct {
	CustomerID      string
	CustomerName    string
	StakeholderID   string
	StakeholderName string
	Timezone        string
	MeetingType     string
	Purpose         string
	DurationMinutes int
	Format          model.MeetingFormat
	SlotCount       int
	// CalendarUserID is the account checked for free/busy; empty skips the
	// calendar lookup entirely.
	CalendarUserID string
}

type freeBusyResult struct {
	free    []model.Interval
	checked bool
}

// GenerateOptimizedRequest runs the full pipeline and persists the draft
// request. Collaborator failures degrade individual fields; only persistence
// failures and invalid input surface as errors.
func (e *Engine) GenerateOptimizedRequest(ctx context.Context, in GenerateInput) (model.MeetingRequest, error) {
	if in.CustomerID == "" {
		return model.MeetingRequest{}, errors.New("customer id required")
	}

	analysis, cacheHit := e.analyzer.Analyze(ctx, in.CustomerID, in.StakeholderID)
	if !cacheHit {
		e.publish(events.PatternRecomputed{
			CustomerID:    analysis.CustomerID,
			StakeholderID: analysis.StakeholderID,
			TotalMeetings: analysis.TotalMeetings,
			Confidence:    analysis.Confidence,
			ColdStart:     analysis.ColdStart,
			Time:          e.now(),
		})
	}

	prefs, err := e.prefs.Get(ctx, in.StakeholderID, &analysis)
	if err != nil {
		e.log.Warnf("preferences %s: %v", in.StakeholderID, err)
		prefs = nil
	}

	tz := firstNonEmpty(in.Timezone, prefTimezone(prefs), e.defaultTZ, "UTC")
	duration := in.DurationMinutes
	if duration <= 0 && prefs != nil {
		duration = prefs.PreferredDurationMinutes
	}
	if duration <= 0 {
		duration = analysis.PreferredDurationMinutes
	}
	if duration <= 0 {
		duration = pattern.DefaultDurationMinutes
	}
	format := in.Format
	if format == "" && prefs != nil {
		format = prefs.PreferredFormat
	}
	if format == "" {
		format = analysis.PreferredFormat
	}
	if format == "" {
		format = model.FormatVideo
	}
	count := in.SlotCount
	if count <= 0 {
		count = e.defaultSlots
	}

	// The free/busy window is filtered by meeting length, so the lookup waits
	// for the resolved duration rather than the raw input.
	fb := e.fetchFreeBusy(ctx, in.CalendarUserID, duration)

	slots := e.slots.Propose(slotgen.Request{
		Analysis:        analysis,
		Preferences:     prefs,
		Timezone:        tz,
		DurationMinutes: duration,
		Free:            fb.free,
		CalendarChecked: fb.checked,
		Count:           count,
	})

	req := e.composer.Compose(compose.Input{
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		StakeholderID:   in.StakeholderID,
		StakeholderName: in.StakeholderName,
		MeetingType:     in.MeetingType,
		Purpose:         in.Purpose,
		Analysis:        analysis,
		Preferences:     prefs,
		Slots:           slots,
		DurationMinutes: duration,
		Format:          format,
		CalendarChecked: fb.checked,
	})

	if err := e.requests.Put(ctx, req); err != nil {
		return model.MeetingRequest{}, fmt.Errorf("persist request: %w", err)
	}

	e.publish(events.RequestComposed{
		RequestID:     req.ID,
		CustomerID:    req.CustomerID,
		StakeholderID: req.StakeholderID,
		Score:         req.OptimizationScore,
		SlotCount:     len(slots),
		CacheHit:      cacheHit,
		ColdStart:     analysis.ColdStart,
		Time:          e.now(),
	})
	e.recordOptimization(req, slots, cacheHit, analysis.ColdStart)

	return req, nil
}

// GetMeetingPatterns returns the pattern summary for the key with live
// stakeholder metadata attached.
func (e *Engine) GetMeetingPatterns(ctx context.Context, customerID, stakeholderID string) (PatternSummary, error) {
	if customerID == "" {
		return PatternSummary{}, errors.New("customer id required")
	}
	analysis, _ := e.analyzer.Analyze(ctx, customerID, stakeholderID)
	summary := PatternSummary{PatternAnalysis: analysis}
	if e.directory != nil && stakeholderID != "" {
		info, found, err := e.directory.Stakeholder(ctx, stakeholderID)
		if err != nil {
			e.log.Warnf("directory %s: %v", stakeholderID, err)
		} else if found {
			summary.StakeholderName = info.Name
			summary.Timezone = info.Timezone
		}
	}
	return summary, nil
}

// RecordOutcome reports an accept/decline/reschedule outcome for a request.
func (e *Engine) RecordOutcome(ctx context.Context, requestID string, outcome model.OutcomeStatus, latencyHours *float64, acceptedSlot *model.ProposedTime) error {
	if e.learner == nil {
		return errors.New("engine: no learner configured")
	}
	res, err := e.learner.RecordOutcome(ctx, requestID, outcome, latencyHours, acceptedSlot)
	if err != nil {
		return err
	}

	e.publish(events.OutcomeRecorded{
		RequestID:     requestID,
		CustomerID:    res.Request.CustomerID,
		StakeholderID: res.Request.StakeholderID,
		Outcome:       outcome,
		Day:           res.Day,
		Hour:          res.Hour,
		TotalMeetings: res.Analysis.TotalMeetings,
		Time:          e.now(),
	})
	if res.PreferencesPromoted {
		e.publish(events.PreferencesPromoted{
			StakeholderID: res.Request.StakeholderID,
			Confidence:    res.Analysis.Confidence,
			Time:          e.now(),
		})
	}
	if err := e.sink.RecordOutcome(metrics.OutcomeEvent{
		RequestID:         requestID,
		CustomerID:        res.Request.CustomerID,
		StakeholderID:     res.Request.StakeholderID,
		Outcome:           outcome,
		Day:               res.Day,
		Hour:              res.Hour,
		NewAcceptanceRate: res.Analysis.AcceptanceRate,
		TotalMeetings:     res.Analysis.TotalMeetings,
		Promoted:          res.PreferencesPromoted,
		Time:              e.now(),
	}); err != nil {
		e.log.Warnf("metrics outcome: %v", err)
	}
	return nil
}

func (e *Engine) fetchFreeBusy(ctx context.Context, userID string, durationMinutes int) freeBusyResult {
	if e.calendar == nil || userID == "" {
		return freeBusyResult{}
	}
	now := e.now()
	window := calendar.Window{Start: now, End: now.AddDate(0, 0, slotgen.HorizonDays+1)}
	free, err := e.calendar.FreeBusy(ctx, userID, window, durationMinutes)
	if err != nil {
		// Unknown, not unavailable: slots stay unconfirmed.
		e.log.Warnf("free/busy %s: %v", userID, err)
		return freeBusyResult{}
	}
	return freeBusyResult{free: free, checked: true}
}

func (e *Engine) recordOptimization(req model.MeetingRequest, slots []model.ProposedTime, cacheHit, coldStart bool) {
	optimal, confirmed := 0, 0
	for _, s := range slots {
		if s.IsOptimal {
			optimal++
		}
		if s.AvailabilityConfirmed {
			confirmed++
		}
	}
	if err := e.sink.RecordOptimization(metrics.OptimizationEvent{
		RequestID:      req.ID,
		CustomerID:     req.CustomerID,
		StakeholderID:  req.StakeholderID,
		Score:          req.OptimizationScore,
		SlotCount:      len(slots),
		OptimalSlots:   optimal,
		ConfirmedSlots: confirmed,
		CacheHit:       cacheHit,
		ColdStart:      coldStart,
		Time:           e.now(),
	}); err != nil {
		e.log.Warnf("metrics optimization: %v", err)
	}
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func prefTimezone(p *model.StakeholderPreferences) string {
	if p == nil {
		return ""
	}
	return p.Timezone
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
