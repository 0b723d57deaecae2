// Package preference derives and stores stakeholder scheduling profiles.
// Explicit records always win over inference; inferred records carry the
// auto_learned provenance tag and may only be replaced under the promotion
// guard.
package preference

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cscx-ai/meetopt/core/logger"
	"github.com/cscx-ai/meetopt/core/model"
)

// Inference shape: top-3 days, the hour span of the top-5 hours.
const (
	inferTopDays  = 3
	inferTopHours = 5
)

// Store persists preference records keyed by stakeholder.
type Store interface {
	Get(ctx context.Context, stakeholderID string) (model.StakeholderPreferences, bool, error)
	Put(ctx context.Context, p model.StakeholderPreferences) error
}

// MemoryStore is an in-process Store for tests and persistence-free embedding.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[string]model.StakeholderPreferences
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]model.StakeholderPreferences)}
}

// Get returns the stored record for the stakeholder.
func (s *MemoryStore) Get(_ context.Context, stakeholderID string) (model.StakeholderPreferences, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[stakeholderID]
	return p, ok, nil
}

// Put stores the record.
func (s *MemoryStore) Put(_ context.Context, p model.StakeholderPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.StakeholderID] = p
	return nil
}

// Service resolves preferences for the engine.
type Service struct {
	store Store
	log   logger.Logger
	now   func() time.Time
}

// NewService returns a Service backed by the given store.
func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Get returns the stakeholder's preferences. A stored record wins verbatim;
// otherwise preferences are inferred from the analysis when one carries
// history. Returns nil when neither exists so callers apply type defaults.
func (s *Service) Get(ctx context.Context, stakeholderID string, analysis *model.PatternAnalysis) (*model.StakeholderPreferences, error) {
	if stakeholderID != "" {
		stored, found, err := s.store.Get(ctx, stakeholderID)
		if err != nil {
			return nil, fmt.Errorf("preference store get: %w", err)
		}
		if found {
			return &stored, nil
		}
	}
	if analysis == nil || analysis.ColdStart || analysis.TotalMeetings == 0 {
		return nil, nil
	}
	inferred := Infer(stakeholderID, *analysis, s.now())
	return &inferred, nil
}

// Update upserts the stored record. Manual and stated writes always succeed;
// auto_learned writes pass through the promotion guard and are silently
// rejected when the guard denies them (a policy outcome, not a fault).
func (s *Service) Update(ctx context.Context, p model.StakeholderPreferences, source model.Provenance) error {
	p.Source = source
	p.UpdatedAt = s.now()
	if source != model.SourceAutoLearned {
		return s.store.Put(ctx, p)
	}
	current, found, err := s.store.Get(ctx, p.StakeholderID)
	if err != nil {
		return fmt.Errorf("preference store get: %w", err)
	}
	if found && !CanReplace(current.Source, current.ConfidenceScore, p.ConfidenceScore) {
		s.log.Debugw("auto-learned preference write rejected", map[string]any{
			"stakeholder_id": p.StakeholderID,
			"provenance":     string(current.Source),
			"confidence":     current.ConfidenceScore,
		})
		return nil
	}
	return s.store.Put(ctx, p)
}

// Infer derives an auto_learned preference record from a pattern analysis:
// the top-3 days by acceptance rate, the hour range spanning the top-5 hours,
// and the analysis's preferred duration and format.
func Infer(stakeholderID string, a model.PatternAnalysis, now time.Time) model.StakeholderPreferences {
	days := make([]time.Weekday, 0, inferTopDays)
	for i, d := range a.PreferredDays {
		if i == inferTopDays {
			break
		}
		days = append(days, d.Day)
	}

	start, end := 0, 0
	if len(a.PreferredHours) > 0 {
		top := a.PreferredHours
		if len(top) > inferTopHours {
			top = top[:inferTopHours]
		}
		start, end = top[0].Hour, top[0].Hour
		for _, h := range top[1:] {
			if h.Hour < start {
				start = h.Hour
			}
			if h.Hour > end {
				end = h.Hour
			}
		}
		end++ // half-open window
	}

	return model.StakeholderPreferences{
		StakeholderID:            stakeholderID,
		PreferredDays:            days,
		PreferredTimeStart:       start,
		PreferredTimeEnd:         end,
		PreferredDurationMinutes: a.PreferredDurationMinutes,
		PreferredFormat:          a.PreferredFormat,
		ConfidenceScore:          model.ConfidenceFor(a.TotalMeetings),
		Source:                   model.SourceAutoLearned,
		UpdatedAt:                now,
	}
}
