package calendar

import (
	"context"

	"github.com/cscx-ai/meetopt/core/model"
)

// MockProvider returns configured free intervals per user. Used in tests and
// when embedding without a calendar integration.
type MockProvider struct {
	Free map[string][]model.Interval
	Err  error
}

// FreeBusy returns the configured intervals for the user or an empty slice.
func (m MockProvider) FreeBusy(_ context.Context, userID string, _ Window, _ int) ([]model.Interval, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Free == nil {
		return nil, nil
	}
	ivs := m.Free[userID]
	cp := make([]model.Interval, len(ivs))
	copy(cp, ivs)
	return cp, nil
}

// AlwaysFree is a provider that reports the whole queried window as free.
type AlwaysFree struct{}

// FreeBusy returns a single interval spanning the window.
func (AlwaysFree) FreeBusy(_ context.Context, _ string, w Window, _ int) ([]model.Interval, error) {
	return []model.Interval{{Start: w.Start, End: w.End}}, nil
}
