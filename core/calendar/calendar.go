// Package calendar defines the free/busy lookup contract. The provider is a
// black box returning free intervals for a user within a window; a failed or
// absent lookup means "unknown", never "unavailable".
package calendar

import (
	"context"
	"time"

	"github.com/cscx-ai/meetopt/core/model"
)

// Window is the time range a free/busy query covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// Provider looks up free intervals for a user. The returned slice lists free
// time; an error signals the provider was unreachable and the caller must
// treat availability as unknown.
type Provider interface {
	FreeBusy(ctx context.Context, userID string, window Window, durationMinutes int) ([]model.Interval, error)
}

// SlotFree reports whether [start, start+duration) is fully inside one of the
// free intervals. Conservative: any gap or overlap with busy time fails.
func SlotFree(free []model.Interval, start time.Time, duration time.Duration) bool {
	for _, iv := range free {
		if iv.Covers(start, duration) {
			return true
		}
	}
	return false
}
