package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cscx-ai/meetopt/config"
	"github.com/cscx-ai/meetopt/core/engine"
)

func newMemoryService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	cfg.Store.Backend = "memory"
	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

// A service assembled without a free/busy integration must leave availability
// unknown even when the request names a calendar account.
func TestServiceNeverFabricatesAvailability(t *testing.T) {
	svc := newMemoryService(t, config.Default())

	req, err := svc.Engine.GenerateOptimizedRequest(context.Background(), engine.GenerateInput{
		CustomerID:     "cust-1",
		CustomerName:   "Acme Corp",
		CalendarUserID: "someone@example.com",
	})
	require.NoError(t, err)

	require.NotEmpty(t, req.ProposedTimes)
	for _, s := range req.ProposedTimes {
		assert.False(t, s.AvailabilityConfirmed, "no free/busy check ran for %s", s.DisplayDate)
	}
	assert.Equal(t, 50.0, req.OptimizationScore, "score must not include the confirmed-slot bonus")
}

func TestServiceAppliesEngineConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.DefaultTimezone = "America/New_York"
	cfg.Engine.SlotCount = 2
	svc := newMemoryService(t, cfg)

	req, err := svc.Engine.GenerateOptimizedRequest(context.Background(), engine.GenerateInput{
		CustomerID: "cust-1",
	})
	require.NoError(t, err)

	require.Len(t, req.ProposedTimes, 2)
	for _, s := range req.ProposedTimes {
		assert.Regexp(t, `E[SD]T$`, s.DisplayTime)
	}
}
