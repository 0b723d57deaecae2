package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/cscx-ai/meetopt/core/metrics"
	"github.com/cscx-ai/meetopt/core/model"
)

func TestPromSinkRecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	err = sink.RecordOptimization(coremetrics.OptimizationEvent{
		RequestID:      "req-1",
		Score:          82.5,
		SlotCount:      4,
		ConfirmedSlots: 2,
		CacheHit:       true,
	})
	if err != nil {
		t.Fatalf("record optimization: %v", err)
	}
	if err := sink.RecordOutcome(coremetrics.OutcomeEvent{Outcome: model.OutcomeAccepted}); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if err := sink.RecordOutcome(coremetrics.OutcomeEvent{Outcome: model.OutcomeDeclined}); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	prom, ok := sink.(*PromSink)
	if !ok {
		t.Fatalf("unexpected sink type %T", sink)
	}
	if got := testutil.ToFloat64(prom.optimizations.WithLabelValues("true", "false")); got != 1 {
		t.Errorf("optimizations counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(prom.outcomes.WithLabelValues("accepted")); got != 1 {
		t.Errorf("accepted counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(prom.outcomes.WithLabelValues("declined")); got != 1 {
		t.Errorf("declined counter = %v, want 1", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	// Re-registering on the same registry reuses the existing collectors.
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
