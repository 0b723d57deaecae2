package metrics

import (
	"errors"
	"testing"
)

type countingSink struct {
	optimizations int
	outcomes      int
	err           error
}

func (s *countingSink) RecordOptimization(OptimizationEvent) error {
	s.optimizations++
	return s.err
}

func (s *countingSink) RecordOutcome(OutcomeEvent) error {
	s.outcomes++
	return s.err
}

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := NewMultiSink(a, b)

	if err := m.RecordOptimization(OptimizationEvent{}); err != nil {
		t.Fatalf("record optimization: %v", err)
	}
	if err := m.RecordOutcome(OutcomeEvent{}); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if a.optimizations != 1 || b.optimizations != 1 || a.outcomes != 1 || b.outcomes != 1 {
		t.Fatalf("events not fanned out: %+v %+v", a, b)
	}
}

func TestMultiSinkCollectsErrorsWithoutStopping(t *testing.T) {
	bad := &countingSink{err: errors.New("sink down")}
	good := &countingSink{}
	m := NewMultiSink(bad, good)

	if err := m.RecordOptimization(OptimizationEvent{}); err == nil {
		t.Fatal("expected joined error")
	}
	if good.optimizations != 1 {
		t.Fatal("later sink skipped after earlier failure")
	}
}

func TestNewSinkDefaultsToNop(t *testing.T) {
	s, err := NewSink(nil)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, ok := s.(NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
}

func TestNewSinkUnknownType(t *testing.T) {
	if _, err := NewSink([]SinkConfig{{Type: "bogus"}}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

// Registry registration, config decoding and duplicate detection.
func TestRegisterSink(t *testing.T) {
	sink := &countingSink{}
	err := RegisterSink("counting", func(conf map[string]any) (Sink, error) {
		var c struct {
			Label string `json:"label"`
		}
		if err := DecodeConf(conf, &c); err != nil {
			return nil, err
		}
		if c.Label != "primary" {
			t.Fatalf("conf not decoded: %+v", c)
		}
		return sink, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	s, err := NewSink([]SinkConfig{{Type: "counting", Conf: map[string]any{"label": "primary"}}})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if s != sink {
		t.Fatalf("expected the registered sink, got %T", s)
	}

	if err := RegisterSink("counting", func(map[string]any) (Sink, error) { return NopSink{}, nil }); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := RegisterSink("nil-factory", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
}

func TestNewSinkCombinesSeveral(t *testing.T) {
	if err := RegisterSink("counting-multi", func(map[string]any) (Sink, error) {
		return &countingSink{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	s, err := NewSink([]SinkConfig{{Type: "counting-multi"}, {Type: "counting-multi"}})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if _, ok := s.(*MultiSink); !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
}
