package metrics

import "errors"

// MultiSink fans events out to several sinks, collecting errors instead of
// stopping at the first failure.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordOptimization forwards the event to every sink.
func (m *MultiSink) RecordOptimization(ev OptimizationEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordOptimization(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordOutcome forwards the event to every sink.
func (m *MultiSink) RecordOutcome(ev OutcomeEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordOutcome(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
