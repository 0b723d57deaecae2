package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/cscx-ai/meetopt/core/metrics"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	optimizations *prometheus.CounterVec
	score         prometheus.Histogram
	outcomes      *prometheus.CounterVec
	confirmedPct  prometheus.Histogram
}

// NewPromSink registers engine metrics on the default Prometheus registerer.
// The Prometheus server should be started separately via StartPromServer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	optimizations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meetopt_optimizations_total",
		Help: "Total number of optimization runs",
	}, []string{"cache_hit", "cold_start"})
	score := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "meetopt_optimization_score",
		Help:    "Distribution of optimization scores",
		Buckets: prometheus.LinearBuckets(50, 5, 11),
	})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meetopt_outcomes_total",
		Help: "Total number of recorded meeting outcomes",
	}, []string{"outcome"})
	confirmedPct := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "meetopt_slot_confirmed_ratio",
		Help:    "Fraction of proposed slots with confirmed availability",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	for _, c := range []prometheus.Collector{optimizations, score, outcomes, confirmedPct} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return &PromSink{
		optimizations: optimizations,
		score:         score,
		outcomes:      outcomes,
		confirmedPct:  confirmedPct,
	}, nil
}

// RecordOptimization increments the run counter and observes the score.
func (s *PromSink) RecordOptimization(ev coremetrics.OptimizationEvent) error {
	s.optimizations.WithLabelValues(
		strconv.FormatBool(ev.CacheHit),
		strconv.FormatBool(ev.ColdStart),
	).Inc()
	s.score.Observe(ev.Score)
	if ev.SlotCount > 0 {
		s.confirmedPct.Observe(float64(ev.ConfirmedSlots) / float64(ev.SlotCount))
	}
	return nil
}

// RecordOutcome increments the per-status outcome counter.
func (s *PromSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	s.outcomes.WithLabelValues(string(ev.Outcome)).Inc()
	return nil
}

// StartPromServer exposes /metrics on the given port until the context ends.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
