// Package app assembles the engine and its adapters from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/cscx-ai/meetopt/config"
	"github.com/cscx-ai/meetopt/core/engine"
	"github.com/cscx-ai/meetopt/core/events"
	"github.com/cscx-ai/meetopt/core/history"
	"github.com/cscx-ai/meetopt/core/learning"
	coremetrics "github.com/cscx-ai/meetopt/core/metrics"
	"github.com/cscx-ai/meetopt/core/pattern"
	"github.com/cscx-ai/meetopt/core/preference"
	"github.com/cscx-ai/meetopt/infra/logger"
	"github.com/cscx-ai/meetopt/infra/metrics"
	"github.com/cscx-ai/meetopt/infra/mqtt"
	"github.com/cscx-ai/meetopt/infra/store"
	"github.com/cscx-ai/meetopt/internal/eventbus"
)

// Service owns the engine and the optional transports around it.
type Service struct {
	Engine   *engine.Engine
	Bus      *eventbus.Bus[events.Event]
	db       *store.DB
	source   *mqtt.Source
	mqttCfg  mqtt.Config
	promPort string
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var (
		db        *store.DB
		patterns  pattern.Store
		prefStore preference.Store
		requests  learning.RequestStore
		analyzer  *pattern.Analyzer
	)
	switch cfg.Store.Backend {
	case "sqlite":
		opened, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		db = opened
		patterns = db.Patterns()
		prefStore = db.Preferences()
		requests = db.Requests()
		analyzer = pattern.NewAnalyzer(patterns, db.History(), logger.New("pattern-analyzer"))
	default:
		patterns = pattern.NewMemoryStore()
		prefStore = preference.NewMemoryStore()
		requests = learning.NewMemoryRequestStore()
		analyzer = pattern.NewAnalyzer(patterns, history.NewMemorySource(), logger.New("pattern-analyzer"))
	}
	if ttl := cfg.Engine.CacheTTL(); ttl > 0 {
		analyzer.SetTTL(ttl)
	}

	prefs := preference.NewService(prefStore, logger.New("preference-service"))
	learner := learning.NewLearner(patterns, prefs, requests, logger.New("outcome-learner"))

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New[events.Event]()
	// No free/busy integration is configured here; the engine treats a nil
	// provider as "availability unknown" and never confirms slots.
	eng, err := engine.New(engine.Options{
		Analyzer:         analyzer,
		Preferences:      prefs,
		Requests:         requests,
		Learner:          learner,
		DefaultTimezone:  cfg.Engine.DefaultTimezone,
		DefaultSlotCount: cfg.Engine.SlotCount,
		Bus:              bus,
		Sink:             sink,
		Logger:           logger.New("engine"),
	})
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &Service{
		Engine:   eng,
		Bus:      bus,
		db:       db,
		mqttCfg:  cfg.MQTT,
		promPort: cfg.Metrics.PrometheusPort,
		log:      logg,
	}, nil
}

// Run starts the optional transports and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.mqttCfg.Enabled {
		src, err := mqtt.NewSource(s.mqttCfg, s.Engine)
		if err != nil {
			return fmt.Errorf("mqtt source: %w", err)
		}
		s.source = src
		go func() {
			if err := src.Start(ctx); err != nil {
				s.log.Errorf("mqtt source: %v", err)
			}
		}()
	}
	s.log.Infof("service started")
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.source != nil {
		s.source.Close()
	}
	if s.Bus != nil {
		s.Bus.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
