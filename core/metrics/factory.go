package metrics

import (
	"fmt"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// SinkConfig selects one sink implementation by type name and carries its raw
// settings.
type SinkConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// SinkFactory builds a Sink from raw settings.
type SinkFactory func(conf map[string]any) (Sink, error)

var (
	registryMu   sync.RWMutex
	sinkRegistry = map[string]SinkFactory{}
)

// RegisterSink adds a sink factory under the given type name. Concrete sinks
// register themselves from infra/metrics.
func RegisterSink(name string, f SinkFactory) error {
	if f == nil {
		return fmt.Errorf("sink factory nil for %s", name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := sinkRegistry[name]; ok {
		return fmt.Errorf("sink factory already registered for %s", name)
	}
	sinkRegistry[name] = f
	return nil
}

// NewSink creates a Sink from the provided configuration. No configured sinks
// yield a NopSink; several are combined into a MultiSink.
func NewSink(cfgs []SinkConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return create(cfgs[0])
	}
	sinks := make([]Sink, len(cfgs))
	for i, c := range cfgs {
		s, err := create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

func create(cfg SinkConfig) (Sink, error) {
	registryMu.RLock()
	f, ok := sinkRegistry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown sink type %s", cfg.Type)
	}
	return f(cfg.Conf)
}

// DecodeConf fills out a sink's typed settings struct from the raw map using
// json tags.
func DecodeConf(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}
