package metrics

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []SinkConfig `json:"sinks"`
	PrometheusPort string       `json:"prometheus_port"`
}
