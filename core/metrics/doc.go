// Package metrics defines the sink interfaces and event payloads the engine
// records. Concrete sinks (Prometheus, InfluxDB) live in infra/metrics and are
// instantiated through the sink registry from configuration.
package metrics
