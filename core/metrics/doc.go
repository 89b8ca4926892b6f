// Package metrics defines the sink interfaces used to record solver
// outcomes. Concrete sinks live under infra/metrics and register
// themselves with the factory here; the engine only sees MetricsSink.
package metrics
