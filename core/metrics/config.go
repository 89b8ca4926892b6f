package metrics

import "github.com/solvekit/uras/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the scrape endpoint when non-empty.
	PrometheusAddr string `json:"prometheus_addr"`
}
