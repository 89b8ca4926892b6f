package metrics

import (
	"fmt"

	"github.com/solvekit/uras/core/factory"
	coremetrics "github.com/solvekit/uras/core/metrics"
	"github.com/solvekit/uras/infra/kpi"
)

type sqliteConf struct {
	Path string `json:"path"`
}

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("sqlite", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c sqliteConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("sqlite sink requires a path")
		}
		return kpi.NewSQLiteStore(c.Path)
	})
}
