package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/solvekit/uras/core/metrics"
)

// PromSink records solver outcomes in Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	makespan *prometheus.HistogramVec
	progress *prometheus.GaugeVec
}

// NewPromSink registers solver metrics on the default Prometheus
// registerer. The scrape server is started separately with
// metrics.StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solver_requests_total",
		Help: "Total number of scheduling requests",
	}, []string{"algorithm", "status", "feasible"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_duration_seconds",
		Help:    "Wall-clock time per scheduling request",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})
	makespan := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solver_makespan_seconds",
		Help:    "Makespan of returned schedules",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	}, []string{"algorithm"})
	progress := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solver_search_progress",
		Help: "Latest search progress counter (generations or nodes)",
	}, []string{"algorithm", "step"})

	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(makespan); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			makespan = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(progress); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			progress = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{solves: solves, duration: duration, makespan: makespan, progress: progress}, nil
}

// RecordSolve increments the request counter and observes timings.
func (s *PromSink) RecordSolve(res coremetrics.SolveResult) error {
	s.solves.WithLabelValues(res.Algorithm, res.Status, strconv.FormatBool(res.Feasible)).Inc()
	s.duration.WithLabelValues(res.Algorithm).Observe(float64(res.ElapsedMs) / 1000)
	if res.Status == "ok" {
		s.makespan.WithLabelValues(res.Algorithm).Observe(float64(res.MakespanMs) / 1000)
	}
	return nil
}

// RecordProgress sets the progress gauge for the search step.
func (s *PromSink) RecordProgress(p coremetrics.SearchProgress) error {
	s.progress.WithLabelValues(p.Algorithm, p.Step).Set(float64(p.Count))
	return nil
}
