package metrics

import "time"

// SolveResult captures one completed scheduling request.
type SolveResult struct {
	RequestID  string
	Algorithm  string
	Status     string
	Feasible   bool
	Activities int
	MakespanMs int64
	PenaltyMs  float64
	ElapsedMs  int64
	Time       time.Time
}

// MetricsSink records solve outcomes for observability purposes.
type MetricsSink interface {
	RecordSolve(res SolveResult) error
}

// SearchProgress is a periodic sample of a running search.
type SearchProgress struct {
	RequestID string
	Algorithm string
	Step      string
	Count     int64
	BestCost  float64
	Time      time.Time
}

// ProgressRecorder records search progress samples. Sinks may
// implement it in addition to MetricsSink.
type ProgressRecorder interface {
	RecordProgress(p SearchProgress) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordSolve(SolveResult) error       { return nil }
func (NopSink) RecordProgress(SearchProgress) error { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordSolve(res SolveResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordProgress forwards progress samples to sinks that support them.
func (m *MultiSink) RecordProgress(p SearchProgress) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProgressRecorder); ok {
			if err := rec.RecordProgress(p); err != nil {
				return err
			}
		}
	}
	return nil
}
