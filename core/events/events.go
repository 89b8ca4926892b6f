package events

import "time"

// SolveStarted is emitted when an algorithm begins working a request.
type SolveStarted struct {
	RequestID  string
	Algorithm  string
	Activities int
	Resources  int
	Time       time.Time
}

// Progress reports search progress. Step is "generation" for the
// genetic scheduler and "node" for the constraint solver.
type Progress struct {
	RequestID string
	Algorithm string
	Step      string
	Count     int64
	BestCost  float64
	Time      time.Time
}

// SolveFinished is emitted once per request with the final outcome.
// Status is "ok", "infeasible", "invalid_spec" or "error".
type SolveFinished struct {
	RequestID  string
	Algorithm  string
	Status     string
	Feasible   bool
	MakespanMs int64
	PenaltyMs  float64
	ElapsedMs  int64
	Time       time.Time
}
