package model

// Assignment allocates one activity to a resource for [StartMs, EndMs).
type Assignment struct {
	ActivityID string `json:"activity_id"`
	TaskID     string `json:"task_id"`
	ResourceID string `json:"resource_id"`
	StartMs    int64  `json:"start_ms"`
	EndMs      int64  `json:"end_ms"`
}

// DurationMs returns the assignment length.
func (a Assignment) DurationMs() int64 { return a.EndMs - a.StartMs }

// ViolationKind classifies schedule violations.
type ViolationKind string

const (
	DeadlineViolation   ViolationKind = "deadline"
	CapacityViolation   ViolationKind = "capacity"
	PrecedenceViolation ViolationKind = "precedence"
	WindowViolation     ViolationKind = "window"
)

// Violation records a constraint breach found in a schedule. Hard
// violations make the schedule infeasible; soft ones contribute
// Penalty to the aggregate score.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	EntityID string        `json:"entity_id"`
	Message  string        `json:"message"`
	Hard     bool          `json:"hard"`
	Penalty  float64       `json:"penalty"`
}

// Schedule is the output of a scheduling algorithm: one assignment per
// activity plus the derived makespan and any recorded violations. A
// schedule is assembled by exactly one algorithm invocation and is
// immutable once returned.
type Schedule struct {
	Assignments []Assignment `json:"assignments"`
	MakespanMs  int64        `json:"makespan_ms"`
	// PenaltyMs aggregates soft-window penalties accumulated while
	// building the schedule.
	PenaltyMs  float64     `json:"penalty_ms,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule { return &Schedule{} }

// Add appends an assignment, updating the makespan.
func (s *Schedule) Add(a Assignment) {
	if a.EndMs > s.MakespanMs {
		s.MakespanMs = a.EndMs
	}
	s.Assignments = append(s.Assignments, a)
}

// AddViolation records a constraint breach.
func (s *Schedule) AddViolation(v Violation) {
	s.Violations = append(s.Violations, v)
	s.PenaltyMs += v.Penalty
}

// Feasible reports whether the schedule carries no hard violations.
func (s *Schedule) Feasible() bool {
	for _, v := range s.Violations {
		if v.Hard {
			return false
		}
	}
	return true
}

// ForActivity returns the assignment of the given activity, or nil.
func (s *Schedule) ForActivity(activityID string) *Assignment {
	for i := range s.Assignments {
		if s.Assignments[i].ActivityID == activityID {
			return &s.Assignments[i]
		}
	}
	return nil
}

// ForTask returns all assignments belonging to the task.
func (s *Schedule) ForTask(taskID string) []Assignment {
	var out []Assignment
	for _, a := range s.Assignments {
		if a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out
}

// ForResource returns all assignments on the resource.
func (s *Schedule) ForResource(resourceID string) []Assignment {
	var out []Assignment
	for _, a := range s.Assignments {
		if a.ResourceID == resourceID {
			out = append(out, a)
		}
	}
	return out
}

// TaskCompletionMs returns the latest end time among the task's
// assignments; ok is false when the task has none.
func (s *Schedule) TaskCompletionMs(taskID string) (int64, bool) {
	var max int64
	found := false
	for _, a := range s.Assignments {
		if a.TaskID == taskID {
			found = true
			if a.EndMs > max {
				max = a.EndMs
			}
		}
	}
	return max, found
}
