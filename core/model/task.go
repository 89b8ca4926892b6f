package model

import (
	"fmt"
)

// Task is a schedulable unit of work composed of ordered activities.
// The activity order encodes precedence: an activity cannot start
// before every activity with a smaller sequence number in the same
// task has completed, unless NoPrecedence is set on the activity.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	// Priority orders tasks for greedy scheduling; higher is more urgent.
	Priority int `json:"priority"`
	// DueMs is the completion due date, nil when the task has none.
	DueMs *int64 `json:"due_ms,omitempty"`
	// ReleaseMs is the earliest allowed start, nil for immediately.
	ReleaseMs  *int64     `json:"release_ms,omitempty"`
	Activities []Activity `json:"activities"`
}

// NewTask returns a task with the given identifier and default
// priority 1.
func NewTask(id string) Task {
	return Task{ID: id, Name: id, Priority: 1}
}

// WithPriority sets the task priority.
func (t Task) WithPriority(p int) Task {
	t.Priority = p
	return t
}

// WithDue sets the due date in milliseconds.
func (t Task) WithDue(ms int64) Task {
	t.DueMs = &ms
	return t
}

// WithRelease sets the earliest start in milliseconds.
func (t Task) WithRelease(ms int64) Task {
	t.ReleaseMs = &ms
	return t
}

// WithActivity appends an activity.
func (t Task) WithActivity(a Activity) Task {
	t.Activities = append(t.Activities, a)
	return t
}

// TotalWorkMs returns the summed mean duration of all activities.
func (t Task) TotalWorkMs() float64 {
	var total float64
	for _, a := range t.Activities {
		total += a.Duration.MeanMs()
	}
	return total
}

// Validate checks the task invariants: non-empty identifier, strictly
// increasing unique sequence numbers, and valid activities.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: task without id", ErrInvalidSpec)
	}
	lastSeq := -1
	for i, a := range t.Activities {
		if a.TaskID != t.ID {
			return fmt.Errorf("%w: activity %s belongs to task %s, not %s", ErrInvalidSpec, a.ID, a.TaskID, t.ID)
		}
		if a.Sequence <= lastSeq {
			return fmt.Errorf("%w: task %s sequence numbers must be strictly increasing at activity %d", ErrInvalidSpec, t.ID, i)
		}
		lastSeq = a.Sequence
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}
