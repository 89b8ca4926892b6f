package model

import (
	"fmt"

	"github.com/solvekit/uras/core/timespec"
)

// Activity is an atomic step within a task. It needs exactly one
// resource from each of its requirements' candidate sets for its whole
// duration.
type Activity struct {
	ID       string `json:"id"`
	TaskID   string `json:"task_id"`
	Sequence int    `json:"sequence"`
	// Duration is the nominal processing time before the assigned
	// resource's efficiency factor is applied.
	Duration timespec.DurationDistribution `json:"duration"`
	// Requirements maps resource categories to acceptable resources.
	Requirements []ResourceRequirement `json:"requirements"`
	// Window optionally bounds when the activity may run.
	Window *timespec.TimeWindow `json:"window,omitempty"`
	// NoPrecedence detaches the activity from the task-internal
	// sequence ordering.
	NoPrecedence bool `json:"no_precedence,omitempty"`
}

// ResourceRequirement names a resource category and the ordered set of
// resources that may fulfill it. Candidate order expresses preference.
type ResourceRequirement struct {
	Category   string   `json:"category"`
	Candidates []string `json:"candidates"`
}

// NewActivity returns an activity owned by the given task.
func NewActivity(id, taskID string, sequence int) Activity {
	return Activity{ID: id, TaskID: taskID, Sequence: sequence, Duration: timespec.Fixed(0)}
}

// WithDuration sets the duration spec.
func (a Activity) WithDuration(d timespec.DurationDistribution) Activity {
	a.Duration = d
	return a
}

// WithResources appends a requirement for the category with the given
// candidates.
func (a Activity) WithResources(category string, candidates ...string) Activity {
	a.Requirements = append(a.Requirements, ResourceRequirement{Category: category, Candidates: candidates})
	return a
}

// WithWindow bounds the activity with a time window.
func (a Activity) WithWindow(w timespec.TimeWindow) Activity {
	a.Window = &w
	return a
}

// CandidateResources returns all acceptable resource identifiers
// across requirements, in declaration order.
func (a Activity) CandidateResources() []string {
	var out []string
	for _, req := range a.Requirements {
		out = append(out, req.Candidates...)
	}
	return out
}

// PrimaryRequirement returns the first requirement, which every solver
// treats as the processing resource, or nil when the activity needs
// none.
func (a Activity) PrimaryRequirement() *ResourceRequirement {
	if len(a.Requirements) == 0 {
		return nil
	}
	return &a.Requirements[0]
}

// Validate checks the activity specification.
func (a Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: activity without id", ErrInvalidSpec)
	}
	if err := a.Duration.Validate(); err != nil {
		return fmt.Errorf("activity %s: %w", a.ID, err)
	}
	for _, req := range a.Requirements {
		if req.Category == "" {
			return fmt.Errorf("%w: activity %s requirement without category", ErrInvalidSpec, a.ID)
		}
		if len(req.Candidates) == 0 {
			return fmt.Errorf("%w: activity %s category %s has no candidate resources", ErrInvalidSpec, a.ID, req.Category)
		}
	}
	if a.Window != nil {
		if err := a.Window.Validate(); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
	}
	return nil
}
