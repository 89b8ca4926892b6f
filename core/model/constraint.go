package model

import (
	"fmt"

	"github.com/solvekit/uras/core/timespec"
)

// ConstraintKind tags the constraint variants.
type ConstraintKind string

const (
	// PrecedenceConstraint orders two activities, possibly across tasks.
	PrecedenceConstraint ConstraintKind = "precedence"
	// CapacityConstraint caps concurrent activities on a resource.
	CapacityConstraint ConstraintKind = "capacity"
	// WindowConstraint bounds an activity or a whole task in time.
	WindowConstraint ConstraintKind = "window"
)

// Constraint is a tagged variant over precedence, capacity and time
// window restrictions. Exactly one variant's fields are meaningful,
// selected by Kind.
type Constraint struct {
	Kind ConstraintKind `json:"kind"`

	// Precedence: Before must finish MinDelayMs before After starts.
	Before     string `json:"before,omitempty"`
	After      string `json:"after,omitempty"`
	MinDelayMs int64  `json:"min_delay_ms,omitempty"`

	// Capacity
	ResourceID    string `json:"resource_id,omitempty"`
	MaxConcurrent int    `json:"max_concurrent,omitempty"`

	// Window: exactly one of ActivityID or TaskID is set.
	ActivityID string               `json:"activity_id,omitempty"`
	TaskID     string               `json:"task_id,omitempty"`
	Window     *timespec.TimeWindow `json:"window,omitempty"`
}

// Precedence returns a constraint ordering before ahead of after.
func Precedence(before, after string) Constraint {
	return Constraint{Kind: PrecedenceConstraint, Before: before, After: after}
}

// PrecedenceWithDelay returns a precedence constraint with a minimum
// delay between the two activities.
func PrecedenceWithDelay(before, after string, delayMs int64) Constraint {
	return Constraint{Kind: PrecedenceConstraint, Before: before, After: after, MinDelayMs: delayMs}
}

// Capacity returns a constraint capping concurrency on a resource.
func Capacity(resourceID string, maxConcurrent int) Constraint {
	return Constraint{Kind: CapacityConstraint, ResourceID: resourceID, MaxConcurrent: maxConcurrent}
}

// ActivityWindow returns a window constraint on one activity.
func ActivityWindow(activityID string, w timespec.TimeWindow) Constraint {
	return Constraint{Kind: WindowConstraint, ActivityID: activityID, Window: &w}
}

// TaskWindow returns a window constraint spanning a whole task.
func TaskWindow(taskID string, w timespec.TimeWindow) Constraint {
	return Constraint{Kind: WindowConstraint, TaskID: taskID, Window: &w}
}

// Validate checks the variant selected by Kind.
func (c Constraint) Validate() error {
	switch c.Kind {
	case PrecedenceConstraint:
		if c.Before == "" || c.After == "" {
			return fmt.Errorf("%w: precedence constraint missing activity ids", ErrInvalidSpec)
		}
		if c.Before == c.After {
			return fmt.Errorf("%w: precedence constraint %s before itself", ErrInvalidSpec, c.Before)
		}
		if c.MinDelayMs < 0 {
			return fmt.Errorf("%w: precedence %s->%s negative delay", ErrInvalidSpec, c.Before, c.After)
		}
	case CapacityConstraint:
		if c.ResourceID == "" {
			return fmt.Errorf("%w: capacity constraint without resource", ErrInvalidSpec)
		}
		if c.MaxConcurrent < 1 {
			return fmt.Errorf("%w: capacity constraint on %s with max %d", ErrInvalidSpec, c.ResourceID, c.MaxConcurrent)
		}
	case WindowConstraint:
		if c.Window == nil {
			return fmt.Errorf("%w: window constraint without window", ErrInvalidSpec)
		}
		if (c.ActivityID == "") == (c.TaskID == "") {
			return fmt.Errorf("%w: window constraint must target exactly one of activity or task", ErrInvalidSpec)
		}
		return c.Window.Validate()
	default:
		return fmt.Errorf("%w: unknown constraint kind %q", ErrInvalidSpec, c.Kind)
	}
	return nil
}
