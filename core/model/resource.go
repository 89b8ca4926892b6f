package model

import (
	"fmt"
)

// ResourceKind classifies resources.
type ResourceKind string

const (
	// Primary resources process activities (machine, room, vehicle).
	Primary ResourceKind = "primary"
	// Secondary resources support processing (tool, fixture).
	Secondary ResourceKind = "secondary"
)

// Resource is an allocatable entity. Efficiency scales nominal
// durations: an activity with nominal duration d on a resource with
// efficiency e runs for d/e. Capacity bounds how many activities may
// run concurrently.
type Resource struct {
	ID   string       `json:"id"`
	Name string       `json:"name,omitempty"`
	Kind ResourceKind `json:"kind"`
	// Efficiency must be > 0; 1.0 means nominal speed.
	Efficiency float64 `json:"efficiency"`
	// Capacity defaults to 1 when zero.
	Capacity int `json:"capacity,omitempty"`
	// Calendar restricts availability; nil means always available.
	Calendar *Calendar `json:"calendar,omitempty"`
}

// NewResource returns a primary resource with nominal efficiency.
func NewResource(id string) Resource {
	return Resource{ID: id, Name: id, Kind: Primary, Efficiency: 1, Capacity: 1}
}

// WithEfficiency sets the efficiency factor.
func (r Resource) WithEfficiency(e float64) Resource {
	r.Efficiency = e
	return r
}

// WithCapacity sets the concurrent-activity capacity.
func (r Resource) WithCapacity(c int) Resource {
	r.Capacity = c
	return r
}

// WithCalendar sets the availability calendar.
func (r Resource) WithCalendar(c Calendar) Resource {
	r.Calendar = &c
	return r
}

// EffectiveDurationMs converts a nominal duration to wall-clock time
// on this resource.
func (r Resource) EffectiveDurationMs(nominalMs int64) int64 {
	if r.Efficiency == 1 || nominalMs == 0 {
		return nominalMs
	}
	d := int64(float64(nominalMs) / r.Efficiency)
	if d < 1 {
		d = 1
	}
	return d
}

// MaxConcurrent returns the capacity, treating zero as one.
func (r Resource) MaxConcurrent() int {
	if r.Capacity <= 0 {
		return 1
	}
	return r.Capacity
}

// Validate checks the resource specification.
func (r Resource) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: resource without id", ErrInvalidSpec)
	}
	if r.Efficiency <= 0 {
		return fmt.Errorf("%w: resource %s efficiency %f must be > 0", ErrInvalidSpec, r.ID, r.Efficiency)
	}
	if r.Capacity < 0 {
		return fmt.Errorf("%w: resource %s negative capacity %d", ErrInvalidSpec, r.ID, r.Capacity)
	}
	if r.Calendar != nil {
		if err := r.Calendar.Validate(); err != nil {
			return fmt.Errorf("resource %s: %w", r.ID, err)
		}
	}
	return nil
}
