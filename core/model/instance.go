package model

import (
	"fmt"
	"math"

	"github.com/solvekit/uras/core/timespec"
)

// PrecEdge is a compiled precedence edge between two activity indices.
type PrecEdge struct {
	From    int
	To      int
	DelayMs int64
}

// Instance is the compiled, read-only view of one scheduling request.
// Activities and resources are addressed through stable integer
// indices so solvers can snapshot and branch without chasing pointers.
// Build it once with NewInstance; it is never mutated afterwards and
// is safe to share across goroutines.
type Instance struct {
	Tasks       []Task
	Resources   []Resource
	Constraints []Constraint

	// Acts flattens all activities across tasks in task order.
	Acts []Activity

	actIdx  map[string]int
	resIdx  map[string]int
	taskIdx map[string]int

	preds [][]PrecEdge
	succs [][]PrecEdge

	// windows collects the per-activity windows from the activity
	// itself plus activity- and task-level window constraints.
	windows [][]timespec.TimeWindow

	// candidates holds resource indices of each activity's primary
	// requirement; empty when the activity needs no resource.
	candidates [][]int

	// capacity is the effective per-resource concurrency limit after
	// applying capacity constraints.
	capacity []int

	// meanDur caches the rounded-up nominal mean duration.
	meanDur []int64
}

// NewInstance validates the request and compiles it into indexed
// read-only tables. All malformed input is rejected here with
// ErrInvalidSpec, including precedence cycles, so no solver can loop
// forever on an inconsistent constraint set.
func NewInstance(tasks []Task, resources []Resource, constraints []Constraint) (*Instance, error) {
	ins := &Instance{
		Tasks:       tasks,
		Resources:   make([]Resource, len(resources)),
		Constraints: constraints,
		actIdx:      make(map[string]int),
		resIdx:      make(map[string]int),
		taskIdx:     make(map[string]int),
	}

	for i, r := range resources {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := ins.resIdx[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate resource id %s", ErrInvalidSpec, r.ID)
		}
		ins.resIdx[r.ID] = i
		if r.Calendar != nil {
			cal := r.Calendar.Normalize()
			r.Calendar = &cal
		}
		ins.Resources[i] = r
	}

	for ti, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := ins.taskIdx[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %s", ErrInvalidSpec, t.ID)
		}
		ins.taskIdx[t.ID] = ti
		for _, a := range t.Activities {
			if _, dup := ins.actIdx[a.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate activity id %s", ErrInvalidSpec, a.ID)
			}
			ins.actIdx[a.ID] = len(ins.Acts)
			ins.Acts = append(ins.Acts, a)
		}
	}

	n := len(ins.Acts)
	ins.preds = make([][]PrecEdge, n)
	ins.succs = make([][]PrecEdge, n)
	ins.windows = make([][]timespec.TimeWindow, n)
	ins.candidates = make([][]int, n)
	ins.meanDur = make([]int64, n)

	ins.capacity = make([]int, len(ins.Resources))
	for i, r := range ins.Resources {
		ins.capacity[i] = r.MaxConcurrent()
	}

	for i, a := range ins.Acts {
		ins.meanDur[i] = int64(math.Ceil(a.Duration.MeanMs()))
		if a.Window != nil {
			ins.windows[i] = append(ins.windows[i], *a.Window)
		}
		if req := a.PrimaryRequirement(); req != nil {
			// Candidate lists may repeat an id; keep the first
			// occurrence so every index appears at most once and
			// preference order survives.
			seen := make(map[int]bool, len(req.Candidates))
			for _, id := range req.Candidates {
				ri, ok := ins.resIdx[id]
				if !ok {
					return nil, fmt.Errorf("%w: activity %s references unknown resource %s", ErrInvalidSpec, a.ID, id)
				}
				if seen[ri] {
					continue
				}
				seen[ri] = true
				ins.candidates[i] = append(ins.candidates[i], ri)
			}
		}
	}

	// Task-internal precedence follows sequence order.
	for _, t := range tasks {
		prev := -1
		for _, a := range t.Activities {
			idx := ins.actIdx[a.ID]
			if a.NoPrecedence {
				continue
			}
			if prev >= 0 {
				ins.addEdge(PrecEdge{From: prev, To: idx})
			}
			prev = idx
		}
	}

	for _, c := range constraints {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		switch c.Kind {
		case PrecedenceConstraint:
			from, ok := ins.actIdx[c.Before]
			if !ok {
				return nil, fmt.Errorf("%w: precedence references unknown activity %s", ErrInvalidSpec, c.Before)
			}
			to, ok := ins.actIdx[c.After]
			if !ok {
				return nil, fmt.Errorf("%w: precedence references unknown activity %s", ErrInvalidSpec, c.After)
			}
			ins.addEdge(PrecEdge{From: from, To: to, DelayMs: c.MinDelayMs})
		case CapacityConstraint:
			ri, ok := ins.resIdx[c.ResourceID]
			if !ok {
				return nil, fmt.Errorf("%w: capacity constraint references unknown resource %s", ErrInvalidSpec, c.ResourceID)
			}
			if c.MaxConcurrent < ins.capacity[ri] {
				ins.capacity[ri] = c.MaxConcurrent
			}
		case WindowConstraint:
			if c.ActivityID != "" {
				ai, ok := ins.actIdx[c.ActivityID]
				if !ok {
					return nil, fmt.Errorf("%w: window constraint references unknown activity %s", ErrInvalidSpec, c.ActivityID)
				}
				ins.windows[ai] = append(ins.windows[ai], *c.Window)
			} else {
				ti, ok := ins.taskIdx[c.TaskID]
				if !ok {
					return nil, fmt.Errorf("%w: window constraint references unknown task %s", ErrInvalidSpec, c.TaskID)
				}
				for _, a := range ins.Tasks[ti].Activities {
					ai := ins.actIdx[a.ID]
					ins.windows[ai] = append(ins.windows[ai], *c.Window)
				}
			}
		}
	}

	// Task due dates become soft deadline windows on the last
	// activity so every solver sees tardiness the same way.
	for _, t := range tasks {
		if t.DueMs == nil || len(t.Activities) == 0 {
			continue
		}
		last := ins.actIdx[t.Activities[len(t.Activities)-1].ID]
		ins.windows[last] = append(ins.windows[last], timespec.Deadline(*t.DueMs).Soft(1))
	}

	if _, err := ins.TopoOrder(); err != nil {
		return nil, err
	}
	return ins, nil
}

func (ins *Instance) addEdge(e PrecEdge) {
	ins.preds[e.To] = append(ins.preds[e.To], e)
	ins.succs[e.From] = append(ins.succs[e.From], e)
}

// NumActivities returns the flattened activity count.
func (ins *Instance) NumActivities() int { return len(ins.Acts) }

// ActivityIndex resolves an activity identifier; ok is false for
// unknown ids.
func (ins *Instance) ActivityIndex(id string) (int, bool) {
	i, ok := ins.actIdx[id]
	return i, ok
}

// ResourceIndex resolves a resource identifier.
func (ins *Instance) ResourceIndex(id string) (int, bool) {
	i, ok := ins.resIdx[id]
	return i, ok
}

// TaskOf returns the task owning the activity at index ai.
func (ins *Instance) TaskOf(ai int) *Task {
	ti := ins.taskIdx[ins.Acts[ai].TaskID]
	return &ins.Tasks[ti]
}

// Predecessors returns the compiled precedence edges into ai.
func (ins *Instance) Predecessors(ai int) []PrecEdge { return ins.preds[ai] }

// Successors returns the compiled precedence edges out of ai.
func (ins *Instance) Successors(ai int) []PrecEdge { return ins.succs[ai] }

// WindowsFor returns every window bounding the activity at ai.
func (ins *Instance) WindowsFor(ai int) []timespec.TimeWindow { return ins.windows[ai] }

// Candidates returns the resource indices the activity may run on;
// empty means the activity needs no resource.
func (ins *Instance) Candidates(ai int) []int { return ins.candidates[ai] }

// CapacityOf returns the effective concurrency limit of resource ri.
func (ins *Instance) CapacityOf(ri int) int { return ins.capacity[ri] }

// MeanDurationMs returns the rounded-up nominal mean duration of the
// activity at ai.
func (ins *Instance) MeanDurationMs(ai int) int64 { return ins.meanDur[ai] }

// ReleaseMs returns the owning task's release time, or 0.
func (ins *Instance) ReleaseMs(ai int) int64 {
	if t := ins.TaskOf(ai); t.ReleaseMs != nil {
		return *t.ReleaseMs
	}
	return 0
}

// TopoOrder returns a topological order of all activities under the
// compiled precedence graph, or ErrInvalidSpec when the constraints
// form a cycle.
func (ins *Instance) TopoOrder() ([]int, error) {
	n := len(ins.Acts)
	indeg := make([]int, n)
	for to := range ins.preds {
		indeg[to] = len(ins.preds[to])
	}
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, e := range ins.succs[i] {
			indeg[e.To]--
			if indeg[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	if len(order) != n {
		return nil, fmt.Errorf("%w: precedence constraints form a cycle", ErrInvalidSpec)
	}
	return order, nil
}
