package dispatch

import (
	"github.com/solvekit/uras/core/model"
)

// Context carries the scheduling state a rule may consult. It is
// rebuilt or updated by the scheduler between decision points; rules
// only read it.
type Context struct {
	Ins *model.Instance

	// NowMs is the current decision time.
	NowMs int64

	// RemainingWorkMs sums the mean durations of not-yet-scheduled
	// activities per task.
	RemainingWorkMs map[string]float64

	// RemainingOps counts not-yet-scheduled activities per task.
	RemainingOps map[string]int

	// ArrivalMs records when each activity became ready, keyed by
	// activity index.
	ArrivalMs map[int]int64

	// QueuedWorkMs sums processing time already committed to each
	// resource index but not yet finished at NowMs.
	QueuedWorkMs map[int]float64

	// Utilization is each resource's busy fraction so far, keyed by
	// resource index.
	Utilization map[int]float64

	// AvgProcessingMs is the mean processing time over the ready set,
	// used by the apparent-tardiness-cost rule.
	AvgProcessingMs float64
}

// NewContext builds a context at time nowMs with every activity still
// unscheduled.
func NewContext(ins *model.Instance, nowMs int64) *Context {
	c := &Context{
		Ins:             ins,
		NowMs:           nowMs,
		RemainingWorkMs: make(map[string]float64, len(ins.Tasks)),
		RemainingOps:    make(map[string]int, len(ins.Tasks)),
		ArrivalMs:       make(map[int]int64, ins.NumActivities()),
		QueuedWorkMs:    make(map[int]float64, len(ins.Resources)),
		Utilization:     make(map[int]float64, len(ins.Resources)),
	}
	var total float64
	for ai := range ins.Acts {
		t := ins.TaskOf(ai)
		d := float64(ins.MeanDurationMs(ai))
		c.RemainingWorkMs[t.ID] += d
		c.RemainingOps[t.ID]++
		c.ArrivalMs[ai] = ins.ReleaseMs(ai)
		total += d
	}
	if n := ins.NumActivities(); n > 0 {
		c.AvgProcessingMs = total / float64(n)
	}
	return c
}

// MarkScheduled removes the activity's contribution from the owning
// task's remaining work and operation count.
func (c *Context) MarkScheduled(ai int) {
	t := c.Ins.TaskOf(ai)
	c.RemainingWorkMs[t.ID] -= float64(c.Ins.MeanDurationMs(ai))
	if c.RemainingWorkMs[t.ID] < 0 {
		c.RemainingWorkMs[t.ID] = 0
	}
	if c.RemainingOps[t.ID] > 0 {
		c.RemainingOps[t.ID]--
	}
}

// ProcessingMs returns the activity's nominal mean processing time.
func (c *Context) ProcessingMs(ai int) float64 {
	return float64(c.Ins.MeanDurationMs(ai))
}

// DueMs returns the owning task's due date; ok is false without one.
func (c *Context) DueMs(ai int) (int64, bool) {
	t := c.Ins.TaskOf(ai)
	if t.DueMs == nil {
		return 0, false
	}
	return *t.DueMs, true
}

// SlackMs returns due - now - remaining work of the owning task; ok is
// false when the task has no due date.
func (c *Context) SlackMs(ai int) (float64, bool) {
	due, ok := c.DueMs(ai)
	if !ok {
		return 0, false
	}
	t := c.Ins.TaskOf(ai)
	return float64(due-c.NowMs) - c.RemainingWorkMs[t.ID], true
}

// Weight returns the owning task's priority as a positive weight.
func (c *Context) Weight(ai int) float64 {
	if p := c.Ins.TaskOf(ai).Priority; p > 0 {
		return float64(p)
	}
	return 1
}
