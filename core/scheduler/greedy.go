package scheduler

import (
	"context"
	"fmt"

	"github.com/solvekit/uras/core/dispatch"
	"github.com/solvekit/uras/core/logger"
	"github.com/solvekit/uras/core/model"
)

// Greedy runs an event-driven simulation: at each decision point the
// dispatching engine picks the next ready activity, which is placed on
// the candidate resource finishing earliest.
type Greedy struct {
	engine *dispatch.Engine
	log    logger.Logger
}

// NewGreedy returns a greedy scheduler using the given rule engine.
// A nil engine falls back to the default rule chain.
func NewGreedy(engine *dispatch.Engine, log logger.Logger) *Greedy {
	if engine == nil {
		engine = dispatch.Default()
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Greedy{engine: engine, log: log}
}

// Solve schedules every activity of the instance or returns
// ErrInfeasible when some activity can never meet its hard windows.
func (g *Greedy) Solve(ctx context.Context, ins *model.Instance) (*model.Schedule, error) {
	n := ins.NumActivities()
	sched := model.NewSchedule()
	if n == 0 {
		return sched, nil
	}

	tl := NewTimeline(ins)
	dctx := dispatch.NewContext(ins, 0)
	endOf := make([]int64, n)
	done := make([]bool, n)

	for remaining := n; remaining > 0; remaining-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ready, est := readyFront(ins, done, endOf)
		if len(ready) == 0 {
			return nil, fmt.Errorf("%w: no ready activity with %d unscheduled", model.ErrInfeasible, remaining)
		}

		now := est[ready[0]]
		for _, ai := range ready[1:] {
			if est[ai] < now {
				now = est[ai]
			}
		}
		front := ready[:0]
		for _, ai := range ready {
			if est[ai] == now {
				front = append(front, ai)
			}
		}

		dctx.NowMs = now
		for ri := range ins.Resources {
			dctx.QueuedWorkMs[ri] = tl.QueuedAfterMs(ri, now)
			if now > 0 {
				dctx.Utilization[ri] = float64(tl.BusyMs(ri)) / float64(now)
			}
		}

		ai, _ := g.engine.SelectBest(dctx, front)
		p, ri, ok := tl.PlaceBest(ai, now)
		if !ok {
			return nil, fmt.Errorf("%w: activity %s has no slot satisfying its hard windows", model.ErrInfeasible, ins.Acts[ai].ID)
		}
		if ri != NoResource {
			tl.Commit(ri, p.Assignment.StartMs, p.Assignment.EndMs)
		}
		sched.Add(p.Assignment)
		for _, v := range p.Violations {
			sched.AddViolation(v)
		}

		done[ai] = true
		endOf[ai] = p.Assignment.EndMs
		dctx.MarkScheduled(ai)
		for _, e := range ins.Successors(ai) {
			if arr := endOf[ai] + e.DelayMs; arr > dctx.ArrivalMs[e.To] {
				dctx.ArrivalMs[e.To] = arr
			}
		}

		g.log.Debugw("activity placed", map[string]any{
			"activity": p.Assignment.ActivityID,
			"resource": p.Assignment.ResourceID,
			"start_ms": p.Assignment.StartMs,
			"end_ms":   p.Assignment.EndMs,
		})
	}

	g.log.Infof("greedy schedule complete: %d assignments, makespan %dms", len(sched.Assignments), sched.MakespanMs)
	return sched, nil
}

// readyFront collects unscheduled activities whose predecessors are
// all placed, with each one's earliest start.
func readyFront(ins *model.Instance, done []bool, endOf []int64) ([]int, map[int]int64) {
	var ready []int
	est := make(map[int]int64)
	for ai := 0; ai < len(done); ai++ {
		if done[ai] {
			continue
		}
		start := ins.ReleaseMs(ai)
		ok := true
		for _, e := range ins.Predecessors(ai) {
			if !done[e.From] {
				ok = false
				break
			}
			if t := endOf[e.From] + e.DelayMs; t > start {
				start = t
			}
		}
		if ok {
			ready = append(ready, ai)
			est[ai] = start
		}
	}
	return ready, est
}
