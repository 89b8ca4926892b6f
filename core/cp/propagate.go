package cp

import (
	"fmt"

	"github.com/solvekit/uras/core/model"
)

// propagate runs bounds-based arc consistency to a fixed point. Each
// pass tightens start bounds through precedence edges and prunes
// resources that can no longer meet a hard end bound or find a
// calendar slot. It returns ErrInfeasible as soon as any domain
// empties.
func propagate(ins *model.Instance, d *domains) error {
	n := ins.NumActivities()
	queue := make([]int, 0, n)
	queued := make([]bool, n)
	push := func(ai int) {
		if !queued[ai] {
			queued[ai] = true
			queue = append(queue, ai)
		}
	}
	for ai := 0; ai < n; ai++ {
		push(ai)
	}

	for len(queue) > 0 {
		ai := queue[0]
		queue = queue[1:]
		queued[ai] = false

		changed, err := revise(ins, d, ai)
		if err != nil {
			return err
		}
		if changed {
			for _, e := range ins.Predecessors(ai) {
				push(e.From)
			}
			for _, e := range ins.Successors(ai) {
				push(e.To)
			}
		}
	}
	return nil
}

// revise tightens ai's domain against its neighbors and local
// constraints; it reports whether anything shrank.
func revise(ins *model.Instance, d *domains, ai int) (bool, error) {
	changed := false

	// Precedence pushes the lower bound past every predecessor's
	// earliest completion.
	for _, e := range ins.Predecessors(ai) {
		if earliest := d.lb[e.From] + d.minDur[e.From] + e.DelayMs; earliest > d.lb[ai] {
			d.lb[ai] = earliest
			changed = true
		}
	}
	// Successors pull the upper bound back so this activity can still
	// finish in time for them.
	for _, e := range ins.Successors(ai) {
		if latest := d.ub[e.To] - e.DelayMs - d.minDur[ai]; latest < d.ub[ai] {
			d.ub[ai] = latest
			changed = true
		}
	}

	// A hard end bound caps the start through the shortest duration.
	if end := hardLatestEnd(ins, ai); end < unboundedMs {
		if latest := end - d.minDur[ai]; latest < d.ub[ai] {
			d.ub[ai] = latest
			changed = true
		}
	}

	if pruned := pruneResources(ins, d, ai); pruned {
		changed = true
	}

	if d.empty(ins, ai) {
		return false, fmt.Errorf("%w: activity %s domain empty", model.ErrInfeasible, ins.Acts[ai].ID)
	}
	return changed, nil
}

// pruneResources removes candidates on which ai can no longer run:
// the earliest calendar slot from lb either misses the start upper
// bound or overruns a hard end bound.
func pruneResources(ins *model.Instance, d *domains, ai int) bool {
	if len(d.res[ai]) == 0 {
		return false
	}
	endBound := hardLatestEnd(ins, ai)
	nominal := ins.MeanDurationMs(ai)
	kept := d.res[ai][:0]
	for _, ri := range d.res[ai] {
		res := ins.Resources[ri]
		dur := res.EffectiveDurationMs(nominal)
		start := d.lb[ai]
		if res.Calendar != nil {
			s, ok := res.Calendar.NextSlot(start, dur)
			if !ok {
				continue
			}
			start = s
		}
		if start > d.ub[ai] {
			continue
		}
		if endBound < unboundedMs && start+dur > endBound {
			continue
		}
		kept = append(kept, ri)
	}
	if len(kept) == len(d.res[ai]) {
		return false
	}
	d.res[ai] = kept
	d.refreshMinDur(ins, ai)
	return true
}
