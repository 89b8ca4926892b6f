package cp

import (
	"github.com/solvekit/uras/core/model"
)

// unboundedMs caps start bounds; calendar math in the model package
// uses the same order of magnitude.
const unboundedMs = int64(1) << 60

// domains holds the finite-domain state of every activity variable:
// candidate resource indices and inclusive start-time bounds. It is
// copied on every search branch, never mutated across siblings.
type domains struct {
	lb  []int64
	ub  []int64
	res [][]int
	// minDur caches the shortest effective duration over the remaining
	// candidates, used by bounds propagation.
	minDur []int64
}

// newDomains seeds the domains from releases, hard windows and the
// full candidate sets.
func newDomains(ins *model.Instance) *domains {
	n := ins.NumActivities()
	d := &domains{
		lb:     make([]int64, n),
		ub:     make([]int64, n),
		res:    make([][]int, n),
		minDur: make([]int64, n),
	}
	for ai := 0; ai < n; ai++ {
		d.lb[ai] = ins.ReleaseMs(ai)
		d.ub[ai] = unboundedMs
		d.res[ai] = append([]int(nil), ins.Candidates(ai)...)
		for _, w := range ins.WindowsFor(ai) {
			if !w.IsHard() {
				continue
			}
			if w.EarliestStartMs != nil && *w.EarliestStartMs > d.lb[ai] {
				d.lb[ai] = *w.EarliestStartMs
			}
			if w.LatestStartMs != nil && *w.LatestStartMs < d.ub[ai] {
				d.ub[ai] = *w.LatestStartMs
			}
		}
		d.refreshMinDur(ins, ai)
	}
	return d
}

func (d *domains) clone() *domains {
	cp := &domains{
		lb:     append([]int64(nil), d.lb...),
		ub:     append([]int64(nil), d.ub...),
		res:    make([][]int, len(d.res)),
		minDur: append([]int64(nil), d.minDur...),
	}
	for i, rs := range d.res {
		cp.res[i] = append([]int(nil), rs...)
	}
	return cp
}

// refreshMinDur recomputes the cached shortest duration of ai.
func (d *domains) refreshMinDur(ins *model.Instance, ai int) {
	nominal := ins.MeanDurationMs(ai)
	if len(d.res[ai]) == 0 {
		d.minDur[ai] = nominal
		return
	}
	best := int64(-1)
	for _, ri := range d.res[ai] {
		if dur := ins.Resources[ri].EffectiveDurationMs(nominal); best < 0 || dur < best {
			best = dur
		}
	}
	d.minDur[ai] = best
}

// hardLatestEnd returns the tightest hard end bound of ai, or
// unboundedMs.
func hardLatestEnd(ins *model.Instance, ai int) int64 {
	bound := unboundedMs
	for _, w := range ins.WindowsFor(ai) {
		if w.IsHard() && w.LatestEndMs != nil && *w.LatestEndMs < bound {
			bound = *w.LatestEndMs
		}
	}
	return bound
}

// assign collapses ai's domain onto one resource and start time.
func (d *domains) assign(ins *model.Instance, ai, ri int, startMs int64) {
	d.lb[ai] = startMs
	d.ub[ai] = startMs
	if ri >= 0 {
		d.res[ai] = []int{ri}
	}
	d.refreshMinDur(ins, ai)
}

// empty reports whether ai's domain admits no value. Activities
// without resource requirements only need consistent bounds.
func (d *domains) empty(ins *model.Instance, ai int) bool {
	if d.lb[ai] > d.ub[ai] {
		return true
	}
	return len(d.res[ai]) == 0 && len(ins.Candidates(ai)) > 0
}
