package scheduler

import (
	"sort"

	"github.com/solvekit/uras/core/model"
)

// maxPlacementIters bounds the slot search per activity; each retry
// jumps past a committed interval, so the bound is only a safety net.
const maxPlacementIters = 1 << 16

// Timeline tracks committed busy intervals per resource and answers
// placement queries that respect calendars, efficiency factors and
// concurrency capacity. One Timeline belongs to one solver run; it is
// not safe for concurrent use.
type Timeline struct {
	ins  *model.Instance
	busy [][]model.Interval
}

// NewTimeline returns an empty timeline over the instance's resources.
func NewTimeline(ins *model.Instance) *Timeline {
	return &Timeline{ins: ins, busy: make([][]model.Interval, len(ins.Resources))}
}

// EarliestSlot finds the first start at or after fromMs where the
// activity's nominal duration fits on resource ri: inside the
// calendar, scaled by efficiency, and without exceeding capacity. ok
// is false when the calendar can never host the block.
func (tl *Timeline) EarliestSlot(ri int, fromMs, nominalMs int64) (startMs, endMs int64, ok bool) {
	res := tl.ins.Resources[ri]
	dur := res.EffectiveDurationMs(nominalMs)
	capacity := tl.ins.CapacityOf(ri)

	t := fromMs
	for iter := 0; iter < maxPlacementIters; iter++ {
		s := t
		if res.Calendar != nil {
			var found bool
			s, found = res.Calendar.NextSlot(t, dur)
			if !found {
				return 0, 0, false
			}
		}
		e := s + dur
		next, fits := tl.capacityOK(ri, capacity, s, e)
		if fits {
			return s, e, true
		}
		t = next
	}
	return 0, 0, false
}

// capacityOK checks peak concurrency over [s, e); when the slot is
// full it returns the next time worth retrying from.
func (tl *Timeline) capacityOK(ri, capacity int, s, e int64) (int64, bool) {
	overlapping := make([]model.Interval, 0, 4)
	for _, iv := range tl.busy[ri] {
		if iv.StartMs < e && iv.EndMs > s {
			overlapping = append(overlapping, iv)
		}
	}
	if len(overlapping) < capacity {
		return 0, true
	}
	// Sweep the interval starts to find the concurrency peak.
	peak := 0
	for _, iv := range overlapping {
		at := iv.StartMs
		if at < s {
			at = s
		}
		active := 0
		for _, other := range overlapping {
			if other.StartMs <= at && other.EndMs > at {
				active++
			}
		}
		if active > peak {
			peak = active
		}
	}
	if peak < capacity {
		return 0, true
	}
	next := int64(-1)
	for _, iv := range overlapping {
		if iv.EndMs > s && (next < 0 || iv.EndMs < next) {
			next = iv.EndMs
		}
	}
	return next, false
}

// Clone returns an independent copy sharing only the read-only
// instance, used by branching searches to snapshot placement state.
func (tl *Timeline) Clone() *Timeline {
	cp := &Timeline{ins: tl.ins, busy: make([][]model.Interval, len(tl.busy))}
	for i, ivs := range tl.busy {
		if len(ivs) == 0 {
			continue
		}
		cp.busy[i] = append([]model.Interval(nil), ivs...)
	}
	return cp
}

// Commit records a busy interval on resource ri.
func (tl *Timeline) Commit(ri int, startMs, endMs int64) {
	ivs := tl.busy[ri]
	i := sort.Search(len(ivs), func(i int) bool { return ivs[i].StartMs >= startMs })
	ivs = append(ivs, model.Interval{})
	copy(ivs[i+1:], ivs[i:])
	ivs[i] = model.Interval{StartMs: startMs, EndMs: endMs}
	tl.busy[ri] = ivs
}

// BusyMs returns the summed busy time on resource ri.
func (tl *Timeline) BusyMs(ri int) int64 {
	var total int64
	for _, iv := range tl.busy[ri] {
		total += iv.DurationMs()
	}
	return total
}

// QueuedAfterMs returns the busy time on ri that ends after nowMs,
// feeding the work-in-next-queue dispatching rule.
func (tl *Timeline) QueuedAfterMs(ri int, nowMs int64) float64 {
	var total int64
	for _, iv := range tl.busy[ri] {
		if iv.EndMs <= nowMs {
			continue
		}
		lo := iv.StartMs
		if lo < nowMs {
			lo = nowMs
		}
		total += iv.EndMs - lo
	}
	return float64(total)
}
