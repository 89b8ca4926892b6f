package model

import (
	"fmt"
	"sort"
)

// horizonMs bounds calendar arithmetic far enough out to never matter
// while leaving headroom against int64 overflow.
const horizonMs = int64(1) << 60

// Interval is a half-open time range [StartMs, EndMs).
type Interval struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// DurationMs returns the interval length.
func (iv Interval) DurationMs() int64 { return iv.EndMs - iv.StartMs }

// Contains reports whether ms falls within the interval.
func (iv Interval) Contains(ms int64) bool { return ms >= iv.StartMs && ms < iv.EndMs }

// Overlaps reports whether two intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.StartMs < other.EndMs && iv.EndMs > other.StartMs
}

// Calendar describes resource availability as a set of working
// windows minus blocked periods. An empty window set means the
// resource is always available. Use Normalize after construction to
// restore the sorted non-overlapping invariant; queries assume it.
type Calendar struct {
	Windows []Interval `json:"windows,omitempty"`
	Blocked []Interval `json:"blocked,omitempty"`
}

// AlwaysAvailable returns a calendar with no restrictions.
func AlwaysAvailable() Calendar { return Calendar{} }

// WithWindow appends a working window.
func (c Calendar) WithWindow(startMs, endMs int64) Calendar {
	c.Windows = append(c.Windows, Interval{StartMs: startMs, EndMs: endMs})
	return c
}

// WithBlocked appends a blocked period.
func (c Calendar) WithBlocked(startMs, endMs int64) Calendar {
	c.Blocked = append(c.Blocked, Interval{StartMs: startMs, EndMs: endMs})
	return c
}

// Validate rejects inverted intervals.
func (c Calendar) Validate() error {
	for _, iv := range c.Windows {
		if iv.EndMs <= iv.StartMs {
			return fmt.Errorf("%w: calendar window [%d, %d)", ErrInvalidSpec, iv.StartMs, iv.EndMs)
		}
	}
	for _, iv := range c.Blocked {
		if iv.EndMs <= iv.StartMs {
			return fmt.Errorf("%w: calendar blocked period [%d, %d)", ErrInvalidSpec, iv.StartMs, iv.EndMs)
		}
	}
	return nil
}

// Normalize sorts and merges windows and blocked periods, rebuilding
// the non-overlap invariant rather than mutating in place.
func (c Calendar) Normalize() Calendar {
	return Calendar{Windows: mergeIntervals(c.Windows), Blocked: mergeIntervals(c.Blocked)}
}

func mergeIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make([]Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMs < sorted[j].StartMs })
	out := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.StartMs <= last.EndMs {
			if iv.EndMs > last.EndMs {
				last.EndMs = iv.EndMs
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// spans returns the effective availability: windows minus blocked
// periods, sorted and non-overlapping.
func (c Calendar) spans() []Interval {
	base := c.Windows
	if len(base) == 0 {
		base = []Interval{{StartMs: 0, EndMs: horizonMs}}
	}
	if len(c.Blocked) == 0 {
		return base
	}
	var out []Interval
	for _, w := range base {
		cur := w
		for _, b := range c.Blocked {
			if !cur.Overlaps(b) {
				continue
			}
			if b.StartMs > cur.StartMs {
				out = append(out, Interval{StartMs: cur.StartMs, EndMs: b.StartMs})
			}
			if b.EndMs >= cur.EndMs {
				cur = Interval{}
				break
			}
			cur.StartMs = b.EndMs
		}
		if cur.DurationMs() > 0 {
			out = append(out, cur)
		}
	}
	return out
}

// AvailableDuring reports whether the whole range [startMs, endMs)
// falls within a single availability span.
func (c Calendar) AvailableDuring(startMs, endMs int64) bool {
	spans := c.spans()
	i := sort.Search(len(spans), func(i int) bool { return spans[i].EndMs > startMs })
	if i == len(spans) {
		return false
	}
	return spans[i].StartMs <= startMs && endMs <= spans[i].EndMs
}

// NextSlot returns the earliest start at or after fromMs where a block
// of length durMs fits entirely within one availability span. ok is
// false when no such slot exists.
func (c Calendar) NextSlot(fromMs, durMs int64) (startMs int64, ok bool) {
	spans := c.spans()
	i := sort.Search(len(spans), func(i int) bool { return spans[i].EndMs > fromMs })
	for ; i < len(spans); i++ {
		start := spans[i].StartMs
		if start < fromMs {
			start = fromMs
		}
		if start+durMs <= spans[i].EndMs {
			return start, true
		}
	}
	return 0, false
}

// AvailableTimeBetween returns the total availability overlapping
// [startMs, endMs), used for utilization reporting.
func (c Calendar) AvailableTimeBetween(startMs, endMs int64) int64 {
	var total int64
	for _, s := range c.spans() {
		lo, hi := s.StartMs, s.EndMs
		if lo < startMs {
			lo = startMs
		}
		if hi > endMs {
			hi = endMs
		}
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}
