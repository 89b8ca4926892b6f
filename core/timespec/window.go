package timespec

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec reports a malformed duration or window specification.
// It is returned before any algorithm runs.
var ErrInvalidSpec = errors.New("invalid spec")

// WindowType distinguishes hard constraints from soft, penalized ones.
type WindowType string

const (
	// Hard windows invalidate any schedule that violates them.
	Hard WindowType = "hard"
	// Soft windows add a penalty proportional to the violation.
	Soft WindowType = "soft"
)

// TimeWindow bounds when an activity may start and finish. Any bound
// may be nil, meaning unbounded on that side.
type TimeWindow struct {
	EarliestStartMs *int64     `json:"earliest_start_ms,omitempty"`
	LatestStartMs   *int64     `json:"latest_start_ms,omitempty"`
	EarliestEndMs   *int64     `json:"earliest_end_ms,omitempty"`
	LatestEndMs     *int64     `json:"latest_end_ms,omitempty"`
	Type            WindowType `json:"type"`
	// PenaltyPerMs is applied per millisecond of violation for soft windows.
	PenaltyPerMs float64 `json:"penalty_per_ms,omitempty"`
}

// Deadline returns a hard window with an unbounded start and the given
// latest finish.
func Deadline(ms int64) TimeWindow {
	return TimeWindow{LatestEndMs: &ms, Type: Hard}
}

// Release returns a hard window forbidding a start before ms.
func Release(ms int64) TimeWindow {
	return TimeWindow{EarliestStartMs: &ms, Type: Hard}
}

// Bounded returns a soft window with the given earliest start and
// latest end.
func Bounded(startMs, endMs int64) TimeWindow {
	return TimeWindow{EarliestStartMs: &startMs, LatestEndMs: &endMs, Type: Soft, PenaltyPerMs: 1}
}

// Hard converts the window to a hard constraint.
func (w TimeWindow) Hard() TimeWindow {
	w.Type = Hard
	w.PenaltyPerMs = 0
	return w
}

// Soft converts the window to a soft constraint with the given penalty
// weight per millisecond of violation.
func (w TimeWindow) Soft(penaltyPerMs float64) TimeWindow {
	w.Type = Soft
	w.PenaltyPerMs = penaltyPerMs
	return w
}

// Validate checks internal consistency of the bounds.
func (w TimeWindow) Validate() error {
	if w.EarliestStartMs != nil && w.LatestEndMs != nil && *w.LatestEndMs < *w.EarliestStartMs {
		return fmt.Errorf("%w: window finish %d before start %d", ErrInvalidSpec, *w.LatestEndMs, *w.EarliestStartMs)
	}
	if w.EarliestStartMs != nil && w.LatestStartMs != nil && *w.LatestStartMs < *w.EarliestStartMs {
		return fmt.Errorf("%w: latest start %d before earliest start %d", ErrInvalidSpec, *w.LatestStartMs, *w.EarliestStartMs)
	}
	if w.EarliestEndMs != nil && w.LatestEndMs != nil && *w.LatestEndMs < *w.EarliestEndMs {
		return fmt.Errorf("%w: latest end %d before earliest end %d", ErrInvalidSpec, *w.LatestEndMs, *w.EarliestEndMs)
	}
	if w.Type == Soft && w.PenaltyPerMs < 0 {
		return fmt.Errorf("%w: negative penalty weight %f", ErrInvalidSpec, w.PenaltyPerMs)
	}
	return nil
}

// IsHard reports whether the window is a hard constraint. Windows with
// an empty type default to soft, matching the zero value.
func (w TimeWindow) IsHard() bool { return w.Type == Hard }

// WindowViolation quantifies by how much a placement misses a window.
type WindowViolation struct {
	EarlyMs int64   `json:"early_ms"`
	LateMs  int64   `json:"late_ms"`
	Hard    bool    `json:"hard"`
	Penalty float64 `json:"penalty"`
}

// TotalMs returns the combined violation amount.
func (v WindowViolation) TotalMs() int64 { return v.EarlyMs + v.LateMs }

// CheckViolation returns nil when [startMs, endMs) satisfies the
// window, or the violation amounts and penalty otherwise.
func (w TimeWindow) CheckViolation(startMs, endMs int64) *WindowViolation {
	var early, late int64
	if w.EarliestStartMs != nil && startMs < *w.EarliestStartMs {
		early += *w.EarliestStartMs - startMs
	}
	if w.LatestStartMs != nil && startMs > *w.LatestStartMs {
		late += startMs - *w.LatestStartMs
	}
	if w.EarliestEndMs != nil && endMs < *w.EarliestEndMs {
		early += *w.EarliestEndMs - endMs
	}
	if w.LatestEndMs != nil && endMs > *w.LatestEndMs {
		late += endMs - *w.LatestEndMs
	}
	if early == 0 && late == 0 {
		return nil
	}
	return &WindowViolation{
		EarlyMs: early,
		LateMs:  late,
		Hard:    w.IsHard(),
		Penalty: float64(early+late) * w.PenaltyPerMs,
	}
}
