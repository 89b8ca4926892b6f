package model

import (
	"errors"

	"github.com/solvekit/uras/core/timespec"
)

// ErrInvalidSpec reports malformed input, rejected before any
// algorithm runs. It aliases the timespec sentinel so callers can
// match either package with errors.Is.
var ErrInvalidSpec = timespec.ErrInvalidSpec

// ErrInfeasible reports that no schedule satisfies all hard
// constraints. It is a terminal outcome, never retried by the engine.
var ErrInfeasible = errors.New("infeasible")

// ErrInconsistentSchedule reports a schedule referencing activities or
// resources unknown to the originating task set. Downstream of this
// core it always indicates a programming error.
var ErrInconsistentSchedule = errors.New("inconsistent schedule")
