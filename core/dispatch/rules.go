package dispatch

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownRule reports a rule name missing from the catalogue.
var ErrUnknownRule = errors.New("unknown dispatching rule")

// epsilon guards divisions by zero remaining work.
const epsilon = 1e-6

// unranked places activities the rule cannot score (no due date) after
// every scored one while keeping them comparable among themselves.
const unranked = math.MaxFloat64

// Rule computes a priority key for an activity; lower keys dispatch
// first. Rules are pure functions of the context and must not retain
// state across calls.
type Rule interface {
	Name() string
	Key(ctx *Context, ai int) float64
}

// SPT dispatches the shortest processing time first.
type SPT struct{}

func (SPT) Name() string                     { return "spt" }
func (SPT) Key(ctx *Context, ai int) float64 { return ctx.ProcessingMs(ai) }

// LPT dispatches the longest processing time first.
type LPT struct{}

func (LPT) Name() string                     { return "lpt" }
func (LPT) Key(ctx *Context, ai int) float64 { return -ctx.ProcessingMs(ai) }

// LWKR prefers tasks with the least remaining work.
type LWKR struct{}

func (LWKR) Name() string { return "lwkr" }
func (LWKR) Key(ctx *Context, ai int) float64 {
	return ctx.RemainingWorkMs[ctx.Ins.TaskOf(ai).ID]
}

// MWKR prefers tasks with the most remaining work.
type MWKR struct{}

func (MWKR) Name() string { return "mwkr" }
func (MWKR) Key(ctx *Context, ai int) float64 {
	return -ctx.RemainingWorkMs[ctx.Ins.TaskOf(ai).ID]
}

// EDD dispatches the earliest due date first; undated tasks go last.
type EDD struct{}

func (EDD) Name() string { return "edd" }
func (EDD) Key(ctx *Context, ai int) float64 {
	due, ok := ctx.DueMs(ai)
	if !ok {
		return unranked
	}
	return float64(due)
}

// MST dispatches minimum slack first.
type MST struct{}

func (MST) Name() string { return "mst" }
func (MST) Key(ctx *Context, ai int) float64 {
	slack, ok := ctx.SlackMs(ai)
	if !ok {
		return unranked
	}
	return slack
}

// CR dispatches by critical ratio: (due - now) / remaining work,
// ascending, so ratios below one signal tasks already running late.
type CR struct{}

func (CR) Name() string { return "cr" }
func (CR) Key(ctx *Context, ai int) float64 {
	due, ok := ctx.DueMs(ai)
	if !ok {
		return unranked
	}
	remaining := ctx.RemainingWorkMs[ctx.Ins.TaskOf(ai).ID]
	if remaining < epsilon {
		remaining = epsilon
	}
	return float64(due-ctx.NowMs) / remaining
}

// SRO dispatches by slack per remaining operation.
type SRO struct{}

func (SRO) Name() string { return "sro" }
func (SRO) Key(ctx *Context, ai int) float64 {
	slack, ok := ctx.SlackMs(ai)
	if !ok {
		return unranked
	}
	ops := ctx.RemainingOps[ctx.Ins.TaskOf(ai).ID]
	if ops < 1 {
		ops = 1
	}
	return slack / float64(ops)
}

// FIFO dispatches in arrival order.
type FIFO struct{}

func (FIFO) Name() string                     { return "fifo" }
func (FIFO) Key(ctx *Context, ai int) float64 { return float64(ctx.ArrivalMs[ai]) }

// WINQ prefers activities whose best candidate resource holds the
// least queued work.
type WINQ struct{}

func (WINQ) Name() string { return "winq" }
func (WINQ) Key(ctx *Context, ai int) float64 {
	cands := ctx.Ins.Candidates(ai)
	if len(cands) == 0 {
		return 0
	}
	best := math.MaxFloat64
	for _, ri := range cands {
		if q := ctx.QueuedWorkMs[ri]; q < best {
			best = q
		}
	}
	return best
}

// LPUL prefers activities that can run on the least-utilized resource.
type LPUL struct{}

func (LPUL) Name() string { return "lpul" }
func (LPUL) Key(ctx *Context, ai int) float64 {
	cands := ctx.Ins.Candidates(ai)
	if len(cands) == 0 {
		return 0
	}
	best := math.MaxFloat64
	for _, ri := range cands {
		if u := ctx.Utilization[ri]; u < best {
			best = u
		}
	}
	return best
}

// ATC dispatches by apparent tardiness cost with look-ahead factor K:
// score = (1/p) * exp(-max(0, slack) / (K * avg_p)), highest first.
type ATC struct {
	K float64
}

func (ATC) Name() string { return "atc" }
func (r ATC) Key(ctx *Context, ai int) float64 {
	p := ctx.ProcessingMs(ai)
	if p < epsilon {
		p = epsilon
	}
	k := r.K
	if k <= 0 {
		k = 3
	}
	avg := ctx.AvgProcessingMs
	if avg < epsilon {
		avg = epsilon
	}
	slack, ok := ctx.SlackMs(ai)
	if !ok {
		// Undated tasks rank last, matching edd, mst and cr.
		return unranked
	}
	if slack < 0 {
		slack = 0
	}
	return -(1 / p) * math.Exp(-slack/(k*avg))
}

// WSPT dispatches by processing time over task weight.
type WSPT struct{}

func (WSPT) Name() string { return "wspt" }
func (WSPT) Key(ctx *Context, ai int) float64 {
	return ctx.ProcessingMs(ai) / ctx.Weight(ai)
}

// Names lists the rule catalogue in dispatch order preference, from
// processing-time rules to due-date and load-based rules.
func Names() []string {
	return []string{
		"spt", "lpt", "lwkr", "mwkr", "edd", "mst", "cr",
		"sro", "fifo", "winq", "lpul", "atc", "wspt",
	}
}

// New resolves a rule by its catalogue name. Rule-specific parameters
// come from params; ATC reads "k".
func New(name string, params map[string]float64) (Rule, error) {
	switch name {
	case "spt":
		return SPT{}, nil
	case "lpt":
		return LPT{}, nil
	case "lwkr":
		return LWKR{}, nil
	case "mwkr":
		return MWKR{}, nil
	case "edd":
		return EDD{}, nil
	case "mst":
		return MST{}, nil
	case "cr":
		return CR{}, nil
	case "sro":
		return SRO{}, nil
	case "fifo":
		return FIFO{}, nil
	case "winq":
		return WINQ{}, nil
	case "lpul":
		return LPUL{}, nil
	case "atc":
		return ATC{K: params["k"]}, nil
	case "wspt":
		return WSPT{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
}
