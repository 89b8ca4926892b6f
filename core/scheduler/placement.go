package scheduler

import (
	"github.com/solvekit/uras/core/model"
)

// NoResource marks activities that run without one.
const NoResource = -1

// Placement is one candidate assignment of an activity, with the soft
// window violations it would incur. HardOK is false when a hard window
// cannot be met at this position.
type Placement struct {
	Assignment model.Assignment
	Violations []model.Violation
	HardOK     bool
}

// Place positions activity ai on resource ri (or NoResource) at the
// earliest feasible time from est, honoring calendars, capacity and
// window bounds. ok is false when no slot exists at all.
func (tl *Timeline) Place(ai, ri int, est int64) (Placement, bool) {
	a := tl.ins.Acts[ai]
	windows := tl.ins.WindowsFor(ai)

	dur := tl.ins.MeanDurationMs(ai)
	if ri != NoResource {
		dur = tl.ins.Resources[ri].EffectiveDurationMs(dur)
	}

	from := est
	for _, w := range windows {
		if w.EarliestStartMs != nil && *w.EarliestStartMs > from {
			from = *w.EarliestStartMs
		}
		// A hard earliest-end bound delays the start too: finishing
		// before it is just as infeasible as starting too early.
		if w.IsHard() && w.EarliestEndMs != nil {
			if t := *w.EarliestEndMs - dur; t > from {
				from = t
			}
		}
	}

	var start, end int64
	if ri == NoResource {
		start = from
		end = start + tl.ins.MeanDurationMs(ai)
	} else {
		var ok bool
		start, end, ok = tl.EarliestSlot(ri, from, tl.ins.MeanDurationMs(ai))
		if !ok {
			return Placement{}, false
		}
	}

	p := Placement{HardOK: true}
	p.Assignment = model.Assignment{
		ActivityID: a.ID,
		TaskID:     a.TaskID,
		StartMs:    start,
		EndMs:      end,
	}
	if ri != NoResource {
		p.Assignment.ResourceID = tl.ins.Resources[ri].ID
	}

	for _, w := range windows {
		v := w.CheckViolation(start, end)
		if v == nil {
			continue
		}
		if v.Hard {
			p.HardOK = false
			continue
		}
		p.Violations = append(p.Violations, model.Violation{
			Kind:     model.WindowViolation,
			EntityID: a.ID,
			Message:  "soft window missed",
			Penalty:  v.Penalty,
		})
	}
	return p, true
}

// PlaceBest tries every candidate resource of ai and returns the
// placement with the earliest end among those meeting hard windows,
// preferring candidate declaration order on ties. ok is false when no
// candidate admits a hard-feasible slot.
func (tl *Timeline) PlaceBest(ai int, est int64) (Placement, int, bool) {
	cands := tl.ins.Candidates(ai)
	if len(cands) == 0 {
		p, ok := tl.Place(ai, NoResource, est)
		if !ok || !p.HardOK {
			return Placement{}, NoResource, false
		}
		return p, NoResource, true
	}

	bestRi := NoResource
	var best Placement
	for _, ri := range cands {
		p, ok := tl.Place(ai, ri, est)
		if !ok || !p.HardOK {
			continue
		}
		if bestRi == NoResource || p.Assignment.EndMs < best.Assignment.EndMs {
			best = p
			bestRi = ri
		}
	}
	if bestRi == NoResource {
		return Placement{}, NoResource, false
	}
	return best, bestRi, true
}
