package ga

import (
	"math/rand"

	"github.com/solvekit/uras/core/model"
	"github.com/solvekit/uras/core/scheduler"
)

// hardPenalty dominates any realistic makespan or soft penalty so an
// individual with hard violations never beats a clean one.
const hardPenalty = 1e12

// chromosome is the dual-vector encoding: seq is a topological
// permutation of activity indices, res the chosen resource index per
// activity (scheduler.NoResource when the activity needs none).
type chromosome struct {
	seq []int
	res []int
}

func (c chromosome) clone() chromosome {
	return chromosome{
		seq: append([]int(nil), c.seq...),
		res: append([]int(nil), c.res...),
	}
}

// evaluation is the decoded outcome of one chromosome.
type evaluation struct {
	schedule   *model.Schedule
	fitness    float64
	hardBreach bool
}

// decode places the sequence left to right on the shared placement
// logic. It is a pure function of the chromosome and the read-only
// instance, safe to run concurrently.
func decode(ins *model.Instance, c chromosome, wMakespan, wPenalty float64) evaluation {
	tl := scheduler.NewTimeline(ins)
	sched := model.NewSchedule()
	endOf := make([]int64, ins.NumActivities())
	hard := 0

	for _, ai := range c.seq {
		est := ins.ReleaseMs(ai)
		for _, e := range ins.Predecessors(ai) {
			if t := endOf[e.From] + e.DelayMs; t > est {
				est = t
			}
		}

		ri := c.res[ai]
		p, ok := tl.Place(ai, ri, est)
		if !ok {
			// The calendar can never host the block; pin the activity at
			// its earliest start so the schedule stays complete and let
			// the hard-breach penalty speak.
			p, _ = tl.Place(ai, scheduler.NoResource, est)
			p.HardOK = false
		}
		if !p.HardOK {
			hard++
			sched.AddViolation(model.Violation{
				Kind:     model.WindowViolation,
				EntityID: ins.Acts[ai].ID,
				Message:  "hard window missed",
				Hard:     true,
			})
		}
		if ri != scheduler.NoResource && ok {
			tl.Commit(ri, p.Assignment.StartMs, p.Assignment.EndMs)
		}
		sched.Add(p.Assignment)
		for _, v := range p.Violations {
			sched.AddViolation(v)
		}
		endOf[ai] = p.Assignment.EndMs
	}

	fitness := wMakespan*float64(sched.MakespanMs) + wPenalty*sched.PenaltyMs + float64(hard)*hardPenalty
	return evaluation{schedule: sched, fitness: fitness, hardBreach: hard > 0}
}

// randomTopoOrder draws a uniformly random precedence-valid sequence.
func randomTopoOrder(ins *model.Instance, rng *rand.Rand) []int {
	n := ins.NumActivities()
	indeg := make([]int, n)
	for ai := 0; ai < n; ai++ {
		indeg[ai] = len(ins.Predecessors(ai))
	}
	avail := make([]int, 0, n)
	for ai := 0; ai < n; ai++ {
		if indeg[ai] == 0 {
			avail = append(avail, ai)
		}
	}
	order := make([]int, 0, n)
	for len(avail) > 0 {
		i := rng.Intn(len(avail))
		ai := avail[i]
		avail[i] = avail[len(avail)-1]
		avail = avail[:len(avail)-1]
		order = append(order, ai)
		for _, e := range ins.Successors(ai) {
			indeg[e.To]--
			if indeg[e.To] == 0 {
				avail = append(avail, e.To)
			}
		}
	}
	return order
}

// repairSequence rebuilds a precedence-valid order that follows the
// priorities of the given (possibly invalid) sequence as closely as
// possible.
func repairSequence(ins *model.Instance, seq []int) []int {
	n := ins.NumActivities()
	rank := make([]int, n)
	for pos, ai := range seq {
		rank[ai] = pos
	}
	indeg := make([]int, n)
	for ai := 0; ai < n; ai++ {
		indeg[ai] = len(ins.Predecessors(ai))
	}
	avail := make([]int, 0, n)
	for ai := 0; ai < n; ai++ {
		if indeg[ai] == 0 {
			avail = append(avail, ai)
		}
	}
	order := make([]int, 0, n)
	for len(avail) > 0 {
		best := 0
		for i := 1; i < len(avail); i++ {
			if rank[avail[i]] < rank[avail[best]] {
				best = i
			}
		}
		ai := avail[best]
		avail[best] = avail[len(avail)-1]
		avail = avail[:len(avail)-1]
		order = append(order, ai)
		for _, e := range ins.Successors(ai) {
			indeg[e.To]--
			if indeg[e.To] == 0 {
				avail = append(avail, e.To)
			}
		}
	}
	return order
}

// randomResources assigns every activity a random candidate.
func randomResources(ins *model.Instance, rng *rand.Rand) []int {
	res := make([]int, ins.NumActivities())
	for ai := range res {
		cands := ins.Candidates(ai)
		if len(cands) == 0 {
			res[ai] = scheduler.NoResource
			continue
		}
		res[ai] = cands[rng.Intn(len(cands))]
	}
	return res
}

// balancedResources spreads activities round-robin over each
// candidate set so no single resource starts overloaded.
func balancedResources(ins *model.Instance) []int {
	res := make([]int, ins.NumActivities())
	load := make(map[int]int, len(ins.Resources))
	for ai := range res {
		cands := ins.Candidates(ai)
		if len(cands) == 0 {
			res[ai] = scheduler.NoResource
			continue
		}
		best := cands[0]
		for _, ri := range cands[1:] {
			if load[ri] < load[best] {
				best = ri
			}
		}
		res[ai] = best
		load[best]++
	}
	return res
}

// fastestResources picks each activity's highest-efficiency candidate.
func fastestResources(ins *model.Instance) []int {
	res := make([]int, ins.NumActivities())
	for ai := range res {
		cands := ins.Candidates(ai)
		if len(cands) == 0 {
			res[ai] = scheduler.NoResource
			continue
		}
		best := cands[0]
		for _, ri := range cands[1:] {
			if ins.Resources[ri].Efficiency > ins.Resources[best].Efficiency {
				best = ri
			}
		}
		res[ai] = best
	}
	return res
}
