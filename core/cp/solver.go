package cp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/solvekit/uras/core/dispatch"
	"github.com/solvekit/uras/core/logger"
	"github.com/solvekit/uras/core/model"
	"github.com/solvekit/uras/core/scheduler"
)

// Config bounds the search and weights the objective.
type Config struct {
	// TimeLimitMs caps wall-clock search time.
	TimeLimitMs int64 `json:"time_limit_ms"`
	// MaxNodes caps expanded search nodes.
	MaxNodes int64 `json:"max_nodes"`
	// MakespanWeight and PenaltyWeight combine into the objective
	// makespan*wm + penalty*wp, lower is better.
	MakespanWeight float64 `json:"makespan_weight"`
	PenaltyWeight  float64 `json:"penalty_weight"`
	// Rules names the dispatching rule chain breaking ties between
	// equally constrained branching candidates; empty uses the
	// dispatch default chain.
	Rules      []string           `json:"rules"`
	RuleParams map[string]float64 `json:"rule_params"`
}

// SetDefaults fills unset fields with working values.
func (c *Config) SetDefaults() {
	if c.TimeLimitMs <= 0 {
		c.TimeLimitMs = 5000
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = 200_000
	}
	if c.MakespanWeight == 0 {
		c.MakespanWeight = 1
	}
	if c.PenaltyWeight == 0 {
		c.PenaltyWeight = 1
	}
}

// Result is the search outcome. Schedule is nil only when the budget
// ran out before any feasible schedule was found; Optimal reports
// whether the search space was exhausted, proving the best found.
type Result struct {
	Schedule  *model.Schedule
	Optimal   bool
	Nodes     int64
	ElapsedMs int64
}

// progressInterval is the node count between progress callbacks.
const progressInterval = 1024

// Solver runs propagate-then-search over one instance at a time.
type Solver struct {
	cfg      Config
	log      logger.Logger
	engine   *dispatch.Engine
	progress func(nodes int64, best float64)
}

// OnProgress installs a callback invoked periodically during search
// with the node count and incumbent cost. It must be set before Solve.
func (s *Solver) OnProgress(fn func(nodes int64, best float64)) {
	s.progress = fn
}

// New returns a solver with the given budgets, weights and tie-break
// rule chain. It fails on an unknown rule name.
func New(cfg Config, log logger.Logger) (*Solver, error) {
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop{}
	}
	engine, err := dispatch.FromChain(cfg.Rules, cfg.RuleParams)
	if err != nil {
		return nil, err
	}
	return &Solver{cfg: cfg, log: log, engine: engine}, nil
}

// state is one node's complete search state, copied on branch.
type state struct {
	dom        *domains
	tl         *scheduler.Timeline
	done       []bool
	endOf      []int64
	assigns    []model.Assignment
	viols      []model.Violation
	placed     int
	penalty    float64
	makespanMs int64
}

func (st *state) clone() *state {
	cp := &state{
		dom:        st.dom.clone(),
		tl:         st.tl.Clone(),
		done:       append([]bool(nil), st.done...),
		endOf:      append([]int64(nil), st.endOf...),
		assigns:    append([]model.Assignment(nil), st.assigns...),
		viols:      append([]model.Violation(nil), st.viols...),
		placed:     st.placed,
		penalty:    st.penalty,
		makespanMs: st.makespanMs,
	}
	return cp
}

// choice is one branch: place activity ai on resource ri (or
// scheduler.NoResource) at startMs.
type choice struct {
	ai      int
	ri      int
	startMs int64
	endMs   int64
}

type frame struct {
	st      *state
	choices []choice
	next    int
}

// Solve reduces domains, then searches for the best schedule under the
// configured budgets. It returns ErrInfeasible when propagation or an
// exhausted search proves no schedule exists.
func (s *Solver) Solve(ctx context.Context, ins *model.Instance) (Result, error) {
	started := time.Now()
	deadline := started.Add(time.Duration(s.cfg.TimeLimitMs) * time.Millisecond)
	res := Result{}

	root := &state{
		dom:   newDomains(ins),
		tl:    scheduler.NewTimeline(ins),
		done:  make([]bool, ins.NumActivities()),
		endOf: make([]int64, ins.NumActivities()),
	}
	if err := propagate(ins, root.dom); err != nil {
		res.ElapsedMs = time.Since(started).Milliseconds()
		return res, err
	}

	n := ins.NumActivities()
	if n == 0 {
		res.Schedule = model.NewSchedule()
		res.Optimal = true
		return res, nil
	}

	var best *model.Schedule
	bestCost := 0.0
	exhausted := true

	stack := []*frame{{st: root, choices: s.branches(ins, root)}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if res.Nodes >= s.cfg.MaxNodes || time.Now().After(deadline) {
			exhausted = false
			break
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.choices) {
			stack = stack[:len(stack)-1]
			continue
		}
		ch := top.choices[top.next]
		top.next++
		res.Nodes++
		if s.progress != nil && res.Nodes%progressInterval == 0 {
			s.progress(res.Nodes, bestCost)
		}

		child := top.st.clone()
		s.apply(ins, child, ch)

		// Bound: makespan and penalty only grow along a branch.
		if best != nil {
			lower := s.cfg.MakespanWeight*float64(child.makespanMs) + s.cfg.PenaltyWeight*child.penalty
			if lower >= bestCost {
				continue
			}
		}

		if err := propagate(ins, child.dom); err != nil {
			continue
		}

		if child.placed == n {
			cost := s.cfg.MakespanWeight*float64(child.makespanMs) + s.cfg.PenaltyWeight*child.penalty
			if best == nil || cost < bestCost {
				best = buildSchedule(child)
				bestCost = cost
				s.log.Debugw("incumbent improved", map[string]any{
					"cost":        cost,
					"makespan_ms": child.makespanMs,
					"nodes":       res.Nodes,
				})
			}
			continue
		}

		choices := s.branches(ins, child)
		if len(choices) == 0 {
			continue
		}
		stack = append(stack, &frame{st: child, choices: choices})
	}

	res.ElapsedMs = time.Since(started).Milliseconds()
	res.Schedule = best
	res.Optimal = exhausted && best != nil
	if best == nil && exhausted {
		return res, fmt.Errorf("%w: search space exhausted without a schedule", model.ErrInfeasible)
	}
	s.log.Infof("cp search done: nodes=%d optimal=%v elapsed=%dms", res.Nodes, res.Optimal, res.ElapsedMs)
	return res, nil
}

// branches picks the most constrained ready activity, breaking ties
// with the configured dispatching rule chain, and enumerates its
// feasible placements, earliest completion first.
func (s *Solver) branches(ins *model.Instance, st *state) []choice {
	dctx := dispatch.NewContext(ins, st.makespanMs)
	for i := 0; i < ins.NumActivities(); i++ {
		if st.done[i] {
			dctx.MarkScheduled(i)
		}
	}

	ai := -1
	domSize := 0
	for i := 0; i < ins.NumActivities(); i++ {
		if st.done[i] {
			continue
		}
		ready := true
		for _, e := range ins.Predecessors(i) {
			if !st.done[e.From] {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		size := len(st.dom.res[i])
		if size == 0 {
			size = 1
		}
		if ai < 0 || size < domSize ||
			(size == domSize && s.engine.Less(dctx, i, ai)) {
			ai = i
			domSize = size
		}
	}
	if ai < 0 {
		return nil
	}

	est := st.dom.lb[ai]
	for _, e := range ins.Predecessors(ai) {
		if t := st.endOf[e.From] + e.DelayMs; t > est {
			est = t
		}
	}

	var out []choice
	if len(ins.Candidates(ai)) == 0 {
		p, ok := st.tl.Place(ai, scheduler.NoResource, est)
		if ok && p.HardOK && p.Assignment.StartMs <= st.dom.ub[ai] {
			out = append(out, choice{ai: ai, ri: scheduler.NoResource, startMs: p.Assignment.StartMs, endMs: p.Assignment.EndMs})
		}
		return out
	}
	for _, ri := range st.dom.res[ai] {
		p, ok := st.tl.Place(ai, ri, est)
		if !ok || !p.HardOK || p.Assignment.StartMs > st.dom.ub[ai] {
			continue
		}
		out = append(out, choice{ai: ai, ri: ri, startMs: p.Assignment.StartMs, endMs: p.Assignment.EndMs})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].endMs != out[j].endMs {
			return out[i].endMs < out[j].endMs
		}
		return out[i].ri < out[j].ri
	})
	return out
}

// apply commits one choice onto the child state.
func (s *Solver) apply(ins *model.Instance, st *state, ch choice) {
	a := ins.Acts[ch.ai]
	assignment := model.Assignment{
		ActivityID: a.ID,
		TaskID:     a.TaskID,
		StartMs:    ch.startMs,
		EndMs:      ch.endMs,
	}
	if ch.ri != scheduler.NoResource {
		assignment.ResourceID = ins.Resources[ch.ri].ID
		st.tl.Commit(ch.ri, ch.startMs, ch.endMs)
	}
	st.assigns = append(st.assigns, assignment)
	st.done[ch.ai] = true
	st.endOf[ch.ai] = ch.endMs
	st.placed++
	if ch.endMs > st.makespanMs {
		st.makespanMs = ch.endMs
	}
	st.dom.assign(ins, ch.ai, ch.ri, ch.startMs)

	for _, w := range ins.WindowsFor(ch.ai) {
		v := w.CheckViolation(ch.startMs, ch.endMs)
		if v == nil || v.Hard {
			continue
		}
		st.viols = append(st.viols, model.Violation{
			Kind:     model.WindowViolation,
			EntityID: a.ID,
			Message:  "soft window missed",
			Penalty:  v.Penalty,
		})
		st.penalty += v.Penalty
	}
}

func buildSchedule(st *state) *model.Schedule {
	sched := model.NewSchedule()
	for _, a := range st.assigns {
		sched.Add(a)
	}
	for _, v := range st.viols {
		sched.AddViolation(v)
	}
	return sched
}
