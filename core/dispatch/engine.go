package dispatch

import (
	"sort"
)

// Engine totally orders ready activities. The primary rule ranks;
// equal keys fall through the tie-breaker chain and finally the
// activity identifier, making the order a deterministic total order.
type Engine struct {
	primary     Rule
	tieBreakers []Rule
}

// NewEngine builds an engine from a primary rule and an optional
// tie-breaker chain.
func NewEngine(primary Rule, tieBreakers ...Rule) *Engine {
	return &Engine{primary: primary, tieBreakers: tieBreakers}
}

// Default returns the engine used when no rule chain is configured:
// shortest processing time, ties broken by earliest due date.
func Default() *Engine {
	return NewEngine(SPT{}, EDD{})
}

// FromChain resolves an ordered chain of rule names, the first being
// primary.
func FromChain(names []string, params map[string]float64) (*Engine, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	rules := make([]Rule, len(names))
	for i, name := range names {
		r, err := New(name, params)
		if err != nil {
			return nil, err
		}
		rules[i] = r
	}
	return NewEngine(rules[0], rules[1:]...), nil
}

// Less compares two activities under the full rule chain.
func (e *Engine) Less(ctx *Context, a, b int) bool {
	if ka, kb := e.primary.Key(ctx, a), e.primary.Key(ctx, b); ka != kb {
		return ka < kb
	}
	for _, tb := range e.tieBreakers {
		if ka, kb := tb.Key(ctx, a), tb.Key(ctx, b); ka != kb {
			return ka < kb
		}
	}
	return ctx.Ins.Acts[a].ID < ctx.Ins.Acts[b].ID
}

// Sort orders the activity indices in place by dispatch priority.
func (e *Engine) Sort(ctx *Context, ready []int) {
	sort.SliceStable(ready, func(i, j int) bool { return e.Less(ctx, ready[i], ready[j]) })
}

// SelectBest returns the highest-priority activity of the ready set;
// ok is false when the set is empty.
func (e *Engine) SelectBest(ctx *Context, ready []int) (int, bool) {
	if len(ready) == 0 {
		return 0, false
	}
	best := ready[0]
	for _, ai := range ready[1:] {
		if e.Less(ctx, ai, best) {
			best = ai
		}
	}
	return best, true
}
