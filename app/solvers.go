package app

import (
	"context"

	"github.com/solvekit/uras/core/cp"
	"github.com/solvekit/uras/core/dispatch"
	"github.com/solvekit/uras/core/factory"
	"github.com/solvekit/uras/core/ga"
	"github.com/solvekit/uras/core/logger"
	"github.com/solvekit/uras/core/model"
	"github.com/solvekit/uras/core/scheduler"
)

// Stats carries per-algorithm search information back to the caller.
type Stats struct {
	Optimal     bool    `json:"optimal,omitempty"`
	Nodes       int64   `json:"nodes,omitempty"`
	Generations int     `json:"generations,omitempty"`
	Converged   bool    `json:"converged,omitempty"`
	Fitness     float64 `json:"fitness,omitempty"`
}

// Solver is one scheduling algorithm behind the engine boundary.
type Solver interface {
	Name() string
	Solve(ctx context.Context, ins *model.Instance) (*model.Schedule, Stats, error)
}

type progressFunc func(step string, count int64, best float64)

// progressAware solvers emit periodic search progress. The engine
// bridges the callback onto the event bus.
type progressAware interface {
	onProgress(fn progressFunc)
}

// greedyConf configures the dispatching-rule chain of the greedy
// scheduler.
type greedyConf struct {
	Rules      []string           `json:"rules"`
	RuleParams map[string]float64 `json:"rule_params"`
}

type greedySolver struct {
	inner *scheduler.Greedy
}

func (greedySolver) Name() string { return "greedy" }

func (s greedySolver) Solve(ctx context.Context, ins *model.Instance) (*model.Schedule, Stats, error) {
	sched, err := s.inner.Solve(ctx, ins)
	return sched, Stats{}, err
}

type cpSolver struct {
	inner *cp.Solver
}

func (cpSolver) Name() string { return "cpsat" }

func (s cpSolver) Solve(ctx context.Context, ins *model.Instance) (*model.Schedule, Stats, error) {
	res, err := s.inner.Solve(ctx, ins)
	stats := Stats{Optimal: res.Optimal, Nodes: res.Nodes}
	if err != nil {
		return nil, stats, err
	}
	return res.Schedule, stats, nil
}

func (s cpSolver) onProgress(fn progressFunc) {
	s.inner.OnProgress(func(nodes int64, best float64) { fn("node", nodes, best) })
}

type gaSolver struct {
	inner *ga.Scheduler
}

func (gaSolver) Name() string { return "ga" }

func (s gaSolver) Solve(ctx context.Context, ins *model.Instance) (*model.Schedule, Stats, error) {
	res, err := s.inner.Solve(ctx, ins)
	stats := Stats{Generations: res.Generations, Converged: res.Converged, Fitness: res.Fitness}
	// The best schedule is returned even when it breaks hard
	// constraints so callers can inspect the violations.
	return res.Schedule, stats, err
}

func (s gaSolver) onProgress(fn progressFunc) {
	s.inner.OnProgress(func(gen int, best float64) { fn("generation", int64(gen), best) })
}

// newSolverRegistry wires the three algorithms behind the generic
// factory so requests select them by name.
func newSolverRegistry(log logger.Logger) *factory.Registry[Solver] {
	reg := factory.NewRegistry[Solver]()

	_ = reg.Register("greedy", func(conf map[string]any) (Solver, error) {
		var c greedyConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		eng, err := dispatch.FromChain(c.Rules, c.RuleParams)
		if err != nil {
			return nil, err
		}
		return greedySolver{inner: scheduler.NewGreedy(eng, log)}, nil
	})

	_ = reg.Register("cpsat", func(conf map[string]any) (Solver, error) {
		var c cp.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		inner, err := cp.New(c, log)
		if err != nil {
			return nil, err
		}
		return cpSolver{inner: inner}, nil
	})

	_ = reg.Register("ga", func(conf map[string]any) (Solver, error) {
		var c ga.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		inner, err := ga.New(c, log)
		if err != nil {
			return nil, err
		}
		return gaSolver{inner: inner}, nil
	})

	return reg
}
