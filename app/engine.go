package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solvekit/uras/core/events"
	"github.com/solvekit/uras/core/factory"
	"github.com/solvekit/uras/core/kpi"
	"github.com/solvekit/uras/core/logger"
	"github.com/solvekit/uras/core/model"
	"github.com/solvekit/uras/internal/eventbus"
)

// Failure kinds returned in Response.Failure.Kind.
const (
	FailInvalidSpec = "invalid_spec"
	FailInfeasible  = "infeasible"
	FailInternal    = "internal"
)

// Request is one self-contained scheduling problem plus the algorithm
// to run on it. Algorithm.Type selects a registered solver ("greedy",
// "cpsat" or "ga") and Algorithm.Conf carries its configuration.
type Request struct {
	Tasks       []model.Task         `json:"tasks"`
	Resources   []model.Resource     `json:"resources"`
	Constraints []model.Constraint   `json:"constraints,omitempty"`
	Algorithm   factory.ModuleConfig `json:"algorithm"`
}

// Failure explains why no schedule was produced.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response is the outcome of one request. Exactly one of Schedule and
// Failure is set, except for infeasible runs of the genetic scheduler
// which return their best schedule alongside the failure.
type Response struct {
	RequestID string          `json:"request_id"`
	Algorithm string          `json:"algorithm"`
	Schedule  *model.Schedule `json:"schedule,omitempty"`
	KPI       *kpi.Report     `json:"kpi,omitempty"`
	Stats     Stats           `json:"stats"`
	ElapsedMs int64           `json:"elapsed_ms"`
	Failure   *Failure        `json:"failure,omitempty"`
}

// Engine is the solving boundary. It compiles requests, runs the
// selected algorithm and scores the result.
type Engine struct {
	log logger.Logger
	bus eventbus.EventBus
	reg *factory.Registry[Solver]
}

// New creates an Engine. Both arguments may be nil; events are then
// dropped and logging is disabled.
func New(log logger.Logger, bus eventbus.EventBus) *Engine {
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{
		log: log,
		bus: bus,
		reg: newSolverRegistry(log),
	}
}

// Algorithms returns the names of the registered solvers.
func (e *Engine) Algorithms() []string { return e.reg.Names() }

// Solve runs one request end to end. It never returns an error;
// failures are reported in the response so callers can serialize the
// outcome unconditionally.
func (e *Engine) Solve(ctx context.Context, req Request) Response {
	started := time.Now()
	resp := Response{
		RequestID: uuid.NewString(),
		Algorithm: req.Algorithm.Type,
	}

	ins, err := model.NewInstance(req.Tasks, req.Resources, req.Constraints)
	if err != nil {
		e.log.Warnf("request %s rejected: %v", resp.RequestID, err)
		resp.Failure = &Failure{Kind: FailInvalidSpec, Message: err.Error()}
		e.finish(&resp, nil, started)
		return resp
	}

	solver, err := e.reg.Create(req.Algorithm)
	if err != nil {
		e.log.Warnf("request %s rejected: %v", resp.RequestID, err)
		resp.Failure = &Failure{Kind: FailInvalidSpec, Message: err.Error()}
		e.finish(&resp, nil, started)
		return resp
	}

	if pa, ok := solver.(progressAware); ok && e.bus != nil {
		reqID, algo := resp.RequestID, solver.Name()
		pa.onProgress(func(step string, count int64, best float64) {
			e.bus.Publish(events.Progress{
				RequestID: reqID,
				Algorithm: algo,
				Step:      step,
				Count:     count,
				BestCost:  best,
				Time:      time.Now(),
			})
		})
	}

	e.publish(events.SolveStarted{
		RequestID:  resp.RequestID,
		Algorithm:  solver.Name(),
		Activities: len(ins.Acts),
		Resources:  len(ins.Resources),
		Time:       started,
	})
	e.log.Infof("request %s: solving %d activities on %d resources with %s",
		resp.RequestID, len(ins.Acts), len(ins.Resources), solver.Name())

	sched, stats, err := solver.Solve(ctx, ins)
	resp.Stats = stats
	switch {
	case errors.Is(err, model.ErrInfeasible):
		resp.Failure = &Failure{Kind: FailInfeasible, Message: err.Error()}
		// The genetic scheduler still reports its best attempt.
		resp.Schedule = sched
	case err != nil:
		e.log.Errorf("request %s: %s failed: %v", resp.RequestID, solver.Name(), err)
		resp.Failure = &Failure{Kind: FailInternal, Message: err.Error()}
	case sched == nil:
		resp.Failure = &Failure{
			Kind:    FailInfeasible,
			Message: "search budget exhausted without a feasible schedule",
		}
	default:
		resp.Schedule = sched
		report, kerr := kpi.Compute(ins, sched)
		if kerr != nil {
			e.log.Errorf("request %s: scoring failed: %v", resp.RequestID, kerr)
			resp.Schedule = nil
			resp.Failure = &Failure{Kind: FailInternal, Message: kerr.Error()}
		} else {
			resp.KPI = report
		}
	}

	e.finish(&resp, sched, started)
	return resp
}

// SolveJSON is the serialized boundary: it decodes a request, solves
// it and encodes the response. Malformed input still produces a valid
// response document.
func (e *Engine) SolveJSON(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		resp := Response{
			RequestID: uuid.NewString(),
			Failure:   &Failure{Kind: FailInvalidSpec, Message: fmt.Sprintf("decode request: %v", err)},
		}
		out, _ := json.Marshal(resp)
		return out
	}
	out, err := json.Marshal(e.Solve(ctx, req))
	if err != nil {
		// Responses are plain data; this cannot happen in practice.
		fallback, _ := json.Marshal(Response{
			Failure: &Failure{Kind: FailInternal, Message: err.Error()},
		})
		return fallback
	}
	return out
}

func (e *Engine) finish(resp *Response, sched *model.Schedule, started time.Time) {
	resp.ElapsedMs = time.Since(started).Milliseconds()

	status := "ok"
	if resp.Failure != nil {
		switch resp.Failure.Kind {
		case FailInvalidSpec:
			status = "invalid_spec"
		case FailInfeasible:
			status = "infeasible"
		default:
			status = "error"
		}
	}
	ev := events.SolveFinished{
		RequestID: resp.RequestID,
		Algorithm: resp.Algorithm,
		Status:    status,
		ElapsedMs: resp.ElapsedMs,
		Time:      time.Now(),
	}
	if sched != nil {
		ev.Feasible = sched.Feasible()
		ev.MakespanMs = sched.MakespanMs
		ev.PenaltyMs = sched.PenaltyMs
	}
	e.publish(ev)
	e.log.Infof("request %s: %s in %dms", resp.RequestID, status, resp.ElapsedMs)
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
