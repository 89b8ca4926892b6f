package metrics

import (
	"context"

	"github.com/solvekit/uras/core/events"
	coremetrics "github.com/solvekit/uras/core/metrics"
	"github.com/solvekit/uras/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics
// for solver events. It stops when the context is canceled or the bus
// closes; the returned channel closes once all pending events are
// recorded, so one-shot callers can wait before exiting.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.SolveFinished:
					_ = sink.RecordSolve(coremetrics.SolveResult{
						RequestID:  e.RequestID,
						Algorithm:  e.Algorithm,
						Status:     e.Status,
						Feasible:   e.Feasible,
						MakespanMs: e.MakespanMs,
						PenaltyMs:  e.PenaltyMs,
						ElapsedMs:  e.ElapsedMs,
						Time:       e.Time,
					})
				case events.Progress:
					if r, ok := sink.(coremetrics.ProgressRecorder); ok {
						_ = r.RecordProgress(coremetrics.SearchProgress{
							RequestID: e.RequestID,
							Algorithm: e.Algorithm,
							Step:      e.Step,
							Count:     e.Count,
							BestCost:  e.BestCost,
							Time:      e.Time,
						})
					}
				}
			}
		}
	}()
	return done
}
