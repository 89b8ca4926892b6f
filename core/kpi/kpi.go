// Package kpi scores completed schedules. All functions are stateless
// aggregations over a schedule and the instance it was built from.
package kpi

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/solvekit/uras/core/model"
)

// Report carries the quality metrics of one schedule.
type Report struct {
	MakespanMs       int64   `json:"makespan_ms"`
	TotalTardinessMs int64   `json:"total_tardiness_ms"`
	MeanTardinessMs  float64 `json:"mean_tardiness_ms"`
	MaxTardinessMs   int64   `json:"max_tardiness_ms"`
	// OnTimeRate is the fraction of due-dated tasks finishing on time;
	// 1 when no task has a due date.
	OnTimeRate     float64 `json:"on_time_rate"`
	MeanFlowTimeMs float64 `json:"mean_flow_time_ms"`
	PenaltyMs      float64 `json:"penalty_ms"`
	// Utilization maps resource id to busy time over calendar-available
	// time across the schedule horizon.
	Utilization map[string]float64 `json:"utilization"`
}

// Compute derives the report. It returns ErrInconsistentSchedule when
// the schedule references activities or resources missing from the
// instance, which is always a solver bug.
func Compute(ins *model.Instance, sched *model.Schedule) (*Report, error) {
	r := &Report{
		MakespanMs:  sched.MakespanMs,
		PenaltyMs:   sched.PenaltyMs,
		OnTimeRate:  1,
		Utilization: make(map[string]float64, len(ins.Resources)),
	}

	busy := make(map[string]int64, len(ins.Resources))
	for _, a := range sched.Assignments {
		if _, ok := ins.ActivityIndex(a.ActivityID); !ok {
			return nil, fmt.Errorf("%w: unknown activity %s", model.ErrInconsistentSchedule, a.ActivityID)
		}
		if a.ResourceID != "" {
			if _, ok := ins.ResourceIndex(a.ResourceID); !ok {
				return nil, fmt.Errorf("%w: unknown resource %s", model.ErrInconsistentSchedule, a.ResourceID)
			}
			busy[a.ResourceID] += a.DurationMs()
		}
	}

	var tardiness, flow []float64
	dueCount, onTime := 0, 0
	for _, t := range ins.Tasks {
		end, ok := sched.TaskCompletionMs(t.ID)
		if !ok {
			continue
		}
		release := int64(0)
		if t.ReleaseMs != nil {
			release = *t.ReleaseMs
		}
		flow = append(flow, float64(end-release))

		if t.DueMs == nil {
			continue
		}
		dueCount++
		late := end - *t.DueMs
		if late <= 0 {
			onTime++
			late = 0
		}
		tardiness = append(tardiness, float64(late))
		r.TotalTardinessMs += late
		if late > r.MaxTardinessMs {
			r.MaxTardinessMs = late
		}
	}
	if len(tardiness) > 0 {
		r.MeanTardinessMs = stat.Mean(tardiness, nil)
	}
	if len(flow) > 0 {
		r.MeanFlowTimeMs = stat.Mean(flow, nil)
	}
	if dueCount > 0 {
		r.OnTimeRate = float64(onTime) / float64(dueCount)
	}

	for _, res := range ins.Resources {
		available := r.MakespanMs
		if res.Calendar != nil {
			available = res.Calendar.AvailableTimeBetween(0, r.MakespanMs)
		}
		if available > 0 {
			r.Utilization[res.ID] = float64(busy[res.ID]) / float64(available)
		} else {
			r.Utilization[res.ID] = 0
		}
	}
	return r, nil
}
