package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/solvekit/uras/core/dispatch"
	"github.com/solvekit/uras/core/model"
	"github.com/solvekit/uras/core/timespec"
)

func mustInstance(t *testing.T, tasks []model.Task, resources []model.Resource, cons []model.Constraint) *model.Instance {
	t.Helper()
	ins, err := model.NewInstance(tasks, resources, cons)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	return ins
}

func TestGreedySingleActivity(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(5000)).
				WithResources("machine", "M1", "M2")),
	}
	resources := []model.Resource{
		model.NewResource("M1"),
		model.NewResource("M2").WithEfficiency(0.9),
	}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	a := sched.ForActivity("A1")
	if a == nil || a.ResourceID != "M1" || a.StartMs != 0 || a.EndMs != 5000 {
		t.Fatalf("assignment = %+v, want M1 [0, 5000)", a)
	}
	if sched.MakespanMs != 5000 {
		t.Fatalf("makespan = %d, want 5000", sched.MakespanMs)
	}
}

func TestGreedyPrecedenceWithinTask(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").
			WithActivity(model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(3000)).
				WithResources("machine", "M1")).
			WithActivity(model.NewActivity("A2", "T1", 2).
				WithDuration(timespec.Fixed(2000)).
				WithResources("machine", "M2")),
	}
	resources := []model.Resource{model.NewResource("M1"), model.NewResource("M2")}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	a2 := sched.ForActivity("A2")
	if a2.StartMs != 3000 || a2.EndMs != 5000 {
		t.Fatalf("A2 = [%d, %d), want [3000, 5000)", a2.StartMs, a2.EndMs)
	}
}

func TestGreedyCapacitySerializes(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(4000)).WithResources("machine", "M1")),
		model.NewTask("T2").WithActivity(model.NewActivity("B1", "T2", 1).
			WithDuration(timespec.Fixed(4000)).WithResources("machine", "M1")),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sched.MakespanMs != 8000 {
		t.Fatalf("makespan = %d, want 8000 on a capacity-1 resource", sched.MakespanMs)
	}

	// Doubling capacity lets both run at once.
	resources = []model.Resource{model.NewResource("M1").WithCapacity(2)}
	ins = mustInstance(t, tasks, resources, nil)
	sched, err = NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sched.MakespanMs != 4000 {
		t.Fatalf("makespan = %d, want 4000 with capacity 2", sched.MakespanMs)
	}
}

func TestGreedyCalendarDelaysStart(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(2000)).WithResources("machine", "M1")),
	}
	resources := []model.Resource{
		model.NewResource("M1").WithCalendar(model.AlwaysAvailable().WithWindow(10_000, 50_000)),
	}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if a := sched.ForActivity("A1"); a.StartMs != 10_000 {
		t.Fatalf("start = %d, want 10000", a.StartMs)
	}
}

func TestGreedyEfficiencyStretchesDuration(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(10_000)).WithResources("machine", "M1")),
	}
	resources := []model.Resource{model.NewResource("M1").WithEfficiency(0.5)}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if a := sched.ForActivity("A1"); a.DurationMs() != 20_000 {
		t.Fatalf("duration = %d, want 20000 at efficiency 0.5", a.DurationMs())
	}
}

func TestGreedyInfeasibleDeadline(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(5000)).
			WithResources("machine", "M1").
			WithWindow(timespec.Deadline(3000))),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	_, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if !errors.Is(err, model.ErrInfeasible) {
		t.Fatalf("err = %v, want ErrInfeasible", err)
	}
}

func TestGreedySoftWindowPenalty(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(5000)).
			WithResources("machine", "M1").
			WithWindow(timespec.Deadline(3000).Soft(2))),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !sched.Feasible() {
		t.Fatal("soft violation should keep the schedule feasible")
	}
	if sched.PenaltyMs != 4000 {
		t.Fatalf("penalty = %f, want 2000ms late x weight 2", sched.PenaltyMs)
	}
}

func TestGreedyRespectsRelease(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithRelease(7000).WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(1000)).WithResources("machine", "M1")),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if a := sched.ForActivity("A1"); a.StartMs != 7000 {
		t.Fatalf("start = %d, want 7000", a.StartMs)
	}
}

func TestGreedyRuleOrderMatters(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(9000)).WithResources("machine", "M1")),
		model.NewTask("T2").WithActivity(model.NewActivity("B1", "T2", 1).
			WithDuration(timespec.Fixed(1000)).WithResources("machine", "M1")),
	}
	resources := []model.Resource{model.NewResource("M1")}

	ins := mustInstance(t, tasks, resources, nil)
	sched, err := NewGreedy(dispatch.NewEngine(dispatch.SPT{}), nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if a := sched.ForActivity("B1"); a.StartMs != 0 {
		t.Fatalf("spt should place B1 first, got start %d", a.StartMs)
	}

	ins = mustInstance(t, tasks, resources, nil)
	sched, err = NewGreedy(dispatch.NewEngine(dispatch.LPT{}), nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if a := sched.ForActivity("A1"); a.StartMs != 0 {
		t.Fatalf("lpt should place A1 first, got start %d", a.StartMs)
	}
}

func TestGreedyHardEarliestEndDelaysStart(t *testing.T) {
	// Finishing before 5000 violates the hard bound, so the 1000ms
	// activity must wait until 4000 instead of being declared
	// infeasible at time zero.
	minEnd := int64(5000)
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(1000)).
				WithResources("machine", "M1").
				WithWindow(timespec.TimeWindow{EarliestEndMs: &minEnd, Type: timespec.Hard})),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	a := sched.ForActivity("A1")
	if a.StartMs != 4000 || a.EndMs != 5000 {
		t.Fatalf("assignment = %+v, want start 4000 end 5000", a)
	}
}

func TestGreedyHardEarliestEndUsesEffectiveDuration(t *testing.T) {
	// At efficiency 0.5 the nominal 1000ms stretches to 2000ms, so the
	// start only needs pushing to 3000 to finish at the bound.
	minEnd := int64(5000)
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(1000)).
				WithResources("machine", "M1").
				WithWindow(timespec.TimeWindow{EarliestEndMs: &minEnd, Type: timespec.Hard})),
	}
	resources := []model.Resource{model.NewResource("M1").WithEfficiency(0.5)}
	ins := mustInstance(t, tasks, resources, nil)

	sched, err := NewGreedy(nil, nil).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	a := sched.ForActivity("A1")
	if a.StartMs != 3000 || a.EndMs != 5000 {
		t.Fatalf("assignment = %+v, want start 3000 end 5000", a)
	}
}
