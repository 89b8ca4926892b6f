package cp

import (
	"context"
	"errors"
	"testing"

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

func mustSolver(t *testing.T, cfg Config) *Solver {
	t.Helper()
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSolveSingleActivityOptimal(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(5000)).
				WithResources("machine", "M1", "M2")),
	}
	resources := []model.Resource{
		model.NewResource("M1"),
		model.NewResource("M2").WithEfficiency(0.5),
	}
	ins := mustInstance(t, tasks, resources, nil)

	res, err := mustSolver(t, Config{}).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Optimal {
		t.Fatal("tiny instance should be proven optimal")
	}
	a := res.Schedule.ForActivity("A1")
	if a.ResourceID != "M1" || a.EndMs != 5000 {
		t.Fatalf("assignment = %+v, want M1 ending 5000", a)
	}
}

func TestPropagationProvesInfeasibleWithoutSearch(t *testing.T) {
	// A1 then A2, both 5000ms, but A2 must end by 8000: propagation
	// pushes A2's earliest start to 5000 and its latest start to 3000.
	tasks := []model.Task{
		model.NewTask("T1").
			WithActivity(model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(5000)).
				WithResources("machine", "M1")).
			WithActivity(model.NewActivity("A2", "T1", 2).
				WithDuration(timespec.Fixed(5000)).
				WithResources("machine", "M1").
				WithWindow(timespec.Deadline(8000))),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	res, err := mustSolver(t, Config{}).Solve(context.Background(), ins)
	if !errors.Is(err, model.ErrInfeasible) {
		t.Fatalf("err = %v, want ErrInfeasible", err)
	}
	if res.Nodes != 0 {
		t.Fatalf("nodes = %d, want 0: infeasibility must be proven before search", res.Nodes)
	}
}

func TestSolvePrefersFasterCompletion(t *testing.T) {
	// Two independent tasks on one machine apiece: the solver should
	// spread them rather than queue both on M1.
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(6000)).WithResources("machine", "M1", "M2")),
		model.NewTask("T2").WithActivity(model.NewActivity("B1", "T2", 1).
			WithDuration(timespec.Fixed(6000)).WithResources("machine", "M1", "M2")),
	}
	resources := []model.Resource{model.NewResource("M1"), model.NewResource("M2")}
	ins := mustInstance(t, tasks, resources, nil)

	res, err := mustSolver(t, Config{}).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Schedule.MakespanMs != 6000 {
		t.Fatalf("makespan = %d, want 6000 with both machines used", res.Schedule.MakespanMs)
	}
	if !res.Optimal {
		t.Fatal("small search space should be exhausted")
	}
}

func TestSolveRespectsPrecedenceDelay(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(model.NewActivity("A1", "T1", 1).
			WithDuration(timespec.Fixed(2000)).WithResources("machine", "M1")),
		model.NewTask("T2").WithActivity(model.NewActivity("B1", "T2", 1).
			WithDuration(timespec.Fixed(2000)).WithResources("machine", "M1")),
	}
	resources := []model.Resource{model.NewResource("M1")}
	cons := []model.Constraint{model.PrecedenceWithDelay("A1", "B1", 3000)}
	ins := mustInstance(t, tasks, resources, cons)

	res, err := mustSolver(t, Config{}).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	b := res.Schedule.ForActivity("B1")
	if b.StartMs < 5000 {
		t.Fatalf("B1 starts at %d, want >= 5000 (A1 end + delay)", b.StartMs)
	}
}

func TestSolveBudgetExhaustedKeepsBest(t *testing.T) {
	var tasks []model.Task
	for _, id := range []string{"T1", "T2", "T3", "T4", "T5"} {
		tasks = append(tasks, model.NewTask(id).WithActivity(
			model.NewActivity(id+"-a", id, 1).
				WithDuration(timespec.Fixed(3000)).
				WithResources("machine", "M1", "M2", "M3")))
	}
	resources := []model.Resource{
		model.NewResource("M1"), model.NewResource("M2"), model.NewResource("M3"),
	}
	ins := mustInstance(t, tasks, resources, nil)

	res, err := mustSolver(t, Config{MaxNodes: 3}).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Optimal {
		t.Fatal("three nodes cannot prove optimality for five activities")
	}
	if res.Nodes > 3 {
		t.Fatalf("nodes = %d, want <= 3", res.Nodes)
	}
}

func TestSolveSoftWindowWeighting(t *testing.T) {
	// M1 finishes at 4000 but misses the soft deadline of 2000 by a
	// heavily weighted margin; M2 is slower yet meets it.
	lateStart := int64(0)
	tasks := []model.Task{
		model.NewTask("T1").WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(4000)).
				WithResources("machine", "M1", "M2").
				WithWindow(timespec.TimeWindow{
					EarliestStartMs: &lateStart,
					LatestEndMs:     ptr(int64(4000)),
					Type:            timespec.Soft,
					PenaltyPerMs:    10,
				})),
	}
	resources := []model.Resource{
		model.NewResource("M1").WithEfficiency(0.5),
		model.NewResource("M2"),
	}
	ins := mustInstance(t, tasks, resources, nil)

	res, err := mustSolver(t, Config{}).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	a := res.Schedule.ForActivity("A1")
	if a.ResourceID != "M2" {
		t.Fatalf("resource = %s, want M2 to avoid the soft penalty", a.ResourceID)
	}
	if res.Schedule.PenaltyMs != 0 {
		t.Fatalf("penalty = %f, want 0", res.Schedule.PenaltyMs)
	}
}

func TestBranchingFollowsConfiguredRuleChain(t *testing.T) {
	// Both activities compete for M1 with equal domains; under the edd
	// chain the earlier-due B1 must be branched on first, so the first
	// descent schedules it at time zero. Identifier order alone would
	// have started A1 first.
	tasks := []model.Task{
		model.NewTask("TA").WithDue(20_000).WithActivity(
			model.NewActivity("A1", "TA", 1).
				WithDuration(timespec.Fixed(4000)).
				WithResources("machine", "M1")),
		model.NewTask("TB").WithDue(5000).WithActivity(
			model.NewActivity("B1", "TB", 1).
				WithDuration(timespec.Fixed(4000)).
				WithResources("machine", "M1")),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	res, err := mustSolver(t, Config{MaxNodes: 2, Rules: []string{"edd"}}).Solve(context.Background(), ins)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Schedule == nil {
		t.Fatal("first descent should produce a schedule")
	}
	if b := res.Schedule.ForActivity("B1"); b.StartMs != 0 {
		t.Fatalf("B1 starts at %d, want 0 under edd tie-break", b.StartMs)
	}
}

func TestNewRejectsUnknownRule(t *testing.T) {
	if _, err := New(Config{Rules: []string{"nope"}}, nil); err == nil {
		t.Fatal("unknown rule name should fail construction")
	}
}

func TestNewDomainsSeedsBounds(t *testing.T) {
	tasks := []model.Task{
		model.NewTask("T1").WithRelease(2000).WithActivity(
			model.NewActivity("A1", "T1", 1).
				WithDuration(timespec.Fixed(1000)).
				WithResources("machine", "M1").
				WithWindow(timespec.Deadline(9000))),
	}
	resources := []model.Resource{model.NewResource("M1")}
	ins := mustInstance(t, tasks, resources, nil)

	d := newDomains(ins)
	if d.lb[0] != 2000 {
		t.Fatalf("lb = %d, want release 2000", d.lb[0])
	}
	if err := propagate(ins, d); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if d.ub[0] != 8000 {
		t.Fatalf("ub = %d, want 8000 (deadline minus duration)", d.ub[0])
	}
}

func ptr[T any](v T) *T { return &v }
