package model

import (
	"errors"
	"testing"

	"github.com/solvekit/uras/core/timespec"
)

func twoStepTask(id string, durMs int64) Task {
	return NewTask(id).
		WithActivity(NewActivity(id+"-a1", id, 1).
			WithDuration(timespec.Fixed(durMs)).
			WithResources("machine", "m1", "m2")).
		WithActivity(NewActivity(id+"-a2", id, 2).
			WithDuration(timespec.Fixed(durMs)).
			WithResources("machine", "m1", "m2"))
}

func TestTaskValidate(t *testing.T) {
	good := twoStepTask("t1", 1000)
	if err := good.Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	wrongOwner := NewTask("t1").WithActivity(NewActivity("a1", "other", 1))
	if err := wrongOwner.Validate(); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("mismatched task id: err = %v", err)
	}

	outOfOrder := NewTask("t1").
		WithActivity(NewActivity("a1", "t1", 2)).
		WithActivity(NewActivity("a2", "t1", 2))
	if err := outOfOrder.Validate(); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("repeated sequence: err = %v", err)
	}
}

func TestResourceEffectiveDuration(t *testing.T) {
	fast := NewResource("m1").WithEfficiency(2)
	if got := fast.EffectiveDurationMs(10_000); got != 5000 {
		t.Fatalf("EffectiveDurationMs = %d, want 5000", got)
	}
	slow := NewResource("m2").WithEfficiency(0.5)
	if got := slow.EffectiveDurationMs(10_000); got != 20_000 {
		t.Fatalf("EffectiveDurationMs = %d, want 20000", got)
	}
	if err := NewResource("m3").WithEfficiency(0).Validate(); !errors.Is(err, ErrInvalidSpec) {
		t.Fatal("zero efficiency should be rejected")
	}
}

func TestScheduleAccessors(t *testing.T) {
	s := NewSchedule()
	s.Add(Assignment{ActivityID: "a1", TaskID: "t1", ResourceID: "m1", StartMs: 0, EndMs: 1000})
	s.Add(Assignment{ActivityID: "a2", TaskID: "t1", ResourceID: "m2", StartMs: 1000, EndMs: 4000})
	s.Add(Assignment{ActivityID: "b1", TaskID: "t2", ResourceID: "m1", StartMs: 1000, EndMs: 2000})

	if s.MakespanMs != 4000 {
		t.Fatalf("MakespanMs = %d, want 4000", s.MakespanMs)
	}
	if got := s.ForActivity("a2"); got == nil || got.ResourceID != "m2" {
		t.Fatalf("ForActivity(a2) = %+v", got)
	}
	if got := len(s.ForResource("m1")); got != 2 {
		t.Fatalf("ForResource(m1) returned %d assignments, want 2", got)
	}
	end, ok := s.TaskCompletionMs("t1")
	if !ok || end != 4000 {
		t.Fatalf("TaskCompletionMs(t1) = %d, %v", end, ok)
	}
	if _, ok := s.TaskCompletionMs("missing"); ok {
		t.Fatal("unknown task should report ok=false")
	}

	if !s.Feasible() {
		t.Fatal("schedule without violations should be feasible")
	}
	s.AddViolation(Violation{Kind: WindowViolation, EntityID: "a1", Penalty: 500})
	if !s.Feasible() {
		t.Fatal("soft violation should not make the schedule infeasible")
	}
	if s.PenaltyMs != 500 {
		t.Fatalf("PenaltyMs = %f, want 500", s.PenaltyMs)
	}
	s.AddViolation(Violation{Kind: DeadlineViolation, EntityID: "t1", Hard: true})
	if s.Feasible() {
		t.Fatal("hard violation should make the schedule infeasible")
	}
}

func TestNewInstanceCompilesPrecedence(t *testing.T) {
	tasks := []Task{twoStepTask("t1", 1000), twoStepTask("t2", 2000)}
	resources := []Resource{NewResource("m1"), NewResource("m2")}
	cons := []Constraint{PrecedenceWithDelay("t1-a2", "t2-a1", 500)}

	ins, err := NewInstance(tasks, resources, cons)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	if ins.NumActivities() != 4 {
		t.Fatalf("NumActivities = %d, want 4", ins.NumActivities())
	}

	a2, _ := ins.ActivityIndex("t1-a2")
	b1, _ := ins.ActivityIndex("t2-a1")
	var found bool
	for _, e := range ins.Predecessors(b1) {
		if e.From == a2 && e.DelayMs == 500 {
			found = true
		}
	}
	if !found {
		t.Fatal("cross-task precedence edge missing")
	}

	order, err := ins.TopoOrder()
	if err != nil {
		t.Fatalf("TopoOrder: %v", err)
	}
	pos := make(map[int]int, len(order))
	for p, ai := range order {
		pos[ai] = p
	}
	if pos[a2] >= pos[b1] {
		t.Fatal("topological order violates precedence")
	}
}

func TestNewInstanceRejectsCycle(t *testing.T) {
	tasks := []Task{twoStepTask("t1", 1000)}
	resources := []Resource{NewResource("m1"), NewResource("m2")}
	cons := []Constraint{Precedence("t1-a2", "t1-a1")}

	_, err := NewInstance(tasks, resources, cons)
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("cycle: err = %v, want ErrInvalidSpec", err)
	}
}

func TestNewInstanceRejectsUnknownReferences(t *testing.T) {
	tasks := []Task{twoStepTask("t1", 1000)}
	resources := []Resource{NewResource("m1")}

	if _, err := NewInstance(tasks, resources, nil); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("unknown candidate resource: err = %v", err)
	}

	resources = append(resources, NewResource("m2"))
	cons := []Constraint{Precedence("t1-a1", "ghost")}
	if _, err := NewInstance(tasks, resources, cons); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("unknown precedence target: err = %v", err)
	}
}

func TestNewInstanceCapacityTightening(t *testing.T) {
	tasks := []Task{twoStepTask("t1", 1000)}
	resources := []Resource{NewResource("m1").WithCapacity(4), NewResource("m2")}
	cons := []Constraint{Capacity("m1", 2)}

	ins, err := NewInstance(tasks, resources, cons)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	ri, _ := ins.ResourceIndex("m1")
	if got := ins.CapacityOf(ri); got != 2 {
		t.Fatalf("CapacityOf(m1) = %d, want 2", got)
	}
}

func TestNewInstanceDedupesCandidates(t *testing.T) {
	tasks := []Task{
		NewTask("t1").WithActivity(
			NewActivity("t1-a1", "t1", 1).
				WithDuration(timespec.Fixed(1000)).
				WithResources("machine", "m2", "m1", "m2")),
	}
	resources := []Resource{NewResource("m1"), NewResource("m2")}

	ins, err := NewInstance(tasks, resources, nil)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	m1, _ := ins.ResourceIndex("m1")
	m2, _ := ins.ResourceIndex("m2")
	got := ins.Candidates(0)
	if len(got) != 2 || got[0] != m2 || got[1] != m1 {
		t.Fatalf("candidates = %v, want [%d %d] with the repeat dropped", got, m2, m1)
	}
}

func TestNewInstanceDueDateWindow(t *testing.T) {
	tasks := []Task{twoStepTask("t1", 1000).WithDue(9000)}
	resources := []Resource{NewResource("m1"), NewResource("m2")}

	ins, err := NewInstance(tasks, resources, nil)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	last, _ := ins.ActivityIndex("t1-a2")
	ws := ins.WindowsFor(last)
	if len(ws) != 1 {
		t.Fatalf("windows on last activity = %d, want 1", len(ws))
	}
	if ws[0].IsHard() {
		t.Fatal("due date window should be soft")
	}
	if v := ws[0].CheckViolation(0, 10_000); v == nil || v.LateMs != 1000 {
		t.Fatalf("CheckViolation = %+v, want 1000ms late", v)
	}
}
