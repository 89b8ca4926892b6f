package model

import "testing"

func TestCalendarAlwaysAvailable(t *testing.T) {
	c := AlwaysAvailable()
	if !c.AvailableDuring(0, 1_000_000) {
		t.Fatal("empty calendar should be always available")
	}
	start, ok := c.NextSlot(5000, 3600_000)
	if !ok || start != 5000 {
		t.Fatalf("NextSlot = %d, %v; want 5000, true", start, ok)
	}
}

func TestCalendarWindows(t *testing.T) {
	c := AlwaysAvailable().WithWindow(0, 10_000).WithWindow(20_000, 30_000).Normalize()

	if !c.AvailableDuring(2000, 8000) {
		t.Fatal("range inside first window should be available")
	}
	if c.AvailableDuring(8000, 22_000) {
		t.Fatal("range spanning the gap should not be available")
	}

	start, ok := c.NextSlot(8000, 5000)
	if !ok || start != 20_000 {
		t.Fatalf("NextSlot = %d, %v; want 20000, true", start, ok)
	}
	start, ok = c.NextSlot(0, 5000)
	if !ok || start != 0 {
		t.Fatalf("NextSlot = %d, %v; want 0, true", start, ok)
	}
	if _, ok = c.NextSlot(25_000, 50_000); ok {
		t.Fatal("no window can hold a 50s block")
	}
}

func TestCalendarBlockedPeriods(t *testing.T) {
	c := AlwaysAvailable().WithWindow(0, 100_000).WithBlocked(40_000, 60_000).Normalize()

	if c.AvailableDuring(35_000, 45_000) {
		t.Fatal("range overlapping blocked period should not be available")
	}
	start, ok := c.NextSlot(35_000, 10_000)
	if !ok || start != 60_000 {
		t.Fatalf("NextSlot = %d, %v; want 60000, true", start, ok)
	}

	if got := c.AvailableTimeBetween(0, 100_000); got != 80_000 {
		t.Fatalf("AvailableTimeBetween = %d, want 80000", got)
	}
}

func TestCalendarNormalizeMerges(t *testing.T) {
	c := Calendar{Windows: []Interval{
		{StartMs: 50, EndMs: 100},
		{StartMs: 0, EndMs: 60},
		{StartMs: 200, EndMs: 300},
	}}.Normalize()
	if len(c.Windows) != 2 {
		t.Fatalf("merged windows = %v, want 2 intervals", c.Windows)
	}
	if c.Windows[0].StartMs != 0 || c.Windows[0].EndMs != 100 {
		t.Fatalf("first merged window = %+v", c.Windows[0])
	}
}

func TestCalendarValidate(t *testing.T) {
	bad := Calendar{Windows: []Interval{{StartMs: 100, EndMs: 100}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("empty window should be rejected")
	}
}
