package kpi

import (
	"path/filepath"
	"testing"
	"time"

	coremetrics "github.com/solvekit/uras/core/metrics"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now().Truncate(time.Second)
	records := []coremetrics.SolveResult{
		{RequestID: "r1", Algorithm: "greedy", Status: "ok", Feasible: true, MakespanMs: 8000, ElapsedMs: 3, Time: now.Add(-time.Hour)},
		{RequestID: "r2", Algorithm: "cpsat", Status: "ok", Feasible: true, MakespanMs: 7000, ElapsedMs: 45, Time: now},
		{RequestID: "r3", Algorithm: "greedy", Status: "infeasible", PenaltyMs: 500, Time: now},
	}
	for _, r := range records {
		if err := store.RecordSolve(r); err != nil {
			t.Fatalf("record %s: %v", r.RequestID, err)
		}
	}

	got, err := store.Query("greedy", now.Add(-2*time.Hour), now)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 greedy records, got %d", len(got))
	}
	if got[0].RequestID != "r1" || got[1].RequestID != "r3" {
		t.Fatalf("order = %s, %s", got[0].RequestID, got[1].RequestID)
	}
	if !got[0].Feasible || got[0].MakespanMs != 8000 {
		t.Fatalf("r1 = %+v", got[0])
	}

	all, err := store.Query("", now.Add(-2*time.Hour), now)
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	rec := coremetrics.SolveResult{RequestID: "r1", Algorithm: "ga", Status: "error", Time: time.Now()}
	if err := store.RecordSolve(rec); err != nil {
		t.Fatalf("first record: %v", err)
	}
	rec.Status = "ok"
	rec.Feasible = true
	if err := store.RecordSolve(rec); err != nil {
		t.Fatalf("second record: %v", err)
	}

	got, err := store.Query("ga", time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].Status != "ok" {
		t.Fatalf("got %+v", got)
	}
}
