package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solvekit/uras/app"
)

const requestBody = `{
  "tasks": [
    {
      "id": "T1",
      "priority": 1,
      "activities": [
        {
          "id": "T1-A1",
          "task_id": "T1",
          "sequence": 1,
          "duration": {"kind": "fixed", "fixed_ms": 5000},
          "requirements": [{"category": "machine", "candidates": ["M1"]}]
        }
      ]
    }
  ],
  "resources": [{"id": "M1", "kind": "primary", "efficiency": 1}]
}`

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return buf.String()
}

func TestSolveCommandDefaultsToGreedy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	if err := os.WriteFile(path, []byte(requestBody), 0o600); err != nil {
		t.Fatalf("write request: %v", err)
	}

	out := runCLI(t, "solve", path)
	var resp app.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, out)
	}
	if resp.Failure != nil {
		t.Fatalf("failure: %+v", resp.Failure)
	}
	if resp.Algorithm != "greedy" {
		t.Fatalf("algorithm = %s, want greedy", resp.Algorithm)
	}
	if resp.Schedule == nil || resp.Schedule.MakespanMs != 5000 {
		t.Fatalf("schedule = %+v", resp.Schedule)
	}
}

func TestSolveCommandCSVOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	if err := os.WriteFile(path, []byte(requestBody), 0o600); err != nil {
		t.Fatalf("write request: %v", err)
	}
	defer func() { outputFormat = "json" }()

	out := runCLI(t, "solve", "--format", "csv", path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row:\n%s", out)
	}
	if lines[1] != "T1-A1,T1,M1,0,5000" {
		t.Fatalf("row = %s", lines[1])
	}
}

func TestAlgorithmsCommand(t *testing.T) {
	out := runCLI(t, "algorithms")
	for _, want := range []string{"cpsat", "ga", "greedy", "spt", "atc"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
