package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/solvekit/uras/core/model"
)

func sampleSchedule() *model.Schedule {
	s := model.NewSchedule()
	s.Add(model.Assignment{ActivityID: "B", TaskID: "T1", ResourceID: "M2", StartMs: 2000, EndMs: 4000})
	s.Add(model.Assignment{ActivityID: "A", TaskID: "T1", ResourceID: "M1", StartMs: 0, EndMs: 2000})
	return s
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleSchedule()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got model.Schedule
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Assignments) != 2 || got.MakespanMs != 4000 {
		t.Fatalf("got %+v", got)
	}
}

func TestWriteCSVSortsByStart(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSchedule()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(lines))
	}
	if lines[0] != "activity_id,task_id,resource_id,start_ms,end_ms" {
		t.Fatalf("header = %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "A,") || !strings.HasPrefix(lines[2], "B,") {
		t.Fatalf("rows out of order:\n%s", buf.String())
	}
}
