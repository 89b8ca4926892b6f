// Package export writes schedules in interchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/solvekit/uras/core/model"
)

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, sched *model.Schedule) error {
	enc := json.NewEncoder(w)
	return enc.Encode(sched)
}

// WriteCSV writes the assignments to w as CSV, ordered by start time
// then activity id so the output is stable across runs.
func WriteCSV(w io.Writer, sched *model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"activity_id", "task_id", "resource_id", "start_ms", "end_ms"}); err != nil {
		return err
	}
	rows := make([]model.Assignment, len(sched.Assignments))
	copy(rows, sched.Assignments)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StartMs != rows[j].StartMs {
			return rows[i].StartMs < rows[j].StartMs
		}
		return rows[i].ActivityID < rows[j].ActivityID
	})
	for _, a := range rows {
		rec := []string{
			a.ActivityID,
			a.TaskID,
			a.ResourceID,
			strconv.FormatInt(a.StartMs, 10),
			strconv.FormatInt(a.EndMs, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
