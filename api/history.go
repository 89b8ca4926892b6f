package api

import (
	"encoding/json"
	"net/http"
	"time"

	coremetrics "github.com/solvekit/uras/core/metrics"
)

// HistoryStore provides queryable solve history. The SQLite metrics
// sink implements it.
type HistoryStore interface {
	Query(algorithm string, start, end time.Time) ([]coremetrics.SolveResult, error)
}

// NewHistoryHandler returns an HTTP handler exposing solve history via
// GET /api/solves. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty. The start and end query
// parameters take RFC3339 timestamps; the default range is the last
// 24 hours.
func NewHistoryHandler(store HistoryStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		end := time.Now()
		start := end.Add(-24 * time.Hour)
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				end = t
			}
		}
		records, err := store.Query(r.URL.Query().Get("algorithm"), start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []coremetrics.SolveResult{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			return
		}
	})
}
