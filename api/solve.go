// Package api exposes the solving engine over HTTP.
package api

import (
	"io"
	"net/http"

	"github.com/solvekit/uras/app"
)

// NewSolveHandler returns an HTTP handler accepting scheduling
// requests via POST /api/solve. The response is always a valid
// response document, including for malformed input.
func NewSolveHandler(eng *app.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		out := eng.SolveJSON(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(out); err != nil {
			return
		}
	})
}

const maxRequestBytes = 16 << 20
