package crawl

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHealthHandler serves the scheduled-mode liveness surface: /healthz
// for probes and /lastrun for the most recent run summary.
func NewHealthHandler(s *Scheduler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/lastrun", func(w http.ResponseWriter, _ *http.Request) {
		last := s.LastRun()
		if last == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run yet"})
			return
		}
		writeJSON(w, http.StatusOK, last)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
