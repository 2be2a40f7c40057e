package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/qnkhuat/blockterm/pkg/store"
	"github.com/rs/zerolog/log"
)

const (
	defaultScores = 10
	maxScores     = 100
)

// NewRouter serves the status endpoints: /health, /sessions, /scores and the
// profiler under /debug.
func NewRouter(sessions *Registry, st store.Store) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sessions": sessions.Len()})
	})

	r.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sessions.List())
	})

	r.Get("/scores", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultScores
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_limit"})
				return
			}
			if n > maxScores {
				n = maxScores
			}
			limit = n
		}

		scores, err := st.TopScores(r.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("failed to list scores")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store_unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, scores)
	})

	r.Mount("/debug", chimw.Profiler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
