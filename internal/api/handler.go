// Package api implements the hosted prinsights REST API.
// It serves run history from the run store joined with archived decisions.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/prinsights/prinsights/internal/archive"
	"github.com/prinsights/prinsights/internal/store"
)

// Handler is the top-level API handler for the hosted service.
type Handler struct {
	runs    store.Runs
	archive archive.Store
	cache   *DecisionCache
}

// NewHandler creates a new API handler. A nil cache is sized from the
// environment.
func NewHandler(runs store.Runs, arch archive.Store, cache *DecisionCache) *Handler {
	if cache == nil {
		cache = NewDecisionCacheFromEnv()
	}
	return &Handler{
		runs:    runs,
		archive: arch,
		cache:   cache,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/repos/{owner}/{repo}/runs", h.handleListRuns)
	mux.HandleFunc("GET /api/runs/{runID}", h.handleGetRun)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
