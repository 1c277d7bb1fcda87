package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prinsights/prinsights/internal/archive"
	"github.com/prinsights/prinsights/internal/store"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

type runResponse struct {
	ID            string        `json:"id"`
	Repo          string        `json:"repo"`
	PRNumber      int           `json:"pr_number"`
	HeadSHA       string        `json:"head_sha"`
	Outcome       store.Outcome `json:"outcome"`
	LabelsAdded   []string      `json:"labels_added"`
	LabelsRemoved []string      `json:"labels_removed"`
	SizeLabel     string        `json:"size_label,omitempty"`
	HasViolations bool          `json:"has_violations"`
	Failures      []string      `json:"failures"`
	DryRun        bool          `json:"dry_run"`
	DurationMs    int64         `json:"duration_ms"`
	CreatedAt     string        `json:"created_at"`
}

type runDetailResponse struct {
	runResponse
	Decision json.RawMessage `json:"decision,omitempty"`
}

func runToResponse(run *store.Run) runResponse {
	return runResponse{
		ID:            run.ID,
		Repo:          run.Repo,
		PRNumber:      run.PRNumber,
		HeadSHA:       run.HeadSHA,
		Outcome:       run.Outcome,
		LabelsAdded:   nonNil(run.LabelsAdded),
		LabelsRemoved: nonNil(run.LabelsRemoved),
		SizeLabel:     run.SizeLabel,
		HasViolations: run.HasViolations,
		Failures:      nonNil(run.Failures),
		DryRun:        run.DryRun,
		DurationMs:    run.DurationMs,
		CreatedAt:     run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("owner") + "/" + r.PathValue("repo")

	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.runs.ListRunsByRepo(r.Context(), repo, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs: "+err.Error())
		return
	}

	result := make([]runResponse, 0, len(runs))
	for i := range runs {
		result = append(result, runToResponse(&runs[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")

	run, err := h.runs.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run: "+err.Error())
		return
	}

	resp := runDetailResponse{runResponse: runToResponse(run)}
	decision, err := h.loadDecision(r.Context(), run.Repo, run.ID)
	switch {
	case err == nil:
		resp.Decision = decision
	case errors.Is(err, archive.ErrNotFound):
		// Skipped and errored runs have no archived decision.
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadDecision loads an archived decision, checking the cache first.
func (h *Handler) loadDecision(ctx context.Context, repo, runID string) (json.RawMessage, error) {
	if data := h.cache.Get(runID); data != nil {
		return data, nil
	}
	if h.archive == nil {
		return nil, archive.ErrNotFound
	}

	data, err := h.archive.Get(ctx, repo, runID)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load decision: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("archived decision %s is not valid JSON", runID)
	}

	h.cache.Put(runID, data)
	return data, nil
}
