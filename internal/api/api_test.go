package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prinsights/prinsights/internal/archive"
	"github.com/prinsights/prinsights/internal/store"
)

type countingArchive struct {
	archive.Store
	gets int
}

func (c *countingArchive) Get(ctx context.Context, repo, runID string) ([]byte, error) {
	c.gets++
	return c.Store.Get(ctx, repo, runID)
}

func newTestServer(t *testing.T) (http.Handler, *countingArchive) {
	t.Helper()
	ctx := context.Background()
	runs := store.NewMemory()
	arch := &countingArchive{Store: archive.NewLocalStorage(t.TempDir())}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		run := &store.Run{
			ID:          id,
			Repo:        "acme/widgets",
			PRNumber:    10 + i,
			Outcome:     store.OutcomeApplied,
			LabelsAdded: []string{"size/small"},
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := runs.RecordRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}
	if err := runs.RecordRun(ctx, &store.Run{ID: "other", Repo: "acme/gadgets", Outcome: store.OutcomeSkipped, CreatedAt: base}); err != nil {
		t.Fatal(err)
	}
	if err := arch.Put(ctx, "acme/widgets", "run-2", []byte(`{"runId":"run-2","decisions":{"labelsToAdd":["size/small"]}}`)); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	NewHandler(runs, arch, NewDecisionCache(4)).RegisterRoutes(mux)
	return mux, arch
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListRuns(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantIDs    []string
	}{
		{"newest first", "/api/repos/acme/widgets/runs", http.StatusOK, []string{"run-3", "run-2", "run-1"}},
		{"limit", "/api/repos/acme/widgets/runs?limit=1", http.StatusOK, []string{"run-3"}},
		{"other repo", "/api/repos/acme/gadgets/runs", http.StatusOK, []string{"other"}},
		{"unknown repo", "/api/repos/acme/nothing/runs", http.StatusOK, []string{}},
		{"bad limit", "/api/repos/acme/widgets/runs?limit=x", http.StatusBadRequest, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.path)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantStatus, rec.Body)
			}
			if tc.wantIDs == nil {
				return
			}
			var runs []runResponse
			if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil {
				t.Fatal(err)
			}
			if len(runs) != len(tc.wantIDs) {
				t.Fatalf("got %d runs, want %d", len(runs), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if runs[i].ID != id {
					t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, id)
				}
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	h, arch := newTestServer(t)

	rec := get(t, h, "/api/runs/run-2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var detail struct {
		ID       string `json:"id"`
		Decision struct {
			RunID string `json:"runId"`
		} `json:"decision"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatal(err)
	}
	if detail.ID != "run-2" || detail.Decision.RunID != "run-2" {
		t.Errorf("unexpected detail %+v", detail)
	}

	// Second read is served from the cache.
	get(t, h, "/api/runs/run-2")
	if arch.gets != 1 {
		t.Errorf("archive reads = %d, want 1", arch.gets)
	}
}

func TestGetRunWithoutDecision(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/runs/run-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["decision"]; ok {
		t.Error("decision should be omitted when nothing was archived")
	}
}

func TestGetRunNotFound(t *testing.T) {
	h, _ := newTestServer(t)
	if rec := get(t, h, "/api/runs/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

type failingRuns struct{ store.Runs }

func (failingRuns) ListRunsByRepo(context.Context, string, int) ([]store.Run, error) {
	return nil, errors.New("db down")
}

func TestListRunsStoreError(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(failingRuns{}, nil, NewDecisionCache(1)).RegisterRoutes(mux)
	if rec := get(t, mux, "/api/repos/a/b/runs"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestDecisionCacheEviction(t *testing.T) {
	c := NewDecisionCache(2)
	c.Put("a", json.RawMessage(`1`))
	c.Put("b", json.RawMessage(`2`))
	c.Get("a") // a becomes most recent
	c.Put("c", json.RawMessage(`3`))

	if c.Get("b") != nil {
		t.Error("b should have been evicted")
	}
	if c.Get("a") == nil || c.Get("c") == nil {
		t.Error("a and c should be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestDecisionCacheFromEnv(t *testing.T) {
	t.Setenv("DECISION_CACHE_SIZE", "3")
	c := NewDecisionCacheFromEnv()
	for i := range 5 {
		c.Put(fmt.Sprint(i), json.RawMessage(`{}`))
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := CORS(APIKeyAuth("secret")(RequestLog(slog.New(slog.NewTextHandler(io.Discard, nil)))(ok)))

	tests := []struct {
		name   string
		method string
		key    string
		want   int
	}{
		{"valid key", http.MethodGet, "secret", http.StatusOK},
		{"missing key", http.MethodGet, "", http.StatusUnauthorized},
		{"wrong key", http.MethodGet, "nope", http.StatusUnauthorized},
		{"preflight", http.MethodOptions, "", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/runs/x", nil)
			if tc.key != "" {
				req.Header.Set("X-API-Key", tc.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Error("missing CORS header")
			}
		})
	}

	if open := APIKeyAuth("")(ok); open == nil {
		t.Error("empty key should pass through")
	}
}
