package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Runs implementation for the CLI and for a daemon
// started without DATABASE_URL.
type Memory struct {
	mu   sync.Mutex
	runs map[string]Run
	now  func() time.Time
}

var _ Runs = (*Memory)(nil)

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]Run), now: time.Now}
}

func (m *Memory) RecordRun(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = m.now()
	}
	m.runs[run.ID] = *run
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (m *Memory) ListRunsByRepo(_ context.Context, repo string, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Run
	for _, r := range m.runs {
		if r.Repo == repo {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
