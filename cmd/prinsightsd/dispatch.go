package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/prinsights/prinsights/internal/webhook"
)

var errQueueFull = errors.New("labeling queue is full")

// queue runs webhook triggers on a fixed pool of workers so the webhook
// response does not wait for a labeling run.
type queue struct {
	jobs    chan webhook.Trigger
	handle  func(context.Context, webhook.Trigger) error
	log     *slog.Logger
	group   *errgroup.Group
	closeMu sync.RWMutex
	closed  bool
}

func newQueue(ctx context.Context, workers, size int, handle func(context.Context, webhook.Trigger) error, log *slog.Logger) *queue {
	if workers <= 0 {
		workers = 1
	}
	q := &queue{
		jobs:   make(chan webhook.Trigger, size),
		handle: handle,
		log:    log,
		group:  &errgroup.Group{},
	}
	for range workers {
		q.group.Go(func() error {
			for t := range q.jobs {
				if err := q.handle(ctx, t); err != nil {
					q.log.Error("labeling run failed", "repo", t.Owner+"/"+t.Repo, "pr", t.Number, "error", err)
				}
			}
			return nil
		})
	}
	return q
}

// Dispatch enqueues t without blocking.
func (q *queue) Dispatch(_ context.Context, t webhook.Trigger) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed {
		return errors.New("labeling queue is closed")
	}
	select {
	case q.jobs <- t:
		return nil
	default:
		return errQueueFull
	}
}

// Close stops accepting triggers and waits for queued runs to finish.
func (q *queue) Close() error {
	q.closeMu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.closeMu.Unlock()
	return q.group.Wait()
}
