package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Trigger asks for one labeling run.
type Trigger struct {
	InstallationID int64
	Owner          string
	Repo           string
	Number         int
	HeadSHA        string
	Action         string
}

// Dispatcher starts labeling runs. Implementations should return quickly;
// GitHub expects a response within ten seconds.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Trigger) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, t Trigger) error

func (f DispatcherFunc) Dispatch(ctx context.Context, t Trigger) error { return f(ctx, t) }

// Handler processes incoming GitHub webhook events.
type Handler struct {
	webhookSecret []byte
	dispatcher    Dispatcher
	log           *slog.Logger
}

// NewHandler creates a new webhook Handler. A nil logger uses slog.Default.
func NewHandler(webhookSecret []byte, dispatcher Dispatcher, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		webhookSecret: webhookSecret,
		dispatcher:    dispatcher,
		log:           log,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if err := VerifySignature(body, signature, h.webhookSecret); err != nil {
		h.log.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	event, err := ParseEvent(eventType, body)
	if err != nil {
		h.log.Warn("webhook parse error", "event", eventType, "error", err)
		http.Error(w, "unsupported event", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *PingEvent:
		h.log.Info("webhook ping", "hook_id", e.HookID)
		writeStatus(w, http.StatusOK, "pong")
		return

	case *PullRequestEvent:
		dispatched, err := h.handlePullRequest(r.Context(), e)
		if err != nil {
			h.log.Error("handle pull_request event", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !dispatched {
			writeStatus(w, http.StatusOK, "ignored")
			return
		}
	}

	writeStatus(w, http.StatusAccepted, "accepted")
}

func (h *Handler) handlePullRequest(ctx context.Context, e *PullRequestEvent) (bool, error) {
	switch e.Action {
	case "opened", "synchronize", "reopened", "ready_for_review":
	default:
		return false, nil // ignore other PR actions
	}

	owner, repo, ok := strings.Cut(e.Repository.FullName, "/")
	if !ok {
		return false, fmt.Errorf("invalid repository name %q", e.Repository.FullName)
	}

	t := Trigger{
		InstallationID: e.Installation.ID,
		Owner:          owner,
		Repo:           repo,
		Number:         e.Number,
		HeadSHA:        e.PullRequest.Head.SHA,
		Action:         e.Action,
	}
	if err := h.dispatcher.Dispatch(ctx, t); err != nil {
		return false, fmt.Errorf("dispatch %s#%d: %w", e.Repository.FullName, e.Number, err)
	}

	h.log.Info("dispatched labeling run", "repo", e.Repository.FullName, "pr", e.Number, "action", e.Action, "head", e.PullRequest.Head.SHA)
	return true, nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
