// Package webhook handles incoming GitHub webhook events.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// VerifySignature validates the X-Hub-Signature-256 header against the payload.
func VerifySignature(payload []byte, signature string, secret []byte) error {
	if !strings.HasPrefix(signature, "sha256=") {
		return fmt.Errorf("invalid signature format")
	}
	sig, err := hex.DecodeString(signature[7:])
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// PingEvent is sent when a webhook is first configured.
type PingEvent struct {
	Zen    string `json:"zen"`
	HookID int64  `json:"hook_id"`
}

// PullRequestEvent represents a pull request webhook event.
type PullRequestEvent struct {
	Action       string              `json:"action"`
	Number       int                 `json:"number"`
	PullRequest  PullRequestPayload  `json:"pull_request"`
	Repository   GitHubRepository    `json:"repository"`
	Installation InstallationPayload `json:"installation"`
}

// InstallationPayload identifies the App installation that sent the event.
type InstallationPayload struct {
	ID int64 `json:"id"`
}

// PullRequestPayload contains pull request details.
type PullRequestPayload struct {
	Number int     `json:"number"`
	Draft  bool    `json:"draft"`
	State  string  `json:"state"`
	Head   GitRef  `json:"head"`
	Base   GitRef  `json:"base"`
	Labels []Label `json:"labels"`
}

// GitRef represents a git reference (branch head).
type GitRef struct {
	SHA string `json:"sha"`
	Ref string `json:"ref"`
}

// Label is a label attached to the pull request.
type Label struct {
	Name string `json:"name"`
}

// GitHubRepository represents a GitHub repository.
type GitHubRepository struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

// ParseEvent parses a webhook payload based on the event type.
func ParseEvent(eventType string, payload []byte) (any, error) {
	switch eventType {
	case "ping":
		var e PingEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse ping event: %w", err)
		}
		return &e, nil
	case "pull_request":
		var e PullRequestEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse pull_request event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
}
