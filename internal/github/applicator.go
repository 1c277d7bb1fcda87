package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prinsights/prinsights/pkg/labeling"
)

// ApplyOptions control how decisions reach the PR.
type ApplyOptions struct {
	AutoRemove    bool
	CreateMissing bool
	Color         string
	DryRun        bool
}

// ApplyResult reports the label changes made (or planned, in dry-run mode).
type ApplyResult struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	// Current is the label set on the PR after the change.
	Current []string `json:"current"`
}

// Applicator reconciles a PR's live labels with engine decisions.
type Applicator struct {
	client Client
	log    *slog.Logger
}

// NewApplicator creates an Applicator. A nil logger uses slog.Default.
func NewApplicator(client Client, log *slog.Logger) *Applicator {
	if log == nil {
		log = slog.Default()
	}
	return &Applicator{client: client, log: log}
}

// Apply removes live labels covered by a replace namespace that are not
// wanted any more, creates missing repository labels, then adds the rest.
func (a *Applicator) Apply(ctx context.Context, ref PRRef, decisions labeling.LabelDecisions, opts ApplyOptions) (*ApplyResult, error) {
	live, err := a.client.ListIssueLabels(ctx, ref)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(decisions.LabelsToAdd))
	for _, l := range decisions.LabelsToAdd {
		want[l] = true
	}
	have := make(map[string]bool, len(live))
	for _, l := range live {
		have[l] = true
	}

	res := &ApplyResult{Added: []string{}, Removed: []string{}}

	if opts.AutoRemove {
		for _, l := range live {
			if want[l] || !matchesAny(l, decisions.LabelsToRemove) {
				continue
			}
			if opts.DryRun {
				a.log.Info("dry run: would remove label", "pr", ref.String(), "label", l)
			} else if err := a.client.RemoveLabel(ctx, ref, l); err != nil {
				return res, err
			}
			res.Removed = append(res.Removed, l)
		}
	}

	for _, l := range decisions.LabelsToAdd {
		if !have[l] {
			res.Added = append(res.Added, l)
		}
	}

	if len(res.Added) > 0 && opts.CreateMissing {
		if err := a.ensureLabels(ctx, ref, res.Added, opts); err != nil {
			return res, err
		}
	}

	if len(res.Added) > 0 {
		if opts.DryRun {
			a.log.Info("dry run: would add labels", "pr", ref.String(), "labels", res.Added)
		} else if err := a.client.AddLabels(ctx, ref, res.Added); err != nil {
			return res, err
		}
	}

	removed := make(map[string]bool, len(res.Removed))
	for _, l := range res.Removed {
		removed[l] = true
	}
	res.Current = []string{}
	for _, l := range live {
		if !removed[l] {
			res.Current = append(res.Current, l)
		}
	}
	res.Current = append(res.Current, res.Added...)

	a.log.Info("applied labels", "pr", ref.String(), "added", len(res.Added), "removed", len(res.Removed), "dry_run", opts.DryRun)
	return res, nil
}

func (a *Applicator) ensureLabels(ctx context.Context, ref PRRef, labels []string, opts ApplyOptions) error {
	existing, err := a.client.ListRepoLabels(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, l := range existing {
		known[l] = true
	}
	color := opts.Color
	if color == "" {
		color = "cccccc"
	}
	for _, l := range labels {
		if known[l] {
			continue
		}
		if opts.DryRun {
			a.log.Info("dry run: would create label", "label", l, "color", color)
			continue
		}
		if err := a.client.CreateLabel(ctx, ref.Owner, ref.Repo, l, color); err != nil {
			return fmt.Errorf("ensure label %q: %w", l, err)
		}
	}
	return nil
}

func matchesAny(label string, patterns []string) bool {
	for _, p := range patterns {
		if labeling.LabelMatchesPattern(label, p) {
			return true
		}
	}
	return false
}
