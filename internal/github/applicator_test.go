package github_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/internal/github/githubtest"
	"github.com/prinsights/prinsights/pkg/labeling"
)

var ref = github.PRRef{Owner: "acme", Repo: "widgets", Number: 7}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		live        []string
		repo        []string
		decisions   labeling.LabelDecisions
		opts        github.ApplyOptions
		wantAdded   []string
		wantRemoved []string
		wantLive    []string
		wantCreated bool
	}{
		{
			name: "replace size bucket",
			live: []string{"size/small", "category/docs", "bug"},
			repo: []string{"size/small", "size/large"},
			decisions: labeling.LabelDecisions{
				LabelsToAdd:    []string{"size/large"},
				LabelsToRemove: []string{"size/*"},
			},
			opts:        github.ApplyOptions{AutoRemove: true, CreateMissing: true},
			wantAdded:   []string{"size/large"},
			wantRemoved: []string{"size/small"},
			wantLive:    []string{"category/docs", "bug", "size/large"},
		},
		{
			name: "auto remove disabled keeps stale labels",
			live: []string{"size/small"},
			repo: []string{"size/large"},
			decisions: labeling.LabelDecisions{
				LabelsToAdd:    []string{"size/large"},
				LabelsToRemove: []string{"size/*"},
			},
			opts:        github.ApplyOptions{},
			wantAdded:   []string{"size/large"},
			wantRemoved: []string{},
			wantLive:    []string{"size/small", "size/large"},
		},
		{
			name: "wanted label in replace namespace is kept",
			live: []string{"size/large"},
			decisions: labeling.LabelDecisions{
				LabelsToAdd:    []string{"size/large"},
				LabelsToRemove: []string{"size/*"},
			},
			opts:        github.ApplyOptions{AutoRemove: true},
			wantAdded:   []string{},
			wantRemoved: []string{},
			wantLive:    []string{"size/large"},
		},
		{
			name: "missing label is created",
			decisions: labeling.LabelDecisions{
				LabelsToAdd: []string{"risk/high"},
			},
			opts:        github.ApplyOptions{CreateMissing: true},
			wantAdded:   []string{"risk/high"},
			wantRemoved: []string{},
			wantLive:    []string{"risk/high"},
			wantCreated: true,
		},
		{
			name: "dry run changes nothing",
			live: []string{"size/small"},
			decisions: labeling.LabelDecisions{
				LabelsToAdd:    []string{"size/large"},
				LabelsToRemove: []string{"size/*"},
			},
			opts:        github.ApplyOptions{AutoRemove: true, CreateMissing: true, DryRun: true},
			wantAdded:   []string{"size/large"},
			wantRemoved: []string{"size/small"},
			wantLive:    []string{"size/small"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &githubtest.Fake{IssueLabels: tt.live, RepoLabels: tt.repo}
			res, err := github.NewApplicator(fake, nil).Apply(context.Background(), ref, tt.decisions, tt.opts)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !reflect.DeepEqual(res.Added, tt.wantAdded) {
				t.Errorf("added = %v, want %v", res.Added, tt.wantAdded)
			}
			if !reflect.DeepEqual(res.Removed, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", res.Removed, tt.wantRemoved)
			}
			if got := fake.IssueLabels; !sameSet(got, tt.wantLive) {
				t.Errorf("live labels = %v, want %v", got, tt.wantLive)
			}
			if fake.Called("CreateLabel") != tt.wantCreated {
				t.Errorf("CreateLabel called = %v, want %v", fake.Called("CreateLabel"), tt.wantCreated)
			}
		})
	}
}

func TestApplyCurrent(t *testing.T) {
	fake := &githubtest.Fake{IssueLabels: []string{"size/small", "bug"}}
	res, err := github.NewApplicator(fake, nil).Apply(context.Background(), ref, labeling.LabelDecisions{
		LabelsToAdd:    []string{"size/medium", "bug"},
		LabelsToRemove: []string{"size/*"},
	}, github.ApplyOptions{AutoRemove: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bug", "size/medium"}
	if !reflect.DeepEqual(res.Current, want) {
		t.Errorf("current = %v, want %v", res.Current, want)
	}
}

func TestApplyErrors(t *testing.T) {
	boom := errors.New("boom")
	for _, method := range []string{"ListIssueLabels", "RemoveLabel", "ListRepoLabels", "CreateLabel", "AddLabels"} {
		t.Run(method, func(t *testing.T) {
			fake := &githubtest.Fake{
				IssueLabels: []string{"size/small"},
				Errs:        map[string]error{method: boom},
			}
			_, err := github.NewApplicator(fake, nil).Apply(context.Background(), ref, labeling.LabelDecisions{
				LabelsToAdd:    []string{"size/large"},
				LabelsToRemove: []string{"size/*"},
			}, github.ApplyOptions{AutoRemove: true, CreateMissing: true})
			if !errors.Is(err, boom) {
				t.Errorf("err = %v, want %v", err, boom)
			}
		})
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	m := make(map[string]int, len(a))
	for _, s := range a {
		m[s]++
	}
	for _, s := range b {
		m[s]--
		if m[s] < 0 {
			return false
		}
	}
	return true
}
