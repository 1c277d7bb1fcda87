// Package githubtest provides an in-memory github.Client for tests.
package githubtest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/surface"
)

// Fake records every mutating call. Errs injects an error by method name.
type Fake struct {
	mu sync.Mutex

	PR          *github.PullRequest
	Files       []analysis.FileChange
	Commits     []string
	CI          *labeling.CIStatus
	Sizes       map[string]int64
	Contents    map[string]string
	IssueLabels []string
	RepoLabels  []string
	Comments    []string
	CheckRuns   []surface.CheckRunData
	Errs        map[string]error

	Calls []string
}

var _ github.Client = (*Fake)(nil)

func (f *Fake) call(name string) error {
	f.Calls = append(f.Calls, name)
	return f.Errs[name]
}

func (f *Fake) PullRequest(_ context.Context, ref github.PRRef) (*github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("PullRequest"); err != nil {
		return nil, err
	}
	if f.PR == nil {
		return &github.PullRequest{Number: ref.Number, HeadSHA: "head", BaseSHA: "base"}, nil
	}
	pr := *f.PR
	return &pr, nil
}

func (f *Fake) ListFiles(context.Context, github.PRRef) ([]analysis.FileChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListFiles"); err != nil {
		return nil, err
	}
	return slices.Clone(f.Files), nil
}

func (f *Fake) ListCommitSubjects(context.Context, github.PRRef) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListCommitSubjects"); err != nil {
		return nil, err
	}
	return slices.Clone(f.Commits), nil
}

func (f *Fake) CIStatus(context.Context, string, string, string) (*labeling.CIStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CIStatus"); err != nil {
		return nil, err
	}
	return f.CI, nil
}

func (f *Fake) ContentSize(_ context.Context, _, _, _, path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ContentSize"); err != nil {
		return 0, err
	}
	size, ok := f.Sizes[path]
	if !ok {
		return 0, fmt.Errorf("%s: not found", path)
	}
	return size, nil
}

func (f *Fake) FileContent(_ context.Context, _, _, _, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FileContent"); err != nil {
		return nil, err
	}
	content, ok := f.Contents[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, github.ErrNotFound)
	}
	return []byte(content), nil
}

func (f *Fake) ListIssueLabels(context.Context, github.PRRef) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListIssueLabels"); err != nil {
		return nil, err
	}
	return slices.Clone(f.IssueLabels), nil
}

func (f *Fake) ListRepoLabels(context.Context, string, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListRepoLabels"); err != nil {
		return nil, err
	}
	return slices.Clone(f.RepoLabels), nil
}

func (f *Fake) AddLabels(_ context.Context, _ github.PRRef, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("AddLabels"); err != nil {
		return err
	}
	f.IssueLabels = append(f.IssueLabels, labels...)
	return nil
}

func (f *Fake) RemoveLabel(_ context.Context, _ github.PRRef, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("RemoveLabel"); err != nil {
		return err
	}
	f.IssueLabels = slices.DeleteFunc(f.IssueLabels, func(l string) bool { return l == label })
	return nil
}

func (f *Fake) CreateLabel(_ context.Context, _, _, name, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateLabel"); err != nil {
		return err
	}
	f.RepoLabels = append(f.RepoLabels, name)
	return nil
}

func (f *Fake) UpsertComment(_ context.Context, _ github.PRRef, marker, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpsertComment"); err != nil {
		return err
	}
	for i, c := range f.Comments {
		if strings.Contains(c, marker) {
			f.Comments[i] = body
			return nil
		}
	}
	f.Comments = append(f.Comments, body)
	return nil
}

func (f *Fake) CreateCheckRun(_ context.Context, _, _, _, _ string, data surface.CheckRunData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateCheckRun"); err != nil {
		return err
	}
	f.CheckRuns = append(f.CheckRuns, data)
	return nil
}

// Called reports whether the named method was invoked.
func (f *Fake) Called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.Calls, name)
}
