// Package github talks to the GitHub REST API on behalf of a labeling run.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	gh "github.com/google/go-github/v71/github"

	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/surface"
)

const (
	perPage = 100

	defaultAttempts = 5
	defaultDelay    = time.Second
	maxRetryDelay   = 30 * time.Second
)

// ErrNotFound is returned by FileContent when the path does not exist at the ref.
var ErrNotFound = errors.New("not found")

// PRRef identifies a pull request.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// PullRequest is the subset of PR metadata a run needs.
type PullRequest struct {
	Number  int
	Title   string
	Draft   bool
	HeadSHA string
	BaseSHA string
	Labels  []string
}

// Client is the GitHub surface used by the pipeline. Fakes implement it in tests.
type Client interface {
	PullRequest(ctx context.Context, ref PRRef) (*PullRequest, error)
	ListFiles(ctx context.Context, ref PRRef) ([]analysis.FileChange, error)
	ListCommitSubjects(ctx context.Context, ref PRRef) ([]string, error)
	CIStatus(ctx context.Context, owner, repo, sha string) (*labeling.CIStatus, error)
	ContentSize(ctx context.Context, owner, repo, sha, path string) (int64, error)
	FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error)

	ListIssueLabels(ctx context.Context, ref PRRef) ([]string, error)
	ListRepoLabels(ctx context.Context, owner, repo string) ([]string, error)
	AddLabels(ctx context.Context, ref PRRef, labels []string) error
	RemoveLabel(ctx context.Context, ref PRRef, label string) error
	CreateLabel(ctx context.Context, owner, repo, name, color string) error

	// UpsertComment edits the first comment containing marker, or creates one.
	UpsertComment(ctx context.Context, ref PRRef, marker, body string) error
	CreateCheckRun(ctx context.Context, owner, repo, headSHA, name string, data surface.CheckRunData) error
}

// RESTClient implements Client over go-github. Every call is retried with
// exponential backoff on rate limits and server errors.
type RESTClient struct {
	gh       *gh.Client
	attempts uint
	delay    time.Duration
}

// Option configures a RESTClient.
type Option func(*RESTClient)

// WithRetry overrides the retry attempts and initial delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *RESTClient) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.delay = delay
		}
	}
}

// NewRESTClient wraps an existing go-github client.
func NewRESTClient(client *gh.Client, opts ...Option) *RESTClient {
	c := &RESTClient{gh: client, attempts: defaultAttempts, delay: defaultDelay}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RESTClient) do(ctx context.Context, op string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(c.delay/4),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("github retry", "operation", op, "attempt", n+1, "max_attempts", c.attempts, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

func retryable(err error) bool {
	var rle *gh.RateLimitError
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &abuse) {
		return true
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) {
		return er.Response != nil && er.Response.StatusCode >= http.StatusInternalServerError
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "EOF")
}

func (c *RESTClient) PullRequest(ctx context.Context, ref PRRef) (*PullRequest, error) {
	var pr *gh.PullRequest
	err := c.do(ctx, "get pull request", func() error {
		var err error
		pr, _, err = c.gh.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get pull request %s: %w", ref, err)
	}
	out := &PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Draft:   pr.GetDraft(),
		HeadSHA: pr.GetHead().GetSHA(),
		BaseSHA: pr.GetBase().GetSHA(),
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out, nil
}

func (c *RESTClient) ListFiles(ctx context.Context, ref PRRef) ([]analysis.FileChange, error) {
	var out []analysis.FileChange
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		var files []*gh.CommitFile
		var resp *gh.Response
		err := c.do(ctx, "list files", func() error {
			var err error
			files, resp, err = c.gh.PullRequests.ListFiles(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list files %s: %w", ref, err)
		}
		for _, f := range files {
			if f.GetStatus() == "removed" {
				continue
			}
			out = append(out, analysis.FileChange{
				Path:      f.GetFilename(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Status:    f.GetStatus(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *RESTClient) ListCommitSubjects(ctx context.Context, ref PRRef) ([]string, error) {
	var out []string
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		var commits []*gh.RepositoryCommit
		var resp *gh.Response
		err := c.do(ctx, "list commits", func() error {
			var err error
			commits, resp, err = c.gh.PullRequests.ListCommits(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list commits %s: %w", ref, err)
		}
		for _, rc := range commits {
			subject, _, _ := strings.Cut(rc.GetCommit().GetMessage(), "\n")
			out = append(out, subject)
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// CIStatus maps the check runs on sha to labeling check states.
func (c *RESTClient) CIStatus(ctx context.Context, owner, repo, sha string) (*labeling.CIStatus, error) {
	status := &labeling.CIStatus{}
	opts := &gh.ListCheckRunsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	for {
		var res *gh.ListCheckRunsResults
		var resp *gh.Response
		err := c.do(ctx, "list check runs", func() error {
			var err error
			res, resp, err = c.gh.Checks.ListCheckRunsForRef(ctx, owner, repo, sha, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list check runs %s/%s@%s: %w", owner, repo, sha, err)
		}
		for _, run := range res.CheckRuns {
			status.Checks = append(status.Checks, labeling.CheckStatus{
				Name:  run.GetName(),
				State: checkState(run.GetStatus(), run.GetConclusion()),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			return status, nil
		}
		opts.Page = resp.NextPage
	}
}

func checkState(status, conclusion string) labeling.CheckState {
	if status != "completed" {
		return labeling.CheckPending
	}
	switch conclusion {
	case "success", "neutral", "skipped":
		return labeling.CheckPassed
	case "failure", "timed_out", "cancelled", "action_required", "startup_failure":
		return labeling.CheckFailed
	default:
		return labeling.CheckUnknown
	}
}

func (c *RESTClient) ContentSize(ctx context.Context, owner, repo, sha, path string) (int64, error) {
	var file *gh.RepositoryContent
	err := c.do(ctx, "get contents", func() error {
		var err error
		file, _, _, err = c.gh.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: sha})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get contents %s: %w", path, err)
	}
	if file == nil {
		return 0, fmt.Errorf("%s is not a file", path)
	}
	return int64(file.GetSize()), nil
}

func (c *RESTClient) FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	var file *gh.RepositoryContent
	err := c.do(ctx, "get file", func() error {
		var (
			resp *gh.Response
			err  error
		)
		file, _, resp, err = c.gh.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []byte(content), nil
}

func (c *RESTClient) ListIssueLabels(ctx context.Context, ref PRRef) ([]string, error) {
	var out []string
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		var labels []*gh.Label
		var resp *gh.Response
		err := c.do(ctx, "list issue labels", func() error {
			var err error
			labels, resp, err = c.gh.Issues.ListLabelsByIssue(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list labels %s: %w", ref, err)
		}
		for _, l := range labels {
			out = append(out, l.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *RESTClient) ListRepoLabels(ctx context.Context, owner, repo string) ([]string, error) {
	var out []string
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		var labels []*gh.Label
		var resp *gh.Response
		err := c.do(ctx, "list repo labels", func() error {
			var err error
			labels, resp, err = c.gh.Issues.ListLabels(ctx, owner, repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list labels %s/%s: %w", owner, repo, err)
		}
		for _, l := range labels {
			out = append(out, l.GetName())
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *RESTClient) AddLabels(ctx context.Context, ref PRRef, labels []string) error {
	err := c.do(ctx, "add labels", func() error {
		_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, ref.Owner, ref.Repo, ref.Number, labels)
		return err
	})
	if err != nil {
		return fmt.Errorf("add labels to %s: %w", ref, err)
	}
	return nil
}

func (c *RESTClient) RemoveLabel(ctx context.Context, ref PRRef, label string) error {
	err := c.do(ctx, "remove label", func() error {
		resp, err := c.gh.Issues.RemoveLabelForIssue(ctx, ref.Owner, ref.Repo, ref.Number, label)
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("remove label %q from %s: %w", label, ref, err)
	}
	return nil
}

func (c *RESTClient) CreateLabel(ctx context.Context, owner, repo, name, color string) error {
	err := c.do(ctx, "create label", func() error {
		_, _, err := c.gh.Issues.CreateLabel(ctx, owner, repo, &gh.Label{
			Name:  gh.Ptr(name),
			Color: gh.Ptr(color),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("create label %q: %w", name, err)
	}
	return nil
}

func (c *RESTClient) UpsertComment(ctx context.Context, ref PRRef, marker, body string) error {
	existing, err := c.findComment(ctx, ref, marker)
	if err != nil {
		return err
	}
	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	if existing != 0 {
		err = c.do(ctx, "edit comment", func() error {
			_, _, err := c.gh.Issues.EditComment(ctx, ref.Owner, ref.Repo, existing, comment)
			return err
		})
	} else {
		err = c.do(ctx, "create comment", func() error {
			_, _, err := c.gh.Issues.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, comment)
			return err
		})
	}
	if err != nil {
		return fmt.Errorf("upsert comment on %s: %w", ref, err)
	}
	return nil
}

func (c *RESTClient) findComment(ctx context.Context, ref PRRef, marker string) (int64, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	for {
		var comments []*gh.IssueComment
		var resp *gh.Response
		err := c.do(ctx, "list comments", func() error {
			var err error
			comments, resp, err = c.gh.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("list comments %s: %w", ref, err)
		}
		for _, cm := range comments {
			if strings.Contains(cm.GetBody(), marker) {
				return cm.GetID(), nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return 0, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateCheckRun publishes a completed Check Run on headSHA.
func (c *RESTClient) CreateCheckRun(ctx context.Context, owner, repo, headSHA, name string, data surface.CheckRunData) error {
	err := c.do(ctx, "create check run", func() error {
		_, _, err := c.gh.Checks.CreateCheckRun(ctx, owner, repo, gh.CreateCheckRunOptions{
			Name:       name,
			HeadSHA:    headSHA,
			Status:     gh.Ptr("completed"),
			Conclusion: gh.Ptr(data.Conclusion),
			Output: &gh.CheckRunOutput{
				Title:   gh.Ptr(data.Title),
				Summary: gh.Ptr(data.Summary),
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("create check run: %w", err)
	}
	return nil
}

// RemoteSizer adapts a Client to analysis.ContentSizer for one PR head.
type RemoteSizer struct {
	Client Client
	Owner  string
	Repo   string
	SHA    string
}

func (s *RemoteSizer) ContentSize(ctx context.Context, path string) (int64, error) {
	return s.Client.ContentSize(ctx, s.Owner, s.Repo, s.SHA, path)
}
