package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/prinsights/prinsights/internal/archive"
	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/internal/github/githubtest"
	"github.com/prinsights/prinsights/internal/store"
	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/dirlabel"
	"github.com/prinsights/prinsights/pkg/inputs"
	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/surface"
)

var ref = github.PRRef{Owner: "acme", Repo: "widgets", Number: 42}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseInputs(t *testing.T, extra map[string]string) *inputs.Inputs {
	t.Helper()
	g := inputs.MapGetter{"github_token": "tok"}
	for k, v := range extra {
		g[k] = v
	}
	in, err := inputs.Parse(g)
	if err != nil {
		t.Fatalf("parse inputs: %v", err)
	}
	return in
}

// newFake returns a PR touching one small Go file and one doc.
func newFake() *githubtest.Fake {
	return &githubtest.Fake{
		PR: &github.PullRequest{Number: 42, HeadSHA: "abc123", BaseSHA: "def456"},
		Files: []analysis.FileChange{
			{Path: "src/app.go", Additions: 80, Deletions: 4},
			{Path: "docs/guide.md", Additions: 20},
		},
		Sizes: map[string]int64{"src/app.go": 2048, "docs/guide.md": 512},
	}
}

func newRunner(t *testing.T, client github.Client) (*Runner, *store.Memory, *archive.LocalStorage) {
	t.Helper()
	runs := store.NewMemory()
	arch := archive.NewLocalStorage(t.TempDir())
	return &Runner{Client: client, Archive: arch, Runs: runs, Logger: quietLogger()}, runs, arch
}

func TestRunAppliesLabels(t *testing.T) {
	fake := newFake()
	r, runs, arch := newRunner(t, fake)
	ctx := context.Background()

	out, err := r.Run(ctx, Job{Ref: ref, Inputs: parseInputs(t, nil), Root: t.TempDir()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.SizeLabel != labeling.SizeSmall {
		t.Errorf("SizeLabel = %q, want %q", out.SizeLabel, labeling.SizeSmall)
	}
	for _, want := range []string{labeling.SizeSmall, "category/documentation"} {
		if !slices.Contains(fake.IssueLabels, want) {
			t.Errorf("expected %s on PR, got %v", want, fake.IssueLabels)
		}
	}
	if out.Failed() {
		t.Errorf("unexpected failures: %v", out.Failures)
	}
	if fake.Called("UpsertComment") {
		t.Error("auto comment mode should not comment without violations")
	}

	got, err := runs.ListRunsByRepo(ctx, "acme/widgets", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(got))
	}
	run := got[0]
	if run.ID != out.RunID || run.Outcome != store.OutcomeApplied || run.HeadSHA != "abc123" {
		t.Errorf("unexpected run %+v", run)
	}

	data, err := arch.Get(ctx, "acme/widgets", out.RunID)
	if err != nil {
		t.Fatalf("archive Get: %v", err)
	}
	var report surface.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if report.RunID != out.RunID || report.PR != 42 {
		t.Errorf("archived report = %+v", report)
	}
}

func TestRunSkipsDraft(t *testing.T) {
	fake := newFake()
	fake.PR.Draft = true
	r, runs, _ := newRunner(t, fake)

	out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil)})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Skipped || out.SkipReason == "" {
		t.Errorf("expected skip, got %+v", out)
	}
	if fake.Called("ListFiles") {
		t.Error("draft PR files should not be listed")
	}
	got, _ := runs.ListRunsByRepo(context.Background(), "acme/widgets", 10)
	if len(got) != 1 || got[0].Outcome != store.OutcomeSkipped {
		t.Errorf("expected one skipped run, got %+v", got)
	}
}

func TestRunDraftNotSkipped(t *testing.T) {
	fake := newFake()
	fake.PR.Draft = true
	r, _, _ := newRunner(t, fake)

	out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, map[string]string{"skip_draft_pr": "false"})})
	if err != nil {
		t.Fatal(err)
	}
	if out.Skipped {
		t.Error("draft should be labeled when skip_draft_pr is false")
	}
}

func TestRunFailureConditions(t *testing.T) {
	tests := []struct {
		name   string
		inputs map[string]string
		sizes  map[string]int64
		want   int
	}{
		{
			name:   "large file fails",
			inputs: map[string]string{"fail_on_large_files": "true"},
			sizes:  map[string]int64{"src/app.go": 5 << 20},
			want:   1,
		},
		{
			name:   "large file tolerated",
			inputs: map[string]string{"fail_on_large_files": "false"},
			sizes:  map[string]int64{"src/app.go": 5 << 20},
			want:   0,
		},
		{
			name:   "pr size at threshold",
			inputs: map[string]string{"fail_on_pr_size": "small"},
			want:   1,
		},
		{
			name:   "pr size below threshold",
			inputs: map[string]string{"fail_on_pr_size": "large"},
			want:   0,
		},
		{
			name:   "too many files",
			inputs: map[string]string{"fail_on_too_many_files": "true", "pr_files_limit": "1"},
			want:   1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFake()
			for k, v := range tc.sizes {
				fake.Sizes[k] = v
			}
			r, runs, _ := newRunner(t, fake)

			out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, tc.inputs), Root: t.TempDir()})
			if err != nil {
				t.Fatal(err)
			}
			if len(out.Failures) != tc.want {
				t.Fatalf("failures = %v, want %d", out.Failures, tc.want)
			}
			got, _ := runs.ListRunsByRepo(context.Background(), "acme/widgets", 1)
			wantOutcome := store.OutcomeApplied
			if tc.want > 0 {
				wantOutcome = store.OutcomeFailed
			}
			if got[0].Outcome != wantOutcome {
				t.Errorf("outcome = %s, want %s", got[0].Outcome, wantOutcome)
			}
		})
	}
}

func TestRunPRSizeIgnoredWhenSizeDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Size.Enabled = false
	r, _, _ := newRunner(t, newFake())

	out, err := r.Run(context.Background(), Job{
		Ref:    ref,
		Inputs: parseInputs(t, map[string]string{"fail_on_pr_size": "small"}),
		Config: cfg,
		Root:   t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.SizeLabel != "" || out.Failed() {
		t.Errorf("size disabled: label=%q failures=%v", out.SizeLabel, out.Failures)
	}
}

func TestRunComments(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		large bool
		want  bool
	}{
		{"auto with violations", "auto", true, true},
		{"auto without violations", "auto", false, false},
		{"always", "always", false, true},
		{"never with violations", "never", true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFake()
			if tc.large {
				fake.Sizes["src/app.go"] = 5 << 20
			}
			r, _, _ := newRunner(t, fake)
			_, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, map[string]string{"comment_on_pr": tc.mode}), Root: t.TempDir()})
			if err != nil {
				t.Fatal(err)
			}
			if got := len(fake.Comments) > 0; got != tc.want {
				t.Fatalf("commented = %v, want %v", got, tc.want)
			}
			if tc.want && !strings.HasPrefix(fake.Comments[0], CommentMarker) {
				t.Errorf("comment missing marker: %q", fake.Comments[0])
			}
		})
	}
}

func TestRunDryRun(t *testing.T) {
	fake := newFake()
	fake.Sizes["src/app.go"] = 5 << 20
	r, runs, _ := newRunner(t, fake)
	r.CheckRunName = "prinsights"

	out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil), Root: t.TempDir(), DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"AddLabels", "RemoveLabel", "UpsertComment", "CreateCheckRun"} {
		if fake.Called(m) {
			t.Errorf("dry run called %s", m)
		}
	}
	if len(out.Applied.Added) == 0 {
		t.Error("dry run should still report planned labels")
	}
	got, _ := runs.ListRunsByRepo(context.Background(), "acme/widgets", 1)
	if !got[0].DryRun {
		t.Error("recorded run should be marked dry run")
	}
}

func TestRunReplacesSizeLabel(t *testing.T) {
	fake := newFake()
	fake.IssueLabels = []string{labeling.SizeLarge, "bug"}
	r, _, _ := newRunner(t, fake)

	out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil), Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Applied.Removed, []string{labeling.SizeLarge}) {
		t.Errorf("Removed = %v, want [%s]", out.Applied.Removed, labeling.SizeLarge)
	}
	if slices.Contains(fake.IssueLabels, labeling.SizeLarge) || !slices.Contains(fake.IssueLabels, "bug") {
		t.Errorf("labels after run = %v", fake.IssueLabels)
	}
}

func TestRunCheckRun(t *testing.T) {
	fake := newFake()
	r, _, _ := newRunner(t, fake)
	r.CheckRunName = "prinsights"

	if _, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil), Root: t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	if len(fake.CheckRuns) != 1 || fake.CheckRuns[0].Conclusion != "success" {
		t.Errorf("check runs = %+v", fake.CheckRuns)
	}
}

func TestRunDirectoryLabels(t *testing.T) {
	dl, err := dirlabel.Parse([]byte("rules:\n  - label: area/core\n    include: [\"src/**\"]\n"))
	if err != nil {
		t.Fatal(err)
	}
	fake := newFake()
	r, _, _ := newRunner(t, fake)

	out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil), DirLabels: dl, Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(out.Decisions.LabelsToAdd, "area/core") {
		t.Errorf("LabelsToAdd = %v, want area/core", out.Decisions.LabelsToAdd)
	}
}

func TestRunSummaryWriter(t *testing.T) {
	var summary string
	r, _, _ := newRunner(t, newFake())
	r.SummaryWriter = func(md string) { summary = md }

	out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil), Root: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if summary == "" || summary != out.Summary {
		t.Error("summary writer did not receive the rendered summary")
	}

	summary = ""
	if _, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, map[string]string{"enable_summary": "false"}), Root: t.TempDir()}); err != nil {
		t.Fatal(err)
	}
	if summary != "" {
		t.Error("summary written with enable_summary=false")
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		method   string
		failFast bool
		wantErr  bool
	}{
		{"pull request", "PullRequest", false, true},
		{"list files", "ListFiles", false, true},
		{"apply tolerated", "AddLabels", false, false},
		{"apply fail fast", "AddLabels", true, true},
		{"ci status tolerated", "CIStatus", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFake()
			fake.Errs = map[string]error{tc.method: boom}
			cfg := config.DefaultConfig()
			cfg.Runtime.FailFast = tc.failFast
			r, runs, _ := newRunner(t, fake)

			_, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, nil), Config: cfg, Root: t.TempDir()})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, boom) {
				t.Errorf("error %v does not wrap cause", err)
			}
			if tc.wantErr && tc.method != "PullRequest" {
				got, _ := runs.ListRunsByRepo(context.Background(), "acme/widgets", 1)
				if len(got) != 1 || got[0].Outcome != store.OutcomeError {
					t.Errorf("expected error run, got %+v", got)
				}
			}
		})
	}
}

func TestRunRemoteConfig(t *testing.T) {
	tests := []struct {
		name     string
		contents map[string]string
		inputs   map[string]string
		wantErr  bool
		check    func(t *testing.T, fake *githubtest.Fake, out *Outcome)
	}{
		{
			name:     "dry run from repository config",
			contents: map[string]string{".github/pr-labeler.yml": "runtime:\n  dry_run: true\n"},
			check: func(t *testing.T, fake *githubtest.Fake, out *Outcome) {
				if !out.Report.DryRun || fake.Called("AddLabels") {
					t.Error("repository runtime.dry_run was not honored")
				}
			},
		},
		{
			name: "defaults when missing",
			check: func(t *testing.T, fake *githubtest.Fake, out *Outcome) {
				if out.Report.DryRun || !fake.Called("AddLabels") {
					t.Error("expected labels to be applied with defaults")
				}
			},
		},
		{
			name: "directory rules",
			contents: map[string]string{
				".github/directory-labeler.yml": "rules:\n  - label: area/docs\n    include: [\"docs/**\"]\n",
			},
			inputs: map[string]string{"enable_directory_labeling": "true"},
			check: func(t *testing.T, fake *githubtest.Fake, out *Outcome) {
				if !slices.Contains(out.Decisions.LabelsToAdd, "area/docs") {
					t.Errorf("LabelsToAdd = %v, want area/docs", out.Decisions.LabelsToAdd)
				}
			},
		},
		{
			name:     "invalid configuration",
			contents: map[string]string{".github/pr-labeler.yml": "size:\n  thresholds:\n    small: 900\n    medium: 100\n"},
			wantErr:  true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := newFake()
			fake.Contents = tc.contents
			r, _, _ := newRunner(t, fake)

			out, err := r.Run(context.Background(), Job{Ref: ref, Inputs: parseInputs(t, tc.inputs), RemoteConfig: true})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.check != nil {
				tc.check(t, fake, out)
			}
		})
	}
}
