// Package pipeline runs one labeling pass over a pull request: fetch,
// analyze, decide, apply, report and record.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prinsights/prinsights/internal/archive"
	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/internal/store"
	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/dirlabel"
	"github.com/prinsights/prinsights/pkg/i18n"
	"github.com/prinsights/prinsights/pkg/inputs"
	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/pattern"
	"github.com/prinsights/prinsights/pkg/surface"
)

// CommentMarker identifies the summary comment so reruns edit it in place.
const CommentMarker = "<!-- prinsights -->"

// Job describes one run.
type Job struct {
	Ref    github.PRRef
	Inputs *inputs.Inputs
	// Config is the repository configuration. Nil uses the defaults.
	Config *config.Config
	// DirLabels enables the directory classifier when non-nil.
	DirLabels  *dirlabel.Config
	Complexity *labeling.ComplexityMetrics
	// Root is the checkout directory. Files missing there are sized remotely.
	Root   string
	DryRun bool
	// RemoteConfig reads a nil Config and DirLabels from the head commit.
	RemoteConfig bool
}

// Outcome is the result of a run.
type Outcome struct {
	RunID      string
	HeadSHA    string
	Skipped    bool
	SkipReason string
	Decisions  labeling.LabelDecisions
	Applied    *github.ApplyResult
	Analysis   *analysis.Result
	Report     *surface.Report
	Summary    string
	SizeLabel  string
	Failures   []string
}

// Failed reports whether a failure condition tripped.
func (o *Outcome) Failed() bool { return len(o.Failures) > 0 }

// Runner executes jobs. Archive, Runs and SummaryWriter are optional.
type Runner struct {
	Client  github.Client
	Archive archive.Store
	Runs    store.Runs
	Logger  *slog.Logger
	// SummaryWriter receives the Markdown summary when enable_summary is set.
	SummaryWriter func(markdown string)
	// CheckRunName creates a check run on the head commit when non-empty.
	CheckRunName string

	now func() time.Time
}

func (r *Runner) log() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Run executes the job. Failure conditions are reported on the Outcome, not
// as an error; errors mean the run itself could not complete.
func (r *Runner) Run(ctx context.Context, job Job) (*Outcome, error) {
	start := r.clock()
	out, err := r.run(ctx, job)

	outcome := store.OutcomeApplied
	switch {
	case err != nil:
		outcome = store.OutcomeError
	case out.Skipped:
		outcome = store.OutcomeSkipped
	case out.Failed():
		outcome = store.OutcomeFailed
	}
	elapsed := r.clock().Sub(start)
	runsTotal.WithLabelValues(string(outcome)).Inc()
	runDuration.Observe(elapsed.Seconds())

	if out != nil {
		r.record(ctx, job, out, outcome, elapsed)
	}
	if err != nil {
		r.log().Error("labeling run failed", "pr", job.Ref.String(), "error", err)
		return out, err
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, job Job) (*Outcome, error) {
	log := r.log().With("pr", job.Ref.String())
	in := job.Inputs
	if in == nil {
		parsed, err := inputs.Parse(inputs.MapGetter{"github_token": "-"})
		if err != nil {
			return nil, err
		}
		in = parsed
	}
	out := &Outcome{RunID: uuid.New().String()}

	pr, err := r.Client.PullRequest(ctx, job.Ref)
	if err != nil {
		return nil, fmt.Errorf("fetching pull request: %w", err)
	}
	out.HeadSHA = pr.HeadSHA

	repoCfg, dirCfg := job.Config, job.DirLabels
	if job.RemoteConfig {
		if repoCfg == nil {
			var warnings []string
			repoCfg, warnings, err = LoadRemoteConfig(ctx, r.Client, job.Ref, pr.HeadSHA, in.ConfigPath)
			for _, w := range warnings {
				log.Warn("configuration warning", "warning", w)
			}
			if err != nil {
				return out, fmt.Errorf("loading configuration: %w", err)
			}
		}
		if dirCfg == nil && in.EnableDirectoryLabeling {
			if dirCfg, err = LoadRemoteDirLabels(ctx, r.Client, job.Ref, pr.HeadSHA, in.DirectoryLabelerConfigPath); err != nil {
				return out, fmt.Errorf("loading directory rules: %w", err)
			}
		}
	}
	if repoCfg == nil {
		repoCfg = config.DefaultConfig()
	}
	dryRun := job.DryRun || repoCfg.Runtime.DryRun
	tr := i18n.New(language(in, repoCfg))
	if pr.Draft && in.SkipDraftPR {
		out.Skipped = true
		out.SkipReason = tr.T("skip.draft", nil)
		log.Info("skipping draft pull request")
		return out, nil
	}

	files, err := r.Client.ListFiles(ctx, job.Ref)
	if err != nil {
		return out, fmt.Errorf("listing files: %w", err)
	}

	analyzer := analysis.New(analysis.Options{
		Limits: analysis.Limits{
			FileSize:     in.FileSizeLimit,
			FileLines:    in.FileLinesLimit,
			MaxAdditions: in.PRAdditionsLimit,
			MaxFileCount: in.PRFilesLimit,
		},
		Excluder: Excluder(in, repoCfg),
		Root:     job.Root,
		Remote:   &github.RemoteSizer{Client: r.Client, Owner: job.Ref.Owner, Repo: job.Ref.Repo, SHA: pr.HeadSHA},
		Logger:   log,
	})
	res, err := analyzer.Analyze(ctx, files)
	if err != nil {
		return out, fmt.Errorf("analyzing files: %w", err)
	}
	if job.Complexity != nil {
		res.Metrics.Complexity = job.Complexity
	}
	out.Analysis = res

	cfg := repoCfg.Labeler()
	in.Apply(&cfg)

	var prCtx *labeling.PRContext
	if cfg.Risk.Enabled {
		prCtx = r.prContext(ctx, log, job.Ref, pr.HeadSHA, cfg.Risk.UseCIStatus)
	}

	classifiers := labeling.DefaultClassifiers()
	if dirCfg != nil {
		classifiers = append(classifiers, &dirlabel.Classifier{
			Config:  dirCfg,
			Options: dirlabel.Options{MaxLabels: in.MaxLabels, UseDefaultExcludes: in.UseDefaultExcludes},
		})
		cfg.NamespacePolicies = mergePolicies(cfg.NamespacePolicies, dirCfg.Policies())
	}
	decisions := labeling.NewEngine(tr, classifiers...).Decide(res.Metrics, cfg, res.Violations, prCtx)
	out.Decisions = decisions
	out.SizeLabel = sizeLabel(decisions.LabelsToAdd)
	for _, lr := range decisions.Reasoning {
		labelsApplied.WithLabelValues(string(lr.Category)).Inc()
	}

	applied, err := github.NewApplicator(r.Client, log).Apply(ctx, job.Ref, decisions, github.ApplyOptions{
		AutoRemove:    in.AutoRemoveLabels,
		CreateMissing: repoCfg.Labels.CreateMissing,
		Color:         repoCfg.Labels.Color,
		DryRun:        dryRun,
	})
	if err != nil {
		if repoCfg.Runtime.FailFast {
			return out, fmt.Errorf("applying labels: %w", err)
		}
		log.Warn("applying labels failed", "error", err)
		res.Warnings = append(res.Warnings, "applying labels: "+err.Error())
	}
	out.Applied = applied

	out.Failures = Failures(tr, in, cfg, decisions.LabelsToAdd)

	report := &surface.Report{
		Title:     repoCfg.Summary.Title,
		Repo:      job.Ref.Owner + "/" + job.Ref.Repo,
		PR:        job.Ref.Number,
		RunID:     out.RunID,
		DryRun:    dryRun,
		Decisions: decisions,
		Analysis:  res,
		Failures:  out.Failures,
	}
	if applied != nil {
		report.Applied = applied.Current
		report.Removed = applied.Removed
	}
	out.Report = report
	out.Summary = (&surface.MarkdownRenderer{Translator: tr}).Markdown(report)

	if in.EnableSummary && r.SummaryWriter != nil {
		r.SummaryWriter(out.Summary)
	}

	if ShouldComment(in.CommentOnPR, report) {
		if dryRun {
			log.Info("dry run: would comment on pull request")
		} else if err := r.Client.UpsertComment(ctx, job.Ref, CommentMarker, CommentMarker+"\n"+out.Summary); err != nil {
			if repoCfg.Runtime.FailFast {
				return out, fmt.Errorf("commenting: %w", err)
			}
			log.Warn("commenting failed", "error", err)
		}
	}

	if r.CheckRunName != "" && !dryRun {
		data := (&surface.CheckRunRenderer{Translator: tr}).BuildCheckRunData(report)
		if err := r.Client.CreateCheckRun(ctx, job.Ref.Owner, job.Ref.Repo, pr.HeadSHA, r.CheckRunName, data); err != nil {
			log.Warn("creating check run failed", "error", err)
		}
	}

	r.archive(ctx, log, report)

	log.Info("labeling run complete",
		"run_id", out.RunID,
		"labels", len(decisions.LabelsToAdd),
		"size", out.SizeLabel,
		"violations", res.Violations.Any(),
		"failures", len(out.Failures),
	)
	return out, nil
}

// prContext gathers the risk classifier's optional signals. Failures only
// drop the signal.
func (r *Runner) prContext(ctx context.Context, log *slog.Logger, ref github.PRRef, sha string, useCI bool) *labeling.PRContext {
	prCtx := &labeling.PRContext{}
	if useCI {
		ci, err := r.Client.CIStatus(ctx, ref.Owner, ref.Repo, sha)
		if err != nil {
			log.Warn("fetching CI status failed", "error", err)
		} else {
			prCtx.CIStatus = ci
		}
	}
	subjects, err := r.Client.ListCommitSubjects(ctx, ref)
	if err != nil {
		log.Warn("listing commits failed", "error", err)
	} else {
		prCtx.CommitMessages = subjects
	}
	return prCtx
}

func (r *Runner) archive(ctx context.Context, log *slog.Logger, report *surface.Report) {
	if r.Archive == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.Warn("encoding decision failed", "error", err)
		return
	}
	if err := r.Archive.Put(ctx, report.Repo, report.RunID, data); err != nil {
		log.Warn("archiving decision failed", "error", err)
	}
}

func (r *Runner) record(ctx context.Context, job Job, out *Outcome, outcome store.Outcome, elapsed time.Duration) {
	if r.Runs == nil {
		return
	}
	run := &store.Run{
		ID:            out.RunID,
		Repo:          job.Ref.Owner + "/" + job.Ref.Repo,
		PRNumber:      job.Ref.Number,
		HeadSHA:       out.HeadSHA,
		Outcome:       outcome,
		LabelsAdded:   []string{},
		LabelsRemoved: []string{},
		SizeLabel:     out.SizeLabel,
		Failures:      out.Failures,
		DurationMs:    elapsed.Milliseconds(),
		CreatedAt:     r.clock().UTC(),
	}
	if run.Failures == nil {
		run.Failures = []string{}
	}
	if out.Applied != nil {
		run.LabelsAdded = out.Applied.Added
		run.LabelsRemoved = out.Applied.Removed
	}
	if out.Report != nil {
		run.DryRun = out.Report.DryRun
	}
	if out.Analysis != nil {
		run.HasViolations = out.Analysis.Violations.Any()
	}
	if err := r.Runs.RecordRun(ctx, run); err != nil {
		r.log().Warn("recording run failed", "run_id", run.ID, "error", err)
	}
}

// Excluder combines the configured and input exclusion patterns. Defaults
// apply only when both sides allow them.
func Excluder(in *inputs.Inputs, cfg *config.Config) *pattern.Excluder {
	excludes := slices.Concat(cfg.Exclude.Additional, in.AdditionalExcludePatterns)
	return pattern.NewExcluder(in.UseDefaultExcludes && cfg.Exclude.UseDefaults, excludes...)
}

// Failures evaluates the fail_on_* conditions against the decided labels.
func Failures(tr labeling.Translator, in *inputs.Inputs, cfg labeling.Config, labels []string) []string {
	var out []string
	if in.FailOnLargeFiles && slices.Contains(labels, labeling.LabelLargeFiles) {
		out = append(out, tr.T("failure.largeFiles", nil))
	}
	if in.FailOnTooManyFiles && slices.Contains(labels, labeling.LabelTooManyFiles) {
		out = append(out, tr.T("failure.tooManyFiles", nil))
	}
	if in.SizeCheckEnabled(cfg) {
		threshold := "size/" + in.FailOnPRSize
		if size := sizeLabel(labels); size != "" && labeling.SizeIndex(size) >= labeling.SizeIndex(threshold) {
			out = append(out, tr.T("failure.prSize", map[string]any{"size": size, "threshold": threshold}))
		}
	}
	return out
}

func sizeLabel(labels []string) string {
	for _, l := range labels {
		if labeling.SizeIndex(l) >= 0 {
			return l
		}
	}
	return ""
}

// ShouldComment applies comment_on_pr. Auto comments only when a limit was
// exceeded.
func ShouldComment(mode inputs.CommentMode, report *surface.Report) bool {
	switch mode {
	case inputs.CommentAlways:
		return true
	case inputs.CommentNever:
		return false
	default:
		return report.HasViolations()
	}
}

// mergePolicies adds extra policies without overriding configured ones.
func mergePolicies(base, extra map[string]labeling.Policy) map[string]labeling.Policy {
	merged := make(map[string]labeling.Policy, len(base)+len(extra))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range base {
		merged[k] = v
	}
	return merged
}

func language(in *inputs.Inputs, cfg *config.Config) string {
	if lang := strings.TrimSpace(in.Language); lang != "" {
		return lang
	}
	if cfg.Language != "" {
		return cfg.Language
	}
	return "en"
}
