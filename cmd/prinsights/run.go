package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"

	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/internal/pipeline"
	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/dirlabel"
	"github.com/prinsights/prinsights/pkg/inputs"
	"github.com/prinsights/prinsights/pkg/labeling"
)

// errFailed is returned when a fail_on_* condition tripped. The failures
// themselves are already reported as annotations.
var errFailed = errors.New("failure conditions met")

type clientFactory func(ctx context.Context, token, apiURL string) (github.Client, error)

func tokenClient(ctx context.Context, token, apiURL string) (github.Client, error) {
	c, err := github.NewTokenClient(ctx, token, apiURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Label the pull request of the current GitHub Actions run",
		Long: `Reads the action inputs and the pull_request event payload, decides labels,
applies them, writes the job summary and sets the step outputs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd.Context(), githubactions.New(), tokenClient)
		},
	}
}

func runAction(ctx context.Context, action *githubactions.Action, newClient clientFactory) error {
	in, err := inputs.Parse(action)
	if err != nil {
		action.Errorf("%v", err)
		return err
	}

	ghctx, err := action.Context()
	if err != nil {
		return fmt.Errorf("reading workflow context: %w", err)
	}
	number, ok := prNumber(ghctx.Event)
	if !ok {
		action.Warningf("event %q has no pull request; nothing to label", ghctx.EventName)
		return nil
	}
	owner, repo := ghctx.Repo()
	root := firstNonEmpty(ghctx.Workspace, ".")
	warn := func(msg string) { action.Warningf("%s", msg) }

	repoCfg, err := loadRepoConfig(root, in.ConfigPath, warn)
	if err != nil {
		action.Errorf("%v", err)
		return err
	}

	var dirCfg *dirlabel.Config
	if in.EnableDirectoryLabeling {
		if dirCfg, err = loadDirLabels(root, in.DirectoryLabelerConfigPath, warn); err != nil {
			action.Errorf("%v", err)
			return err
		}
	}

	var complexity *labeling.ComplexityMetrics
	if in.ComplexityReport != "" {
		if complexity, err = analysis.LoadComplexityReport(in.ComplexityReport); err != nil {
			warn(err.Error())
		}
	}

	client, err := newClient(ctx, in.GitHubToken, ghctx.APIURL)
	if err != nil {
		return err
	}
	runner := &pipeline.Runner{
		Client:        client,
		Logger:        slog.New(slog.NewTextHandler(os.Stderr, nil)),
		SummaryWriter: action.AddStepSummary,
	}
	out, err := runner.Run(ctx, pipeline.Job{
		Ref:        github.PRRef{Owner: owner, Repo: repo, Number: number},
		Inputs:     in,
		Config:     repoCfg,
		DirLabels:  dirCfg,
		Complexity: complexity,
		Root:       root,
	})
	if err != nil {
		action.Errorf("%v", err)
		return err
	}

	setOutputs(action, out)
	if out.Skipped {
		action.Infof("%s", out.SkipReason)
		return nil
	}
	for _, f := range out.Failures {
		action.Errorf("%s", f)
	}
	if out.Failed() {
		return errFailed
	}
	return nil
}

func setOutputs(action *githubactions.Action, out *pipeline.Outcome) {
	var added, removed []string
	if out.Applied != nil {
		added, removed = out.Applied.Added, out.Applied.Removed
	}
	hasViolations := out.Analysis != nil && out.Analysis.Violations.Any()

	action.SetOutput("labels_added", strings.Join(added, ","))
	action.SetOutput("labels_removed", strings.Join(removed, ","))
	action.SetOutput("size_label", out.SizeLabel)
	action.SetOutput("has_violations", strconv.FormatBool(hasViolations))
	action.SetOutput("run_id", out.RunID)
}

// prNumber reads the pull request number from a pull_request or
// pull_request_target payload.
func prNumber(event map[string]any) (int, bool) {
	if pr, ok := event["pull_request"].(map[string]any); ok {
		if n, ok := pr["number"].(float64); ok && n > 0 {
			return int(n), true
		}
	}
	if n, ok := event["number"].(float64); ok && n > 0 {
		return int(n), true
	}
	return 0, false
}
