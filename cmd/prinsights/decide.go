package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prinsights/prinsights/internal/pipeline"
	"github.com/prinsights/prinsights/pkg/analysis"
	"github.com/prinsights/prinsights/pkg/diff"
	"github.com/prinsights/prinsights/pkg/i18n"
	"github.com/prinsights/prinsights/pkg/inputs"
	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/surface"
)

type decideOpts struct {
	repoPath         string
	baseRef          string
	headRef          string
	configPath       string
	outputFmt        string
	complexityReport string
	language         string
	verbose          bool
}

func newDecideCmd() *cobra.Command {
	var opts decideOpts

	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Decide labels for a local diff without calling GitHub",
		Long: `Diffs --base against --head in a local checkout, analyzes the changed files,
runs the label engine and renders the decision. Nothing is applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoPath, "repo", ".", "Path to the repository checkout")
	cmd.Flags().StringVar(&opts.baseRef, "base", "", "Base git ref (required)")
	cmd.Flags().StringVar(&opts.headRef, "head", "HEAD", "Head git ref; empty compares against the working tree")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Labeler config file (default: nearest .github/pr-labeler.yml)")
	cmd.Flags().StringVar(&opts.outputFmt, "format", "terminal", "Output format: terminal, json or markdown")
	cmd.Flags().StringVar(&opts.complexityReport, "complexity-report", "", "Precomputed complexity report (JSON)")
	cmd.Flags().StringVar(&opts.language, "language", "", "Summary language (en or ja)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log file probes to stderr")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}

func runDecide(ctx context.Context, w io.Writer, opts decideOpts) error {
	if ctx == nil {
		ctx = context.Background()
	}
	warn := func(msg string) { fmt.Fprintf(os.Stderr, "warning: %s\n", msg) }

	repoCfg, err := loadRepoConfig(opts.repoPath, opts.configPath, warn)
	if err != nil {
		return err
	}
	in, err := inputs.Parse(inputs.MapGetter{"github_token": "-"})
	if err != nil {
		return err
	}
	tr := i18n.New(firstNonEmpty(opts.language, repoCfg.Language, "en"))

	renderer, err := newRenderer(opts.outputFmt, tr)
	if err != nil {
		return err
	}

	changes, err := diff.FromGit(ctx, opts.repoPath, opts.baseRef, opts.headRef)
	if err != nil {
		return fmt.Errorf("diffing %s..%s: %w", opts.baseRef, opts.headRef, err)
	}
	fmt.Fprintf(os.Stderr, "Analyzing %d changed files\n", len(changes))

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	res, err := analysis.New(analysis.Options{
		Limits: analysis.Limits{
			FileSize:     in.FileSizeLimit,
			FileLines:    in.FileLinesLimit,
			MaxAdditions: in.PRAdditionsLimit,
			MaxFileCount: in.PRFilesLimit,
		},
		Excluder: pipeline.Excluder(in, repoCfg),
		Root:     opts.repoPath,
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}).Analyze(ctx, changes)
	if err != nil {
		return err
	}
	for _, warning := range res.Warnings {
		warn(warning)
	}

	if opts.complexityReport != "" {
		if res.Metrics.Complexity, err = analysis.LoadComplexityReport(opts.complexityReport); err != nil {
			return err
		}
	}

	cfg := repoCfg.Labeler()
	var prCtx *labeling.PRContext
	if cfg.Risk.Enabled {
		subjects, err := diff.CommitSubjects(ctx, opts.repoPath, opts.baseRef, opts.headRef)
		if err != nil {
			warn(err.Error())
		}
		prCtx = &labeling.PRContext{CommitMessages: subjects}
	}

	decisions := labeling.NewEngine(tr).Decide(res.Metrics, cfg, res.Violations, prCtx)
	report := &surface.Report{
		Title:     repoCfg.Summary.Title,
		Decisions: decisions,
		Analysis:  res,
		Failures:  pipeline.Failures(tr, in, cfg, decisions.LabelsToAdd),
	}
	return renderer.Render(w, report)
}

func newRenderer(format string, tr labeling.Translator) (surface.Renderer, error) {
	switch format {
	case "terminal", "text":
		return &surface.TerminalRenderer{Translator: tr}, nil
	case "json":
		return &surface.JSONRenderer{}, nil
	case "markdown", "md":
		return &surface.MarkdownRenderer{Translator: tr}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, json or markdown)", format)
	}
}
