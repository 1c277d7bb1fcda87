// Package analysis turns a PR's changed files into labeler metrics and
// threshold violations.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/prinsights/prinsights/pkg/labeling"
	"github.com/prinsights/prinsights/pkg/pattern"
)

// DefaultConcurrency bounds parallel file probes.
const DefaultConcurrency = 8

// FileChange is one file in a pull request diff.
type FileChange struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Status    string `json:"status,omitempty"`
}

// Limits are the violation thresholds.
type Limits struct {
	FileSize     int64 // bytes
	FileLines    int
	MaxAdditions int
	MaxFileCount int
}

// Stats counts what happened to each changed file.
type Stats struct {
	TotalFiles         int      `json:"totalFiles"`
	ExcludedAdditions  int      `json:"excludedAdditions"`
	FilesExcluded      []string `json:"filesExcluded"`
	FilesSkippedBinary []string `json:"filesSkippedBinary"`
	FilesWithErrors    []string `json:"filesWithErrors"`
}

// Result is the output of Analyze.
type Result struct {
	Metrics    labeling.PRMetrics  `json:"metrics"`
	Violations labeling.Violations `json:"violations"`
	Stats      Stats               `json:"stats"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// ContentSizer returns the size of a file at the PR head from a remote source.
type ContentSizer interface {
	ContentSize(ctx context.Context, path string) (int64, error)
}

// Options configure an Analyzer.
type Options struct {
	Limits      Limits
	Excluder    *pattern.Excluder
	Root        string       // checkout directory; "" means the working directory
	Remote      ContentSizer // optional last-resort size probe
	Concurrency int
	Logger      *slog.Logger
}

// Analyzer probes changed files on disk.
type Analyzer struct {
	opts Options
	log  *slog.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Excluder == nil {
		opts.Excluder = pattern.NewExcluder(true)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{opts: opts, log: log}
}

type outcome int

const (
	outcomeAnalyzed outcome = iota
	outcomeExcluded
	outcomeBinary
	outcomeError
)

type fileResult struct {
	outcome outcome
	metric  labeling.FileMetric
	err     error
}

// Analyze classifies every changed file and computes violations. Files past
// MaxFileCount are not inspected. Per-file failures are reported in
// Stats.FilesWithErrors and Warnings; only context cancellation is returned
// as an error.
func (a *Analyzer) Analyze(ctx context.Context, changes []FileChange) (*Result, error) {
	limits := a.opts.Limits
	res := &Result{
		Metrics: labeling.PRMetrics{
			Files:    []labeling.FileMetric{},
			AllFiles: make([]string, 0, len(changes)),
		},
		Violations: labeling.Violations{
			LargeFiles:       []labeling.ViolationDetail{},
			ExceedsFileLines: []labeling.ViolationDetail{},
		},
		Stats: Stats{
			TotalFiles:         len(changes),
			FilesExcluded:      []string{},
			FilesSkippedBinary: []string{},
			FilesWithErrors:    []string{},
		},
	}
	for _, c := range changes {
		res.Metrics.AllFiles = append(res.Metrics.AllFiles, c.Path)
	}

	a.log.Info("analyzing files", "count", len(changes))

	if limits.MaxFileCount > 0 && len(changes) > limits.MaxFileCount {
		res.Violations.ExceedsFileCount = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("File count %d exceeds limit %d", len(changes), limits.MaxFileCount))
		changes = changes[:limits.MaxFileCount]
	}

	results := make([]fileResult, len(changes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, c := range changes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.processFile(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing files: %w", err)
	}

	for i, r := range results {
		c := changes[i]
		switch r.outcome {
		case outcomeExcluded:
			res.Stats.FilesExcluded = append(res.Stats.FilesExcluded, c.Path)
			res.Stats.ExcludedAdditions += c.Additions
		case outcomeBinary:
			res.Stats.FilesSkippedBinary = append(res.Stats.FilesSkippedBinary, c.Path)
		case outcomeError:
			res.Stats.FilesWithErrors = append(res.Stats.FilesWithErrors, c.Path)
			res.Stats.ExcludedAdditions += c.Additions
			res.Warnings = append(res.Warnings, fmt.Sprintf("Failed to analyze file %s: %v", c.Path, r.err))
		case outcomeAnalyzed:
			m := r.metric
			res.Metrics.Files = append(res.Metrics.Files, m)
			res.Metrics.TotalAdditions += m.Additions
			if limits.FileSize > 0 && m.Size > limits.FileSize {
				res.Violations.LargeFiles = append(res.Violations.LargeFiles, labeling.ViolationDetail{
					File:        m.Path,
					ActualValue: m.Size,
					Limit:       limits.FileSize,
					Severity:    labeling.SeverityCritical,
				})
				res.Warnings = append(res.Warnings, fmt.Sprintf("File %s exceeds size limit: %d > %d", m.Path, m.Size, limits.FileSize))
			}
			if limits.FileLines > 0 && m.Lines > limits.FileLines {
				res.Violations.ExceedsFileLines = append(res.Violations.ExceedsFileLines, labeling.ViolationDetail{
					File:        m.Path,
					ActualValue: int64(m.Lines),
					Limit:       int64(limits.FileLines),
					Severity:    labeling.SeverityWarning,
				})
				res.Warnings = append(res.Warnings, fmt.Sprintf("File %s exceeds line limit: %d > %d", m.Path, m.Lines, limits.FileLines))
			}
		}
	}

	if limits.MaxAdditions > 0 && res.Metrics.TotalAdditions > limits.MaxAdditions {
		res.Violations.ExceedsAdditions = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("Total additions %d exceeds limit %d", res.Metrics.TotalAdditions, limits.MaxAdditions))
	}

	a.log.Info("analysis complete",
		"analyzed", len(res.Metrics.Files),
		"excluded", len(res.Stats.FilesExcluded),
		"binary", len(res.Stats.FilesSkippedBinary),
		"errors", len(res.Stats.FilesWithErrors),
	)
	return res, nil
}

func (a *Analyzer) processFile(ctx context.Context, c FileChange) fileResult {
	if a.opts.Excluder.Excluded(c.Path) {
		return fileResult{outcome: outcomeExcluded}
	}

	full := a.localPath(c.Path)
	if IsBinary(full) {
		a.log.Debug("skipping binary file", "path", c.Path)
		return fileResult{outcome: outcomeBinary}
	}

	size, err := a.fileSize(ctx, c.Path)
	if err != nil {
		return fileResult{outcome: outcomeError, err: err}
	}

	// Without a checkout the remote size is all there is; lines stay 0.
	lines := 0
	if _, err := os.Stat(full); a.opts.Remote == nil || !errors.Is(err, fs.ErrNotExist) {
		lineCap := 0
		if a.opts.Limits.FileLines > 0 {
			lineCap = a.opts.Limits.FileLines + 1
		}
		lines, err = CountLines(ctx, full, lineCap)
		if err != nil {
			return fileResult{outcome: outcomeError, err: err}
		}
	}

	return fileResult{
		outcome: outcomeAnalyzed,
		metric: labeling.FileMetric{
			Path:      c.Path,
			Size:      size,
			Lines:     lines,
			Additions: c.Additions,
			Deletions: c.Deletions,
		},
	}
}

func (a *Analyzer) localPath(p string) string {
	if a.opts.Root == "" {
		return filepath.FromSlash(p)
	}
	return filepath.Join(a.opts.Root, filepath.FromSlash(p))
}
