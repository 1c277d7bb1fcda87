// Package diff builds the changed-file list from a local git checkout, for
// running the labeler outside of GitHub.
package diff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/prinsights/prinsights/pkg/analysis"
)

// Parse converts a unified diff into file changes. Deleted files are
// dropped and renames report the new name.
func Parse(raw string) ([]analysis.FileChange, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	changes := make([]analysis.FileChange, 0, len(parsed))
	for _, f := range parsed {
		if f.IsDelete {
			continue
		}
		fc := analysis.FileChange{Path: f.NewName, Status: status(f)}
		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					fc.Additions++
				case gitdiff.OpDelete:
					fc.Deletions++
				}
			}
		}
		changes = append(changes, fc)
	}
	return changes, nil
}

func status(f *gitdiff.File) string {
	switch {
	case f.IsNew:
		return "added"
	case f.IsRename:
		return "renamed"
	case f.IsCopy:
		return "copied"
	default:
		return "modified"
	}
}

// FromGit diffs base against head in dir. An empty head compares base with
// the working tree.
func FromGit(ctx context.Context, dir, base, head string) ([]analysis.FileChange, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff", "-M", base}
	if head != "" {
		args = append(args, head)
	}
	out, err := git(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	return Parse(out)
}

// CommitSubjects lists the subject line of every commit in base..head.
func CommitSubjects(ctx context.Context, dir, base, head string) ([]string, error) {
	if head == "" {
		head = "HEAD"
	}
	out, err := git(ctx, dir, "log", "--format=%s", base+".."+head)
	if err != nil {
		return nil, err
	}
	var subjects []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}
