package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/prinsights/prinsights/internal/github"
	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/dirlabel"
)

// LoadRemoteConfig reads the labeler configuration from the repository at
// sha. An empty path probes config.ConfigPaths. A missing file yields the
// defaults.
func LoadRemoteConfig(ctx context.Context, client github.Client, ref github.PRRef, sha, path string) (*config.Config, []string, error) {
	paths := config.ConfigPaths
	if path != "" {
		paths = []string{path}
	}
	for _, p := range paths {
		data, err := client.FileContent(ctx, ref.Owner, ref.Repo, sha, filepath.ToSlash(p))
		if errors.Is(err, github.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		cfg, warnings, err := config.Parse(data)
		if err != nil {
			return nil, warnings, fmt.Errorf("%s: %w", p, err)
		}
		return cfg, warnings, nil
	}
	return config.DefaultConfig(), nil, nil
}

// LoadRemoteDirLabels reads directory rules at sha. A missing file returns nil.
func LoadRemoteDirLabels(ctx context.Context, client github.Client, ref github.PRRef, sha, path string) (*dirlabel.Config, error) {
	data, err := client.FileContent(ctx, ref.Owner, ref.Repo, sha, filepath.ToSlash(path))
	if errors.Is(err, github.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := dirlabel.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
