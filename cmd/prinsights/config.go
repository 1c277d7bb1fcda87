package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prinsights/prinsights/pkg/config"
	"github.com/prinsights/prinsights/pkg/dirlabel"
)

// loadRepoConfig loads an explicit config path (relative to root) or the
// nearest .github/pr-labeler.yml. Missing files yield the defaults.
func loadRepoConfig(root, path string, warn func(string)) (*config.Config, error) {
	if path == "" {
		path = config.FindConfigFile(root)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, warnings, err := config.Load(path)
	for _, w := range warnings {
		warn(fmt.Sprintf("%s: %s", path, w))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// loadDirLabels loads the directory rules. A missing file disables the
// feature with a warning.
func loadDirLabels(root, path string, warn func(string)) (*dirlabel.Config, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		warn(fmt.Sprintf("directory labeler config %s not found; directory labeling disabled", path))
		return nil, nil
	}
	cfg, err := dirlabel.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
