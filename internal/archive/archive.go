// Package archive stores rendered labeling decisions as JSON blobs, keyed by
// repository and run ID.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when no decision exists for the key.
var ErrNotFound = errors.New("archive: decision not found")

// Store abstracts blob storage for decision documents.
type Store interface {
	Put(ctx context.Context, repo, runID string, data []byte) error
	Get(ctx context.Context, repo, runID string) ([]byte, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend   string // local, gcs or s3
	Bucket    string
	LocalPath string
	S3        S3Config
}

// Open creates the Store named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		path := cfg.LocalPath
		if path == "" {
			path = "./data/decisions"
		}
		return NewLocalStorage(path), nil
	case "gcs":
		s, err := NewGCSStorage(ctx, cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s3cfg := cfg.S3
		if s3cfg.Bucket == "" {
			s3cfg.Bucket = cfg.Bucket
		}
		s, err := NewS3Storage(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// key returns "owner/repo/decisions/<runID>.json".
func key(repo, runID string) (string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || !validSegment(owner) || !validSegment(name) {
		return "", fmt.Errorf("invalid repository %q", repo)
	}
	if !validSegment(runID) {
		return "", fmt.Errorf("invalid run id %q", runID)
	}
	return owner + "/" + name + "/decisions/" + runID + ".json", nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

// LocalStorage implements Store using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(repo, runID string) (string, error) {
	k, err := key(repo, runID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.BaseDir, filepath.FromSlash(k)), nil
}

// Put stores a decision blob.
func (s *LocalStorage) Put(_ context.Context, repo, runID string, data []byte) error {
	path, err := s.path(repo, runID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get retrieves a decision blob.
func (s *LocalStorage) Get(_ context.Context, repo, runID string) ([]byte, error) {
	path, err := s.path(repo, runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}
