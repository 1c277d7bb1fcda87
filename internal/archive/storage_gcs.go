package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements Store using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed Store.
// It uses Application Default Credentials.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, errors.New("gcs archive requires a bucket")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Put(ctx context.Context, repo, runID string, data []byte) error {
	k, err := key(repo, runID)
	if err != nil {
		return err
	}
	w := s.client.Bucket(s.bucket).Object(k).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", k, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", k, err)
	}
	return nil
}

func (s *GCSStorage) Get(ctx context.Context, repo, runID string) ([]byte, error) {
	k, err := key(repo, runID)
	if err != nil {
		return nil, err
	}
	r, err := s.client.Bucket(s.bucket).Object(k).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", k, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
