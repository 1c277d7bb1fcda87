package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGet(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"labelsToAdd":["size/small"]}`)
	if err := s.Put(ctx, "acme/widgets", "run1", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "acme/widgets", "run1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "acme", "widgets", "decisions", "run1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	_, err := s.Get(context.Background(), "acme/widgets", "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestKeyRejectsTraversal(t *testing.T) {
	tests := []struct {
		repo, runID string
	}{
		{"acme", "run1"},
		{"acme/../etc", "run1"},
		{"../x", "run1"},
		{"acme/widgets", "../run1"},
		{"acme/widgets", ""},
		{"acme/wid/gets", "run1"},
	}
	s := NewLocalStorage(t.TempDir())
	for _, tt := range tests {
		if err := s.Put(context.Background(), tt.repo, tt.runID, []byte("{}")); err == nil {
			t.Errorf("Put(%q, %q) succeeded, want error", tt.repo, tt.runID)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(context.Background(), Config{Backend: "local", LocalPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	if ls, ok := store.(*LocalStorage); !ok || ls.BaseDir != dir {
		t.Errorf("Open(local) = %#v", store)
	}

	if _, err := Open(context.Background(), Config{Backend: "ftp"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := Open(context.Background(), Config{Backend: "s3"}); err == nil {
		t.Error("expected error for s3 without bucket")
	}
}
