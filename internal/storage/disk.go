package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore keeps attachments in a local directory that is served
// read-only under URLPrefix.
type DiskStore struct {
	dir       string
	urlPrefix string
}

// NewDiskStore creates dir if needed and returns a store writing into it.
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, urlPrefix: urlPrefix}, nil
}

// Dir returns the directory the store writes into.
func (s *DiskStore) Dir() string { return s.dir }

// Save writes r to <dir>/<name>. An existing file with the same name is
// never overwritten.
func (s *DiskStore) Save(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write attachment %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close attachment %s: %w", name, err)
	}

	return s.urlPrefix + "/" + name, nil
}

// Remove deletes <dir>/<name>. Removing a missing file is not an error.
func (s *DiskStore) Remove(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment %s: %w", name, err)
	}
	return nil
}
