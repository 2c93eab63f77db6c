// Package blob provides object storage adapters.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediavault/ports"
)

// Local implements ports.ObjectStore on the local filesystem. Objects
// live under root/<bucket>/<key>. Intended for development and tests;
// production deployments point this port at S3-compatible storage.
type Local struct {
	root string
}

// NewLocal creates a filesystem object store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: dir}
}

// Put writes an object, creating parent directories as needed.
func (l *Local) Put(ctx context.Context, bucket, key string, data []byte) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Delete removes an object. Deleting a missing object is not an error.
func (l *Local) Delete(ctx context.Context, bucket, key string) error {
	path, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Move renames an object within a bucket.
func (l *Local) Move(ctx context.Context, bucket, oldKey, newKey string) error {
	oldPath, err := l.path(bucket, oldKey)
	if err != nil {
		return err
	}
	newPath, err := l.path(bucket, newKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("move object: %w", err)
	}
	return nil
}

// path resolves a bucket/key pair under root, rejecting traversal.
func (l *Local) path(bucket, key string) (string, error) {
	clean := filepath.Clean(filepath.Join(l.root, bucket, filepath.FromSlash(key)))
	if !strings.HasPrefix(clean, filepath.Clean(l.root)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return clean, nil
}

// Ensure interface compliance.
var _ ports.ObjectStore = (*Local)(nil)
