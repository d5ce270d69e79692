// Package afero stores uploaded payloads on a filesystem through afero,
// so tests can run against an in-memory filesystem.
package afero

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docprocess-core/internal/core/domain"
	"github.com/custodia-labs/docprocess-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BlobStore = (*Store)(nil)

// Store implements driven.BlobStore on an afero filesystem
type Store struct {
	fs afero.Fs
}

// NewStore creates a store rooted at dir on the OS filesystem
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return NewStoreWithFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// NewStoreWithFs creates a store on any afero filesystem
func NewStoreWithFs(fsys afero.Fs) *Store {
	return &Store{fs: fsys}
}

// Put writes data under key, creating parent directories as needed
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o750); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, name, data, 0o640); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Get reads the object stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the object; missing objects are not an error
func (s *Store) Delete(ctx context.Context, key string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Ping checks the root is readable
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.fs.Stat("/")
	return err
}

// cleanKey keeps keys inside the store root
func cleanKey(key string) (string, error) {
	name := path.Clean("/" + key)
	if key == "" || name == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: blob key %q", domain.ErrInvalidInput, key)
	}
	return name, nil
}
