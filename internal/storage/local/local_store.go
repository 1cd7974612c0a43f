// Package local stores generated documents on the local filesystem. It is
// the default backend for single-machine installs where the plant PC is the
// server.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"formulab/internal/port"
)

type localStore struct {
	root string
}

// NewLocalStore creates an ArtifactStore rooted at dir, creating it if
// needed.
func NewLocalStore(dir string) (port.ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local store: create root: %w", err)
	}
	return &localStore{root: dir}, nil
}

// resolve maps a storage key to a path under the root, rejecting traversal.
func (s *localStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("local store: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *localStore) Put(_ context.Context, input port.PutInput) (*port.PutOutput, error) {
	path, err := s.resolve(input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("local store: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("local store: create file: %w", err)
	}
	if _, err := io.Copy(f, input.Body); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("local store: write %s: %w", input.Key, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("local store: close %s: %w", input.Key, err)
	}
	return &port.PutOutput{Ref: path}, nil
}

func (s *localStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("local store: open %s: %w", key, err)
	}
	return f, nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local store: delete %s: %w", key, err)
	}
	return nil
}
