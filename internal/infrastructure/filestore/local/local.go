// Package local stores page images on the local filesystem.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ersonp/watlas/internal/infrastructure/config"
)

// DefaultURLPrefix is where the HTTP API serves the image directory.
const DefaultURLPrefix = "/images"

// Store implements ports.ImageStore on a directory.
type Store struct {
	dir       string
	publicURL string
}

// NewStore creates the image directory if needed.
func NewStore(cfg config.StorageConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("image directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	prefix := strings.TrimRight(cfg.PublicURL, "/")
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	return &Store{dir: cfg.Dir, publicURL: prefix}, nil
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Upload writes data to dir/key, replacing any previous file.
func (s *Store) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// Delete removes dir/key. A missing file is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
