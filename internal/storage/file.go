package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps images on local disk. The web server exposes Dir under BaseURL.
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory on disk.
func (s *FileStore) Dir() string {
	return s.dir
}

// BaseURL returns the URL prefix images are served under.
func (s *FileStore) BaseURL() string {
	return s.baseURL
}

// Save writes the image and its thumbnail.
func (s *FileStore) Save(ctx context.Context, data []byte, filename string) (Object, error) {
	p, err := prepare(data, filename)
	if err != nil {
		return Object{}, err
	}

	if err := s.write(p.key, p.originalData); err != nil {
		return Object{}, err
	}
	if err := s.write(p.thumbKey, p.thumbnail); err != nil {
		if derr := s.Delete(ctx, p.key); derr != nil {
			return Object{}, fmt.Errorf("%w (also failed to clean up: %v)", err, derr)
		}
		return Object{}, err
	}

	return Object{
		Key:          p.key,
		URL:          s.baseURL + "/" + p.key,
		ThumbnailKey: p.thumbKey,
		ThumbnailURL: s.baseURL + "/" + p.thumbKey,
	}, nil
}

// Delete removes the given keys. Missing files are ignored.
func (s *FileStore) Delete(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if key == "" {
			continue
		}
		full, err := s.resolve(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) write(key string, data []byte) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", key, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// resolve maps a key to a path inside dir, rejecting traversal.
func (s *FileStore) resolve(key string) (string, error) {
	full := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}
