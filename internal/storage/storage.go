// Package storage keeps attachment blobs. Keys are slash-separated relative
// paths such as attachments/<task_id>/<uuid>.pdf.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// DiskLocal is the disk name recorded on attachments written by FileStorage
const DiskLocal = "local"

// Storage is a flat key/value blob store
type Storage interface {
	Put(key string, r io.Reader) (int64, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
	Disk() string
}

// FileStorage stores blobs on an afero filesystem
type FileStorage struct {
	fs afero.Fs
}

// NewLocalStorage stores blobs on the OS filesystem below root
func NewLocalStorage(root string) (*FileStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return NewFileStorage(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewFileStorage wraps any afero filesystem; tests pass afero.NewMemMapFs()
func NewFileStorage(fs afero.Fs) *FileStorage {
	return &FileStorage{fs: fs}
}

// Disk returns the disk name stored on attachment rows
func (s *FileStorage) Disk() string {
	return DiskLocal
}

// Put writes r under key and returns the number of bytes written
func (s *FileStorage) Put(key string, r io.Reader) (int64, error) {
	name, err := clean(key)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	f, err := s.fs.Create(name)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", key, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(name)
		return 0, fmt.Errorf("failed to write %s: %w", key, err)
	}
	return n, nil
}

// Open returns a reader for key
func (s *FileStorage) Open(key string) (io.ReadCloser, error) {
	name, err := clean(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	return f, nil
}

// Delete removes key. Missing keys are not an error.
func (s *FileStorage) Delete(key string) error {
	name, err := clean(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func clean(key string) (string, error) {
	name := path.Clean("/" + key)
	if name == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return strings.TrimPrefix(name, "/"), nil
}
