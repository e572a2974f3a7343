package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage keeps uploaded audio payloads in the content directory under
// server-assigned filenames.
type Storage interface {
	// Save writes the payload durably and returns the stored filename.
	// The caller commits the referencing database row only afterwards.
	Save(originalName string, r io.Reader) (string, error)
	Open(storedName string) (io.ReadCloser, error)
	Remove(storedName string) error
	Path(storedName string) (string, error)
}

type localStorage struct {
	dir string
}

func NewLocalStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content directory %s: %w", dir, err)
	}
	return &localStorage{dir: dir}, nil
}

// Save assigns a fresh uuid filename, so a stored file is never silently
// overwritten with another song's content. The payload goes to a temp file
// first and is renamed into place once fully written and synced.
func (s *localStorage) Save(originalName string, r io.Reader) (string, error) {
	stored := uuid.New().String() + sanitizeExt(originalName)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write payload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, stored)); err != nil {
		return "", fmt.Errorf("failed to place payload: %w", err)
	}
	return stored, nil
}

func (s *localStorage) Open(storedName string) (io.ReadCloser, error) {
	path, err := s.Path(storedName)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *localStorage) Remove(storedName string) error {
	path, err := s.Path(storedName)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Path rejects names that would escape the content directory.
func (s *localStorage) Path(storedName string) (string, error) {
	if storedName != filepath.Base(storedName) || storedName == "." || storedName == "" {
		return "", fmt.Errorf("invalid stored filename %q", storedName)
	}
	return filepath.Join(s.dir, storedName), nil
}

// sanitizeExt keeps only a plain alphanumeric extension from the client's
// filename; anything else is dropped.
func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
