package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// AttachmentStore writes validated uploads to local disk. Files are named
// by UUID to keep caller-supplied names out of the filesystem.
type AttachmentStore struct {
	dir string
}

func NewAttachmentStore(dir string) *AttachmentStore {
	return &AttachmentStore{dir: dir}
}

func (s *AttachmentStore) Save(filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create attachment dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.New().String()+filepath.Ext(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	return path, nil
}

// Remove deletes a saved attachment whose owning message never made it
// onto the ledger.
func (s *AttachmentStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}
	return nil
}
