package services

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"gobazaar/internal/models"
)

// Media subdirectories, relative to the static root.
const (
	ProfilePicsDir   = "media/profile_pics"
	ProductImagesDir = "media/product_images"
)

// MediaStore places uploaded files on disk and removes superseded ones.
type MediaStore struct {
	root   string
	logger *slog.Logger
}

func NewMediaStore(root string, logger *slog.Logger) *MediaStore {
	return &MediaStore{
		root:   root,
		logger: logger,
	}
}

// IsSentinel reports whether the path is one of the default assets,
// which must never be deleted.
func IsSentinel(rel string) bool {
	return rel == models.DefaultProfilePicture || rel == models.DefaultProductImage
}

// Store writes the file under subdir as "{ownerID}_{filename}" and
// returns the path relative to the static root. Two uploads with the
// same original filename by the same owner overwrite each other.
func (m *MediaStore) Store(src io.Reader, ownerID uint, originalFilename, subdir string) (string, error) {
	filename := fmt.Sprintf("%d_%s", ownerID, filepath.Base(originalFilename))
	rel := path.Join(subdir, filename)
	abs := filepath.Join(m.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	dst, err := os.Create(abs)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return rel, nil
}

// Replace deletes the superseded file, unless it is a sentinel default,
// then stores the new one. Deletion failures are logged and swallowed;
// the replacement still completes.
func (m *MediaStore) Replace(oldRel string, src io.Reader, ownerID uint, originalFilename, subdir string) (string, error) {
	if oldRel != "" && !IsSentinel(oldRel) {
		abs := filepath.Join(m.root, filepath.FromSlash(oldRel))
		if err := os.Remove(abs); err != nil {
			m.logger.Warn("Failed to delete old media file", "path", oldRel, "error", err)
		}
	}

	return m.Store(src, ownerID, originalFilename, subdir)
}
