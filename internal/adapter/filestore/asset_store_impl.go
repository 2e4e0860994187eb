// Package filestore keeps downloaded images and reports on the local filesystem.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AssetStore writes image payloads to <dir>/<imageID>.jpg.
type AssetStore struct {
	dir string
}

// NewAssetStore creates the directory if needed.
func NewAssetStore(dir string) (*AssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images directory %s: %w", dir, err)
	}
	return &AssetStore{dir: dir}, nil
}

// Path returns where the payload of imageID is stored.
func (s *AssetStore) Path(imageID int64) string {
	return filepath.Join(s.dir, AssetName(imageID))
}

// Save writes data through a temp file so readers never see a partial image.
func (s *AssetStore) Save(_ context.Context, imageID int64, data []byte) error {
	return writeFileAtomic(s.Path(imageID), data)
}

// AssetName is the file name an image is stored under, relative to the images directory.
func AssetName(imageID int64) string {
	return strconv.FormatInt(imageID, 10) + ".jpg"
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
