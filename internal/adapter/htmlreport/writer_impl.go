package htmlreport

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// LatestName always points at the newest report.
	LatestName = "index.html"

	reportTimeLayout = "2006-01-02T15:04:05.000Z"
)

// Writer stores each report as <dir>/<timestamp>.html.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates a writer for dir. A nil now uses time.Now.
func NewWriter(dir string, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{dir: dir, now: now}
}

// Dir returns the reports directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores document and swaps the index.html symlink over to it.
func (w *Writer) Write(_ context.Context, document []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory %s: %w", w.dir, err)
	}

	name := w.now().UTC().Format(reportTimeLayout) + ".html"
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, document, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	if err := w.pointLatestAt(name); err != nil {
		return "", err
	}
	return path, nil
}

// pointLatestAt replaces index.html with a relative symlink to name. The rename
// keeps readers from ever seeing index.html missing.
func (w *Writer) pointLatestAt(name string) error {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("failed to generate temp link name: %w", err)
	}
	tmp := filepath.Join(w.dir, ".index-"+hex.EncodeToString(suffix))

	if err := os.Symlink(name, tmp); err != nil {
		return fmt.Errorf("failed to create latest link: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(w.dir, LatestName)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}
