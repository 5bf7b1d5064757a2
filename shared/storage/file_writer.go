package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// FileWriter writes whole output files under a base directory
type FileWriter struct {
	baseDir string
}

// NewFileWriter creates a writer rooted at baseDir, creating it if needed
func NewFileWriter(baseDir string) (*FileWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{baseDir: baseDir}, nil
}

// Path returns the full path of name inside the base directory
func (w *FileWriter) Path(name string) string {
	return filepath.Join(w.baseDir, name)
}

// WriteFile replaces name with data. The content goes to a temp file in the
// same directory first, is synced, then renamed over the target, so readers
// never observe a partial file.
func (w *FileWriter) WriteFile(name string, data []byte) error {
	target := w.Path(name)

	tmp, err := os.CreateTemp(w.baseDir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	// Write with loop to handle short writes
	totalWritten := 0
	for totalWritten < len(data) {
		n, err := tmp.Write(data[totalWritten:])
		if err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write %s after %d/%d bytes: %w", name, totalWritten, len(data), err)
		}
		totalWritten += n
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// RemoveMatching deletes the regular files in the base directory whose name
// matches re and returns the names removed.
func (w *FileWriter) RemoveMatching(re *regexp.Regexp) ([]string, error) {
	entries, err := os.ReadDir(w.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", w.baseDir, err)
	}
	removed := make([]string, 0)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !re.MatchString(entry.Name()) {
			continue
		}
		if err := os.Remove(w.Path(entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}
