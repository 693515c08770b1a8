// Package resumefile persists the most recent raw resumption token in a
// flat text file, for the store-less export mode. The file holds exactly one
// cursor and is overwritten on every update.
package resumefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a single-cursor resume file.
type File struct {
	path string
}

// New returns a resume file handle for the given path. Nothing is touched
// until Save is called.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the resume file path.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the resume file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads the stored cursor, trimming surrounding whitespace. A missing
// file returns an empty cursor and no error.
func (f *File) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read resume file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save atomically replaces the stored cursor.
func (f *File) Save(token string) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create resume file directory: %w", err)
		}
	}

	tempPath := f.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary resume file: %w", err)
	}

	if _, err := file.WriteString(token + "\n"); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write resume file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync resume file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close resume file: %w", err)
	}

	if err := os.Rename(tempPath, f.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace resume file: %w", err)
	}

	return nil
}

// Delete removes the resume file. Removing a missing file is not an error.
func (f *File) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete resume file: %w", err)
	}
	return nil
}
