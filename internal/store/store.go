// Package store persists the pipeline's collections as JSON snapshot files.
// Every write is a whole-file replacement through a temp file and rename, so
// readers never observe a half-written collection. Loads are forgiving:
// a missing file yields the empty default, and a corrupted or schema-invalid
// file yields the empty default plus a warning instead of an error.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/daniel/canvas-reclaim-sync/schemas"
)

// File names for the persisted collections, matching the layout the desktop
// config manager and earlier sync scripts expect.
const (
	SeenFile     = "seen_assignments.json"
	PrevSeenFile = "prev_seen_assignments.json"
	NewNamesFile = "new_assignment_names.json"
	RulesFile    = "assignment_time_rules.json"
	TimedFile    = "timed_assignments.json"
)

// Store reads and writes the sync data files under a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute path of a collection file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// load reads and validates one collection file. The returned warning is
// non-empty when the file existed but had to be discarded; defaultVal is
// returned in that case and when the file does not exist.
func load[T any](s *Store, name, schemaName string, defaultVal T) (T, string, error) {
	path := s.Path(name)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultVal, "", nil
	}
	if err != nil {
		return defaultVal, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return defaultVal, fmt.Sprintf("%s is corrupted (%v); starting empty", name, err), nil
	}

	if err := schemas.Validate(schemaName, data); err != nil {
		return defaultVal, fmt.Sprintf("%s does not match the expected structure (%v); starting empty", name, err), nil
	}

	return v, "", nil
}

// save atomically replaces one collection file with the serialized value.
func (s *Store) save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}
	data = append(data, '\n')

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// copyFile duplicates src to dst through the same atomic replacement path.
func (s *Store) copyFile(src, dst string) error {
	data, err := os.ReadFile(s.Path(src))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+dst+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", dst, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := os.Rename(tmpPath, s.Path(dst)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}
