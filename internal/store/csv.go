// Package store implements whole-file persistence of the record table as
// a flat CSV with a fixed header order. There is no partial update: every
// mutation rewrites the complete file from the caller's in-memory state.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CSVStore reads and writes one CSV file.
type CSVStore struct {
	path string
}

// New returns a store bound to path. The file is not touched until the
// first read or write.
func New(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the file the store is bound to.
func (s *CSVStore) Path() string {
	return s.path
}

// Exists reports whether the backing file is present on disk.
func (s *CSVStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// ModTime returns the backing file's modification time. Used by the
// editor for external-change detection; a stat failure reports the zero
// time and ok=false.
func (s *CSVStore) ModTime() (time.Time, bool) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// WriteAll overwrites the file with the header row followed by every data
// row, in the given order. The write goes to a temp file in the same
// directory and is renamed over the original, so a crash mid-write never
// leaves a truncated table behind.
func (s *CSVStore) WriteAll(headers []string, rows [][]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "metadata-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(headers); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp to %s: %w", s.path, err)
	}
	return nil
}

// ReadAll returns every data row after the header, in file order. A
// missing file is not an error: it yields an empty table, the same as a
// header-only file.
func (s *CSVStore) ReadAll() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Trailing columns were hand-edited out of some legacy files; keep the
	// reader permissive and let row-level parsing decide.
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[1:], nil
}
