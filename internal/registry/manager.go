// Package registry implements the record manager: the single point of
// mutation for the in-memory record collection, keeping it, the metadata
// CSV, and the physical files in the dataset tree reconciled after every
// successful call.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AlbertJQM/Proyecto-Final/internal/config"
	"github.com/AlbertJQM/Proyecto-Final/internal/dataset"
	"github.com/AlbertJQM/Proyecto-Final/internal/record"
	"github.com/AlbertJQM/Proyecto-Final/internal/store"
)

// Predefined errors reported to the presentation layer.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrSourceMissing  = errors.New("source file does not exist")
)

// Metadata is the registration payload accompanying a new source file.
type Metadata struct {
	PatientID       string
	AcquisitionDate time.Time
	Diagnosis       string
	Split           record.Split // empty defaults to Train
	Fovea           *record.Fovea
	Dims            *record.Dims
}

// Manager owns the record collection. All mutation goes through it; the
// presentation layer only ever sees snapshots. A single mutex guards the
// collection because the TUI and the metadata file watcher live in one
// process.
type Manager struct {
	mu      sync.RWMutex
	records []*record.Record // insertion order preserved
	store   *store.CSVStore
	tree    *dataset.Tree
	log     *zap.Logger
}

// New builds a Manager for the layout in cfg, bootstraps the directory
// structure and the metadata CSV, and loads any existing rows.
//
// Bootstrap and load problems are logged and the manager starts with
// whatever state survived: the tool stays usable even when part of the
// layout could not be created, matching the forgiving startup of the
// data-entry workflow it supports.
func New(cfg *config.Config, log *zap.Logger) *Manager {
	m := &Manager{
		store: store.New(cfg.MetadataCSVPath()),
		tree:  dataset.New(cfg.DatasetRootPath()),
		log:   log,
	}
	m.initializeEnvironment(cfg)
	m.loadExisting()
	return m
}

// initializeEnvironment creates the metadata directory, the three split
// folders, and a header-only CSV when none exists. Idempotent.
func (m *Manager) initializeEnvironment(cfg *config.Config) {
	if err := os.MkdirAll(cfg.MetadataDirPath(), 0750); err != nil {
		m.log.Error("creating metadata directory failed",
			zap.String("dir", cfg.MetadataDirPath()), zap.Error(err))
	}
	if err := m.tree.EnsureLayout(); err != nil {
		m.log.Error("creating dataset layout failed",
			zap.String("root", m.tree.Root()), zap.Error(err))
	}
	if !m.store.Exists() {
		m.log.Info("creating metadata file", zap.String("path", m.store.Path()))
		if err := m.store.WriteAll(record.Headers, nil); err != nil {
			m.log.Error("creating metadata file failed", zap.Error(err))
		}
	}
}

// loadExisting reads the CSV into memory. A row that fails to parse is
// skipped with a row-level diagnostic instead of aborting the load.
func (m *Manager) loadExisting() {
	rows, err := m.store.ReadAll()
	if err != nil {
		m.log.Error("reading metadata file failed, starting empty", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range rows {
		rec, err := record.FromRow(row)
		if err != nil {
			// Row 1 is the header, so data row i is line i+2 in the file.
			m.log.Warn("skipping malformed metadata row",
				zap.Int("line", i+2), zap.Error(err))
			continue
		}
		m.records = append(m.records, rec)
	}
	m.log.Info("loaded records", zap.Int("count", len(m.records)))
}

// Register copies sourcePath into the split folder, creates and validates
// a new record, and persists the table. A source already sitting at its
// destination is used as-is, no copy. On validation failure a freshly
// made copy is removed again so no orphan accumulates in the dataset
// tree; a destination that predates the call is never removed, because
// it may be another record's managed file.
func (m *Manager) Register(sourcePath string, meta Metadata) (*record.Record, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, sourcePath)
	}

	split := meta.Split
	if split == "" {
		split = record.SplitTrain
	}
	dest := m.tree.DestPath(split, sourcePath)

	inPlace := dataset.SamePath(sourcePath, dest)
	destExisted := false
	if !inPlace {
		if _, err := os.Stat(dest); err == nil {
			destExisted = true
		}
		if err := m.tree.Copy(sourcePath, dest); err != nil {
			m.log.Error("copying source into dataset failed", zap.Error(err))
			return nil, err
		}
	}

	rec := &record.Record{
		ID:              newID(),
		FilePath:        dest,
		PatientID:       meta.PatientID,
		AcquisitionDate: meta.AcquisitionDate,
		Diagnosis:       meta.Diagnosis,
		Split:           split,
		Fovea:           meta.Fovea,
		Dims:            meta.Dims,
	}

	if err := rec.Validate(); err != nil {
		if !inPlace && !destExisted {
			if rmErr := os.Remove(dest); rmErr != nil {
				m.log.Warn("removing copy after failed validation",
					zap.String("path", dest), zap.Error(rmErr))
			}
		}
		return nil, fmt.Errorf("validating new record: %w", err)
	}

	m.mu.Lock()
	m.records = append(m.records, rec)
	m.persistLocked()
	m.mu.Unlock()

	m.log.Info("registered image",
		zap.String("id", rec.ID),
		zap.String("patient", rec.PatientID),
		zap.String("split", string(rec.Split)),
		zap.String("path", rec.FilePath))
	return rec.Clone(), nil
}

// Update relocates the record's backing file when the change-set moves it
// to a different split or name, cleans up superseded copies inside the
// dataset tree, merges the change-set field by field, and persists.
func (m *Manager) Update(id string, cs record.ChangeSet) error {
	if cs.FilePath == "" {
		return fmt.Errorf("%w: no file path in change-set", ErrSourceMissing)
	}
	if _, err := os.Stat(cs.FilePath); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceMissing, cs.FilePath)
	}

	split := cs.Split
	if split == "" {
		split = record.SplitTrain
	}
	dest := m.tree.DestPath(split, cs.FilePath)

	newPath := cs.FilePath
	if !dataset.SamePath(cs.FilePath, dest) {
		if err := m.tree.Copy(cs.FilePath, dest); err != nil {
			m.log.Error("copying updated file into dataset failed", zap.Error(err))
			return err
		}
		if removed, err := m.tree.CleanupDuplicate(cs.FilePath, dest); err != nil {
			m.log.Warn("duplicate cleanup failed", zap.Error(err))
		} else if removed {
			m.log.Info("removed superseded copy", zap.String("path", cs.FilePath))
		}
		newPath = dest
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.findLocked(id)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	// The record's previous file may be a third location entirely, e.g.
	// when the operator re-picks the file from outside the tree while the
	// managed copy sits in another split.
	if prev := rec.FilePath; prev != "" && !dataset.SamePath(prev, newPath) {
		if _, err := os.Stat(prev); err == nil {
			if removed, err := m.tree.CleanupDuplicate(prev, newPath); err != nil {
				m.log.Warn("duplicate cleanup failed", zap.Error(err))
			} else if removed {
				m.log.Info("removed superseded copy", zap.String("path", prev))
			}
		}
	}

	merged := cs
	merged.FilePath = newPath
	merged.Apply(rec)
	m.persistLocked()

	m.log.Info("updated record", zap.String("id", id), zap.String("path", rec.FilePath))
	return nil
}

// Delete unlinks the record's backing file and removes the record. An
// unlink failure is logged but does not keep the record alive: memory and
// the CSV are updated unconditionally.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, rec := range m.records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	if err := os.Remove(m.records[idx].FilePath); err != nil && !os.IsNotExist(err) {
		m.log.Error("removing image file failed",
			zap.String("path", m.records[idx].FilePath), zap.Error(err))
	}

	m.records = append(m.records[:idx], m.records[idx+1:]...)
	m.persistLocked()

	m.log.Info("deleted record", zap.String("id", id))
	return nil
}

// Reload discards the in-memory collection and re-reads the CSV. Used
// when the metadata file changed underneath the running process.
func (m *Manager) Reload() {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
	m.loadExisting()
}

// List returns an independent snapshot of the collection in insertion
// order, safe for the caller to hold and render.
func (m *Manager) List() []*record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*record.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec.Clone())
	}
	return out
}

// Get returns a copy of the record with the given id.
func (m *Manager) Get(id string) (*record.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.findLocked(id)
	if rec == nil {
		return nil, false
	}
	return rec.Clone(), true
}

// Count returns the number of records currently held.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// CSVPath returns the metadata file path, for external-change watching.
func (m *Manager) CSVPath() string {
	return m.store.Path()
}

// CSVModTime returns the metadata file's current modification time.
func (m *Manager) CSVModTime() (time.Time, bool) {
	return m.store.ModTime()
}

// DatasetRoot returns the managed dataset root path.
func (m *Manager) DatasetRoot() string {
	return m.tree.Root()
}

// findLocked returns the live record with the given id. Callers hold the
// lock and must not leak the pointer.
func (m *Manager) findLocked(id string) *record.Record {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// persistLocked rewrites the whole CSV from the in-memory collection.
// A write failure is logged and the in-memory state stays authoritative
// until the next rewrite.
func (m *Manager) persistLocked() {
	rows := make([][]string, 0, len(m.records))
	for _, rec := range m.records {
		rows = append(rows, rec.ToRow())
	}
	if err := m.store.WriteAll(record.Headers, rows); err != nil {
		m.log.Error("rewriting metadata file failed", zap.Error(err))
	}
}

// newID generates a short random image id. Uniqueness is probabilistic:
// the first 8 hex characters of a v4 UUID leave a collision chance small
// enough for a hand-curated dataset, and ids are never reused because
// they are only ever generated here.
func newID() string {
	return "img_" + uuid.New().String()[:8]
}
