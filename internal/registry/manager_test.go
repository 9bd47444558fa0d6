package registry

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AlbertJQM/Proyecto-Final/internal/config"
	"github.com/AlbertJQM/Proyecto-Final/internal/record"
)

var idPattern = regexp.MustCompile(`^img_[0-9a-f]{8}$`)

func newTestManager(t *testing.T) (*Manager, *config.Config) {
	t.Helper()
	cfg := config.WithBaseDir(t.TempDir())
	return New(cfg, zap.NewNop()), cfg
}

func writeSourceImage(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake image bytes"), 0640); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func testMetadata() Metadata {
	return Metadata{
		PatientID:       "P-0042",
		AcquisitionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Diagnosis:       "Glaucoma",
		Split:           record.SplitTest,
		Fovea:           &record.Fovea{X: 512, Y: 498},
		Dims:            &record.Dims{W: 1024, H: 1024},
	}
}

// TestNew_BootstrapsLayout verifies that construction creates the split
// folders and a header-only metadata CSV.
func TestNew_BootstrapsLayout(t *testing.T) {
	mgr, cfg := newTestManager(t)

	for _, split := range record.Splits() {
		dir := filepath.Join(cfg.DatasetRootPath(), string(split))
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("Expected split directory %s: %v", dir, err)
		}
	}

	data, err := os.ReadFile(cfg.MetadataCSVPath())
	if err != nil {
		t.Fatalf("Expected metadata CSV to exist: %v", err)
	}
	if !strings.HasPrefix(string(data), "id_imagen,ruta_archivo") {
		t.Errorf("Expected header row, got %q", string(data))
	}
	if mgr.Count() != 0 {
		t.Errorf("Expected an empty collection, got %d records", mgr.Count())
	}
}

// TestRegister_CopiesFileAndPersistsRecord verifies the full registration
// path: generated id, copy into the split folder, CSV rewrite.
func TestRegister_CopiesFileAndPersistsRecord(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	rec, err := mgr.Register(src, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !idPattern.MatchString(rec.ID) {
		t.Errorf("Expected id matching img_<8 hex>, got %q", rec.ID)
	}

	wantPath := filepath.Join(cfg.DatasetRootPath(), "Test", "scan.png")
	if rec.FilePath != wantPath {
		t.Errorf("Expected managed path %q, got %q", wantPath, rec.FilePath)
	}
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("Expected the copy to exist in the Test folder: %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("Expected the original source to remain: %v", err)
	}

	// A fresh manager over the same layout sees the persisted row
	reloaded := New(cfg, zap.NewNop())
	got, ok := reloaded.Get(rec.ID)
	if !ok {
		t.Fatal("Expected the record to survive a reload from disk")
	}
	if got.PatientID != "P-0042" || got.Diagnosis != "Glaucoma" {
		t.Errorf("Reloaded record lost fields: %+v", got)
	}
	if got.Fovea == nil || got.Fovea.X != 512 {
		t.Errorf("Reloaded record lost the fovea pair: %+v", got.Fovea)
	}
}

// TestRegister_DefaultsToTrainSplit verifies that an empty split lands
// the copy in the Train folder.
func TestRegister_DefaultsToTrainSplit(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	meta := testMetadata()
	meta.Split = ""
	rec, err := mgr.Register(src, meta)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if rec.Split != record.SplitTrain {
		t.Errorf("Expected split Train, got %q", rec.Split)
	}
	if _, err := os.Stat(filepath.Join(cfg.DatasetRootPath(), "Train", "scan.png")); err != nil {
		t.Errorf("Expected the copy under Train: %v", err)
	}
}

// TestRegister_MissingSourceFails verifies the existence check fires
// before anything is copied or recorded.
func TestRegister_MissingSourceFails(t *testing.T) {
	mgr, cfg := newTestManager(t)

	_, err := mgr.Register(filepath.Join(cfg.BaseDir, "nope.png"), testMetadata())
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("Expected ErrSourceMissing, got %v", err)
	}
	if mgr.Count() != 0 {
		t.Error("Expected no record after a failed registration")
	}
}

// TestRegister_InvalidMetadataRollsBackCopy verifies that a validation
// failure removes the freshly made copy and records nothing.
func TestRegister_InvalidMetadataRollsBackCopy(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	meta := testMetadata()
	meta.PatientID = ""
	if _, err := mgr.Register(src, meta); err == nil {
		t.Fatal("Expected registration to fail without a patient id")
	}

	if mgr.Count() != 0 {
		t.Error("Expected no record after the failed registration")
	}
	copied := filepath.Join(cfg.DatasetRootPath(), "Test", "scan.png")
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Error("Expected the orphan copy to be rolled back")
	}

	rows, err := os.ReadFile(cfg.MetadataCSVPath())
	if err != nil {
		t.Fatalf("Reading CSV failed: %v", err)
	}
	if strings.Count(string(rows), "\n") > 1 {
		t.Errorf("Expected a header-only CSV, got %q", string(rows))
	}
}

// TestRegister_GeneratedIDsAreUnique registers nothing but exercises the
// id generator directly for collisions across a large batch.
func TestRegister_GeneratedIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		id := newID()
		if !idPattern.MatchString(id) {
			t.Fatalf("Generated id %q does not match img_<8 hex>", id)
		}
		if seen[id] {
			t.Fatalf("Generated duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

// TestUpdate_RelocatesAcrossSplits verifies that changing the split moves
// the managed copy and removes the superseded one, leaving exactly one
// physical file.
func TestUpdate_RelocatesAcrossSplits(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	meta := testMetadata()
	meta.Split = record.SplitTrain
	rec, err := mgr.Register(src, meta)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	cs := record.ChangeSet{
		FilePath: rec.FilePath, // the managed Train copy backs the update
		Split:    record.SplitValidation,
	}
	if err := mgr.Update(rec.ID, cs); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	oldCopy := filepath.Join(cfg.DatasetRootPath(), "Train", "scan.png")
	newCopy := filepath.Join(cfg.DatasetRootPath(), "Validation", "scan.png")
	if _, err := os.Stat(oldCopy); !os.IsNotExist(err) {
		t.Error("Expected the Train copy to be cleaned up")
	}
	if _, err := os.Stat(newCopy); err != nil {
		t.Errorf("Expected the Validation copy to exist: %v", err)
	}

	got, ok := mgr.Get(rec.ID)
	if !ok {
		t.Fatal("Record disappeared after update")
	}
	if got.Split != record.SplitValidation {
		t.Errorf("Expected split Validation, got %q", got.Split)
	}
	if got.FilePath != newCopy {
		t.Errorf("Expected file path %q, got %q", newCopy, got.FilePath)
	}
}

// TestUpdate_MergesOnlyProvidedFields verifies the field-by-field merge:
// unset change-set fields keep their previous values.
func TestUpdate_MergesOnlyProvidedFields(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	rec, err := mgr.Register(src, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	newDiagnosis := "Sano"
	cs := record.ChangeSet{
		FilePath:  rec.FilePath,
		Split:     rec.Split,
		Diagnosis: &newDiagnosis,
	}
	if err := mgr.Update(rec.ID, cs); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := mgr.Get(rec.ID)
	if got.Diagnosis != "Sano" {
		t.Errorf("Expected the diagnosis to change, got %q", got.Diagnosis)
	}
	if got.PatientID != "P-0042" {
		t.Errorf("Expected the patient id untouched, got %q", got.PatientID)
	}
	if got.Fovea == nil || got.Fovea.X != 512 {
		t.Errorf("Expected the fovea pair untouched, got %+v", got.Fovea)
	}
	if got.ID != rec.ID {
		t.Errorf("Expected the id immutable, got %q", got.ID)
	}
}

// TestUpdate_UnknownIDFails verifies the not-found error for updates.
func TestUpdate_UnknownIDFails(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	err := mgr.Update("img_deadbeef", record.ChangeSet{FilePath: src})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
}

// TestUpdate_MissingSourceFails verifies that an update without an
// existing backing file is rejected before any lookup.
func TestUpdate_MissingSourceFails(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")
	rec, err := mgr.Register(src, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err = mgr.Update(rec.ID, record.ChangeSet{FilePath: filepath.Join(cfg.BaseDir, "gone.png")})
	if !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("Expected ErrSourceMissing, got %v", err)
	}
}

// TestDelete_RemovesFileRecordAndRow verifies the three-way removal:
// physical file, in-memory record, CSV row.
func TestDelete_RemovesFileRecordAndRow(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	rec, err := mgr.Register(src, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := mgr.Delete(rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok := mgr.Get(rec.ID); ok {
		t.Error("Expected the record to be gone from memory")
	}
	if _, err := os.Stat(rec.FilePath); !os.IsNotExist(err) {
		t.Error("Expected the managed copy to be unlinked")
	}

	data, err := os.ReadFile(cfg.MetadataCSVPath())
	if err != nil {
		t.Fatalf("Reading CSV failed: %v", err)
	}
	if strings.Contains(string(data), rec.ID) {
		t.Error("Expected the CSV row to be removed")
	}
}

// TestDelete_ProceedsWhenFileAlreadyGone verifies that a missing image
// file does not keep the record alive.
func TestDelete_ProceedsWhenFileAlreadyGone(t *testing.T) {
	mgr, cfg := newTestManager(t)
	src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")

	rec, err := mgr.Register(src, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := os.Remove(rec.FilePath); err != nil {
		t.Fatalf("Removing the managed copy failed: %v", err)
	}

	if err := mgr.Delete(rec.ID); err != nil {
		t.Fatalf("Delete failed when the file was already gone: %v", err)
	}
	if mgr.Count() != 0 {
		t.Error("Expected the record removed despite the missing file")
	}
}

// TestDelete_UnknownIDFails verifies the not-found error for deletes.
func TestDelete_UnknownIDFails(t *testing.T) {
	mgr, _ := newTestManager(t)

	if err := mgr.Delete("img_deadbeef"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
}

// TestList_ReturnsInsertionOrderedSnapshots verifies ordering and that
// mutating returned records does not touch the collection.
func TestList_ReturnsInsertionOrderedSnapshots(t *testing.T) {
	mgr, cfg := newTestManager(t)

	var ids []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		src := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), name)
		rec, err := mgr.Register(src, testMetadata())
		if err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
		ids = append(ids, rec.ID)
	}

	list := mgr.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(list))
	}
	for i, rec := range list {
		if rec.ID != ids[i] {
			t.Errorf("Position %d: expected %q, got %q", i, ids[i], rec.ID)
		}
	}

	list[0].PatientID = "tampered"
	list[0].Fovea.X = -1
	fresh, _ := mgr.Get(ids[0])
	if fresh.PatientID == "tampered" || fresh.Fovea.X == -1 {
		t.Error("Mutating a snapshot leaked into the collection")
	}
}

// TestLoad_SkipsMalformedRows verifies that a corrupt row is dropped with
// the surrounding rows intact.
func TestLoad_SkipsMalformedRows(t *testing.T) {
	cfg := config.WithBaseDir(t.TempDir())

	csv := strings.Join([]string{
		strings.Join(record.Headers, ","),
		"img_00000001,/x/a.png,P-1,2024-01-02,Glaucoma,Train,,,,",
		"img_00000002,/x/b.png,P-2,not-a-date,Glaucoma,Train,,,,",
		"img_00000003,/x/c.png,P-3,2024-01-04,Sano,Test,10,20,640,480",
		"",
	}, "\n")
	if err := os.MkdirAll(cfg.MetadataDirPath(), 0750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(cfg.MetadataCSVPath(), []byte(csv), 0640); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mgr := New(cfg, zap.NewNop())
	if mgr.Count() != 2 {
		t.Fatalf("Expected 2 surviving records, got %d", mgr.Count())
	}
	if _, ok := mgr.Get("img_00000002"); ok {
		t.Error("Expected the malformed row to be skipped")
	}
	if rec, ok := mgr.Get("img_00000003"); !ok || rec.Dims == nil || rec.Dims.W != 640 {
		t.Error("Expected the row after the malformed one to load intact")
	}
}

// TestReload_PicksUpExternalEdits verifies Reload re-reads rows written
// by another process.
func TestReload_PicksUpExternalEdits(t *testing.T) {
	mgr, cfg := newTestManager(t)
	if mgr.Count() != 0 {
		t.Fatalf("Expected an empty start, got %d records", mgr.Count())
	}

	csv := strings.Join([]string{
		strings.Join(record.Headers, ","),
		"img_00000009,/x/z.png,P-9,2024-03-03,Glaucoma,Validation,,,,",
		"",
	}, "\n")
	if err := os.WriteFile(cfg.MetadataCSVPath(), []byte(csv), 0640); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mgr.Reload()
	if mgr.Count() != 1 {
		t.Fatalf("Expected 1 record after reload, got %d", mgr.Count())
	}
	if _, ok := mgr.Get("img_00000009"); !ok {
		t.Error("Expected the externally written record after reload")
	}
}

// TestRegister_InPlaceSourceIsNotTruncated verifies that registering a
// file already sitting at its destination path uses it as-is instead of
// truncating it through a self-copy.
func TestRegister_InPlaceSourceIsNotTruncated(t *testing.T) {
	mgr, cfg := newTestManager(t)
	managed := writeSourceImage(t, filepath.Join(cfg.DatasetRootPath(), "Test"), "scan.png")

	rec, err := mgr.Register(managed, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if rec.FilePath != managed {
		t.Errorf("Expected the in-place path %q, got %q", managed, rec.FilePath)
	}

	data, err := os.ReadFile(managed)
	if err != nil {
		t.Fatalf("Reading the managed file failed: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Errorf("Expected the file bytes untouched, got %d bytes", len(data))
	}
}

// TestRegister_FailedValidationSparesExistingManagedFile verifies that
// the rollback after a rejected registration only removes a fresh copy,
// never a destination that predates the call, such as another record's
// managed file with the same basename.
func TestRegister_FailedValidationSparesExistingManagedFile(t *testing.T) {
	mgr, cfg := newTestManager(t)
	srcA := writeSourceImage(t, filepath.Join(cfg.BaseDir, "incoming"), "scan.png")
	recA, err := mgr.Register(srcA, testMetadata())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	srcB := writeSourceImage(t, filepath.Join(cfg.BaseDir, "staging"), "scan.png")
	meta := testMetadata()
	meta.PatientID = ""
	if _, err := mgr.Register(srcB, meta); err == nil {
		t.Fatal("Expected registration to fail without a patient id")
	}

	if _, err := os.Stat(recA.FilePath); err != nil {
		t.Errorf("Expected the existing record's managed file to survive: %v", err)
	}
	if mgr.Count() != 1 {
		t.Errorf("Expected only the first record, got %d", mgr.Count())
	}
}
