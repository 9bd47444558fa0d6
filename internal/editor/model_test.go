package editor

import (
	"testing"

	"github.com/AlbertJQM/Proyecto-Final/internal/record"
)

// TestSortRecords_CaseFoldedByPatient verifies the patient sort ignores
// case and keeps registration order among equal patient ids.
func TestSortRecords_CaseFoldedByPatient(t *testing.T) {
	recs := []*record.Record{
		{ID: "img_00000001", PatientID: "zeta"},
		{ID: "img_00000002", PatientID: "Alpha"},
		{ID: "img_00000003", PatientID: "beta"},
		{ID: "img_00000004", PatientID: "alpha"},
	}

	sortRecords(recs, true)

	wantIDs := []string{"img_00000002", "img_00000004", "img_00000003", "img_00000001"}
	for i, want := range wantIDs {
		if recs[i].ID != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, recs[i].ID)
		}
	}
}

// TestSortRecords_LeavesOrderWhenOff verifies the no-op path used while
// registration order is displayed.
func TestSortRecords_LeavesOrderWhenOff(t *testing.T) {
	recs := []*record.Record{
		{ID: "img_00000001", PatientID: "zeta"},
		{ID: "img_00000002", PatientID: "alpha"},
	}

	sortRecords(recs, false)

	if recs[0].ID != "img_00000001" || recs[1].ID != "img_00000002" {
		t.Error("Expected the order untouched when sorting is off")
	}
}
