package editor

import (
	"testing"
	"time"

	"github.com/AlbertJQM/Proyecto-Final/internal/record"
)

func fieldByLabel(t *testing.T, label string) fieldDef {
	t.Helper()
	for _, f := range editFields() {
		if f.Label == label {
			return f
		}
	}
	t.Fatalf("No field labeled %q", label)
	return fieldDef{}
}

func draftRecord() *record.Record {
	return &record.Record{
		ID:              "img_0a1b2c3d",
		FilePath:        "/x/Train/scan.png",
		PatientID:       "P-1",
		AcquisitionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Diagnosis:       "Glaucoma",
		Split:           record.SplitTrain,
	}
}

// TestDateField_ParsesISOAndRejectsOtherFormats verifies the acquisition
// date setter only accepts YYYY-MM-DD.
func TestDateField_ParsesISOAndRejectsOtherFormats(t *testing.T) {
	f := fieldByLabel(t, "Acquired")
	r := draftRecord()

	if err := f.Set(r, "2023-12-31"); err != nil {
		t.Fatalf("Set rejected a valid ISO date: %v", err)
	}
	if r.AcquisitionDate.Year() != 2023 || r.AcquisitionDate.Month() != 12 {
		t.Errorf("Date not applied, got %v", r.AcquisitionDate)
	}

	if err := f.Set(r, "31/12/2023"); err == nil {
		t.Error("Set accepted a non ISO date")
	}
}

// TestSplitField_RejectsUnknownPartition verifies the split setter is
// restricted to the three known values.
func TestSplitField_RejectsUnknownPartition(t *testing.T) {
	f := fieldByLabel(t, "Split")
	r := draftRecord()

	if err := f.Set(r, "Validation"); err != nil {
		t.Fatalf("Set rejected a valid split: %v", err)
	}
	if r.Split != record.SplitValidation {
		t.Errorf("Split not applied, got %q", r.Split)
	}
	if err := f.Set(r, "Staging"); err == nil {
		t.Error("Set accepted an unknown split")
	}
}

// TestFoveaFields_BuildAndClearThePair verifies that typing both halves
// builds the pair and blanking either half clears it.
func TestFoveaFields_BuildAndClearThePair(t *testing.T) {
	fx := fieldByLabel(t, "Fovea X")
	fy := fieldByLabel(t, "Fovea Y")
	r := draftRecord()

	if err := fx.Set(r, "512.5"); err != nil {
		t.Fatalf("Setting X failed: %v", err)
	}
	if err := fy.Set(r, "498"); err != nil {
		t.Fatalf("Setting Y failed: %v", err)
	}
	if r.Fovea == nil || r.Fovea.X != 512.5 || r.Fovea.Y != 498 {
		t.Fatalf("Expected the pair built, got %+v", r.Fovea)
	}

	if err := fx.Set(r, ""); err != nil {
		t.Fatalf("Clearing failed: %v", err)
	}
	if r.Fovea != nil {
		t.Error("Expected an empty coordinate to clear the pair")
	}

	if err := fy.Set(r, "abc"); err == nil {
		t.Error("Set accepted a non numeric coordinate")
	}
}

// TestDimensionFields_RejectNonPositiveValues verifies the size setters
// enforce positive pixel counts.
func TestDimensionFields_RejectNonPositiveValues(t *testing.T) {
	fw := fieldByLabel(t, "Width")
	r := draftRecord()

	if err := fw.Set(r, "1024"); err != nil {
		t.Fatalf("Setting width failed: %v", err)
	}
	if r.Dims == nil || r.Dims.W != 1024 {
		t.Fatalf("Expected width applied, got %+v", r.Dims)
	}

	if err := fw.Set(r, "0"); err == nil {
		t.Error("Set accepted a zero width")
	}
	if err := fw.Set(r, "-5"); err == nil {
		t.Error("Set accepted a negative width")
	}
}

// TestRequiredTextFields_RejectBlankValues verifies patient id and
// diagnosis cannot be blanked through the form.
func TestRequiredTextFields_RejectBlankValues(t *testing.T) {
	r := draftRecord()

	if err := fieldByLabel(t, "Patient ID").Set(r, "   "); err == nil {
		t.Error("Set accepted a blank patient id")
	}
	if err := fieldByLabel(t, "Diagnosis").Set(r, ""); err == nil {
		t.Error("Set accepted a blank diagnosis")
	}
}
