// Package record defines the metadata entry describing one managed medical
// image, its validation rules, and its mapping to and from the flat CSV
// row format used by the tabular store.
package record

import (
	"fmt"
	"strconv"
	"time"
)

// Split identifies which partition of the dataset a record belongs to.
type Split string

const (
	SplitTrain      Split = "Train"
	SplitTest       Split = "Test"
	SplitValidation Split = "Validation"
)

// Splits returns the closed set of dataset partitions, in the order their
// folders are created under the dataset root.
func Splits() []Split {
	return []Split{SplitTrain, SplitTest, SplitValidation}
}

// Valid reports whether s is one of the three known partitions.
func (s Split) Valid() bool {
	return s == SplitTrain || s == SplitTest || s == SplitValidation
}

// DateLayout is the on-disk serialization of acquisition dates.
const DateLayout = "2006-01-02"

// Headers is the fixed CSV column order. The Spanish names are preserved
// byte-for-byte because existing dataset files already use them.
var Headers = []string{
	"id_imagen",
	"ruta_archivo",
	"id_paciente",
	"fecha_adquisicion",
	"diagnostico",
	"conjunto_datos",
	"Fovea_X",
	"Fovea_Y",
	"Size_X",
	"Size_Y",
}

// Fovea holds the (x, y) coordinates of the fovea within the image.
type Fovea struct {
	X float64
	Y float64
}

// Dims holds the pixel dimensions of the image.
type Dims struct {
	W int
	H int
}

// Record is one metadata entry describing a managed image file.
// The optional pair fields are atomic: a nil pointer means the whole pair
// is absent, never one half of it.
type Record struct {
	ID              string     // generated, immutable, img_<8 hex chars>
	FilePath        string     // path of the managed copy inside the dataset tree
	PatientID       string
	AcquisitionDate time.Time  // date precision only
	Diagnosis       string
	Split           Split
	Fovea           *Fovea
	Dims            *Dims
}

// Validate checks the record's internal consistency. The first failing
// check is returned.
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("record has no id")
	}
	if r.FilePath == "" {
		return fmt.Errorf("record %s has no file path", r.ID)
	}
	if r.PatientID == "" {
		return fmt.Errorf("record %s has no patient id", r.ID)
	}
	if r.Diagnosis == "" {
		return fmt.Errorf("record %s has no diagnosis", r.ID)
	}
	if r.AcquisitionDate.IsZero() {
		return fmt.Errorf("record %s has no acquisition date", r.ID)
	}
	if !r.Split.Valid() {
		return fmt.Errorf("record %s has unknown dataset split %q", r.ID, r.Split)
	}
	if r.Dims != nil && (r.Dims.W <= 0 || r.Dims.H <= 0) {
		return fmt.Errorf("record %s has non-positive dimensions %dx%d", r.ID, r.Dims.W, r.Dims.H)
	}
	return nil
}

// Clone returns a deep copy, so callers can hand records out without
// exposing the internal pointers.
func (r *Record) Clone() *Record {
	c := *r
	if r.Fovea != nil {
		f := *r.Fovea
		c.Fovea = &f
	}
	if r.Dims != nil {
		d := *r.Dims
		c.Dims = &d
	}
	return &c
}

// ToRow serializes the record as a CSV data row in Headers order. Absent
// optional pairs become literal empty fields, not "None" or "null".
func (r *Record) ToRow() []string {
	row := []string{
		r.ID,
		r.FilePath,
		r.PatientID,
		r.AcquisitionDate.Format(DateLayout),
		r.Diagnosis,
		string(r.Split),
		"", "", "", "",
	}
	if r.Fovea != nil {
		row[6] = strconv.FormatFloat(r.Fovea.X, 'g', -1, 64)
		row[7] = strconv.FormatFloat(r.Fovea.Y, 'g', -1, 64)
	}
	if r.Dims != nil {
		row[8] = strconv.Itoa(r.Dims.W)
		row[9] = strconv.Itoa(r.Dims.H)
	}
	return row
}

// FromRow parses one CSV data row (in Headers order) back into a Record.
// A half-present optional pair is a parse error, matching the atomic-pair
// invariant.
func FromRow(row []string) (*Record, error) {
	if len(row) != len(Headers) {
		return nil, fmt.Errorf("row has %d fields, want %d", len(row), len(Headers))
	}

	date, err := time.Parse(DateLayout, row[3])
	if err != nil {
		return nil, fmt.Errorf("parsing acquisition date %q: %w", row[3], err)
	}

	r := &Record{
		ID:              row[0],
		FilePath:        row[1],
		PatientID:       row[2],
		AcquisitionDate: date,
		Diagnosis:       row[4],
		Split:           Split(row[5]),
	}

	switch {
	case row[6] == "" && row[7] == "":
		// fovea absent
	case row[6] != "" && row[7] != "":
		x, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing Fovea_X %q: %w", row[6], err)
		}
		y, err := strconv.ParseFloat(row[7], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing Fovea_Y %q: %w", row[7], err)
		}
		r.Fovea = &Fovea{X: x, Y: y}
	default:
		return nil, fmt.Errorf("fovea coordinates half-present for %s", r.ID)
	}

	switch {
	case row[8] == "" && row[9] == "":
		// dimensions absent
	case row[8] != "" && row[9] != "":
		w, err := strconv.Atoi(row[8])
		if err != nil {
			return nil, fmt.Errorf("parsing Size_X %q: %w", row[8], err)
		}
		h, err := strconv.Atoi(row[9])
		if err != nil {
			return nil, fmt.Errorf("parsing Size_Y %q: %w", row[9], err)
		}
		r.Dims = &Dims{W: w, H: h}
	default:
		return nil, fmt.Errorf("dimensions half-present for %s", r.ID)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
