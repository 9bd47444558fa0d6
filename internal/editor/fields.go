package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AlbertJQM/Proyecto-Final/internal/record"
)

// fieldType defines the edit behavior for a field.
type fieldType int

const (
	ftString  fieldType = iota // Free-text string input
	ftInteger                  // Integer with min/max validation
	ftFloat                    // Decimal number input
	ftDate                     // Calendar date, YYYY-MM-DD
	ftChoice                   // Cycle through a fixed set of values
	ftDisplay                  // Read-only display
)

// fieldDef defines a single editable field on the record form.
type fieldDef struct {
	Label   string
	Type    fieldType
	Width   int      // Input field width
	Min     int      // Minimum value (for ftInteger)
	Max     int      // Maximum value (for ftInteger)
	Choices []string // Allowed values (for ftChoice)
	Get     func(r *record.Record) string
	Set     func(r *record.Record, val string) error
}

// editFields returns the ordered list of fields on the record form. The
// fovea and size pairs are individual inputs here; pairing is enforced
// when the form is committed.
func editFields() []fieldDef {
	return []fieldDef{
		{
			Label: "Image ID", Type: ftDisplay, Width: 14,
			Get: func(r *record.Record) string { return r.ID },
		},
		{
			Label: "File", Type: ftDisplay, Width: 48,
			Get: func(r *record.Record) string { return r.FilePath },
		},
		{
			Label: "Patient ID", Type: ftString, Width: 22,
			Get: func(r *record.Record) string { return r.PatientID },
			Set: func(r *record.Record, val string) error {
				v := strings.TrimSpace(val)
				if v == "" {
					return fmt.Errorf("patient id required")
				}
				r.PatientID = v
				return nil
			},
		},
		{
			Label: "Diagnosis", Type: ftString, Width: 32,
			Get: func(r *record.Record) string { return r.Diagnosis },
			Set: func(r *record.Record, val string) error {
				v := strings.TrimSpace(val)
				if v == "" {
					return fmt.Errorf("diagnosis required")
				}
				r.Diagnosis = v
				return nil
			},
		},
		{
			Label: "Acquired", Type: ftDate, Width: 10,
			Get: func(r *record.Record) string {
				if r.AcquisitionDate.IsZero() {
					return ""
				}
				return r.AcquisitionDate.Format(record.DateLayout)
			},
			Set: func(r *record.Record, val string) error {
				t, err := time.Parse(record.DateLayout, strings.TrimSpace(val))
				if err != nil {
					return fmt.Errorf("use YYYY-MM-DD")
				}
				r.AcquisitionDate = t
				return nil
			},
		},
		{
			Label: "Split", Type: ftChoice, Width: 10,
			Choices: splitChoices(),
			Get:     func(r *record.Record) string { return string(r.Split) },
			Set: func(r *record.Record, val string) error {
				s := record.Split(val)
				if !s.Valid() {
					return fmt.Errorf("must be one of %s", strings.Join(splitChoices(), "/"))
				}
				r.Split = s
				return nil
			},
		},
		{
			Label: "Fovea X", Type: ftFloat, Width: 10,
			Get: func(r *record.Record) string {
				if r.Fovea == nil {
					return ""
				}
				return strconv.FormatFloat(r.Fovea.X, 'g', -1, 64)
			},
			Set: func(r *record.Record, val string) error {
				return setFovea(r, val, func(f *record.Fovea, v float64) { f.X = v })
			},
		},
		{
			Label: "Fovea Y", Type: ftFloat, Width: 10,
			Get: func(r *record.Record) string {
				if r.Fovea == nil {
					return ""
				}
				return strconv.FormatFloat(r.Fovea.Y, 'g', -1, 64)
			},
			Set: func(r *record.Record, val string) error {
				return setFovea(r, val, func(f *record.Fovea, v float64) { f.Y = v })
			},
		},
		{
			Label: "Width", Type: ftInteger, Width: 6, Min: 1, Max: 65535,
			Get: func(r *record.Record) string {
				if r.Dims == nil {
					return ""
				}
				return strconv.Itoa(r.Dims.W)
			},
			Set: func(r *record.Record, val string) error {
				return setDims(r, val, func(d *record.Dims, v int) { d.W = v })
			},
		},
		{
			Label: "Height", Type: ftInteger, Width: 6, Min: 1, Max: 65535,
			Get: func(r *record.Record) string {
				if r.Dims == nil {
					return ""
				}
				return strconv.Itoa(r.Dims.H)
			},
			Set: func(r *record.Record, val string) error {
				return setDims(r, val, func(d *record.Dims, v int) { d.H = v })
			},
		},
	}
}

// setFovea applies one coordinate, clearing the pair on empty input.
func setFovea(r *record.Record, val string, assign func(*record.Fovea, float64)) error {
	v := strings.TrimSpace(val)
	if v == "" {
		r.Fovea = nil
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if r.Fovea == nil {
		r.Fovea = &record.Fovea{}
	}
	assign(r.Fovea, n)
	return nil
}

// setDims applies one dimension, clearing the pair on empty input.
func setDims(r *record.Record, val string, assign func(*record.Dims, int)) error {
	v := strings.TrimSpace(val)
	if v == "" {
		r.Dims = nil
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	if r.Dims == nil {
		r.Dims = &record.Dims{}
	}
	assign(r.Dims, n)
	return nil
}

func splitChoices() []string {
	out := make([]string, 0, 3)
	for _, s := range record.Splits() {
		out = append(out, string(s))
	}
	return out
}

// formatDate formats an acquisition date for the list columns.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(record.DateLayout)
}

// padRight pads a string to width with spaces, truncating if longer.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
