package record

import "time"

// ChangeSet is the typed update payload for an existing record. Nil
// pointer fields (and the SetFovea/SetDims guards for the optional pairs)
// mean "leave unchanged"; the manager merges it field by field instead of
// assigning by name.
type ChangeSet struct {
	// FilePath is the source file backing the update. Always required:
	// the manager verifies it exists and relocates it into the split
	// folder before merging the rest.
	FilePath string

	// Split selects the destination partition. Empty defaults to Train
	// for the destination path and leaves the record's split unchanged.
	Split Split

	PatientID       *string
	AcquisitionDate *time.Time
	Diagnosis       *string

	// SetFovea/SetDims make "overwrite with nil" expressible: the pairs
	// are only touched when the guard is true, so a caller can clear a
	// pair as well as replace it.
	SetFovea bool
	Fovea    *Fovea
	SetDims  bool
	Dims     *Dims
}

// Apply merges the change-set into r. FilePath and Split are handled by
// the manager (they drive file relocation) and are also merged here when
// non-empty so Apply alone produces the final record state.
func (cs *ChangeSet) Apply(r *Record) {
	if cs.FilePath != "" {
		r.FilePath = cs.FilePath
	}
	if cs.Split != "" {
		r.Split = cs.Split
	}
	if cs.PatientID != nil {
		r.PatientID = *cs.PatientID
	}
	if cs.AcquisitionDate != nil {
		r.AcquisitionDate = *cs.AcquisitionDate
	}
	if cs.Diagnosis != nil {
		r.Diagnosis = *cs.Diagnosis
	}
	if cs.SetFovea {
		if cs.Fovea != nil {
			f := *cs.Fovea
			r.Fovea = &f
		} else {
			r.Fovea = nil
		}
	}
	if cs.SetDims {
		if cs.Dims != nil {
			d := *cs.Dims
			r.Dims = &d
		} else {
			r.Dims = nil
		}
	}
}
