package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivitySnapshot is an immutable value copy of an activity's payload
// and timestamps, built before any network call so no live store record
// is ever held across an await boundary.
type ActivitySnapshot struct {
	Day               int
	TypeCode          int
	Count             int
	PlannedCount      int
	ExecutionTypeCode int
	TrainingTypeCode  int
	Sets              []SetEntry
	Duration          int
	Comment           string
	PhotoState        PhotoState
	Photo             []byte
	CreatedAt         time.Time
	ModifiedAt        time.Time
}

// Snapshot deep-copies the record's payload into a value safe to pass
// to network code. The set list is copied element-wise, including the
// pointed-to custom type ids, so mutations of the live record cannot
// leak into an in-flight request.
func (r *ActivityRecord) Snapshot() ActivitySnapshot {
	snap := ActivitySnapshot{
		Day:               r.Day,
		TypeCode:          r.TypeCode,
		Count:             r.Count,
		PlannedCount:      r.PlannedCount,
		ExecutionTypeCode: r.ExecutionTypeCode,
		TrainingTypeCode:  r.TrainingTypeCode,
		Duration:          r.Duration,
		Comment:           r.Comment,
		PhotoState:        r.PhotoState,
		CreatedAt:         r.CreatedAt,
		ModifiedAt:        r.ModifiedAt,
	}

	if len(r.Photo) > 0 {
		snap.Photo = make([]byte, len(r.Photo))
		copy(snap.Photo, r.Photo)
	}

	if len(r.Sets) > 0 {
		snap.Sets = make([]SetEntry, len(r.Sets))

		for i, s := range r.Sets {
			copied := s

			if s.CustomTypeID != nil {
				id := *s.CustomTypeID
				copied.CustomTypeID = &id
			}

			snap.Sets[i] = copied
		}
	}

	return snap
}

// ExerciseSnapshot is the immutable value copy of an exercise record.
type ExerciseSnapshot struct {
	ID          uuid.UUID
	Name        string
	MuscleGroup string
	Comment     string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Snapshot copies the exercise payload into a value safe to pass to
// network code.
func (r *ExerciseRecord) Snapshot() ExerciseSnapshot {
	return ExerciseSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		MuscleGroup: r.MuscleGroup,
		Comment:     r.Comment,
		CreatedAt:   r.CreatedAt,
		ModifiedAt:  r.ModifiedAt,
	}
}
