// Package models holds the owned-record types synchronized between the
// local store and the server, plus the result type a sync run returns.
package models

import (
	"time"

	"github.com/google/uuid"
)

// PhotoState tracks the lifecycle of an activity's photo attachment.
// Replaces the legacy sentinel-byte convention with an explicit tri-state.
type PhotoState int

const (
	// PhotoAbsent means no photo exists for the record.
	PhotoAbsent PhotoState = iota

	// PhotoPresent means photo data is attached and live.
	PhotoPresent

	// PhotoPendingDeletion means the user removed the photo but the
	// removal has not yet been confirmed by the server.
	PhotoPendingDeletion
)

// SetEntry is one line item inside an activity: a typed set with a count
// and an explicit sort position. CustomTypeID references a user-defined
// exercise when the set is not one of the built-in types.
type SetEntry struct {
	TypeID       int        `json:"type_id"`
	CustomTypeID *uuid.UUID `json:"custom_type_id,omitempty"`
	Count        int        `json:"count"`
	SortOrder    int        `json:"sort_order"`
}

// ActivityRecord is a user's daily activity entry, keyed by (owner, day).
// Synced reports whether the last local state reached the server;
// PendingDelete marks a deletion awaiting server confirmation. A record
// with PendingDelete set is never resurrected by a download pass.
type ActivityRecord struct {
	OwnerID string `json:"owner_id"`
	Day     int    `json:"day"`

	TypeCode          int        `json:"type_code"`
	Count             int        `json:"count"`
	PlannedCount      int        `json:"planned_count"`
	ExecutionTypeCode int        `json:"execution_type_code"`
	TrainingTypeCode  int        `json:"training_type_code"`
	Sets              []SetEntry `json:"sets,omitempty"`
	Duration          int        `json:"duration"`
	Comment           string     `json:"comment"`

	// Photo data never crosses the record sync wire; it follows the same
	// unsynced pattern through a separate upload path.
	PhotoState PhotoState `json:"photo_state"`
	Photo      []byte     `json:"photo,omitempty"`

	Synced        bool `json:"synced"`
	PendingDelete bool `json:"pending_delete"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Touch records a local mutation: ModifiedAt moves strictly forward and
// the record is marked dirty for the next upload phase. The monotone
// guard keeps ModifiedAt from ever going backwards under clock skew.
func (r *ActivityRecord) Touch(now time.Time) {
	if !now.After(r.ModifiedAt) {
		now = r.ModifiedAt.Add(time.Nanosecond)
	}

	r.ModifiedAt = now
	r.Synced = false
}

// MarkDeleted soft-deletes the record. The payload is retained so the
// entry can still be shown as pending until the server confirms.
func (r *ActivityRecord) MarkDeleted(now time.Time) {
	r.PendingDelete = true
	r.Touch(now)
}

// SetPhoto attaches photo data, clearing any pending deletion.
func (r *ActivityRecord) SetPhoto(data []byte, now time.Time) {
	r.Photo = data
	r.PhotoState = PhotoPresent
	r.Touch(now)
}

// RemovePhoto requests photo removal. The data is dropped immediately;
// the tri-state keeps the removal visible until the server confirms.
func (r *ActivityRecord) RemovePhoto(now time.Time) {
	r.Photo = nil
	r.PhotoState = PhotoPendingDeletion
	r.Touch(now)
}

// ExerciseRecord is a user-defined exercise, keyed by (owner, id).
type ExerciseRecord struct {
	OwnerID string    `json:"owner_id"`
	ID      uuid.UUID `json:"id"`

	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	Comment     string `json:"comment"`

	Synced        bool `json:"synced"`
	PendingDelete bool `json:"pending_delete"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Touch records a local mutation. Same monotone guard as ActivityRecord.
func (r *ExerciseRecord) Touch(now time.Time) {
	if !now.After(r.ModifiedAt) {
		now = r.ModifiedAt.Add(time.Nanosecond)
	}

	r.ModifiedAt = now
	r.Synced = false
}

// MarkDeleted soft-deletes the exercise.
func (r *ExerciseRecord) MarkDeleted(now time.Time) {
	r.PendingDelete = true
	r.Touch(now)
}

// Country is wholesale-refreshed reference data. It is never edited
// locally; the refresh engine replaces the whole collection at once.
type Country struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Cities []string `json:"cities,omitempty"`
}
