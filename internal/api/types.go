package api

import (
	"fmt"
	"time"

	"github.com/alexjbarnes/fitsync/internal/models"
	"github.com/google/uuid"
)

// timeLayout is the fixed wire format for all API timestamps.
const timeLayout = "2006-01-02 15:04:05"

// RemoteLineItem is one set entry inside a remote activity record.
type RemoteLineItem struct {
	TypeID       *int    `json:"typeId,omitempty"`
	CustomTypeID *string `json:"customTypeId,omitempty"`
	Count        int     `json:"count"`
	SortOrder    int     `json:"sortOrder"`
}

// RemoteActivity is the wire shape of a daily activity record. ID is
// the logical day number, the record's stable key within an owner.
type RemoteActivity struct {
	ID                int              `json:"id"`
	TypeCode          int              `json:"typeCode"`
	Count             *int             `json:"count,omitempty"`
	PlannedCount      *int             `json:"plannedCount,omitempty"`
	ExecutionTypeCode *int             `json:"executionTypeCode,omitempty"`
	TrainingTypeCode  *int             `json:"trainingTypeCode,omitempty"`
	LineItems         []RemoteLineItem `json:"lineItems,omitempty"`
	Duration          *int             `json:"duration,omitempty"`
	Comment           *string          `json:"comment,omitempty"`
	CreatedAt         string           `json:"createdAt"`
	ModifiedAt        *string          `json:"modifiedAt,omitempty"`
}

// Validate checks that the record carries a usable key and parseable
// timestamps. Records failing validation are skipped individually by
// the caller rather than aborting the whole fetch.
func (r RemoteActivity) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("remote activity has invalid day %d", r.ID)
	}

	if _, err := time.Parse(timeLayout, r.CreatedAt); err != nil {
		return fmt.Errorf("remote activity %d: bad createdAt %q: %w", r.ID, r.CreatedAt, err)
	}

	if r.ModifiedAt != nil {
		if _, err := time.Parse(timeLayout, *r.ModifiedAt); err != nil {
			return fmt.Errorf("remote activity %d: bad modifiedAt %q: %w", r.ID, *r.ModifiedAt, err)
		}
	}

	for _, li := range r.LineItems {
		if li.CustomTypeID != nil {
			if _, err := uuid.Parse(*li.CustomTypeID); err != nil {
				return fmt.Errorf("remote activity %d: bad customTypeId %q: %w", r.ID, *li.CustomTypeID, err)
			}
		}
	}

	return nil
}

// CreatedTime parses the createdAt timestamp. Call Validate first.
func (r RemoteActivity) CreatedTime() time.Time {
	t, _ := time.Parse(timeLayout, r.CreatedAt)
	return t
}

// ModifiedTime parses the modifiedAt timestamp, falling back to
// createdAt when the server omits it.
func (r RemoteActivity) ModifiedTime() time.Time {
	if r.ModifiedAt == nil {
		return r.CreatedTime()
	}

	t, _ := time.Parse(timeLayout, *r.ModifiedAt)

	return t
}

// RemoteExercise is the wire shape of a custom exercise record, keyed
// by a client-generated uuid.
type RemoteExercise struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	MuscleGroup *string `json:"muscleGroup,omitempty"`
	Comment     *string `json:"comment,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	ModifiedAt  *string `json:"modifiedAt,omitempty"`
}

// Validate checks key and timestamp shape.
func (r RemoteExercise) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("remote exercise has invalid id %q: %w", r.ID, err)
	}

	if r.Name == "" {
		return fmt.Errorf("remote exercise %s has empty name", r.ID)
	}

	if _, err := time.Parse(timeLayout, r.CreatedAt); err != nil {
		return fmt.Errorf("remote exercise %s: bad createdAt %q: %w", r.ID, r.CreatedAt, err)
	}

	if r.ModifiedAt != nil {
		if _, err := time.Parse(timeLayout, *r.ModifiedAt); err != nil {
			return fmt.Errorf("remote exercise %s: bad modifiedAt %q: %w", r.ID, *r.ModifiedAt, err)
		}
	}

	return nil
}

// CreatedTime parses the createdAt timestamp. Call Validate first.
func (r RemoteExercise) CreatedTime() time.Time {
	t, _ := time.Parse(timeLayout, r.CreatedAt)
	return t
}

// ModifiedTime parses the modifiedAt timestamp, falling back to createdAt.
func (r RemoteExercise) ModifiedTime() time.Time {
	if r.ModifiedAt == nil {
		return r.CreatedTime()
	}

	t, _ := time.Parse(timeLayout, *r.ModifiedAt)

	return t
}

// activityListRequest is the payload for POST /activity/list.
type activityListRequest struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
}

// activityListResponse is returned from POST /activity/list.
type activityListResponse struct {
	Records []RemoteActivity `json:"records"`
}

// activityUpsertRequest is the payload for POST /activity/upsert.
type activityUpsertRequest struct {
	Token   string         `json:"token"`
	OwnerID string         `json:"ownerId"`
	Record  RemoteActivity `json:"record"`
}

// upsertActivityResponse is returned from POST /activity/upsert. Created
// reports whether the server inserted a new record rather than updating
// an existing one.
type upsertActivityResponse struct {
	Created bool           `json:"created"`
	Record  RemoteActivity `json:"record"`
}

// activityDeleteRequest is the payload for POST /activity/delete.
type activityDeleteRequest struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
	Day     int    `json:"day"`
}

// photoUpsertRequest is the payload for POST /activity/photo/upsert.
// Photo is base64-encoded by the JSON marshaller.
type photoUpsertRequest struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
	Day     int    `json:"day"`
	Photo   []byte `json:"photo"`
}

// photoDeleteRequest is the payload for POST /activity/photo/delete.
type photoDeleteRequest struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
	Day     int    `json:"day"`
}

// exerciseListRequest is the payload for POST /exercise/list.
type exerciseListRequest struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
}

// exerciseListResponse is returned from POST /exercise/list.
type exerciseListResponse struct {
	Records []RemoteExercise `json:"records"`
}

// exerciseUpsertRequest is the payload for POST /exercise/upsert.
type exerciseUpsertRequest struct {
	Token   string         `json:"token"`
	OwnerID string         `json:"ownerId"`
	Record  RemoteExercise `json:"record"`
}

// upsertExerciseResponse is returned from POST /exercise/upsert.
type upsertExerciseResponse struct {
	Created bool           `json:"created"`
	Record  RemoteExercise `json:"record"`
}

// exerciseDeleteRequest is the payload for POST /exercise/delete.
type exerciseDeleteRequest struct {
	Token   string `json:"token"`
	OwnerID string `json:"ownerId"`
	ID      string `json:"id"`
}

// countryListRequest is the payload for POST /refdata/countries.
type countryListRequest struct {
	Token string `json:"token"`
}

// countryListResponse is returned from POST /refdata/countries.
type countryListResponse struct {
	Countries []models.Country `json:"countries"`
}

// FromSnapshot converts an activity snapshot to its wire shape.
func FromSnapshot(snap models.ActivitySnapshot) RemoteActivity {
	rec := RemoteActivity{
		ID:        snap.Day,
		TypeCode:  snap.TypeCode,
		CreatedAt: snap.CreatedAt.Format(timeLayout),
	}

	if snap.Count != 0 {
		count := snap.Count
		rec.Count = &count
	}

	if snap.PlannedCount != 0 {
		planned := snap.PlannedCount
		rec.PlannedCount = &planned
	}

	if snap.ExecutionTypeCode != 0 {
		code := snap.ExecutionTypeCode
		rec.ExecutionTypeCode = &code
	}

	if snap.TrainingTypeCode != 0 {
		code := snap.TrainingTypeCode
		rec.TrainingTypeCode = &code
	}

	for _, set := range snap.Sets {
		item := RemoteLineItem{Count: set.Count, SortOrder: set.SortOrder}

		if set.TypeID != 0 {
			typeID := set.TypeID
			item.TypeID = &typeID
		}

		if set.CustomTypeID != nil {
			id := set.CustomTypeID.String()
			item.CustomTypeID = &id
		}

		rec.LineItems = append(rec.LineItems, item)
	}

	if snap.Duration != 0 {
		d := snap.Duration
		rec.Duration = &d
	}

	if snap.Comment != "" {
		comment := snap.Comment
		rec.Comment = &comment
	}

	modified := snap.ModifiedAt.Format(timeLayout)
	rec.ModifiedAt = &modified

	return rec
}

// FromExerciseSnapshot converts an exercise snapshot to its wire shape.
func FromExerciseSnapshot(snap models.ExerciseSnapshot) RemoteExercise {
	rec := RemoteExercise{
		ID:        snap.ID.String(),
		Name:      snap.Name,
		CreatedAt: snap.CreatedAt.Format(timeLayout),
	}

	if snap.MuscleGroup != "" {
		mg := snap.MuscleGroup
		rec.MuscleGroup = &mg
	}

	if snap.Comment != "" {
		comment := snap.Comment
		rec.Comment = &comment
	}

	modified := snap.ModifiedAt.Format(timeLayout)
	rec.ModifiedAt = &modified

	return rec
}
