package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexjbarnes/fitsync/internal/api"
	apperrors "github.com/alexjbarnes/fitsync/internal/errors"
	"github.com/alexjbarnes/fitsync/internal/models"
	"github.com/alexjbarnes/fitsync/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ActivityAPI is the remote surface the engine needs for daily
// activities. *api.Client satisfies it.
type ActivityAPI interface {
	ListActivities(ctx context.Context, ownerID string) ([]api.RemoteActivity, error)
	UpsertActivity(ctx context.Context, ownerID string, snap models.ActivitySnapshot) (api.UpsertActivityResult, error)
	DeleteActivity(ctx context.Context, ownerID string, day int) error
	UploadActivityPhoto(ctx context.Context, ownerID string, day int, photo []byte) error
	DeleteActivityPhoto(ctx context.Context, ownerID string, day int) error
}

// ExerciseAPI is the remote surface the engine needs for custom
// exercises. *api.Client satisfies it.
type ExerciseAPI interface {
	ListExercises(ctx context.Context, ownerID string) ([]api.RemoteExercise, error)
	UpsertExercise(ctx context.Context, ownerID string, snap models.ExerciseSnapshot) (api.UpsertExerciseResult, error)
	DeleteExercise(ctx context.Context, ownerID string, id string) error
}

// Engine reconciles the local record store against the backend, one
// entity kind at a time. A sync run has two phases: upload local
// changes first, then download and merge the server's state.
type Engine struct {
	store      *store.Store
	activities ActivityAPI
	exercises  ExerciseAPI
	logger     *slog.Logger
	group      singleflight.Group

	// OnResult, when set, receives every finished run's result. It runs
	// on the syncing goroutine and must not block.
	OnResult func(kind string, result models.SyncResult)
}

// NewEngine creates a reconciliation engine over the given store and
// API clients.
func NewEngine(st *store.Store, activities ActivityAPI, exercises ExerciseAPI, logger *slog.Logger) *Engine {
	return &Engine{
		store:      st,
		activities: activities,
		exercises:  exercises,
		logger:     logger,
	}
}

// SyncActivities reconciles one owner's activity records. Concurrent
// calls for the same owner join the in-flight run and receive its
// result instead of starting a second one.
//
// The returned error is non-nil only for failures the caller must act
// on (store corruption, expired token). Ordinary per-record and fetch
// failures are reported inside the result instead.
func (e *Engine) SyncActivities(ctx context.Context, ownerID string) (models.SyncResult, error) {
	v, err, shared := e.group.Do("activities:"+ownerID, func() (interface{}, error) {
		return e.syncActivities(ctx, ownerID)
	})

	result, _ := v.(models.SyncResult)

	if shared {
		e.logger.Debug("joined in-flight activity sync", slog.String("owner", ownerID))
	}

	return result, err
}

// SyncExercises reconciles one owner's custom exercises. Same
// single-flight and error contract as SyncActivities.
func (e *Engine) SyncExercises(ctx context.Context, ownerID string) (models.SyncResult, error) {
	v, err, shared := e.group.Do("exercises:"+ownerID, func() (interface{}, error) {
		return e.syncExercises(ctx, ownerID)
	})

	result, _ := v.(models.SyncResult)

	if shared {
		e.logger.Debug("joined in-flight exercise sync", slog.String("owner", ownerID))
	}

	return result, err
}

func (e *Engine) syncActivities(ctx context.Context, ownerID string) (models.SyncResult, error) {
	var result models.SyncResult

	e.logger.Info("activity sync starting", slog.String("owner", ownerID))

	if err := e.uploadActivities(ctx, ownerID, &result); err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Finalize()
		e.emit("activities", result)

		return result, err
	}

	if err := e.downloadActivities(ctx, ownerID, &result); err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Finalize()
		e.emit("activities", result)

		return result, err
	}

	result.Finalize()

	e.logger.Info("activity sync complete",
		slog.String("owner", ownerID),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("created", result.Counts.Created),
		slog.Int("updated", result.Counts.Updated),
		slog.Int("deleted", result.Counts.Deleted),
		slog.Int("errors", len(result.Errors)),
	)

	e.emit("activities", result)

	return result, nil
}

// uploadActivities pushes pending deletes and unsynced records to the
// server. Per-record failures are collected and never abort the batch;
// only an expired token or a broken store stops the run.
func (e *Engine) uploadActivities(ctx context.Context, ownerID string, result *models.SyncResult) error {
	records, err := e.store.ActivitiesByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}

	for i := range records {
		rec := &records[i]

		if rec.PendingDelete {
			if err := e.activities.DeleteActivity(ctx, ownerID, rec.Day); err != nil {
				if errors.Is(err, apperrors.ErrUnauthorized) {
					return err
				}

				result.Errors = append(result.Errors, err.Error())
				e.logger.Warn("activity delete failed", slog.Int("day", rec.Day), slog.String("error", err.Error()))

				continue
			}

			if err := e.store.DeleteActivity(ownerID, rec.Day); err != nil {
				return fmt.Errorf("removing deleted activity day %d: %w", rec.Day, err)
			}

			result.Counts.Deleted++

			continue
		}

		if rec.Synced {
			continue
		}

		snap := rec.Snapshot()

		res, err := e.activities.UpsertActivity(ctx, ownerID, snap)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				return err
			}

			result.Errors = append(result.Errors, err.Error())
			e.logger.Warn("activity upload failed", slog.Int("day", rec.Day), slog.String("error", err.Error()))

			continue
		}

		// The photo travels on its own endpoint after the record lands.
		// A failed photo call leaves the record unsynced so the whole
		// pair is retried on the next run.
		if err := e.syncActivityPhoto(ctx, ownerID, snap); err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				return err
			}

			result.Errors = append(result.Errors, err.Error())
			e.logger.Warn("activity photo sync failed", slog.Int("day", rec.Day), slog.String("error", err.Error()))

			continue
		}

		if err := e.confirmActivityUpload(ownerID, snap, res); err != nil {
			return err
		}

		if res.Created {
			result.Counts.Created++
		} else {
			result.Counts.Updated++
		}
	}

	return nil
}

// confirmActivityUpload flips the synced flag only if the record was
// not edited while the upsert was in flight. The server's canonical
// timestamp is adopted when it does not move the record backwards.
func (e *Engine) confirmActivityUpload(ownerID string, snap models.ActivitySnapshot, res api.UpsertActivityResult) error {
	cur, err := e.store.GetActivity(ownerID, snap.Day)
	if err != nil {
		return fmt.Errorf("re-reading activity day %d: %w", snap.Day, err)
	}

	if cur == nil || !cur.ModifiedAt.Equal(snap.ModifiedAt) || cur.PendingDelete {
		// Edited or deleted mid-flight. The next run uploads the newer
		// version; the server copy we just wrote is already stale.
		e.logger.Debug("activity changed during upload, staying unsynced", slog.Int("day", snap.Day))
		return nil
	}

	cur.Synced = true

	if cur.PhotoState == models.PhotoPendingDeletion {
		cur.PhotoState = models.PhotoAbsent
	}

	if serverMod := res.Record.ModifiedTime(); !serverMod.Before(cur.ModifiedAt) {
		cur.ModifiedAt = serverMod
	}

	return e.store.SaveActivity(*cur)
}

// syncActivityPhoto pushes the snapshot's photo state: pending deletions
// delete the remote photo, present photos re-upload it.
func (e *Engine) syncActivityPhoto(ctx context.Context, ownerID string, snap models.ActivitySnapshot) error {
	switch snap.PhotoState {
	case models.PhotoPendingDeletion:
		return e.activities.DeleteActivityPhoto(ctx, ownerID, snap.Day)

	case models.PhotoPresent:
		if len(snap.Photo) == 0 {
			return nil
		}

		return e.activities.UploadActivityPhoto(ctx, ownerID, snap.Day, snap.Photo)
	}

	return nil
}

// downloadActivities fetches the server's full record list and merges
// it into the store. A failed list fetch aborts the phase but keeps
// the upload phase's progress.
func (e *Engine) downloadActivities(ctx context.Context, ownerID string, result *models.SyncResult) error {
	remotes, err := e.activities.ListActivities(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return err
		}

		result.Errors = append(result.Errors, err.Error())
		e.logger.Warn("activity list fetch failed", slog.String("owner", ownerID), slog.String("error", err.Error()))

		return nil
	}

	locals, err := e.store.ActivitiesByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}

	localByDay := make(map[int]*models.ActivityRecord, len(locals))
	for i := range locals {
		localByDay[locals[i].Day] = &locals[i]
	}

	remoteDays := make(map[int]bool, len(remotes))

	for _, remote := range remotes {
		if err := remote.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
			e.logger.Warn("skipping malformed remote activity", slog.String("error", err.Error()))

			continue
		}

		remoteDays[remote.ID] = true

		local, ok := localByDay[remote.ID]
		if !ok {
			rec := activityFromRemote(ownerID, remote)
			if err := e.store.SaveActivity(rec); err != nil {
				return fmt.Errorf("storing downloaded activity day %d: %w", remote.ID, err)
			}

			result.Counts.Created++

			continue
		}

		// A pending delete is never resurrected, and local edits that
		// have not been uploaded yet are never overwritten.
		if local.PendingDelete || !local.Synced {
			continue
		}

		switch ResolveActivity(local.Snapshot(), remote) {
		case ResolutionTakeRemote:
			applyRemoteActivity(local, remote)

			if err := e.store.SaveActivity(*local); err != nil {
				return fmt.Errorf("storing remote activity day %d: %w", remote.ID, err)
			}

			result.Counts.Updated++

		case ResolutionKeepLocal, ResolutionNoop:
		}
	}

	// Synced records the server no longer knows about were deleted from
	// another device. The server is authoritative for them.
	for day, local := range localByDay {
		if remoteDays[day] || !local.Synced || local.PendingDelete {
			continue
		}

		if err := e.store.DeleteActivity(ownerID, day); err != nil {
			return fmt.Errorf("purging vanished activity day %d: %w", day, err)
		}

		result.Counts.Deleted++
	}

	return nil
}

func (e *Engine) syncExercises(ctx context.Context, ownerID string) (models.SyncResult, error) {
	var result models.SyncResult

	e.logger.Info("exercise sync starting", slog.String("owner", ownerID))

	if err := e.uploadExercises(ctx, ownerID, &result); err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Finalize()
		e.emit("exercises", result)

		return result, err
	}

	if err := e.downloadExercises(ctx, ownerID, &result); err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Finalize()
		e.emit("exercises", result)

		return result, err
	}

	result.Finalize()

	e.logger.Info("exercise sync complete",
		slog.String("owner", ownerID),
		slog.String("outcome", string(result.Outcome)),
		slog.Int("created", result.Counts.Created),
		slog.Int("updated", result.Counts.Updated),
		slog.Int("deleted", result.Counts.Deleted),
		slog.Int("errors", len(result.Errors)),
	)

	e.emit("exercises", result)

	return result, nil
}

func (e *Engine) uploadExercises(ctx context.Context, ownerID string, result *models.SyncResult) error {
	records, err := e.store.ExercisesByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("loading exercises: %w", err)
	}

	for i := range records {
		rec := &records[i]

		if rec.PendingDelete {
			if err := e.exercises.DeleteExercise(ctx, ownerID, rec.ID.String()); err != nil {
				if errors.Is(err, apperrors.ErrUnauthorized) {
					return err
				}

				result.Errors = append(result.Errors, err.Error())
				e.logger.Warn("exercise delete failed", slog.String("id", rec.ID.String()), slog.String("error", err.Error()))

				continue
			}

			if err := e.store.DeleteExercise(ownerID, rec.ID.String()); err != nil {
				return fmt.Errorf("removing deleted exercise %s: %w", rec.ID, err)
			}

			result.Counts.Deleted++

			continue
		}

		if rec.Synced {
			continue
		}

		snap := rec.Snapshot()

		res, err := e.exercises.UpsertExercise(ctx, ownerID, snap)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				return err
			}

			result.Errors = append(result.Errors, err.Error())
			e.logger.Warn("exercise upload failed", slog.String("id", rec.ID.String()), slog.String("error", err.Error()))

			continue
		}

		if err := e.confirmExerciseUpload(ownerID, snap, res); err != nil {
			return err
		}

		if res.Created {
			result.Counts.Created++
		} else {
			result.Counts.Updated++
		}
	}

	return nil
}

func (e *Engine) confirmExerciseUpload(ownerID string, snap models.ExerciseSnapshot, res api.UpsertExerciseResult) error {
	cur, err := e.store.GetExercise(ownerID, snap.ID.String())
	if err != nil {
		return fmt.Errorf("re-reading exercise %s: %w", snap.ID, err)
	}

	if cur == nil || !cur.ModifiedAt.Equal(snap.ModifiedAt) || cur.PendingDelete {
		e.logger.Debug("exercise changed during upload, staying unsynced", slog.String("id", snap.ID.String()))
		return nil
	}

	cur.Synced = true

	if serverMod := res.Record.ModifiedTime(); !serverMod.Before(cur.ModifiedAt) {
		cur.ModifiedAt = serverMod
	}

	return e.store.SaveExercise(*cur)
}

func (e *Engine) downloadExercises(ctx context.Context, ownerID string, result *models.SyncResult) error {
	remotes, err := e.exercises.ListExercises(ctx, ownerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return err
		}

		result.Errors = append(result.Errors, err.Error())
		e.logger.Warn("exercise list fetch failed", slog.String("owner", ownerID), slog.String("error", err.Error()))

		return nil
	}

	locals, err := e.store.ExercisesByOwner(ownerID)
	if err != nil {
		return fmt.Errorf("loading exercises: %w", err)
	}

	localByID := make(map[string]*models.ExerciseRecord, len(locals))
	for i := range locals {
		localByID[locals[i].ID.String()] = &locals[i]
	}

	remoteIDs := make(map[string]bool, len(remotes))

	for _, remote := range remotes {
		if err := remote.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
			e.logger.Warn("skipping malformed remote exercise", slog.String("error", err.Error()))

			continue
		}

		remoteIDs[remote.ID] = true

		local, ok := localByID[remote.ID]
		if !ok {
			rec, err := exerciseFromRemote(ownerID, remote)
			if err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}

			if err := e.store.SaveExercise(rec); err != nil {
				return fmt.Errorf("storing downloaded exercise %s: %w", remote.ID, err)
			}

			result.Counts.Created++

			continue
		}

		if local.PendingDelete || !local.Synced {
			continue
		}

		switch ResolveExercise(local.Snapshot(), remote) {
		case ResolutionTakeRemote:
			applyRemoteExercise(local, remote)

			if err := e.store.SaveExercise(*local); err != nil {
				return fmt.Errorf("storing remote exercise %s: %w", remote.ID, err)
			}

			result.Counts.Updated++

		case ResolutionKeepLocal, ResolutionNoop:
		}
	}

	for id, local := range localByID {
		if remoteIDs[id] || !local.Synced || local.PendingDelete {
			continue
		}

		if err := e.store.DeleteExercise(ownerID, id); err != nil {
			return fmt.Errorf("purging vanished exercise %s: %w", id, err)
		}

		result.Counts.Deleted++
	}

	return nil
}

func (e *Engine) emit(kind string, result models.SyncResult) {
	if e.OnResult != nil {
		e.OnResult(kind, result)
	}
}

// activityFromRemote builds a synced local record from a validated
// remote one.
func activityFromRemote(ownerID string, remote api.RemoteActivity) models.ActivityRecord {
	rec := models.ActivityRecord{
		OwnerID:    ownerID,
		Day:        remote.ID,
		Synced:     true,
		CreatedAt:  remote.CreatedTime(),
		ModifiedAt: remote.ModifiedTime(),
	}

	applyRemoteActivity(&rec, remote)

	return rec
}

// applyRemoteActivity overwrites the local payload and timestamps with
// the remote ones. The synced flag stays true: the record now matches
// the server exactly.
func applyRemoteActivity(rec *models.ActivityRecord, remote api.RemoteActivity) {
	rec.TypeCode = remote.TypeCode
	rec.Count = intOrZero(remote.Count)
	rec.PlannedCount = intOrZero(remote.PlannedCount)
	rec.ExecutionTypeCode = intOrZero(remote.ExecutionTypeCode)
	rec.TrainingTypeCode = intOrZero(remote.TrainingTypeCode)
	rec.Duration = intOrZero(remote.Duration)
	rec.Comment = strOrEmpty(remote.Comment)

	rec.Sets = nil
	for _, li := range remote.LineItems {
		entry := models.SetEntry{
			TypeID:    intOrZero(li.TypeID),
			Count:     li.Count,
			SortOrder: li.SortOrder,
		}

		if li.CustomTypeID != nil {
			// Validate() already checked the uuid shape.
			id, _ := uuid.Parse(*li.CustomTypeID)
			entry.CustomTypeID = &id
		}

		rec.Sets = append(rec.Sets, entry)
	}

	rec.ModifiedAt = remote.ModifiedTime()
	rec.Synced = true
}

func exerciseFromRemote(ownerID string, remote api.RemoteExercise) (models.ExerciseRecord, error) {
	id, err := uuid.Parse(remote.ID)
	if err != nil {
		return models.ExerciseRecord{}, fmt.Errorf("remote exercise id %q: %w", remote.ID, err)
	}

	rec := models.ExerciseRecord{
		OwnerID:   ownerID,
		ID:        id,
		Synced:    true,
		CreatedAt: remote.CreatedTime(),
	}

	applyRemoteExercise(&rec, remote)

	return rec, nil
}

func applyRemoteExercise(rec *models.ExerciseRecord, remote api.RemoteExercise) {
	rec.Name = remote.Name
	rec.MuscleGroup = strOrEmpty(remote.MuscleGroup)
	rec.Comment = strOrEmpty(remote.Comment)
	rec.ModifiedAt = remote.ModifiedTime()
	rec.Synced = true
}
