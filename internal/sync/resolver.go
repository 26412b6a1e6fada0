// Package sync reconciles locally owned records against the backend.
package sync

import (
	"github.com/alexjbarnes/fitsync/internal/api"
	"github.com/alexjbarnes/fitsync/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Resolution is the outcome of comparing a local record against its
// remote counterpart. The engine performs store and network I/O based
// on the resolution.
type Resolution int

const (
	// ResolutionNoop means local and remote carry the same payload; no
	// store write and no counted change.
	ResolutionNoop Resolution = iota

	// ResolutionTakeRemote means the remote payload replaces the local
	// one. The server wins modification-time ties.
	ResolutionTakeRemote

	// ResolutionKeepLocal means the local payload is strictly newer and
	// stays untouched. The next upload cycle does not re-push it; the
	// record already carries its synced flag from the upload phase.
	ResolutionKeepLocal
)

// ResolveActivity decides between a local activity and its remote
// counterpart. This is a pure decision function with no I/O; both the
// download phase and its tests call it.
//
// Timestamps only break ties after a structural payload comparison:
// records whose payloads match are a noop regardless of which side
// carries the later modification time.
func ResolveActivity(local models.ActivitySnapshot, remote api.RemoteActivity) Resolution {
	if !activityDiffers(local, remote) {
		return ResolutionNoop
	}

	if remote.ModifiedTime().Before(local.ModifiedAt) {
		return ResolutionKeepLocal
	}

	return ResolutionTakeRemote
}

// ResolveExercise decides between a local exercise and its remote
// counterpart.
func ResolveExercise(local models.ExerciseSnapshot, remote api.RemoteExercise) Resolution {
	if !exerciseDiffers(local, remote) {
		return ResolutionNoop
	}

	if remote.ModifiedTime().Before(local.ModifiedAt) {
		return ResolutionKeepLocal
	}

	return ResolutionTakeRemote
}

// activityDiffers compares payload fields structurally, ignoring
// timestamps. Comments are NFC-normalized first so the same text typed
// on different platforms does not register as a conflict.
func activityDiffers(local models.ActivitySnapshot, remote api.RemoteActivity) bool {
	if local.TypeCode != remote.TypeCode {
		return true
	}

	if local.Count != intOrZero(remote.Count) {
		return true
	}

	if local.PlannedCount != intOrZero(remote.PlannedCount) {
		return true
	}

	if local.ExecutionTypeCode != intOrZero(remote.ExecutionTypeCode) {
		return true
	}

	if local.TrainingTypeCode != intOrZero(remote.TrainingTypeCode) {
		return true
	}

	if local.Duration != intOrZero(remote.Duration) {
		return true
	}

	if normComment(local.Comment) != normComment(strOrEmpty(remote.Comment)) {
		return true
	}

	return setsDiffer(local.Sets, remote.LineItems)
}

// setsDiffer compares set lists element-wise in order. Order matters:
// the sort order is part of the payload.
func setsDiffer(local []models.SetEntry, remote []api.RemoteLineItem) bool {
	if len(local) != len(remote) {
		return true
	}

	for i, l := range local {
		r := remote[i]

		if l.TypeID != intOrZero(r.TypeID) {
			return true
		}

		if l.Count != r.Count || l.SortOrder != r.SortOrder {
			return true
		}

		localCustom := ""
		if l.CustomTypeID != nil {
			localCustom = l.CustomTypeID.String()
		}

		if localCustom != strOrEmpty(r.CustomTypeID) {
			return true
		}
	}

	return false
}

func exerciseDiffers(local models.ExerciseSnapshot, remote api.RemoteExercise) bool {
	if local.Name != remote.Name {
		return true
	}

	if local.MuscleGroup != strOrEmpty(remote.MuscleGroup) {
		return true
	}

	return normComment(local.Comment) != normComment(strOrEmpty(remote.Comment))
}

func normComment(s string) string {
	return norm.NFC.String(s)
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}

	return *p
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}
