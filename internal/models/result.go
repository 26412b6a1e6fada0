package models

// Outcome classifies how a sync run ended.
type Outcome string

const (
	// OutcomeSuccess means every attempted operation succeeded.
	OutcomeSuccess Outcome = "success"

	// OutcomePartial means some operations failed while others made
	// progress; failed records stay dirty for the next run.
	OutcomePartial Outcome = "partial"

	// OutcomeError means the run could not make any progress.
	OutcomeError Outcome = "error"
)

// SyncCounts tallies the store mutations a run performed.
type SyncCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// SyncResult is what a sync run returns to the calling layer. Errors
// are collected per record and never dropped; the caller decides how
// to surface them.
type SyncResult struct {
	Outcome Outcome    `json:"outcome"`
	Counts  SyncCounts `json:"counts"`
	Errors  []string   `json:"errors,omitempty"`
}

// Progress reports whether the run mutated anything.
func (r SyncResult) Progress() bool {
	return r.Counts.Created > 0 || r.Counts.Updated > 0 || r.Counts.Deleted > 0
}

// Finalize derives the outcome from the collected errors and counts.
func (r *SyncResult) Finalize() {
	switch {
	case len(r.Errors) == 0:
		r.Outcome = OutcomeSuccess
	case r.Progress():
		r.Outcome = OutcomePartial
	default:
		r.Outcome = OutcomeError
	}
}
