// Package sync implements the apply pipeline: pull then push,
// reconciling provider responses back to the calendar store, updating
// the known-identity set, and enforcing the bulk-delete safety rail.
package sync

import "github.com/caldirhq/caldir/internal/event"

// Outcome is the result of one applied change.
type Outcome int

const (
	Ok Outcome = iota
	Err
)

// EventDiffResult records what happened applying one EventDiff. A single
// operation failure never aborts the batch.
type EventDiffResult struct {
	Identity event.Identity
	Outcome  Outcome
	Message  string
}

// BatchResult is everything produced by one apply phase (pull or push).
type BatchResult struct {
	Results []EventDiffResult
}

// Failed reports whether this result recorded a failure for its identity.
func (r EventDiffResult) Failed() bool { return r.Outcome == Err }

// HasFailures reports whether any result in the batch failed.
func (b BatchResult) HasFailures() bool {
	for _, r := range b.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}
