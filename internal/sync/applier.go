package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/caldirhq/caldir/internal/diff"
	"github.com/caldirhq/caldir/internal/event"
	"github.com/caldirhq/caldir/internal/provider"
	"github.com/caldirhq/caldir/internal/store"
)

// ErrBulkDeleteRefused is returned when a push would delete every known
// identity while the local event set is empty. Protects against an
// accidental `rm -rf` of the calendar directory being amplified into
// loss of the cloud copy.
var ErrBulkDeleteRefused = errors.New("sync: push would delete every known event; refused (pass force to override)")

// Applier drives one calendar's pull and push phases against its store
// and provider.
type Applier struct {
	Store      *store.Store
	Client     *provider.Client
	Account    string
	CalendarID string
}

// Pull applies diff.ToPull: writes, updates, and deletions land on the
// calendar store. known is mutated in place and MUST be persisted by the
// caller (via Store.ReplaceKnown) even on partial failure; Pull itself
// never writes known_event_ids. RunOne persists it right after Pull
// returns.
func (a *Applier) Pull(ctx context.Context, changes []diff.EventDiff, known map[event.Identity]bool) BatchResult {
	var results []EventDiffResult
	for _, c := range changes {
		if err := ctx.Err(); err != nil {
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
			continue
		}

		switch c.Kind {
		case diff.Create:
			if _, err := a.Store.Write(c.New); err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
				continue
			}
			known[c.Identity] = true
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Ok})

		case diff.Update:
			if _, err := a.Store.Write(c.New); err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
				continue
			}
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Ok})

		case diff.Delete:
			if err := a.Store.Delete(c.Identity); err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
				continue
			}
			delete(known, c.Identity)
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Ok})
		}
	}
	return BatchResult{Results: results}
}

// Push applies diff.ToPush against the provider, overwriting local files
// with the server-canonicalized event on success. force bypasses the
// bulk-delete safety rail.
//
// isLocalEmpty is supplied by the caller (it reflects the calendar store
// state at diff time, which Push does not re-derive) so the safety rail's
// "local event set is empty" condition is evaluated exactly once, against
// the same snapshot the diff was computed from.
func (a *Applier) Push(ctx context.Context, changes []diff.EventDiff, known map[event.Identity]bool, isLocalEmpty, force bool) (BatchResult, error) {
	if !force && isLocalEmpty && allDeletes(changes) && len(changes) > 0 && len(changes) == len(known) {
		return BatchResult{}, ErrBulkDeleteRefused
	}

	var results []EventDiffResult
	for _, c := range changes {
		if err := ctx.Err(); err != nil {
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
			continue
		}

		switch c.Kind {
		case diff.Create:
			canon, err := a.Client.CreateEvent(ctx, a.Account, a.CalendarID, c.New)
			if err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
				continue
			}
			if _, err := a.Store.Write(canon); err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: fmt.Sprintf("provider accepted create but local write failed: %v", err)})
				continue
			}
			known[event.IdentityOf(canon)] = true
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Ok})

		case diff.Update:
			canon, err := a.Client.UpdateEvent(ctx, a.Account, a.CalendarID, c.New)
			if err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
				continue
			}
			if _, err := a.Store.Write(canon); err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: fmt.Sprintf("provider accepted update but local write failed: %v", err)})
				continue
			}
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Ok})

		case diff.Delete:
			if err := a.Client.DeleteEvent(ctx, a.Account, a.CalendarID, c.Identity); err != nil {
				results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Err, Message: err.Error()})
				continue
			}
			delete(known, c.Identity)
			results = append(results, EventDiffResult{Identity: c.Identity, Outcome: Ok})
		}
	}
	return BatchResult{Results: results}, nil
}

func allDeletes(changes []diff.EventDiff) bool {
	for _, c := range changes {
		if c.Kind != diff.Delete {
			return false
		}
	}
	return true
}
