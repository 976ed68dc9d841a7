// Package diff implements the three-way compare: local events, remote
// events, and a previously-known identity set, over a time window,
// producing per-side ordered change lists.
//
// This is the one core component kept on the standard library rather than
// a teacher/pack dependency: it is pure-value comparison and sorting over
// types already defined in internal/event, and no library in the
// retrieval pack offers a three-way-merge or diff shaped for this exact
// identity/content-equality/mtime-vs-updated relation. Adopting one would
// mean reshaping the algorithm around a generic library's model instead
// of this one, for no reduction in code. See DESIGN.md.
package diff

import (
	"sort"
	"time"

	"github.com/caldirhq/caldir/internal/event"
	"github.com/caldirhq/caldir/internal/store"
)

// ChangeKind distinguishes the three apply operations.
type ChangeKind int

const (
	Create ChangeKind = iota
	Update
	Delete
)

func (k ChangeKind) String() string {
	switch k {
	case Create:
		return "Create"
	case Update:
		return "Update"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// EventDiff is one identity's change on one side of the sync.
type EventDiff struct {
	Identity event.Identity
	Kind     ChangeKind
	Old      *event.Event
	New      *event.Event
}

// CalendarDiff is the full set of changes to apply in each direction.
// Within each list, changes are already in application order: Delete,
// then Update, then Create, each lexicographic on identity.
type CalendarDiff struct {
	ToPush []EventDiff
	ToPull []EventDiff
}

// Window bounds which remote-absence is trusted as a deletion. The zero
// Window means "no window filtering"; callers should use DefaultWindow
// for the documented +/-365 days.
type Window struct {
	From, To time.Time
}

// DefaultWindow returns the +/-365-day window around now.
func DefaultWindow(now time.Time) Window {
	return Window{From: now.AddDate(0, 0, -365), To: now.AddDate(0, 0, 365)}
}

// contains reports whether t falls inside the window, inclusive.
func (w Window) contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Compute runs the three-way diff over local, remote, and the
// known-identity set, within window. now is used only by callers
// building Window; Compute itself never reads the clock.
func Compute(local map[event.Identity]store.LocalEvent, remote []*event.Event, known map[event.Identity]bool, window Window) CalendarDiff {
	remoteByID := make(map[event.Identity]*event.Event, len(remote))
	for _, e := range remote {
		remoteByID[event.IdentityOf(e)] = e
	}

	ids := make(map[event.Identity]bool, len(local)+len(remoteByID))
	for id := range local {
		ids[id] = true
	}
	for id := range remoteByID {
		ids[id] = true
	}

	var toPush, toPull []EventDiff

	for id := range ids {
		l, hasLocal := local[id]
		r, hasRemote := remoteByID[id]
		isKnown := known[id]

		switch {
		case hasLocal && hasRemote:
			if event.ContentEqual(l.Event, r) {
				continue
			}
			if l.FileMTime.Truncate(time.Second).After(r.Updated) {
				toPush = append(toPush, EventDiff{Identity: id, Kind: Update, Old: r, New: l.Event})
			} else {
				toPull = append(toPull, EventDiff{Identity: id, Kind: Update, Old: l.Event, New: r})
			}

		case hasLocal && !hasRemote:
			if isKnown {
				toPull = append(toPull, EventDiff{Identity: id, Kind: Delete, Old: l.Event})
			} else {
				toPush = append(toPush, EventDiff{Identity: id, Kind: Create, New: l.Event})
			}

		case !hasLocal && hasRemote:
			if isKnown {
				toPush = append(toPush, EventDiff{Identity: id, Kind: Delete, Old: r})
			} else {
				toPull = append(toPull, EventDiff{Identity: id, Kind: Create, New: r})
			}
		}
	}

	toPull = filterWindowedPullDeletes(toPull, window)

	sortChanges(toPush)
	sortChanges(toPull)

	return CalendarDiff{ToPush: toPush, ToPull: toPull}
}

// filterWindowedPullDeletes drops pull-deletes whose event start falls
// outside window: events beyond the fetched window were never retrieved,
// so their remote absence carries no information. Push deletes are never
// filtered; local absence is authoritative regardless of window.
func filterWindowedPullDeletes(changes []EventDiff, window Window) []EventDiff {
	if window == (Window{}) {
		return changes
	}
	kept := changes[:0]
	for _, c := range changes {
		if c.Kind == Delete && !window.contains(c.Old.Start.Instant()) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// kindOrder fixes Delete < Update < Create for application order.
func kindOrder(k ChangeKind) int {
	switch k {
	case Delete:
		return 0
	case Update:
		return 1
	default:
		return 2
	}
}

func sortChanges(changes []EventDiff) {
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Kind != changes[j].Kind {
			return kindOrder(changes[i].Kind) < kindOrder(changes[j].Kind)
		}
		return changes[i].Identity.Less(changes[j].Identity)
	})
}
