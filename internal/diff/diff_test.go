package diff

import (
	"testing"
	"time"

	"github.com/caldirhq/caldir/internal/event"
	"github.com/caldirhq/caldir/internal/store"
)

func ev(uid, summary string, start time.Time, updated time.Time) *event.Event {
	return &event.Event{UID: uid, Summary: summary, Start: event.UtcTime(start), End: event.UtcTime(start.Add(time.Hour)), Updated: updated}
}

func idOf(uid string) event.Identity { return event.Identity{UID: uid} }

var noWindow = Window{}

func TestFirstPull(t *testing.T) {
	start := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	remote := []*event.Event{
		ev("a@ex", "One", start, start),
		ev("b@ex", "Two", start.AddDate(0, 0, 1), start),
	}
	d := Compute(nil, remote, nil, noWindow)

	if len(d.ToPush) != 0 {
		t.Errorf("expected no pushes, got %+v", d.ToPush)
	}
	if len(d.ToPull) != 2 {
		t.Fatalf("expected 2 pulls, got %+v", d.ToPull)
	}
	for _, c := range d.ToPull {
		if c.Kind != Create {
			t.Errorf("expected Create, got %v", c.Kind)
		}
	}
}

func TestLocalEditBeatsRemote(t *testing.T) {
	start := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	remoteUpdated := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	localMTime := time.Date(2025, 3, 20, 12, 0, 5, 0, time.UTC)

	local := map[event.Identity]store.LocalEvent{
		idOf("a@ex"): {Event: ev("a@ex", "Local Title", start, time.Time{}), FileMTime: localMTime},
	}
	remote := []*event.Event{ev("a@ex", "Remote Title", start, remoteUpdated)}

	d := Compute(local, remote, map[event.Identity]bool{idOf("a@ex"): true}, noWindow)

	if len(d.ToPush) != 1 || d.ToPush[0].Kind != Update {
		t.Fatalf("expected one push Update, got %+v", d.ToPush)
	}
	if len(d.ToPull) != 0 {
		t.Errorf("expected no pulls, got %+v", d.ToPull)
	}
}

func TestRemoteUpdateBeatsLocal(t *testing.T) {
	start := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	remoteUpdated := time.Date(2025, 3, 20, 12, 0, 5, 0, time.UTC)
	localMTime := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	local := map[event.Identity]store.LocalEvent{
		idOf("a@ex"): {Event: ev("a@ex", "Local Title", start, time.Time{}), FileMTime: localMTime},
	}
	remote := []*event.Event{ev("a@ex", "Remote Title", start, remoteUpdated)}

	d := Compute(local, remote, map[event.Identity]bool{idOf("a@ex"): true}, noWindow)

	if len(d.ToPull) != 1 || d.ToPull[0].Kind != Update {
		t.Fatalf("expected one pull Update, got %+v", d.ToPull)
	}
	if len(d.ToPush) != 0 {
		t.Errorf("expected no pushes, got %+v", d.ToPush)
	}
}

func TestLocalDeletion(t *testing.T) {
	start := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	remote := []*event.Event{ev("a@ex", "One", start, start)}
	known := map[event.Identity]bool{idOf("a@ex"): true}

	d := Compute(nil, remote, known, noWindow)

	if len(d.ToPush) != 1 || d.ToPush[0].Kind != Delete {
		t.Fatalf("expected one push Delete, got %+v", d.ToPush)
	}
	if len(d.ToPull) != 0 {
		t.Errorf("expected no pulls, got %+v", d.ToPull)
	}
}

func TestRemoteDeletionInWindow(t *testing.T) {
	start := time.Now().UTC()
	local := map[event.Identity]store.LocalEvent{
		idOf("b@ex"): {Event: ev("b@ex", "Two", start, start), FileMTime: start},
	}
	known := map[event.Identity]bool{idOf("b@ex"): true}

	d := Compute(local, nil, known, DefaultWindow(time.Now()))

	if len(d.ToPull) != 1 || d.ToPull[0].Kind != Delete {
		t.Fatalf("expected one pull Delete, got %+v", d.ToPull)
	}
}

func TestRemoteDeletionOutsideWindowIsSkipped(t *testing.T) {
	start := time.Now().AddDate(-5, 0, 0) // 5 years ago, well outside the default window
	local := map[event.Identity]store.LocalEvent{
		idOf("old@ex"): {Event: ev("old@ex", "Ancient", start, start), FileMTime: start},
	}
	known := map[event.Identity]bool{idOf("old@ex"): true}

	d := Compute(local, nil, known, DefaultWindow(time.Now()))

	if len(d.ToPull) != 0 {
		t.Errorf("expected the out-of-window deletion to be skipped, got %+v", d.ToPull)
	}
}

func TestContentEqualEventsProduceNoDiff(t *testing.T) {
	start := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	local := map[event.Identity]store.LocalEvent{
		idOf("a@ex"): {Event: ev("a@ex", "Same", start, time.Time{}), FileMTime: start},
	}
	// Differs only in updated/sequence, which content-equality ignores.
	remoteEvent := ev("a@ex", "Same", start, start.Add(time.Minute))
	remoteEvent.Sequence = 7

	d := Compute(local, []*event.Event{remoteEvent}, map[event.Identity]bool{idOf("a@ex"): true}, noWindow)

	if len(d.ToPush) != 0 || len(d.ToPull) != 0 {
		t.Errorf("expected an empty diff for content-equal events, got push=%+v pull=%+v", d.ToPush, d.ToPull)
	}
}

func TestApplyOrderingWithinKind(t *testing.T) {
	start := time.Now().UTC()
	remote := []*event.Event{
		ev("z@ex", "Z", start, start),
		ev("a@ex", "A", start, start),
	}
	d := Compute(nil, remote, nil, noWindow)

	if len(d.ToPull) != 2 {
		t.Fatalf("expected 2 creates, got %d", len(d.ToPull))
	}
	if d.ToPull[0].Identity.UID != "a@ex" || d.ToPull[1].Identity.UID != "z@ex" {
		t.Errorf("expected lexicographic order a@ex, z@ex; got %v, %v", d.ToPull[0].Identity, d.ToPull[1].Identity)
	}
}

func TestRecurrenceOverrideIsDistinctIdentity(t *testing.T) {
	start := time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)
	master := &event.Event{UID: "m@ex", Summary: "Weekly", RRule: "FREQ=WEEKLY", Start: event.UtcTime(start), End: event.UtcTime(start.Add(time.Hour))}
	instance := &event.Event{UID: "m@ex", RecurrenceID: "20250320T150000Z", Summary: "Weekly (moved)", Start: event.UtcTime(start.Add(time.Hour)), End: event.UtcTime(start.Add(2 * time.Hour))}

	localInstance := *instance
	localInstance.Summary = "Weekly (edited)"

	local := map[event.Identity]store.LocalEvent{
		event.IdentityOf(master):   {Event: master, FileMTime: start},
		event.IdentityOf(instance): {Event: &localInstance, FileMTime: start.Add(24 * time.Hour)},
	}
	remote := []*event.Event{master, instance}
	known := map[event.Identity]bool{event.IdentityOf(master): true, event.IdentityOf(instance): true}

	d := Compute(local, remote, known, noWindow)

	if len(d.ToPush) != 1 {
		t.Fatalf("expected exactly one push (the edited instance), got %+v", d.ToPush)
	}
	if d.ToPush[0].Identity.RecurrenceID != "20250320T150000Z" {
		t.Errorf("expected the push to target the instance, got %+v", d.ToPush[0].Identity)
	}
}
