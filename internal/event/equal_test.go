package event

import (
	"testing"
	"time"
)

func baseEvent() *Event {
	return &Event{
		UID:     "a@ex",
		Start:   UtcTime(time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)),
		End:     UtcTime(time.Date(2025, 3, 20, 16, 0, 0, 0, time.UTC)),
		Summary: "Standup",
		Updated: time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestContentEqualIgnoresUpdatedSequenceCustom(t *testing.T) {
	a := baseEvent()
	b := baseEvent()
	b.Updated = time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)
	b.Sequence = 7
	b.SetCustom("X-GOOGLE-EVENT-ID", "abc123")

	if !ContentEqual(a, b) {
		t.Errorf("expected content-equal events differing only in Updated/Sequence/CustomProperties to compare equal")
	}
}

func TestContentEqualDetectsRealChange(t *testing.T) {
	a := baseEvent()
	b := baseEvent()
	b.Summary = "Standup (moved)"

	if ContentEqual(a, b) {
		t.Errorf("expected differing Summary to break content-equality")
	}
}

func TestContentEqualNilHandling(t *testing.T) {
	if !ContentEqual(nil, nil) {
		t.Errorf("nil, nil should be equal")
	}
	if ContentEqual(baseEvent(), nil) {
		t.Errorf("non-nil vs nil should not be equal")
	}
}
