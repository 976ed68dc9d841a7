package provider

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/caldirhq/caldir/internal/event"
)

func TestWireEventRoundTrip(t *testing.T) {
	e := &event.Event{
		UID:         "a@ex",
		Start:       event.ZonedTime("America/New_York", time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)),
		End:         event.ZonedTime("America/New_York", time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)),
		Summary:     "Planning",
		Status:      event.StatusTentative,
		Organizer:   &event.Organizer{CN: "Alice", Email: "alice@ex.com"},
		Attendees:   []event.Attendee{{CN: "Bob", Email: "bob@ex.com", PartStat: event.Declined}},
		Reminders:   []event.Reminder{{MinutesBefore: 15}},
		Updated:     time.Date(2025, 3, 20, 8, 0, 0, 0, time.UTC),
		Sequence:    2,
	}
	e.SetCustom("X-GOOGLE-EVENT-ID", "xyz")

	w := ToWireEvent(e)
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var w2 WireEvent
	if err := json.Unmarshal(data, &w2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := FromWireEvent(w2)
	if err != nil {
		t.Fatalf("FromWireEvent: %v", err)
	}
	if !event.ContentEqual(e, got) {
		t.Errorf("round trip broke content equality:\nwant %+v\ngot  %+v", e, got)
	}
	if v, ok := got.Custom("X-GOOGLE-EVENT-ID"); !ok || v != "xyz" {
		t.Errorf("custom property lost: %v %v", v, ok)
	}
}

func TestWireTimeAllDay(t *testing.T) {
	orig := event.AllDayTime(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	w := toWireTime(orig)
	if w.Kind != "AllDay" || w.Date != "2025-06-01" {
		t.Fatalf("unexpected wire time: %+v", w)
	}
	back, err := fromWireTime(w)
	if err != nil {
		t.Fatalf("fromWireTime: %v", err)
	}
	if !back.Equal(orig) {
		t.Errorf("AllDay time not preserved: %+v vs %+v", back, orig)
	}
}
