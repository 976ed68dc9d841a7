package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/caldirhq/caldir/internal/event"
)

func sampleEvent() *event.Event {
	return &event.Event{
		UID:         "a@ex",
		Start:       event.UtcTime(time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)),
		End:         event.UtcTime(time.Date(2025, 3, 20, 16, 0, 0, 0, time.UTC)),
		Summary:     "Standup",
		Description: "Daily sync, notes: a; b, c\\d",
		Location:    "Room 1",
		Updated:     time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC),
		Organizer:   &event.Organizer{CN: "Alice", Email: "alice@ex.com"},
		Attendees: []event.Attendee{
			{CN: "Bob", Email: "bob@ex.com", PartStat: event.Accepted},
		},
		Reminders:        []event.Reminder{{MinutesBefore: 10}},
		CustomProperties: []event.CustomProp{{Name: "X-GOOGLE-EVENT-ID", Value: "abc123"}},
	}
}

func TestRoundTrip(t *testing.T) {
	e := sampleEvent()
	data := Emit(e)

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !event.ContentEqual(e, got) {
		t.Errorf("round-trip broke content equality:\nwant %+v\ngot  %+v", e, got)
	}
	if !got.Updated.Truncate(time.Second).Equal(e.Updated.Truncate(time.Second)) {
		t.Errorf("Updated not preserved modulo second truncation: want %v got %v", e.Updated, got.Updated)
	}
	if len(got.CustomProperties) != 1 || got.CustomProperties[0].Value != "abc123" {
		t.Errorf("custom properties not preserved: %+v", got.CustomProperties)
	}
}

func TestEmitOmitsDefaults(t *testing.T) {
	e := sampleEvent()
	e.Description = ""
	e.Location = ""
	e.Organizer = nil
	e.Attendees = nil
	e.Reminders = nil
	e.CustomProperties = nil
	data := string(Emit(e))

	for _, absent := range []string{"CALSCALE", "STATUS:CONFIRMED", "TRANSP:OPAQUE", "DESCRIPTION", "LOCATION", "VALARM"} {
		if strings.Contains(data, absent) {
			t.Errorf("expected %q to be omitted from emitted ICS, got:\n%s", absent, data)
		}
	}
}

func TestEmitAllDay(t *testing.T) {
	e := sampleEvent()
	e.Start = event.AllDayTime(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC))
	e.End = event.AllDayTime(time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC))
	data := string(Emit(e))
	if !strings.Contains(data, "DTSTART;VALUE=DATE:20250320") {
		t.Errorf("expected all-day DTSTART, got:\n%s", data)
	}

	got, err := Parse(Emit(e))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Start.Kind != event.AllDay {
		t.Errorf("expected parsed start to be AllDay, got %v", got.Start.Kind)
	}
}

func TestEmitLineFolding(t *testing.T) {
	e := sampleEvent()
	e.Summary = ""
	for i := 0; i < 200; i++ {
		e.Summary += "x"
	}
	data := string(Emit(e))
	for _, line := range splitCRLF(data) {
		if len(line) > 75 {
			t.Errorf("unfolded line exceeds 75 octets (%d): %q", len(line), line)
		}
	}
}

func splitCRLF(s string) []string {
	var lines []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\r' && s[i+1] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 2
		}
	}
	return lines
}

