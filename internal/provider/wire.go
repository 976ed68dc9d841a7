package provider

import (
	"fmt"
	"time"

	"github.com/caldirhq/caldir/internal/event"
)

// WireEvent is the provider JSON representation of event.Event. It exists
// because event.Event is deliberately kept free of encoding tags: it is
// the codec and diff packages' model, not a wire format, while providers
// speak plain JSON. WireEvent is exported so provider binaries outside
// this package (the reference caldir-provider-caldav, or any other
// implementation) can produce and consume the exact same JSON shape the
// core reads.
type WireEvent struct {
	UID          string          `json:"uid"`
	RecurrenceID string          `json:"recurrence_id,omitempty"`
	Start        wireTime        `json:"start"`
	End          wireTime        `json:"end"`
	Summary      string          `json:"summary"`
	Description  string          `json:"description,omitempty"`
	Location     string          `json:"location,omitempty"`
	Status       string          `json:"status,omitempty"`
	Transparency string          `json:"transparency,omitempty"`
	RRule        string          `json:"rrule,omitempty"`
	ExDates      []string        `json:"exdates,omitempty"`
	Organizer    *wireOrganizer  `json:"organizer,omitempty"`
	Attendees    []wireAttendee  `json:"attendees,omitempty"`
	Reminders    []wireReminder  `json:"reminders,omitempty"`
	URL          string          `json:"url,omitempty"`
	Updated      time.Time       `json:"updated"`
	Sequence     uint32          `json:"sequence"`
	// CustomProps loses the on-disk insertion order preserved by
	// event.Event.CustomProperties; JSON objects are unordered anyway, and
	// no provider depends on X-* emission order.
	CustomProps map[string]string `json:"custom_properties,omitempty"`
}

type wireTime struct {
	Kind     string    `json:"kind"`
	Date     string    `json:"date,omitempty"`
	DateTime time.Time `json:"datetime,omitempty"`
	TZID     string    `json:"tzid,omitempty"`
}

type wireOrganizer struct {
	CN    string `json:"cn,omitempty"`
	Email string `json:"email"`
}

type wireAttendee struct {
	CN       string `json:"cn,omitempty"`
	Email    string `json:"email"`
	PartStat string `json:"partstat"`
}

type wireReminder struct {
	MinutesBefore uint32 `json:"minutes_before"`
}

func toWireTime(t event.EventTime) wireTime {
	switch t.Kind {
	case event.AllDay:
		return wireTime{Kind: "AllDay", Date: t.Date.Format("2006-01-02")}
	case event.Zoned:
		return wireTime{Kind: "Zoned", TZID: t.TZID, DateTime: t.DateTime}
	case event.Utc:
		return wireTime{Kind: "Utc", DateTime: t.DateTime}
	default:
		return wireTime{Kind: "Floating", DateTime: t.DateTime}
	}
}

func fromWireTime(w wireTime) (event.EventTime, error) {
	switch w.Kind {
	case "AllDay":
		d, err := time.Parse("2006-01-02", w.Date)
		if err != nil {
			return event.EventTime{}, fmt.Errorf("wire time: bad date %q: %w", w.Date, err)
		}
		return event.AllDayTime(d), nil
	case "Zoned":
		return event.ZonedTime(w.TZID, w.DateTime), nil
	case "Utc":
		return event.UtcTime(w.DateTime), nil
	case "Floating":
		return event.FloatingTime(w.DateTime), nil
	default:
		return event.EventTime{}, fmt.Errorf("wire time: unknown kind %q", w.Kind)
	}
}

func statusString(s event.Status) string {
	switch s {
	case event.StatusTentative:
		return "Tentative"
	case event.StatusCancelled:
		return "Cancelled"
	default:
		return "Confirmed"
	}
}

func parseStatus(s string) event.Status {
	switch s {
	case "Tentative":
		return event.StatusTentative
	case "Cancelled":
		return event.StatusCancelled
	default:
		return event.StatusConfirmed
	}
}

func transparencyString(t event.Transparency) string {
	if t == event.Transparent {
		return "Transparent"
	}
	return "Opaque"
}

func parseTransparency(s string) event.Transparency {
	if s == "Transparent" {
		return event.Transparent
	}
	return event.Opaque
}

func partStatString(p event.PartStat) string {
	switch p {
	case event.Accepted:
		return "Accepted"
	case event.Declined:
		return "Declined"
	case event.Tentative:
		return "Tentative"
	default:
		return "NeedsAction"
	}
}

func parsePartStat(s string) event.PartStat {
	switch s {
	case "Accepted":
		return event.Accepted
	case "Declined":
		return event.Declined
	case "Tentative":
		return event.Tentative
	default:
		return event.NeedsAction
	}
}

// ToWireEvent converts a core Event into its wire JSON representation.
func ToWireEvent(e *event.Event) WireEvent {
	w := WireEvent{
		UID:          e.UID,
		RecurrenceID: e.RecurrenceID,
		Start:        toWireTime(e.Start),
		End:          toWireTime(e.End),
		Summary:      e.Summary,
		Description:  e.Description,
		Location:     e.Location,
		Status:       statusString(e.Status),
		Transparency: transparencyString(e.Transparency),
		RRule:        e.RRule,
		ExDates:      e.ExDates,
		URL:          e.URL,
		Updated:      e.Updated,
		Sequence:     e.Sequence,
	}
	if e.Organizer != nil {
		w.Organizer = &wireOrganizer{CN: e.Organizer.CN, Email: e.Organizer.Email}
	}
	for _, a := range e.Attendees {
		w.Attendees = append(w.Attendees, wireAttendee{CN: a.CN, Email: a.Email, PartStat: partStatString(a.PartStat)})
	}
	for _, r := range e.Reminders {
		w.Reminders = append(w.Reminders, wireReminder{MinutesBefore: r.MinutesBefore})
	}
	if len(e.CustomProperties) > 0 {
		w.CustomProps = make(map[string]string, len(e.CustomProperties))
		for _, c := range e.CustomProperties {
			w.CustomProps[c.Name] = c.Value
		}
	}
	return w
}

// FromWireEvent converts a wire JSON representation back into a core
// Event.
func FromWireEvent(w WireEvent) (*event.Event, error) {
	start, err := fromWireTime(w.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := fromWireTime(w.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	e := &event.Event{
		UID:          w.UID,
		RecurrenceID: w.RecurrenceID,
		Start:        start,
		End:          end,
		Summary:      w.Summary,
		Description:  w.Description,
		Location:     w.Location,
		Status:       parseStatus(w.Status),
		Transparency: parseTransparency(w.Transparency),
		RRule:        w.RRule,
		ExDates:      w.ExDates,
		URL:          w.URL,
		Updated:      w.Updated,
		Sequence:     w.Sequence,
	}
	if w.Organizer != nil {
		e.Organizer = &event.Organizer{CN: w.Organizer.CN, Email: w.Organizer.Email}
	}
	for _, a := range w.Attendees {
		e.Attendees = append(e.Attendees, event.Attendee{CN: a.CN, Email: a.Email, PartStat: parsePartStat(a.PartStat)})
	}
	for _, r := range w.Reminders {
		e.Reminders = append(e.Reminders, event.Reminder{MinutesBefore: r.MinutesBefore})
	}
	for name, value := range w.CustomProps {
		e.SetCustom(name, value)
	}
	return e, nil
}
