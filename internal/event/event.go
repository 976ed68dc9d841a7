// Package event defines caldir's provider-neutral calendar event model.
//
// Everything here is transport-agnostic: it knows nothing about ICS text,
// CalDAV, or Google's REST shapes. The codec package converts to and from
// this model; the diff and sync packages operate only on it.
package event

import "time"

// Status is the VEVENT STATUS property. The zero value is StatusConfirmed.
type Status int

const (
	StatusConfirmed Status = iota
	StatusTentative
	StatusCancelled
)

// Transparency is the VEVENT TRANSP property. The zero value is Opaque.
type Transparency int

const (
	Opaque Transparency = iota
	Transparent
)

// PartStat is a VEVENT ATTENDEE's PARTSTAT parameter.
type PartStat int

const (
	NeedsAction PartStat = iota
	Accepted
	Declined
	Tentative
)

// TimeKind distinguishes the four ICS DTSTART/DTEND shapes caldir supports.
type TimeKind int

const (
	// AllDay is a DATE value (VALUE=DATE), exclusive on DTEND per RFC 5545.
	AllDay TimeKind = iota
	// Floating is a local DATE-TIME with no TZID and no trailing Z.
	Floating
	// Utc is a DATE-TIME with a trailing Z.
	Utc
	// Zoned is a DATE-TIME qualified by a TZID parameter.
	Zoned
)

// EventTime is one of the four DTSTART/DTEND shapes. Exactly one of Date or
// DateTime is meaningful depending on Kind; TZID is only meaningful for
// Zoned.
type EventTime struct {
	Kind TimeKind
	// Date holds the calendar date for AllDay, truncated to midnight UTC
	// for comparison purposes only; it carries no timezone meaning.
	Date time.Time
	// DateTime holds the wall-clock or UTC instant for Floating, Utc, and
	// Zoned. For Zoned it is the wall-clock time *in* TZID, not UTC.
	DateTime time.Time
	// TZID is the IANA zone name, set only when Kind == Zoned.
	TZID string
}

// AllDayTime builds an AllDay EventTime from a calendar date.
func AllDayTime(date time.Time) EventTime {
	y, m, d := date.Date()
	return EventTime{Kind: AllDay, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// FloatingTime builds a Floating EventTime.
func FloatingTime(dt time.Time) EventTime {
	return EventTime{Kind: Floating, DateTime: dt}
}

// UtcTime builds a Utc EventTime.
func UtcTime(dt time.Time) EventTime {
	return EventTime{Kind: Utc, DateTime: dt.UTC()}
}

// ZonedTime builds a Zoned EventTime.
func ZonedTime(tzid string, dt time.Time) EventTime {
	return EventTime{Kind: Zoned, TZID: tzid, DateTime: dt}
}

// Instant returns the best-effort absolute instant for ordering and window
// comparisons. AllDay dates are treated as UTC midnight; Floating times are
// treated as if they were UTC (there is no absolute instant for a floating
// time, so this is only ever used for coarse window filtering).
func (t EventTime) Instant() time.Time {
	switch t.Kind {
	case AllDay:
		return t.Date
	case Utc:
		return t.DateTime.UTC()
	case Zoned:
		loc, err := time.LoadLocation(t.TZID)
		if err != nil {
			return t.DateTime.UTC()
		}
		return time.Date(t.DateTime.Year(), t.DateTime.Month(), t.DateTime.Day(),
			t.DateTime.Hour(), t.DateTime.Minute(), t.DateTime.Second(), 0, loc).UTC()
	default: // Floating
		return t.DateTime.UTC()
	}
}

// Equal reports whether two EventTimes denote the same point per the
// content-equality relation (spec §3): same kind, same TZID, same instant.
func (t EventTime) Equal(o EventTime) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == Zoned && t.TZID != o.TZID {
		return false
	}
	if t.Kind == AllDay {
		return t.Date.Equal(o.Date)
	}
	return t.DateTime.Equal(o.DateTime)
}

// Organizer is the VEVENT ORGANIZER property.
type Organizer struct {
	CN    string
	Email string
}

// Attendee is one VEVENT ATTENDEE property.
type Attendee struct {
	CN       string
	Email    string
	PartStat PartStat
}

// Reminder is one VALARM/ACTION=DISPLAY component.
type Reminder struct {
	MinutesBefore uint32
}

// CustomProp is one preserved X-* property, in the order it was
// encountered (or added) so emission is deterministic.
type CustomProp struct {
	Name  string
	Value string
}

// Event is caldir's provider-neutral event record.
type Event struct {
	UID          string
	RecurrenceID string // empty unless this is an instance override

	Start, End EventTime

	Summary     string
	Description string
	Location    string

	Status       Status
	Transparency Transparency

	RRule   string
	ExDates []string

	Organizer *Organizer
	Attendees []Attendee

	Reminders []Reminder

	URL string

	Updated  time.Time
	Sequence uint32

	CustomProperties []CustomProp
}

// IsRecurringMaster reports whether e has an RRULE and is not itself an
// instance override.
func (e *Event) IsRecurringMaster() bool {
	return e.RRule != "" && e.RecurrenceID == ""
}

// Custom looks up a preserved X-* property by name.
func (e *Event) Custom(name string) (string, bool) {
	for _, c := range e.CustomProperties {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// SetCustom inserts or overwrites a preserved X-* property, preserving
// first-seen order.
func (e *Event) SetCustom(name, value string) {
	for i := range e.CustomProperties {
		if e.CustomProperties[i].Name == name {
			e.CustomProperties[i].Value = value
			return
		}
	}
	e.CustomProperties = append(e.CustomProperties, CustomProp{Name: name, Value: value})
}
