package ical

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caldirhq/caldir/internal/event"
)

// Emit produces the deterministic VCALENDAR/VEVENT byte structure: a
// fixed property order, selective omission of defaulted properties
// (CALSCALE, STATUS:CONFIRMED, TRANSP:OPAQUE, VALARM UID/DTSTAMP), and
// 75-octet line folding. It never injects the current time except as
// the DTSTAMP fallback when Updated is zero.
func Emit(e *event.Event) []byte {
	var b strings.Builder

	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, fmt.Sprintf("PRODID:%s", prodID))
	writeLine(&b, "BEGIN:VEVENT")

	writeLine(&b, "UID:"+escapeText(e.UID))

	dtstamp := e.Updated
	if dtstamp.IsZero() {
		dtstamp = time.Now().UTC()
	}
	writeLine(&b, "DTSTAMP:"+formatUTC(dtstamp))

	writeLine(&b, "DTSTART"+formatTimeProp(e.Start))
	writeLine(&b, "DTEND"+formatTimeProp(e.End))

	writeLine(&b, "SUMMARY:"+escapeText(e.Summary))

	if e.Description != "" {
		writeLine(&b, "DESCRIPTION:"+escapeText(e.Description))
	}
	if e.Location != "" {
		writeLine(&b, "LOCATION:"+escapeText(e.Location))
	}

	switch e.Status {
	case event.StatusTentative:
		writeLine(&b, "STATUS:TENTATIVE")
	case event.StatusCancelled:
		writeLine(&b, "STATUS:CANCELLED")
	}

	if e.Transparency == event.Transparent {
		writeLine(&b, "TRANSP:TRANSPARENT")
	}

	if e.RRule != "" {
		writeLine(&b, "RRULE:"+e.RRule)
	}
	for _, ex := range e.ExDates {
		writeLine(&b, "EXDATE:"+ex)
	}

	if e.RecurrenceID != "" {
		writeLine(&b, "RECURRENCE-ID:"+e.RecurrenceID)
	}

	if !e.Updated.IsZero() {
		writeLine(&b, "LAST-MODIFIED:"+formatUTC(e.Updated))
	}

	if e.Sequence != 0 {
		writeLine(&b, "SEQUENCE:"+strconv.FormatUint(uint64(e.Sequence), 10))
	}

	if e.Organizer != nil {
		writeLine(&b, "ORGANIZER"+formatOrganizer(*e.Organizer))
	}
	for _, a := range e.Attendees {
		writeLine(&b, "ATTENDEE"+formatAttendee(a))
	}

	if e.URL != "" {
		writeLine(&b, "URL:"+escapeText(e.URL))
	}

	for _, c := range e.CustomProperties {
		writeLine(&b, c.Name+":"+escapeText(c.Value))
	}

	for _, r := range e.Reminders {
		writeLine(&b, "BEGIN:VALARM")
		writeLine(&b, "ACTION:DISPLAY")
		writeLine(&b, fmt.Sprintf("TRIGGER:-PT%dM", r.MinutesBefore))
		writeLine(&b, "DESCRIPTION:Reminder")
		writeLine(&b, "END:VALARM")
	}

	writeLine(&b, "END:VEVENT")
	writeLine(&b, "END:VCALENDAR")

	return []byte(b.String())
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(foldLine(line))
}

func formatUTC(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("20060102T150405Z")
}

func formatTimeProp(t event.EventTime) string {
	switch t.Kind {
	case event.AllDay:
		return ";VALUE=DATE:" + t.Date.Format("20060102")
	case event.Utc:
		return ":" + formatUTC(t.DateTime)
	case event.Zoned:
		return ";TZID=" + t.TZID + ":" + t.DateTime.Format("20060102T150405")
	default: // Floating
		return ":" + t.DateTime.Format("20060102T150405")
	}
}

func formatOrganizer(o event.Organizer) string {
	var params string
	if o.CN != "" {
		params = ";CN=" + escapeParam(o.CN)
	}
	return params + ":mailto:" + o.Email
}

func formatAttendee(a event.Attendee) string {
	var params string
	if a.CN != "" {
		params += ";CN=" + escapeParam(a.CN)
	}
	params += ";PARTSTAT=" + partStatString(a.PartStat)
	return params + ":mailto:" + a.Email
}

func partStatString(p event.PartStat) string {
	switch p {
	case event.Accepted:
		return "ACCEPTED"
	case event.Declined:
		return "DECLINED"
	case event.Tentative:
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}

// escapeParam quotes a parameter value containing a colon, semicolon, or
// comma per RFC 5545 §3.2; caldir's own CN values rarely need it but
// round-tripped ones (from providers) might.
func escapeParam(s string) string {
	if strings.ContainsAny(s, ":;,") {
		return `"` + s + `"`
	}
	return s
}
