// Package ical implements caldir's RFC 5545 ICS codec: parsing a VCALENDAR
// containing one VEVENT into an event.Event, and emitting an event.Event
// back into deterministic ICS bytes.
//
// Parsing is built on github.com/emersion/go-ical's Decoder, the library
// every CalDAV-shaped repo in the retrieval pack reaches for, so that
// line-unfolding and TEXT unescaping aren't hand-rolled. Emission is
// hand-rolled (see emit.go): go-ical keys properties in a map and cannot
// guarantee the exact, selectively-omitted property order byte-
// deterministic output requires.
package ical

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/caldirhq/caldir/internal/event"
)

// prodID is stamped into every emitted VCALENDAR's PRODID line. It defaults
// to a fixed caldir identifier and can be overridden once at startup via
// SetProdID, typically from the [ics] section of config.Global.
var prodID = "-//caldir//caldir-sync//EN"

// SetProdID overrides the PRODID emitted by Emit. Callers pass
// config.ICSConfig.BuildProdID() once at startup; the zero value is never
// passed since config.DefaultICSConfig always fills it in.
func SetProdID(id string) {
	prodID = id
}

// Parse decodes a VCALENDAR containing at least one VEVENT into an
// event.Event. Only the first VEVENT is used; caldir's calendar
// directory convention is one VEVENT per file.
func Parse(data []byte) (*event.Event, error) {
	cal, err := goical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return nil, fmt.Errorf("ical: decode: %w", err)
	}

	var comp *goical.Component
	for _, c := range cal.Children {
		if c.Name == goical.CompEvent {
			comp = c
			break
		}
	}
	if comp == nil {
		return nil, fmt.Errorf("ical: no VEVENT component")
	}

	e := &event.Event{}

	uid := comp.Props.Get(goical.PropUID)
	if uid == nil || uid.Value == "" {
		return nil, fmt.Errorf("ical: missing UID")
	}
	e.UID = uid.Value

	dtstart := comp.Props.Get(goical.PropDateTimeStart)
	if dtstart == nil {
		return nil, fmt.Errorf("ical: missing DTSTART")
	}
	start, err := parseEventTime(dtstart)
	if err != nil {
		return nil, fmt.Errorf("ical: invalid DTSTART: %w", err)
	}
	e.Start = start

	if dtend := comp.Props.Get(goical.PropDateTimeEnd); dtend != nil {
		end, err := parseEventTime(dtend)
		if err != nil {
			return nil, fmt.Errorf("ical: invalid DTEND: %w", err)
		}
		e.End = end
	} else {
		e.End = start
	}

	if s := comp.Props.Get(goical.PropSummary); s != nil {
		if text, err := s.Text(); err == nil {
			e.Summary = text
		}
	}
	if d := comp.Props.Get(goical.PropDescription); d != nil {
		if text, err := d.Text(); err == nil {
			e.Description = text
		}
	}
	if l := comp.Props.Get(goical.PropLocation); l != nil {
		if text, err := l.Text(); err == nil {
			e.Location = text
		}
	}

	if s := comp.Props.Get(goical.PropStatus); s != nil {
		switch strings.ToUpper(s.Value) {
		case "TENTATIVE":
			e.Status = event.StatusTentative
		case "CANCELLED":
			e.Status = event.StatusCancelled
		default:
			e.Status = event.StatusConfirmed
		}
	}

	if t := comp.Props.Get("TRANSP"); t != nil && strings.EqualFold(t.Value, "TRANSPARENT") {
		e.Transparency = event.Transparent
	}

	if r := comp.Props.Get(goical.PropRecurrenceRule); r != nil {
		e.RRule = r.Value
		if err := ValidateRRule(start.Instant(), r.Value); err != nil {
			return nil, err
		}
	}

	for _, ex := range comp.Props.Values(goical.PropExceptionDates) {
		for _, part := range strings.Split(ex.Value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				e.ExDates = append(e.ExDates, part)
			}
		}
	}

	if rid := comp.Props.Get(goical.PropRecurrenceID); rid != nil {
		e.RecurrenceID = rid.Value
	}

	if org := comp.Props.Get(goical.PropOrganizer); org != nil {
		e.Organizer = &event.Organizer{
			CN:    org.Params.Get("CN"),
			Email: strings.TrimPrefix(org.Value, "mailto:"),
		}
	}

	for _, att := range comp.Props.Values(goical.PropAttendee) {
		a := event.Attendee{
			CN:    att.Params.Get("CN"),
			Email: strings.TrimPrefix(att.Value, "mailto:"),
		}
		switch strings.ToUpper(att.Params.Get("PARTSTAT")) {
		case "ACCEPTED":
			a.PartStat = event.Accepted
		case "DECLINED":
			a.PartStat = event.Declined
		case "TENTATIVE":
			a.PartStat = event.Tentative
		default:
			a.PartStat = event.NeedsAction
		}
		e.Attendees = append(e.Attendees, a)
	}

	if u := comp.Props.Get(goical.PropURL); u != nil {
		e.URL = u.Value
	}

	if lm := comp.Props.Get(goical.PropLastModified); lm != nil {
		if t, err := parseTimestamp(lm.Value); err == nil {
			e.Updated = t
		}
	} else if ds := comp.Props.Get(goical.PropDateTimeStamp); ds != nil {
		if t, err := parseTimestamp(ds.Value); err == nil {
			e.Updated = t
		}
	}

	if sq := comp.Props.Get(goical.PropSequence); sq != nil {
		if n, err := strconv.ParseUint(sq.Value, 10, 32); err == nil {
			e.Sequence = uint32(n)
		}
	}

	for _, alarm := range comp.Children {
		if alarm.Name != "VALARM" {
			continue
		}
		trig := alarm.Props.Get("TRIGGER")
		if trig == nil {
			continue
		}
		minutes, err := parseNegativeDurationMinutes(trig.Value)
		if err != nil {
			continue
		}
		e.Reminders = append(e.Reminders, event.Reminder{MinutesBefore: minutes})
	}

	e.CustomProperties = extractCustomProperties(data)

	return e, nil
}

func parseEventTime(p *goical.Prop) (event.EventTime, error) {
	if p.Params.Get("VALUE") == "DATE" || len(p.Value) == 8 {
		t, err := time.Parse("20060102", p.Value)
		if err != nil {
			return event.EventTime{}, err
		}
		return event.AllDayTime(t), nil
	}
	if tzid := p.Params.Get("TZID"); tzid != "" {
		t, err := time.ParseInLocation("20060102T150405", p.Value, time.UTC)
		if err != nil {
			return event.EventTime{}, err
		}
		return event.ZonedTime(tzid, t), nil
	}
	if strings.HasSuffix(p.Value, "Z") {
		t, err := time.Parse("20060102T150405Z", p.Value)
		if err != nil {
			return event.EventTime{}, err
		}
		return event.UtcTime(t), nil
	}
	t, err := time.ParseInLocation("20060102T150405", p.Value, time.UTC)
	if err != nil {
		return event.EventTime{}, err
	}
	return event.FloatingTime(t), nil
}

func parseTimestamp(s string) (time.Time, error) {
	if strings.HasSuffix(s, "Z") {
		return time.Parse("20060102T150405Z", s)
	}
	return time.ParseInLocation("20060102T150405", s, time.UTC)
}

// parseNegativeDurationMinutes parses a TRIGGER value of the form
// "-PT<n>M" (or "-PT<n>H", "-P<n>D") into whole minutes before the event.
// caldir only ever emits "-PTxM" but tolerates the other RFC 5545
// duration shapes on read.
func parseNegativeDurationMinutes(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("not a duration: %q", s)
	}
	s = s[1:]

	var days, hours, minutes int
	var inTime bool
	var num strings.Builder
	for _, r := range s {
		switch r {
		case 'T':
			inTime = true
			num.Reset()
		case 'D':
			days, _ = strconv.Atoi(num.String())
			num.Reset()
		case 'H':
			hours, _ = strconv.Atoi(num.String())
			num.Reset()
		case 'M':
			minutes, _ = strconv.Atoi(num.String())
			num.Reset()
		case 'S':
			num.Reset()
		default:
			num.WriteRune(r)
		}
	}
	_ = inTime
	total := days*24*60 + hours*60 + minutes
	if !neg {
		return 0, fmt.Errorf("expected a negative duration, got %q", s)
	}
	if total < 0 {
		total = 0
	}
	return uint32(total), nil
}

// extractCustomProperties recovers X-* properties in file order, which
// go-ical's map-keyed Props cannot preserve (see package doc).
func extractCustomProperties(data []byte) []event.CustomProp {
	lines := unfoldLines(data)

	var props []event.CustomProp
	depth := 0
	inAlarm := false
	for _, line := range lines {
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "BEGIN:VALARM"):
			inAlarm = true
			continue
		case strings.HasPrefix(upper, "END:VALARM"):
			inAlarm = false
			continue
		case strings.HasPrefix(upper, "BEGIN:"):
			depth++
			continue
		case strings.HasPrefix(upper, "END:"):
			depth--
			continue
		}
		if inAlarm || depth != 2 {
			continue
		}
		name, value, ok := splitProp(line)
		if !ok || !strings.HasPrefix(name, "X-") {
			continue
		}
		found := false
		for i := range props {
			if props[i].Name == name {
				props[i].Value = unescapeText(value)
				found = true
				break
			}
		}
		if !found {
			props = append(props, event.CustomProp{Name: name, Value: unescapeText(value)})
		}
	}
	return props
}
