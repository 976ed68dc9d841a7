package event

// ContentEqual reports whether a and b are "content-equal": equal on
// every field except Updated, Sequence, and CustomProperties. This is
// the comparator the diff engine uses to decide whether a change is
// real, so that DTSTAMP/LAST-MODIFIED churn and provider-added X-*
// fields never produce spurious diffs.
func ContentEqual(a, b *Event) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.UID != b.UID || a.RecurrenceID != b.RecurrenceID {
		return false
	}
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		return false
	}
	if a.Summary != b.Summary || a.Description != b.Description || a.Location != b.Location {
		return false
	}
	if a.Status != b.Status || a.Transparency != b.Transparency {
		return false
	}
	if a.RRule != b.RRule || !stringSliceEqual(a.ExDates, b.ExDates) {
		return false
	}
	if !organizerEqual(a.Organizer, b.Organizer) {
		return false
	}
	if !attendeesEqual(a.Attendees, b.Attendees) {
		return false
	}
	if !remindersEqual(a.Reminders, b.Reminders) {
		return false
	}
	if a.URL != b.URL {
		return false
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func organizerEqual(a, b *Organizer) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func attendeesEqual(a, b []Attendee) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func remindersEqual(a, b []Reminder) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
