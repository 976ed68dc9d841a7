package ical

import (
	"fmt"
	"time"

	rrulego "github.com/teambition/rrule-go"
)

// ValidateRRule parses an RRULE value just to catch a malformed rule at
// parse time. caldir treats rrule as an opaque string for diffing and
// never expands it into occurrences itself; expansion is a provider/
// server concern (RFC 4791 REPORT, Google's singleEvents=true, etc).
func ValidateRRule(start time.Time, rule string) error {
	if rule == "" {
		return nil
	}
	spec := "DTSTART:" + start.UTC().Format("20060102T150405Z") + "\nRRULE:" + rule
	if _, err := rrulego.StrToRRule(spec); err != nil {
		return fmt.Errorf("invalid RRULE %q: %w", rule, err)
	}
	return nil
}
