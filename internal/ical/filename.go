package ical

import (
	"fmt"
	"strings"

	"github.com/caldirhq/caldir/internal/event"
)

const maxSlugLen = 60

// Slug lowercases summary, collapses runs of characters outside [a-z0-9] to
// a single '-', trims leading/trailing '-', truncates to 60 characters
// without splitting a run, and falls back to "untitled" when the result is
// empty.
func Slug(summary string) string {
	lower := strings.ToLower(summary)

	var b strings.Builder
	inRun := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('-')
			inRun = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "untitled"
	}
	if len(slug) > maxSlugLen {
		slug = truncateWithoutSplittingRun(slug, maxSlugLen)
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// truncateWithoutSplittingRun cuts s to at most n bytes without splitting a
// run of non-'-' characters: it backs up to the preceding '-' boundary
// rather than emitting a partial word.
func truncateWithoutSplittingRun(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && s[cut] != '-' && s[cut-1] != '-' {
		cut--
	}
	return strings.TrimRight(s[:cut], "-")
}

// BaseName computes the deterministic filename stem (without ".ics") for an
// event:
//
//   - recurring master:  _recurring__{slug}
//   - all-day event:     {YYYY-MM-DD}__{slug}
//   - timed event:       {YYYY-MM-DD}T{HHMM}__{slug}
//
// HHMM is the start's local wall-clock when Zoned/Floating, else UTC.
func BaseName(e *event.Event) string {
	slug := Slug(e.Summary)

	if e.IsRecurringMaster() {
		return fmt.Sprintf("_recurring__%s", slug)
	}

	start := e.Start
	switch start.Kind {
	case event.AllDay:
		return fmt.Sprintf("%s__%s", start.Date.Format("2006-01-02"), slug)
	case event.Utc:
		t := start.DateTime.UTC()
		return fmt.Sprintf("%sT%s__%s", t.Format("2006-01-02"), t.Format("1504"), slug)
	default: // Floating, Zoned: local wall-clock as written
		t := start.DateTime
		return fmt.Sprintf("%sT%s__%s", t.Format("2006-01-02"), t.Format("1504"), slug)
	}
}

// AssignFilename resolves collisions against existing: the base name
// with ".ics" appended, or "-2.ics", "-3.ics", ... for the first suffix not
// already used by a file with a *different* identity. taken maps an
// existing filename (without directory) to the identity it holds.
func AssignFilename(e *event.Event, taken map[string]event.Identity) string {
	base := BaseName(e)
	id := event.IdentityOf(e)

	name := base + ".ics"
	if owner, ok := taken[name]; !ok || owner == id {
		return name
	}
	for i := 2; ; i++ {
		name = fmt.Sprintf("%s-%d.ics", base, i)
		if owner, ok := taken[name]; !ok || owner == id {
			return name
		}
	}
}
