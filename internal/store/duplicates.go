package store

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/caldirhq/caldir/internal/event"
)

// similarityThreshold is the Jaro-Winkler cutoff above which two
// differently-identified events are flagged as a possible duplicate.
// This is advisory only; caldir never merges or deletes on its own
// judgment here.
const similarityThreshold = 0.92

// DetectPossibleDuplicates compares every pair of events starting at the
// same instant whose identities differ, scoring title similarity with
// Jaro-Winkler (grounded on JonyBepary-son-of-anthon's pkg/skills/monitor
// use of github.com/hbollon/go-edlib for near-duplicate text detection).
// Events are O(n^2) here; calendar directories are small enough in
// practice that this is not worth indexing.
func DetectPossibleDuplicates(events map[event.Identity]LocalEvent) []DuplicateAdvisory {
	ids := make([]event.Identity, 0, len(events))
	for id := range events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var advisories []DuplicateAdvisory
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := events[ids[i]], events[ids[j]]
			if !a.Event.Start.Instant().Equal(b.Event.Start.Instant()) {
				continue
			}
			sim, err := edlib.StringsSimilarity(a.Event.Summary, b.Event.Summary, edlib.JaroWinkler)
			if err != nil || sim < similarityThreshold {
				continue
			}
			advisories = append(advisories, DuplicateAdvisory{A: ids[i], B: ids[j], Similarity: sim})
		}
	}
	return advisories
}
