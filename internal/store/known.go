package store

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/caldirhq/caldir/internal/event"
)

// readKnown loads known_event_ids: one serialized identity per line. A
// missing file means no identity has ever been synced and is not an
// error.
func readKnown(path string) (map[event.Identity]bool, error) {
	known := make(map[event.Identity]bool)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return known, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		known[event.ParseIdentity(line)] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return known, nil
}

// writeKnown atomically rewrites known_event_ids, sorted ascending by
// serialized identity, LF-terminated, no trailing blank line. The file
// must diff cleanly under version control.
func writeKnown(path string, ids map[event.Identity]bool) error {
	lines := make([]string, 0, len(ids))
	for id := range ids {
		lines = append(lines, id.String())
	}
	sort.Strings(lines)

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("write %s: %w", tmp, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
