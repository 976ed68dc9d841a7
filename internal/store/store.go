// Package store implements the per-calendar directory: the
// .caldir/config.toml, the .caldir/state/known_event_ids file, and one
// .ics file per event. It is the only package that mutates the calendar
// directory; providers never touch it.
//
// Grounded on the teacher's internal/storage/filestore package: the same
// temp-file-then-rename atomicity (helpers.go: writeJSON), and the same
// "scan a directory, parse each entry, skip and report failures without
// aborting the batch" shape (objects.go: listObjectsFiltered), adapted
// here from JSON blobs under a SQL-shaped store to .ics files under a
// flat, human-browsable directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caldirhq/caldir/internal/config"
	"github.com/caldirhq/caldir/internal/event"
	"github.com/caldirhq/caldir/internal/ical"
)

const (
	caldirDirName   = ".caldir"
	configFileName  = "config.toml"
	stateDirName    = "state"
	knownFileName   = "known_event_ids"
)

// LocalEvent is an event paired with where it lives on disk and when that
// file was last modified: the authoritative signal of a local-side edit.
type LocalEvent struct {
	Event    *event.Event
	Path     string
	FileMTime time.Time
}

// ParseFailure records an .ics file that could not be parsed. The file is
// excluded from the indexed map but never auto-deleted.
type ParseFailure struct {
	Path string
	Err  error
}

// DuplicateAdvisory flags two differently-identified events that are
// plausibly the same appointment written under two provider ID schemes.
// It is informational only; see duplicates.go.
type DuplicateAdvisory struct {
	A, B       event.Identity
	Similarity float32
}

// LoadResult is everything Load reads from a calendar directory.
type LoadResult struct {
	Config  *config.Calendar
	Events  map[event.Identity]LocalEvent
	Known   map[event.Identity]bool
	Parse   []ParseFailure
	Advisories []DuplicateAdvisory
}

// Store is a handle on one calendar directory.
type Store struct {
	dir string

	mu    sync.Mutex
	index map[event.Identity]string // identity -> current filename, populated by Load
}

// Open returns a handle on the calendar directory at dir. It does not
// touch the filesystem; call Load to populate the in-memory index.
func Open(dir string) *Store {
	return &Store{dir: dir, index: make(map[event.Identity]string)}
}

func (s *Store) configPath() string { return filepath.Join(s.dir, caldirDirName, configFileName) }
func (s *Store) stateDir() string   { return filepath.Join(s.dir, caldirDirName, stateDirName) }
func (s *Store) knownPath() string  { return filepath.Join(s.stateDir(), knownFileName) }

// Load scans the calendar directory: config, known_event_ids, and every
// top-level .ics file (never descending into .caldir/). A per-file parse
// failure is recorded and the file excluded from the index; it does not
// abort the load.
func (s *Store) Load() (*LoadResult, error) {
	cfg, err := config.LoadCalendar(s.configPath())
	if err != nil {
		return nil, fmt.Errorf("store: load config: %w", err)
	}

	known, err := readKnown(s.knownPath())
	if err != nil {
		return nil, fmt.Errorf("store: load known_event_ids: %w", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: read dir %s: %w", s.dir, err)
	}

	events := make(map[event.Identity]LocalEvent)
	index := make(map[event.Identity]string)
	var failures []ParseFailure

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".ics" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, ParseFailure{Path: path, Err: err})
			continue
		}
		e, err := ical.Parse(data)
		if err != nil {
			failures = append(failures, ParseFailure{Path: path, Err: err})
			continue
		}
		info, err := entry.Info()
		if err != nil {
			failures = append(failures, ParseFailure{Path: path, Err: err})
			continue
		}

		id := event.IdentityOf(e)
		events[id] = LocalEvent{Event: e, Path: path, FileMTime: info.ModTime()}
		index[id] = entry.Name()
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	return &LoadResult{
		Config:     cfg,
		Events:     events,
		Known:      known,
		Parse:      failures,
		Advisories: DetectPossibleDuplicates(events),
	}, nil
}

// Write assigns the event's deterministic filename (renaming the existing
// file for this identity if the computed name changed), writes it
// atomically via temp-file+rename, and returns the final path.
func (s *Store) Write(e *event.Event) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := event.IdentityOf(e)
	taken := make(map[string]event.Identity, len(s.index))
	for existingID, name := range s.index {
		if existingID != id {
			taken[name] = existingID
		}
	}

	name := ical.AssignFilename(e, taken)
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, ical.Emit(e), 0o644); err != nil {
		return "", fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("store: rename %s: %w", tmp, err)
	}

	if oldName, ok := s.index[id]; ok && oldName != name {
		oldPath := filepath.Join(s.dir, oldName)
		if oldPath != path {
			_ = os.Remove(oldPath)
		}
	}
	s.index[id] = name

	return path, nil
}

// Delete removes the .ics file for identity, if any, and drops it from
// the in-memory index.
func (s *Store) Delete(id event.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, ok := s.index[id]
	if !ok {
		return nil
	}
	path := filepath.Join(s.dir, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete %s: %w", path, err)
	}
	delete(s.index, id)
	return nil
}

// ReplaceKnown atomically rewrites known_event_ids from ids: sorted,
// deduplicated, newline-terminated.
func (s *Store) ReplaceKnown(ids map[event.Identity]bool) error {
	if err := os.MkdirAll(s.stateDir(), 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", s.stateDir(), err)
	}
	return writeKnown(s.knownPath(), ids)
}
