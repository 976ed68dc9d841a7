package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunOneLocalOnlyIsNoOp(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".caldir"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".caldir", "config.toml"), []byte("name = \"Personal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := RunOne(context.Background(), Target{Name: "personal", Dir: dir}, false)
	if res.Err != nil {
		t.Fatalf("expected no error for a local-only calendar, got %v", res.Err)
	}
	if len(res.Diff.ToPush) != 0 || len(res.Diff.ToPull) != 0 {
		t.Errorf("expected an empty diff for a local-only calendar, got %+v", res.Diff)
	}
}

func TestRunOneFirstPullFromRemote(t *testing.T) {
	fakeProvider(t, "fake4", `{"ok":true,"data":[{"uid":"a@ex","start":{"kind":"Utc","datetime":"2025-03-20T15:00:00Z"},"end":{"kind":"Utc","datetime":"2025-03-20T16:00:00Z"},"summary":"Standup"}]}`)

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".caldir"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := "name = \"Work\"\n[remote]\nprovider = \"fake4\"\nfake4_account = \"me@example.com\"\nfake4_calendar_id = \"primary\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".caldir", "config.toml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	res := RunOne(context.Background(), Target{Name: "work", Dir: dir}, false)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Diff.ToPull) != 1 {
		t.Fatalf("expected one pulled create, got %+v", res.Diff.ToPull)
	}
	if res.Pull.HasFailures() {
		t.Fatalf("pull failures: %+v", res.Pull.Results)
	}

	if _, err := os.Stat(filepath.Join(dir, "2025-03-20T1500__standup.ics")); err != nil {
		t.Errorf("expected the pulled event to be written to disk: %v", err)
	}

	known, err := os.ReadFile(filepath.Join(dir, ".caldir", "state", "known_event_ids"))
	if err != nil {
		t.Fatalf("read known_event_ids: %v", err)
	}
	if string(known) != "a@ex\n" {
		t.Errorf("known_event_ids = %q, want %q", string(known), "a@ex\n")
	}
}

func TestRunAllRunsEachTargetIndependently(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	for _, dir := range []string{dir1, dir2} {
		if err := os.MkdirAll(filepath.Join(dir, ".caldir"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".caldir", "config.toml"), []byte("name = \"Cal\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results := RunAll(context.Background(), []Target{{Name: "one", Dir: dir1}, {Name: "two", Dir: dir2}}, false)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("calendar %s: unexpected error %v", r.Name, r.Err)
		}
	}
}
