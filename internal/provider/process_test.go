package provider

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/caldirhq/caldir/internal/event"
)

// fakeProvider installs a shell script named caldir-provider-<name> on
// PATH that echoes body to stdout regardless of its input, and returns a
// cleanup-restored PATH.
func fakeProvider(t *testing.T, name, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake provider script requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "caldir-provider-"+name)
	contents := "#!/bin/sh\ncat <<'EOF'\n" + body + "\nEOF\n"
	if err := os.WriteFile(script, []byte(contents), 0o755); err != nil {
		t.Fatal(err)
	}

	oldPath := os.Getenv("PATH")
	os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath)
	t.Cleanup(func() { os.Setenv("PATH", oldPath) })
}

func TestClientCallSuccess(t *testing.T) {
	fakeProvider(t, "fake", `{"ok":true,"data":{"hello":"world"}}`)

	c := New("fake")
	data, err := c.Call(context.Background(), "list_calendars", map[string]any{"account": "a"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(data) != `{"hello":"world"}` {
		t.Errorf("data = %s", data)
	}
}

func TestClientCallProviderError(t *testing.T) {
	fakeProvider(t, "fake", `{"ok":false,"error":{"kind":"NotFound","message":"no such event"}}`)

	c := New("fake")
	_, err := c.Call(context.Background(), "delete_event", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var ce *CallError
	if !asCallError(err, &ce) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if ce.Kind != NotFound {
		t.Errorf("Kind = %v, want NotFound", ce.Kind)
	}
}

func TestClientCallMissingBinary(t *testing.T) {
	c := New("does-not-exist-xyz")
	_, err := c.Call(context.Background(), "list_calendars", nil)
	if err == nil {
		t.Fatal("expected an error for a missing provider binary")
	}
	var ce *CallError
	if !asCallError(err, &ce) || ce.Kind != Protocol {
		t.Errorf("expected a Protocol CallError, got %v", err)
	}
}

func TestDeleteEventTreatsNotFoundAsSuccess(t *testing.T) {
	fakeProvider(t, "fake", `{"ok":false,"error":{"kind":"NotFound","message":"gone"}}`)

	c := New("fake")
	id := event.Identity{UID: "a@ex"}
	if err := c.DeleteEvent(context.Background(), "acc", "cal", id); err != nil {
		t.Errorf("DeleteEvent with NotFound should succeed, got %v", err)
	}
}
