// Command caldir-provider-caldav is the reference generic CalDAV provider:
// any server implementing RFC 4791 (iCloud, Fastmail, Radicale, Baïkal,
// ...), as opposed to the Google REST provider, which speaks a different
// protocol entirely and has no grounded library in this tree (see
// DESIGN.md).
//
// It speaks the subprocess wire protocol: one JSON request read from
// stdin, one JSON response written to stdout, per invocation, using the
// same event JSON shape (internal/provider.WireEvent) the core parses on
// the other end of the pipe. Credentials persist under
// ~/.config/caldir/providers/caldav/ between invocations.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/caldirhq/caldir/internal/ical"
	"github.com/caldirhq/caldir/internal/provider"
)

type request struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

type response struct {
	OK    bool          `json:"ok"`
	Data  any           `json:"data,omitempty"`
	Error *errorPayload `json:"error,omitempty"`
}

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeError("Protocol", fmt.Sprintf("decode request: %v", err))
		os.Exit(1)
	}

	ctx := context.Background()
	data, err := dispatch(ctx, req)
	if err != nil {
		writeError(errorKind(err), err.Error())
		os.Exit(0)
	}
	writeOK(data)
}

func dispatch(ctx context.Context, req request) (any, error) {
	switch req.Command {
	case "auth_init":
		return handleAuthInit()
	case "auth_submit":
		return handleAuthSubmit(req.Params)
	case "list_calendars":
		return handleListCalendars(ctx, req.Params)
	case "list_events":
		return handleListEvents(ctx, req.Params)
	case "create_event", "update_event":
		return handleUpsertEvent(ctx, req.Params)
	case "delete_event":
		return handleDeleteEvent(ctx, req.Params)
	default:
		return nil, &providerError{kind: "Protocol", message: fmt.Sprintf("unknown command %q", req.Command)}
	}
}

type providerError struct {
	kind    string
	message string
}

func (e *providerError) Error() string { return e.message }

func errorKind(err error) string {
	if pe, ok := err.(*providerError); ok {
		return pe.kind
	}
	return "Other"
}

func writeOK(data any) {
	json.NewEncoder(os.Stdout).Encode(response{OK: true, Data: data})
}

func writeError(kind, message string) {
	json.NewEncoder(os.Stdout).Encode(response{OK: false, Error: &errorPayload{Kind: kind, Message: message}})
}

// credentials is what auth_submit persists and every subsequent command
// reads back via {account}.
type credentials struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func credentialsPath(account string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "caldir", "providers", "caldav", account+".json"), nil
}

func loadCredentials(account string) (*credentials, error) {
	path, err := credentialsPath(account)
	if err != nil {
		return nil, &providerError{kind: "Other", message: err.Error()}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &providerError{kind: "AuthRequired", message: fmt.Sprintf("no saved credentials for account %q", account)}
	}
	var c credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &providerError{kind: "Other", message: err.Error()}
	}
	return &c, nil
}

func saveCredentials(account string, c credentials) error {
	path, err := credentialsPath(account)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// handleAuthInit starts the two-phase auth machine: a generic CalDAV
// server has no OAuth flow, so this provider's first (and only) step
// asks for the server URL and basic-auth credentials.
func handleAuthInit() (any, error) {
	return provider.AuthStep{
		Kind: provider.CredentialFields,
		Fields: []provider.CredentialField{
			{Name: "base_url", Label: "CalDAV server URL", Secret: false},
			{Name: "username", Label: "Username", Secret: false},
			{Name: "password", Label: "Password or app password", Secret: true},
		},
	}, nil
}

func handleAuthSubmit(params map[string]any) (any, error) {
	c := credentials{
		BaseURL:  stringParam(params, "base_url"),
		Username: stringParam(params, "username"),
		Password: stringParam(params, "password"),
	}
	if c.BaseURL == "" || c.Username == "" {
		return nil, &providerError{kind: "Other", message: "base_url and username are required"}
	}

	account := c.Username + "@" + c.BaseURL
	client, err := webdav.NewClient(webdav.HTTPClientWithBasicAuth(nil, c.Username, c.Password), c.BaseURL)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}
	if _, err := client.FindCurrentUserPrincipal(); err != nil {
		return nil, &providerError{kind: "AuthRequired", message: fmt.Sprintf("credential check failed: %v", err)}
	}

	if err := saveCredentials(account, c); err != nil {
		return nil, &providerError{kind: "Other", message: err.Error()}
	}
	return provider.AuthStep{Kind: provider.Done, Accounts: []string{account}}, nil
}

// newCalDAVClient builds a caldav.Client using go-webdav's own basic-auth
// wrapper (the same helper switchcal's CalDAV provider uses for
// non-OAuth accounts) rather than hand-rolling an http.RoundTripper.
func newCalDAVClient(c credentials) (*caldav.Client, error) {
	hc := webdav.HTTPClientWithBasicAuth(nil, c.Username, c.Password)
	return caldav.NewClient(hc, c.BaseURL)
}

func handleListCalendars(ctx context.Context, params map[string]any) (any, error) {
	creds, err := loadCredentials(stringParam(params, "account"))
	if err != nil {
		return nil, err
	}
	client, err := newCalDAVClient(*creds)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}

	principal, err := client.FindCurrentUserPrincipal()
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}
	calendars, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}

	listings := make([]provider.CalendarListing, 0, len(calendars))
	for _, cal := range calendars {
		listings = append(listings, provider.CalendarListing{
			Name:        cal.Name,
			ConfigPatch: map[string]string{"calendar_id": cal.Path},
		})
	}
	return listings, nil
}

func handleListEvents(ctx context.Context, params map[string]any) (any, error) {
	creds, err := loadCredentials(stringParam(params, "account"))
	if err != nil {
		return nil, err
	}
	client, err := newCalDAVClient(*creds)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}

	from, _ := time.Parse(time.RFC3339, stringParam(params, "from"))
	to, _ := time.Parse(time.RFC3339, stringParam(params, "to"))
	calendarPath := stringParam(params, "calendar_id")

	objs, err := client.QueryCalendar(ctx, calendarPath, &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{Name: "VCALENDAR", AllComps: true, AllProps: true},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT", Start: from, End: to}},
		},
	})
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}

	wireEvents := make([]provider.WireEvent, 0, len(objs))
	for _, obj := range objs {
		if obj.Data == nil {
			continue
		}
		var buf bytes.Buffer
		if err := goical.NewEncoder(&buf).Encode(obj.Data); err != nil {
			continue
		}
		e, err := ical.Parse(buf.Bytes())
		if err != nil {
			continue // malformed remote object; skip rather than fail the whole window
		}
		wireEvents = append(wireEvents, provider.ToWireEvent(e))
	}
	return wireEvents, nil
}

func handleUpsertEvent(ctx context.Context, params map[string]any) (any, error) {
	creds, err := loadCredentials(stringParam(params, "account"))
	if err != nil {
		return nil, err
	}
	client, err := newCalDAVClient(*creds)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}

	raw, err := json.Marshal(params["event"])
	if err != nil {
		return nil, &providerError{kind: "Other", message: fmt.Sprintf("re-encode event params: %v", err)}
	}
	var w provider.WireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &providerError{kind: "Other", message: fmt.Sprintf("decode event: %v", err)}
	}
	e, err := provider.FromWireEvent(w)
	if err != nil {
		return nil, &providerError{kind: "Other", message: fmt.Sprintf("decode event: %v", err)}
	}

	cal, err := goical.NewDecoder(bytes.NewReader(ical.Emit(e))).Decode()
	if err != nil {
		return nil, &providerError{kind: "Other", message: fmt.Sprintf("encode event: %v", err)}
	}

	calendarPath := stringParam(params, "calendar_id")
	path := strings.TrimSuffix(calendarPath, "/") + "/" + e.UID + ".ics"

	if _, err := client.PutCalendarObject(ctx, path, cal); err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}
	return provider.ToWireEvent(e), nil
}

func handleDeleteEvent(ctx context.Context, params map[string]any) (any, error) {
	creds, err := loadCredentials(stringParam(params, "account"))
	if err != nil {
		return nil, err
	}

	calendarPath := stringParam(params, "calendar_id")
	uid := stringParam(params, "uid")
	path := strings.TrimSuffix(calendarPath, "/") + "/" + uid + ".ics"

	// go-webdav's exported Client surface covers discovery, query, get,
	// and put but has no DELETE method; CalDAV deletion is a plain HTTP
	// DELETE against the resource per RFC 4791, so this issues one
	// directly rather than reaching past the library's exported API. See
	// DESIGN.md.
	url := strings.TrimSuffix(creds.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, &providerError{kind: "Other", message: err.Error()}
	}
	req.SetBasicAuth(creds.Username, creds.Password)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &providerError{kind: "Network", message: err.Error()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, &providerError{kind: "NotFound", message: "event not found"}
	}
	if resp.StatusCode >= 300 {
		return nil, &providerError{kind: "Network", message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return map[string]any{"ok": true}, nil
}

func stringParam(params map[string]any, name string) string {
	if params == nil {
		return ""
	}
	s, _ := params[name].(string)
	return s
}
