package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/caldirhq/caldir/internal/event"
)

// ListCalendars runs list_calendars for account, returning the remote's
// calendars and the [remote] config fields each should be written under.
func (c *Client) ListCalendars(ctx context.Context, account string) ([]CalendarListing, error) {
	data, err := c.Call(ctx, "list_calendars", map[string]any{"account": account})
	if err != nil {
		return nil, err
	}
	var listings []CalendarListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, &CallError{Kind: Protocol, Message: fmt.Sprintf("list_calendars: decode: %v", err)}
	}
	return listings, nil
}

// ListEvents runs list_events for the given account/calendar over
// [from, to], inclusive of events intersecting the window.
func (c *Client) ListEvents(ctx context.Context, account, calendarID string, from, to time.Time) ([]*event.Event, error) {
	params := map[string]any{
		"account":     account,
		"calendar_id": calendarID,
		"from":        from.UTC().Format(time.RFC3339),
		"to":          to.UTC().Format(time.RFC3339),
	}
	data, err := c.Call(ctx, "list_events", params)
	if err != nil {
		return nil, err
	}
	var wire []WireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &CallError{Kind: Protocol, Message: fmt.Sprintf("list_events: decode: %v", err)}
	}
	events := make([]*event.Event, 0, len(wire))
	for _, w := range wire {
		e, err := FromWireEvent(w)
		if err != nil {
			return nil, &CallError{Kind: Protocol, Message: fmt.Sprintf("list_events: event %s: %v", w.UID, err)}
		}
		events = append(events, e)
	}
	return events, nil
}

// CreateEvent runs create_event, returning the server-canonicalized event,
// which may contain server-added fields.
func (c *Client) CreateEvent(ctx context.Context, account, calendarID string, e *event.Event) (*event.Event, error) {
	return c.upsert(ctx, "create_event", account, calendarID, e)
}

// UpdateEvent runs update_event, returning the server-canonicalized event.
func (c *Client) UpdateEvent(ctx context.Context, account, calendarID string, e *event.Event) (*event.Event, error) {
	return c.upsert(ctx, "update_event", account, calendarID, e)
}

func (c *Client) upsert(ctx context.Context, command, account, calendarID string, e *event.Event) (*event.Event, error) {
	params := map[string]any{
		"account":     account,
		"calendar_id": calendarID,
		"event":       ToWireEvent(e),
	}
	data, err := c.Call(ctx, command, params)
	if err != nil {
		return nil, err
	}
	var w WireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &CallError{Kind: Protocol, Message: fmt.Sprintf("%s: decode: %v", command, err)}
	}
	return FromWireEvent(w)
}

// DeleteEvent runs delete_event. A NotFound response is treated as
// success: the remote is already deleted.
func (c *Client) DeleteEvent(ctx context.Context, account, calendarID string, id event.Identity) error {
	params := map[string]any{
		"account":       account,
		"calendar_id":   calendarID,
		"identity":      id.String(),
		"uid":           id.UID,
		"recurrence_id": id.RecurrenceID,
	}
	_, err := c.Call(ctx, "delete_event", params)
	if err != nil {
		var ce *CallError
		if asCallError(err, &ce) && ce.Kind == NotFound {
			return nil
		}
		return err
	}
	return nil
}
