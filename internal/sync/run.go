package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caldirhq/caldir/internal/diff"
	"github.com/caldirhq/caldir/internal/event"
	"github.com/caldirhq/caldir/internal/provider"
	"github.com/caldirhq/caldir/internal/store"
)

// Target is one calendar directory to sync.
type Target struct {
	Name string
	Dir  string
}

// CalendarResult is everything RunAll produced for one calendar.
type CalendarResult struct {
	Name  string
	Diff  diff.CalendarDiff
	Pull  BatchResult
	Push  BatchResult
	Err   error
}

// maxConcurrentCalendars caps how many calendars RunAll drives at once;
// per-calendar work is provider-subprocess bound, not CPU bound, so a
// modest fan-out is enough to hide latency without overwhelming a
// provider's rate limits.
const maxConcurrentCalendars = 4

// RunAll syncs every target concurrently. Per-calendar operations are
// independent and there's no ordering guarantee across calendars. One
// calendar's failure is recorded on its own CalendarResult and never
// cancels the others; only ctx cancellation does that.
//
// Grounded on JonyBepary-son-of-anthon's pkg/skills/monitor concurrent
// feed-fetch fan-out: golang.org/x/sync/errgroup with a concurrency
// limit and a mutex-guarded results slice, adapted here so a single
// goroutine's error never aborts the group. Each goroutine always
// returns nil; failures are data, not errgroup errors.
func RunAll(ctx context.Context, targets []Target, force bool) []CalendarResult {
	results := make([]CalendarResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCalendars)

	var mu sync.Mutex
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			res := RunOne(gctx, target, force)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// RunOne syncs a single calendar: load, fetch, diff, pull, push, persist
// known_event_ids.
func RunOne(ctx context.Context, target Target, force bool) CalendarResult {
	result := CalendarResult{Name: target.Name}

	s := store.Open(target.Dir)
	loaded, err := s.Load()
	if err != nil {
		result.Err = fmt.Errorf("load %s: %w", target.Name, err)
		return result
	}
	if loaded.Config.IsLocalOnly() {
		return result
	}

	account := loaded.Config.Remote.ProviderParams()["account"]
	calendarID := loaded.Config.Remote.ProviderParams()["calendar_id"]
	client := provider.New(loaded.Config.Remote.Provider)

	window := diff.DefaultWindow(time.Now())
	remote, err := client.ListEvents(ctx, account, calendarID, window.From, window.To)
	if err != nil {
		result.Err = fmt.Errorf("list_events %s: %w", target.Name, err)
		return result
	}

	d := diff.Compute(loaded.Events, remote, loaded.Known, window)
	result.Diff = d

	known := make(map[event.Identity]bool, len(loaded.Known))
	for id := range loaded.Known {
		known[id] = true
	}

	result.Pull = (&Applier{Store: s, Client: client, Account: account, CalendarID: calendarID}).Pull(ctx, d.ToPull, known)
	if err := s.ReplaceKnown(known); err != nil {
		result.Err = fmt.Errorf("persist known_event_ids after pull for %s: %w", target.Name, err)
		return result
	}

	push, err := (&Applier{Store: s, Client: client, Account: account, CalendarID: calendarID}).
		Push(ctx, d.ToPush, known, len(loaded.Events) == 0, force)
	result.Push = push
	if err != nil {
		result.Err = fmt.Errorf("push %s: %w", target.Name, err)
		return result
	}

	if err := s.ReplaceKnown(known); err != nil {
		result.Err = fmt.Errorf("persist known_event_ids after push for %s: %w", target.Name, err)
	}
	return result
}
