// Command caldir-sync drives the sync core over one or more calendar
// directories. It is a thin entrypoint: configuration loading, calendar
// discovery, and the actual pull/push work all live in the internal
// packages; this binary only wires them together and reports results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caldirhq/caldir/internal/config"
	"github.com/caldirhq/caldir/internal/ical"
	"github.com/caldirhq/caldir/internal/logging"
	"github.com/caldirhq/caldir/internal/sync"
)

func main() {
	var (
		configPath string
		calendar   string
		force      bool
		logLevel   string
	)
	flag.StringVar(&configPath, "config", defaultGlobalConfigPath(), "path to the global config.toml")
	flag.StringVar(&calendar, "calendar", "", "sync only this calendar (default: all calendars under calendar_dir)")
	flag.BoolVar(&force, "force", false, "bypass the bulk-delete safety rail")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(logLevel)

	global, err := config.LoadGlobal(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load global config")
	}
	ical.SetProdID(global.ICS.BuildProdID())

	targets, err := discoverTargets(global, calendar)
	if err != nil {
		logger.Fatal().Err(err).Msg("discover calendars")
	}
	if len(targets) == 0 {
		logger.Warn().Str("calendar_dir", global.CalendarDir).Msg("no calendars found")
		return
	}

	results := sync.RunAll(context.Background(), targets, force)

	exitCode := 0
	for _, r := range results {
		l := logging.ForCalendar(logger, r.Name)
		if r.Err != nil {
			l.Error().Err(r.Err).Msg("sync failed")
			exitCode = 1
			continue
		}
		l.Info().
			Int("pulled", len(r.Diff.ToPull)).
			Int("pushed", len(r.Diff.ToPush)).
			Msg("sync complete")
		for _, res := range r.Pull.Results {
			if res.Failed() {
				l.Warn().Str("identity", res.Identity.String()).Str("error", res.Message).Msg("pull item failed")
				exitCode = 1
			}
		}
		for _, res := range r.Push.Results {
			if res.Failed() {
				l.Warn().Str("identity", res.Identity.String()).Str("error", res.Message).Msg("push item failed")
				exitCode = 1
			}
		}
	}
	os.Exit(exitCode)
}

func defaultGlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "caldir", "config.toml")
}

// discoverTargets lists calendar directories under global.CalendarDir. If
// calendar is non-empty, only that one is returned.
func discoverTargets(global *config.Global, calendar string) ([]sync.Target, error) {
	if calendar != "" {
		return []sync.Target{{Name: calendar, Dir: filepath.Join(global.CalendarDir, calendar)}}, nil
	}

	entries, err := os.ReadDir(global.CalendarDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", global.CalendarDir, err)
	}

	var targets []sync.Target
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(global.CalendarDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ".caldir", "config.toml")); err != nil {
			continue
		}
		targets = append(targets, sync.Target{Name: entry.Name(), Dir: dir})
	}
	return targets, nil
}
