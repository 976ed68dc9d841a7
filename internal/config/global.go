// Package config loads caldir's two TOML configuration surfaces: the
// global config.toml (read-only to the core) and each calendar's own
// .caldir/config.toml. Both are decoded with github.com/BurntSushi/toml,
// the way the teacher's internal/config package centralizes all
// configuration loading behind typed structs and a single Load-style
// constructor per surface.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Global is the top-level config.toml.
type Global struct {
	CalendarDir     string    `toml:"calendar_dir"`
	DefaultCalendar string    `toml:"default_calendar"`
	ICS             ICSConfig `toml:"ics"`
}

func defaultCalendarDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "calendar"
	}
	return filepath.Join(home, "calendar")
}

// LoadGlobal reads the global config.toml at path, applying caldir's
// defaults (calendar_dir = "~/calendar") for anything unset. A missing
// file is not an error: callers get an all-defaults Global.
func LoadGlobal(path string) (*Global, error) {
	g := &Global{CalendarDir: defaultCalendarDir(), ICS: DefaultICSConfig()}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return g, nil
	}

	if _, err := toml.DecodeFile(path, g); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if g.CalendarDir == "" {
		g.CalendarDir = defaultCalendarDir()
	}
	return g, nil
}
