package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Remote is the optional [remote] section of a per-calendar config.toml.
// Absence makes the calendar local-only (sync is a no-op). Provider-
// specific fields are kept as a raw prefixed map so any `caldir-provider-*`
// binary can define its own `{prefix}_*` fields without this package
// knowing about them.
type Remote struct {
	Provider string            `toml:"provider"`
	Fields   map[string]string `toml:"-"`
}

// Calendar is one calendar directory's .caldir/config.toml.
type Calendar struct {
	Name   string  `toml:"name"`
	Color  string  `toml:"color"`
	Remote *Remote `toml:"remote"`
}

// IsLocalOnly reports whether the calendar has no [remote] section, in
// which case sync is a no-op.
func (c *Calendar) IsLocalOnly() bool {
	return c.Remote == nil
}

// ProviderParams returns the params object to send a provider subprocess:
// every `{prefix}_*` field under [remote] with the prefix stripped.
func (r *Remote) ProviderParams() map[string]string {
	out := make(map[string]string, len(r.Fields))
	prefix := r.Provider + "_"
	for k, v := range r.Fields {
		if strings.HasPrefix(k, prefix) {
			out[strings.TrimPrefix(k, prefix)] = v
			continue
		}
		out[k] = v
	}
	return out
}

// LoadCalendar reads a calendar's config.toml. Because the [remote]
// section carries a provider-defined field set, it is decoded twice: once
// into the typed Calendar (for name/color/provider), once into a raw
// map so unknown `{prefix}_*` keys survive.
func LoadCalendar(path string) (*Calendar, error) {
	var c Calendar
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if c.Remote != nil {
		var raw struct {
			Remote map[string]string `toml:"remote"`
		}
		if _, err := toml.DecodeFile(path, &raw); err != nil {
			return nil, fmt.Errorf("config: decode remote fields %s: %w", path, err)
		}
		fields := make(map[string]string, len(raw.Remote))
		for k, v := range raw.Remote {
			if k == "provider" {
				continue
			}
			fields[k] = v
		}
		c.Remote.Fields = fields
	}

	return &c, nil
}

// WriteCalendar atomically writes a calendar's config.toml (temp file then
// rename), matching the atomicity guarantee the rest of the store gives
// every other file under the calendar directory.
func WriteCalendar(path string, c *Calendar) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", tmp, err)
	}

	enc := toml.NewEncoder(f)
	if err := enc.Encode(calendarDoc(c)); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("config: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("config: rename %s: %w", tmp, err)
	}
	return nil
}

// calendarDoc flattens a Calendar back into the shape BurntSushi/toml
// will encode as [remote] with provider-prefixed keys alongside provider.
func calendarDoc(c *Calendar) map[string]any {
	doc := map[string]any{"name": c.Name}
	if c.Color != "" {
		doc["color"] = c.Color
	}
	if c.Remote != nil {
		remote := map[string]string{"provider": c.Remote.Provider}
		for k, v := range c.Remote.Fields {
			remote[k] = v
		}
		doc["remote"] = remote
	}
	return doc
}
