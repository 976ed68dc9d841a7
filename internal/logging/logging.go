package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds caldir's base logger: leveled, timestamped, one JSON object
// per line on stdout.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
	return logger
}

// ForCalendar returns a child logger stamped with the calendar name, so
// every line a single calendar's sync run produces can be filtered on
// that field alone.
func ForCalendar(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("calendar", name).Logger()
}
