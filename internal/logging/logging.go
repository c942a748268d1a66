package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the base logger for a speechcore SDK instance: leveled,
// timestamped, writing to stderr so it never competes with anything the
// host application writes to stdout.
func New(level zerolog.Level) zerolog.Logger {
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// Component derives a child logger tagged with a component name, the
// way a single base logger is specialized per subsystem.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}

// Nop returns a logger that discards everything, used as the default
// when a caller does not configure one explicitly.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
