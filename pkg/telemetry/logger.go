// Package telemetry configures diagnostic logging. All diagnostics go to
// stderr so result envelopes on stdout stay machine-parseable.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global console logger at the given level.
func Setup(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel converts a level name to zerolog.Level. Unrecognized names fall
// back to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child of the global logger tagged with a component
// field.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
