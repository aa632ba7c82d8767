// Package logging configures the line-structured, per-component
// loggers required by spec §6.4: timestamp, logger name, level,
// message. Callers are responsible for never passing queried indices,
// PRF keys, or derived hex/hash values into a log call — the hard
// rule in §6.4 is enforced by omission, not by a redaction filter.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New parses level (one of DEBUG|INFO|WARNING|ERROR|CRITICAL, per
// spec §6.3) and returns a root logger writing human-readable lines
// to w, each timestamped as "YYYY-MM-DD HH:MM:SS".
func New(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	return zerolog.New(console).Level(parseLevel(level)).With().Timestamp().Logger()
}

// Component derives a sub-logger tagged with a "component" field, so
// log lines are attributable to a component (main/database/httpapi)
// without parsing the message text.
func Component(root zerolog.Logger, name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "CRITICAL":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Stdout is the default writer for New, split out so tests can swap
// in a buffer to assert on §6.4's "no secrets in logs" invariant.
var Stdout io.Writer = os.Stdout
