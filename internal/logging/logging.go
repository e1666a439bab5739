// Package logging builds the zerolog loggers used by the art command and the
// entity stores.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains logger configuration options.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error, disabled).
	Level string

	// Format is the output format (json, console).
	Format string

	// Output receives log lines. Nil means stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration used when nothing is set. Logs go
// to stderr so that command output on stdout stays machine-readable.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "console"}
}

// NewLogger creates a zerolog logger from cfg.
func NewLogger(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty", "text":
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.Output != nil,
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger().
		Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to warn.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// ValidFormat reports whether format is a recognised output format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", "json", "console", "pretty", "text":
		return true
	}
	return false
}
