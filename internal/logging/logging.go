// Package logging configures the global zerolog logger used for diagnostics.
// Command output such as tables and reports is not logged; it is written to
// stdout directly.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Level is one of debug, info, warn, error or disabled. Default: warn.
	Level string

	// Format is console or json. Default: console.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Init replaces the global logger. It is safe to call more than once.
func Init(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	switch strings.ToLower(cfg.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	case "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", cfg.Format)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return zerolog.WarnLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
}
