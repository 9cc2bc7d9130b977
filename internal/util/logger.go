// Package util provides process-level helpers: logger setup and virtual
// serial pairs for running against the simulator.
package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TimeFormat is used for both the timestamp field and console output.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SetupLogger routes the global zerolog logger to a console writer on
// stderr and applies level (debug, info, warn, error; empty means info).
func SetupLogger(level string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("log level %q: %w", level, err)
		}
	}

	zerolog.TimeFieldFormat = TimeFormat
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: TimeFormat,
	}).With().Timestamp().Logger()
	return nil
}
