// Package logging builds the program's zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TrevorS/repsel/internal/config"
)

// New returns a logger writing to w (stderr when nil) at the configured
// level and format. Every entry carries a "run" field with runID; a new
// uuid is generated when runID is empty.
func New(cfg config.LogConfig, w io.Writer, runID string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}
	switch cfg.Format {
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json", "":
	default:
		return zerolog.Nop(), fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	if runID == "" {
		runID = NewRunID()
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("run", runID).Logger(), nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return uuid.NewString() }
