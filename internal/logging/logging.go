// Package logging builds the zerolog logger shared by the CLI, the TUI and the
// test engine.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLevel keeps routine events quiet while a test is on screen.
const DefaultLevel = "warn"

// New returns a console logger writing to w at the named level. An empty
// level selects DefaultLevel.
func New(w io.Writer, level string) (zerolog.Logger, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
