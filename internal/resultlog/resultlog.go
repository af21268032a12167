// Package resultlog appends finished sessions to a CSV file.
package resultlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verte-zerg/keysprint/internal/model"
)

// Header is the first row of every results log.
var Header = []string{
	"date", "mode", "num_words", "num_secs", "elapsed_secs",
	"wpm", "raw_wpm", "accuracy", "std_dev", "died",
}

// Log is a session sink backed by an append-only CSV file.
type Log struct {
	path string
}

// New returns a log writing to path. The file and its directory are created
// on the first record.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the file the log appends to.
func (l *Log) Path() string {
	return l.path
}

// Record appends one row for res, writing the header first when the file is
// new or empty.
func (l *Log) Record(_ context.Context, res model.SessionResult) (err error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create results log dir: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close results log: %w", cerr)
		}
	}()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat results log: %w", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write results header: %w", err)
		}
	}
	if err := w.Write(Row(res)); err != nil {
		return fmt.Errorf("failed to write results row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush results log: %w", err)
	}
	return nil
}

// Row formats res in Header order. num_secs is empty outside time mode.
func Row(res model.SessionResult) []string {
	secs := ""
	if res.Mode == model.ModeTime {
		secs = strconv.Itoa(res.Seconds)
	}
	return []string{
		res.CompletedAt.Format(time.RFC3339),
		res.Mode.String(),
		strconv.Itoa(res.Words),
		secs,
		formatFloat(res.Elapsed.Seconds(), 2),
		formatFloat(res.WPM, 1),
		formatFloat(res.RawWPM, 1),
		formatFloat(res.Accuracy*100, 1),
		formatFloat(res.StdDev, 2),
		strconv.FormatBool(res.Died),
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
