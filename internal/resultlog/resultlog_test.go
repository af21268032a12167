package resultlog

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keysprint/internal/model"
)

func sampleResult() model.SessionResult {
	return model.SessionResult{
		CompletedAt: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		Mode:        model.ModeTime,
		Words:       25,
		Seconds:     30,
		Elapsed:     30 * time.Second,
		WPM:         61.25,
		RawWPM:      64,
		Accuracy:    0.957,
		StdDev:      1.234,
	}
}

func TestRecordWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.csv")
	log := New(path)
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, sampleResult()))
	died := sampleResult()
	died.Mode = model.ModeWords
	died.Died = true
	require.NoError(t, log.Record(ctx, died))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"2024-06-01T10:30:00Z", "time", "25", "30", "30.00", "61.2", "64.0", "95.7", "1.23", "false"}, rows[1])
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "true", rows[2][9])
}

func TestRecordFailsOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := New(filepath.Join(blocker, "log.csv")).Record(context.Background(), sampleResult())
	assert.Error(t, err)
}
