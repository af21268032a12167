// Package store handles SQLite persistence of finished sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/keysprint/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout keeps stored timestamps fixed width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			policy TEXT NOT NULL,
			lang TEXT NOT NULL,
			words INTEGER NOT NULL,
			seconds INTEGER NOT NULL,
			sentences INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			wpm REAL NOT NULL,
			raw_wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			std_dev REAL NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			died INTEGER NOT NULL,
			termination TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_samples (
			session_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			offset_ms INTEGER NOT NULL,
			wpm REAL NOT NULL,
			raw_wpm REAL NOT NULL,
			PRIMARY KEY (session_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS session_char_stats (
			session_id TEXT NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_char_stats_char ON session_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a finished session result.
func (s *Store) Record(ctx context.Context, res model.SessionResult) error {
	return s.InsertSession(ctx, res)
}

// InsertSession stores a session with its speed samples and per-character stats.
func (s *Store) InsertSession(ctx context.Context, res model.SessionResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	died := 0
	if res.Died {
		died = 1
	}
	id := res.ID.String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, mode, policy, lang, words, seconds, sentences,
			elapsed_ms, wpm, raw_wpm, accuracy, std_dev, correct, incorrect, keystrokes, died, termination)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		res.StartedAt.UTC().Format(timeLayout),
		res.CompletedAt.UTC().Format(timeLayout),
		res.Mode.String(),
		res.Policy.String(),
		res.Lang,
		res.Words,
		res.Seconds,
		res.Sentences,
		res.Elapsed.Milliseconds(),
		res.WPM,
		res.RawWPM,
		res.Accuracy,
		res.StdDev,
		res.Correct,
		res.Incorrect,
		res.Keystrokes,
		died,
		res.Termination.String(),
	)
	if err != nil {
		return err
	}

	if len(res.Samples) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_samples (session_id, idx, offset_ms, wpm, raw_wpm) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for i, sample := range res.Samples {
			if _, err := stmt.ExecContext(ctx, id, i, sample.Offset.Milliseconds(), sample.WPM, sample.RawWPM); err != nil {
				return err
			}
		}
	}

	if len(res.Chars) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_char_stats (session_id, char, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			_ = stmt.Close()
		}()
		for _, cs := range res.Chars {
			if _, err := stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect, cs.LatencySumMs, cs.LatencyCount); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetWeakChars aggregates character stats over the most recent sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int, lang string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR lang = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct), SUM(cs.incorrect), SUM(cs.latency_sum_ms), SUM(cs.latency_count)
	FROM session_char_stats cs
	JOIN recent_sessions r ON r.id = cs.session_id
	GROUP BY cs.char`
	return s.queryCharAggregates(ctx, query, lang, lang, window)
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, correct, incorrect, elapsed_ms, wpm, raw_wpm, accuracy, died
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		var died int
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Correct, &agg.Incorrect, &agg.DurationMs,
			&agg.WPM, &agg.RawWPM, &agg.Accuracy, &died); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Died = died != 0
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListSamples returns the speed samples of one session in order.
func (s *Store) ListSamples(ctx context.Context, sessionID string) ([]model.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT offset_ms, wpm, raw_wpm FROM session_samples WHERE session_id = ? ORDER BY idx ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var samples []model.Sample
	for rows.Next() {
		var offsetMs int64
		var sample model.Sample
		if err := rows.Scan(&offsetMs, &sample.WPM, &sample.RawWPM); err != nil {
			return nil, err
		}
		sample.Offset = time.Duration(offsetMs) * time.Millisecond
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// ListCharAggregatesForSessions aggregates per-character stats across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []string) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct), SUM(incorrect), SUM(latency_sum_ms), SUM(latency_count)
		FROM session_char_stats
		WHERE session_id IN (%s)
		GROUP BY char`, placeholders(len(sessionIDs)))
	return s.queryCharAggregates(ctx, query, args...)
}

// ListCharStatsForSessions returns per-session stats for selected characters.
func (s *Store) ListCharStatsForSessions(ctx context.Context, sessionIDs []string, chars []string) (map[string]map[string]model.CharAggregate, error) {
	result := map[string]map[string]model.CharAggregate{}
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return result, nil
	}
	args := make([]any, 0, len(sessionIDs)+len(chars))
	for _, id := range sessionIDs {
		args = append(args, id)
	}
	for _, ch := range chars {
		args = append(args, ch)
	}
	query := fmt.Sprintf(`SELECT session_id, char, correct, incorrect, latency_sum_ms, latency_count
		FROM session_char_stats
		WHERE session_id IN (%s) AND char IN (%s)`, placeholders(len(sessionIDs)), placeholders(len(chars)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var sessionID string
		var agg model.CharAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.CharAggregate{}
		}
		result[sessionID][agg.Char] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) queryCharAggregates(ctx context.Context, query string, args ...any) ([]model.CharAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
