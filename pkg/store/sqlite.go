package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS saves (
    slot       TEXT PRIMARY KEY,
    state      TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scores (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    slot       TEXT NOT NULL,
    lines      INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS scores_lines ON scores (lines DESC, created_at ASC);
`

// SQLiteStore keeps saves and the full score history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().Str("dsn", dsn).Msg("opened sqlite store")
	return &SQLiteStore{db: db}, nil
}

// openDB creates the parent directory of dsn and opens it with a busy
// timeout and WAL journaling.
func openDB(dsn string) (*sql.DB, error) {
	path, _, _ := strings.Cut(dsn, "?")
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", withParams(dsn, "_busy_timeout=5000&_journal_mode=WAL"))
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}

	return db, nil
}

// withParams appends query parameters to dsn, which may already carry some.
func withParams(dsn string, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}

	return dsn + "?" + params
}

func (s *SQLiteStore) Load(ctx context.Context, slot string) (*game.State, bool, error) {
	if err := ValidSlot(slot); err != nil {
		return nil, false, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM saves WHERE slot=?`, slot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}

	if strings.TrimSpace(raw) == "" {
		return nil, false, nil
	}

	st, err := game.DecodeState(strings.NewReader(raw))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode slot %s: %w", slot, err)
	}

	return st, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, slot string, st *game.State) error {
	if err := ValidSlot(slot); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := st.Encode(&buf); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO saves (slot, state, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(slot) DO UPDATE SET state=excluded.state, updated_at=excluded.updated_at`,
		slot, buf.String(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}

	log.Debug().Str("slot", slot).Msg("saved game")
	return nil
}

func (s *SQLiteStore) RecordScore(ctx context.Context, score Score) error {
	if err := ValidSlot(score.Slot); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (slot, lines, created_at) VALUES (?, ?, ?)`,
		score.Slot, score.Lines, score.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}

	return nil
}

func (s *SQLiteStore) TopScores(ctx context.Context, limit int) ([]Score, error) {
	if limit <= 0 {
		limit = DefaultScoreLimit
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT slot, lines, created_at
        FROM scores
        ORDER BY lines DESC, created_at ASC, slot ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	out := make([]Score, 0, limit)
	for rows.Next() {
		var (
			sc Score
			at int64
		)
		if err := rows.Scan(&sc.Slot, &sc.Lines, &at); err != nil {
			return nil, err
		}
		sc.At = time.Unix(0, at).UTC()
		out = append(out, sc)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
