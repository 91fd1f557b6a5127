// Package history records REPL submissions in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session    TEXT    NOT NULL,
	source     TEXT    NOT NULL,
	result     REAL,
	error_code TEXT    NOT NULL DEFAULT '',
	error_msg  TEXT    NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_session ON submissions(session);
`

// Entry is one recorded submission. HasResult is false when evaluation
// failed; ErrorCode and ErrorMessage then describe the failure.
type Entry struct {
	ID           int64
	Session      string
	Source       string
	Result       float64
	HasResult    bool
	ErrorCode    string
	ErrorMessage string
	CreatedAt    time.Time
}

// Store is a submission log backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Record appends e. Its ID and CreatedAt are assigned by the store.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	var result sql.NullFloat64
	if e.HasResult {
		result = sql.NullFloat64{Float64: e.Result, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (session, source, result, error_code, error_msg, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Session, e.Source, result, e.ErrorCode, e.ErrorMessage, s.now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("recording submission: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n of the latest submissions across all sessions,
// oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	return s.query(ctx,
		`SELECT * FROM (
			SELECT id, session, source, result, error_code, error_msg, created_at
			FROM submissions ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, n)
}

// Session returns every submission of one session in order.
func (s *Store) Session(ctx context.Context, session string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, session, source, result, error_code, error_msg, created_at
		 FROM submissions WHERE session = ? ORDER BY id ASC`, session)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			result  sql.NullFloat64
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.Source, &result, &e.ErrorCode, &e.ErrorMessage, &created); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		e.Result, e.HasResult = result.Float64, result.Valid
		e.CreatedAt = time.Unix(0, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database. Closing a nil store is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
