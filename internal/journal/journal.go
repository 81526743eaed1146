// Package journal records every handled bot event in a SQLite database.
//
// The journal is an audit trail, not a source of truth: the shopping state
// lives in the JSON data file. Losing the journal loses history only.
package journal

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - initial entries table
// 1 - index on entries(at_ms) for Recent
const currentSchemaVersion = 1

// Entry is one handled event.
type Entry struct {
	ID      int64     `json:"id"`
	Flow    string    `json:"flow"`
	At      time.Time `json:"at"`
	Sender  int64     `json:"sender"`
	Event   string    `json:"event"`
	Op      string    `json:"op"`
	Result  string    `json:"result"`
	Product string    `json:"product,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type row struct {
	ID      int64  `db:"id"`
	Flow    string `db:"flow"`
	AtMS    int64  `db:"at_ms"`
	Sender  int64  `db:"sender"`
	Event   string `db:"event"`
	Op      string `db:"op"`
	Result  string `db:"result"`
	Product string `db:"product"`
	Error   string `db:"error"`
}

func (r row) entry() Entry {
	return Entry{
		ID:      r.ID,
		Flow:    r.Flow,
		At:      time.UnixMilli(r.AtMS).UTC(),
		Sender:  r.Sender,
		Event:   r.Event,
		Op:      r.Op,
		Result:  r.Result,
		Product: r.Product,
		Error:   r.Error,
	}
}

// OutcomeCount is one row of CountByOutcome.
type OutcomeCount struct {
	Op     string `db:"op" json:"op"`
	Result string `db:"result" json:"result"`
	Count  int64  `db:"n" json:"count"`
}

// Journal is the SQLite-backed event journal.
type Journal struct {
	db *sqlx.DB
}

// Open creates or opens the journal database at path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// Safe to call on an existing journal; the schema is applied idempotently.
func Open(path string) (*Journal, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to journal: %w", err)
	}

	// SQLite has one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records e. A zero At is stored as the current time.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.NamedExecContext(ctx, `
		INSERT INTO entries (flow, at_ms, sender, event, op, result, product, error)
		VALUES (:flow, :at_ms, :sender, :event, :op, :result, :product, :error)`,
		row{
			Flow:    e.Flow,
			AtMS:    at.UnixMilli(),
			Sender:  e.Sender,
			Event:   e.Event,
			Op:      e.Op,
			Result:  e.Result,
			Product: e.Product,
			Error:   e.Error,
		})
	if err != nil {
		return fmt.Errorf("append journal entry %s: %w", e.Flow, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []row
	err := j.db.SelectContext(ctx, &rows, `
		SELECT id, flow, at_ms, sender, event, op, result, product, error
		FROM entries
		ORDER BY at_ms DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent entries: %w", err)
	}
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out, nil
}

// CountByOutcome groups entries by operation and result.
func (j *Journal) CountByOutcome(ctx context.Context) ([]OutcomeCount, error) {
	var counts []OutcomeCount
	err := j.db.SelectContext(ctx, &counts, `
		SELECT op, result, COUNT(*) AS n
		FROM entries
		GROUP BY op, result
		ORDER BY op, result`)
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	return counts, nil
}

func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sqlx.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies incremental migrations based on user_version.
func runMigrations(db *sqlx.DB) error {
	var version int
	if err := db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_entries_at ON entries(at_ms)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func (j *Journal) pragma(name string) (string, error) {
	var value string
	if err := j.db.Get(&value, "PRAGMA "+name); err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	return value, nil
}
