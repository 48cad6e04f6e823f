package server

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Journal is an append-only SQLite log of applied events. It survives
// history clears and machine resets: the in-memory history is the
// machine's own state, the journal is an audit record of everything that
// ever fired.
type Journal struct {
	db *sql.DB
}

// AppliedEvent is one journaled event application.
type AppliedEvent struct {
	Seq       int       `json:"seq"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Event     string    `json:"event"`
	At        time.Time `json:"at"`
}

// OpenJournal opens (and migrates) a journal at path. Use ":memory:" for
// an ephemeral journal.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS applied_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		event TEXT NOT NULL,
		at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_applied_events_seq ON applied_events(seq);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends one applied event.
func (j *Journal) Record(ev AppliedEvent) error {
	_, err := j.db.Exec(
		`INSERT INTO applied_events (seq, from_state, to_state, event, at) VALUES (?, ?, ?, ?, ?)`,
		ev.Seq, ev.FromState, ev.ToState, ev.Event, ev.At.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns the newest limit events, newest first.
func (j *Journal) Recent(limit int) ([]AppliedEvent, error) {
	rows, err := j.db.Query(
		`SELECT seq, from_state, to_state, event, at FROM applied_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]AppliedEvent, 0, limit)
	for rows.Next() {
		var ev AppliedEvent
		var at string
		if err := rows.Scan(&ev.Seq, &ev.FromState, &ev.ToState, &ev.Event, &at); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.At, _ = time.Parse(time.RFC3339, at)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
