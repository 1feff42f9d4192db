package index

import (
	"fmt"
	"time"

	"github.com/starford/dagaz/internal/apperr"
)

// EventRow represents a row in the events table. Day is stored as the unix
// timestamp of local midnight.
type EventRow struct {
	Fingerprint string
	EventID     int
	Day         time.Time
	Note        string
	Message     string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Fingerprint string
	Message     string
	Snippet     string
}

// UpsertEvent inserts or replaces an event row and its FTS entry.
func (db *DB) UpsertEvent(row EventRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO events (fingerprint, event_id, day, note, message, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(fingerprint) DO UPDATE SET
			event_id   = excluded.event_id,
			day        = excluded.day,
			note       = excluded.note,
			message    = excluded.message,
			updated_at = excluded.updated_at
	`, row.Fingerprint, row.EventID, row.Day.Unix(), row.Note, row.Message)
	if err != nil {
		return fmt.Errorf("index: upsert event: %w", err)
	}

	// FTS upsert (no-op when the FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Fingerprint, row.Message); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteEvent removes an event row and its FTS entry.
func (db *DB) DeleteEvent(fp string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, fp)
	_, _ = tx.Exec(`DELETE FROM events WHERE fingerprint = ?`, fp)

	return tx.Commit()
}

// Lookup resolves a fingerprint prefix to a single row. It returns
// apperr.ErrNotFound when nothing matches and apperr.ErrAmbiguous when the
// prefix selects more than one event.
func (db *DB) Lookup(prefix string) (*EventRow, error) {
	if prefix == "" {
		return nil, apperr.ErrNotFound
	}
	rows, err := db.conn.Query(`
		SELECT fingerprint, event_id, day, note, message
		FROM events
		WHERE fingerprint LIKE ? || '%'
		LIMIT 2
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("index: lookup: %w", err)
	}
	defer rows.Close()

	var out []*EventRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(out) {
	case 0:
		return nil, apperr.ErrNotFound
	case 1:
		return out[0], nil
	default:
		return nil, apperr.ErrAmbiguous
	}
}

// Range returns the rows whose day falls in [from, to], ordered by day then
// message.
func (db *DB) Range(from, to time.Time) ([]EventRow, error) {
	rows, err := db.conn.Query(`
		SELECT fingerprint, event_id, day, note, message
		FROM events
		WHERE day >= ? AND day <= ?
		ORDER BY day, message
	`, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("index: range: %w", err)
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// AllFingerprints returns every indexed fingerprint.
func (db *DB) AllFingerprints() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT fingerprint FROM events`)
	if err != nil {
		return nil, fmt.Errorf("index: all fingerprints: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, err
		}
		out[fp] = struct{}{}
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(rs rowScanner) (*EventRow, error) {
	var r EventRow
	var day int64
	if err := rs.Scan(&r.Fingerprint, &r.EventID, &day, &r.Note, &r.Message); err != nil {
		return nil, fmt.Errorf("index: scan row: %w", err)
	}
	r.Day = time.Unix(day, 0).In(time.Local)
	return &r, nil
}
