//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS events_fts USING fts5(
			fingerprint UNINDEXED,
			message,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, fp, message string) error {
	_, _ = tx.Exec(`DELETE FROM events_fts WHERE fingerprint = ?`, fp)
	_, err := tx.Exec(`INSERT INTO events_fts (fingerprint, message) VALUES (?, ?)`, fp, message)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, fp string) {
	_, _ = tx.Exec(`DELETE FROM events_fts WHERE fingerprint = ?`, fp)
}

// Search performs an FTS5 full-text search over event messages.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT fingerprint,
		       message,
		       snippet(events_fts, 1, '<b>', '</b>', '...', 32)
		FROM events_fts
		WHERE events_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Fingerprint, &r.Message, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
