//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a case-insensitive substring search over event messages.
// Built without the sqlite_fts5 tag there is no FTS table, so this falls
// back to a LIKE scan of the events table.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT fingerprint, message
		FROM events
		WHERE message LIKE '%' || ? || '%'
		ORDER BY day, message
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Fingerprint, &r.Message); err != nil {
			return nil, err
		}
		r.Snippet = r.Message
		out = append(out, r)
	}
	return out, rows.Err()
}
