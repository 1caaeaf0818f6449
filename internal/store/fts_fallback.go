//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback on the nodes table.
	return nil
}

func ftsUpsertNode(_ *sql.Tx, _, _, _, _ string) error {
	// Content is already stored in the nodes table; nothing extra to do.
	return nil
}

func ftsDeleteNode(_ *sql.Tx, _ string) {}

func ftsDeleteBoard(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(boardID, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, board_id, substr(content, 1, 200)
		FROM nodes
		WHERE board_id = ? AND (content LIKE ? OR label LIKE ?)
		LIMIT ?
	`, boardID, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.NodeID, &r.BoardID, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
