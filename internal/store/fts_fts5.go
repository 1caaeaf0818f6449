//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			node_id UNINDEXED,
			board_id UNINDEXED,
			content,
			label,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsertNode(tx *sql.Tx, nodeID, boardID, content, label string) error {
	_, _ = tx.Exec(`DELETE FROM nodes_fts WHERE node_id = ?`, nodeID)
	_, err := tx.Exec(`INSERT INTO nodes_fts (node_id, board_id, content, label) VALUES (?, ?, ?, ?)`,
		nodeID, boardID, content, label)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteNode(tx *sql.Tx, nodeID string) {
	_, _ = tx.Exec(`DELETE FROM nodes_fts WHERE node_id = ?`, nodeID)
}

func ftsDeleteBoard(tx *sql.Tx, boardID string) {
	_, _ = tx.Exec(`DELETE FROM nodes_fts WHERE board_id = ?`, boardID)
}

// Search performs an FTS5 full-text search over node content and labels.
func (db *DB) Search(boardID, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT node_id,
		       board_id,
		       snippet(nodes_fts, 2, '<b>', '</b>', '...', 64)
		FROM nodes_fts
		WHERE nodes_fts MATCH ? AND board_id = ?
		ORDER BY rank
		LIMIT ?
	`, query, boardID, limit)
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
