package store

import (
	"fmt"
	"time"

	"github.com/rbeckett/ideabomb/internal/layout"
	"github.com/rbeckett/ideabomb/internal/resolver"
)

// ApplyBatch submits a resolved action batch as one transaction. Operations
// apply in resolver order: node upserts, node deletes (with incident-edge
// pruning), edge upserts, edge deletes. Any failure rolls the whole batch
// back — there is no partial application.
func (db *DB) ApplyBatch(boardID string, b *resolver.Batch, at time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, n := range b.NodeUpserts {
		if err := upsertNodeTx(tx, n); err != nil {
			return err
		}
	}
	for _, id := range b.NodeDeletes {
		if _, err := tx.Exec(`DELETE FROM nodes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("store: batch delete node: %w", err)
		}
		// Belt and braces: the resolver lists incident edges explicitly,
		// but the no-dangling-edges invariant is enforced here too.
		_, _ = tx.Exec(`DELETE FROM edges WHERE from_id = ? OR to_id = ?`, id, id)
		ftsDeleteNode(tx, id)
	}
	for _, e := range b.EdgeUpserts {
		_, err := tx.Exec(`
			INSERT INTO edges (id, board_id, page, from_id, to_id)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				page    = excluded.page,
				from_id = excluded.from_id,
				to_id   = excluded.to_id
		`, e.ID, e.BoardID, e.Page, e.From, e.To)
		if err != nil {
			return fmt.Errorf("store: batch upsert edge: %w", err)
		}
	}
	for _, id := range b.EdgeDeletes {
		if _, err := tx.Exec(`DELETE FROM edges WHERE id = ?`, id); err != nil {
			return fmt.Errorf("store: batch delete edge: %w", err)
		}
	}

	if _, err := tx.Exec(`UPDATE boards SET updated_at = ? WHERE id = ?`, at, boardID); err != nil {
		return fmt.Errorf("store: batch touch board: %w", err)
	}

	return tx.Commit()
}

// UpdatePositions persists a position-only reflow in one transaction.
func (db *DB) UpdatePositions(positions map[string]layout.Rect, at time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin reflow: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`UPDATE nodes SET x = ?, y = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("store: prepare reflow: %w", err)
	}
	defer stmt.Close()

	for id, r := range positions {
		if _, err := stmt.Exec(r.X, r.Y, at, id); err != nil {
			return fmt.Errorf("store: reflow node %s: %w", id, err)
		}
	}
	return tx.Commit()
}
