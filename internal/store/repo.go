package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rbeckett/ideabomb/internal/apperr"
	"github.com/rbeckett/ideabomb/internal/models"
)

// CreateBoard inserts a new board.
func (db *DB) CreateBoard(b models.Board) error {
	_, err := db.conn.Exec(`
		INSERT INTO boards (id, name, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.Name, b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: create board: %w", err)
	}
	return nil
}

// GetBoard returns a board by id.
func (db *DB) GetBoard(id string) (*models.Board, error) {
	var b models.Board
	err := db.conn.QueryRow(`
		SELECT id, name, created_by, created_at, updated_at FROM boards WHERE id = ?
	`, id).Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get board: %w", err)
	}
	return &b, nil
}

// ListBoards returns all boards, most recently updated first.
func (db *DB) ListBoards() ([]models.Board, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, created_by, created_at, updated_at
		FROM boards ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list boards: %w", err)
	}
	defer rows.Close()

	var out []models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBoard removes a board and all of its nodes and edges in one transaction.
func (db *DB) DeleteBoard(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	res, err := tx.Exec(`DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	ftsDeleteBoard(tx, id)
	_, _ = tx.Exec(`DELETE FROM edges WHERE board_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM nodes WHERE board_id = ?`, id)

	return tx.Commit()
}

// TouchBoard bumps a board's updated_at timestamp.
func (db *DB) TouchBoard(id string, at time.Time) error {
	_, err := db.conn.Exec(`UPDATE boards SET updated_at = ? WHERE id = ?`, at, id)
	return err
}

const nodeColumns = `id, board_id, page, type, content, label, color,
	x, y, width, height, items, events, url, video_id,
	ai_status, created_by, created_at, updated_at`

// UpsertNode inserts or replaces a node and its FTS entry in one transaction.
func (db *DB) UpsertNode(n models.Node) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := upsertNodeTx(tx, n); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertNodeTx(tx *sql.Tx, n models.Node) error {
	itemsJSON, _ := json.Marshal(orEmptyItems(n.Items))
	eventsJSON, _ := json.Marshal(orEmptyEvents(n.Events))

	_, err := tx.Exec(`
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page       = excluded.page,
			type       = excluded.type,
			content    = excluded.content,
			label      = excluded.label,
			color      = excluded.color,
			x          = excluded.x,
			y          = excluded.y,
			width      = excluded.width,
			height     = excluded.height,
			items      = excluded.items,
			events     = excluded.events,
			url        = excluded.url,
			video_id   = excluded.video_id,
			ai_status  = excluded.ai_status,
			updated_at = excluded.updated_at
	`, n.ID, n.BoardID, n.Page, n.Type, n.Content, n.Label, n.Color,
		n.X, n.Y, n.Width, n.Height, string(itemsJSON), string(eventsJSON), n.URL, n.VideoID,
		n.AIStatus, n.CreatedBy, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert node: %w", err)
	}
	return ftsUpsertNode(tx, n.ID, n.BoardID, n.Content, n.Label)
}

// GetNode returns a node by id.
func (db *DB) GetNode(id string) (*models.Node, error) {
	row := db.conn.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get node: %w", err)
	}
	return n, nil
}

// ListNodes returns all nodes on a board, optionally filtered to one page.
func (db *DB) ListNodes(boardID, page string) ([]models.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE board_id = ?`
	args := []any{boardID}
	if page != "" {
		query += ` AND page = ?`
		args = append(args, page)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list nodes: %w", err)
	}
	defer rows.Close()

	var out []models.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// DeleteNode removes a node and every incident edge in one transaction.
// Pruning incident edges here keeps the no-dangling-edges invariant even
// for direct (non-batch) deletes.
func (db *DB) DeleteNode(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	_, _ = tx.Exec(`DELETE FROM edges WHERE from_id = ? OR to_id = ?`, id, id)
	ftsDeleteNode(tx, id)

	return tx.Commit()
}

// SetAIStatus updates the review status of a node.
func (db *DB) SetAIStatus(id, status string, at time.Time) error {
	res, err := db.conn.Exec(`
		UPDATE nodes SET ai_status = ?, updated_at = ? WHERE id = ?
	`, status, at, id)
	if err != nil {
		return fmt.Errorf("store: set ai status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpsertEdge inserts or replaces an edge.
func (db *DB) UpsertEdge(e models.Edge) error {
	_, err := db.conn.Exec(`
		INSERT INTO edges (id, board_id, page, from_id, to_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page    = excluded.page,
			from_id = excluded.from_id,
			to_id   = excluded.to_id
	`, e.ID, e.BoardID, e.Page, e.From, e.To)
	if err != nil {
		return fmt.Errorf("store: upsert edge: %w", err)
	}
	return nil
}

// ListEdges returns all edges on a board, optionally filtered to one page.
func (db *DB) ListEdges(boardID, page string) ([]models.Edge, error) {
	query := `SELECT id, board_id, page, from_id, to_id FROM edges WHERE board_id = ?`
	args := []any{boardID}
	if page != "" {
		query += ` AND page = ?`
		args = append(args, page)
	}
	query += ` ORDER BY id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list edges: %w", err)
	}
	defer rows.Close()

	var out []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.ID, &e.BoardID, &e.Page, &e.From, &e.To); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEdge removes a single edge.
func (db *DB) DeleteEdge(id string) error {
	res, err := db.conn.Exec(`DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete edge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(r rowScanner) (*models.Node, error) {
	var n models.Node
	var itemsJSON, eventsJSON string
	err := r.Scan(&n.ID, &n.BoardID, &n.Page, &n.Type, &n.Content, &n.Label, &n.Color,
		&n.X, &n.Y, &n.Width, &n.Height, &itemsJSON, &eventsJSON, &n.URL, &n.VideoID,
		&n.AIStatus, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(itemsJSON), &n.Items)
	_ = json.Unmarshal([]byte(eventsJSON), &n.Events)
	return &n, nil
}

func orEmptyItems(items []models.TodoItem) []models.TodoItem {
	if items == nil {
		return []models.TodoItem{}
	}
	return items
}

func orEmptyEvents(events map[string]string) map[string]string {
	if events == nil {
		return map[string]string{}
	}
	return events
}
