// Package store provides the SQLite persistence gateway for boards, nodes,
// and edges, with optional FTS5 full-text search over node content.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS boards (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL,
	page       TEXT NOT NULL DEFAULT 'main',
	type       TEXT NOT NULL DEFAULT 'Note',
	content    TEXT NOT NULL DEFAULT '',
	label      TEXT NOT NULL DEFAULT '',
	color      TEXT NOT NULL DEFAULT '',
	x          REAL NOT NULL DEFAULT 0,
	y          REAL NOT NULL DEFAULT 0,
	width      REAL NOT NULL DEFAULT 320,
	height     REAL NOT NULL DEFAULT 300,
	items      TEXT NOT NULL DEFAULT '[]',
	events     TEXT NOT NULL DEFAULT '{}',
	url        TEXT NOT NULL DEFAULT '',
	video_id   TEXT NOT NULL DEFAULT '',
	ai_status  TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_nodes_board_page ON nodes(board_id, page);

CREATE TABLE IF NOT EXISTS edges (
	id       TEXT PRIMARY KEY,
	board_id TEXT NOT NULL,
	page     TEXT NOT NULL DEFAULT 'main',
	from_id  TEXT NOT NULL,
	to_id    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edges_board_page ON edges(board_id, page);
CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
`

// DB wraps a sql.DB with board-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
