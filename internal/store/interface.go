package store

import (
	"time"

	"github.com/rbeckett/ideabomb/internal/layout"
	"github.com/rbeckett/ideabomb/internal/models"
	"github.com/rbeckett/ideabomb/internal/resolver"
)

// SearchResult is one full-text search hit.
type SearchResult struct {
	NodeID  string `json:"node_id"`
	BoardID string `json:"board_id"`
	Snippet string `json:"snippet"`
}

// BoardStore defines the persistence gateway interface. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type BoardStore interface {
	CreateBoard(b models.Board) error
	GetBoard(id string) (*models.Board, error)
	ListBoards() ([]models.Board, error)
	DeleteBoard(id string) error
	TouchBoard(id string, at time.Time) error

	UpsertNode(n models.Node) error
	GetNode(id string) (*models.Node, error)
	ListNodes(boardID, page string) ([]models.Node, error)
	DeleteNode(id string) error
	SetAIStatus(id, status string, at time.Time) error

	UpsertEdge(e models.Edge) error
	ListEdges(boardID, page string) ([]models.Edge, error)
	DeleteEdge(id string) error

	ApplyBatch(boardID string, b *resolver.Batch, at time.Time) error
	UpdatePositions(positions map[string]layout.Rect, at time.Time) error
	Search(boardID, query string, limit int) ([]SearchResult, error)

	Close() error
}

// Verify *DB satisfies BoardStore at compile time.
var _ BoardStore = (*DB)(nil)
