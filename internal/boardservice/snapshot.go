package boardservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rbeckett/ideabomb/internal/apperr"
	"github.com/rbeckett/ideabomb/internal/resolver"
	"github.com/rbeckett/ideabomb/internal/snapshot"
)

// SetSnapshotStore attaches the on-disk snapshot directory used by
// SaveSnapshot. A nil store disables saving (MCP mode, tests).
func (s *Service) SetSnapshotStore(st *snapshot.Store) {
	s.snaps = st
}

// ExportBoard assembles a snapshot document for one board: the board
// record plus every node and edge across all pages.
func (s *Service) ExportBoard(_ context.Context, boardID string) (*snapshot.Document, error) {
	board, err := s.store.GetBoard(boardID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodes(boardID, "")
	if err != nil {
		return nil, err
	}
	edges, err := s.store.ListEdges(boardID, "")
	if err != nil {
		return nil, err
	}
	return &snapshot.Document{Board: *board, Nodes: nodes, Edges: edges}, nil
}

// SaveSnapshot exports a board and persists it atomically in the snapshot
// directory, returning the file name.
func (s *Service) SaveSnapshot(ctx context.Context, boardID string) (string, error) {
	if s.snaps == nil {
		return "", fmt.Errorf("snapshot store not configured: %w", apperr.ErrInvalid)
	}
	doc, err := s.ExportBoard(ctx, boardID)
	if err != nil {
		return "", err
	}
	return s.snaps.Write(doc)
}

// ImportSnapshot upserts a snapshot document into the store: the board is
// created if missing, nodes and edges are applied as one atomic batch.
// Importing the same document twice is a no-op beyond timestamp bumps.
func (s *Service) ImportSnapshot(_ context.Context, doc *snapshot.Document) error {
	if doc == nil || doc.Board.ID == "" {
		return apperr.ErrInvalid
	}

	lock := s.boardLock(doc.Board.ID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.store.GetBoard(doc.Board.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if err := s.store.CreateBoard(doc.Board); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	batch := &resolver.Batch{
		NodeUpserts: doc.Nodes,
		EdgeUpserts: doc.Edges,
	}
	if batch.Empty() {
		return nil
	}
	if err := s.store.ApplyBatch(doc.Board.ID, batch, time.Now().UTC()); err != nil {
		return err
	}
	s.publish("board.updated", doc.Board.ID, "")
	return nil
}
