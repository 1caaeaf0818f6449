// Package boardservice coordinates the store, the action resolver, and the
// event broker. It owns the apply/undo loop around the pure resolver core.
package boardservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbeckett/ideabomb/internal/apperr"
	"github.com/rbeckett/ideabomb/internal/layout"
	"github.com/rbeckett/ideabomb/internal/models"
	"github.com/rbeckett/ideabomb/internal/resolver"
	"github.com/rbeckett/ideabomb/internal/semantics"
	"github.com/rbeckett/ideabomb/internal/snapshot"
	"github.com/rbeckett/ideabomb/internal/store"
)

// Publisher receives board mutation events. The SSE broker implements it;
// a nil publisher disables event fan-out (tests, MCP mode).
type Publisher interface {
	PublishBoardEvent(kind, boardID, itemID string)
}

// Service coordinates store and resolver operations.
type Service struct {
	store store.BoardStore
	pub   Publisher
	snaps *snapshot.Store // optional on-disk snapshot directory

	mu    sync.Mutex
	locks map[string]*sync.Mutex // serialises AI batches per board
	undo  map[string]undoEntry   // one-level undo slot per board
}

type undoEntry struct {
	nodeIDs []string
	edgeIDs []string
}

// NewService creates a new board service. pub may be nil.
func NewService(st store.BoardStore, pub Publisher) *Service {
	return &Service{
		store: st,
		pub:   pub,
		locks: make(map[string]*sync.Mutex),
		undo:  make(map[string]undoEntry),
	}
}

func (s *Service) publish(kind, boardID, itemID string) {
	if s.pub != nil {
		s.pub.PublishBoardEvent(kind, boardID, itemID)
	}
}

// boardLock returns the mutex serialising batch application for one board.
func (s *Service) boardLock(boardID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[boardID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[boardID] = l
	}
	return l
}

// CreateBoard registers a new board.
func (s *Service) CreateBoard(_ context.Context, name, actorID string) (*models.Board, error) {
	now := time.Now().UTC()
	b := models.Board{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBoard(b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBoard returns one board.
func (s *Service) GetBoard(_ context.Context, id string) (*models.Board, error) {
	return s.store.GetBoard(id)
}

// ListBoards returns all boards.
func (s *Service) ListBoards(_ context.Context) ([]models.Board, error) {
	return s.store.ListBoards()
}

// DeleteBoard removes a board with all its nodes and edges. Deletion takes
// the board's batch mutex, and the mutex entry stays in the map afterwards:
// dropping it while a batch holds the lock would let a later caller mint a
// second mutex for the same board id.
func (s *Service) DeleteBoard(_ context.Context, id string) error {
	lock := s.boardLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.DeleteBoard(id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.undo, id)
	s.mu.Unlock()
	return nil
}

// NodeParams carries the caller-supplied fields of a node create or update.
type NodeParams struct {
	Type    string
	Content string
	Label   string
	Color   string
	X, Y    *float64
	W, H    *float64
	Items   []models.TodoItem
	Events  map[string]string
}

// CreateNode places a node on a board page. The semantics parser derives
// the type-specific fields from content; human-created nodes carry no
// suggested tag.
func (s *Service) CreateNode(_ context.Context, boardID, page, actorID string, p NodeParams) (*models.Node, error) {
	if _, err := s.store.GetBoard(boardID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	node := models.Node{
		ID:        uuid.NewString(),
		BoardID:   boardID,
		Page:      page,
		Type:      p.Type,
		Content:   p.Content,
		Label:     p.Label,
		Color:     p.Color,
		Width:     models.DefaultNodeWidth,
		Height:    models.DefaultNodeHeight,
		Items:     p.Items,
		Events:    p.Events,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if node.Type == "" {
		node.Type = models.TypeNote
	}
	applyGeometry(&node, p)
	if len(p.Items) == 0 && len(p.Events) == 0 {
		semantics.ApplyToNode(&node)
	}

	if p.X == nil && p.Y == nil {
		// No explicit position: drop the node onto the page frontier.
		// A caller-supplied (0,0) is a real position and is kept.
		nodes, err := s.store.ListNodes(boardID, page)
		if err != nil {
			return nil, err
		}
		r := layout.NewPlanner(layout.NewCache(nodes)).PlaceIndependent(node.ID)
		node.X, node.Y = r.X, r.Y
	}

	if err := s.store.UpsertNode(node); err != nil {
		return nil, err
	}
	_ = s.store.TouchBoard(boardID, now)
	s.publish("node.created", boardID, node.ID)
	return &node, nil
}

// UpdateNode applies a partial edit to a node.
func (s *Service) UpdateNode(_ context.Context, nodeID string, p NodeParams) (*models.Node, error) {
	node, err := s.store.GetNode(nodeID)
	if err != nil {
		return nil, err
	}
	if p.Type != "" {
		node.Type = p.Type
	}
	if p.Content != "" {
		node.Content = p.Content
		semantics.ApplyToNode(node)
	}
	if p.Label != "" {
		node.Label = p.Label
	}
	if p.Color != "" {
		node.Color = p.Color
	}
	if len(p.Items) > 0 {
		node.Items = p.Items
	}
	if len(p.Events) > 0 {
		if node.Events == nil {
			node.Events = make(map[string]string, len(p.Events))
		}
		for k, v := range p.Events {
			node.Events[k] = v
		}
	}
	applyGeometry(node, p)
	node.UpdatedAt = time.Now().UTC()

	if err := s.store.UpsertNode(*node); err != nil {
		return nil, err
	}
	_ = s.store.TouchBoard(node.BoardID, node.UpdatedAt)
	s.publish("node.updated", node.BoardID, node.ID)
	return node, nil
}

func applyGeometry(node *models.Node, p NodeParams) {
	if p.X != nil {
		node.X = *p.X
	}
	if p.Y != nil {
		node.Y = *p.Y
	}
	if p.W != nil && *p.W > 0 {
		node.Width = *p.W
	}
	if p.H != nil && *p.H > 0 {
		node.Height = *p.H
	}
}

// GetNode returns one node.
func (s *Service) GetNode(_ context.Context, id string) (*models.Node, error) {
	return s.store.GetNode(id)
}

// Nodes lists the nodes of a board, optionally scoped to one page.
func (s *Service) Nodes(_ context.Context, boardID, page string) ([]models.Node, error) {
	if _, err := s.store.GetBoard(boardID); err != nil {
		return nil, err
	}
	return s.store.ListNodes(boardID, page)
}

// DeleteNode removes a node; incident edges are pruned in the same
// transaction.
func (s *Service) DeleteNode(_ context.Context, id string) error {
	node, err := s.store.GetNode(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteNode(id); err != nil {
		return err
	}
	_ = s.store.TouchBoard(node.BoardID, time.Now().UTC())
	s.publish("node.deleted", node.BoardID, id)
	return nil
}

// AcceptNode marks an AI-suggested node as reviewed.
func (s *Service) AcceptNode(_ context.Context, id string) (*models.Node, error) {
	if err := s.store.SetAIStatus(id, models.AIStatusAccepted, time.Now().UTC()); err != nil {
		return nil, err
	}
	node, err := s.store.GetNode(id)
	if err != nil {
		return nil, err
	}
	s.publish("node.updated", node.BoardID, id)
	return node, nil
}

// CreateEdge connects two nodes. Both endpoints must exist on the same
// board page; self-loops are invalid.
func (s *Service) CreateEdge(_ context.Context, boardID, page, from, to string) (*models.Edge, error) {
	if from == to {
		return nil, fmt.Errorf("%w: edge endpoints must differ", apperr.ErrInvalid)
	}
	src, err := s.store.GetNode(from)
	if err != nil {
		return nil, fmt.Errorf("edge source: %w", err)
	}
	dst, err := s.store.GetNode(to)
	if err != nil {
		return nil, fmt.Errorf("edge target: %w", err)
	}
	if src.BoardID != boardID || dst.BoardID != boardID || src.Page != page || dst.Page != page {
		return nil, fmt.Errorf("%w: edge endpoints must share a page", apperr.ErrInvalid)
	}

	edge := models.Edge{
		ID:      uuid.NewString(),
		BoardID: boardID,
		Page:    page,
		From:    from,
		To:      to,
	}
	if err := s.store.UpsertEdge(edge); err != nil {
		return nil, err
	}
	_ = s.store.TouchBoard(boardID, time.Now().UTC())
	s.publish("edge.created", boardID, edge.ID)
	return &edge, nil
}

// Edges lists the edges of a board, optionally scoped to one page.
func (s *Service) Edges(_ context.Context, boardID, page string) ([]models.Edge, error) {
	if _, err := s.store.GetBoard(boardID); err != nil {
		return nil, err
	}
	return s.store.ListEdges(boardID, page)
}

// DeleteEdge removes a single edge.
func (s *Service) DeleteEdge(_ context.Context, boardID, id string) error {
	if err := s.store.DeleteEdge(id); err != nil {
		return err
	}
	s.publish("edge.deleted", boardID, id)
	return nil
}

// Search runs a full-text search over a board's node content.
func (s *Service) Search(_ context.Context, boardID, query string, limit int) ([]store.SearchResult, error) {
	return s.store.Search(boardID, query, limit)
}

// OrganizeBoard reflows every node on the page onto a square grid and
// persists the new positions in one transaction.
func (s *Service) OrganizeBoard(_ context.Context, boardID, page string) error {
	nodes, err := s.store.ListNodes(boardID, page)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	if err := s.store.UpdatePositions(layout.Reflow(ids), time.Now().UTC()); err != nil {
		return err
	}
	s.publish("board.organized", boardID, "")
	return nil
}

// ApplyResult summarises one applied AI batch.
type ApplyResult struct {
	CreatedNodeIDs []string `json:"created_node_ids"`
	CreatedEdgeIDs []string `json:"created_edge_ids"`
	NodesUpserted  int      `json:"nodes_upserted"`
	NodesDeleted   int      `json:"nodes_deleted"`
	EdgesDeleted   int      `json:"edges_deleted"`
	Reflowed       bool     `json:"reflowed"`
}

// ApplyActions resolves a proposed-action list against the current page
// snapshot and applies the resulting batch atomically. Batches are
// serialised per board; concurrent edits from other collaborators are
// reconciled by the store, not here. The created ids are retained in the
// board's single undo slot.
func (s *Service) ApplyActions(ctx context.Context, boardID, page, actorID string, actions []resolver.Action) (*ApplyResult, error) {
	lock := s.boardLock(boardID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.GetBoard(boardID); err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodes(boardID, page)
	if err != nil {
		return nil, err
	}
	edges, err := s.store.ListEdges(boardID, page)
	if err != nil {
		return nil, err
	}

	batch := resolver.Resolve(resolver.Input{
		BoardID: boardID,
		Page:    page,
		ActorID: actorID,
		Nodes:   nodes,
		Edges:   edges,
		Actions: actions,
	})

	result := &ApplyResult{
		CreatedNodeIDs: batch.CreatedNodeIDs,
		CreatedEdgeIDs: batch.CreatedEdgeIDs,
		NodesUpserted:  len(batch.NodeUpserts),
		NodesDeleted:   len(batch.NodeDeletes),
		EdgesDeleted:   len(batch.EdgeDeletes),
		Reflowed:       batch.Reflow,
	}
	if batch.Empty() {
		return result, nil
	}

	// All-or-nothing: a failed commit leaves nothing applied and the undo
	// slot untouched.
	if err := s.store.ApplyBatch(boardID, batch, time.Now().UTC()); err != nil {
		return nil, err
	}

	if len(batch.CreatedNodeIDs) > 0 || len(batch.CreatedEdgeIDs) > 0 {
		s.mu.Lock()
		s.undo[boardID] = undoEntry{nodeIDs: batch.CreatedNodeIDs, edgeIDs: batch.CreatedEdgeIDs}
		s.mu.Unlock()
	}

	for _, n := range batch.NodeUpserts {
		kind := "node.updated"
		if containsID(batch.CreatedNodeIDs, n.ID) {
			kind = "node.created"
		}
		s.publish(kind, boardID, n.ID)
	}
	for _, id := range batch.NodeDeletes {
		s.publish("node.deleted", boardID, id)
	}
	for _, e := range batch.EdgeUpserts {
		s.publish("edge.created", boardID, e.ID)
	}
	for _, id := range batch.EdgeDeletes {
		s.publish("edge.deleted", boardID, id)
	}

	if batch.Reflow {
		if err := s.OrganizeBoard(ctx, boardID, page); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UndoLast deletes everything the last applied AI batch created on the
// board. Undo depth is exactly one; a second call reports not found.
func (s *Service) UndoLast(_ context.Context, boardID string) (*ApplyResult, error) {
	lock := s.boardLock(boardID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	entry, ok := s.undo[boardID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("undo: %w", apperr.ErrNotFound)
	}

	batch := &resolver.Batch{
		NodeDeletes: entry.nodeIDs,
		EdgeDeletes: entry.edgeIDs,
	}
	if err := s.store.ApplyBatch(boardID, batch, time.Now().UTC()); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.undo, boardID)
	s.mu.Unlock()

	for _, id := range entry.nodeIDs {
		s.publish("node.deleted", boardID, id)
	}
	for _, id := range entry.edgeIDs {
		s.publish("edge.deleted", boardID, id)
	}
	return &ApplyResult{
		NodesDeleted: len(entry.nodeIDs),
		EdgesDeleted: len(entry.edgeIDs),
	}, nil
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
