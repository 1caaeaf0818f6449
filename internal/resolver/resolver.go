package resolver

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbeckett/ideabomb/internal/layout"
	"github.com/rbeckett/ideabomb/internal/models"
	"github.com/rbeckett/ideabomb/internal/semantics"
)

// Input is the immutable snapshot one Resolve call operates on.
type Input struct {
	BoardID string
	Page    string
	ActorID string
	Nodes   []models.Node // nodes currently visible on the page
	Edges   []models.Edge // edges currently on the page
	Actions []Action
}

// Batch is the ordered list of persistence operations produced by Resolve.
// The caller must submit it as one atomic write and treat partial
// application as failure of the whole operation.
type Batch struct {
	NodeUpserts []models.Node
	NodeDeletes []string
	EdgeUpserts []models.Edge
	EdgeDeletes []string

	// Created ids support the one-level undo of the last AI batch.
	CreatedNodeIDs []string
	CreatedEdgeIDs []string

	// Reflow signals that an organize_board action was present; the
	// recomputation of existing positions is the caller's responsibility.
	Reflow bool
}

// Empty reports whether the batch contains no operations and no signal.
func (b *Batch) Empty() bool {
	return len(b.NodeUpserts) == 0 && len(b.NodeDeletes) == 0 &&
		len(b.EdgeUpserts) == 0 && len(b.EdgeDeletes) == 0 && !b.Reflow
}

// Resolve compiles the proposed actions into a Batch in two passes: nodes
// first (building a batch-local → persisted id symbol table), then edges
// (consulting the table read-only). Malformed actions and unresolvable
// references are skipped; the rest of the batch still applies.
func Resolve(in Input) *Batch {
	now := time.Now().UTC()
	batch := &Batch{}

	// Working copies: resolution must not mutate the caller's snapshot.
	working := make(map[string]*models.Node, len(in.Nodes))
	order := make([]string, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		c := n
		working[n.ID] = &c
		order = append(order, n.ID)
	}
	edges := make([]models.Edge, len(in.Edges))
	copy(edges, in.Edges)

	planner := layout.NewPlanner(layout.NewCache(in.Nodes))
	locals := make(map[string]string) // batch-local id -> persisted id

	// Pass 1: nodes.
	for _, a := range in.Actions {
		switch a.Classify() {
		case KindCreate:
			node := buildNode(a, in, now)
			if a.ID != "" {
				locals[a.ID] = node.ID
			}
			node.X, node.Y, node.Width, node.Height = place(planner, a, in.Actions, locals, node.ID)
			batch.NodeUpserts = append(batch.NodeUpserts, node)
			batch.CreatedNodeIDs = append(batch.CreatedNodeIDs, node.ID)
			working[node.ID] = &node
			order = append(order, node.ID)

		case KindUpdate:
			target := findTarget(working, order, a.ID, a.ContentMatch)
			if target == nil {
				continue // unresolvable reference: no-op, not an error
			}
			applyUpdate(target, a, now)
			batch.NodeUpserts = append(batch.NodeUpserts, *target)

		case KindDelete:
			for _, id := range matchDeletes(working, order, a) {
				batch.NodeDeletes = append(batch.NodeDeletes, id)
				for _, e := range edges {
					if e.From == id || e.To == id {
						batch.EdgeDeletes = appendUnique(batch.EdgeDeletes, e.ID)
					}
				}
				delete(working, id)
				planner.Remove(id)
			}

		case KindOrganize:
			batch.Reflow = true
		}
	}

	// Pass 2: edges. Endpoints resolve through the symbol table first, then
	// fall back to ids already known to the position cache.
	cache := planner.Cache()
	for _, a := range in.Actions {
		if a.Classify() != KindEdge {
			continue
		}
		from, okFrom := resolveEndpoint(a.From, locals, cache)
		to, okTo := resolveEndpoint(a.To, locals, cache)
		if !okFrom || !okTo || from == to {
			continue
		}
		edge := models.Edge{
			ID:      uuid.NewString(),
			BoardID: in.BoardID,
			Page:    in.Page,
			From:    from,
			To:      to,
		}
		batch.EdgeUpserts = append(batch.EdgeUpserts, edge)
		batch.CreatedEdgeIDs = append(batch.CreatedEdgeIDs, edge.ID)
	}

	return batch
}

// buildNode materialises a creation action into a node record, running the
// semantics parser for the resolved type.
func buildNode(a Action, in Input, now time.Time) models.Node {
	node := models.Node{
		ID:        uuid.NewString(),
		BoardID:   in.BoardID,
		Page:      in.Page,
		Type:      a.NodeTypeResolved(),
		Content:   a.Content,
		Label:     a.Label,
		Color:     a.Color,
		AIStatus:  models.AIStatusSuggested,
		CreatedBy: in.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	deriveFields(&node, a)
	return node
}

// deriveFields fills type-specific fields from explicit action data first,
// falling back to parsing the content text.
func deriveFields(node *models.Node, a Action) {
	switch node.Type {
	case models.TypeTodo:
		if a.Data != nil && len(a.Data.Items) > 0 {
			node.Items = a.Data.Items
		} else if items := semantics.ParseTodoItems(node.Content); len(items) > 0 {
			node.Items = items
		}

	case models.TypeCalendar:
		events := semantics.ParseCalendarEvents(node.Content, node.Events)
		for k, v := range a.Events {
			events[k] = v
		}
		if a.Data != nil {
			for k, v := range a.Data.Events {
				events[k] = v
			}
		}
		if len(events) > 0 {
			node.Events = events
		}

	case models.TypeYouTube:
		if a.Data != nil && a.Data.VideoID != "" {
			node.VideoID = a.Data.VideoID
		} else {
			node.VideoID = semantics.ExtractYouTubeID(node.Content)
		}

	case models.TypeLink, models.TypeImage:
		if a.Data != nil && a.Data.URL != "" {
			node.URL = a.Data.URL
		} else if url, normalized := semantics.ParseLink(node.Content); url != "" {
			node.URL = url
			node.Content = normalized
		}
	}
}

// place picks a position for a freshly created node. A single forward scan
// over the batch's create_edge actions decides whether the node has a
// layout parent: the first edge naming this node's batch-local id as its
// "to" endpoint, whose "from" endpoint resolves to a node the cache knows.
func place(planner *layout.Planner, a Action, actions []Action, locals map[string]string, id string) (x, y, w, h float64) {
	if a.ID != "" {
		for _, e := range actions {
			if e.Classify() != KindEdge || e.To != a.ID {
				continue
			}
			parent := e.From
			if pid, ok := locals[parent]; ok {
				parent = pid
			}
			if r, ok := planner.PlaceChild(parent, id); ok {
				return r.X, r.Y, r.W, r.H
			}
			break
		}
	}
	r := planner.PlaceIndependent(id)
	return r.X, r.Y, r.W, r.H
}

// findTarget resolves an update target: exact id first, then the first node
// whose content contains the match substring, case-insensitively.
func findTarget(working map[string]*models.Node, order []string, id, contentMatch string) *models.Node {
	if id != "" {
		if n, ok := working[id]; ok {
			return n
		}
	}
	if contentMatch == "" {
		return nil
	}
	needle := strings.ToLower(contentMatch)
	for _, nid := range order {
		n, ok := working[nid]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(n.Content), needle) {
			return n
		}
	}
	return nil
}

// applyUpdate merges a partial update into the target node. Todo items are
// only replaced by a non-empty parse or explicit data; calendar events are
// merged key-wise so unrelated entries survive a partial content change.
func applyUpdate(node *models.Node, a Action, now time.Time) {
	if a.Content != "" {
		node.Content = a.Content
	}
	if a.Label != "" {
		node.Label = a.Label
	}
	if a.Color != "" {
		node.Color = a.Color
	}

	switch node.Type {
	case models.TypeTodo:
		if a.Data != nil && len(a.Data.Items) > 0 {
			node.Items = a.Data.Items
		} else if a.Content != "" {
			if items := semantics.ParseTodoItems(a.Content); len(items) > 0 {
				node.Items = items
			}
		}

	case models.TypeCalendar:
		events := node.Events
		if a.Content != "" {
			events = semantics.ParseCalendarEvents(a.Content, events)
		}
		merged := make(map[string]string, len(events))
		for k, v := range events {
			merged[k] = v
		}
		for k, v := range a.Events {
			merged[k] = v
		}
		if a.Data != nil {
			for k, v := range a.Data.Events {
				merged[k] = v
			}
		}
		if len(merged) > 0 {
			node.Events = merged
		}

	case models.TypeYouTube:
		if a.Data != nil && a.Data.VideoID != "" {
			node.VideoID = a.Data.VideoID
		} else if a.Content != "" {
			if id := semantics.ExtractYouTubeID(a.Content); id != "" {
				node.VideoID = id
			}
		}

	case models.TypeLink, models.TypeImage:
		if a.Data != nil && a.Data.URL != "" {
			node.URL = a.Data.URL
		} else if a.Content != "" {
			if url, normalized := semantics.ParseLink(a.Content); url != "" {
				node.URL = url
				node.Content = normalized
			}
		}
	}

	node.AIStatus = models.AIStatusSuggested
	node.UpdatedAt = now
}

// matchDeletes collects every node matching the delete action, by exact id
// or case-insensitive content substring. Multiple matches are allowed.
func matchDeletes(working map[string]*models.Node, order []string, a Action) []string {
	var out []string
	match := a.ContentMatch
	if match == "" {
		match = a.Content
	}
	needle := strings.ToLower(match)
	for _, id := range order {
		n, ok := working[id]
		if !ok {
			continue
		}
		if a.ID != "" && n.ID == a.ID {
			out = append(out, id)
			continue
		}
		if needle != "" && strings.Contains(strings.ToLower(n.Content), needle) {
			out = append(out, id)
		}
	}
	return out
}

func resolveEndpoint(raw string, locals map[string]string, cache layout.Cache) (string, bool) {
	if raw == "" {
		return "", false
	}
	id := raw
	if mapped, ok := locals[raw]; ok {
		id = mapped
	}
	// Either way the endpoint must still be in the cache: a node deleted
	// earlier in the same batch is no longer a valid endpoint.
	if _, ok := cache[id]; ok {
		return id, true
	}
	return "", false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
