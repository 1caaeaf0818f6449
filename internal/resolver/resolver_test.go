package resolver

import (
	"testing"

	"github.com/rbeckett/ideabomb/internal/models"
)

func resolve(actions []Action, nodes []models.Node, edges []models.Edge) *Batch {
	return Resolve(Input{
		BoardID: "board-1",
		Page:    "main",
		ActorID: "assistant",
		Nodes:   nodes,
		Edges:   edges,
		Actions: actions,
	})
}

func TestResolve_EmptyActionList(t *testing.T) {
	b := resolve(nil, nil, nil)
	if !b.Empty() {
		t.Errorf("batch = %+v, want empty", b)
	}
}

func TestResolve_CreateTodoOnEmptyPage(t *testing.T) {
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Type: "Todo", Content: "- Buy milk\n- Walk dog"},
	}, nil, nil)

	if len(b.NodeUpserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(b.NodeUpserts))
	}
	n := b.NodeUpserts[0]
	if n.Type != models.TypeTodo {
		t.Errorf("type = %q", n.Type)
	}
	if len(n.Items) != 2 || n.Items[0].Text != "Buy milk" || n.Items[1].Text != "Walk dog" {
		t.Errorf("items = %v", n.Items)
	}
	if n.Items[0].Done || n.Items[1].Done {
		t.Error("new items must start unchecked")
	}
	if n.X != 100 || n.Y != 100 {
		t.Errorf("position = (%v,%v), want empty-page frontier (100,100)", n.X, n.Y)
	}
	if n.AIStatus != models.AIStatusSuggested {
		t.Errorf("ai status = %q", n.AIStatus)
	}
	if n.CreatedBy != "assistant" {
		t.Errorf("created by = %q", n.CreatedBy)
	}
	if len(b.CreatedNodeIDs) != 1 || b.CreatedNodeIDs[0] != n.ID {
		t.Errorf("created ids = %v", b.CreatedNodeIDs)
	}
}

func TestResolve_TypeInferenceFromActionName(t *testing.T) {
	b := resolve([]Action{
		{Action: "create_calendar_plan", ID: "c1", Content: "2025-05-01 10:00 Kickoff"},
		{Action: "create_video", ID: "v1", Content: "https://youtu.be/dQw4w9WgXcQ"},
		{Action: "create_link", ID: "l1", Content: "see [docs](https://go.dev)"},
	}, nil, nil)

	if len(b.NodeUpserts) != 3 {
		t.Fatalf("upserts = %d", len(b.NodeUpserts))
	}
	cal, vid, link := b.NodeUpserts[0], b.NodeUpserts[1], b.NodeUpserts[2]
	if cal.Type != models.TypeCalendar || cal.Events["2025-05-01 10:00"] != "Kickoff" {
		t.Errorf("calendar = %+v", cal)
	}
	if vid.Type != models.TypeYouTube || vid.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("video = %+v", vid)
	}
	if link.Type != models.TypeLink || link.URL != "https://go.dev" || link.Content != "https://go.dev" {
		t.Errorf("link = %+v", link)
	}
}

func TestResolve_ExplicitTypeWinsOverActionName(t *testing.T) {
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Type: "todo", Content: "- a"},
	}, nil, nil)
	if b.NodeUpserts[0].Type != models.TypeTodo {
		t.Errorf("type = %q, want Todo from explicit field", b.NodeUpserts[0].Type)
	}
}

func TestResolve_BareCreateNodeDefaultsToNote(t *testing.T) {
	// Without an explicit type or a dedicated action name, content alone
	// never changes the node type: bullets and date tokens stay plain text.
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Content: "- Book flights\n- Reserve hotel"},
		{Action: "create_node", ID: "n2", Content: "2026-06-01 09:00 Departure"},
	}, nil, nil)

	if len(b.NodeUpserts) != 2 {
		t.Fatalf("upserts = %d", len(b.NodeUpserts))
	}
	for _, n := range b.NodeUpserts {
		if n.Type != models.TypeNote {
			t.Errorf("node %s type = %q, want Note", n.ID, n.Type)
		}
		if len(n.Items) != 0 || len(n.Events) != 0 {
			t.Errorf("node %s derived fields = items %v events %v, want none", n.ID, n.Items, n.Events)
		}
	}
}

func TestResolve_ChildrenStackBesideParent(t *testing.T) {
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Content: "root"},
		{Action: "create_node", ID: "n2", Content: "first child"},
		{Action: "create_node", ID: "n3", Content: "second child"},
		{Action: "create_edge", From: "n1", To: "n2"},
		{Action: "create_edge", From: "n1", To: "n3"},
	}, nil, nil)

	if len(b.NodeUpserts) != 3 {
		t.Fatalf("upserts = %d", len(b.NodeUpserts))
	}
	root, c1, c2 := b.NodeUpserts[0], b.NodeUpserts[1], b.NodeUpserts[2]

	wantX := root.X + root.Width + 100
	if c1.X != wantX || c2.X != wantX {
		t.Errorf("children x = %v, %v, want %v", c1.X, c2.X, wantX)
	}
	if c1.Y != root.Y {
		t.Errorf("first child y = %v, want parent y %v", c1.Y, root.Y)
	}
	if c2.Y-c1.Y < c1.Height+50 {
		t.Errorf("sibling offset = %v, want >= %v", c2.Y-c1.Y, c1.Height+50)
	}

	if len(b.EdgeUpserts) != 2 {
		t.Fatalf("edges = %d", len(b.EdgeUpserts))
	}
	if b.EdgeUpserts[0].From != root.ID || b.EdgeUpserts[0].To != c1.ID {
		t.Errorf("edge endpoints not remapped: %+v", b.EdgeUpserts[0])
	}
	if len(b.CreatedEdgeIDs) != 2 {
		t.Errorf("created edge ids = %v", b.CreatedEdgeIDs)
	}
}

func TestResolve_IndependentNodesGetDistinctGridSlots(t *testing.T) {
	actions := make([]Action, 5)
	for i := range actions {
		actions[i] = Action{Action: "create_node", Content: "n"}
	}
	b := resolve(actions, nil, nil)

	seen := make(map[[2]float64]bool)
	for i, n := range b.NodeUpserts {
		if wantX := 100 + float64(i%3)*350; n.X != wantX {
			t.Errorf("node %d x = %v, want %v", i, n.X, wantX)
		}
		key := [2]float64{n.X, n.Y}
		if seen[key] {
			t.Errorf("node %d shares coordinates (%v,%v)", i, n.X, n.Y)
		}
		seen[key] = true
	}
}

func TestResolve_EdgeToExistingNode(t *testing.T) {
	existing := []models.Node{{ID: "persisted-1", Page: "main", Content: "anchor", X: 50, Y: 60, Width: 320, Height: 300}}
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Content: "child"},
		{Action: "create_edge", From: "persisted-1", To: "n1"},
	}, existing, nil)

	if len(b.EdgeUpserts) != 1 {
		t.Fatalf("edges = %d", len(b.EdgeUpserts))
	}
	if b.EdgeUpserts[0].From != "persisted-1" {
		t.Errorf("from = %q", b.EdgeUpserts[0].From)
	}
	// The created node hangs off the persisted parent.
	child := b.NodeUpserts[0]
	if child.X != 50+320+100 {
		t.Errorf("child x = %v, want right of persisted parent", child.X)
	}
	if child.Y != 60 {
		t.Errorf("child y = %v, want parent y", child.Y)
	}
}

func TestResolve_EdgeWithUnresolvableEndpointDropped(t *testing.T) {
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Content: "a"},
		{Action: "create_edge", From: "n1", To: "ghost"},
	}, nil, nil)
	if len(b.EdgeUpserts) != 0 {
		t.Errorf("edges = %v, want none", b.EdgeUpserts)
	}
}

func TestResolve_SelfLoopRejectedSilently(t *testing.T) {
	b := resolve([]Action{
		{Action: "create_node", ID: "n1", Content: "a"},
		{Action: "create_edge", From: "n1", To: "n1"},
	}, nil, nil)
	if len(b.EdgeUpserts) != 0 {
		t.Errorf("edges = %v, want none", b.EdgeUpserts)
	}
	if len(b.NodeUpserts) != 1 {
		t.Errorf("node creation must still apply")
	}
}

func TestResolve_UpdateByID(t *testing.T) {
	existing := []models.Node{{ID: "p1", Type: models.TypeNote, Content: "old", Page: "main"}}
	b := resolve([]Action{
		{Action: "update_node", ID: "p1", Content: "new text"},
	}, existing, nil)

	if len(b.NodeUpserts) != 1 {
		t.Fatalf("upserts = %d", len(b.NodeUpserts))
	}
	got := b.NodeUpserts[0]
	if got.Content != "new text" || got.AIStatus != models.AIStatusSuggested {
		t.Errorf("update = %+v", got)
	}
	if len(b.CreatedNodeIDs) != 0 {
		t.Errorf("update must not report created ids: %v", b.CreatedNodeIDs)
	}
}

func TestResolve_UpdateByContentMatchIsCaseInsensitive(t *testing.T) {
	existing := []models.Node{{ID: "p1", Type: models.TypeNote, Content: "Grocery List for Monday"}}
	b := resolve([]Action{
		{Action: "update_node", ContentMatch: "grocery list", Content: "updated"},
	}, existing, nil)
	if len(b.NodeUpserts) != 1 || b.NodeUpserts[0].ID != "p1" {
		t.Errorf("upserts = %+v", b.NodeUpserts)
	}
}

func TestResolve_UpdateUnresolvedIsNoOp(t *testing.T) {
	b := resolve([]Action{
		{Action: "update_node", ID: "missing", Content: "x"},
	}, nil, nil)
	if !b.Empty() {
		t.Errorf("batch = %+v, want empty", b)
	}
}

func TestResolve_UpdateTodoKeepsItemsOnEmptyParse(t *testing.T) {
	existing := []models.Node{{
		ID:    "t1",
		Type:  models.TypeTodo,
		Items: []models.TodoItem{{Text: "keep me", Done: true}},
	}}
	b := resolve([]Action{
		{Action: "update_node", ID: "t1", Content: "no bullets here"},
	}, existing, nil)

	got := b.NodeUpserts[0]
	if len(got.Items) != 1 || got.Items[0].Text != "keep me" || !got.Items[0].Done {
		t.Errorf("items = %v, want pre-existing items preserved", got.Items)
	}
}

func TestResolve_UpdateCalendarMergesEvents(t *testing.T) {
	existing := []models.Node{{
		ID:     "c1",
		Type:   models.TypeCalendar,
		Events: map[string]string{"2025-01-01": "New year"},
	}}
	b := resolve([]Action{
		{Action: "update_node", ID: "c1", Content: "2025-02-14 Dinner"},
	}, existing, nil)

	got := b.NodeUpserts[0]
	if got.Events["2025-01-01"] != "New year" {
		t.Errorf("unrelated event lost: %v", got.Events)
	}
	if got.Events["2025-02-14"] != "Dinner" {
		t.Errorf("new event missing: %v", got.Events)
	}
}

func TestResolve_DeleteCascadesIncidentEdges(t *testing.T) {
	nodes := []models.Node{
		{ID: "a", Content: "Milk run"},
		{ID: "b", Content: "other"},
		{ID: "c", Content: "third"},
	}
	edges := []models.Edge{
		{ID: "e1", From: "a", To: "b"},
		{ID: "e2", From: "c", To: "a"},
		{ID: "e3", From: "b", To: "c"},
	}
	b := resolve([]Action{
		{Action: "delete_node", Content: "milk"},
	}, nodes, edges)

	if len(b.NodeDeletes) != 1 || b.NodeDeletes[0] != "a" {
		t.Fatalf("node deletes = %v", b.NodeDeletes)
	}
	if len(b.EdgeDeletes) != 2 {
		t.Fatalf("edge deletes = %v, want exactly the two incident edges", b.EdgeDeletes)
	}
}

func TestResolve_DeleteMatchesMultipleNodes(t *testing.T) {
	nodes := []models.Node{
		{ID: "a", Content: "buy MILK today"},
		{ID: "b", Content: "milk the process"},
		{ID: "c", Content: "unrelated"},
	}
	b := resolve([]Action{
		{Action: "delete_node", Content: "milk"},
	}, nodes, nil)
	if len(b.NodeDeletes) != 2 {
		t.Errorf("deletes = %v, want both case-insensitive matches", b.NodeDeletes)
	}
}

func TestResolve_DeletedNodeCannotAnchorEdges(t *testing.T) {
	nodes := []models.Node{{ID: "a", Content: "doomed"}}
	b := resolve([]Action{
		{Action: "delete_node", ID: "a"},
		{Action: "create_node", ID: "n1", Content: "x"},
		{Action: "create_edge", From: "a", To: "n1"},
	}, nodes, nil)
	if len(b.EdgeUpserts) != 0 {
		t.Errorf("edges = %v, want none to a deleted endpoint", b.EdgeUpserts)
	}
}

func TestResolve_OrganizeBoardSignalsReflow(t *testing.T) {
	b := resolve([]Action{{Action: "organize_board"}}, nil, nil)
	if !b.Reflow {
		t.Error("reflow signal missing")
	}
	if len(b.NodeUpserts) != 0 {
		t.Errorf("organize must not mutate nodes: %v", b.NodeUpserts)
	}
}

func TestResolve_UnknownActionsSkipped(t *testing.T) {
	b := resolve([]Action{
		{Action: "summon_dragon"},
		{Action: "create_node", ID: "n1", Content: "still processed"},
	}, nil, nil)
	if len(b.NodeUpserts) != 1 {
		t.Errorf("recognised actions must still apply: %+v", b)
	}
}

func TestResolve_SnapshotNotMutated(t *testing.T) {
	nodes := []models.Node{{ID: "p1", Type: models.TypeNote, Content: "original"}}
	resolve([]Action{
		{Action: "update_node", ID: "p1", Content: "changed"},
	}, nodes, nil)
	if nodes[0].Content != "original" {
		t.Errorf("input snapshot mutated: %q", nodes[0].Content)
	}
}
