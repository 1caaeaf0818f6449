package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rbeckett/ideabomb/internal/boardservice"
	"github.com/rbeckett/ideabomb/internal/models"
	"github.com/rbeckett/ideabomb/internal/testutil"
)

func testServer(t *testing.T) (*Server, *boardservice.Service) {
	t.Helper()
	svc := boardservice.NewService(testutil.TestDB(t), nil)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_boards":
		result, err = srv.listBoards(ctx, req)
	case "read_board":
		result, err = srv.readBoard(ctx, req)
	case "apply_actions":
		result, err = srv.applyActions(ctx, req)
	case "undo_last_actions":
		result, err = srv.undoLastActions(ctx, req)
	case "search_board":
		result, err = srv.searchBoard(ctx, req)
	case "get_action_contract":
		result, err = srv.getActionContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListBoards(t *testing.T) {
	srv, svc := testServer(t)
	if _, err := svc.CreateBoard(context.Background(), "Sprint", "alice"); err != nil {
		t.Fatal(err)
	}

	res := callTool(t, srv, "list_boards", nil)
	if res.IsError {
		t.Fatalf("error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "Sprint") {
		t.Errorf("output = %s", resultText(res))
	}
}

func TestApplyActionsAndReadBoard(t *testing.T) {
	srv, svc := testServer(t)
	b, err := svc.CreateBoard(context.Background(), "Trip", "alice")
	if err != nil {
		t.Fatal(err)
	}

	res := callTool(t, srv, "apply_actions", map[string]interface{}{
		"board_id": b.ID,
		"page":     "main",
		"actions": `[
			{"action": "create_node", "id": "plan", "type": "Todo", "content": "- Book flights\n- Reserve hotel"},
			{"action": "create_calendar_plan", "id": "dates", "content": "2026-06-01 09:00 Departure"},
			{"action": "create_edge", "from": "plan", "to": "dates"}
		]`,
	})
	if res.IsError {
		t.Fatalf("apply error: %s", resultText(res))
	}
	var applied boardservice.ApplyResult
	if err := json.Unmarshal([]byte(resultText(res)), &applied); err != nil {
		t.Fatal(err)
	}
	if len(applied.CreatedNodeIDs) != 2 || len(applied.CreatedEdgeIDs) != 1 {
		t.Fatalf("result = %+v", applied)
	}

	res = callTool(t, srv, "read_board", map[string]interface{}{
		"board_id": b.ID,
		"page":     "main",
	})
	if res.IsError {
		t.Fatalf("read error: %s", resultText(res))
	}
	var doc struct {
		Nodes []models.Node `json:"nodes"`
		Edges []models.Edge `json:"edges"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Errorf("nodes = %d, edges = %d", len(doc.Nodes), len(doc.Edges))
	}
	for _, n := range doc.Nodes {
		if n.AIStatus != models.AIStatusSuggested {
			t.Errorf("node %s status = %q", n.ID, n.AIStatus)
		}
		if n.Type == models.TypeCalendar && n.Events["2026-06-01 09:00"] != "Departure" {
			t.Errorf("calendar events = %v", n.Events)
		}
	}
}

func TestApplyActionsRejectsBadJSON(t *testing.T) {
	srv, svc := testServer(t)
	b, _ := svc.CreateBoard(context.Background(), "B", "alice")

	res := callTool(t, srv, "apply_actions", map[string]interface{}{
		"board_id": b.ID,
		"actions":  "not json",
	})
	if !res.IsError {
		t.Error("expected error for malformed actions")
	}

	res = callTool(t, srv, "apply_actions", map[string]interface{}{
		"board_id": b.ID,
		"actions":  "[]",
	})
	if !res.IsError {
		t.Error("expected error for empty actions")
	}
}

func TestUndoLastActions(t *testing.T) {
	srv, svc := testServer(t)
	b, _ := svc.CreateBoard(context.Background(), "B", "alice")

	res := callTool(t, srv, "apply_actions", map[string]interface{}{
		"board_id": b.ID,
		"actions":  `[{"action": "create_node", "id": "n1", "content": "temp"}]`,
	})
	if res.IsError {
		t.Fatalf("apply error: %s", resultText(res))
	}

	res = callTool(t, srv, "undo_last_actions", map[string]interface{}{"board_id": b.ID})
	if res.IsError {
		t.Fatalf("undo error: %s", resultText(res))
	}
	nodes, _ := svc.Nodes(context.Background(), b.ID, "main")
	if len(nodes) != 0 {
		t.Errorf("nodes after undo = %v", nodes)
	}

	res = callTool(t, srv, "undo_last_actions", map[string]interface{}{"board_id": b.ID})
	if !res.IsError {
		t.Error("expected error for empty undo slot")
	}
}

func TestSearchBoard(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()
	b, _ := svc.CreateBoard(ctx, "B", "alice")
	if _, err := svc.CreateNode(ctx, b.ID, "main", "alice", boardservice.NodeParams{Content: "quarterly roadmap"}); err != nil {
		t.Fatal(err)
	}

	res := callTool(t, srv, "search_board", map[string]interface{}{
		"board_id": b.ID,
		"query":    "roadmap",
	})
	if res.IsError {
		t.Fatalf("search error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "roadmap") {
		t.Errorf("output = %s", resultText(res))
	}
}

func TestGetActionContract(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "get_action_contract", nil)
	text := resultText(res)
	if !strings.Contains(text, "apply_actions") || !strings.Contains(text, "create_edge") {
		t.Errorf("contract looks wrong: %.80s", text)
	}
	// The documented type rule must match the resolver: bare create_node
	// is a Note; Calendar/YouTube/Link come from dedicated action names or
	// an explicit type field.
	if !strings.Contains(text, "defaults to Note") {
		t.Error("contract does not state the create_node default type")
	}
	if !strings.Contains(text, "create_calendar_plan") {
		t.Error("contract does not name the dedicated calendar action")
	}
}

func TestReadBoardMissing(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "read_board", map[string]interface{}{"board_id": "nope"})
	if !res.IsError {
		t.Error("expected error for unknown board")
	}
}
