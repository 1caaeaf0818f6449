// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes IdeaBomb board tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rbeckett/ideabomb/internal/boardservice"
	"github.com/rbeckett/ideabomb/internal/resolver"
)

// Server wraps the MCP server with IdeaBomb tools.
type Server struct {
	mcp *server.MCPServer
	svc *boardservice.Service
}

// New creates a new MCP server with all board tools registered.
func New(svc *boardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"IdeaBomb",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List all whiteboards with their ids and names."),
	), s.listBoards)

	s.mcp.AddTool(mcp.NewTool("read_board",
		mcp.WithDescription("Read the nodes and edges of a board page as JSON."),
		mcp.WithString("board_id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithString("page", mcp.Description("Optional page name (empty for all pages)")),
	), s.readBoard)

	s.mcp.AddTool(mcp.NewTool("apply_actions",
		mcp.WithDescription("Apply a batch of proposed actions to a board page. "+
			"The actions argument MUST be a JSON array following the proposed-action "+
			"contract. Read the contract first via the get_action_contract tool or the "+
			"ideabomb://action-format resource."),
		mcp.WithString("board_id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithString("page", mcp.Description("Page name (defaults to main)")),
		mcp.WithString("actions", mcp.Required(), mcp.Description("JSON array of action objects")),
	), s.applyActions)

	s.mcp.AddTool(mcp.NewTool("undo_last_actions",
		mcp.WithDescription("Roll back everything the last apply_actions batch created on a board."),
		mcp.WithString("board_id", mcp.Required(), mcp.Description("Board id")),
	), s.undoLastActions)

	s.mcp.AddTool(mcp.NewTool("search_board",
		mcp.WithDescription("Full-text search through a board's node content."),
		mcp.WithString("board_id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchBoard)

	s.mcp.AddTool(mcp.NewTool("get_action_contract",
		mcp.WithDescription("Returns the proposed-action JSON contract. "+
			"Call this before using apply_actions to ensure correct structure."),
	), s.getActionContract)

	// Resource: proposed-action contract.
	s.mcp.AddResource(
		mcp.NewResource("ideabomb://action-format", "Proposed-Action Contract",
			mcp.WithResourceDescription("JSON action format that apply_actions batches must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readActionFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := s.svc.ListBoards(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(boards, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("board_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := ""
	if p, err := req.RequireString("page"); err == nil {
		page = p
	}

	nodes, err := s.svc.Nodes(ctx, boardID, page)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("board not found: %s", boardID)), nil
	}
	edges, err := s.svc.Edges(ctx, boardID, page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"nodes": nodes,
		"edges": edges,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) applyActions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("board_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("actions")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := "main"
	if p, err := req.RequireString("page"); err == nil && p != "" {
		page = p
	}

	var actions []resolver.Action
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("actions must be a JSON array: %v", err)), nil
	}
	if len(actions) == 0 {
		return mcp.NewToolResultError("actions array is empty"), nil
	}

	result, err := s.svc.ApplyActions(ctx, boardID, page, "mcp", actions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) undoLastActions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("board_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.svc.UndoLast(ctx, boardID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("board_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, boardID, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getActionContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ActionFormatContract), nil
}

func (s *Server) readActionFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ideabomb://action-format",
			MIMEType: "text/markdown",
			Text:     ActionFormatContract,
		},
	}, nil
}
