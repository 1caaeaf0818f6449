package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rbeckett/ideabomb/internal/boardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *boardservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Boards.
	r.Get("/boards", h.ListBoards)
	r.Post("/boards", h.CreateBoard)
	r.Get("/boards/{boardID}", h.GetBoard)
	r.Delete("/boards/{boardID}", h.DeleteBoard)
	r.Get("/boards/{boardID}/export", h.ExportBoard)
	r.Post("/boards/{boardID}/snapshot", h.SaveSnapshot)
	r.Post("/boards/{boardID}/organize", h.OrganizeBoard)

	// Nodes.
	r.Get("/boards/{boardID}/nodes", h.ListNodes)
	r.Post("/boards/{boardID}/nodes", h.CreateNode)
	r.Get("/nodes/{nodeID}", h.GetNode)
	r.Patch("/nodes/{nodeID}", h.UpdateNode)
	r.Delete("/nodes/{nodeID}", h.DeleteNode)
	r.Post("/nodes/{nodeID}/accept", h.AcceptNode)

	// Edges.
	r.Get("/boards/{boardID}/edges", h.ListEdges)
	r.Post("/boards/{boardID}/edges", h.CreateEdge)
	r.Delete("/boards/{boardID}/edges/{edgeID}", h.DeleteEdge)

	// AI collaborator surface.
	r.Post("/boards/{boardID}/actions", h.ApplyActions)
	r.Post("/boards/{boardID}/undo", h.UndoLast)

	// Search.
	r.Get("/boards/{boardID}/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
