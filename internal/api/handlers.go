package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rbeckett/ideabomb/internal/apperr"
	"github.com/rbeckett/ideabomb/internal/boardservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *boardservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *boardservice.Service) *Handler {
	return &Handler{svc: svc}
}

func writeServiceError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		slog.Error(what+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListBoards handles GET /api/boards.
//
//	@Summary		List all boards
//	@Tags			boards
//	@Produce		json
//	@Success		200	{object}	BoardListResponse
//	@Security		BearerAuth
//	@Router			/boards [get]
func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.svc.ListBoards(r.Context())
	if err != nil {
		writeServiceError(w, err, "list boards")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

// CreateBoard handles POST /api/boards.
//
//	@Summary		Create a new board
//	@Tags			boards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateBoardRequest	true	"Board to create"
//	@Success		201		{object}	models.Board
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards [post]
func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	board, err := h.svc.CreateBoard(r.Context(), req.Name, req.ActorID)
	if err != nil {
		writeServiceError(w, err, "create board")
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

// GetBoard handles GET /api/boards/{boardID}.
//
//	@Summary		Get a single board
//	@Tags			boards
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Success		200		{object}	models.Board
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID} [get]
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.GetBoard(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		writeServiceError(w, err, "get board")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// DeleteBoard handles DELETE /api/boards/{boardID}.
//
//	@Summary		Delete a board with all its nodes and edges
//	@Tags			boards
//	@Param			boardID	path	string	true	"Board ID"
//	@Success		204		"Board deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID} [delete]
func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBoard(r.Context(), chi.URLParam(r, "boardID")); err != nil {
		writeServiceError(w, err, "delete board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNodes handles GET /api/boards/{boardID}/nodes.
//
//	@Summary		List the nodes of a board, optionally scoped to one page
//	@Tags			nodes
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Param			page	query		string	false	"Page name"
//	@Success		200		{object}	NodeListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/nodes [get]
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.Nodes(r.Context(), chi.URLParam(r, "boardID"), r.URL.Query().Get("page"))
	if err != nil {
		writeServiceError(w, err, "list nodes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

// CreateNode handles POST /api/boards/{boardID}/nodes.
//
//	@Summary		Create a node on a board page
//	@Tags			nodes
//	@Accept			json
//	@Produce		json
//	@Param			boardID	path		string				true	"Board ID"
//	@Param			body	body		CreateNodeRequest	true	"Node to create"
//	@Success		201		{object}	models.Node
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/nodes [post]
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	node, err := h.svc.CreateNode(r.Context(), chi.URLParam(r, "boardID"), req.Page, req.ActorID, req.params())
	if err != nil {
		writeServiceError(w, err, "create node")
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// GetNode handles GET /api/nodes/{nodeID}.
//
//	@Summary		Get a single node
//	@Tags			nodes
//	@Produce		json
//	@Param			nodeID	path		string	true	"Node ID"
//	@Success		200		{object}	models.Node
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{nodeID} [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), chi.URLParam(r, "nodeID"))
	if err != nil {
		writeServiceError(w, err, "get node")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// UpdateNode handles PATCH /api/nodes/{nodeID}.
//
//	@Summary		Apply a partial edit to a node
//	@Tags			nodes
//	@Accept			json
//	@Produce		json
//	@Param			nodeID	path		string				true	"Node ID"
//	@Param			body	body		UpdateNodeRequest	true	"Fields to change"
//	@Success		200		{object}	models.Node
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{nodeID} [patch]
func (h *Handler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	node, err := h.svc.UpdateNode(r.Context(), chi.URLParam(r, "nodeID"), req.params())
	if err != nil {
		writeServiceError(w, err, "update node")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /api/nodes/{nodeID}.
//
//	@Summary		Delete a node and its incident edges
//	@Tags			nodes
//	@Param			nodeID	path	string	true	"Node ID"
//	@Success		204		"Node deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{nodeID} [delete]
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), chi.URLParam(r, "nodeID")); err != nil {
		writeServiceError(w, err, "delete node")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptNode handles POST /api/nodes/{nodeID}/accept.
//
//	@Summary		Mark an AI-suggested node as reviewed
//	@Tags			nodes
//	@Produce		json
//	@Param			nodeID	path		string	true	"Node ID"
//	@Success		200		{object}	models.Node
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{nodeID}/accept [post]
func (h *Handler) AcceptNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.AcceptNode(r.Context(), chi.URLParam(r, "nodeID"))
	if err != nil {
		writeServiceError(w, err, "accept node")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// ListEdges handles GET /api/boards/{boardID}/edges.
//
//	@Summary		List the edges of a board, optionally scoped to one page
//	@Tags			edges
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Param			page	query		string	false	"Page name"
//	@Success		200		{object}	EdgeListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/edges [get]
func (h *Handler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.svc.Edges(r.Context(), chi.URLParam(r, "boardID"), r.URL.Query().Get("page"))
	if err != nil {
		writeServiceError(w, err, "list edges")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"edges": edges})
}

// CreateEdge handles POST /api/boards/{boardID}/edges.
//
//	@Summary		Connect two nodes on the same page
//	@Tags			edges
//	@Accept			json
//	@Produce		json
//	@Param			boardID	path		string				true	"Board ID"
//	@Param			body	body		CreateEdgeRequest	true	"Edge to create"
//	@Success		201		{object}	models.Edge
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/edges [post]
func (h *Handler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	edge, err := h.svc.CreateEdge(r.Context(), chi.URLParam(r, "boardID"), req.Page, req.From, req.To)
	if err != nil {
		writeServiceError(w, err, "create edge")
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// DeleteEdge handles DELETE /api/boards/{boardID}/edges/{edgeID}.
//
//	@Summary		Delete a single edge
//	@Tags			edges
//	@Param			boardID	path	string	true	"Board ID"
//	@Param			edgeID	path	string	true	"Edge ID"
//	@Success		204		"Edge deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/edges/{edgeID} [delete]
func (h *Handler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(r.Context(), chi.URLParam(r, "boardID"), chi.URLParam(r, "edgeID")); err != nil {
		writeServiceError(w, err, "delete edge")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyActions handles POST /api/boards/{boardID}/actions.
//
//	@Summary		Resolve and apply an AI proposed-action batch
//	@Tags			actions
//	@Accept			json
//	@Produce		json
//	@Param			boardID	path		string				true	"Board ID"
//	@Param			body	body		ApplyActionsRequest	true	"Proposed actions"
//	@Success		200		{object}	ApplyResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/actions [post]
func (h *Handler) ApplyActions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	var req ApplyActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	result, err := h.svc.ApplyActions(r.Context(), chi.URLParam(r, "boardID"), req.Page, req.ActorID, req.Actions)
	if err != nil {
		writeServiceError(w, err, "apply actions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UndoLast handles POST /api/boards/{boardID}/undo.
//
//	@Summary		Undo the last applied AI batch on a board
//	@Tags			actions
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Success		200		{object}	ApplyResult
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/undo [post]
func (h *Handler) UndoLast(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.UndoLast(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		writeServiceError(w, err, "undo")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// OrganizeBoard handles POST /api/boards/{boardID}/organize.
//
//	@Summary		Reflow the nodes of a page onto a square grid
//	@Tags			boards
//	@Param			boardID	path	string	true	"Board ID"
//	@Param			page	query	string	false	"Page name"
//	@Success		204		"Board organized"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/organize [post]
func (h *Handler) OrganizeBoard(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if _, err := h.svc.GetBoard(r.Context(), boardID); err != nil {
		writeServiceError(w, err, "organize board")
		return
	}
	if err := h.svc.OrganizeBoard(r.Context(), boardID, r.URL.Query().Get("page")); err != nil {
		writeServiceError(w, err, "organize board")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/boards/{boardID}/search.
//
//	@Summary		Full-text search over a board's node content
//	@Tags			search
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), chi.URLParam(r, "boardID"), q, limit)
	if err != nil {
		writeServiceError(w, err, "search")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// SaveSnapshot handles POST /api/boards/{boardID}/snapshot.
//
//	@Summary		Export a board and persist it in the snapshot directory
//	@Tags			boards
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Success		201		{object}	map[string]string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/snapshot [post]
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name, err := h.svc.SaveSnapshot(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		writeServiceError(w, err, "save snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"file": name})
}

// ExportBoard handles GET /api/boards/{boardID}/export.
//
//	@Summary		Export a board as a snapshot document
//	@Tags			boards
//	@Produce		json
//	@Param			boardID	path		string	true	"Board ID"
//	@Success		200		{object}	snapshot.Document
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/boards/{boardID}/export [get]
func (h *Handler) ExportBoard(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.ExportBoard(r.Context(), chi.URLParam(r, "boardID"))
	if err != nil {
		writeServiceError(w, err, "export board")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
