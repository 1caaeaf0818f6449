package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/rbeckett/ideabomb/internal/boardservice"
	"github.com/rbeckett/ideabomb/internal/models"
	"github.com/rbeckett/ideabomb/internal/resolver"
)

// CreateBoardRequest is the request body for creating a board.
type CreateBoardRequest struct {
	Name    string `json:"name" example:"Project kickoff" validate:"required"`
	ActorID string `json:"actor_id" example:"alice"`
}

// Validate checks the request fields.
func (r CreateBoardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// CreateNodeRequest is the request body for creating a node.
type CreateNodeRequest struct {
	Page    string            `json:"page" example:"main"`
	ActorID string            `json:"actor_id" example:"alice"`
	Type    string            `json:"type" example:"Todo"`
	Content string            `json:"content" example:"- Buy milk"`
	Label   string            `json:"label,omitempty"`
	Color   string            `json:"color,omitempty" example:"#ffd54f"`
	X       *float64          `json:"x,omitempty"`
	Y       *float64          `json:"y,omitempty"`
	Width   *float64          `json:"width,omitempty"`
	Height  *float64          `json:"height,omitempty"`
	Items   []models.TodoItem `json:"items,omitempty"`
	Events  map[string]string `json:"events,omitempty"`
}

// Validate checks the request fields.
func (r CreateNodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required.When(len(r.Items) == 0 && len(r.Events) == 0)),
	)
}

func (r CreateNodeRequest) params() boardservice.NodeParams {
	return boardservice.NodeParams{
		Type:    r.Type,
		Content: r.Content,
		Label:   r.Label,
		Color:   r.Color,
		X:       r.X,
		Y:       r.Y,
		W:       r.Width,
		H:       r.Height,
		Items:   r.Items,
		Events:  r.Events,
	}
}

// UpdateNodeRequest is the request body for a partial node update.
type UpdateNodeRequest struct {
	Type    string            `json:"type,omitempty"`
	Content string            `json:"content,omitempty"`
	Label   string            `json:"label,omitempty"`
	Color   string            `json:"color,omitempty"`
	X       *float64          `json:"x,omitempty"`
	Y       *float64          `json:"y,omitempty"`
	Width   *float64          `json:"width,omitempty"`
	Height  *float64          `json:"height,omitempty"`
	Items   []models.TodoItem `json:"items,omitempty"`
	Events  map[string]string `json:"events,omitempty"`
}

func (r UpdateNodeRequest) params() boardservice.NodeParams {
	return boardservice.NodeParams{
		Type:    r.Type,
		Content: r.Content,
		Label:   r.Label,
		Color:   r.Color,
		X:       r.X,
		Y:       r.Y,
		W:       r.Width,
		H:       r.Height,
		Items:   r.Items,
		Events:  r.Events,
	}
}

// CreateEdgeRequest is the request body for connecting two nodes.
type CreateEdgeRequest struct {
	Page string `json:"page" example:"main"`
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// Validate checks the request fields.
func (r CreateEdgeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	)
}

// ApplyActionsRequest carries a proposed-action list from an AI collaborator.
type ApplyActionsRequest struct {
	Page    string            `json:"page" example:"main"`
	ActorID string            `json:"actor_id" example:"assistant"`
	Actions []resolver.Action `json:"actions" validate:"required"`
}

// Validate checks the request fields.
func (r ApplyActionsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Actions, validation.Required),
	)
}

// ApplyResult summarises one applied batch (aliased from the domain layer).
type ApplyResult = boardservice.ApplyResult

// BoardListResponse wraps board listings.
type BoardListResponse struct {
	Boards []models.Board `json:"boards" validate:"required"`
}

// NodeListResponse wraps node listings.
type NodeListResponse struct {
	Nodes []models.Node `json:"nodes" validate:"required"`
}

// EdgeListResponse wraps edge listings.
type EdgeListResponse struct {
	Edges []models.Edge `json:"edges" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	NodeID  string `json:"node_id" validate:"required"`
	BoardID string `json:"board_id" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
