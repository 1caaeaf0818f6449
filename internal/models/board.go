// Package models defines the domain types for IdeaBomb.
package models

import "time"

// Node types. The type determines which optional fields are meaningful.
const (
	TypeNote     = "Note"
	TypeTodo     = "Todo"
	TypeCalendar = "Calendar"
	TypeImage    = "Image"
	TypeYouTube  = "YouTube"
	TypeLink     = "Link"
)

// AI review states for nodes touched by the action pipeline.
const (
	AIStatusSuggested = "suggested"
	AIStatusAccepted  = "accepted"
)

// Default node dimensions used whenever width/height are unset.
const (
	DefaultNodeWidth  = 320
	DefaultNodeHeight = 300
)

// Board is a named collection of pages, nodes, and edges.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoItem is one checklist entry of a Todo node.
type TodoItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Node is a single placed content unit on a board page.
type Node struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Page    string `json:"page"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Label   string `json:"label,omitempty"`
	Color   string `json:"color,omitempty"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Type-specific derived fields.
	Items   []TodoItem        `json:"items,omitempty"`    // Todo
	Events  map[string]string `json:"events,omitempty"`   // Calendar: date/time key -> description
	URL     string            `json:"url,omitempty"`      // Link, Image
	VideoID string            `json:"video_id,omitempty"` // YouTube

	// AIStatus is "suggested" while an AI-created or AI-modified node awaits
	// human review, "accepted" (or empty) otherwise.
	AIStatus  string    `json:"ai_status,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Edge is a directed connection between two nodes on the same page.
type Edge struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Page    string `json:"page"`
	From    string `json:"from"`
	To      string `json:"to"`
}
