// Package resolver turns a loosely-structured list of AI-proposed actions
// into a concrete, ordered batch of board mutations.
//
// Resolution is a pure function: it takes an immutable snapshot of the
// visible page and returns a diff. The caller owns applying that diff as a
// single atomic write and the subscribe/re-render loop around it.
package resolver

import (
	"strings"

	"github.com/rbeckett/ideabomb/internal/models"
)

// Kind classifies a proposed action after the boundary decode step.
type Kind int

const (
	KindUnknown Kind = iota
	KindCreate
	KindUpdate
	KindDelete
	KindEdge
	KindOrganize
)

// Action is one AI-proposed operation as it arrives from the chat pipeline.
// The shape is deliberately loose; unknown action names and missing fields
// are tolerated so the resolver stays forward-compatible with evolving AI
// output.
type Action struct {
	Action string `json:"action"`

	// ID is batch-local for creation actions and a persisted id for
	// update/delete targets.
	ID           string `json:"id,omitempty"`
	Type         string `json:"type,omitempty"`
	NodeType     string `json:"nodeType,omitempty"`
	Content      string `json:"content,omitempty"`
	ContentMatch string `json:"content_match,omitempty"`
	Label        string `json:"label,omitempty"`
	Color        string `json:"color,omitempty"`

	// Edge endpoints, each either a batch-local id or a persisted id.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	Data   *ActionData       `json:"data,omitempty"`
	Events map[string]string `json:"events,omitempty"`
}

// ActionData carries optional explicit payloads that bypass text parsing.
type ActionData struct {
	Items   []models.TodoItem `json:"items,omitempty"`
	Events  map[string]string `json:"events,omitempty"`
	URL     string            `json:"url,omitempty"`
	VideoID string            `json:"video_id,omitempty"`
}

// Classify maps the action name to a Kind. Unrecognised names yield
// KindUnknown and are skipped by the resolver, not rejected.
func (a Action) Classify() Kind {
	switch a.Action {
	case "create_node", "create_calendar_plan", "create_video", "create_link":
		return KindCreate
	case "update_node":
		return KindUpdate
	case "delete_node":
		return KindDelete
	case "create_edge":
		return KindEdge
	case "organize_board":
		return KindOrganize
	default:
		return KindUnknown
	}
}

// NodeType resolves the node type for a creation action. An explicit
// type/nodeType field wins over inference from the action name.
func (a Action) NodeTypeResolved() string {
	if t := normalizeType(a.Type); t != "" {
		return t
	}
	if t := normalizeType(a.NodeType); t != "" {
		return t
	}
	switch a.Action {
	case "create_calendar_plan":
		return models.TypeCalendar
	case "create_video":
		return models.TypeYouTube
	case "create_link":
		return models.TypeLink
	default:
		return models.TypeNote
	}
}

func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "note":
		return models.TypeNote
	case "todo":
		return models.TypeTodo
	case "calendar":
		return models.TypeCalendar
	case "image":
		return models.TypeImage
	case "youtube", "video":
		return models.TypeYouTube
	case "link":
		return models.TypeLink
	default:
		return ""
	}
}
