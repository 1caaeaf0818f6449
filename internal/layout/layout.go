// Package layout assigns canvas positions to newly created board nodes.
//
// A Planner is built once per action batch from a snapshot of the visible
// page. Children of a known parent stack to its right; everything else goes
// onto a grid anchored past the right edge of the existing nodes.
package layout

import (
	"math"

	"github.com/rbeckett/ideabomb/internal/models"
)

// Placement constants.
const (
	childGapX  = 100 // horizontal gap between a parent and its children
	siblingGap = 50  // vertical gap between stacked siblings
	gridCols   = 3   // columns of the independent-placement grid
	gridPitchX = 350 // column spacing of the independent grid
	gridPitchY = 400 // row spacing of the independent grid
	gridOrigin = 100 // top/left origin for grids on an empty page

	reflowPitch = 340 // cell pitch of the organize-board reflow grid
)

// Rect is a node's position and size in canvas space.
type Rect struct {
	X, Y, W, H float64
}

// Cache maps node ids (persisted or batch-local) to their rects. It is
// seeded with the visible page, extended as nodes are planned, and pruned
// when a delete removes an entry.
type Cache map[string]Rect

// NewCache seeds a cache from the given nodes, substituting default
// dimensions where width/height are unset.
func NewCache(nodes []models.Node) Cache {
	c := make(Cache, len(nodes))
	for _, n := range nodes {
		c[n.ID] = Rect{X: n.X, Y: n.Y, W: orDefault(n.Width, models.DefaultNodeWidth), H: orDefault(n.Height, models.DefaultNodeHeight)}
	}
	return c
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// Planner computes placements for one batch. Not safe for concurrent use;
// build one per Resolve call.
type Planner struct {
	cache    Cache
	frontier float64            // x anchor for independent placements
	count    int                // shared counter across independent placements
	nextY    map[string]float64 // per-parent y for the next stacked sibling
}

// NewPlanner builds a planner over the seeded cache. The independent-grid
// frontier is anchored to the right of all nodes currently in the cache.
func NewPlanner(cache Cache) *Planner {
	frontier := float64(gridOrigin)
	for _, r := range cache {
		if right := r.X + r.W + childGapX; right > frontier {
			frontier = right
		}
	}
	return &Planner{
		cache:    cache,
		frontier: frontier,
		nextY:    make(map[string]float64),
	}
}

// Cache exposes the planner's working cache.
func (p *Planner) Cache() Cache { return p.cache }

// PlaceChild positions a new node relative to its parent: to the right of
// the parent, stacked below earlier siblings of the same parent. Returns
// false when the parent is unknown to the cache.
func (p *Planner) PlaceChild(parentID, id string) (Rect, bool) {
	parent, ok := p.cache[parentID]
	if !ok {
		return Rect{}, false
	}
	y, ok := p.nextY[parentID]
	if !ok {
		y = parent.Y
	}
	r := Rect{
		X: parent.X + parent.W + childGapX,
		Y: y,
		W: models.DefaultNodeWidth,
		H: models.DefaultNodeHeight,
	}
	p.nextY[parentID] = r.Y + r.H + siblingGap
	p.cache[id] = r
	return r, true
}

// PlaceIndependent positions a new node on the frontier grid, advancing the
// shared counter.
func (p *Planner) PlaceIndependent(id string) Rect {
	r := Rect{
		X: p.frontier + float64(p.count%gridCols)*gridPitchX,
		Y: gridOrigin + float64(p.count/gridCols)*gridPitchY,
		W: models.DefaultNodeWidth,
		H: models.DefaultNodeHeight,
	}
	p.count++
	p.cache[id] = r
	return r
}

// Remove prunes an entry after a delete action.
func (p *Planner) Remove(id string) {
	delete(p.cache, id)
}

// Reflow computes organize-board positions for all given nodes: a square
// grid of ceil(sqrt(n)) columns at a fixed cell pitch, in input order.
func Reflow(ids []string) map[string]Rect {
	n := len(ids)
	if n == 0 {
		return map[string]Rect{}
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	out := make(map[string]Rect, n)
	for i, id := range ids {
		out[id] = Rect{
			X: gridOrigin + float64(i%cols)*reflowPitch,
			Y: gridOrigin + float64(i/cols)*reflowPitch,
			W: models.DefaultNodeWidth,
			H: models.DefaultNodeHeight,
		}
	}
	return out
}
