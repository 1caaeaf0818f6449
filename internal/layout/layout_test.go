package layout

import (
	"testing"

	"github.com/rbeckett/ideabomb/internal/models"
)

func TestPlaceIndependent_EmptyPageGrid(t *testing.T) {
	p := NewPlanner(NewCache(nil))

	seen := make(map[[2]float64]bool)
	for i := 0; i < 7; i++ {
		r := p.PlaceIndependent("n" + string(rune('0'+i)))
		wantX := 100 + float64(i%3)*350
		wantY := 100 + float64(i/3)*400
		if r.X != wantX || r.Y != wantY {
			t.Errorf("node %d at (%v,%v), want (%v,%v)", i, r.X, r.Y, wantX, wantY)
		}
		key := [2]float64{r.X, r.Y}
		if seen[key] {
			t.Errorf("node %d shares coordinates (%v,%v)", i, r.X, r.Y)
		}
		seen[key] = true
	}
}

func TestPlaceIndependent_FrontierPastExistingNodes(t *testing.T) {
	nodes := []models.Node{
		{ID: "a", X: 0, Y: 0, Width: 320, Height: 300},
		{ID: "b", X: 500, Y: 200, Width: 320, Height: 300},
	}
	p := NewPlanner(NewCache(nodes))

	r := p.PlaceIndependent("new")
	if r.X != 500+320+100 {
		t.Errorf("x = %v, want %v", r.X, 500+320+100)
	}
}

func TestPlaceChild_SiblingsStack(t *testing.T) {
	parent := []models.Node{{ID: "p", X: 100, Y: 100, Width: 320, Height: 300}}
	p := NewPlanner(NewCache(parent))

	r1, ok := p.PlaceChild("p", "c1")
	if !ok {
		t.Fatal("parent not found")
	}
	r2, ok := p.PlaceChild("p", "c2")
	if !ok {
		t.Fatal("parent not found for second child")
	}

	wantX := 100.0 + 320 + 100
	if r1.X != wantX || r2.X != wantX {
		t.Errorf("children x = %v, %v, want both %v", r1.X, r2.X, wantX)
	}
	if r1.Y != 100 {
		t.Errorf("first sibling y = %v, want parent y", r1.Y)
	}
	if r2.Y-r1.Y < r1.H+50 {
		t.Errorf("sibling gap = %v, want >= %v", r2.Y-r1.Y, r1.H+50)
	}
}

func TestPlaceChild_UnknownParent(t *testing.T) {
	p := NewPlanner(NewCache(nil))
	if _, ok := p.PlaceChild("ghost", "c"); ok {
		t.Error("expected unknown parent to fail")
	}
}

func TestPlaceChild_PlannedNodeCanBeParent(t *testing.T) {
	p := NewPlanner(NewCache(nil))
	root := p.PlaceIndependent("root")
	child, ok := p.PlaceChild("root", "child")
	if !ok {
		t.Fatal("freshly planned node should be a valid parent")
	}
	if child.X != root.X+root.W+100 {
		t.Errorf("child x = %v, want %v", child.X, root.X+root.W+100)
	}
}

func TestNewCache_DefaultDimensions(t *testing.T) {
	c := NewCache([]models.Node{{ID: "n", X: 10, Y: 20}})
	r := c["n"]
	if r.W != models.DefaultNodeWidth || r.H != models.DefaultNodeHeight {
		t.Errorf("rect = %+v, want default dimensions", r)
	}
}

func TestReflow_SquareGrid(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	out := Reflow(ids)
	if len(out) != 5 {
		t.Fatalf("len(out) = %d", len(out))
	}
	// ceil(sqrt(5)) = 3 columns.
	if r := out["d"]; r.X != 100 || r.Y != 100+340 {
		t.Errorf("d at (%v,%v), want (100,440)", r.X, r.Y)
	}
	if r := out["a"]; r.X != 100 || r.Y != 100 {
		t.Errorf("a at (%v,%v), want (100,100)", r.X, r.Y)
	}
}

func TestReflow_Empty(t *testing.T) {
	if out := Reflow(nil); len(out) != 0 {
		t.Errorf("out = %v, want empty", out)
	}
}
