package game

import "testing"

func TestGridMap_OutOfBoundsIsBuilding(t *testing.T) {
	g := NewGridMap(4, 3, 40)
	for _, c := range []Cell{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		if g.Kind(c) != CellBuilding {
			t.Fatalf("expected %v to read as building, got %s", c, g.Kind(c))
		}
		if g.IsPassable(c) {
			t.Fatalf("%v outside the grid must not be passable", c)
		}
		if g.Set(c, CellAgent) {
			t.Fatalf("write outside the grid at %v should be refused", c)
		}
	}
}

func TestGridMap_BuildingsAreStatic(t *testing.T) {
	g := NewGridMap(4, 4, 40)
	if !g.Set(Cell{1, 1}, CellBuilding) {
		t.Fatal("expected building write before seal to succeed")
	}
	g.Seal()

	if g.Set(Cell{1, 1}, CellEmpty) {
		t.Fatal("a building cell must never be overwritten")
	}
	if g.Set(Cell{2, 2}, CellBuilding) {
		t.Fatal("no new building may appear after seal")
	}
	if g.Kind(Cell{2, 2}) != CellEmpty {
		t.Fatalf("expected (2,2) to stay empty, got %s", g.Kind(Cell{2, 2}))
	}

	// Dynamic occupants come and go freely.
	if !g.Set(Cell{3, 3}, CellAgent) || !g.Set(Cell{3, 3}, CellEmpty) {
		t.Fatal("dynamic writes on passable cells should succeed")
	}
}

func TestGridMap_PassableKinds(t *testing.T) {
	g := NewGridMap(6, 1, 40)
	kinds := []CellKind{CellEmpty, CellVictim, CellHospital, CellPlayer, CellAgent}
	for i, k := range kinds {
		g.Set(Cell{i, 0}, k)
	}
	g.Set(Cell{5, 0}, CellBuilding)
	for i, k := range kinds {
		if !g.IsPassable(Cell{i, 0}) {
			t.Fatalf("%s cell should be passable", k)
		}
	}
	if g.IsPassable(Cell{5, 0}) {
		t.Fatal("building cell should not be passable")
	}
}

func TestGridMap_CellConversions(t *testing.T) {
	g := NewGridMap(20, 15, 40)
	if c := g.CellOf(V(85, 39.9)); c != (Cell{2, 0}) {
		t.Fatalf("expected (2,0), got %v", c)
	}
	if p := g.CellCenter(Cell{2, 0}); p != V(100, 20) {
		t.Fatalf("expected centre (100,20), got %v", p)
	}
	if s := g.WorldSize(); s != V(800, 600) {
		t.Fatalf("expected world 800x600, got %v", s)
	}
	r := g.CellRect(Cell{1, 1})
	if r.Min() != V(40, 40) || r.Max() != V(80, 80) {
		t.Fatalf("unexpected cell rect %v..%v", r.Min(), r.Max())
	}
}

func TestGridMap_MarkRectBlocksOverlappedCells(t *testing.T) {
	g := NewGridMap(10, 10, 40)
	// Spans x 50..130 and y 40..80: columns 1..3, row 1 only.
	g.MarkRect(RectFromCorner(50, 40, 80, 40))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			want := y == 1 && x >= 1 && x <= 3
			got := g.Kind(Cell{x, y}) == CellBuilding
			if want != got {
				t.Fatalf("cell (%d,%d): building=%v, want %v", x, y, got, want)
			}
		}
	}

	g.Seal()
	g.MarkRect(RectFromCorner(0, 0, 40, 40))
	if g.Kind(Cell{0, 0}) == CellBuilding {
		t.Fatal("MarkRect after seal must be ignored")
	}
}

func TestCellKind_String(t *testing.T) {
	if CellHospital.String() != "hospital" || CellBuilding.String() != "building" {
		t.Fatalf("unexpected names %q %q", CellHospital, CellBuilding)
	}
}
