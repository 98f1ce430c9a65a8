package game

import "math"

// CellKind is what currently occupies a grid cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellBuilding
	CellVictim
	CellHospital
	CellPlayer
	CellAgent
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellBuilding:
		return "building"
	case CellVictim:
		return "victim"
	case CellHospital:
		return "hospital"
	case CellPlayer:
		return "player"
	case CellAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Manhattan returns the 4-connected hop distance between two cells on an
// empty grid.
func (c Cell) Manhattan(o Cell) int {
	return absInt(c.X-o.X) + absInt(c.Y-o.Y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// GridMap is the occupancy grid. Building cells are fixed once the map is
// sealed; every other kind tracks dynamic occupancy.
type GridMap struct {
	cols     int
	rows     int
	cellSize float64
	cells    []CellKind
	sealed   bool
}

// NewGridMap returns an all-empty cols x rows grid of cellSize-pixel cells.
func NewGridMap(cols, rows int, cellSize float64) *GridMap {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &GridMap{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		cells:    make([]CellKind, cols*rows),
	}
}

func (g *GridMap) Cols() int { return g.cols }
func (g *GridMap) Rows() int { return g.rows }
func (g *GridMap) CellSize() float64 { return g.cellSize }
func (g *GridMap) index(c Cell) int { return c.Y*g.cols + c.X }
func (g *GridMap) InBounds(c Cell) bool { return c.X >= 0 && c.Y >= 0 && c.X < g.cols && c.Y < g.rows }

// Kind returns the occupant of c. Out-of-bounds cells read as Building so
// callers that forget to bounds-check still treat them as impassable.
func (g *GridMap) Kind(c Cell) CellKind {
	if !g.InBounds(c) {
		return CellBuilding
	}
	return g.cells[g.index(c)]
}

// IsPassable is false iff c is a Building or outside the grid.
func (g *GridMap) IsPassable(c Cell) bool {
	return g.Kind(c) != CellBuilding
}

// Set writes kind into c and reports whether the write happened. Writes
// outside the grid, over a Building, or of a new Building after Seal are
// ignored.
func (g *GridMap) Set(c Cell, kind CellKind) bool {
	if !g.InBounds(c) {
		return false
	}
	i := g.index(c)
	if g.cells[i] == CellBuilding {
		return false
	}
	if kind == CellBuilding && g.sealed {
		return false
	}
	g.cells[i] = kind
	return true
}

// Seal freezes the set of Building cells.
func (g *GridMap) Seal() { g.sealed = true }

// MarkRect blocks every cell that overlaps r. Only effective before Seal.
func (g *GridMap) MarkRect(r Rect) {
	if g.sealed || g.cols == 0 || g.rows == 0 {
		return
	}
	lo := r.Min()
	hi := r.Max()
	c0 := g.CellOf(lo)
	// Shrink the far edge slightly so a rect ending exactly on a cell
	// boundary does not claim the next cell.
	c1 := g.CellOf(V(hi.X-1e-9, hi.Y-1e-9))
	c0.X = max(0, c0.X)
	c0.Y = max(0, c0.Y)
	c1.X = min(g.cols-1, c1.X)
	c1.Y = min(g.rows-1, c1.Y)
	for cy := c0.Y; cy <= c1.Y; cy++ {
		for cx := c0.X; cx <= c1.X; cx++ {
			g.cells[cy*g.cols+cx] = CellBuilding
		}
	}
}

// CellOf converts a world position to the cell containing it.
func (g *GridMap) CellOf(p Vec2) Cell {
	return Cell{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// CellCenter converts a cell to the world position of its centre.
func (g *GridMap) CellCenter(c Cell) Vec2 {
	return V(
		float64(c.X)*g.cellSize+g.cellSize/2,
		float64(c.Y)*g.cellSize+g.cellSize/2,
	)
}

// CellRect returns the world-space square covered by c.
func (g *GridMap) CellRect(c Cell) Rect {
	half := g.cellSize / 2
	return Rect{Center: g.CellCenter(c), Half: V(half, half)}
}

// WorldSize returns the grid extent in world units.
func (g *GridMap) WorldSize() Vec2 {
	return V(float64(g.cols)*g.cellSize, float64(g.rows)*g.cellSize)
}
