package game

import "slices"

// bfsDirs is the fixed neighbour order: up, right, down, left. Keeping it
// fixed makes equal-length paths deterministic.
var bfsDirs = [4]Cell{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// FindPath returns the shortest 4-connected path from start to goal, start
// exclusive and goal inclusive. Only Building cells block the search;
// agents and other dynamic occupants are resolved when a move is committed.
// Cells in avoid are treated as blocked for this search only. The result is
// empty when the goal cannot be reached, when start == goal, or when either
// end lies outside the grid.
func (g *GridMap) FindPath(start, goal Cell, avoid ...Cell) []Cell {
	if start == goal || !g.InBounds(start) || !g.IsPassable(goal) {
		return nil
	}

	// parent[i] holds the index of the cell we came from, -1 = unvisited.
	parent := make([]int, len(g.cells))
	for i := range parent {
		parent[i] = -1
	}
	si := g.index(start)
	gi := g.index(goal)
	parent[si] = si

	queue := make([]int, 0, 64)
	queue = append(queue, si)
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if cur == gi {
			return g.buildPath(parent, si, gi)
		}
		cx, cy := cur%g.cols, cur/g.cols
		for _, d := range bfsDirs {
			n := Cell{cx + d.X, cy + d.Y}
			if !g.IsPassable(n) || slices.Contains(avoid, n) {
				continue
			}
			ni := g.index(n)
			if parent[ni] != -1 {
				continue
			}
			parent[ni] = cur
			queue = append(queue, ni)
		}
	}
	return nil
}

func (g *GridMap) buildPath(parent []int, si, gi int) []Cell {
	var cells []Cell
	for i := gi; i != si; i = parent[i] {
		cells = append(cells, Cell{i % g.cols, i / g.cols})
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
