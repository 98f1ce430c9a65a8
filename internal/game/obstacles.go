package game

import (
	"math"
	"slices"
)

// Rect is an axis-aligned rectangle stored as centre plus half extents.
type Rect struct {
	Center Vec2
	Half   Vec2
}

// RectFromCorner builds a Rect from a top-left corner and a size.
func RectFromCorner(x, y, w, h float64) Rect {
	return Rect{Center: V(x+w/2, y+h/2), Half: V(w/2, h/2)}
}

// RectAround returns a square of the given half-size centred on p.
func RectAround(p Vec2, half float64) Rect {
	return Rect{Center: p, Half: V(half, half)}
}

func (r Rect) Min() Vec2 { return r.Center.Sub(r.Half) }
func (r Rect) Max() Vec2 { return r.Center.Add(r.Half) }

// Contains reports whether p lies inside r (edges included).
func (r Rect) Contains(p Vec2) bool {
	return math.Abs(p.X-r.Center.X) <= r.Half.X && math.Abs(p.Y-r.Center.Y) <= r.Half.Y
}

// Overlaps reports whether r and o share interior area. Touching edges do
// not count.
func (r Rect) Overlaps(o Rect) bool {
	return math.Abs(r.Center.X-o.Center.X) < r.Half.X+o.Half.X &&
		math.Abs(r.Center.Y-o.Center.Y) < r.Half.Y+o.Half.Y
}

// Obstacle is a fixed rectangle the rescuers must steer around.
type Obstacle struct {
	ID   int
	Rect Rect
}

// ObstacleField holds every obstacle plus a uniform bucket index for
// collision and look-ahead queries.
type ObstacleField struct {
	obstacles  []Obstacle
	bucketSize float64
	buckets    map[Cell][]int
	settled    bool
}

// NewObstacleField creates an empty field whose index buckets are
// bucketSize pixels wide (normally the grid cell size).
func NewObstacleField(bucketSize float64) *ObstacleField {
	if bucketSize <= 0 {
		bucketSize = 40
	}
	return &ObstacleField{
		bucketSize: bucketSize,
		buckets:    make(map[Cell][]int),
	}
}

// Add registers an obstacle and returns its ID.
func (f *ObstacleField) Add(r Rect) int {
	id := len(f.obstacles)
	f.obstacles = append(f.obstacles, Obstacle{ID: id, Rect: r})
	f.indexObstacle(id)
	return id
}

// All returns the obstacles in insertion order. The slice must not be
// modified.
func (f *ObstacleField) All() []Obstacle { return f.obstacles }

// Len returns the number of obstacles.
func (f *ObstacleField) Len() int { return len(f.obstacles) }

func (f *ObstacleField) bucketRange(r Rect) (Cell, Cell) {
	lo, hi := r.Min(), r.Max()
	return Cell{int(math.Floor(lo.X / f.bucketSize)), int(math.Floor(lo.Y / f.bucketSize))},
		Cell{int(math.Floor(hi.X / f.bucketSize)), int(math.Floor(hi.Y / f.bucketSize))}
}

func (f *ObstacleField) indexObstacle(id int) {
	c0, c1 := f.bucketRange(f.obstacles[id].Rect)
	for y := c0.Y; y <= c1.Y; y++ {
		for x := c0.X; x <= c1.X; x++ {
			k := Cell{x, y}
			f.buckets[k] = append(f.buckets[k], id)
		}
	}
}

func (f *ObstacleField) reindex() {
	f.buckets = make(map[Cell][]int, len(f.buckets))
	for id := range f.obstacles {
		f.indexObstacle(id)
	}
}

// candidates returns the IDs of obstacles sharing a bucket with r, sorted
// so results come back in insertion order.
func (f *ObstacleField) candidates(r Rect) []int {
	c0, c1 := f.bucketRange(r)
	var ids []int
	for y := c0.Y; y <= c1.Y; y++ {
		for x := c0.X; x <= c1.X; x++ {
			ids = append(ids, f.buckets[Cell{x, y}]...)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Query returns every obstacle overlapping r, in insertion order.
func (f *ObstacleField) Query(r Rect) []Obstacle {
	var out []Obstacle
	for _, id := range f.candidates(r) {
		if f.obstacles[id].Rect.Overlaps(r) {
			out = append(out, f.obstacles[id])
		}
	}
	return out
}

// Overlaps reports whether r overlaps any obstacle.
func (f *ObstacleField) Overlaps(r Rect) bool {
	for _, id := range f.candidates(r) {
		if f.obstacles[id].Rect.Overlaps(r) {
			return true
		}
	}
	return false
}

// At returns the first obstacle containing p.
func (f *ObstacleField) At(p Vec2) (Obstacle, bool) {
	for _, id := range f.candidates(Rect{Center: p}) {
		if f.obstacles[id].Rect.Contains(p) {
			return f.obstacles[id], true
		}
	}
	return Obstacle{}, false
}

// PointInside reports whether p lies inside any obstacle.
func (f *ObstacleField) PointInside(p Vec2) bool {
	_, ok := f.At(p)
	return ok
}

// SegmentBlocked reports whether the segment a→b crosses any obstacle.
func (f *ObstacleField) SegmentBlocked(a, b Vec2) bool {
	_, _, hit := f.FirstHit(a, b)
	return hit
}

// FirstHit returns the obstacle the segment a→b enters first and the
// segment parameter t in [0,1] of the entry point.
func (f *ObstacleField) FirstHit(a, b Vec2) (Obstacle, float64, bool) {
	span := Rect{
		Center: a.Add(b).Scale(0.5),
		Half:   V(math.Abs(b.X-a.X)/2, math.Abs(b.Y-a.Y)/2),
	}
	bestT := math.Inf(1)
	best := -1
	for _, id := range f.candidates(span) {
		o := f.obstacles[id]
		if t, ok := rayAABBHitT(a, b, o.Rect.Min(), o.Rect.Max()); ok && t < bestT {
			bestT, best = t, id
		}
	}
	if best < 0 {
		return Obstacle{}, 0, false
	}
	return f.obstacles[best], bestT, true
}

// Settle is the one-time placement correction: any obstacle overlapping a
// keep-clear zone (hospital, spawn point) is pushed out along its axis of
// least penetration. Later calls are no-ops. Returns how many obstacles
// moved.
func (f *ObstacleField) Settle(keep []Rect) int {
	if f.settled {
		return 0
	}
	f.settled = true
	moved := 0
	for i := range f.obstacles {
		r := &f.obstacles[i].Rect
		shifted := false
		for _, k := range keep {
			if !r.Overlaps(k) {
				continue
			}
			d := r.Center.Sub(k.Center)
			penX := r.Half.X + k.Half.X - math.Abs(d.X)
			penY := r.Half.Y + k.Half.Y - math.Abs(d.Y)
			if penX < penY {
				r.Center.X += math.Copysign(penX, nonZeroSign(d.X))
			} else {
				r.Center.Y += math.Copysign(penY, nonZeroSign(d.Y))
			}
			shifted = true
		}
		if shifted {
			moved++
		}
	}
	if moved > 0 {
		f.reindex()
	}
	return moved
}

// nonZeroSign maps 0 to +1 so coincident centres still get pushed.
func nonZeroSign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
