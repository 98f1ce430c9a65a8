package game

import "math"

// HasLineOfSight returns true if the segment a→b does not cross any
// obstacle. Uses simple ray-vs-AABB tests.
func HasLineOfSight(a, b Vec2, field *ObstacleField) bool {
	if field == nil {
		return true
	}
	return !field.SegmentBlocked(a, b)
}

// rayAABBHitT returns the first segment parameter t in [0,1] where the line
// o→e enters the box. The bool is false when no hit exists.
func rayAABBHitT(o, e, lo, hi Vec2) (float64, bool) {
	dx := e.X - o.X
	dy := e.Y - o.Y

	tMin := 0.0
	tMax := 1.0

	// Check X slab
	if math.Abs(dx) < 1e-12 {
		if o.X < lo.X || o.X > hi.X {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (lo.X - o.X) * invD
		t2 := (hi.X - o.X) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Check Y slab
	if math.Abs(dy) < 1e-12 {
		if o.Y < lo.Y || o.Y > hi.Y {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (lo.Y - o.Y) * invD
		t2 := (hi.Y - o.Y) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}
	return tMin, true
}
