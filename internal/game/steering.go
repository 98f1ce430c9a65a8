package game

import (
	"math"
	"math/rand"
)

// avoidAngles are the look-ahead probe offsets, tried in order. Only the
// first probe that lands inside an obstacle produces a force.
var avoidAngles = [5]float64{0, 15, -15, 30, -30}

// Kinematics is the force-based motion state of one agent. Forces
// accumulate in Acc during a tick and are consumed by Integrate.
type Kinematics struct {
	Pos      Vec2
	Vel      Vec2
	Acc      Vec2
	MaxSpeed float64
	MaxForce float64
}

// ApplyForce adds f to this tick's acceleration.
func (k *Kinematics) ApplyForce(f Vec2) {
	k.Acc = k.Acc.Add(f)
}

// Steer applies the force that turns the current velocity toward desired,
// clamped to MaxForce, and returns it.
func (k *Kinematics) Steer(desired Vec2) Vec2 {
	steering := desired.Sub(k.Vel).Limit(k.MaxForce)
	k.ApplyForce(steering)
	return steering
}

// Seek steers toward target at full speed, slowing linearly to zero inside
// arrivalRadius so the agent settles on the target instead of orbiting it.
func (k *Kinematics) Seek(target Vec2, arrivalRadius float64) Vec2 {
	offset := target.Sub(k.Pos)
	dist := offset.Len()
	speed := k.MaxSpeed
	if arrivalRadius > 0 && dist < arrivalRadius {
		speed *= dist / arrivalRadius
	}
	return k.Steer(offset.Normalize().Scale(speed))
}

// Integrate folds the accumulated force into velocity, caps the speed, then
// moves. The cap must come after the force or energy grows without bound.
func (k *Kinematics) Integrate() {
	k.Vel = k.Vel.Add(k.Acc).Limit(k.MaxSpeed)
	k.Pos = k.Pos.Add(k.Vel)
	k.Acc = Vec2{}
}

// Heading is the unit direction of travel, falling back to the direction of
// fallback when the agent is at rest.
func (k *Kinematics) Heading(fallback Vec2) Vec2 {
	if h := k.Vel.Normalize(); !h.IsZero() {
		return h
	}
	return fallback.Normalize()
}

// AvoidObstacles probes lookAhead units ahead along the heading and at
// ±15° and ±30°. For the first probe inside an obstacle it pushes sideways,
// away from the obstacle, with a force that grows as the obstacle gets
// closer (capped at forceMul*MaxForce). Returns the applied force, zero if
// nothing was in the way.
func (k *Kinematics) AvoidObstacles(field *ObstacleField, lookAhead, forceMul float64, fallback Vec2) Vec2 {
	if field == nil || field.Len() == 0 || lookAhead <= 0 {
		return Vec2{}
	}
	heading := k.Heading(fallback)
	if heading.IsZero() {
		return Vec2{}
	}
	for _, deg := range avoidAngles {
		dir := heading.Rotate(deg * math.Pi / 180)
		probe := k.Pos.Add(dir.Scale(lookAhead))
		obs, ok := field.At(probe)
		if !ok {
			continue
		}

		dist := lookAhead
		if _, t, hit := field.FirstHit(k.Pos, probe); hit {
			dist = t * lookAhead
		}

		side := heading.Perp()
		if side.Dot(obs.Rect.Center.Sub(k.Pos)) > 0 {
			side = side.Scale(-1)
		}
		strength := math.Min(k.MaxForce*lookAhead/math.Max(dist, 1), forceMul*k.MaxForce)
		force := side.Scale(strength)
		k.ApplyForce(force)
		return force
	}
	return Vec2{}
}

// EscapeForce returns a random-direction push of the given magnitude.
func EscapeForce(rng *rand.Rand, magnitude float64) Vec2 {
	a := rng.Float64() * 2 * math.Pi
	return V(math.Cos(a), math.Sin(a)).Scale(magnitude)
}

// StuckDetector watches a rolling window of recent positions. When the
// window stays tighter than threshold for more than limit consecutive
// ticks, Observe reports that a recovery push is due and the timer resets.
type StuckDetector struct {
	window    []Vec2
	head      int
	count     int
	threshold float64
	limit     int
	timer     int
}

// NewStuckDetector keeps the last size positions and fires after more than
// limit ticks with a spread under threshold.
func NewStuckDetector(size, limit int, threshold float64) *StuckDetector {
	if size < 1 {
		size = 1
	}
	return &StuckDetector{
		window:    make([]Vec2, size),
		threshold: threshold,
		limit:     limit,
	}
}

// Observe records p and returns true on the tick recovery should fire.
func (d *StuckDetector) Observe(p Vec2) bool {
	d.window[d.head] = p
	d.head = (d.head + 1) % len(d.window)
	if d.count < len(d.window) {
		d.count++
	}

	if d.Spread() < d.threshold {
		d.timer++
	} else {
		d.timer = 0
	}
	if d.timer > d.limit {
		d.timer = 0
		return true
	}
	return false
}

// Spread is the largest pairwise distance between remembered positions.
func (d *StuckDetector) Spread() float64 {
	best := 0.0
	for i := 0; i < d.count; i++ {
		for j := i + 1; j < d.count; j++ {
			if dist := d.window[i].Dist(d.window[j]); dist > best {
				best = dist
			}
		}
	}
	return best
}

// Timer is the number of consecutive low-displacement ticks seen so far.
func (d *StuckDetector) Timer() int { return d.timer }

// Reset forgets the window, used when an agent has nothing to move toward.
func (d *StuckDetector) Reset() {
	d.head, d.count, d.timer = 0, 0, 0
}
