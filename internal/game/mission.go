package game

import (
	"fmt"

	"github.com/Garsondee/Rescue-Sense/internal/layout"
)

// updateRescuer runs one autonomous agent's full pipeline: target
// selection, path/steering, move commit, then the pickup/drop-off check.
func (s *Sim) updateRescuer(a *Agent) {
	s.refreshTarget(a)

	if a.target.Kind == TargetNone {
		a.stuck.Reset()
		if c, ok := s.parkingCell(a); ok {
			a.Seek(s.grid.CellCenter(c), s.Tuning.ArrivalRadius)
		} else {
			a.Steer(Vec2{})
		}
		s.commitMove(a)
		return
	}

	steering := true
	if s.Mode == layout.ModeContinuous {
		s.steerContinuous(a)
	} else {
		steering = s.steerGrid(a)
	}
	if steering {
		s.checkStuck(a)
	}
	s.commitMove(a)
	s.checkTransactions(a)
}

// parkingCell picks the neighbour an idle rescuer should move to when it is
// standing on a hospital or victim cell, so carriers can still reach it.
// ok is false when the agent is already clear or boxed in.
func (s *Sim) parkingCell(a *Agent) (Cell, bool) {
	if !s.registry.HospitalAt(a.cell) && !s.registry.FreeVictimAt(a.cell) {
		return Cell{}, false
	}
	for _, d := range bfsDirs {
		c := Cell{a.cell.X + d.X, a.cell.Y + d.Y}
		if s.canPark(a, c) {
			return c, true
		}
	}
	return Cell{}, false
}

func (s *Sim) canPark(a *Agent, c Cell) bool {
	if !s.grid.IsPassable(c) || s.registry.HospitalAt(c) || s.registry.FreeVictimAt(c) {
		return false
	}
	if s.Mode != layout.ModeContinuous {
		return s.grid.Kind(c) == CellEmpty
	}
	// Continuous mode never updates occupancy after spawn.
	if s.field.Overlaps(RectAround(s.grid.CellCenter(c), s.Tuning.AgentRadius)) {
		return false
	}
	for _, o := range s.all() {
		if o != a && o.cell == c {
			return false
		}
	}
	return true
}

// updatePlayer applies the input intent exactly like a seek force, then
// lets the player pick up and drop off victims by proximity.
func (s *Sim) updatePlayer(a *Agent, intent Vec2) {
	a.Steer(intent.Normalize().Scale(a.MaxSpeed))
	s.commitMove(a)

	if a.IsCarrying() {
		s.tryDropOff(a)
		return
	}
	id, ok := s.registry.NearestVictim(a.Pos, a.cell, MetricEuclidean, nil)
	if !ok {
		return
	}
	v, _ := s.registry.Victim(id)
	if a.Pos.Dist(v.Pos) < s.Tuning.PickupRadius && s.reachable(a, v.Pos) {
		s.pickup(a, id)
	}
}

// refreshTarget keeps the current target while it stays valid and
// re-selects the nearest one when it does not, or when the periodic
// re-plan interval comes round.
func (s *Sim) refreshTarget(a *Agent) {
	prev := a.target.TargetKey
	if s.tick-a.lastReplan >= s.Tuning.ReplanInterval {
		a.lastReplan = s.tick
		clear(a.unreachable)
		a.target = Target{}
	}

	if a.IsCarrying() {
		a.state = MissionMovingToHospital
		if a.target.Kind != TargetHospital {
			a.target = Target{}
			if h, ok := s.registry.NearestHospital(a.Pos, a.cell, s.metric(), func(id int) bool {
				return a.unreachable[TargetKey{TargetHospital, id}]
			}); ok {
				a.target = Target{TargetKey: TargetKey{TargetHospital, h.ID}, Pos: h.Pos, Cell: h.Cell}
			}
		}
	} else {
		a.state = MissionSeekingVictim
		valid := a.target.Kind == TargetVictim && s.registry.IsFree(VictimID(a.target.ID))
		if !valid {
			if a.target.Kind == TargetVictim && !a.unreachable[a.target.TargetKey] {
				s.event(a, "mission", "target_lost", fmt.Sprintf("%s taken, re-selecting", a.target), float64(a.target.ID))
			}
			a.target = Target{}
			if id, ok := s.registry.NearestVictim(a.Pos, a.cell, s.metric(), func(id VictimID) bool {
				return a.unreachable[TargetKey{TargetVictim, int(id)}]
			}); ok {
				v, _ := s.registry.Victim(id)
				a.target = Target{TargetKey: TargetKey{TargetVictim, int(id)}, Pos: v.Pos, Cell: v.Cell}
			}
		}
	}

	if a.target.Kind == TargetNone {
		a.state = MissionIdle
	}
	if a.target.TargetKey != prev {
		a.path = nil
		if a.target.Kind != TargetNone {
			s.event(a, "mission", "retarget", fmt.Sprintf("%s → %s", targetLabel(prev), a.target), 0)
		}
	}
}

func targetLabel(k TargetKey) string {
	return Target{TargetKey: k}.String()
}

// steerGrid follows the BFS path toward the target, planning lazily when
// there is no path or the target changed. Returns false when the agent is
// idling because the target cannot be reached.
func (s *Sim) steerGrid(a *Agent) bool {
	for len(a.path) > 0 && a.path[0] == a.cell {
		a.path = a.path[1:]
	}
	if a.cell != a.target.Cell && (len(a.path) == 0 || a.pathFor != a.target.TargetKey) {
		a.path = s.grid.FindPath(a.cell, a.target.Cell, a.detour...)
		if len(a.path) == 0 && len(a.detour) > 0 {
			// The occupied cell is the only way through; wait for it to clear.
			a.path = s.grid.FindPath(a.cell, a.target.Cell)
		}
		a.detour = nil
		a.pathFor = a.target.TargetKey
		a.Stats.Plans++
		if len(a.path) == 0 {
			s.markUnreachable(a)
			a.Steer(Vec2{})
			return false
		}
		s.event(a, "path", "plan", fmt.Sprintf("%d hops to %s", len(a.path), a.target), float64(len(a.path)))
	}

	wp := a.target.Pos
	if len(a.path) > 0 {
		wp = s.grid.CellCenter(a.path[0])
	}
	a.Seek(wp, s.Tuning.ArrivalRadius)
	return true
}

// markUnreachable idles the agent this tick and excludes the target from
// selection until the next re-plan interval.
func (s *Sim) markUnreachable(a *Agent) {
	a.Stats.Unreachable++
	a.unreachable[a.target.TargetKey] = true
	s.event(a, "path", "unreachable", fmt.Sprintf("no path from %v to %s", a.cell, a.target), 0)
	a.clearTarget()
	a.state = MissionIdle
}

// steerContinuous seeks the target directly, adding obstacle avoidance and
// any nudge left over from last tick's collision.
func (s *Sim) steerContinuous(a *Agent) {
	t := s.Tuning
	a.Seek(a.target.Pos, t.ArrivalRadius)
	a.AvoidObstacles(s.field, t.LookAhead, t.AvoidForceMul, a.target.Pos.Sub(a.Pos))
	if !a.nudge.IsZero() {
		a.ApplyForce(a.nudge)
		a.nudge = Vec2{}
	}
}

// checkStuck injects a random escape force when the agent has barely moved
// for too long.
func (s *Sim) checkStuck(a *Agent) {
	if a.stuck == nil || !a.stuck.Observe(a.Pos) {
		return
	}
	f := EscapeForce(s.rng, s.Tuning.EscapeForce)
	a.ApplyForce(f)
	a.path = nil
	a.Stats.StuckRecoveries++
	s.event(a, "steer", "stuck_recovery", fmt.Sprintf("escape (%.2f,%.2f) at (%.0f,%.0f)", f.X, f.Y, a.Pos.X, a.Pos.Y), a.stuck.Spread())
}

// commitMove integrates the agent's forces and then validates the result:
// the world edge clamps, obstacles bounce (continuous) or reject (grid),
// and another agent's space is never entered.
func (s *Sim) commitMove(a *Agent) {
	prev := a.Pos
	a.Integrate()
	s.clampToWorld(a)

	if s.collidesWithAgent(a, prev) {
		a.Pos = prev
		a.Vel = a.Vel.Scale(0.5)
		a.Stats.Blocked++
		s.SimLog.AddVerbose(s.tick, a.Label, a.Kind.String(), "move", "agent_backoff", "", 0)
		return
	}

	if s.Mode == layout.ModeContinuous {
		if s.field.Overlaps(RectAround(a.Pos, s.Tuning.AgentRadius)) {
			a.Pos = prev
			a.Vel = a.Vel.Scale(-0.5)
			a.nudge = EscapeForce(s.rng, a.MaxForce)
			a.Stats.Collisions++
			s.SimLog.AddVerbose(s.tick, a.Label, a.Kind.String(), "move", "collision",
				fmt.Sprintf("bounced at (%.0f,%.0f)", prev.X, prev.Y), 0)
			return
		}
		a.cell = s.grid.CellOf(a.Pos)
		a.Stats.Distance += a.Pos.Dist(prev)
		return
	}

	next := s.grid.CellOf(a.Pos)
	if next != a.cell {
		switch k := s.grid.Kind(next); k {
		case CellBuilding, CellAgent, CellPlayer:
			if k != CellBuilding {
				a.detour = append(a.detour, next)
				a.path = nil
			}
			a.Pos = prev
			a.Vel = Vec2{}
			a.Stats.Blocked++
			s.SimLog.AddVerbose(s.tick, a.Label, a.Kind.String(), "move", "blocked",
				fmt.Sprintf("%v is %s", next, k), 0)
			return
		}
		s.grid.Set(a.cell, s.baseKind(a.cell))
		a.cell = next
		s.grid.Set(next, a.cellKind())
		if len(a.path) > 0 {
			if a.path[0] == next {
				a.path = a.path[1:]
			} else {
				// Knocked off the path; plan again from here next tick.
				a.path = nil
			}
		}
	}
	a.Stats.Distance += a.Pos.Dist(prev)
}

// baseKind is what a cell shows once an agent leaves it.
func (s *Sim) baseKind(c Cell) CellKind {
	switch {
	case s.registry.HospitalAt(c):
		return CellHospital
	case s.registry.FreeVictimAt(c):
		return CellVictim
	default:
		return CellEmpty
	}
}

func (s *Sim) clampToWorld(a *Agent) {
	size := s.grid.WorldSize()
	r := s.Tuning.AgentRadius
	if a.Pos.X < r {
		a.Pos.X, a.Vel.X = r, 0
	} else if a.Pos.X > size.X-r {
		a.Pos.X, a.Vel.X = size.X-r, 0
	}
	if a.Pos.Y < r {
		a.Pos.Y, a.Vel.Y = r, 0
	} else if a.Pos.Y > size.Y-r {
		a.Pos.Y, a.Vel.Y = size.Y-r, 0
	}
}

// collidesWithAgent is the simple back-off rule: a move that brings two
// agents' bodies closer while they overlap is refused. Grid mode relies on
// cell occupancy instead.
func (s *Sim) collidesWithAgent(a *Agent, prev Vec2) bool {
	if s.Mode != layout.ModeContinuous {
		return false
	}
	minDist := 2 * s.Tuning.AgentRadius
	for _, o := range s.all() {
		if o == a {
			continue
		}
		d := a.Pos.Dist(o.Pos)
		if d < minDist && d < prev.Dist(o.Pos) {
			return true
		}
	}
	return false
}

// reachable reports whether a can touch something at p. Continuous mode
// refuses pickups and drop-offs through an obstacle.
func (s *Sim) reachable(a *Agent, p Vec2) bool {
	if s.Mode != layout.ModeContinuous {
		return true
	}
	return HasLineOfSight(a.Pos, p, s.field)
}

// checkTransactions performs the state transitions that mutate the shared
// registry: pickup when close to the target victim, drop-off when close to
// the nearest hospital.
func (s *Sim) checkTransactions(a *Agent) {
	if a.IsCarrying() {
		s.tryDropOff(a)
		return
	}
	if a.target.Kind != TargetVictim {
		return
	}
	if a.Pos.Dist(a.target.Pos) < s.Tuning.PickupRadius && s.reachable(a, a.target.Pos) {
		s.pickup(a, VictimID(a.target.ID))
	}
}

// pickup transfers a victim to a. The registry drops it from the
// searchable set before any other agent runs.
func (s *Sim) pickup(a *Agent, id VictimID) bool {
	if a.IsCarrying() || !s.registry.Pickup(id) {
		return false
	}
	v, _ := s.registry.Victim(id)
	if v.Cell != a.cell && s.grid.Kind(v.Cell) == CellVictim {
		s.grid.Set(v.Cell, s.baseKind(v.Cell))
	}
	a.carrying = id
	a.state = MissionMovingToHospital
	a.clearTarget()
	a.Stats.Pickups++
	s.event(a, "mission", "pickup", fmt.Sprintf("picked up victim#%d", id), float64(id))
	return true
}

// tryDropOff delivers the carried victim if a hospital is within reach.
// Calling it while not carrying changes nothing.
func (s *Sim) tryDropOff(a *Agent) bool {
	if !a.IsCarrying() {
		return false
	}
	h, ok := s.registry.NearestHospital(a.Pos, a.cell, MetricEuclidean, nil)
	if !ok || a.Pos.Dist(h.Pos) >= s.Tuning.DropoffRadius || !s.reachable(a, h.Pos) {
		return false
	}
	id := a.carrying
	if !s.registry.DropOff(id) {
		return false
	}
	a.carrying = NoVictim
	if a.Kind == AgentRescuer {
		a.state = MissionSeekingVictim
	}
	a.clearTarget()
	a.Stats.Dropoffs++
	s.event(a, "mission", "dropoff", fmt.Sprintf("delivered victim#%d to hospital#%d (%d/%d)",
		id, h.ID, s.registry.Rescued(), s.registry.Total()), float64(s.registry.Rescued()))
	return true
}
