package game

import "github.com/Garsondee/Rescue-Sense/internal/layout"

// ObjectKind tags a drawable world object.
type ObjectKind int

const (
	ObjectObstacle ObjectKind = iota
	ObjectHospital
	ObjectVictim
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectObstacle:
		return "obstacle"
	case ObjectHospital:
		return "hospital"
	case ObjectVictim:
		return "victim"
	default:
		return "unknown"
	}
}

// ObjectView is the read-only render description of a world object.
// Inactive victims (carried or rescued) are still listed so callers can
// count them, but are not drawn.
type ObjectView struct {
	Kind   ObjectKind
	ID     int
	Pos    Vec2
	Half   Vec2
	Active bool
}

// Objects lists obstacles, then hospitals, then victims.
func (s *Sim) Objects() []ObjectView {
	half := s.Tuning.CellSize / 2
	out := make([]ObjectView, 0, s.field.Len()+len(s.registry.Hospitals())+s.registry.Total())
	for _, o := range s.field.All() {
		out = append(out, ObjectView{Kind: ObjectObstacle, ID: o.ID, Pos: o.Rect.Center, Half: o.Rect.Half, Active: true})
	}
	for _, h := range s.registry.Hospitals() {
		out = append(out, ObjectView{Kind: ObjectHospital, ID: h.ID, Pos: h.Pos, Half: V(half, half), Active: true})
	}
	for _, v := range s.registry.Victims() {
		out = append(out, ObjectView{Kind: ObjectVictim, ID: int(v.ID), Pos: v.Pos, Half: V(half/2, half/2), Active: v.Active()})
	}
	return out
}

// AgentView is the read-only render description of an agent.
type AgentView struct {
	Label    string
	Kind     AgentKind
	Pos      Vec2
	Vel      Vec2
	Radius   float64
	State    MissionState
	Carrying bool
	Path     []Vec2 // remaining waypoints in world units
}

// Agents lists the player (if any) and then the rescuers.
func (s *Sim) Agents() []AgentView {
	all := s.all()
	out := make([]AgentView, 0, len(all))
	for _, a := range all {
		av := AgentView{
			Label:    a.Label,
			Kind:     a.Kind,
			Pos:      a.Pos,
			Vel:      a.Vel,
			Radius:   s.Tuning.AgentRadius,
			State:    a.state,
			Carrying: a.IsCarrying(),
		}
		for _, c := range a.path {
			av.Path = append(av.Path, s.grid.CellCenter(c))
		}
		if s.Mode == layout.ModeContinuous && a.target.Kind != TargetNone {
			av.Path = append(av.Path, a.target.Pos)
		}
		out = append(out, av)
	}
	return out
}
