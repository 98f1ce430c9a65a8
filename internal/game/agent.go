package game

import "fmt"

// AgentKind distinguishes the human-controlled rescuer from autonomous ones.
type AgentKind int

const (
	AgentPlayer  AgentKind = iota // driven by keyboard intent
	AgentRescuer                  // autonomous
)

func (k AgentKind) String() string {
	if k == AgentPlayer {
		return "player"
	}
	return "rescuer"
}

// MissionState is an agent's phase in the seek → carry → deliver cycle.
type MissionState int

const (
	MissionIdle             MissionState = iota // nothing reachable to do
	MissionSeekingVictim                        // heading for a free victim
	MissionMovingToHospital                     // carrying, heading for a hospital
)

func (ms MissionState) String() string {
	switch ms {
	case MissionIdle:
		return "idle"
	case MissionSeekingVictim:
		return "seeking"
	case MissionMovingToHospital:
		return "delivering"
	default:
		return "unknown"
	}
}

// TargetKind says what an agent's current target refers to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetVictim
	TargetHospital
)

// TargetKey identifies a target independent of where it is.
type TargetKey struct {
	Kind TargetKind
	ID   int
}

// Target is the entity an agent is currently moving toward.
type Target struct {
	TargetKey
	Pos  Vec2
	Cell Cell
}

func (t Target) String() string {
	switch t.Kind {
	case TargetVictim:
		return fmt.Sprintf("victim#%d", t.ID)
	case TargetHospital:
		return fmt.Sprintf("hospital#%d", t.ID)
	default:
		return "none"
	}
}

// AgentStats are per-agent counters surfaced in reports.
type AgentStats struct {
	Pickups         int
	Dropoffs        int
	Plans           int
	Unreachable     int
	StuckRecoveries int
	Collisions      int
	Blocked         int
	Distance        float64
}

// Agent is a rescuer moving through the world. The player is an Agent too;
// it just takes its steering from input instead of a target.
type Agent struct {
	ID    int
	Label string
	Kind  AgentKind
	Kinematics

	cell     Cell
	state    MissionState
	carrying VictimID

	target      Target
	path        []Cell
	pathFor     TargetKey
	detour      []Cell // occupied cells to route around on the next plan
	lastReplan  int
	unreachable map[TargetKey]bool

	stuck *StuckDetector
	nudge Vec2

	Stats AgentStats
}

func newAgent(id int, kind AgentKind, pos Vec2, cell Cell, maxSpeed, maxForce float64, stuck *StuckDetector) *Agent {
	label := fmt.Sprintf("R%d", id)
	state := MissionSeekingVictim
	if kind == AgentPlayer {
		label = "P"
		state = MissionIdle
	}
	return &Agent{
		ID:    id,
		Label: label,
		Kind:  kind,
		Kinematics: Kinematics{
			Pos:      pos,
			MaxSpeed: maxSpeed,
			MaxForce: maxForce,
		},
		cell:        cell,
		state:       state,
		carrying:    NoVictim,
		unreachable: make(map[TargetKey]bool),
		stuck:       stuck,
	}
}

func (a *Agent) State() MissionState { return a.state }
func (a *Agent) Cell() Cell { return a.cell }
func (a *Agent) Target() Target { return a.target }
func (a *Agent) Carrying() VictimID { return a.carrying }
func (a *Agent) IsCarrying() bool { return a.carrying != NoVictim }

// Path returns a copy of the remaining waypoints.
func (a *Agent) Path() []Cell {
	out := make([]Cell, len(a.path))
	copy(out, a.path)
	return out
}

// StuckTimer exposes the stuck detector's counter.
func (a *Agent) StuckTimer() int {
	if a.stuck == nil {
		return 0
	}
	return a.stuck.Timer()
}

func (a *Agent) clearTarget() {
	a.target = Target{}
	a.path = nil
	a.pathFor = TargetKey{}
}

func (a *Agent) cellKind() CellKind {
	if a.Kind == AgentPlayer {
		return CellPlayer
	}
	return CellAgent
}
