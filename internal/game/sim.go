package game

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Garsondee/Rescue-Sense/internal/layout"
)

// Sim is the simulation context: it owns the grid, the obstacle field, the
// shared registry and every agent, and advances them one tick at a time.
// It has no Ebiten dependency so tests and the headless report drive it
// directly.
type Sim struct {
	ID     string
	Mode   layout.Mode
	Tuning layout.Tuning
	SimLog *SimLog

	grid     *GridMap
	field    *ObstacleField
	registry *WorldRegistry
	player   *Agent
	agents   []*Agent // autonomous rescuers, registration order

	rng      *rand.Rand
	logger   *log.Logger
	thoughts *ThoughtLog
	tick     int

	// builder state, consumed by NewSim
	cols, rows    int
	buildings     []Cell
	obstacles     []Rect
	victims       []Cell
	hospitals     []Cell
	playerSpawn   *Cell
	rescuerSpawns []Cell
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // layout, grid size, tuning, seed, logging
	simOptWorld                      // buildings, obstacles, victims, hospitals
	simOptAgent                      // player and rescuers
)

// SimOption is a builder function applied to a Sim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*Sim)
}

// WithLayout copies a world layout (grid, entities, mode and tuning).
func WithLayout(l *layout.Layout) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.cols, s.rows = l.Cols, l.Rows
		s.Tuning = l.Tuning
		if l.Mode != "" {
			s.Mode = l.Mode
		}
		for _, b := range l.Buildings {
			s.buildings = append(s.buildings, Cell{b.X, b.Y})
		}
		for _, o := range l.Obstacles {
			s.obstacles = append(s.obstacles, RectFromCorner(o.X, o.Y, o.W, o.H))
		}
		for _, v := range l.Victims {
			s.victims = append(s.victims, Cell{v.X, v.Y})
		}
		for _, h := range l.Hospitals {
			s.hospitals = append(s.hospitals, Cell{h.X, h.Y})
		}
		if l.Player != nil {
			s.playerSpawn = &Cell{l.Player.X, l.Player.Y}
		}
		for _, r := range l.Rescuers {
			s.rescuerSpawns = append(s.rescuerSpawns, Cell{r.X, r.Y})
		}
	}}
}

// WithGridSize sets the grid dimensions in cells.
func WithGridSize(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.cols, s.rows = cols, rows
	}}
}

// WithMode selects grid or continuous navigation.
func WithMode(m layout.Mode) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.Mode = m
	}}
}

// WithTuning replaces the behaviour constants.
func WithTuning(t layout.Tuning) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.Tuning = t
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation only
	}}
}

// WithVerbose enables per-tick position logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.SimLog = NewSimLog(v)
	}}
}

// WithLogger mirrors every SimLog event to l at debug level.
func WithLogger(l *log.Logger) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.logger = l
	}}
}

// WithThoughtLog feeds mission events to an on-screen thought log.
func WithThoughtLog(tl *ThoughtLog) SimOption {
	return SimOption{simOptInfra, func(s *Sim) {
		s.thoughts = tl
	}}
}

// WithBuilding blocks a grid cell.
func WithBuilding(x, y int) SimOption {
	return SimOption{simOptWorld, func(s *Sim) {
		s.buildings = append(s.buildings, Cell{x, y})
	}}
}

// WithObstacle adds a free-form obstacle in world units (top-left corner
// plus size). It is rasterised into the grid after placement correction.
func WithObstacle(x, y, w, h float64) SimOption {
	return SimOption{simOptWorld, func(s *Sim) {
		s.obstacles = append(s.obstacles, RectFromCorner(x, y, w, h))
	}}
}

// WithVictim places a victim at the centre of a cell.
func WithVictim(x, y int) SimOption {
	return SimOption{simOptWorld, func(s *Sim) {
		s.victims = append(s.victims, Cell{x, y})
	}}
}

// WithHospital places a hospital at the centre of a cell.
func WithHospital(x, y int) SimOption {
	return SimOption{simOptWorld, func(s *Sim) {
		s.hospitals = append(s.hospitals, Cell{x, y})
	}}
}

// WithPlayer spawns the human-controlled rescuer.
func WithPlayer(x, y int) SimOption {
	return SimOption{simOptAgent, func(s *Sim) {
		s.playerSpawn = &Cell{x, y}
	}}
}

// WithRescuer spawns an autonomous rescuer. Rescuers tick in the order they
// are added.
func WithRescuer(x, y int) SimOption {
	return SimOption{simOptAgent, func(s *Sim) {
		s.rescuerSpawns = append(s.rescuerSpawns, Cell{x, y})
	}}
}

// NewSim constructs a Sim from the given options in ordered passes:
//  1. Infrastructure (layout, size, mode, tuning, seed, logging)
//  2. World entities, then the grid and obstacle field are built
//  3. Player and rescuers
func NewSim(opts ...SimOption) *Sim {
	s := &Sim{
		ID:     uuid.NewString(),
		Mode:   layout.ModeGrid,
		Tuning: layout.DefaultTuning(),
		SimLog: NewSimLog(false),
		cols:   20,
		rows:   15,
	}
	for _, kind := range []simOptionKind{simOptInfra, simOptWorld, simOptAgent} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(s)
			}
		}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(1)) // #nosec G404 -- deterministic default
	}
	s.buildWorld()
	s.spawnAgents()
	return s
}

// buildWorld lays out obstacles, buildings, hospitals and victims. Free-form
// obstacles get their one-time placement correction before they are
// rasterised, so hospitals, victims and spawn points stay reachable.
func (s *Sim) buildWorld() {
	t := s.Tuning
	s.grid = NewGridMap(s.cols, s.rows, t.CellSize)
	s.field = NewObstacleField(t.CellSize)
	s.registry = NewWorldRegistry()

	for _, r := range s.obstacles {
		s.field.Add(r)
	}
	var keep []Rect
	for _, c := range s.hospitals {
		keep = append(keep, s.grid.CellRect(c))
	}
	if s.playerSpawn != nil {
		keep = append(keep, s.grid.CellRect(*s.playerSpawn))
	}
	for _, c := range s.rescuerSpawns {
		keep = append(keep, s.grid.CellRect(c))
	}
	for _, c := range s.victims {
		keep = append(keep, s.grid.CellRect(c))
	}
	if moved := s.field.Settle(keep); moved > 0 {
		s.event(nil, "world", "obstacle_settled", fmt.Sprintf("%d obstacles moved off keep-clear zones", moved), float64(moved))
	}
	for _, o := range s.field.All() {
		s.grid.MarkRect(o.Rect)
	}

	for _, c := range s.buildings {
		if s.grid.Set(c, CellBuilding) {
			s.field.Add(s.grid.CellRect(c))
		}
	}
	s.grid.Seal()

	for _, c := range s.hospitals {
		s.registry.AddHospital(s.grid.CellCenter(c), c)
		s.grid.Set(c, CellHospital)
	}
	for _, c := range s.victims {
		if !s.grid.IsPassable(c) {
			s.event(nil, "world", "victim_dropped", fmt.Sprintf("victim at %v is inside a building", c), 0)
			continue
		}
		s.registry.AddVictim(s.grid.CellCenter(c), c)
		s.grid.Set(c, CellVictim)
	}
}

func (s *Sim) spawnAgents() {
	t := s.Tuning
	if s.playerSpawn != nil {
		c := *s.playerSpawn
		s.player = newAgent(0, AgentPlayer, s.grid.CellCenter(c), c, t.MaxSpeed, t.MaxForce, nil)
		s.grid.Set(c, CellPlayer)
	}
	for i, c := range s.rescuerSpawns {
		stuck := NewStuckDetector(t.StuckWindow, t.StuckTicks, t.StuckThreshold)
		a := newAgent(i, AgentRescuer, s.grid.CellCenter(c), c, t.MaxSpeed, t.MaxForce, stuck)
		s.agents = append(s.agents, a)
		s.grid.Set(c, CellAgent)
	}
}

// Tick advances the world by one step: the player first (steered by
// intent), then every rescuer in registration order. Each agent's whole
// pipeline completes before the next one starts, which is what keeps
// victim pickup race-free without locks.
func (s *Sim) Tick(intent Vec2) {
	s.tick++
	if s.player != nil {
		s.updatePlayer(s.player, intent)
	}
	for _, a := range s.agents {
		s.updateRescuer(a)
	}

	for _, a := range s.all() {
		s.SimLog.AddVerbose(s.tick, a.Label, a.Kind.String(), "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", a.Pos.X, a.Pos.Y), a.Vel.Len())
	}
}

// RunTicks advances n ticks with no player input.
func (s *Sim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.Tick(Vec2{})
	}
}

// RunUntil advances up to maxTicks, stopping early once predicate returns
// true. Returns the tick at which the predicate held, or -1.
func (s *Sim) RunUntil(predicate func(*Sim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		s.Tick(Vec2{})
		if predicate(s) {
			return s.tick
		}
	}
	return -1
}

// RemainingVictims is the win-condition signal: victims not yet delivered.
func (s *Sim) RemainingVictims() int { return s.registry.Remaining() }

// Done reports whether every victim has been delivered.
func (s *Sim) Done() bool { return s.registry.Remaining() == 0 }

// CurrentTick returns the number of ticks run so far.
func (s *Sim) CurrentTick() int { return s.tick }

// Grid exposes the occupancy grid for read-only use.
func (s *Sim) Grid() *GridMap { return s.grid }

// Obstacles exposes the obstacle field for read-only use.
func (s *Sim) Obstacles() *ObstacleField { return s.field }

// Registry exposes the victim/hospital registry for read-only use.
func (s *Sim) Registry() *WorldRegistry { return s.registry }

// Player returns the human-controlled agent, or nil.
func (s *Sim) Player() *Agent { return s.player }

// Rescuers returns the autonomous agents in tick order.
func (s *Sim) Rescuers() []*Agent { return s.agents }

// all returns every agent in tick order.
func (s *Sim) all() []*Agent {
	out := make([]*Agent, 0, len(s.agents)+1)
	if s.player != nil {
		out = append(out, s.player)
	}
	return append(out, s.agents...)
}

// metric is the target-selection distance for the current mode.
func (s *Sim) metric() Metric {
	if s.Mode == layout.ModeContinuous {
		return MetricEuclidean
	}
	return MetricManhattan
}

// event records a structured event in the SimLog, mirrors it to the logger
// and, for mission events, to the thought log. a may be nil for world
// events.
func (s *Sim) event(a *Agent, category, key, value string, num float64) {
	label, kind := "--", "--"
	if a != nil {
		label, kind = a.Label, a.Kind.String()
	}
	s.SimLog.Add(s.tick, label, kind, category, key, value, num)
	if s.logger != nil {
		s.logger.Debug(key, "tick", s.tick, "agent", label, "category", category, "detail", value)
	}
	if s.thoughts != nil && a != nil && category == "mission" {
		s.thoughts.Add(s.tick, label, a.Kind, value)
	}
}
