package game

import (
	"testing"

	"github.com/Garsondee/Rescue-Sense/internal/layout"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, s *Sim) {
	t.Helper()
	entries := s.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// dumpSummary prints the scenario summary block.
func dumpSummary(t *testing.T, s *Sim) {
	t.Helper()
	t.Log(s.SimLog.Summary(s))
	t.Log(s.Report().Format())
}

// --- Scenario: Corridor Delivery ---

func TestScenario_CorridorDelivery(t *testing.T) {
	t.Log("=== TestScenario_CorridorDelivery ===")
	t.Log("--- Setup: 6x3 grid, hospital west, victim centre, rescuer east ---")

	s := NewSim(
		WithGridSize(6, 3),
		WithSeed(42),
		WithHospital(0, 1),
		WithVictim(3, 1),
		WithRescuer(5, 1),
	)

	done := s.RunUntil(func(s *Sim) bool { return s.Done() }, 1000)
	dumpSummary(t, s)
	if done < 0 {
		dumpLog(t, s)
		t.Fatal("victim was never delivered")
	}

	pickup, ok := s.SimLog.FirstOf("mission", "pickup")
	if !ok {
		t.Fatal("expected a pickup event")
	}
	dropoff, _ := s.SimLog.LastOf("mission", "dropoff")
	if pickup.Tick > dropoff.Tick {
		t.Fatalf("pickup at T=%d came after drop-off at T=%d", pickup.Tick, dropoff.Tick)
	}
	if !s.SimLog.HasEntry("mission", "dropoff", "(1/1)") {
		t.Error("drop-off should report 1/1 rescued")
	}

	// Grid cells are restored behind the rescuer.
	g := s.Grid()
	if k := g.Kind(Cell{3, 1}); k == CellVictim {
		t.Errorf("victim cell still shows a victim after pickup")
	}
	if k := g.Kind(Cell{5, 1}); k != CellEmpty {
		t.Errorf("spawn cell should be empty once left, got %s", k)
	}
	if k := g.Kind(Cell{0, 1}); k != CellHospital && k != CellAgent {
		t.Errorf("hospital cell should be hospital or agent, got %s", k)
	}

	r := s.Rescuers()[0]
	if r.IsCarrying() {
		t.Error("rescuer should have handed the victim over")
	}
	if r.Stats.Pickups != 1 || r.Stats.Dropoffs != 1 {
		t.Errorf("expected 1 pickup and 1 drop-off, got %d/%d", r.Stats.Pickups, r.Stats.Dropoffs)
	}
}

// --- Scenario: Two Rescuers Race For One Victim ---

func TestScenario_RaceForVictim(t *testing.T) {
	t.Log("=== TestScenario_RaceForVictim ===")
	t.Log("--- Setup: continuous, R0 and R1 equidistant from victim#0, victim#1 far away ---")

	tuning := layout.DefaultTuning()
	tuning.PickupRadius = 38
	s := NewSim(
		WithGridSize(20, 10),
		WithMode(layout.ModeContinuous),
		WithTuning(tuning),
		WithSeed(42),
		WithHospital(0, 0),
		WithVictim(10, 5),
		WithVictim(19, 9),
		WithRescuer(9, 5),
		WithRescuer(11, 5),
	)

	s.RunUntil(func(s *Sim) bool { return s.SimLog.CountCategory("mission", "pickup") > 0 }, 30)
	dumpLog(t, s)

	pickup, ok := s.SimLog.FirstOf("mission", "pickup")
	if !ok {
		t.Fatal("expected someone to pick up victim#0")
	}
	if pickup.Agent != "R0" {
		t.Fatalf("R0 ticks first and should win the race, got %s", pickup.Agent)
	}

	a, b := s.Rescuers()[0], s.Rescuers()[1]
	if !a.IsCarrying() || a.Carrying() != 0 {
		t.Fatalf("R0 should carry victim#0, carrying=%d", a.Carrying())
	}
	if b.IsCarrying() {
		t.Fatal("R1 must not carry a victim already taken")
	}
	if got := len(s.Registry().FreeVictims()); got != 1 {
		t.Fatalf("expected 1 free victim left, got %d", got)
	}

	lost := s.SimLog.FilterAgent("R1")
	found := false
	for _, e := range lost {
		if e.Category == "mission" && e.Key == "target_lost" && e.Tick == pickup.Tick {
			found = true
		}
	}
	if !found {
		t.Fatalf("R1 should notice the lost target in the same tick (T=%d)", pickup.Tick)
	}
	if tgt := b.Target(); tgt.Kind != TargetVictim || tgt.ID != 1 {
		t.Fatalf("R1 should have re-selected victim#1, has %s", tgt)
	}
}

// --- Scenario: Pickup At Close Range ---

func TestScenario_PickupWithinRadius(t *testing.T) {
	s := NewSim(
		WithGridSize(10, 10),
		WithMode(layout.ModeContinuous),
		WithHospital(0, 0),
		WithVictim(5, 5),
		WithRescuer(8, 8),
	)
	v, _ := s.Registry().Victim(0)
	r := s.Rescuers()[0]
	r.Pos = v.Pos.Add(V(5, 0))

	s.Tick(Vec2{})
	if !r.IsCarrying() {
		t.Fatal("rescuer 5 units from the victim should pick it up on the next tick")
	}
	if r.State() != MissionMovingToHospital {
		t.Fatalf("expected state %s, got %s", MissionMovingToHospital, r.State())
	}
	if len(s.Registry().FreeVictims()) != 0 {
		t.Fatal("victim should leave the free list")
	}
}

// --- Scenario: Drop-off Without Cargo ---

func TestScenario_DropOffWhenEmptyIsNoop(t *testing.T) {
	s := NewSim(
		WithGridSize(4, 1),
		WithHospital(0, 0),
		WithVictim(3, 0),
		WithRescuer(0, 0),
	)
	r := s.Rescuers()[0]
	before := r.State()
	if s.tryDropOff(r) {
		t.Fatal("drop-off without a victim must fail")
	}
	if s.Registry().Rescued() != 0 || r.State() != before {
		t.Fatal("drop-off without a victim must change nothing")
	}
	if s.SimLog.CountCategory("mission", "dropoff") != 0 {
		t.Fatal("no drop-off event expected")
	}
}

// --- Scenario: Boxed In ---

func TestScenario_StuckRecoveryFiresOnTick61(t *testing.T) {
	t.Log("=== TestScenario_StuckRecoveryFiresOnTick61 ===")
	t.Log("--- Setup: continuous, body exactly fills a cell ringed by buildings ---")

	tuning := layout.DefaultTuning()
	tuning.AgentRadius = 20
	opts := []SimOption{
		WithGridSize(10, 10),
		WithMode(layout.ModeContinuous),
		WithTuning(tuning),
		WithSeed(5),
		WithHospital(9, 0),
		WithVictim(8, 8),
		WithRescuer(1, 1),
	}
	for _, c := range []Cell{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
		opts = append(opts, WithBuilding(c.X, c.Y))
	}
	s := NewSim(opts...)
	r := s.Rescuers()[0]

	s.RunTicks(60)
	if n := s.SimLog.CountCategory("steer", "stuck_recovery"); n != 0 {
		t.Fatalf("recovery fired too early (%d events)", n)
	}
	if r.StuckTimer() != 60 {
		t.Fatalf("expected stuck timer 60, got %d", r.StuckTimer())
	}

	s.Tick(Vec2{})
	e, ok := s.SimLog.FirstOf("steer", "stuck_recovery")
	if !ok || e.Tick != 61 {
		dumpLog(t, s)
		t.Fatalf("expected first stuck recovery on T=61, got %+v", e)
	}
	if r.StuckTimer() != 0 {
		t.Fatalf("stuck timer should reset after recovery, got %d", r.StuckTimer())
	}
	if r.Stats.Collisions == 0 {
		t.Error("expected collisions against the surrounding buildings")
	}
}

// --- Scenario: Unreachable Victim ---

func TestScenario_UnreachableVictimIsSkippedUntilReplan(t *testing.T) {
	opts := []SimOption{
		WithGridSize(6, 5),
		WithSeed(1),
		WithHospital(0, 4),
		WithVictim(4, 2),
		WithRescuer(0, 0),
	}
	for _, c := range []Cell{{3, 2}, {4, 1}, {4, 3}, {5, 2}} {
		opts = append(opts, WithBuilding(c.X, c.Y))
	}
	s := NewSim(opts...)
	r := s.Rescuers()[0]

	s.RunTicks(119)
	if n := s.SimLog.CountCategory("path", "unreachable"); n != 1 {
		dumpLog(t, s)
		t.Fatalf("expected exactly one unreachable event before the re-plan interval, got %d", n)
	}
	if r.State() != MissionIdle {
		t.Fatalf("expected idle rescuer, got %s", r.State())
	}
	if s.SimLog.CountCategory("mission", "target_lost") != 0 {
		t.Fatal("an unreachable target is not a lost target")
	}

	s.Tick(Vec2{})
	if n := s.SimLog.CountCategory("path", "unreachable"); n != 2 {
		t.Fatalf("expected the victim to be retried at the re-plan interval, got %d events", n)
	}
}

func TestScenario_UnreachableVictimFallsBackToNextNearest(t *testing.T) {
	opts := []SimOption{
		WithGridSize(8, 5),
		WithSeed(1),
		WithHospital(0, 4),
		WithVictim(2, 2), // sealed in
		WithVictim(7, 4),
		WithRescuer(1, 0),
	}
	for _, c := range []Cell{{1, 2}, {2, 1}, {3, 2}, {2, 3}} {
		opts = append(opts, WithBuilding(c.X, c.Y))
	}
	s := NewSim(opts...)

	s.RunUntil(func(s *Sim) bool { return s.Registry().Rescued() == 1 }, 2000)
	if s.Registry().Rescued() != 1 {
		dumpLog(t, s)
		t.Fatal("reachable victim should still be delivered")
	}
	if !s.SimLog.HasEntry("mission", "pickup", "victim#1") {
		t.Fatal("expected pickup of victim#1")
	}
	if s.SimLog.HasEntry("mission", "pickup", "victim#0") {
		t.Fatal("sealed-in victim cannot be picked up")
	}
	if s.RemainingVictims() != 1 {
		t.Fatalf("expected 1 remaining victim, got %d", s.RemainingVictims())
	}
}

// --- Scenario: Player Rescue ---

func TestScenario_PlayerCarriesVictimToHospital(t *testing.T) {
	s := NewSim(
		WithGridSize(6, 3),
		WithHospital(0, 1),
		WithVictim(2, 1),
		WithPlayer(1, 1),
	)
	p := s.Player()
	if p == nil {
		t.Fatal("expected a player")
	}

	for i := 0; i < 100 && !p.IsCarrying(); i++ {
		s.Tick(V(1, 0))
	}
	if !p.IsCarrying() {
		t.Fatal("player should pick up the adjacent victim")
	}
	for i := 0; i < 300 && !s.Done(); i++ {
		s.Tick(V(-1, 0))
	}
	if !s.Done() {
		dumpLog(t, s)
		t.Fatal("player should deliver the victim")
	}
	e, _ := s.SimLog.LastOf("mission", "dropoff")
	if e.Agent != "P" || e.Kind != "player" {
		t.Fatalf("drop-off should be credited to the player, got %s/%s", e.Agent, e.Kind)
	}
}

func TestScenario_PlayerBlockedByBuilding(t *testing.T) {
	s := NewSim(
		WithGridSize(4, 1),
		WithHospital(3, 0),
		WithBuilding(1, 0),
		WithPlayer(0, 0),
	)
	for i := 0; i < 60; i++ {
		s.Tick(V(1, 0))
	}
	p := s.Player()
	if p.Cell() != (Cell{0, 0}) {
		t.Fatalf("player walked into a building: now in %v", p.Cell())
	}
	if p.Stats.Blocked == 0 {
		t.Fatal("expected blocked moves")
	}
}

// --- Scenario: Open Field, Several Rescuers ---

func TestScenario_OpenFieldAllRescued(t *testing.T) {
	for _, mode := range []layout.Mode{layout.ModeGrid, layout.ModeContinuous} {
		t.Run(string(mode), func(t *testing.T) {
			s := NewSim(
				WithGridSize(12, 8),
				WithMode(mode),
				WithSeed(3),
				WithHospital(0, 0),
				WithHospital(11, 7),
				WithVictim(3, 2),
				WithVictim(8, 5),
				WithVictim(5, 6),
				WithVictim(10, 1),
				WithRescuer(0, 7),
				WithRescuer(11, 0),
			)
			done := s.RunUntil(func(s *Sim) bool { return s.Done() }, 6000)
			if done < 0 {
				dumpLog(t, s)
				dumpSummary(t, s)
				t.Fatalf("only %d/%d victims rescued", s.Registry().Rescued(), s.Registry().Total())
			}
			if got := s.SimLog.CountCategory("mission", "dropoff"); got != 4 {
				t.Fatalf("expected 4 drop-offs, got %d", got)
			}
			rep := s.Report()
			if rep.CompletedAt <= 0 || rep.CompletedAt > done {
				t.Fatalf("unexpected completion tick %d (done at %d)", rep.CompletedAt, done)
			}
		})
	}
}

// --- Scenario: Idle Rescuer Leaves The Hospital ---

func TestScenario_IdleRescuerClearsHospitalForCarrier(t *testing.T) {
	t.Log("--- Setup: 10x3 corridor, one hospital west, two rescuers each with a victim ---")
	s := NewSim(
		WithGridSize(10, 3),
		WithSeed(42),
		WithHospital(0, 1),
		WithVictim(2, 1),
		WithVictim(7, 1),
		WithRescuer(3, 1),
		WithRescuer(8, 1),
	)
	first := s.Rescuers()[0]

	s.RunUntil(func(s *Sim) bool { return s.Registry().Rescued() == 1 }, 1000)
	if s.Registry().Rescued() != 1 || first.Stats.Dropoffs != 1 {
		dumpLog(t, s)
		t.Fatal("the nearer rescuer should deliver first")
	}

	done := s.RunUntil(func(s *Sim) bool { return s.Done() }, 2000)
	dumpSummary(t, s)
	if done < 0 {
		dumpLog(t, s)
		t.Fatalf("second carrier never delivered: %d/%d rescued", s.Registry().Rescued(), s.Registry().Total())
	}
	if first.State() != MissionIdle {
		t.Fatalf("first rescuer should be idle, got %s", first.State())
	}
	if first.Cell() != (Cell{0, 0}) {
		t.Fatalf("idle rescuer should park on the first free neighbour (0,0), got %v", first.Cell())
	}
	if s.Rescuers()[1].Stats.Dropoffs != 1 {
		t.Fatal("second rescuer should have delivered its victim")
	}
}

func TestParkingCell_OnlyWhenBlockingAndFree(t *testing.T) {
	s := NewSim(
		WithGridSize(3, 3),
		WithHospital(1, 1),
		WithVictim(2, 2),
		WithBuilding(1, 0),
		WithRescuer(1, 1),
		WithRescuer(2, 1),
	)
	r := s.Rescuers()[0]
	// Up is a building and right is taken, so down is next in order.
	if c, ok := s.parkingCell(r); !ok || c != (Cell{1, 2}) {
		t.Fatalf("expected to park at (1,2), got %v (ok=%v)", c, ok)
	}
	if _, ok := s.parkingCell(s.Rescuers()[1]); ok {
		t.Fatal("a rescuer on a plain cell has no reason to move")
	}
}

// --- Scenario: Free-form Obstacle Placement ---

func TestScenario_ObstacleSettledOffHospital(t *testing.T) {
	s := NewSim(
		WithGridSize(6, 4),
		WithObstacle(30, 0, 40, 40),
		WithHospital(0, 0),
		WithVictim(4, 3),
		WithRescuer(5, 0),
	)
	if !s.SimLog.HasEntry("world", "obstacle_settled", "") {
		t.Fatal("expected the obstacle to be moved off the hospital")
	}
	g := s.Grid()
	if g.Kind(Cell{0, 0}) != CellHospital {
		t.Fatalf("hospital cell should stay a hospital, got %s", g.Kind(Cell{0, 0}))
	}
	if g.Kind(Cell{1, 0}) != CellBuilding {
		t.Fatalf("settled obstacle should block (1,0), got %s", g.Kind(Cell{1, 0}))
	}
	if s.Obstacles().Len() != 1 {
		t.Fatalf("expected 1 obstacle, got %d", s.Obstacles().Len())
	}
}

func TestScenario_VictimOnBuildingIsDropped(t *testing.T) {
	s := NewSim(
		WithGridSize(4, 4),
		WithBuilding(2, 2),
		WithHospital(0, 0),
		WithVictim(2, 2),
		WithVictim(3, 3),
	)
	if s.Registry().Total() != 1 {
		t.Fatalf("expected the victim inside a building to be skipped, total=%d", s.Registry().Total())
	}
	if !s.SimLog.HasEntry("world", "victim_dropped", "inside a building") {
		t.Fatal("expected a victim_dropped event")
	}
}

// --- Scenario: Default Layout ---

func TestScenario_DefaultLayoutMakesProgress(t *testing.T) {
	l := layout.Default()
	s := NewSim(WithLayout(l), WithSeed(42))
	if s.Player() == nil || len(s.Rescuers()) != len(l.Rescuers) {
		t.Fatal("default layout should spawn the player and its rescuers")
	}

	s.RunUntil(func(s *Sim) bool { return s.Registry().Rescued() >= 3 }, 6000)
	dumpSummary(t, s)
	if got := s.Registry().Rescued(); got < 3 {
		dumpLog(t, s)
		t.Fatalf("expected at least 3 rescues on the default layout, got %d", got)
	}
}
