package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Garsondee/Rescue-Sense/internal/game"
)

func TestRunOnce_CorridorCompletes(t *testing.T) {
	rs := runOnce(1, 7, 1000,
		game.WithGridSize(6, 3),
		game.WithSeed(7),
		game.WithHospital(0, 1),
		game.WithVictim(3, 1),
		game.WithRescuer(5, 1),
	)

	assert.Equal(t, 1, rs.total)
	assert.Equal(t, 1, rs.rescued)
	assert.Positive(t, rs.completedAt)
	assert.Equal(t, 1, rs.pickups)
	assert.Equal(t, 1, rs.dropoffs)
	assert.LessOrEqual(t, rs.firstPickupTick, rs.firstDropoffTick)
	assert.NotEmpty(t, rs.session)
}

func TestRunOnce_TickBudgetExhausted(t *testing.T) {
	rs := runOnce(1, 1, 5,
		game.WithGridSize(20, 3),
		game.WithHospital(0, 1),
		game.WithVictim(10, 1),
		game.WithRescuer(19, 1),
	)

	assert.Equal(t, 0, rs.rescued)
	assert.Equal(t, -1, rs.completedAt)
	assert.Equal(t, "n/a", tickString(rs.completedAt))
}

func TestFirstTick(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: "path", Key: "plan"},
		{Tick: 9, Category: "mission", Key: "pickup"},
		{Tick: 12, Category: "mission", Key: "pickup"},
	}
	assert.Equal(t, 9, firstTick(entries, "mission", "pickup"))
	assert.Equal(t, -1, firstTick(entries, "mission", "dropoff"))
}

func TestAvgHelpers(t *testing.T) {
	assert.Equal(t, 0.0, avg(10, 0))
	assert.InDelta(t, 2.5, avg(5, 2), 1e-9)
	assert.Equal(t, "n/a", avgTickString(nil))
	assert.Equal(t, "15.0", avgTickString([]int{10, 20}))
}

func TestFormatAggregate(t *testing.T) {
	all := []runStats{
		{rescued: 6, total: 6, completedAt: 900, firstPickupTick: 100, targetLost: 2},
		{rescued: 4, total: 6, completedAt: -1, firstPickupTick: 140, stuckRecoveries: 3},
	}
	out := formatAggregate(all)
	assert.Contains(t, out, "runs=2 completed=1 rescued=10/12")
	assert.Contains(t, out, "completion=900.0 first_pickup=120.0")
	assert.Contains(t, out, "target_lost=1.0")
	assert.Contains(t, out, "stuck_recovery=1.5")
}

func TestJoinSet(t *testing.T) {
	assert.Equal(t, "none", joinSet(nil))
	assert.Equal(t, "R0,R2", joinSet(map[string]struct{}{"R2": {}, "R0": {}}))
}
