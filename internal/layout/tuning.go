package layout

import (
	"errors"
	"fmt"
)

// Tuning holds every behaviour constant the simulation uses. Distances are
// in world units (pixels), durations in ticks.
type Tuning struct {
	CellSize float64 `yaml:"cell_size"`

	MaxSpeed      float64 `yaml:"max_speed"`
	MaxForce      float64 `yaml:"max_force"`
	ArrivalRadius float64 `yaml:"arrival_radius"`
	AgentRadius   float64 `yaml:"agent_radius"`

	PickupRadius   float64 `yaml:"pickup_radius"`
	DropoffRadius  float64 `yaml:"dropoff_radius"`
	ReplanInterval int     `yaml:"replan_interval"`

	LookAhead     float64 `yaml:"look_ahead"`
	AvoidForceMul float64 `yaml:"avoid_force_mul"`

	StuckWindow    int     `yaml:"stuck_window"`
	StuckTicks     int     `yaml:"stuck_ticks"`
	StuckThreshold float64 `yaml:"stuck_threshold"`
	EscapeForce    float64 `yaml:"escape_force"`
}

// DefaultTuning returns the single unified policy used by both navigation
// modes.
func DefaultTuning() Tuning {
	return Tuning{
		CellSize:       40,
		MaxSpeed:       5.0,
		MaxForce:       0.5,
		ArrivalRadius:  40,
		AgentRadius:    12,
		PickupRadius:   20,
		DropoffRadius:  20,
		ReplanInterval: 120,
		LookAhead:      50,
		AvoidForceMul:  3,
		StuckWindow:    30,
		StuckTicks:     60,
		StuckThreshold: 2.0,
		EscapeForce:    2.0,
	}
}

// Validate reports non-positive constants that would break the steering
// maths or the stuck detector.
func (t Tuning) Validate() error {
	var errs []error
	pos := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%w: tuning %s must be > 0, got %g", ErrInvalidLayout, name, v))
		}
	}
	pos("cell_size", t.CellSize)
	pos("max_speed", t.MaxSpeed)
	pos("max_force", t.MaxForce)
	pos("arrival_radius", t.ArrivalRadius)
	pos("agent_radius", t.AgentRadius)
	pos("pickup_radius", t.PickupRadius)
	pos("dropoff_radius", t.DropoffRadius)
	pos("replan_interval", float64(t.ReplanInterval))
	pos("look_ahead", t.LookAhead)
	pos("avoid_force_mul", t.AvoidForceMul)
	pos("stuck_window", float64(t.StuckWindow))
	pos("stuck_ticks", float64(t.StuckTicks))
	pos("stuck_threshold", t.StuckThreshold)
	pos("escape_force", t.EscapeForce)
	if t.AgentRadius*2 > t.CellSize {
		errs = append(errs, fmt.Errorf("%w: agent_radius %g does not fit a %g cell", ErrInvalidLayout, t.AgentRadius, t.CellSize))
	}
	return errors.Join(errs...)
}
