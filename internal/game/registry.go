package game

import (
	"math"
	"slices"
)

// VictimID is a handle into the registry's victim arena. Agents hold
// handles, never pointers, so removal cannot leave a dangling reference.
type VictimID int

// NoVictim marks an empty carried-victim slot.
const NoVictim VictimID = -1

// VictimStatus tracks where a victim is in the rescue cycle.
type VictimStatus int

const (
	VictimFree    VictimStatus = iota // waiting to be found
	VictimCarried                     // owned by exactly one agent
	VictimRescued                     // delivered, permanently inactive
)

func (vs VictimStatus) String() string {
	switch vs {
	case VictimFree:
		return "free"
	case VictimCarried:
		return "carried"
	case VictimRescued:
		return "rescued"
	default:
		return "unknown"
	}
}

// Victim is a person waiting for rescue.
type Victim struct {
	ID     VictimID
	Pos    Vec2
	Cell   Cell
	Status VictimStatus
}

// Active is true only while the victim is free-roaming.
func (v Victim) Active() bool { return v.Status == VictimFree }

// Hospital is a fixed drop-off zone.
type Hospital struct {
	ID   int
	Pos  Vec2
	Cell Cell
}

// Metric picks the distance used for nearest-target selection.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricManhattan
)

// distance measures in world units for Euclidean and in cells for
// Manhattan, matching how each navigation mode thinks about space.
func (m Metric) distance(aPos, bPos Vec2, aCell, bCell Cell) float64 {
	if m == MetricManhattan {
		return float64(aCell.Manhattan(bCell))
	}
	return aPos.Dist(bPos)
}

// WorldRegistry owns the shared victims and hospitals. It is only mutated
// through Pickup and DropOff, inside the acting agent's tick slot.
type WorldRegistry struct {
	victims   []Victim
	free      []VictimID // searchable victims, registration order
	hospitals []Hospital
	rescued   int
}

// NewWorldRegistry returns an empty registry.
func NewWorldRegistry() *WorldRegistry {
	return &WorldRegistry{}
}

// AddVictim registers a free victim.
func (r *WorldRegistry) AddVictim(pos Vec2, cell Cell) VictimID {
	id := VictimID(len(r.victims))
	r.victims = append(r.victims, Victim{ID: id, Pos: pos, Cell: cell, Status: VictimFree})
	r.free = append(r.free, id)
	return id
}

// AddHospital registers a hospital.
func (r *WorldRegistry) AddHospital(pos Vec2, cell Cell) int {
	id := len(r.hospitals)
	r.hospitals = append(r.hospitals, Hospital{ID: id, Pos: pos, Cell: cell})
	return id
}

// Victim returns a copy of the victim behind id.
func (r *WorldRegistry) Victim(id VictimID) (Victim, bool) {
	if id < 0 || int(id) >= len(r.victims) {
		return Victim{}, false
	}
	return r.victims[id], true
}

// Victims returns every victim ever registered, in registration order.
func (r *WorldRegistry) Victims() []Victim { return r.victims }

// Hospitals returns the hospitals in registration order.
func (r *WorldRegistry) Hospitals() []Hospital { return r.hospitals }

// FreeVictims returns the handles still open for target selection.
func (r *WorldRegistry) FreeVictims() []VictimID { return r.free }

// IsFree reports whether id can still be targeted and picked up.
func (r *WorldRegistry) IsFree(id VictimID) bool {
	v, ok := r.Victim(id)
	return ok && v.Status == VictimFree
}

// Pickup hands id to the caller. The victim leaves the searchable set
// immediately so no later agent in the same tick can select it. Returns
// false if the victim was not free.
func (r *WorldRegistry) Pickup(id VictimID) bool {
	if !r.IsFree(id) {
		return false
	}
	r.victims[id].Status = VictimCarried
	if i := slices.Index(r.free, id); i >= 0 {
		r.free = slices.Delete(r.free, i, i+1)
	}
	return true
}

// DropOff permanently retires a carried victim and counts the rescue.
// Dropping anything that is not currently carried is a no-op.
func (r *WorldRegistry) DropOff(id VictimID) bool {
	v, ok := r.Victim(id)
	if !ok || v.Status != VictimCarried {
		return false
	}
	r.victims[id].Status = VictimRescued
	r.rescued++
	return true
}

// NearestVictim returns the closest free victim under m, skipping any for
// which skip returns true. Ties go to the earliest registered victim.
func (r *WorldRegistry) NearestVictim(pos Vec2, cell Cell, m Metric, skip func(VictimID) bool) (VictimID, bool) {
	best := NoVictim
	bestDist := math.Inf(1)
	for _, id := range r.free {
		if skip != nil && skip(id) {
			continue
		}
		v := r.victims[id]
		if d := m.distance(pos, v.Pos, cell, v.Cell); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, best != NoVictim
}

// NearestHospital returns the closest hospital under m, skipping any for
// which skip returns true. Ties go to the earliest registered hospital.
func (r *WorldRegistry) NearestHospital(pos Vec2, cell Cell, m Metric, skip func(int) bool) (Hospital, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, h := range r.hospitals {
		if skip != nil && skip(h.ID) {
			continue
		}
		if d := m.distance(pos, h.Pos, cell, h.Cell); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Hospital{}, false
	}
	return r.hospitals[best], true
}

// FreeVictimAt reports whether a free victim is waiting in c.
func (r *WorldRegistry) FreeVictimAt(c Cell) bool {
	for _, id := range r.free {
		if r.victims[id].Cell == c {
			return true
		}
	}
	return false
}

// HospitalAt reports whether a hospital occupies c.
func (r *WorldRegistry) HospitalAt(c Cell) bool {
	for _, h := range r.hospitals {
		if h.Cell == c {
			return true
		}
	}
	return false
}

// Total is the number of victims registered.
func (r *WorldRegistry) Total() int { return len(r.victims) }

// Rescued is the number of victims delivered to a hospital.
func (r *WorldRegistry) Rescued() int { return r.rescued }

// Remaining counts victims not yet delivered, carried ones included. The
// simulation is won when it reaches zero.
func (r *WorldRegistry) Remaining() int { return len(r.victims) - r.rescued }
