package game

import "testing"

func newTestRegistry() *WorldRegistry {
	r := NewWorldRegistry()
	r.AddVictim(V(100, 100), Cell{2, 2})
	r.AddVictim(V(300, 100), Cell{7, 2})
	r.AddVictim(V(100, 300), Cell{2, 7})
	r.AddHospital(V(20, 20), Cell{0, 0})
	r.AddHospital(V(380, 380), Cell{9, 9})
	return r
}

func TestRegistry_PickupRemovesFromSearch(t *testing.T) {
	r := newTestRegistry()
	if !r.Pickup(0) {
		t.Fatal("expected pickup of a free victim to succeed")
	}
	if r.IsFree(0) {
		t.Fatal("picked-up victim must not be free")
	}
	if len(r.FreeVictims()) != 2 {
		t.Fatalf("expected 2 free victims, got %d", len(r.FreeVictims()))
	}
	if id, _ := r.NearestVictim(V(100, 100), Cell{2, 2}, MetricEuclidean, nil); id == 0 {
		t.Fatal("nearest search returned a carried victim")
	}
	if r.Pickup(0) {
		t.Fatal("a victim can only be picked up once")
	}
	if r.FreeVictimAt(Cell{2, 2}) {
		t.Fatal("cell should no longer report a free victim")
	}
}

func TestRegistry_DropOffCountsOnce(t *testing.T) {
	r := newTestRegistry()
	if r.DropOff(1) {
		t.Fatal("dropping a free victim must be a no-op")
	}
	if r.Rescued() != 0 {
		t.Fatalf("expected 0 rescued, got %d", r.Rescued())
	}

	r.Pickup(1)
	if !r.DropOff(1) {
		t.Fatal("expected drop-off of a carried victim to succeed")
	}
	if r.DropOff(1) {
		t.Fatal("second drop-off of the same victim must be a no-op")
	}
	if r.Rescued() != 1 || r.Remaining() != 2 {
		t.Fatalf("expected rescued=1 remaining=2, got %d/%d", r.Rescued(), r.Remaining())
	}
	v, _ := r.Victim(1)
	if v.Status != VictimRescued || v.Active() {
		t.Fatalf("expected rescued inactive victim, got %s", v.Status)
	}
}

func TestRegistry_RemainingCountsCarried(t *testing.T) {
	r := newTestRegistry()
	r.Pickup(2)
	if r.Remaining() != 3 {
		t.Fatalf("carried victims are still remaining, got %d", r.Remaining())
	}
	if r.Total() != 3 {
		t.Fatalf("expected total 3, got %d", r.Total())
	}
}

func TestRegistry_NearestByMetric(t *testing.T) {
	r := NewWorldRegistry()
	// Euclidean favours the diagonal victim, Manhattan the straight one.
	r.AddVictim(V(60, 60), Cell{6, 6})
	r.AddVictim(V(95, 0), Cell{9, 0})

	if id, _ := r.NearestVictim(V(0, 0), Cell{0, 0}, MetricEuclidean, nil); id != 0 {
		t.Fatalf("euclidean: expected victim 0, got %d", id)
	}
	if id, _ := r.NearestVictim(V(0, 0), Cell{0, 0}, MetricManhattan, nil); id != 1 {
		t.Fatalf("manhattan: expected victim 1, got %d", id)
	}
}

func TestRegistry_NearestSkipAndTies(t *testing.T) {
	r := newTestRegistry()
	// Victims 1 and 2 are both 200 away from (300,300).
	id, ok := r.NearestVictim(V(300, 300), Cell{7, 7}, MetricEuclidean, nil)
	if !ok || id != 1 {
		t.Fatalf("expected tie to go to the earlier victim 1, got %d", id)
	}
	id, ok = r.NearestVictim(V(300, 300), Cell{7, 7}, MetricEuclidean, func(v VictimID) bool { return v == 1 })
	if !ok || id != 2 {
		t.Fatalf("expected victim 2 when 1 is skipped, got %d", id)
	}
	_, ok = r.NearestVictim(V(0, 0), Cell{}, MetricEuclidean, func(VictimID) bool { return true })
	if ok {
		t.Fatal("expected no result when every victim is skipped")
	}
}

func TestRegistry_NearestHospital(t *testing.T) {
	r := newTestRegistry()
	h, ok := r.NearestHospital(V(350, 350), Cell{8, 8}, MetricManhattan, nil)
	if !ok || h.ID != 1 {
		t.Fatalf("expected hospital 1, got %d (ok=%v)", h.ID, ok)
	}
	h, ok = r.NearestHospital(V(350, 350), Cell{8, 8}, MetricManhattan, func(id int) bool { return id == 1 })
	if !ok || h.ID != 0 {
		t.Fatalf("expected hospital 0 when 1 is skipped, got %d", h.ID)
	}
	if _, ok := NewWorldRegistry().NearestHospital(V(0, 0), Cell{}, MetricEuclidean, nil); ok {
		t.Fatal("empty registry has no hospital")
	}
	if !r.HospitalAt(Cell{9, 9}) || r.HospitalAt(Cell{5, 5}) {
		t.Fatal("HospitalAt mismatch")
	}
}
