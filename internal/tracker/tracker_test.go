package tracker

import "testing"

func twoPOIs() []TargetPOI {
	return []TargetPOI{
		{ID: "A", Lat: 0, Lon: 0},
		{ID: "B", Lat: 0, Lon: 1},
	}
}

func TestInitialTargetIsClosest(t *testing.T) {
	tr := New(twoPOIs(), nil)

	tr.Update(0, 0.0001)

	id, ok := tr.Target()
	if !ok || id != "A" {
		t.Fatalf("target = %q, want A", id)
	}
	if !tr.IsNew() {
		t.Error("expected isNew=true after initial selection")
	}
}

func TestFirstUpdateOnlySelects(t *testing.T) {
	tr := New(twoPOIs(), nil)

	// Standing inside A's radius: the first sample only picks the target,
	// it does not count as an arrival.
	if arrived := tr.Update(0, 0.0001); arrived {
		t.Fatal("first update must not arrive")
	}
	if tr.HasVisited("A") {
		t.Fatal("A must not be visited after initial selection")
	}
}

func TestArrivalAdvancesToNearestRemaining(t *testing.T) {
	tr := New(twoPOIs(), nil)

	tr.Update(0, 0.0001) // select A
	if arrived := tr.Update(0, 0.0001); !arrived {
		t.Fatal("expected arrival at A")
	}

	if !tr.HasVisited("A") {
		t.Error("A should be visited")
	}
	id, ok := tr.Target()
	if !ok || id != "B" {
		t.Fatalf("target after A = %q, want B", id)
	}
	if !tr.IsNew() {
		t.Error("expected isNew=true for the new target")
	}
}

func TestArrivalIdempotent(t *testing.T) {
	pois := []TargetPOI{{ID: "A", Lat: 0, Lon: 0}}
	tr := New(pois, nil)

	tr.Update(0, 0)
	tr.Update(0, 0) // arrive at A, no targets left

	if _, ok := tr.Target(); ok {
		t.Fatal("expected no target after visiting everything")
	}
	if !tr.AllVisited() {
		t.Fatal("expected AllVisited")
	}

	// Lingering inside A's radius must not re-add it or re-latch isNew.
	tr.MarkViewed()
	tr.Update(0, 0)
	tr.Update(0, 0)
	if tr.IsNew() {
		t.Error("isNew must stay cleared while lingering at a visited POI")
	}
	if got := len(tr.VisitedIDs()); got != 1 {
		t.Errorf("visited set grew to %d entries", got)
	}
}

func TestSelectionUsesPostUpdateVisitedSet(t *testing.T) {
	// C is nearest overall but already visited; after arriving at A the next
	// target must be B, the nearest of the remaining POIs.
	pois := []TargetPOI{
		{ID: "A", Lat: 0, Lon: 0},
		{ID: "B", Lat: 0, Lon: 1},
		{ID: "C", Lat: 0, Lon: 0.001},
	}
	tr := New(pois, []string{"C"})

	tr.Update(0, 0.0001) // select A (C excluded)
	if id, _ := tr.Target(); id != "A" {
		t.Fatalf("initial target = %q, want A", id)
	}

	tr.Update(0, 0) // arrive at A
	if id, _ := tr.Target(); id != "B" {
		t.Fatalf("target after A = %q, want B", id)
	}
}

func TestNoTargetChangeOnMereMovement(t *testing.T) {
	tr := New(twoPOIs(), nil)

	tr.Update(0, 0.0001) // select A
	tr.MarkViewed()

	// Wander out of range, even closer to B than to A.
	tr.Update(0, 0.9)

	if id, _ := tr.Target(); id != "A" {
		t.Fatalf("target drifted to %q on mere movement, want A", id)
	}
	if tr.IsNew() {
		t.Error("isNew must not re-latch on movement")
	}
}

func TestIsNewLatchesUntilMarkViewed(t *testing.T) {
	tr := New(twoPOIs(), nil)

	tr.Update(0, 0.0001)
	tr.Update(0, 0.5) // more updates, no arrival
	tr.Update(0, 0.6)

	if !tr.IsNew() {
		t.Fatal("isNew must survive location updates")
	}
	tr.MarkViewed()
	if tr.IsNew() {
		t.Fatal("isNew must clear on MarkViewed")
	}
}

func TestExternallySuppliedVisitedSet(t *testing.T) {
	tr := New(twoPOIs(), []string{"A"})

	tr.Update(0, 0.0001)

	// A is excluded even though it is closest.
	if id, _ := tr.Target(); id != "B" {
		t.Fatalf("target = %q, want B", id)
	}
}

func TestPerPOIRadius(t *testing.T) {
	// ~556 m from the POI: outside the default 100 m but inside 1000 m.
	pois := []TargetPOI{{ID: "A", Lat: 0, Lon: 0, Radius: 1000}}
	tr := New(pois, nil)

	tr.Update(0, 0.005)
	if arrived := tr.Update(0, 0.005); !arrived {
		t.Fatal("expected arrival within custom radius")
	}
}
