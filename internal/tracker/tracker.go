// Package tracker implements the client-side proximity state machine: given
// a set of POIs and a stream of location samples, it maintains exactly one
// "current target" POI, a transient visited set, and a newly-arrived flag.
//
// Targets are chosen nearest-unvisited-first, so users can walk the route in
// any real-world order while the app surfaces a single next objective. None
// of this state is persisted: the server's visit records are the source of
// truth, and a session restart rebuilds the tracker from a server-derived
// visited set.
package tracker

import "github.com/litquest/hottabych/internal/geo"

// TargetPOI is the minimal POI shape the state machine needs.
type TargetPOI struct {
	ID     string
	Lat    float64
	Lon    float64
	Radius float64 // meters; 0 means geo.DefaultProximityRadius
}

// Tracker is the proximity state machine. It is not safe for concurrent
// use; Context serializes access to it.
//
// The machine is in one of three states: no target yet (before the first
// location sample), tracking a target, or all POIs visited.
type Tracker struct {
	pois     []TargetPOI
	visited  map[string]bool
	targetID string
	isNew    bool
	started  bool
}

// New builds a tracker over pois. visited carries POI IDs already visited in
// an earlier session (server-derived); pass nil for a fresh start.
func New(pois []TargetPOI, visited []string) *Tracker {
	t := &Tracker{
		pois:    pois,
		visited: make(map[string]bool, len(visited)),
	}
	for _, id := range visited {
		t.visited[id] = true
	}
	return t
}

// Update processes one location sample and reports whether the sample caused
// an arrival (the current target entered the visited set).
func (t *Tracker) Update(lat, lon float64) bool {
	if !t.started {
		t.started = true
		if id, ok := t.closestUnvisited(lat, lon); ok {
			t.targetID = id
			t.isNew = true
		}
		return false
	}

	if t.targetID == "" {
		return false
	}

	target, ok := t.poi(t.targetID)
	if !ok {
		return false
	}
	if t.visited[target.ID] || !geo.WithinRadius(lat, lon, target.Lat, target.Lon, target.Radius) {
		return false
	}

	// Arrival: mark visited, then re-select against the updated set so the
	// next target is the nearest of the remaining POIs.
	t.visited[target.ID] = true
	if next, ok := t.closestUnvisited(lat, lon); ok {
		t.targetID = next
		t.isNew = true
	} else {
		t.targetID = ""
	}
	return true
}

// Target returns the current target POI id, if any.
func (t *Tracker) Target() (string, bool) {
	return t.targetID, t.targetID != ""
}

// AllVisited reports whether every POI has been visited.
func (t *Tracker) AllVisited() bool {
	for _, p := range t.pois {
		if !t.visited[p.ID] {
			return false
		}
	}
	return len(t.pois) > 0
}

// HasVisited reports whether the POI is in the visited set.
func (t *Tracker) HasVisited(id string) bool {
	return t.visited[id]
}

// VisitedIDs returns the visited set in input-list order.
func (t *Tracker) VisitedIDs() []string {
	ids := make([]string, 0, len(t.visited))
	for _, p := range t.pois {
		if t.visited[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// IsNew reports whether the current target has not yet been surfaced to the
// user. It stays latched across location updates until MarkViewed.
func (t *Tracker) IsNew() bool {
	return t.isNew
}

// MarkViewed clears the newly-arrived flag.
func (t *Tracker) MarkViewed() {
	t.isNew = false
}

func (t *Tracker) poi(id string) (TargetPOI, bool) {
	for _, p := range t.pois {
		if p.ID == id {
			return p, true
		}
	}
	return TargetPOI{}, false
}

// closestUnvisited scans for the nearest POI not in the visited set. Ties
// keep the earlier entry in the input list.
func (t *Tracker) closestUnvisited(lat, lon float64) (string, bool) {
	var (
		bestID   string
		bestDist float64
		found    bool
	)
	for _, p := range t.pois {
		if t.visited[p.ID] {
			continue
		}
		d := geo.DistanceMeters(lat, lon, p.Lat, p.Lon)
		if !found || d < bestDist {
			bestID = p.ID
			bestDist = d
			found = true
		}
	}
	return bestID, found
}
