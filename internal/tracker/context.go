package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/litquest/hottabych/internal/geo"
	"github.com/litquest/hottabych/internal/quest"
)

// POISource yields the flattened POI list across active motifs, in route
// order. The server's store and the REST client both satisfy it.
type POISource interface {
	ListPOIs(ctx context.Context) ([]quest.POI, error)
}

// LocationProvider yields the user's current position on request. It may
// fail with a human-readable error; tracking pauses until it recovers.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (geo.Point, error)
}

// Context composes the proximity Tracker with full POI data and a location
// feed. It is a disposable projection over server state: resolving the
// tracker's target id to a full POI, exposing the visited set, and carrying
// the last location error for the UI banner.
type Context struct {
	mu      sync.Mutex
	tracker *Tracker
	pois    map[string]quest.POI
	loc     *geo.Point
	locErr  string
}

// NewContext fetches the POI list from src and builds a tracker seeded with
// the server-derived visited set (nil for a fresh session).
func NewContext(ctx context.Context, src POISource, visited []string) (*Context, error) {
	pois, err := src.ListPOIs(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]TargetPOI, len(pois))
	byID := make(map[string]quest.POI, len(pois))
	for i, p := range pois {
		targets[i] = TargetPOI{ID: p.ID, Lat: p.Latitude, Lon: p.Longitude, Radius: p.Radius}
		byID[p.ID] = p
	}

	return &Context{
		tracker: New(targets, visited),
		pois:    byID,
	}, nil
}

// Observe feeds one location sample into the tracker and clears any prior
// location error. It returns the POI arrived at by this sample, if any, so
// the caller can submit a visit to the server.
func (c *Context) Observe(p geo.Point) (quest.POI, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loc = &p
	c.locErr = ""

	prev, _ := c.tracker.Target()
	if !c.tracker.Update(p.Lat, p.Lon) {
		return quest.POI{}, false
	}
	return c.pois[prev], true
}

// ObserveError records a location-provider failure. The tracker state is
// left untouched; advancement simply stops until samples resume.
func (c *Context) ObserveError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locErr = msg
}

// Run polls provider on the given interval until ctx is done, feeding
// samples and failures into the context. Arrivals are delivered to onArrive
// when it is non-nil.
func (c *Context) Run(ctx context.Context, provider LocationProvider, interval time.Duration, onArrive func(quest.POI)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		loc, err := provider.CurrentLocation(ctx)
		if err != nil {
			c.ObserveError(err.Error())
		} else if poi, arrived := c.Observe(loc); arrived && onArrive != nil {
			onArrive(poi)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CurrentPOI resolves the tracker's target to full POI data.
func (c *Context) CurrentPOI() (quest.POI, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.tracker.Target()
	if !ok {
		return quest.POI{}, false
	}
	poi, ok := c.pois[id]
	return poi, ok
}

// VisitedIDs returns the ids of POIs visited this session.
func (c *Context) VisitedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.VisitedIDs()
}

// IsNewCurrentPOI reports whether the current POI still awaits its reveal.
func (c *Context) IsNewCurrentPOI() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.IsNew()
}

// MarkViewed clears the newly-arrived flag once the UI has surfaced the
// current POI.
func (c *Context) MarkViewed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker.MarkViewed()
}

// UserLocation returns the last observed location, if any.
func (c *Context) UserLocation() (geo.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loc == nil {
		return geo.Point{}, false
	}
	return *c.loc, true
}

// LocationError returns the last provider failure, or "" when location is
// healthy.
func (c *Context) LocationError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locErr
}
