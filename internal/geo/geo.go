// Package geo provides great-circle distance and proximity checks between
// geographic coordinates. It has zero external dependencies.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0

	// DefaultProximityRadius is the arrival radius in meters used when a POI
	// does not specify one.
	DefaultProximityRadius = 100.0
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// DistanceMeters returns the haversine great-circle distance in meters
// between two coordinates given in decimal degrees. No ellipsoid correction.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether the user is within radius meters of the
// target. A radius <= 0 falls back to DefaultProximityRadius.
func WithinRadius(userLat, userLon, targetLat, targetLon, radius float64) bool {
	if radius <= 0 {
		radius = DefaultProximityRadius
	}
	return DistanceMeters(userLat, userLon, targetLat, targetLon) <= radius
}
