// Package geo holds the distance and privacy helpers shared by matching and tracking.
package geo

import (
	"math"
	"math/rand"

	"beautycita/models"
)

const (
	EarthRadiusMeters = 6371000.0
	EarthRadiusKm     = 6371.0
	EarthRadiusMiles  = 3959.0

	MetersPerMile = 1609.344

	// metersPerDegree approximates one degree of latitude at the equator.
	metersPerDegree = 111111.0
)

// haversine returns the central angle between a and b in radians.
func haversine(a, b models.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h just past 1 near antipodes.
	h = math.Min(1, math.Max(0, h))
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMeters is the great-circle distance between a and b.
func DistanceMeters(a, b models.GeoPoint) float64 {
	return EarthRadiusMeters * haversine(a, b)
}

// DistanceKm is DistanceMeters on the kilometre radius.
func DistanceKm(a, b models.GeoPoint) float64 {
	return EarthRadiusKm * haversine(a, b)
}

// DistanceMiles uses the 3,959 mi radius the client-facing views are quoted in.
func DistanceMiles(a, b models.GeoPoint) float64 {
	return EarthRadiusMiles * haversine(a, b)
}

// WithinProximity reports whether a and b are at most thresholdMeters apart.
func WithinProximity(a, b models.GeoPoint, thresholdMeters float64) bool {
	return DistanceMeters(a, b) <= thresholdMeters
}

// BlurLocation offsets p by a random bearing and a random distance up to radiusMeters.
// The result is for display to third parties only, never for routing.
func BlurLocation(p models.GeoPoint, radiusMeters float64, rnd *rand.Rand) models.GeoPoint {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	radiusDegrees := radiusMeters / metersPerDegree
	angle := rnd.Float64() * 2 * math.Pi
	dist := rnd.Float64() * radiusDegrees

	return models.GeoPoint{
		Lat: p.Lat + dist*math.Cos(angle),
		Lng: p.Lng + dist*math.Sin(angle),
	}
}
