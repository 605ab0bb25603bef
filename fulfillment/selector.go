package fulfillment

import (
	"errors"
	"math"

	"github.com/ordermesh/ordermesh/core"
)

// ErrNoLocations is returned when the candidate list is empty.
var ErrNoLocations = errors.New("no fulfillment locations available")

const earthRadiusKm = 6371.0

// DistanceKm computes the great-circle (haversine) distance between two
// points in kilometers.
func DistanceKm(a, b core.Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// SelectNearest annotates every candidate with its distance to the customer
// and returns the minimum. Ties break on input order (first seen wins); the
// candidate order is whatever the backend returned, so callers must not
// depend on a specific winner among equidistant locations.
func SelectNearest(customer core.Coordinates, locations []core.FulfillmentLocation) (core.FulfillmentLocation, error) {
	if len(locations) == 0 {
		return core.FulfillmentLocation{}, ErrNoLocations
	}
	best := locations[0]
	best.DistanceKm = DistanceKm(customer, best.Coordinates)
	for _, loc := range locations[1:] {
		loc.DistanceKm = DistanceKm(customer, loc.Coordinates)
		if loc.DistanceKm < best.DistanceKm {
			best = loc
		}
	}
	return best, nil
}
