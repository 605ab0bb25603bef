package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
)

func TestDistanceKm(t *testing.T) {
	moscow := core.Coordinates{Lon: 37.617635, Lat: 55.755814}
	spb := core.Coordinates{Lon: 30.315868, Lat: 59.939095}

	d := DistanceKm(moscow, spb)
	assert.InDelta(t, 634, d, 5)
	assert.Zero(t, DistanceKm(moscow, moscow))
	assert.InDelta(t, DistanceKm(spb, moscow), d, 1e-9)
}

func TestSelectNearest(t *testing.T) {
	customer := core.Coordinates{Lon: 37.6, Lat: 55.75}
	locations := []core.FulfillmentLocation{
		{ID: "far", Coordinates: core.Coordinates{Lon: 30.3, Lat: 59.9}},
		{ID: "near", Coordinates: core.Coordinates{Lon: 37.61, Lat: 55.76}},
		{ID: "mid", Coordinates: core.Coordinates{Lon: 37.9, Lat: 55.9}},
	}

	best, err := SelectNearest(customer, locations)
	require.NoError(t, err)
	assert.Equal(t, "near", best.ID)
	assert.Greater(t, best.DistanceKm, 0.0)

	// Deterministic for a fixed input order.
	again, err := SelectNearest(customer, locations)
	require.NoError(t, err)
	assert.Equal(t, best, again)
}

func TestSelectNearestTieBreaksOnFirstSeen(t *testing.T) {
	customer := core.Coordinates{Lon: 0, Lat: 0}
	point := core.Coordinates{Lon: 1, Lat: 1}
	locations := []core.FulfillmentLocation{
		{ID: "a", Coordinates: point},
		{ID: "b", Coordinates: point},
	}

	best, err := SelectNearest(customer, locations)
	require.NoError(t, err)
	assert.Equal(t, "a", best.ID)
}

func TestSelectNearestEmpty(t *testing.T) {
	_, err := SelectNearest(core.Coordinates{}, nil)
	assert.ErrorIs(t, err, ErrNoLocations)
}

func TestQuoteForBands(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		offered  bool
		fee      int
	}{
		{"inside walking band", 0.3, true, 0},
		{"walking boundary inclusive", 0.5, true, 0},
		{"first paid band", 3, true, 100},
		{"first paid boundary inclusive", 5, true, 100},
		{"second paid band", 12, true, 200},
		{"second paid boundary inclusive", 20, true, 200},
		{"beyond all bands", 30, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuoteFor(tt.distance, DefaultTiers)
			assert.Equal(t, tt.offered, q.DeliveryOffered)
			assert.Equal(t, tt.fee, q.Fee)
			assert.Equal(t, tt.distance, q.DistanceKm)
		})
	}
}

func TestQuoteForCustomTiers(t *testing.T) {
	tiers := []Tier{{MaxKm: 1, Fee: 50}}
	assert.Equal(t, 50, QuoteFor(0.9, tiers).Fee)
	assert.False(t, QuoteFor(1.1, tiers).DeliveryOffered)
}
