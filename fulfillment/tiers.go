package fulfillment

// Tier is one distance band of the delivery policy. MaxKm is inclusive: a
// distance exactly on the boundary falls into the cheaper band.
type Tier struct {
	MaxKm float64
	Fee   int
}

// Quote is the delivery offer for a computed distance.
type Quote struct {
	DistanceKm      float64
	DeliveryOffered bool
	Fee             int
}

// DefaultTiers is the stock banding: free delivery within walking distance,
// flat fees further out, pickup only beyond the last band.
var DefaultTiers = []Tier{
	{MaxKm: 0.5, Fee: 0},
	{MaxKm: 5, Fee: 100},
	{MaxKm: 20, Fee: 200},
}

// QuoteFor evaluates the ordered, non-overlapping tiers top-down for the
// given distance. Distances beyond every tier yield a pickup-only quote.
func QuoteFor(distanceKm float64, tiers []Tier) Quote {
	for _, tier := range tiers {
		if distanceKm <= tier.MaxKm {
			return Quote{DistanceKm: distanceKm, DeliveryOffered: true, Fee: tier.Fee}
		}
	}
	return Quote{DistanceKm: distanceKm, DeliveryOffered: false}
}
