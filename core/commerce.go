package core

import (
	"context"
	"time"
)

// Credential is the backend access token together with its absolute expiry.
// A single shared value exists per process; see the credential package for
// the cache that owns it.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// TokenSource fetches a fresh credential from the backend's token endpoint.
type TokenSource interface {
	FetchToken(ctx context.Context) (Credential, error)
}

// TokenProvider hands out a token for backend authorization. Implementations
// guarantee the token is valid for at least a safety margin where possible,
// but may return a stale token when refresh fails; the backend's own
// authorization error then surfaces on the actual call.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	// Invalidate marks the current token expired so the next Token call
	// refreshes. Used for the single refresh-and-retry on a 401.
	Invalidate()
}

// Product is a catalog entry as listed in the published release.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	ImageURL    string
}

// CartItem is one line of a cart snapshot.
type CartItem struct {
	ID             string
	ProductID      string
	Name           string
	Quantity       int
	Amount         int
	FormattedPrice string
}

// CartSnapshot is the backend's transient view of a cart: line items plus the
// aggregate total. Never cached; always re-fetched.
type CartSnapshot struct {
	ID             string
	Items          []CartItem
	Total          int
	FormattedTotal string
}

// Empty reports whether the cart has no line items.
func (c CartSnapshot) Empty() bool { return len(c.Items) == 0 }

// Cart identifies a backend-hosted cart and its server-assigned expiry.
type Cart struct {
	ID        string
	ExpiresAt time.Time
}

// Customer is the backend customer record bound to a user.
type Customer struct {
	ID    string
	Name  string
	Email string
	Coordinates
}

// FulfillmentLocation is a physical pickup/delivery-origin point. DistanceKm
// is computed per request by the fulfillment selector and never persisted.
type FulfillmentLocation struct {
	ID             string
	Address        string
	Alias          string
	Coordinates    Coordinates
	AdminContactID string
	DistanceKm     float64
}

// Commerce is the backend resource interface the core consumes. The HTTP
// client in the commerce package implements it; tests substitute a fake.
type Commerce interface {
	// Cart lifecycle.
	CreateCart(ctx context.Context, name string) (Cart, error)
	GetCart(ctx context.Context, cartID string) (CartSnapshot, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	DeleteCart(ctx context.Context, cartID string) error

	// Customer records.
	CreateCustomer(ctx context.Context, name, email string) (string, error)
	UpdateCustomerLocation(ctx context.Context, customerID string, c Coordinates) error
	GetCustomer(ctx context.Context, customerID string) (Customer, error)

	// Catalog reads.
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	GetPrice(ctx context.Context, sku string) (int, error)

	// Fulfillment locations.
	ListFulfillmentLocations(ctx context.Context) ([]FulfillmentLocation, error)
	GetFulfillmentLocation(ctx context.Context, id string) (FulfillmentLocation, error)
}

// CatalogWriter extends Commerce with the authoring operations used by the
// one-shot bulk loader. Kept separate so the conversational core cannot
// accidentally depend on catalog authoring.
type CatalogWriter interface {
	CreateProduct(ctx context.Context, p Product) (string, error)
	CreatePrice(ctx context.Context, sku string, amount int) error
	AttachImage(ctx context.Context, productID, imageURL string) error
	CreateFulfillmentLocation(ctx context.Context, loc FulfillmentLocation) (string, error)
}
