package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ordermesh/ordermesh/core"
)

// FakeCommerce is an in-memory core.Commerce implementation. Carts behave
// like the real backend: adding the same product twice accumulates quantity,
// and creating a customer with a known email conflicts.
type FakeCommerce struct {
	mu sync.Mutex

	Products  []core.Product
	Prices    map[string]int // by SKU
	Locations []core.FulfillmentLocation

	// CartTTL controls the expiry stamped on created carts.
	CartTTL time.Duration

	carts     map[string][]core.CartItem
	cartSeq   int
	itemSeq   int
	customers map[string]core.Customer // by id
	emails    map[string]string        // email -> customer id
	custSeq   int

	// Err, when set, is returned by every backend call. Lets tests inject
	// transient failures.
	Err error

	CreateCartCalls int
	DeletedCarts    []string
}

// NewFakeCommerce constructs an empty fake with a 2 hour cart TTL.
func NewFakeCommerce() *FakeCommerce {
	return &FakeCommerce{
		Prices:    map[string]int{},
		CartTTL:   2 * time.Hour,
		carts:     map[string][]core.CartItem{},
		customers: map[string]core.Customer{},
		emails:    map[string]string{},
	}
}

// AddProduct registers a product and its pricebook price.
func (f *FakeCommerce) AddProduct(p core.Product, price int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Products = append(f.Products, p)
	f.Prices[p.SKU] = price
}

// CreateCart implements core.Commerce.
func (f *FakeCommerce) CreateCart(ctx context.Context, name string) (core.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return core.Cart{}, f.Err
	}
	f.cartSeq++
	f.CreateCartCalls++
	id := fmt.Sprintf("cart-%d", f.cartSeq)
	f.carts[id] = nil
	return core.Cart{ID: id, ExpiresAt: time.Now().Add(f.CartTTL)}, nil
}

// GetCart implements core.Commerce.
func (f *FakeCommerce) GetCart(ctx context.Context, cartID string) (core.CartSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return core.CartSnapshot{}, f.Err
	}
	items, ok := f.carts[cartID]
	if !ok {
		return core.CartSnapshot{}, core.NewBackendError(core.ErrorKindNotFound, "carts.get", fmt.Errorf("cart %s", cartID))
	}
	snap := core.CartSnapshot{ID: cartID}
	for _, item := range items {
		snap.Items = append(snap.Items, item)
		snap.Total += item.Amount
	}
	snap.FormattedTotal = fmt.Sprintf("%d RUB", snap.Total)
	return snap, nil
}

// AddItem implements core.Commerce with the backend's additive semantics.
func (f *FakeCommerce) AddItem(ctx context.Context, cartID, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	items, ok := f.carts[cartID]
	if !ok {
		return core.NewBackendError(core.ErrorKindNotFound, "carts.add_item", fmt.Errorf("cart %s", cartID))
	}
	product, price, err := f.productByID(productID)
	if err != nil {
		return err
	}
	for i, item := range items {
		if item.ProductID == productID {
			items[i].Quantity += quantity
			items[i].Amount = items[i].Quantity * price
			items[i].FormattedPrice = fmt.Sprintf("%d RUB", items[i].Amount)
			f.carts[cartID] = items
			return nil
		}
	}
	f.itemSeq++
	f.carts[cartID] = append(items, core.CartItem{
		ID:             fmt.Sprintf("item-%d", f.itemSeq),
		ProductID:      productID,
		Name:           product.Name,
		Quantity:       quantity,
		Amount:         quantity * price,
		FormattedPrice: fmt.Sprintf("%d RUB", quantity*price),
	})
	return nil
}

// RemoveItem implements core.Commerce.
func (f *FakeCommerce) RemoveItem(ctx context.Context, cartID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	items, ok := f.carts[cartID]
	if !ok {
		return core.NewBackendError(core.ErrorKindNotFound, "carts.remove_item", fmt.Errorf("cart %s", cartID))
	}
	for i, item := range items {
		if item.ID == itemID {
			f.carts[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return core.NewBackendError(core.ErrorKindNotFound, "carts.remove_item", fmt.Errorf("item %s", itemID))
}

// DeleteCart implements core.Commerce.
func (f *FakeCommerce) DeleteCart(ctx context.Context, cartID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.carts[cartID]; !ok {
		return core.NewBackendError(core.ErrorKindNotFound, "carts.delete", fmt.Errorf("cart %s", cartID))
	}
	delete(f.carts, cartID)
	f.DeletedCarts = append(f.DeletedCarts, cartID)
	return nil
}

// CreateCustomer implements core.Commerce. Duplicate emails conflict like the
// real backend.
func (f *FakeCommerce) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	if _, exists := f.emails[email]; exists {
		return "", core.NewBackendError(core.ErrorKindConflict, "customers.create", fmt.Errorf("email %s taken", email))
	}
	f.custSeq++
	id := fmt.Sprintf("customer-%d", f.custSeq)
	f.customers[id] = core.Customer{ID: id, Name: name, Email: email}
	f.emails[email] = id
	return id, nil
}

// UpdateCustomerLocation implements core.Commerce.
func (f *FakeCommerce) UpdateCustomerLocation(ctx context.Context, customerID string, c core.Coordinates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	customer, ok := f.customers[customerID]
	if !ok {
		return core.NewBackendError(core.ErrorKindNotFound, "customers.update", fmt.Errorf("customer %s", customerID))
	}
	customer.Coordinates = c
	f.customers[customerID] = customer
	return nil
}

// GetCustomer implements core.Commerce.
func (f *FakeCommerce) GetCustomer(ctx context.Context, customerID string) (core.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return core.Customer{}, f.Err
	}
	customer, ok := f.customers[customerID]
	if !ok {
		return core.Customer{}, core.NewBackendError(core.ErrorKindNotFound, "customers.get", fmt.Errorf("customer %s", customerID))
	}
	return customer, nil
}

// ListProducts implements core.Commerce.
func (f *FakeCommerce) ListProducts(ctx context.Context) ([]core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]core.Product(nil), f.Products...), nil
}

// GetProduct implements core.Commerce.
func (f *FakeCommerce) GetProduct(ctx context.Context, productID string) (core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return core.Product{}, f.Err
	}
	p, _, err := f.productByID(productID)
	return p, err
}

// GetPrice implements core.Commerce.
func (f *FakeCommerce) GetPrice(ctx context.Context, sku string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	price, ok := f.Prices[sku]
	if !ok {
		return 0, core.NewBackendError(core.ErrorKindNotFound, "catalog.price", fmt.Errorf("sku %s", sku))
	}
	return price, nil
}

// ListFulfillmentLocations implements core.Commerce.
func (f *FakeCommerce) ListFulfillmentLocations(ctx context.Context) ([]core.FulfillmentLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]core.FulfillmentLocation(nil), f.Locations...), nil
}

// GetFulfillmentLocation implements core.Commerce.
func (f *FakeCommerce) GetFulfillmentLocation(ctx context.Context, id string) (core.FulfillmentLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return core.FulfillmentLocation{}, f.Err
	}
	for _, loc := range f.Locations {
		if loc.ID == id {
			return loc, nil
		}
	}
	return core.FulfillmentLocation{}, core.NewBackendError(core.ErrorKindNotFound, "locations.get", fmt.Errorf("location %s", id))
}

// CartItems returns a copy of a cart's items for assertions.
func (f *FakeCommerce) CartItems(cartID string) []core.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.CartItem(nil), f.carts[cartID]...)
}

// HasCart reports whether the backend still holds the cart.
func (f *FakeCommerce) HasCart(cartID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.carts[cartID]
	return ok
}

func (f *FakeCommerce) productByID(productID string) (core.Product, int, error) {
	for _, p := range f.Products {
		if p.ID == productID {
			return p, f.Prices[p.SKU], nil
		}
	}
	return core.Product{}, 0, core.NewBackendError(core.ErrorKindNotFound, "catalog.product", fmt.Errorf("product %s", productID))
}

var _ core.Commerce = (*FakeCommerce)(nil)
