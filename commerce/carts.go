package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ordermesh/ordermesh/core"
)

type displayPrice struct {
	Amount    int    `json:"amount"`
	Formatted string `json:"formatted"`
}

type cartEnvelope struct {
	Data struct {
		ID   string `json:"id"`
		Meta struct {
			DisplayPrice struct {
				WithTax displayPrice `json:"with_tax"`
			} `json:"display_price"`
			Timestamps struct {
				ExpiresAt time.Time `json:"expires_at"`
			} `json:"timestamps"`
		} `json:"meta"`
	} `json:"data"`
	Included struct {
		Items []struct {
			ID        string `json:"id"`
			ProductID string `json:"product_id"`
			Name      string `json:"name"`
			Quantity  int    `json:"quantity"`
			Meta      struct {
				DisplayPrice struct {
					WithTax struct {
						Value displayPrice `json:"value"`
					} `json:"with_tax"`
				} `json:"display_price"`
			} `json:"meta"`
		} `json:"items"`
	} `json:"included"`
}

// CreateCart allocates a new backend cart and returns its id and
// server-assigned expiry.
func (c *Client) CreateCart(ctx context.Context, name string) (core.Cart, error) {
	body := map[string]any{"data": map[string]any{"name": name}}
	var out cartEnvelope
	if err := c.do(ctx, "cart.create", http.MethodPost, "/v2/carts", nil, body, &out); err != nil {
		return core.Cart{}, err
	}
	return core.Cart{ID: out.Data.ID, ExpiresAt: out.Data.Meta.Timestamps.ExpiresAt}, nil
}

// GetCart fetches the cart with its line items included.
func (c *Client) GetCart(ctx context.Context, cartID string) (core.CartSnapshot, error) {
	query := url.Values{"include": {"items"}}
	var out cartEnvelope
	if err := c.do(ctx, "cart.get", http.MethodGet, "/v2/carts/"+cartID, query, nil, &out); err != nil {
		return core.CartSnapshot{}, err
	}
	snapshot := core.CartSnapshot{
		ID:             out.Data.ID,
		Total:          out.Data.Meta.DisplayPrice.WithTax.Amount,
		FormattedTotal: out.Data.Meta.DisplayPrice.WithTax.Formatted,
	}
	for _, item := range out.Included.Items {
		snapshot.Items = append(snapshot.Items, core.CartItem{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			Amount:         item.Meta.DisplayPrice.WithTax.Value.Amount,
			FormattedPrice: item.Meta.DisplayPrice.WithTax.Value.Formatted,
		})
	}
	return snapshot, nil
}

// AddItem adds quantity units of a product. The backend has additive
// semantics: adding an existing product increments its line quantity.
func (c *Client) AddItem(ctx context.Context, cartID, productID string, quantity int) error {
	body := map[string]any{"data": map[string]any{
		"id":       productID,
		"type":     "cart_item",
		"quantity": quantity,
	}}
	return c.do(ctx, "cart.add_item", http.MethodPost, fmt.Sprintf("/v2/carts/%s/items", cartID), nil, body, nil)
}

// RemoveItem deletes a single line item.
func (c *Client) RemoveItem(ctx context.Context, cartID, itemID string) error {
	return c.do(ctx, "cart.remove_item", http.MethodDelete, fmt.Sprintf("/v2/carts/%s/items/%s", cartID, itemID), nil, nil, nil)
}

// DeleteCart removes the cart entirely.
func (c *Client) DeleteCart(ctx context.Context, cartID string) error {
	return c.do(ctx, "cart.delete", http.MethodDelete, "/v2/carts/"+cartID, nil, nil, nil)
}
