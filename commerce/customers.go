package commerce

import (
	"context"
	"net/http"

	"github.com/ordermesh/ordermesh/core"
)

type customerEnvelope struct {
	Data struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	} `json:"data"`
}

// CreateCustomer registers a customer record. A duplicate email yields a
// Conflict-kind error which callers treat as benign.
func (c *Client) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	body := map[string]any{"data": map[string]any{
		"type":  "customer",
		"name":  name,
		"email": email,
	}}
	var out customerEnvelope
	if err := c.do(ctx, "customer.create", http.MethodPost, "/v2/customers", nil, body, &out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

// UpdateCustomerLocation stores the customer's delivery coordinates.
func (c *Client) UpdateCustomerLocation(ctx context.Context, customerID string, coords core.Coordinates) error {
	body := map[string]any{"data": map[string]any{
		"type":      "customer",
		"longitude": coords.Lon,
		"latitude":  coords.Lat,
	}}
	return c.do(ctx, "customer.update_location", http.MethodPut, "/v2/customers/"+customerID, nil, body, nil)
}

// GetCustomer fetches a customer record.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (core.Customer, error) {
	var out customerEnvelope
	if err := c.do(ctx, "customer.get", http.MethodGet, "/v2/customers/"+customerID, nil, nil, &out); err != nil {
		return core.Customer{}, err
	}
	return core.Customer{
		ID:          out.Data.ID,
		Name:        out.Data.Name,
		Email:       out.Data.Email,
		Coordinates: core.Coordinates{Lon: out.Data.Longitude, Lat: out.Data.Latitude},
	}, nil
}
