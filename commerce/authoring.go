package commerce

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ordermesh/ordermesh/core"
)

// Catalog authoring operations used by the one-shot bulk loader. The
// conversational core never calls these; they implement core.CatalogWriter.

// CreateProduct registers a product in the catalog backend.
func (c *Client) CreateProduct(ctx context.Context, p core.Product) (string, error) {
	body := map[string]any{"data": map[string]any{
		"type": "product",
		"attributes": map[string]any{
			"name":           p.Name,
			"sku":            p.SKU,
			"description":    p.Description,
			"commodity_type": "physical",
			"status":         "live",
		},
	}}
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, "authoring.create_product", http.MethodPost, "/pcm/products", nil, body, &out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

// CreatePrice adds a price for the SKU to the configured pricebook.
func (c *Client) CreatePrice(ctx context.Context, sku string, amount int) error {
	body := map[string]any{"data": map[string]any{
		"type": "product-price",
		"attributes": map[string]any{
			"sku": sku,
			"currencies": map[string]any{
				c.currency: map[string]any{"amount": amount, "includes_tax": true},
			},
		},
	}}
	path := fmt.Sprintf("/pcm/pricebooks/%s/prices", c.catalog.PricebookID)
	return c.do(ctx, "authoring.create_price", http.MethodPost, path, nil, body, nil)
}

// AttachImage uploads an image by URL and links it as the product's main image.
func (c *Client) AttachImage(ctx context.Context, productID, imageURL string) error {
	body := map[string]any{"file_location": imageURL}
	var file struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, "authoring.upload_image", http.MethodPost, "/v2/files", nil, body, &file); err != nil {
		return err
	}
	link := map[string]any{"data": map[string]any{"type": "file", "id": file.Data.ID}}
	path := fmt.Sprintf("/pcm/products/%s/relationships/main_image", productID)
	return c.do(ctx, "authoring.link_image", http.MethodPost, path, nil, link, nil)
}

// CreateFulfillmentLocation adds an entry to the locations flow.
func (c *Client) CreateFulfillmentLocation(ctx context.Context, loc core.FulfillmentLocation) (string, error) {
	body := map[string]any{"data": map[string]any{
		"type":      "entry",
		"address":   loc.Address,
		"alias":     loc.Alias,
		"longitude": loc.Coordinates.Lon,
		"latitude":  loc.Coordinates.Lat,
		"admin_id":  loc.AdminContactID,
	}}
	path := fmt.Sprintf("/v2/flows/%s/entries", c.catalog.LocationsFlow)
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, "authoring.create_location", http.MethodPost, path, nil, body, &out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}
