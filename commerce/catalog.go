package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ordermesh/ordermesh/core"
)

type productAttributes struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
}

// ListProducts returns the products published in the latest catalog release
// for the configured node.
func (c *Client) ListProducts(ctx context.Context) ([]core.Product, error) {
	path := fmt.Sprintf("/pcm/catalogs/%s/releases/latest/nodes/%s/relationships/products", c.catalog.CatalogID, c.catalog.NodeID)
	var out struct {
		Data []struct {
			ID         string            `json:"id"`
			Attributes productAttributes `json:"attributes"`
		} `json:"data"`
	}
	if err := c.do(ctx, "catalog.list_products", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	products := make([]core.Product, 0, len(out.Data))
	for _, p := range out.Data {
		products = append(products, core.Product{
			ID:          p.ID,
			SKU:         p.Attributes.SKU,
			Name:        p.Attributes.Name,
			Description: p.Attributes.Description,
		})
	}
	return products, nil
}

// GetProduct fetches one product with its main image included.
func (c *Client) GetProduct(ctx context.Context, productID string) (core.Product, error) {
	query := url.Values{"include": {"main_image"}}
	var out struct {
		Data struct {
			ID         string            `json:"id"`
			Attributes productAttributes `json:"attributes"`
		} `json:"data"`
		Included struct {
			MainImages []struct {
				Link struct {
					Href string `json:"href"`
				} `json:"link"`
			} `json:"main_images"`
		} `json:"included"`
	}
	if err := c.do(ctx, "catalog.get_product", http.MethodGet, "/pcm/products/"+productID, query, nil, &out); err != nil {
		return core.Product{}, err
	}
	product := core.Product{
		ID:          out.Data.ID,
		SKU:         out.Data.Attributes.SKU,
		Name:        out.Data.Attributes.Name,
		Description: out.Data.Attributes.Description,
	}
	if len(out.Included.MainImages) > 0 {
		product.ImageURL = out.Included.MainImages[0].Link.Href
	}
	return product, nil
}

// GetPrice looks up the configured pricebook and returns the amount for the
// given SKU in the configured currency.
func (c *Client) GetPrice(ctx context.Context, sku string) (int, error) {
	query := url.Values{"include": {"prices"}}
	var out struct {
		Included []struct {
			Attributes struct {
				SKU        string `json:"sku"`
				Currencies map[string]struct {
					Amount int `json:"amount"`
				} `json:"currencies"`
			} `json:"attributes"`
		} `json:"included"`
	}
	if err := c.do(ctx, "catalog.get_price", http.MethodGet, "/pcm/pricebooks/"+c.catalog.PricebookID, query, nil, &out); err != nil {
		return 0, err
	}
	for _, price := range out.Included {
		if price.Attributes.SKU != sku {
			continue
		}
		if cur, ok := price.Attributes.Currencies[c.currency]; ok {
			return cur.Amount, nil
		}
	}
	return 0, core.NewBackendError(core.ErrorKindNotFound, "catalog.get_price", fmt.Errorf("no %s price for sku %s", c.currency, sku))
}
