// Package loader bulk-imports a menu and a set of fulfillment addresses into
// the commerce backend. It is a one-shot provisioning tool invoked from the
// command line, not part of the conversational core.
package loader

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/logging"
)

// MenuItem is one product in the menu JSON file.
type MenuItem struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        int    `json:"price"`
	ProductImage struct {
		URL string `json:"url"`
	} `json:"product_image"`
}

// Address is one fulfillment point in the addresses JSON file. Coordinates
// arrive as strings in the source data.
type Address struct {
	Alias   string `json:"alias"`
	Address struct {
		Full string `json:"full"`
	} `json:"address"`
	Coordinates struct {
		Lon string `json:"lon"`
		Lat string `json:"lat"`
	} `json:"coordinates"`
}

// Loader writes catalog data through the authoring interface.
type Loader struct {
	writer core.CatalogWriter
	logger logging.Logger
}

// New constructs a Loader.
func New(writer core.CatalogWriter, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Loader{writer: writer, logger: logger}
}

// LoadMenu reads the menu JSON and creates each product with its price and
// image. Products the backend already knows (Conflict) are skipped so the
// loader is safe to re-run.
func (l *Loader) LoadMenu(ctx context.Context, r io.Reader) error {
	var items []MenuItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return fmt.Errorf("decode menu: %w", err)
	}

	for _, item := range items {
		sku := skuFor(item.Name)
		productID, err := l.writer.CreateProduct(ctx, core.Product{
			SKU:         sku,
			Name:        item.Name,
			Description: item.Description,
		})
		if err != nil {
			if core.IsConflict(err) || core.IsValidation(err) {
				l.logger.Info("product already present, skipping", "name", item.Name)
				continue
			}
			return fmt.Errorf("create product %q: %w", item.Name, err)
		}
		if err := l.writer.CreatePrice(ctx, sku, item.Price); err != nil {
			return fmt.Errorf("create price for %q: %w", item.Name, err)
		}
		if item.ProductImage.URL != "" {
			if err := l.writer.AttachImage(ctx, productID, item.ProductImage.URL); err != nil {
				return fmt.Errorf("attach image for %q: %w", item.Name, err)
			}
		}
		l.logger.Info("product loaded", "name", item.Name, "product_id", productID)
	}
	return nil
}

// LoadAddresses reads the addresses JSON and creates a fulfillment location
// per entry.
func (l *Loader) LoadAddresses(ctx context.Context, r io.Reader) error {
	var addresses []Address
	if err := json.NewDecoder(r).Decode(&addresses); err != nil {
		return fmt.Errorf("decode addresses: %w", err)
	}

	for _, addr := range addresses {
		lon, err := strconv.ParseFloat(addr.Coordinates.Lon, 64)
		if err != nil {
			return fmt.Errorf("address %q: bad longitude %q", addr.Alias, addr.Coordinates.Lon)
		}
		lat, err := strconv.ParseFloat(addr.Coordinates.Lat, 64)
		if err != nil {
			return fmt.Errorf("address %q: bad latitude %q", addr.Alias, addr.Coordinates.Lat)
		}
		id, err := l.writer.CreateFulfillmentLocation(ctx, core.FulfillmentLocation{
			Address:     addr.Address.Full,
			Alias:       addr.Alias,
			Coordinates: core.Coordinates{Lon: lon, Lat: lat},
		})
		if err != nil {
			if core.IsConflict(err) {
				l.logger.Info("address already present, skipping", "alias", addr.Alias)
				continue
			}
			return fmt.Errorf("create location %q: %w", addr.Alias, err)
		}
		l.logger.Info("location loaded", "alias", addr.Alias, "location_id", id)
	}
	return nil
}

// skuFor derives a stable SKU from the product name, matching how the menu
// was originally provisioned.
func skuFor(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}
