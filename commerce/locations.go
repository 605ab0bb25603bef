package commerce

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ordermesh/ordermesh/core"
)

type locationEntry struct {
	ID        string  `json:"id"`
	Address   string  `json:"address"`
	Alias     string  `json:"alias"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	AdminID   string  `json:"admin_id"`
}

func (e locationEntry) toLocation() core.FulfillmentLocation {
	return core.FulfillmentLocation{
		ID:             e.ID,
		Address:        e.Address,
		Alias:          e.Alias,
		Coordinates:    core.Coordinates{Lon: e.Longitude, Lat: e.Latitude},
		AdminContactID: e.AdminID,
	}
}

// ListFulfillmentLocations pages through the locations flow and returns every
// entry. The backend paginates; links.next is followed until exhausted.
func (c *Client) ListFulfillmentLocations(ctx context.Context) ([]core.FulfillmentLocation, error) {
	path := fmt.Sprintf("/v2/flows/%s/entries", c.catalog.LocationsFlow)
	var locations []core.FulfillmentLocation
	for path != "" {
		var out struct {
			Data  []locationEntry `json:"data"`
			Links struct {
				Next string `json:"next"`
			} `json:"links"`
		}
		if err := c.do(ctx, "locations.list", http.MethodGet, path, nil, nil, &out); err != nil {
			return nil, err
		}
		for _, entry := range out.Data {
			locations = append(locations, entry.toLocation())
		}
		if len(out.Data) == 0 || out.Links.Next == "" {
			break
		}
		path = strings.TrimPrefix(out.Links.Next, c.baseURL)
	}
	return locations, nil
}

// GetFulfillmentLocation fetches a single location entry by id.
func (c *Client) GetFulfillmentLocation(ctx context.Context, id string) (core.FulfillmentLocation, error) {
	path := fmt.Sprintf("/v2/flows/%s/entries/%s", c.catalog.LocationsFlow, id)
	var out struct {
		Data locationEntry `json:"data"`
	}
	if err := c.do(ctx, "locations.get", http.MethodGet, path, nil, nil, &out); err != nil {
		return core.FulfillmentLocation{}, err
	}
	return out.Data.toLocation(), nil
}
