// Package geocode resolves free-text addresses to coordinates via an
// external geocoding HTTP API. Unresolvable input is a Validation-kind
// failure so the conversation re-prompts instead of crashing the session.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ordermesh/ordermesh/core"
)

// DefaultBaseURL points at the geocoding service.
const DefaultBaseURL = "https://geocode-maps.yandex.ru/1.x"

// Options configures a Client.
type Options struct {
	// BaseURL overrides the geocoding endpoint.
	BaseURL string
	// HTTPClient overrides the underlying http.Client.
	HTTPClient *http.Client
	// Timeout bounds each lookup.
	Timeout time.Duration
}

// Client is an HTTP geocoder.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	timeout time.Duration
}

// New constructs a geocoding client.
func New(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Timeout:    10 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{apiKey: apiKey, baseURL: opts.BaseURL, httpc: opts.HTTPClient, timeout: opts.Timeout}
}

// Resolve geocodes a free-text address. Returns core.ErrUnresolved when the
// service finds no match.
func (c *Client) Resolve(ctx context.Context, address string) (core.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{
		"apikey":  {c.apiKey},
		"geocode": {address},
		"format":  {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return core.Coordinates{}, fmt.Errorf("build geocode request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return core.Coordinates{}, core.NewBackendError(core.ErrorKindTransient, "geocode.resolve", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return core.Coordinates{}, core.NewBackendError(core.ErrorKindTransient, "geocode.resolve",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	var out struct {
		Response struct {
			GeoObjectCollection struct {
				FeatureMember []struct {
					GeoObject struct {
						Point struct {
							Pos string `json:"pos"`
						} `json:"Point"`
					} `json:"GeoObject"`
				} `json:"featureMember"`
			} `json:"GeoObjectCollection"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	members := out.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return core.Coordinates{}, core.ErrUnresolved
	}
	return parsePos(members[0].GeoObject.Point.Pos)
}

// parsePos parses the service's "lon lat" point encoding.
func parsePos(pos string) (core.Coordinates, error) {
	parts := strings.Fields(pos)
	if len(parts) != 2 {
		return core.Coordinates{}, core.ErrUnresolved
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return core.Coordinates{}, core.ErrUnresolved
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return core.Coordinates{}, core.ErrUnresolved
	}
	return core.Coordinates{Lon: lon, Lat: lat}, nil
}

var _ core.Geocoder = (*Client)(nil)
