package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/logging"
)

// DefaultTimeout bounds a single backend round-trip.
const DefaultTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// HTTPClient overrides the underlying http.Client.
	HTTPClient *http.Client
	// Timeout bounds each backend call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Currency selects the pricebook currency. Defaults to "RUB".
	Currency string
	// Logger receives per-call diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// CatalogRef identifies the published catalog slice the client reads from.
type CatalogRef struct {
	CatalogID     string
	NodeID        string
	PricebookID   string
	LocationsFlow string
}

// Client talks to the commerce backend. All methods are safe for concurrent
// use. Authorization is delegated to the injected token provider.
type Client struct {
	baseURL  string
	catalog  CatalogRef
	tokens   core.TokenProvider
	httpc    *http.Client
	timeout  time.Duration
	currency string
	logger   logging.Logger
}

// New constructs a Client for the backend at baseURL.
func New(baseURL string, catalog CatalogRef, tokens core.TokenProvider, optFns ...func(o *Options)) *Client {
	opts := Options{
		HTTPClient: http.DefaultClient,
		Timeout:    DefaultTimeout,
		Currency:   "RUB",
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		baseURL:  baseURL,
		catalog:  catalog,
		tokens:   tokens,
		httpc:    opts.HTTPClient,
		timeout:  opts.Timeout,
		currency: opts.Currency,
		logger:   opts.Logger,
	}
}

// do performs one authorized JSON call. On a 401 the token is invalidated and
// the call retried exactly once; the second failure surfaces.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, op, method, path, query, body, out)
	if core.IsAuthorization(err) {
		c.tokens.Invalidate()
		c.logger.Debug("retrying after authorization failure", "op", op)
		err = c.doOnce(ctx, op, method, path, query, body, out)
	}
	if ol, ok := c.logger.(*logging.OrderLogger); ok {
		ol.LogBackendCall(op, time.Since(start), err)
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return core.NewBackendError(core.ErrorKindAuthorization, op, err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return core.NewBackendError(core.ErrorKindTransient, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusError(op, resp.StatusCode, payload)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// statusError maps an HTTP status onto the core error taxonomy.
func statusError(op string, status int, body []byte) error {
	err := fmt.Errorf("status %d: %s", status, bytes.TrimSpace(body))
	var kind core.ErrorKind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = core.ErrorKindAuthorization
	case status == http.StatusNotFound:
		kind = core.ErrorKindNotFound
	case status == http.StatusConflict:
		kind = core.ErrorKindConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = core.ErrorKindValidation
	default:
		kind = core.ErrorKindTransient
	}
	be := core.NewBackendError(kind, op, err)
	be.Status = status
	return be
}

var _ core.Commerce = (*Client)(nil)
var _ core.CatalogWriter = (*Client)(nil)
