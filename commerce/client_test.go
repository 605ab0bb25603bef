package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
)

// staticTokens hands out fixed tokens and records invalidations.
type staticTokens struct {
	tokens       []string
	idx          atomic.Int32
	invalidation atomic.Int32
}

func (s *staticTokens) Token(ctx context.Context) (string, error) {
	i := int(s.idx.Load())
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i], nil
}

func (s *staticTokens) Invalidate() {
	s.invalidation.Add(1)
	s.idx.Add(1)
}

func testClient(t *testing.T, handler http.Handler) (*Client, *staticTokens) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := &staticTokens{tokens: []string{"tok-1", "tok-2"}}
	client := New(srv.URL, CatalogRef{
		CatalogID:   "cat-1",
		NodeID:      "node-1",
		PricebookID: "pb-1",
	}, tokens)
	return client, tokens
}

func TestClientRetriesOnceAfterUnauthorized(t *testing.T) {
	var calls atomic.Int32
	client, tokens := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": "cart-1"}})
	}))

	cart, err := client.CreateCart(context.Background(), "42_cart")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", cart.ID)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, tokens.invalidation.Load())
}

func TestClientSurfacesSecondUnauthorized(t *testing.T) {
	var calls atomic.Int32
	client, tokens := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.CreateCart(context.Background(), "42_cart")
	require.Error(t, err)
	assert.True(t, core.IsAuthorization(err))
	// Exactly one retry, not a loop.
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, tokens.invalidation.Load())
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   core.ErrorKind
	}{
		{http.StatusConflict, core.ErrorKindConflict},
		{http.StatusNotFound, core.ErrorKindNotFound},
		{http.StatusUnprocessableEntity, core.ErrorKindValidation},
		{http.StatusBadRequest, core.ErrorKindValidation},
		{http.StatusInternalServerError, core.ErrorKindTransient},
		{http.StatusBadGateway, core.ErrorKindTransient},
	}
	for _, tt := range tests {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := client.GetCart(context.Background(), "cart-1")
		require.Error(t, err)
		assert.Equal(t, tt.kind, core.KindOf(err), "status %d", tt.status)
	}
}

func TestCreateCartParsesExpiry(t *testing.T) {
	expiry := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/carts", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "cart-1",
			"meta": map[string]any{
				"timestamps": map[string]any{"expires_at": expiry.Format(time.RFC3339)},
			},
		}})
	}))

	cart, err := client.CreateCart(context.Background(), "42_cart")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", cart.ID)
	assert.True(t, cart.ExpiresAt.Equal(expiry))
}

func TestGetCartDecodesItems(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/carts/cart-1", r.URL.Path)
		assert.Equal(t, "items", r.URL.Query().Get("include"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id": "cart-1",
				"meta": map[string]any{"display_price": map[string]any{
					"with_tax": map[string]any{"amount": 1150, "formatted": "1150 RUB"},
				}},
			},
			"included": map[string]any{"items": []map[string]any{{
				"id":         "item-1",
				"product_id": "p1",
				"name":       "Margherita",
				"quantity":   2,
				"meta": map[string]any{"display_price": map[string]any{
					"with_tax": map[string]any{"value": map[string]any{"amount": 1000, "formatted": "1000 RUB"}},
				}},
			}}},
		})
	}))

	snap, err := client.GetCart(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, 1150, snap.Total)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Margherita", snap.Items[0].Name)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, 1000, snap.Items[0].Amount)
	assert.False(t, snap.Empty())
}

func TestAddItemSendsAdditivePayload(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/carts/cart-1/items", r.URL.Path)
		var body struct {
			Data struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Quantity int    `json:"quantity"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body.Data.ID)
		assert.Equal(t, "cart_item", body.Data.Type)
		assert.Equal(t, 3, body.Data.Quantity)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{}"))
	}))

	require.NoError(t, client.AddItem(context.Background(), "cart-1", "p1", 3))
}
