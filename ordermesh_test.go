package ordermesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/internal/testutil"
)

func newTestBot() (*Bot, *testutil.FakeCommerce, *testutil.FakeMessenger, *testutil.FakePayments) {
	backend := testutil.NewFakeCommerce()
	backend.AddProduct(core.Product{ID: "p1", SKU: "sku1", Name: "Margherita", Description: "Classic"}, 500)
	backend.Locations = []core.FulfillmentLocation{{
		ID:             "loc1",
		Address:        "Main st 1",
		Coordinates:    core.Coordinates{Lon: 37.6, Lat: 55.75},
		AdminContactID: "admin-1",
	}}
	messenger := &testutil.FakeMessenger{}
	payments := &testutil.FakePayments{}
	bot := New(backend, messenger, payments)
	return bot, backend, messenger, payments
}

func TestBotFullOrderViaCallbacks(t *testing.T) {
	bot, backend, messenger, payments := newTestBot()
	ctx := context.Background()
	const user = "42"

	require.NoError(t, bot.HandleCallback(ctx, user, "main_menu", 1))
	require.NoError(t, bot.HandleCallback(ctx, user, "product:p1", 1))
	require.NoError(t, bot.HandleCallback(ctx, user, "add_to_cart:p1", 2))
	require.NoError(t, bot.HandleCallback(ctx, user, "show_cart", 1))
	require.NoError(t, bot.HandleCallback(ctx, user, "make_order", 1))
	require.NoError(t, bot.HandleText(ctx, user, "hungry@example.com"))
	require.NoError(t, bot.HandleLocation(ctx, user, 37.601, 55.751))
	require.NoError(t, bot.HandleCallback(ctx, user, "delivery:::0", 1))

	inv, ok := payments.LastInvoice()
	require.True(t, ok)
	assert.Equal(t, 2*500*100, inv.Amount)

	require.NoError(t, bot.HandlePreCheckout(ctx, user, "q-1"))
	assert.Equal(t, []string{"q-1"}, payments.Confirmations)

	require.NoError(t, bot.HandlePayment(ctx, user, inv.Payload))
	assert.False(t, backend.HasCart(inv.Payload))

	// Delivery hand-off reached the location admin.
	_, ok = messenger.LastTo("admin-1")
	assert.True(t, ok)
}

func TestBotDropsUnparseableCallback(t *testing.T) {
	bot, backend, messenger, _ := newTestBot()
	before := len(messenger.AllMessages())

	require.NoError(t, bot.HandleCallback(context.Background(), "42", "???", 1))

	assert.Len(t, messenger.AllMessages(), before)
	assert.Equal(t, 0, backend.CreateCartCalls)
}

func TestBotDropsTextOutsideInputStates(t *testing.T) {
	bot, _, messenger, _ := newTestBot()

	// Browsing does not accept free text.
	require.NoError(t, bot.HandleText(context.Background(), "42", "hello there"))
	assert.Empty(t, messenger.AllMessages())
}
