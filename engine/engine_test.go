package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/flow"
	"github.com/ordermesh/ordermesh/internal/testutil"
	"github.com/ordermesh/ordermesh/resource"
	"github.com/ordermesh/ordermesh/session"
)

func resourceManager(backend core.Commerce, store core.SessionStore) *resource.Manager {
	return resource.New(backend, store)
}

const user = "42"

// The fixture places one fulfillment location at the city center; tests vary
// the customer's position relative to it to hit different fee bands.
var center = core.Coordinates{Lon: 37.6, Lat: 55.75}

type fixture struct {
	backend   *testutil.FakeCommerce
	store     *session.InMemoryStore
	messenger *testutil.FakeMessenger
	payments  *testutil.FakePayments
	notifier  *testutil.FakeNotifier
	geocoder  *testutil.FakeGeocoder
	eng       *Engine
}

func newFixture() *fixture {
	backend := testutil.NewFakeCommerce()
	backend.AddProduct(core.Product{ID: "p1", SKU: "sku1", Name: "Margherita", Description: "Tomato and mozzarella"}, 500)
	backend.AddProduct(core.Product{ID: "p2", SKU: "sku2", Name: "Pepperoni", Description: "Spicy salami"}, 650)
	backend.Locations = []core.FulfillmentLocation{{
		ID:             "loc1",
		Address:        "Main st 1",
		Alias:          "center",
		Coordinates:    center,
		AdminContactID: "admin-1",
	}}

	store := session.NewInMemoryStore()
	messenger := &testutil.FakeMessenger{}
	payments := &testutil.FakePayments{}
	notifier := &testutil.FakeNotifier{}
	geocoder := &testutil.FakeGeocoder{Known: map[string]core.Coordinates{
		"Main st 2": {Lon: 37.601, Lat: 55.751},
	}}

	machine := flow.NewMachine(flow.Services{
		Backend:   backend,
		Resources: resourceManager(backend, store),
		Geocoder:  geocoder,
		Payments:  payments,
		Messenger: messenger,
		Notifier:  notifier,
	})

	return &fixture{
		backend:   backend,
		store:     store,
		messenger: messenger,
		payments:  payments,
		notifier:  notifier,
		geocoder:  geocoder,
		eng:       New(store, machine, payments, messenger),
	}
}

func (f *fixture) state(t *testing.T) core.State {
	t.Helper()
	st, err := core.NewUserSession(f.store, user).State(context.Background())
	require.NoError(t, err)
	return st
}

func (f *fixture) setState(t *testing.T, st core.State) {
	t.Helper()
	require.NoError(t, core.NewUserSession(f.store, user).SetState(context.Background(), st))
}

func (f *fixture) handle(t *testing.T, cmd core.Command) {
	t.Helper()
	require.NoError(t, f.eng.Handle(context.Background(), user, cmd))
}

// checkoutToLocation drives the conversation up to the point where the user
// submits their position.
func (f *fixture) checkoutToLocation(t *testing.T) {
	t.Helper()
	f.handle(t, core.ShowMenu{})
	f.handle(t, core.SelectItem{ProductID: "p1"})
	f.handle(t, core.AddToCart{ProductID: "p1", Quantity: 1})
	f.handle(t, core.ViewCart{})
	f.handle(t, core.Checkout{})
	f.handle(t, core.EmailInput{Text: "a@b.co"})
	require.Equal(t, core.StateAwaitingLocation, f.state(t))
}

// offsetLat returns a point the given number of kilometers due north of the
// fixture's location. One degree of latitude is ~111.19 km.
func offsetLat(km float64) core.Coordinates {
	return core.Coordinates{Lon: center.Lon, Lat: center.Lat + km/111.19}
}

func TestDoubleAddAccumulatesQuantity(t *testing.T) {
	f := newFixture()

	f.handle(t, core.SelectItem{ProductID: "p1"})
	f.handle(t, core.AddToCart{ProductID: "p1", Quantity: 1})
	f.handle(t, core.SelectItem{ProductID: "p1"})
	f.handle(t, core.AddToCart{ProductID: "p1", Quantity: 1})

	cartID, ok, err := core.NewUserSession(f.store, user).CartID(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	items := f.backend.CartItems(cartID)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1000, items[0].Amount)
}

func TestQuantityStepperStaysOnCard(t *testing.T) {
	f := newFixture()

	f.handle(t, core.SelectItem{ProductID: "p1"})
	f.handle(t, core.AdjustQuantity{ProductID: "p1", Current: 1, Delta: 1})
	assert.Equal(t, core.StateItemDetail, f.state(t))

	// Floor of 1: decrementing below one re-renders at one.
	f.handle(t, core.AdjustQuantity{ProductID: "p1", Current: 1, Delta: -1})
	assert.Equal(t, core.StateItemDetail, f.state(t))

	last, ok := f.messenger.LastTo(user)
	require.True(t, ok)
	assert.Equal(t, "1", last.Msg.Buttons[0][1].Text)
}

func TestEmptyCartRedirectsToMenu(t *testing.T) {
	f := newFixture()

	f.handle(t, core.ViewCart{})

	assert.Equal(t, core.StateBrowsing, f.state(t))
	msgs := f.messenger.AllMessages()
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].Msg.Text, "empty")
}

func TestCartViewListsItemsAndRemoval(t *testing.T) {
	f := newFixture()

	f.handle(t, core.SelectItem{ProductID: "p1"})
	f.handle(t, core.AddToCart{ProductID: "p1", Quantity: 2})
	f.handle(t, core.ViewCart{})
	require.Equal(t, core.StateCartView, f.state(t))

	last, ok := f.messenger.LastTo(user)
	require.True(t, ok)
	assert.Contains(t, last.Msg.Text, "Margherita")
	assert.Contains(t, last.Msg.Text, "Total due")

	cartID, _, err := core.NewUserSession(f.store, user).CartID(context.Background())
	require.NoError(t, err)
	items := f.backend.CartItems(cartID)
	require.Len(t, items, 1)

	f.handle(t, core.RemoveItem{ItemID: items[0].ID})
	// Cart emptied: removal re-renders the cart, which redirects to the menu.
	assert.Equal(t, core.StateBrowsing, f.state(t))
	assert.Empty(t, f.backend.CartItems(cartID))
}

func TestBadEmailRePrompts(t *testing.T) {
	f := newFixture()
	f.handle(t, core.SelectItem{ProductID: "p1"})
	f.handle(t, core.AddToCart{ProductID: "p1", Quantity: 1})
	f.handle(t, core.ViewCart{})
	f.handle(t, core.Checkout{})
	require.Equal(t, core.StateAwaitingEmail, f.state(t))

	for _, bad := range []string{"not-an-email", "a@b", "@b.co", "a b@c.co"} {
		f.handle(t, core.EmailInput{Text: bad})
		assert.Equal(t, core.StateAwaitingEmail, f.state(t), bad)
	}

	f.handle(t, core.EmailInput{Text: "a@b.co"})
	assert.Equal(t, core.StateAwaitingLocation, f.state(t))
}

func TestDuplicateEmailFromAnotherUserAdvances(t *testing.T) {
	f := newFixture()
	// First user registers the shared family address.
	f.checkoutToLocation(t)

	const other = "77"
	ctx := context.Background()
	otherSess := core.NewUserSession(f.store, other)
	require.NoError(t, otherSess.SetState(ctx, core.StateAwaitingEmail))

	// Same email again from another user: the backend conflicts, the
	// conversation still moves on to the location step.
	require.NoError(t, f.eng.Handle(ctx, other, core.EmailInput{Text: "a@b.co"}))

	st, err := otherSess.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.StateAwaitingLocation, st)

	// The record belongs to the first user; the second stays unbound.
	_, bound, err := otherSess.CustomerID(ctx)
	require.NoError(t, err)
	assert.False(t, bound)
}

func TestNearbyCustomerOfferedFreeDelivery(t *testing.T) {
	f := newFixture()
	f.checkoutToLocation(t)

	point := offsetLat(0.3)
	f.handle(t, core.LocationInput{Point: &point})
	require.Equal(t, core.StateDeliveryChoice, f.state(t))

	f.handle(t, core.ChooseDelivery{Fee: 0})
	require.Equal(t, core.StateAwaitingPayment, f.state(t))

	inv, ok := f.payments.LastInvoice()
	require.True(t, ok)
	assert.Equal(t, 500*100, inv.Amount)
	assert.Contains(t, inv.Description, "Margherita - 1")

	flag, _, err := f.store.Get(context.Background(), core.CartDeliveryKey(inv.Payload))
	require.NoError(t, err)
	assert.Equal(t, "1", flag)
}

func TestMidRangeCustomerPaysDeliveryFee(t *testing.T) {
	f := newFixture()
	f.checkoutToLocation(t)

	point := offsetLat(3)
	f.handle(t, core.LocationInput{Point: &point})
	require.Equal(t, core.StateDeliveryChoice, f.state(t))

	f.handle(t, core.ChooseDelivery{Fee: 100})

	inv, ok := f.payments.LastInvoice()
	require.True(t, ok)
	assert.Equal(t, (500+100)*100, inv.Amount)
	assert.Contains(t, inv.Description, "delivery - 100")
}

func TestFarCustomerSkipsDeliveryChoice(t *testing.T) {
	f := newFixture()
	f.checkoutToLocation(t)

	point := offsetLat(30)
	f.handle(t, core.LocationInput{Point: &point})

	// Pickup only: straight to payment, no delivery offer.
	require.Equal(t, core.StateAwaitingPayment, f.state(t))
	inv, ok := f.payments.LastInvoice()
	require.True(t, ok)
	assert.Equal(t, 500*100, inv.Amount)

	flag, _, err := f.store.Get(context.Background(), core.CartDeliveryKey(inv.Payload))
	require.NoError(t, err)
	assert.Equal(t, "0", flag)
}

func TestUnresolvableAddressRePrompts(t *testing.T) {
	f := newFixture()
	f.checkoutToLocation(t)

	f.handle(t, core.LocationInput{Text: "nowhere at all"})
	assert.Equal(t, core.StateAwaitingLocation, f.state(t))

	f.handle(t, core.LocationInput{Text: "Main st 2"})
	assert.Equal(t, core.StateDeliveryChoice, f.state(t))
}

func TestDeliveryPaymentNotifiesAdminAndSchedulesFollowUp(t *testing.T) {
	f := newFixture()
	f.checkoutToLocation(t)

	point := offsetLat(0.3)
	f.handle(t, core.LocationInput{Point: &point})
	f.handle(t, core.ChooseDelivery{Fee: 0})

	inv, ok := f.payments.LastInvoice()
	require.True(t, ok)
	cartID := inv.Payload

	f.handle(t, core.PaymentDone{Payload: cartID})

	// The order settles back into browsing with the cart released.
	assert.Equal(t, core.StateBrowsing, f.state(t))
	assert.False(t, f.backend.HasCart(cartID))

	adminMsg, ok := f.messenger.LastTo("admin-1")
	require.True(t, ok)
	assert.Contains(t, adminMsg.Msg.Text, "New order")
	assert.Contains(t, adminMsg.Msg.Text, "Margherita")

	// The admin also gets the customer's position.
	require.NotEmpty(t, f.messenger.Locations)
	assert.Equal(t, "admin-1", f.messenger.Locations[0].ChatID)

	notes := f.notifier.Scheduled()
	require.Len(t, notes, 1)
	assert.Equal(t, user, notes[0].ChatID)
	assert.Equal(t, flow.DefaultFollowUpDelay, notes[0].Delay)
}

func TestPickupPaymentSendsLocationToUser(t *testing.T) {
	f := newFixture()
	f.checkoutToLocation(t)

	point := offsetLat(3)
	f.handle(t, core.LocationInput{Point: &point})
	f.handle(t, core.ChoosePickup{})

	inv, ok := f.payments.LastInvoice()
	require.True(t, ok)
	f.handle(t, core.PaymentDone{Payload: inv.Payload})

	assert.Equal(t, core.StateBrowsing, f.state(t))
	require.NotEmpty(t, f.messenger.Locations)
	loc := f.messenger.Locations[len(f.messenger.Locations)-1]
	assert.Equal(t, user, loc.ChatID)
	assert.Equal(t, center, loc.Point)
	assert.Empty(t, f.notifier.Scheduled())
}

func TestOutOfStateCommandRejected(t *testing.T) {
	f := newFixture()
	f.setState(t, core.StateAwaitingEmail)

	before := len(f.messenger.AllMessages())
	require.NoError(t, f.eng.Handle(context.Background(), user, core.AddToCart{ProductID: "p1", Quantity: 1}))

	// Dropped silently: no state change, no outbound message, no cart.
	assert.Equal(t, core.StateAwaitingEmail, f.state(t))
	assert.Len(t, f.messenger.AllMessages(), before)
	assert.Equal(t, 0, f.backend.CreateCartCalls)
}

func TestTransientBackendErrorKeepsState(t *testing.T) {
	f := newFixture()
	f.handle(t, core.SelectItem{ProductID: "p1"})
	require.Equal(t, core.StateItemDetail, f.state(t))

	f.backend.Err = core.NewBackendError(core.ErrorKindTransient, "carts.create", fmt.Errorf("backend down"))
	err := f.eng.Handle(context.Background(), user, core.AddToCart{ProductID: "p1", Quantity: 1})
	require.Error(t, err)

	assert.Equal(t, core.StateItemDetail, f.state(t))
	last, ok := f.messenger.LastTo(user)
	require.True(t, ok)
	assert.Contains(t, last.Msg.Text, "try again")
}

func TestPreCheckoutAlwaysConfirmed(t *testing.T) {
	f := newFixture()
	f.setState(t, core.StateBrowsing)

	f.handle(t, core.PreCheckout{QueryID: "q-1"})
	assert.Equal(t, []string{"q-1"}, f.payments.Confirmations)
}

func TestMenuPagination(t *testing.T) {
	f := newFixture()
	// Grow the catalog beyond one page.
	for i := 3; i <= 12; i++ {
		f.backend.AddProduct(core.Product{
			ID:   fmt.Sprintf("p%d", i),
			SKU:  fmt.Sprintf("sku%d", i),
			Name: fmt.Sprintf("Pizza %d", i),
		}, 400)
	}

	f.handle(t, core.ShowMenu{})
	first, ok := f.messenger.LastTo(user)
	require.True(t, ok)
	// 10 products + navigation row + cart row.
	require.Len(t, first.Msg.Buttons, 12)

	f.handle(t, core.ShowPage{From: 10, To: 20})
	assert.Equal(t, core.StateBrowsing, f.state(t))
	second, ok := f.messenger.LastTo(user)
	require.True(t, ok)
	// 2 remaining products + navigation row + cart row.
	assert.Len(t, second.Msg.Buttons, 4)
}
