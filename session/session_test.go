package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
)

func TestInMemoryStoreContract(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v1"))
	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", val)

	// SetNX writes only when absent.
	wrote, err := store.SetNX(ctx, "k", "v2")
	require.NoError(t, err)
	assert.False(t, wrote)
	wrote, err = store.SetNX(ctx, "k2", "v2")
	require.NoError(t, err)
	assert.True(t, wrote)

	// Delete is a no-op for absent keys.
	require.NoError(t, store.Delete(ctx, "k", "k2", "missing"))
	assert.Equal(t, 0, store.Len())
}

func TestUserSessionStateDefaultsToBrowsing(t *testing.T) {
	sess := core.NewUserSession(NewInMemoryStore(), "42")
	ctx := context.Background()

	st, err := sess.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.StateBrowsing, st)

	require.NoError(t, sess.SetState(ctx, core.StateCartView))
	st, err = sess.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.StateCartView, st)
}

func TestUserSessionCartBinding(t *testing.T) {
	sess := core.NewUserSession(NewInMemoryStore(), "42")
	ctx := context.Background()

	_, ok, err := sess.CartID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	expiry := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	require.NoError(t, sess.SetCart(ctx, "cart-1", expiry))

	id, ok, err := sess.CartID(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "cart-1", id)

	got, ok, err := sess.CartExpiresAt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(expiry))

	require.NoError(t, sess.ClearCart(ctx))
	_, ok, err = sess.CartID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	// Clearing twice is fine.
	require.NoError(t, sess.ClearCart(ctx))
}

func TestUserSessionCoordinatesAndLocation(t *testing.T) {
	store := NewInMemoryStore()
	sess := core.NewUserSession(store, "42")
	ctx := context.Background()

	coords := core.Coordinates{Lon: 37.62, Lat: 55.75}
	require.NoError(t, sess.SetCoordinates(ctx, coords))
	got, ok, err := sess.Coordinates(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, coords, got)

	loc := core.FulfillmentLocation{ID: "loc1", AdminContactID: "admin-9"}
	require.NoError(t, sess.SetNearestLocation(ctx, loc))

	id, ok, err := sess.NearestLocationID(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "loc1", id)

	// The admin binding is shared, keyed by location rather than user.
	admin, ok, err := store.Get(ctx, core.LocationAdminKey("loc1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "admin-9", admin)
}

func TestUserSessionsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	a := core.NewUserSession(store, "1")
	b := core.NewUserSession(store, "2")

	require.NoError(t, a.SetCustomerID(ctx, "cust-a"))
	_, ok, err := b.CustomerID(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
