package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionStore is the durable shared key/value store holding per-user
// conversation state. Implementations must be safe for concurrent use and
// must survive process restarts (the in-memory implementation is for tests
// and examples only).
//
// Contract:
//   - Get returns (value, true, nil) when the key exists
//   - Set overwrites unconditionally
//   - SetNX writes only when the key is absent and reports whether it wrote
//   - Delete is a no-op for absent keys
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetNX(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Session key naming scheme. The scheme is a stable external contract: other
// processes (the bulk loader, operational tooling) read the same keys.
const (
	keyCartID          = "%s_cart_id"
	keyCartExpiresAt   = "%s_cart_expires_at"
	keyCustomerID      = "%s_customer_id"
	keyCoordinates     = "%s_coordinates"
	keyNearestLocation = "%s_nearest_location_id"
	keyLocationAdmin   = "%s_admin_id"
	keyCartIsDelivery  = "%s_is_delivery"
	keyState           = "%s_state"
)

// LocationAdminKey returns the store key holding a fulfillment location's
// admin contact id. Keyed by location, not by user: the binding is shared.
func LocationAdminKey(locationID string) string {
	return fmt.Sprintf(keyLocationAdmin, locationID)
}

// CartDeliveryKey returns the store key flagging whether the order paid for
// cart cartID is a delivery order. Keyed by cart so the flag is scoped to a
// single checkout.
func CartDeliveryKey(cartID string) string {
	return fmt.Sprintf(keyCartIsDelivery, cartID)
}

// UserSession provides typed access to one user's session fields. It is a
// cheap value wrapper around the shared store; construct it per dispatch.
type UserSession struct {
	store  SessionStore
	userID string
}

// NewUserSession binds a store to a user id.
func NewUserSession(store SessionStore, userID string) UserSession {
	return UserSession{store: store, userID: userID}
}

// UserID returns the bound user identifier.
func (s UserSession) UserID() string { return s.userID }

// Store returns the underlying shared store.
func (s UserSession) Store() SessionStore { return s.store }

func (s UserSession) key(format string) string { return fmt.Sprintf(format, s.userID) }

// State returns the persisted conversation state, defaulting to Browsing.
func (s UserSession) State(ctx context.Context) (State, error) {
	raw, _, err := s.store.Get(ctx, s.key(keyState))
	if err != nil {
		return StateBrowsing, err
	}
	return ParseState(raw), nil
}

// SetState persists the conversation state.
func (s UserSession) SetState(ctx context.Context, st State) error {
	return s.store.Set(ctx, s.key(keyState), st.String())
}

// CartID returns the stored cart id, if any.
func (s UserSession) CartID(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.key(keyCartID))
}

// CartExpiresAt returns the stored cart expiry as a Unix timestamp.
func (s UserSession) CartExpiresAt(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.key(keyCartExpiresAt))
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse cart expiry %q: %w", raw, err)
	}
	return time.Unix(secs, 0), true, nil
}

// SetCart stores the cart id together with its backend-reported expiry.
func (s UserSession) SetCart(ctx context.Context, cartID string, expiresAt time.Time) error {
	if err := s.store.Set(ctx, s.key(keyCartID), cartID); err != nil {
		return err
	}
	return s.store.Set(ctx, s.key(keyCartExpiresAt), strconv.FormatInt(expiresAt.Unix(), 10))
}

// ClearCart removes the cart binding. Idempotent.
func (s UserSession) ClearCart(ctx context.Context) error {
	return s.store.Delete(ctx, s.key(keyCartID), s.key(keyCartExpiresAt))
}

// CustomerID returns the bound backend customer id, if any.
func (s UserSession) CustomerID(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.key(keyCustomerID))
}

// SetCustomerID binds the backend customer record to this user.
func (s UserSession) SetCustomerID(ctx context.Context, id string) error {
	return s.store.Set(ctx, s.key(keyCustomerID), id)
}

// Coordinates returns the stored customer coordinates.
func (s UserSession) Coordinates(ctx context.Context) (Coordinates, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.key(keyCoordinates))
	if err != nil || !ok {
		return Coordinates{}, ok, err
	}
	coords, err := ParseCoordinates(raw)
	if err != nil {
		return Coordinates{}, false, err
	}
	return coords, true, nil
}

// SetCoordinates stores the customer coordinates.
func (s UserSession) SetCoordinates(ctx context.Context, c Coordinates) error {
	return s.store.Set(ctx, s.key(keyCoordinates), c.Encode())
}

// NearestLocationID returns the chosen fulfillment location id.
func (s UserSession) NearestLocationID(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.key(keyNearestLocation))
}

// SetNearestLocation stores the chosen fulfillment location and its admin
// contact binding.
func (s UserSession) SetNearestLocation(ctx context.Context, loc FulfillmentLocation) error {
	if err := s.store.Set(ctx, s.key(keyNearestLocation), loc.ID); err != nil {
		return err
	}
	return s.store.Set(ctx, LocationAdminKey(loc.ID), loc.AdminContactID)
}

// Coordinates is a geographic point. Longitude first, matching the backend's
// entry schema and the stored encoding.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Encode renders the stored "lon:lat" form.
func (c Coordinates) Encode() string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + ":" + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// ParseCoordinates parses the stored "lon:lat" form.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("malformed coordinates %q", s)
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("malformed longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("malformed latitude %q: %w", parts[1], err)
	}
	return Coordinates{Lon: lon, Lat: lat}, nil
}
