package resource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/logging"
)

// DefaultMargin is the remaining-lifetime threshold below which a cart is
// considered expiring and replaced rather than reused.
const DefaultMargin = 300 * time.Second

// Options configures a Manager.
type Options struct {
	// Margin overrides the cart expiry safety margin.
	Margin time.Duration
	// Logger receives lifecycle events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Manager coordinates cart lifecycle and customer binding against the
// commerce backend, persisting ids and expiries in the shared session store.
// Safe for concurrent use across users; same-user EnsureCart calls are
// serialized in-process through a keyed mutex (see DESIGN.md for the
// cross-process caveat inherited from the source design).
type Manager struct {
	backend core.Commerce
	store   core.SessionStore
	margin  time.Duration
	logger  logging.Logger
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a Manager.
func New(backend core.Commerce, store core.SessionStore, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Margin: DefaultMargin,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{
		backend: backend,
		store:   store,
		margin:  opts.Margin,
		logger:  opts.Logger,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// EnsureCart returns a cart id valid for at least the safety margin, creating
// a fresh cart when the stored one is absent or expiring. The possibly new id
// is persisted together with the backend-reported expiry before returning.
func (m *Manager) EnsureCart(ctx context.Context, userID string) (string, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess := core.NewUserSession(m.store, userID)

	cartID, haveID, err := sess.CartID(ctx)
	if err != nil {
		return "", fmt.Errorf("read cart id: %w", err)
	}
	expiresAt, haveExpiry, err := sess.CartExpiresAt(ctx)
	if err != nil {
		return "", fmt.Errorf("read cart expiry: %w", err)
	}
	if haveID && haveExpiry && m.now().Add(m.margin).Before(expiresAt) {
		return cartID, nil
	}

	cart, err := m.backend.CreateCart(ctx, fmt.Sprintf("%d_cart", m.now().Unix()))
	if err != nil {
		return "", fmt.Errorf("create cart: %w", err)
	}
	if err := sess.SetCart(ctx, cart.ID, cart.ExpiresAt); err != nil {
		return "", fmt.Errorf("persist cart: %w", err)
	}
	m.logger.Info("cart created", "user_id", userID, "cart_id", cart.ID, "expires_at", cart.ExpiresAt)
	return cart.ID, nil
}

// ReleaseCart deletes the user's cart from the backend and clears the session
// binding. Idempotent: absent carts on either side are treated as released.
func (m *Manager) ReleaseCart(ctx context.Context, userID string) error {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess := core.NewUserSession(m.store, userID)

	cartID, ok, err := sess.CartID(ctx)
	if err != nil {
		return fmt.Errorf("read cart id: %w", err)
	}
	if !ok {
		return nil
	}
	if err := m.backend.DeleteCart(ctx, cartID); err != nil && !core.IsNotFound(err) {
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	if err := sess.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart binding: %w", err)
	}
	m.logger.Info("cart released", "user_id", userID, "cart_id", cartID)
	return nil
}

// BindCustomer creates the backend customer record and stores its id. A
// Conflict from the backend ("already exists") is treated as success: the
// previously stored customer id keeps serving the user, and when no binding
// is stored the user proceeds unbound rather than being blocked on a record
// owned by someone else.
func (m *Manager) BindCustomer(ctx context.Context, userID, name, email string) (string, error) {
	sess := core.NewUserSession(m.store, userID)

	customerID, err := m.backend.CreateCustomer(ctx, name, email)
	if err != nil {
		if !core.IsConflict(err) {
			return "", fmt.Errorf("create customer: %w", err)
		}
		existing, ok, gerr := sess.CustomerID(ctx)
		if gerr != nil {
			return "", fmt.Errorf("read customer id: %w", gerr)
		}
		if !ok {
			// Registered elsewhere and never bound here. There is no id to
			// recover, but the order proceeds without one.
			m.logger.Debug("customer already registered, proceeding unbound", "user_id", userID)
			return "", nil
		}
		m.logger.Debug("customer already registered", "user_id", userID, "customer_id", existing)
		return existing, nil
	}
	if err := sess.SetCustomerID(ctx, customerID); err != nil {
		return "", fmt.Errorf("persist customer id: %w", err)
	}
	return customerID, nil
}

// userLock returns the per-user mutex, allocating it on first use.
func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// SetNow overrides the clock. Intended for tests.
func (m *Manager) SetNow(now func() time.Time) { m.now = now }
