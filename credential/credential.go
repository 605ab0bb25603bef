// Package credential holds the process-wide backend access token and keeps it
// fresh. The cache is an explicit, injectable object owned by the composition
// root rather than a hidden global, so per-test fake credentials are trivial.
package credential

import (
	"context"
	"sync"
	"time"

	"github.com/ordermesh/ordermesh/core"
	"github.com/ordermesh/ordermesh/logging"
)

// DefaultMargin is the safety margin a token must remain valid for. A token
// expiring within the margin is refreshed before being handed out.
const DefaultMargin = 300 * time.Second

// Options configures a Cache.
type Options struct {
	// Margin overrides the validity safety margin.
	Margin time.Duration
	// Logger receives refresh outcomes. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Cache caches the shared credential and refreshes it proactively. Refresh is
// serialized under a mutex so two concurrent refreshes cannot interleave
// inconsistent token/expiry pairs.
//
// Refresh failures are non-fatal: the stale token is returned unchanged and
// the backend's own authorization failure surfaces on the actual API call.
type Cache struct {
	source core.TokenSource
	margin time.Duration
	logger logging.Logger

	mu   sync.Mutex
	cred core.Credential

	now func() time.Time
}

// New constructs a Cache over the given token source.
func New(source core.TokenSource, optFns ...func(o *Options)) *Cache {
	opts := Options{
		Margin: DefaultMargin,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{
		source: source,
		margin: opts.Margin,
		logger: opts.Logger,
		now:    time.Now,
	}
}

// Token returns a token valid for at least the safety margin where possible.
// When the cached token is close to expiry it refreshes synchronously; if the
// refresh fails the stale token is returned unchanged.
func (c *Cache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid() {
		return c.cred.Token, nil
	}

	cred, err := c.source.FetchToken(ctx)
	if err != nil {
		c.logger.Warn("credential refresh failed, keeping stale token", "error", err)
		if c.cred.Token == "" {
			return "", err
		}
		return c.cred.Token, nil
	}
	c.cred = cred
	c.logger.Debug("credential refreshed", "expires_at", cred.ExpiresAt)
	return c.cred.Token, nil
}

// Invalidate marks the cached token expired so the next Token call refreshes.
// Used by the commerce client for its single refresh-and-retry on a 401.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred.ExpiresAt = time.Time{}
}

// ExpiresAt returns the current credential expiry. Zero when never fetched.
func (c *Cache) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred.ExpiresAt
}

// valid reports whether the cached token outlives the margin. Caller must
// hold the mutex.
func (c *Cache) valid() bool {
	return c.cred.Token != "" && c.now().Add(c.margin).Before(c.cred.ExpiresAt)
}

// SetNow overrides the clock. Intended for tests.
func (c *Cache) SetNow(now func() time.Time) { c.now = now }

var _ core.TokenProvider = (*Cache)(nil)
