package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermesh/ordermesh/core"
)

type stubSource struct {
	creds []core.Credential
	errs  []error
	calls int
}

func (s *stubSource) FetchToken(ctx context.Context) (core.Credential, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return core.Credential{}, s.errs[i]
	}
	if i >= len(s.creds) {
		i = len(s.creds) - 1
	}
	return s.creds[i], nil
}

func TestCacheRefreshesExpiringToken(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSource{creds: []core.Credential{
		{Token: "tok-1", ExpiresAt: base.Add(10 * time.Minute)},
		{Token: "tok-2", ExpiresAt: base.Add(2 * time.Hour)},
	}}
	cache := New(source)
	now := base
	cache.SetNow(func() time.Time { return now })

	tok, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, source.calls)

	// Still comfortably valid: no refresh.
	tok, err = cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, source.calls)

	// Within the 300s margin of expiry: refreshed before handing out.
	now = base.Add(6 * time.Minute)
	tok, err = cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, source.calls)
}

func TestCacheReturnsStaleTokenWhenRefreshFails(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSource{
		creds: []core.Credential{{Token: "tok-1", ExpiresAt: base.Add(time.Minute)}},
		errs:  []error{nil, errors.New("token endpoint down")},
	}
	cache := New(source)
	cache.SetNow(func() time.Time { return base })

	tok, err := cache.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", tok)

	// Expiring, refresh fails: the stale token comes back without error.
	tok, err = cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestCacheErrorsWhenNoTokenEverFetched(t *testing.T) {
	source := &stubSource{errs: []error{errors.New("boom")}, creds: []core.Credential{{}}}
	cache := New(source)

	_, err := cache.Token(context.Background())
	assert.Error(t, err)
}

func TestCacheInvalidateForcesRefresh(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSource{creds: []core.Credential{
		{Token: "tok-1", ExpiresAt: base.Add(2 * time.Hour)},
		{Token: "tok-2", ExpiresAt: base.Add(4 * time.Hour)},
	}}
	cache := New(source)
	cache.SetNow(func() time.Time { return base })

	_, err := cache.Token(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	tok, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, source.calls)
}
