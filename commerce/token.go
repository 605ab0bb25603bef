package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ordermesh/ordermesh/core"
)

// TokenSource fetches access tokens via the client-credentials grant. It is
// deliberately independent of Client so the credential cache can be built
// before any authorized client exists.
type TokenSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpc        *http.Client
}

// NewTokenSource constructs a TokenSource for the backend at baseURL.
func NewTokenSource(baseURL, clientID, clientSecret string, httpc *http.Client) *TokenSource {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &TokenSource{baseURL: baseURL, clientID: clientID, clientSecret: clientSecret, httpc: httpc}
}

// FetchToken performs the client-credentials exchange. The backend reports
// expiry as an absolute Unix timestamp.
func (s *TokenSource) FetchToken(ctx context.Context) (core.Credential, error) {
	form := url.Values{
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return core.Credential{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return core.Credential{}, core.NewBackendError(core.ErrorKindTransient, "token.fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return core.Credential{}, statusError("token.fetch", resp.StatusCode, payload)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		Expires     int64  `json:"expires"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.Credential{}, fmt.Errorf("decode token response: %w", err)
	}
	return core.Credential{Token: body.AccessToken, ExpiresAt: time.Unix(body.Expires, 0)}, nil
}

var _ core.TokenSource = (*TokenSource)(nil)
