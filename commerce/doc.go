// Package commerce implements core.Commerce against the hosted commerce
// backend's JSON:API-style REST interface. Every call runs through an
// explicit authorization wrapper that obtains a token from the injected
// provider, performs the request with a per-call timeout, and on a 401 does
// exactly one invalidate-refresh-retry before surfacing the failure. HTTP
// statuses map onto the core error taxonomy so callers never see transport
// details.
package commerce
