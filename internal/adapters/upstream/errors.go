package upstream

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMissingBaseURL means no league API base URL is configured.
	ErrMissingBaseURL = errors.New("league API base URL is not configured (set POKER_API_BASE or VITE_API_BASE)")

	// ErrStatus is a non-2xx answer from the league API.
	ErrStatus = errors.New("unexpected upstream status")

	// ErrDecode is a body that is not the expected JSON.
	ErrDecode = errors.New("undecodable upstream response")

	// ErrFallbackFailed means the callback (JSONP) retry failed too. It is
	// always joined with the primary error.
	ErrFallbackFailed = errors.New("callback fallback failed")

	// ErrUnknownCallback is a callback response naming no pending request.
	ErrUnknownCallback = errors.New("unknown callback")

	// ErrPlayerNotFound means the league API has no such player.
	ErrPlayerNotFound = errors.New("player not found")
)
