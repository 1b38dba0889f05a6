package adapter

import "errors"

// Sentinel transport errors. mapHTTPError translates HTTP status codes into
// these values so callers can branch with [errors.Is] without knowing the
// wire protocol.
var (
	// ErrUnauthorized is returned when the server rejects the session
	// token. The transport refreshes the session on the next Connect.
	ErrUnauthorized = errors.New("transport unauthorized")

	// ErrServerUnavailable is returned for 5xx responses and connection
	// failures. Transient; the engine retries on the next trigger.
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrBadRequest is returned for 4xx responses other than 401/403.
	// Not retryable without a payload change.
	ErrBadRequest = errors.New("server rejected request")

	// ErrNotConnected is returned by data operations invoked without an
	// established session.
	ErrNotConnected = errors.New("transport is not connected")
)
