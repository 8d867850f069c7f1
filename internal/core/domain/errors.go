package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRange indicates a time range whose start is not before its end.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrMissingCorrelation indicates a log has no request ID or agent code
	// and cannot be correlated with inference logs.
	ErrMissingCorrelation = errors.New("missing requestId or agentCode")

	// ErrInvalidResponse indicates the backend returned a payload of the wrong shape.
	ErrInvalidResponse = errors.New("invalid response format")

	// Backend Errors.

	// ErrBackendNotConfigured indicates no backend base URL is set.
	ErrBackendNotConfigured = errors.New("backend not configured")

	// ErrBackendUnavailable indicates the backend failed with a server error.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrRateLimited indicates the backend rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates the backend rejected the request as unauthenticated.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAccessDenied indicates the authenticated caller lacks permission.
	ErrAccessDenied = errors.New("access denied")

	// ErrTokenUnavailable indicates the configured auth method could not produce a token.
	ErrTokenUnavailable = errors.New("token unavailable")
)
