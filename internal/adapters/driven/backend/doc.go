// Package backend implements the LogFetcher and ContextFetcher ports
// against the agent-operations REST API.
//
// Requests are throttled by a token bucket, authenticated through an
// oauth2.Transport when an auth method is configured, and non-2xx
// responses are mapped to domain sentinel errors.
package backend
