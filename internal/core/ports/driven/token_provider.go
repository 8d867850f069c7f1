package driven

import (
	"context"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated backend calls.
// Implementations handle token refresh transparently.
type TokenProvider interface {
	// GetToken returns a valid access token.
	// If the current token is expired, it will be refreshed automatically.
	// Returns empty string for unauthenticated access.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method in use.
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if credentials are available.
	// Always true for unauthenticated access (NullTokenProvider).
	IsAuthenticated() bool
}
