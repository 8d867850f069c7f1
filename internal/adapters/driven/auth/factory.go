package auth

import (
	"fmt"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
)

// NewTokenProvider creates the TokenProvider for the configured auth method.
// The timeout bounds token endpoint requests.
func NewTokenProvider(settings domain.AuthSettings, timeout time.Duration) (driven.TokenProvider, error) {
	switch settings.Method {
	case domain.AuthMethodNone, "":
		return NewNullTokenProvider(), nil
	case domain.AuthMethodToken:
		if settings.Token == "" {
			return nil, fmt.Errorf("%w: auth method token requires auth.token or %s", domain.ErrTokenUnavailable, "AGENTOPS_TOKEN")
		}
		return NewStaticTokenProvider(settings.Token), nil
	case domain.AuthMethodClientCredentials:
		if !settings.IsConfigured() {
			return nil, fmt.Errorf(
				"%w: client credentials require auth.token_url, auth.client_id and auth.client_secret",
				domain.ErrTokenUnavailable,
			)
		}
		return NewClientCredentialsProvider(settings, timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown auth method %q", domain.ErrInvalidInput, settings.Method)
	}
}
