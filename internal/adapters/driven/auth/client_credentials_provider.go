package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure ClientCredentialsProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ClientCredentialsProvider)(nil)

// expiryBuffer refreshes tokens this long before they expire.
const expiryBuffer = time.Minute

// ClientCredentialsProvider obtains access tokens with the OAuth2 client
// credentials grant. Tokens are cached until shortly before expiry.
type ClientCredentialsProvider struct {
	config  clientcredentials.Config
	timeout time.Duration

	mu     sync.Mutex
	source oauth2.TokenSource
	last   *oauth2.Token
}

// NewClientCredentialsProvider creates a provider for the given token endpoint.
// A zero timeout uses domain.DefaultRequestTimeout for token requests.
func NewClientCredentialsProvider(settings domain.AuthSettings, timeout time.Duration) *ClientCredentialsProvider {
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	return &ClientCredentialsProvider{
		config: clientcredentials.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			TokenURL:     settings.TokenURL,
			Scopes:       settings.Scopes,
		},
		timeout: timeout,
	}
}

// GetToken returns a cached access token, fetching a new one when needed.
func (p *ClientCredentialsProvider) GetToken(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		// The token source outlives any single request, so it gets its own context.
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: p.timeout})
		p.source = oauth2.ReuseTokenSourceWithExpiry(nil, p.config.TokenSource(ctx), expiryBuffer)
	}

	tok, err := p.source.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			logger.Warn("Token endpoint returned %d: %s %s", rerr.Response.StatusCode, rerr.ErrorCode, rerr.ErrorDescription)
		}
		return "", fmt.Errorf("%w: client credentials: %w", domain.ErrTokenUnavailable, err)
	}
	if p.last == nil || p.last.AccessToken != tok.AccessToken {
		logger.Debug("Obtained access token, expires %s", tok.Expiry.Format(time.RFC3339))
	}
	p.last = tok
	return tok.AccessToken, nil
}

// AuthMethod returns AuthMethodClientCredentials.
func (p *ClientCredentialsProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodClientCredentials
}

// IsAuthenticated returns true if the client is configured.
// It does not contact the token endpoint.
func (p *ClientCredentialsProvider) IsAuthenticated() bool {
	return p.config.TokenURL != "" && p.config.ClientID != "" && p.config.ClientSecret != ""
}

// Expiry returns the expiry of the last token obtained, zero if none.
func (p *ClientCredentialsProvider) Expiry() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return time.Time{}
	}
	return p.last.Expiry
}
