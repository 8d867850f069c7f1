package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/auth"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure Client implements the fetcher interfaces.
var (
	_ driven.LogFetcher     = (*Client)(nil)
	_ driven.ContextFetcher = (*Client)(nil)
	_ driven.AuditFetcher   = (*Client)(nil)
	_ driven.CostFetcher    = (*Client)(nil)
)

// MaxResponseBytes caps the size of a response body.
const MaxResponseBytes = 64 << 20

// DefaultUserAgent identifies the client to the backend.
const DefaultUserAgent = "agentops-cli"

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. https://ops.example.com/api.
	BaseURL string

	// Timeout bounds each request. Zero uses domain.DefaultRequestTimeout.
	Timeout time.Duration

	// RateLimit caps requests per second. Zero disables throttling.
	RateLimit float64

	// TokenProvider authenticates requests. Nil or AuthMethodNone sends no header.
	TokenProvider driven.TokenProvider

	// HTTPClient overrides the underlying client. Its transport is wrapped for auth.
	HTTPClient *http.Client

	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

// Client is a REST client for the agent-operations backend.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *RateLimiter
	userAgent string
}

// New creates a Client. It fails with ErrBackendNotConfigured when no base URL is set.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, domain.ErrBackendNotConfigured
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q must be an absolute http(s) URL", domain.ErrInvalidInput, opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}

	if tp := opts.TokenProvider; tp != nil && tp.AuthMethod() != domain.AuthMethodNone {
		baseTransport := httpClient.Transport
		if baseTransport == nil {
			baseTransport = http.DefaultTransport
		}
		httpClient.Transport = &oauth2.Transport{
			Source: auth.NewTokenSource(context.Background(), tp),
			Base:   baseTransport,
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		limiter:   NewRateLimiter(opts.RateLimit),
		userAgent: userAgent,
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpoint joins path segments onto the base URL, escaping each one.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// getJSON performs a GET and returns the body of a 2xx response.
func (c *Client) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, domain.ErrTokenUnavailable):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrBackendUnavailable, err)
	}
	logger.Debug("GET %s -> %d (%d bytes, %s)", rawURL, resp.StatusCode, len(body), time.Since(start).Round(time.Millisecond))

	c.limiter.Observe(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, rawURL, body)
	}
	if len(body) > MaxResponseBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrInvalidResponse, MaxResponseBytes)
	}
	return body, nil
}
