package backend

import (
	"context"
	"sync"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
)

// Ensure Reloadable implements the fetcher interfaces.
var (
	_ driven.LogFetcher     = (*Reloadable)(nil)
	_ driven.ContextFetcher = (*Reloadable)(nil)
	_ driven.AuditFetcher   = (*Reloadable)(nil)
	_ driven.CostFetcher    = (*Reloadable)(nil)
)

// Reloadable forwards fetches to a Client that can be replaced while
// requests are in flight. Calls made with no client fail with
// domain.ErrBackendNotConfigured.
type Reloadable struct {
	mu     sync.RWMutex
	client *Client
}

// NewReloadable wraps client, which may be nil.
func NewReloadable(client *Client) *Reloadable {
	return &Reloadable{client: client}
}

// Swap installs client and returns the previous one.
func (r *Reloadable) Swap(client *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.client
	r.client = client
	return prev
}

// Client returns the current client, or nil.
func (r *Reloadable) Client() *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// FetchLogs implements driven.LogFetcher.
func (r *Reloadable) FetchLogs(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchLogs(ctx, q)
}

// FetchContexts implements driven.ContextFetcher.
func (r *Reloadable) FetchContexts(ctx context.Context, agentCode, versionID string) ([]domain.Context, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchContexts(ctx, agentCode, versionID)
}

// FetchContextHistory implements driven.ContextFetcher.
func (r *Reloadable) FetchContextHistory(ctx context.Context, promptCode string) ([]domain.Context, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchContextHistory(ctx, promptCode)
}

// FetchAuditByRequest implements driven.AuditFetcher.
func (r *Reloadable) FetchAuditByRequest(ctx context.Context, requestID string) ([]domain.LogRecord, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchAuditByRequest(ctx, requestID)
}

// FetchAuditBySession implements driven.AuditFetcher.
func (r *Reloadable) FetchAuditBySession(ctx context.Context, sessionID string) ([]domain.LogRecord, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchAuditBySession(ctx, sessionID)
}

// FetchAgentMetrics implements driven.CostFetcher.
func (r *Reloadable) FetchAgentMetrics(ctx context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchAgentMetrics(ctx, q)
}

// FetchAgentMonthlyCosts implements driven.CostFetcher.
func (r *Reloadable) FetchAgentMonthlyCosts(ctx context.Context) ([]domain.MonthlyCost, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchAgentMonthlyCosts(ctx)
}

// FetchUserMonthlyCosts implements driven.CostFetcher.
func (r *Reloadable) FetchUserMonthlyCosts(ctx context.Context) ([]domain.MonthlyCost, error) {
	c := r.Client()
	if c == nil {
		return nil, domain.ErrBackendNotConfigured
	}
	return c.FetchUserMonthlyCosts(ctx)
}
