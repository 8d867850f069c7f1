package driven

import (
	"context"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// LogFetcher retrieves flat log records from the backend store.
type LogFetcher interface {
	// FetchLogs returns records created within [q.Start, q.End].
	// An empty q.Source returns records of every source.
	// Records are returned in backend order; callers sort.
	FetchLogs(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error)
}

// ContextFetcher retrieves prompt contexts from the backend store.
type ContextFetcher interface {
	// FetchContexts returns the contexts of one agent.
	// An empty versionID returns every version.
	FetchContexts(ctx context.Context, agentCode, versionID string) ([]domain.Context, error)

	// FetchContextHistory returns every stored version of one prompt.
	FetchContextHistory(ctx context.Context, promptCode string) ([]domain.Context, error)
}

// AuditFetcher retrieves the audit trail of one request or session.
type AuditFetcher interface {
	// FetchAuditByRequest returns every log written for requestID.
	FetchAuditByRequest(ctx context.Context, requestID string) ([]domain.LogRecord, error)

	// FetchAuditBySession returns every log written in sessionID.
	FetchAuditBySession(ctx context.Context, sessionID string) ([]domain.LogRecord, error)
}

// CostFetcher retrieves agent metrics and aggregated spend.
type CostFetcher interface {
	// FetchAgentMetrics returns metrics matching q. Filtering happens server-side.
	FetchAgentMetrics(ctx context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error)

	// FetchAgentMonthlyCosts returns spend per agent and month.
	FetchAgentMonthlyCosts(ctx context.Context) ([]domain.MonthlyCost, error)

	// FetchUserMonthlyCosts returns spend per agent, user and month.
	FetchUserMonthlyCosts(ctx context.Context) ([]domain.MonthlyCost, error)
}
