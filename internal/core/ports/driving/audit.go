package driving

import (
	"context"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// AuditService looks up the audit trail of a request or a session.
type AuditService interface {
	// ByRequest returns the logs of requestID, oldest first.
	ByRequest(ctx context.Context, requestID string) ([]domain.LogRecord, error)

	// BySession returns the logs of sessionID, oldest first.
	BySession(ctx context.Context, sessionID string) ([]domain.LogRecord, error)
}

// CostService reports agent metrics and spend.
type CostService interface {
	// Metrics returns matching metrics, newest first.
	Metrics(ctx context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error)

	// AgentMonthly returns per-agent monthly spend passing f, newest month first.
	AgentMonthly(ctx context.Context, f domain.CostFilter) ([]domain.MonthlyCost, error)

	// UserMonthly returns per-user monthly spend passing f, newest month first.
	UserMonthly(ctx context.Context, f domain.CostFilter) ([]domain.MonthlyCost, error)
}
