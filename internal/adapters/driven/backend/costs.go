package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/logger"
	"github.com/custodia-labs/agentops-cli/internal/payload"
)

const (
	metricsPath          = "agent-metrics"
	agentMonthlyCostPath = "aggregated-agent-monthly-cost"
	userMonthlyCostPath  = "monthly-user-agent-cost"
)

// FetchAgentMetrics returns the metrics matching q.
func (c *Client) FetchAgentMetrics(ctx context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error) {
	query := url.Values{}
	if q.AgentCode != "" {
		query.Set("agent_code", q.AgentCode)
	}
	if q.MetricCode != "" {
		query.Set("metric_code", q.MetricCode)
	}
	if !q.Start.IsZero() {
		query.Set("start_time", domain.FormatTimestamp(q.Start))
	}
	if !q.End.IsZero() {
		query.Set("end_time", domain.FormatTimestamp(q.End))
	}

	body, err := c.getJSON(ctx, c.endpoint(query, metricsPath))
	if err != nil {
		return nil, err
	}

	metrics, err := payload.DecodeAgentMetrics(body)
	if err != nil {
		return nil, fmt.Errorf("decode agent metrics: %w", err)
	}
	logger.Debug("Fetched %d agent metrics", len(metrics))
	return metrics, nil
}

// FetchAgentMonthlyCosts returns the monthly spend of every agent.
func (c *Client) FetchAgentMonthlyCosts(ctx context.Context) ([]domain.MonthlyCost, error) {
	return c.fetchMonthlyCosts(ctx, agentMonthlyCostPath, "uploaded")
}

// FetchUserMonthlyCosts returns the monthly spend of every user per agent.
func (c *Client) FetchUserMonthlyCosts(ctx context.Context) ([]domain.MonthlyCost, error) {
	return c.fetchMonthlyCosts(ctx, userMonthlyCostPath, "monthly_costs")
}

func (c *Client) fetchMonthlyCosts(ctx context.Context, path, key string) ([]domain.MonthlyCost, error) {
	body, err := c.getJSON(ctx, c.endpoint(nil, path))
	if err != nil {
		return nil, err
	}

	costs, err := payload.DecodeMonthlyCosts(body, key)
	if err != nil {
		return nil, fmt.Errorf("decode monthly costs: %w", err)
	}
	logger.Debug("Fetched %d monthly cost rows from %s", len(costs), path)
	return costs, nil
}
