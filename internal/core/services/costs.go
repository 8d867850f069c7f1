package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure CostService implements the interface.
var _ driving.CostService = (*CostService)(nil)

// CostService reports agent metrics and monthly spend.
type CostService struct {
	fetcher driven.CostFetcher
	history *HistoryService
}

// NewCostService creates a new cost service.
func NewCostService(fetcher driven.CostFetcher) *CostService {
	return &CostService{fetcher: fetcher}
}

// SetHistory sets the recorder for executed queries.
func (s *CostService) SetHistory(history *HistoryService) {
	s.history = history
}

// Metrics validates q and returns matching metrics, newest first.
func (s *CostService) Metrics(ctx context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error) {
	logger.Section("Agent Metrics")
	if err := q.Validate(); err != nil {
		return nil, err
	}
	params := metricParams(q)

	defer logger.Timing("agent metrics", time.Now())
	metrics, err := s.fetcher.FetchAgentMetrics(ctx, q)
	if err != nil {
		err = fmt.Errorf("fetch agent metrics: %w", err)
		s.history.Record(ctx, domain.HistoryCosts, params, 0, err)
		return nil, err
	}
	if metrics == nil {
		metrics = []domain.AgentMetric{}
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Time().After(metrics[j].Time())
	})

	s.history.Record(ctx, domain.HistoryCosts, params, len(metrics), nil)
	return metrics, nil
}

// AgentMonthly returns per-agent monthly spend passing f, newest month first.
func (s *CostService) AgentMonthly(ctx context.Context, f domain.CostFilter) ([]domain.MonthlyCost, error) {
	logger.Section("Agent Monthly Cost")
	return s.monthly(ctx, "agent", f, s.fetcher.FetchAgentMonthlyCosts)
}

// UserMonthly returns per-user monthly spend passing f, newest month first.
func (s *CostService) UserMonthly(ctx context.Context, f domain.CostFilter) ([]domain.MonthlyCost, error) {
	logger.Section("User Monthly Cost")
	return s.monthly(ctx, "user", f, s.fetcher.FetchUserMonthlyCosts)
}

func (s *CostService) monthly(
	ctx context.Context,
	by string,
	f domain.CostFilter,
	fetch func(context.Context) ([]domain.MonthlyCost, error),
) ([]domain.MonthlyCost, error) {
	params := costParams(by, f)

	costs, err := fetch(ctx)
	if err != nil {
		err = fmt.Errorf("fetch %s monthly costs: %w", by, err)
		s.history.Record(ctx, domain.HistoryCosts, params, 0, err)
		return nil, err
	}

	kept := make([]domain.MonthlyCost, 0, len(costs))
	for _, c := range costs {
		if f.Matches(c) {
			kept = append(kept, c)
		}
	}
	sortCosts(kept)
	logger.Debug("Kept %d of %d %s cost rows", len(kept), len(costs), by)

	s.history.Record(ctx, domain.HistoryCosts, params, len(kept), nil)
	return kept, nil
}

// sortCosts orders by month descending, then by spend descending, then by
// agent and user so equal rows keep a stable order.
func sortCosts(costs []domain.MonthlyCost) {
	sort.SliceStable(costs, func(i, j int) bool {
		a, b := costs[i], costs[j]
		switch {
		case a.Month != b.Month:
			return a.Month > b.Month
		case a.TotalCost != b.TotalCost:
			return a.TotalCost > b.TotalCost
		case a.AgentCode != b.AgentCode:
			return a.AgentCode < b.AgentCode
		default:
			return a.UserName < b.UserName
		}
	})
}

func metricParams(q domain.MetricQuery) map[string]string {
	params := map[string]string{"view": "metrics"}
	if q.AgentCode != "" {
		params["agent"] = q.AgentCode
	}
	if q.MetricCode != "" {
		params["metric"] = q.MetricCode
	}
	if !q.Start.IsZero() {
		params["start"] = domain.FormatTimestamp(q.Start)
	}
	if !q.End.IsZero() {
		params["end"] = domain.FormatTimestamp(q.End)
	}
	return params
}

func costParams(by string, f domain.CostFilter) map[string]string {
	params := map[string]string{"view": by + "_monthly"}
	if f.AgentCode != "" {
		params["agent"] = f.AgentCode
	}
	if f.UserName != "" {
		params["user"] = f.UserName
	}
	if f.Month != "" {
		params["month"] = f.Month
	}
	return params
}
