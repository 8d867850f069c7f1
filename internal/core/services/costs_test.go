package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

func TestCostService_Metrics_SortsNewestFirst(t *testing.T) {
	fetcher := &mockCostFetcher{metrics: []domain.AgentMetric{
		{MetricCode: "old", Timestamp: "2025-03-01T08:00:00Z"},
		{MetricCode: "undated"},
		{MetricCode: "new", Timestamp: "2025-03-02T08:00:00Z"},
	}}
	service := NewCostService(fetcher)
	q := domain.MetricQuery{AgentCode: "BILLING"}

	metrics, err := service.Metrics(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, metrics, 3)
	assert.Equal(t, "new", metrics[0].MetricCode)
	assert.Equal(t, "old", metrics[1].MetricCode)
	assert.Equal(t, "undated", metrics[2].MetricCode)
	assert.Equal(t, []domain.MetricQuery{q}, fetcher.queries)
}

func TestCostService_Metrics_InvalidRange(t *testing.T) {
	fetcher := &mockCostFetcher{}
	service := NewCostService(fetcher)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.Metrics(context.Background(), domain.MetricQuery{Start: at, End: at.Add(-time.Hour)})

	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	assert.Empty(t, fetcher.queries)
}

func TestCostService_Monthly_FiltersAndSorts(t *testing.T) {
	fetcher := &mockCostFetcher{
		agentCost: []domain.MonthlyCost{
			{AgentCode: "SUPPORT", Month: "2025-02", TotalCost: 4},
			{AgentCode: "BILLING", Month: "2025-03", TotalCost: 1},
			{AgentCode: "SUPPORT", Month: "2025-03", TotalCost: 7},
			{AgentCode: "BILLING", Month: "2025-02", TotalCost: 3},
		},
		userCost: []domain.MonthlyCost{
			{AgentCode: "BILLING", UserName: "li", Month: "2025-03", TotalCost: 2},
			{AgentCode: "BILLING", UserName: "ana", Month: "2025-03", TotalCost: 2},
			{AgentCode: "SUPPORT", UserName: "ana", Month: "2025-03", TotalCost: 9},
		},
	}
	service := NewCostService(fetcher)
	ctx := context.Background()

	all, err := service.AgentMonthly(ctx, domain.CostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, domain.MonthlyCost{AgentCode: "SUPPORT", Month: "2025-03", TotalCost: 7}, all[0])
	assert.Equal(t, "BILLING", all[1].AgentCode)
	assert.Equal(t, "2025-02", all[2].Month)
	assert.InDelta(t, 4.0, all[2].TotalCost, 1e-9)
	assert.Equal(t, "BILLING", all[3].AgentCode)

	billing, err := service.AgentMonthly(ctx, domain.CostFilter{AgentCode: "BILLING", Month: "2025-02"})
	require.NoError(t, err)
	require.Len(t, billing, 1)
	assert.InDelta(t, 3.0, billing[0].TotalCost, 1e-9)

	users, err := service.UserMonthly(ctx, domain.CostFilter{AgentCode: "BILLING"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ana", users[0].UserName, "equal spend falls back to user name")
	assert.Equal(t, "li", users[1].UserName)
}

func TestCostService_Monthly_NoMatchesIsEmpty(t *testing.T) {
	service := NewCostService(&mockCostFetcher{agentCost: []domain.MonthlyCost{{AgentCode: "A", Month: "2025-01"}}})

	costs, err := service.AgentMonthly(context.Background(), domain.CostFilter{Month: "1999-01"})

	require.NoError(t, err)
	assert.NotNil(t, costs)
	assert.Empty(t, costs)
}

func TestCostService_RecordsHistory(t *testing.T) {
	store := memory.NewHistoryStore()
	service := NewCostService(&mockCostFetcher{err: domain.ErrBackendUnavailable})
	service.SetHistory(NewHistoryService(store))

	_, err := service.UserMonthly(context.Background(), domain.CostFilter{UserName: "ana"})
	require.ErrorIs(t, err, domain.ErrBackendUnavailable)

	entries, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.HistoryCosts, entries[0].Kind)
	assert.Equal(t, map[string]string{"view": "user_monthly", "user": "ana"}, entries[0].Params)
	assert.Contains(t, entries[0].Error, "backend unavailable")
}
