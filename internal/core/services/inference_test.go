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

func agentParent() domain.LogRecord {
	return domain.LogRecord{
		ID:        "parent",
		Source:    domain.LogSourceAgent.String(),
		RequestID: "r1",
		CreatedOn: "2025-01-01T09:30:00Z",
		Content:   domain.ObjectContent(map[string]any{"agent_code": "a1"}),
	}
}

func TestBuildInferenceTree_Scenario(t *testing.T) {
	pool := []domain.LogRecord{
		itemsLog("1", "r1", "a1", "2025-01-01T10:00:00Z"),
		itemsLog("2", "r1", "a2", "2025-01-01T09:00:00Z"),
		itemsLog("3", "r2", "a1", "2025-01-01T08:00:00Z"),
	}

	tree := BuildInferenceTree("r1", "a1", agentParent(), pool)

	require.Len(t, tree.Inference, 1)
	assert.Equal(t, "1", tree.Inference[0].ID)
	assert.Equal(t, "a1", tree.AgentCode)
	assert.Equal(t, "agent", tree.Source)
	assert.Equal(t, "parent", tree.Agent.ID)
}

func TestBuildInferenceTree_SortedAscendingWithInvalidFirst(t *testing.T) {
	pool := []domain.LogRecord{
		itemsLog("late", "r1", "a1", "2025-01-01T12:00:00Z"),
		itemsLog("invalid", "r1", "a1", "garbage"),
		itemsLog("early", "r1", "a1", "2025-01-01T06:00:00Z"),
		{ID: "text", RequestID: "r1", CreatedOn: "2025-01-01T07:00:00Z", Content: domain.TextContent(`{"agent_code":"a1"}`)},
	}

	tree := BuildInferenceTree("r1", "a1", agentParent(), pool)

	ids := make([]string, 0, len(tree.Inference))
	for _, r := range tree.Inference {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"invalid", "early", "text", "late"}, ids)
}

func TestBuildInferenceTree_SoundAndComplete(t *testing.T) {
	pool := []domain.LogRecord{
		itemsLog("1", "r1", "a1", "2025-01-01T10:00:00Z"),
		itemsLog("2", "R1", "a1", "2025-01-01T10:00:00Z"),
		itemsLog("3", "r1", "A1", "2025-01-01T10:00:00Z"),
		itemsLog("4", "r1", "a1", "2025-01-01T11:00:00Z"),
		{ID: "5", RequestID: "r1", Content: domain.TextContent("not json")},
	}

	tree := BuildInferenceTree("r1", "a1", agentParent(), pool)

	for _, r := range tree.Inference {
		assert.Equal(t, "r1", r.RequestID)
		assert.Equal(t, "a1", AgentCodeOf(r))
	}
	assert.Len(t, tree.Inference, 2)
	assert.Len(t, pool, 5)
	assert.Equal(t, "1", pool[0].ID)
}

func TestBuildInferenceTree_NoMatchesIsEmpty(t *testing.T) {
	tree := BuildInferenceTree("r9", "a9", agentParent(), []domain.LogRecord{itemsLog("1", "r1", "a1", "")})

	require.NotNil(t, tree)
	assert.True(t, tree.IsEmpty())
	assert.NotNil(t, tree.Inference)
}

func TestInferenceService_BuildTree_QueriesWindow(t *testing.T) {
	fetcher := &mockLogFetcher{bySource: map[string][]domain.LogRecord{
		"inference": {itemsLog("1", "r1", "a1", "2025-01-01T10:00:00Z")},
	}}
	service := NewInferenceService(fetcher)

	tree, err := service.BuildTree(context.Background(), "r1", "a1", agentParent())

	require.NoError(t, err)
	assert.Len(t, tree.Inference, 1)

	q := fetcher.lastQuery()
	assert.Equal(t, "inference", q.Source)
	assert.Equal(t, time.Date(2024, 12, 31, 21, 30, 0, 0, time.UTC), q.Start)
	assert.Equal(t, time.Date(2025, 1, 1, 21, 30, 0, 0, time.UTC), q.End)
}

func TestInferenceService_BuildTree_FetchFailureDiscardsTree(t *testing.T) {
	store := memory.NewHistoryStore()
	service := NewInferenceService(&mockLogFetcher{err: domain.ErrAuthRequired})
	service.SetHistory(NewHistoryService(store))

	tree, err := service.BuildTree(context.Background(), "r1", "a1", agentParent())

	assert.Nil(t, tree)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	entries, _ := store.List(context.Background(), 0)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.HistoryInferenceTree, entries[0].Kind)
	assert.False(t, entries[0].Succeeded())
}

func TestInferenceService_BuildTree_InvalidInput(t *testing.T) {
	fetcher := &mockLogFetcher{}
	service := NewInferenceService(fetcher)

	_, err := service.BuildTree(context.Background(), "", "a1", agentParent())
	assert.ErrorIs(t, err, domain.ErrMissingCorrelation)

	parent := agentParent()
	parent.CreatedOn = "yesterday"
	_, err = service.BuildTree(context.Background(), "r1", "a1", parent)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, fetcher.queries)
}

func TestInferenceService_TreeFor(t *testing.T) {
	fetcher := &mockLogFetcher{bySource: map[string][]domain.LogRecord{
		"inference": {
			itemsLog("1", "r1", "a1", "2025-01-01T10:00:00Z"),
			itemsLog("2", "r1", "other", "2025-01-01T10:00:00Z"),
		},
	}}
	service := NewInferenceService(fetcher)

	tree, err := service.TreeFor(context.Background(), agentParent())

	require.NoError(t, err)
	assert.Equal(t, "a1", tree.AgentCode)
	assert.Len(t, tree.Inference, 1)
}

func TestInferenceService_TreeFor_MissingCorrelation(t *testing.T) {
	fetcher := &mockLogFetcher{}
	service := NewInferenceService(fetcher)

	noRequest := agentParent()
	noRequest.RequestID = ""
	_, err := service.TreeFor(context.Background(), noRequest)
	assert.ErrorIs(t, err, domain.ErrMissingCorrelation)

	noCode := agentParent()
	noCode.Content = domain.TextContent("{broken")
	_, err = service.TreeFor(context.Background(), noCode)
	assert.ErrorIs(t, err, domain.ErrMissingCorrelation)

	assert.Empty(t, fetcher.queries)
}

func TestInferenceService_AgentLogs(t *testing.T) {
	fetcher := &mockLogFetcher{bySource: map[string][]domain.LogRecord{
		"agent": {
			{ID: "b", RequestID: "r1", CreatedOn: "2025-01-01T11:00:00Z"},
			{ID: "x", RequestID: "r2", CreatedOn: "2025-01-01T09:00:00Z"},
			{ID: "a", RequestID: "r1", CreatedOn: "2025-01-01T10:00:00Z"},
		},
	}}
	service := NewInferenceService(fetcher)
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	logs, err := service.AgentLogs(context.Background(), "r1", at)

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "a", logs[0].ID)
	assert.Equal(t, "b", logs[1].ID)
	assert.Equal(t, "agent", fetcher.lastQuery().Source)

	_, err = service.AgentLogs(context.Background(), "", at)
	assert.ErrorIs(t, err, domain.ErrMissingCorrelation)

	_, err = service.AgentLogs(context.Background(), "r1", time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
