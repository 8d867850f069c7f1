package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockLogFetcher implements driven.LogFetcher for testing.
// Records are returned per source; queries are captured.
type mockLogFetcher struct {
	mu       sync.Mutex
	bySource map[string][]domain.LogRecord
	err      error
	queries  []domain.LogQuery
}

func (m *mockLogFetcher) FetchLogs(_ context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	src := m.bySource[q.Source]
	out := make([]domain.LogRecord, len(src))
	copy(out, src)
	return out, nil
}

func (m *mockLogFetcher) lastQuery() domain.LogQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		return domain.LogQuery{}
	}
	return m.queries[len(m.queries)-1]
}

// mockContextFetcher implements driven.ContextFetcher for testing.
type mockContextFetcher struct {
	contexts      []domain.Context
	history       []domain.Context
	err           error
	lastAgentCode string
	lastVersionID string
	lastPrompt    string
}

func (m *mockContextFetcher) FetchContexts(_ context.Context, agentCode, versionID string) ([]domain.Context, error) {
	m.lastAgentCode = agentCode
	m.lastVersionID = versionID
	if m.err != nil {
		return nil, m.err
	}
	return m.contexts, nil
}

func (m *mockContextFetcher) FetchContextHistory(_ context.Context, promptCode string) ([]domain.Context, error) {
	m.lastPrompt = promptCode
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

// itemsLog builds a log record whose content is a single iteration.
func itemsLog(id, requestID, agentCode, createdOn string) domain.LogRecord {
	return domain.LogRecord{
		ID:        id,
		Source:    domain.LogSourceInference.String(),
		RequestID: requestID,
		CreatedOn: createdOn,
		Content:   domain.ItemsContent([]domain.IterationItem{{Iteration: 1, AgentCode: agentCode}}),
	}
}

// mockAuditFetcher implements driven.AuditFetcher for testing.
type mockAuditFetcher struct {
	byRequest map[string][]domain.LogRecord
	bySession map[string][]domain.LogRecord
	err       error
	calls     int
}

func (m *mockAuditFetcher) FetchAuditByRequest(_ context.Context, requestID string) ([]domain.LogRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.byRequest[requestID], nil
}

func (m *mockAuditFetcher) FetchAuditBySession(_ context.Context, sessionID string) ([]domain.LogRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.bySession[sessionID], nil
}

// mockCostFetcher implements driven.CostFetcher for testing.
type mockCostFetcher struct {
	metrics   []domain.AgentMetric
	agentCost []domain.MonthlyCost
	userCost  []domain.MonthlyCost
	err       error
	queries   []domain.MetricQuery
}

func (m *mockCostFetcher) FetchAgentMetrics(_ context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.metrics, nil
}

func (m *mockCostFetcher) FetchAgentMonthlyCosts(context.Context) ([]domain.MonthlyCost, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.agentCost, nil
}

func (m *mockCostFetcher) FetchUserMonthlyCosts(context.Context) ([]domain.MonthlyCost, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.userCost, nil
}
