package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// mockLogService is a mock implementation of driving.LogService.
type mockLogService struct {
	records []domain.LogRecord
	err     error
	queries []domain.LogQuery
}

func (m *mockLogService) Search(_ context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	m.queries = append(m.queries, q)
	return m.records, m.err
}

// mockInferenceService is a mock implementation of driving.InferenceService.
type mockInferenceService struct {
	tree    *domain.InferenceTree
	agents  []domain.LogRecord
	err     error
	logsErr error

	builtWith []string
	parents   []domain.LogRecord
}

func (m *mockInferenceService) BuildTree(
	_ context.Context,
	requestID, agentCode string,
	parent domain.LogRecord,
) (*domain.InferenceTree, error) {
	m.builtWith = append(m.builtWith, requestID, agentCode)
	m.parents = append(m.parents, parent)
	return m.tree, m.err
}

func (m *mockInferenceService) TreeFor(_ context.Context, parent domain.LogRecord) (*domain.InferenceTree, error) {
	m.parents = append(m.parents, parent)
	return m.tree, m.err
}

func (m *mockInferenceService) AgentLogs(_ context.Context, _ string, _ time.Time) ([]domain.LogRecord, error) {
	return m.agents, m.logsErr
}

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	tree     *domain.ContextTree
	versions []domain.VersionSummary
	err      error
}

func (m *mockContextService) Tree(_ context.Context, _, _ string) (*domain.ContextTree, error) {
	return m.tree, m.err
}

func (m *mockContextService) Versions(_ context.Context, _ string) ([]domain.VersionSummary, error) {
	return m.versions, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	entries []domain.HistoryEntry
	err     error
	limit   int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.limit = limit
	return m.entries, m.err
}

func (m *mockHistoryService) Clear(_ context.Context) error {
	return m.err
}

func (m *mockHistoryService) Enabled() bool {
	return true
}

// validPorts returns ports with every required service mocked.
func validPorts() *Ports {
	return &Ports{
		Logs:      &mockLogService{},
		Inference: &mockInferenceService{},
		Contexts:  &mockContextService{},
	}
}

// newTestServer creates a server with a fixed clock.
func newTestServer(t *testing.T, ports *Ports, now time.Time) *Server {
	t.Helper()
	s, err := NewServer(ports)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}
