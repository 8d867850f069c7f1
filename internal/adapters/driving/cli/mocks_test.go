package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
)

// MockLogService implements driving.LogService.
type MockLogService struct {
	SearchFunc func(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error)
	Queries    []domain.LogQuery
}

func (m *MockLogService) Search(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	m.Queries = append(m.Queries, q)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return []domain.LogRecord{}, nil
}

// MockInferenceService implements driving.InferenceService.
type MockInferenceService struct {
	Tree    *domain.InferenceTree
	Agents  []domain.LogRecord
	Err     error
	Parents []domain.LogRecord
	Built   []string
}

func (m *MockInferenceService) BuildTree(
	_ context.Context, requestID, agentCode string, parent domain.LogRecord,
) (*domain.InferenceTree, error) {
	m.Built = append(m.Built, requestID, agentCode)
	m.Parents = append(m.Parents, parent)
	return m.Tree, m.Err
}

func (m *MockInferenceService) TreeFor(_ context.Context, parent domain.LogRecord) (*domain.InferenceTree, error) {
	m.Parents = append(m.Parents, parent)
	return m.Tree, m.Err
}

func (m *MockInferenceService) AgentLogs(_ context.Context, _ string, _ time.Time) ([]domain.LogRecord, error) {
	return m.Agents, nil
}

// MockContextService implements driving.ContextService.
type MockContextService struct {
	TreeResult  *domain.ContextTree
	VersionList []domain.VersionSummary
	Err         error
	VersionIDs  []string
}

func (m *MockContextService) Tree(_ context.Context, agentCode, versionID string) (*domain.ContextTree, error) {
	m.VersionIDs = append(m.VersionIDs, versionID)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.TreeResult == nil {
		return &domain.ContextTree{AgentCode: agentCode}, nil
	}
	return m.TreeResult, nil
}

func (m *MockContextService) Versions(_ context.Context, _ string) ([]domain.VersionSummary, error) {
	return m.VersionList, m.Err
}

// MockAuditService implements driving.AuditService.
type MockAuditService struct {
	Records  []domain.LogRecord
	Err      error
	Requests []string
	Sessions []string
}

func (m *MockAuditService) ByRequest(_ context.Context, requestID string) ([]domain.LogRecord, error) {
	m.Requests = append(m.Requests, requestID)
	return m.Records, m.Err
}

func (m *MockAuditService) BySession(_ context.Context, sessionID string) ([]domain.LogRecord, error) {
	m.Sessions = append(m.Sessions, sessionID)
	return m.Records, m.Err
}

// MockCostService implements driving.CostService with testify/mock.
type MockCostService struct {
	mock.Mock
}

func (m *MockCostService) Metrics(_ context.Context, q domain.MetricQuery) ([]domain.AgentMetric, error) {
	args := m.Called(q)
	metrics, _ := args.Get(0).([]domain.AgentMetric)
	return metrics, args.Error(1)
}

func (m *MockCostService) AgentMonthly(_ context.Context, f domain.CostFilter) ([]domain.MonthlyCost, error) {
	args := m.Called(f)
	costs, _ := args.Get(0).([]domain.MonthlyCost)
	return costs, args.Error(1)
}

func (m *MockCostService) UserMonthly(_ context.Context, f domain.CostFilter) ([]domain.MonthlyCost, error) {
	args := m.Called(f)
	costs, _ := args.Get(0).([]domain.MonthlyCost)
	return costs, args.Error(1)
}

// MockHistoryService implements driving.HistoryService.
type MockHistoryService struct {
	Entries  []domain.HistoryEntry
	Disabled bool
	Cleared  bool
	Limit    int
}

func (m *MockHistoryService) List(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	m.Limit = limit
	return m.Entries, nil
}

func (m *MockHistoryService) Clear(_ context.Context) error {
	m.Cleared = true
	return nil
}

func (m *MockHistoryService) Enabled() bool {
	return !m.Disabled
}

// MockSettingsService implements driving.SettingsService with testify/mock.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	args := m.Called()
	if s := args.Get(0); s != nil {
		return s.(*domain.AppSettings), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	return m.Called(settings).Error(0)
}

func (m *MockSettingsService) SetBackend(baseURL string, timeout time.Duration, rateLimit float64) error {
	return m.Called(baseURL, timeout, rateLimit).Error(0)
}

func (m *MockSettingsService) SetAuth(auth domain.AuthSettings) error {
	return m.Called(auth).Error(0)
}

func (m *MockSettingsService) SetVersionOrder(order domain.VersionOrder) error {
	return m.Called(order).Error(0)
}

func (m *MockSettingsService) SetHistoryEnabled(enabled bool) error {
	return m.Called(enabled).Error(0)
}

func (m *MockSettingsService) Validate() error {
	return m.Called().Error(0)
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// resetFlags restores every command flag variable to its default.
func resetFlags() {
	globalOpts = Options{}
	logsStart, logsEnd, logsSource, logsExport, logsOut = "", "", "", "", ""
	logsJSON = false
	inferenceAt, inferenceAgentCode = "", ""
	inferenceJSON, inferenceDetail = false, false
	contextsVersionID = ""
	contextsExpand = nil
	contextsExpandAll, contextsJSON = false, false
	historyLimit, historyJSON = 20, false
	settingsBackendURL, settingsBackendTimeout, settingsBackendRate = "", 0, 0
	settingsAuthMethod, settingsAuthToken, settingsAuthTokenURL = "", "", ""
	settingsAuthClientID, settingsAuthClientSecret = "", ""
	settingsAuthScopes = nil
	auditJSON, auditTree = false, false
	auditExport, auditOut = "", ""
	metricsAgent, metricsMetric, metricsStart, metricsEnd = "", "", "", ""
	metricsJSON = false
	monthlyAgent, monthlyUser, monthlyMonth = "", "", ""
	monthlyByUser, monthlyJSON = false, false
}

// runCommand executes the root command with services and args,
// returning combined output.
func runCommand(t *testing.T, s *Services, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}
