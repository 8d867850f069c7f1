package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure InferenceService implements the interface.
var _ driving.InferenceService = (*InferenceService)(nil)

// BuildInferenceTree correlates parent with the candidates sharing its key.
//
// A candidate is kept when its request ID equals requestID and its extracted
// agent code equals agentCode, both compared exactly. Kept records are sorted
// oldest first with unparseable timestamps first. The candidates slice is not
// modified.
func BuildInferenceTree(
	requestID, agentCode string, parent domain.LogRecord, candidates []domain.LogRecord,
) *domain.InferenceTree {
	matched := make([]domain.LogRecord, 0)
	for _, c := range candidates {
		if c.RequestID != requestID {
			continue
		}
		if AgentCodeOf(c) != agentCode {
			continue
		}
		matched = append(matched, c)
	}
	sortOldestFirst(matched)

	return &domain.InferenceTree{
		Agent:     parent,
		AgentCode: agentCode,
		Source:    parent.Source,
		Inference: matched,
	}
}

// InferenceService correlates agent invocations with their inference calls.
type InferenceService struct {
	fetcher driven.LogFetcher
	history *HistoryService
}

// NewInferenceService creates a new inference service.
func NewInferenceService(fetcher driven.LogFetcher) *InferenceService {
	return &InferenceService{fetcher: fetcher}
}

// SetHistory sets the recorder for executed lookups.
func (s *InferenceService) SetHistory(history *HistoryService) {
	s.history = history
}

// BuildTree fetches inference logs around parent and keeps those matching
// requestID and agentCode. Zero matches is an empty tree, not an error.
func (s *InferenceService) BuildTree(
	ctx context.Context, requestID, agentCode string, parent domain.LogRecord,
) (*domain.InferenceTree, error) {
	logger.Section("Inference Tree")
	logger.Debug("Correlation key: requestId=%q agentCode=%q", requestID, agentCode)

	if requestID == "" || agentCode == "" {
		return nil, domain.ErrMissingCorrelation
	}

	at, ok := domain.ParseTimestamp(parent.CreatedOn)
	if !ok {
		return nil, fmt.Errorf("%w: parent log %q has no valid createdOn", domain.ErrInvalidInput, parent.ID)
	}

	params := map[string]string{
		"request_id": requestID,
		"agent_code": agentCode,
		"at":         domain.FormatTimestamp(at),
	}

	q := domain.WindowAround(at, domain.LogSourceInference)
	logger.Debug("Window: %s .. %s", domain.FormatTimestamp(q.Start), domain.FormatTimestamp(q.End))

	defer logger.Timing("inference fetch", time.Now())
	candidates, err := s.fetcher.FetchLogs(ctx, q)
	if err != nil {
		err = fmt.Errorf("fetch inference logs: %w", err)
		s.history.Record(ctx, domain.HistoryInferenceTree, params, 0, err)
		return nil, err
	}

	for _, c := range candidates {
		if _, perr := ExtractAgentCode(c); perr != nil {
			logger.Debug("Inference log %q: %v", c.ID, perr)
		}
	}

	tree := BuildInferenceTree(requestID, agentCode, parent, candidates)
	logger.Debug("Matched %d of %d candidates", len(tree.Inference), len(candidates))

	s.history.Record(ctx, domain.HistoryInferenceTree, params, len(tree.Inference), nil)
	return tree, nil
}

// TreeFor derives the correlation key from parent and calls BuildTree.
func (s *InferenceService) TreeFor(ctx context.Context, parent domain.LogRecord) (*domain.InferenceTree, error) {
	code, err := ExtractAgentCode(parent)
	if err != nil {
		logger.Warn("Agent log %q: %v", parent.ID, err)
	}
	if parent.RequestID == "" || code == domain.UnknownAgentCode {
		return nil, domain.ErrMissingCorrelation
	}
	return s.BuildTree(ctx, parent.RequestID, code, parent)
}

// AgentLogs returns agent invocation logs for requestID around at, oldest first.
func (s *InferenceService) AgentLogs(ctx context.Context, requestID string, at time.Time) ([]domain.LogRecord, error) {
	if requestID == "" {
		return nil, domain.ErrMissingCorrelation
	}
	if at.IsZero() {
		return nil, fmt.Errorf("%w: lookup time is required", domain.ErrInvalidInput)
	}

	q := domain.WindowAround(at, domain.LogSourceAgent)
	records, err := s.fetcher.FetchLogs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch agent logs: %w", err)
	}

	matched := make([]domain.LogRecord, 0)
	for _, r := range records {
		if r.RequestID == requestID {
			matched = append(matched, r)
		}
	}
	sortOldestFirst(matched)
	logger.Debug("Found %d agent logs for request %q", len(matched), requestID)
	return matched, nil
}
