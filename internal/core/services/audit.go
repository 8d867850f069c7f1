package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agentops-cli/internal/core/domain"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driven"
	"github.com/custodia-labs/agentops-cli/internal/core/ports/driving"
	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// AuditService reads the audit trail of one request or session.
type AuditService struct {
	fetcher driven.AuditFetcher
	history *HistoryService
}

// NewAuditService creates a new audit service.
func NewAuditService(fetcher driven.AuditFetcher) *AuditService {
	return &AuditService{fetcher: fetcher}
}

// SetHistory sets the recorder for executed lookups.
func (s *AuditService) SetHistory(history *HistoryService) {
	s.history = history
}

// ByRequest returns the logs of requestID, oldest first.
func (s *AuditService) ByRequest(ctx context.Context, requestID string) ([]domain.LogRecord, error) {
	return s.lookup(ctx, "request", requestID, s.fetcher.FetchAuditByRequest)
}

// BySession returns the logs of sessionID, oldest first.
func (s *AuditService) BySession(ctx context.Context, sessionID string) ([]domain.LogRecord, error) {
	return s.lookup(ctx, "session", sessionID, s.fetcher.FetchAuditBySession)
}

func (s *AuditService) lookup(
	ctx context.Context,
	scope, id string,
	fetch func(context.Context, string) ([]domain.LogRecord, error),
) ([]domain.LogRecord, error) {
	logger.Section("Audit Lookup")
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: %s ID is required", domain.ErrInvalidInput, scope)
	}
	params := map[string]string{scope: id}

	defer logger.Timing("audit "+scope, time.Now())
	records, err := fetch(ctx, id)
	if err != nil {
		err = fmt.Errorf("fetch %s audit: %w", scope, err)
		s.history.Record(ctx, domain.HistoryAudit, params, 0, err)
		return nil, err
	}
	if records == nil {
		records = []domain.LogRecord{}
	}

	sortOldestFirst(records)
	logger.Debug("Audit %s %s: %d records", scope, id, len(records))

	s.history.Record(ctx, domain.HistoryAudit, params, len(records), nil)
	return records, nil
}

// FirstAgentLog returns the earliest agent invocation in records.
// The second value is false when records hold none.
func FirstAgentLog(records []domain.LogRecord) (domain.LogRecord, bool) {
	var (
		first domain.LogRecord
		found bool
	)
	for _, r := range records {
		if r.Source != domain.LogSourceAgent.String() {
			continue
		}
		if !found || r.CreatedTime().Before(first.CreatedTime()) {
			first, found = r, true
		}
	}
	return first, found
}
