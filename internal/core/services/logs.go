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

// Ensure LogService implements the interface.
var _ driving.LogService = (*LogService)(nil)

// LogService searches flat log records.
type LogService struct {
	fetcher driven.LogFetcher
	history *HistoryService
}

// NewLogService creates a new log service.
func NewLogService(fetcher driven.LogFetcher) *LogService {
	return &LogService{fetcher: fetcher}
}

// SetHistory sets the recorder for executed searches.
func (s *LogService) SetHistory(history *HistoryService) {
	s.history = history
}

// Search validates q and returns matching records, newest first.
func (s *LogService) Search(ctx context.Context, q domain.LogQuery) ([]domain.LogRecord, error) {
	logger.Section("Log Search")
	logger.Debug("Range: %s .. %s, source: %q", domain.FormatTimestamp(q.Start), domain.FormatTimestamp(q.End), q.Source)

	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Source != "" && !domain.LogSource(q.Source).IsValid() {
		logger.Warn("Unknown log source %q, passing through", q.Source)
	}

	defer logger.Timing("log search", time.Now())
	records, err := s.fetcher.FetchLogs(ctx, q)
	if err != nil {
		err = fmt.Errorf("fetch logs: %w", err)
		s.history.Record(ctx, domain.HistoryLogSearch, queryParams(q), 0, err)
		return nil, err
	}
	if records == nil {
		records = []domain.LogRecord{}
	}

	sortNewestFirst(records)
	logger.Debug("Fetched %d records", len(records))

	s.history.Record(ctx, domain.HistoryLogSearch, queryParams(q), len(records), nil)
	return records, nil
}

func queryParams(q domain.LogQuery) map[string]string {
	params := map[string]string{
		"start": domain.FormatTimestamp(q.Start),
		"end":   domain.FormatTimestamp(q.End),
	}
	if q.Source != "" {
		params["source"] = q.Source
	}
	return params
}
